package frontend

import "testing"

func TestTurboState_Cycle(t *testing.T) {
	ts := &TurboState{}

	if ts.Read() != 1 {
		t.Fatalf("initial multiplier: expected 1, got %d", ts.Read())
	}
	for _, want := range []int{2, 3, 1, 2} {
		if got := ts.CycleMultiplier(); got != want {
			t.Fatalf("CycleMultiplier: expected %d, got %d", want, got)
		}
		if ts.Read() != want {
			t.Fatalf("Read: expected %d, got %d", want, ts.Read())
		}
	}
}

func TestTurboState_Set(t *testing.T) {
	ts := &TurboState{}
	ts.Set(3)
	if ts.Read() != 3 {
		t.Fatalf("expected 3, got %d", ts.Read())
	}
	if got := ts.CycleMultiplier(); got != 1 {
		t.Fatalf("cycling past the maximum should return to 1, got %d", got)
	}
	ts.Set(-4)
	if ts.Read() != 1 {
		t.Fatalf("negative multiplier should read as 1, got %d", ts.Read())
	}
}
