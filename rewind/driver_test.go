package rewind

import (
	"bytes"
	"errors"
	"testing"
)

type fakeCore struct {
	state   []byte
	loads   int
	failGet bool
}

func (f *fakeCore) Serialize() ([]byte, error) {
	if f.failGet {
		return nil, errors.New("boom")
	}
	return append([]byte(nil), f.state...), nil
}

func (f *fakeCore) Unserialize(data []byte) error {
	f.state = append(f.state[:0], data...)
	f.loads++
	return nil
}

func newTestDriver(t *testing.T, step int) *Driver {
	t.Helper()
	d, err := NewDriver(1, step, nil)
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

// TestNewDriverInvalidArgs tests argument validation
func TestNewDriverInvalidArgs(t *testing.T) {
	tests := []struct {
		name      string
		sizeMB    int
		frameStep int
	}{
		{"zero buffer size", 0, 1},
		{"negative buffer size", -1, 1},
		{"zero frame step", 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDriver(tt.sizeMB, tt.frameStep, nil); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

// TestDriver_FrameStepSkipping tests capture every N frames
func TestDriver_FrameStepSkipping(t *testing.T) {
	d := newTestDriver(t, 3)
	core := &fakeCore{state: []byte{0}}
	for i := 0; i < 9; i++ {
		if err := d.Capture(core); err != nil {
			t.Fatal(err)
		}
	}
	if d.Count() != 3 {
		t.Errorf("count = %d, want 3", d.Count())
	}
}

// TestDriver_CaptureError tests serialization failures are reported
func TestDriver_CaptureError(t *testing.T) {
	d := newTestDriver(t, 1)
	if err := d.Capture(&fakeCore{failGet: true}); err == nil {
		t.Error("expected capture error")
	}
}

// TestDriver_Rewind tests stepping back restores earlier states
func TestDriver_Rewind(t *testing.T) {
	d := newTestDriver(t, 1)
	core := &fakeCore{}
	if ok, _ := d.Rewind(core, 1); ok {
		t.Fatal("rewind on empty buffer should return false")
	}
	for i := byte(0); i < 5; i++ {
		core.state = []byte{i, i, i}
		d.Capture(core)
	}

	ok, err := d.Rewind(core, 1)
	if !ok || err != nil || !bytes.Equal(core.state, []byte{3, 3, 3}) {
		t.Fatalf("Rewind(1) = %v, %v, state %v", ok, err, core.state)
	}
	ok, _ = d.Rewind(core, 2)
	if !ok || !bytes.Equal(core.state, []byte{1, 1, 1}) {
		t.Fatalf("Rewind(2) state = %v", core.state)
	}
	ok, _ = d.Rewind(core, 10)
	if !ok || !bytes.Equal(core.state, []byte{0, 0, 0}) {
		t.Fatalf("Rewind(10) state = %v", core.state)
	}
	if ok, _ := d.Rewind(core, 1); ok {
		t.Error("history should be exhausted")
	}
}

// TestDriver_Hold tests hold acceleration drives rewinds
func TestDriver_Hold(t *testing.T) {
	d := newTestDriver(t, 1)
	core := &fakeCore{}
	for i := 0; i < 100; i++ {
		core.state = []byte{byte(i)}
		d.Capture(core)
	}
	core.loads = 0
	for i := 0; i < 4; i++ {
		d.Hold(core, true)
	}
	if core.loads != 2 {
		t.Errorf("loads after 4 held frames = %d, want 2", core.loads)
	}
	d.Hold(core, false)
	d.Hold(core, true)
	if core.loads != 3 {
		t.Errorf("release should restart acceleration, loads = %d", core.loads)
	}
}

// TestDriver_Reset tests clearing history
func TestDriver_Reset(t *testing.T) {
	d := newTestDriver(t, 2)
	core := &fakeCore{state: []byte{1}}
	for i := 0; i < 4; i++ {
		d.Capture(core)
	}
	d.SetRewinding(true)
	d.Reset()
	if d.Count() != 0 {
		t.Errorf("count = %d after reset", d.Count())
	}
	if !d.IsRewinding() {
		t.Error("Reset should not change rewind mode")
	}
}

// TestRewindItemsForHoldDuration tests the acceleration curve
func TestRewindItemsForHoldDuration(t *testing.T) {
	tests := []struct {
		duration int
		expected int
	}{
		{0, 0},   // Not pressed
		{-1, 0},  // Invalid
		{1, 1},   // Just pressed
		{2, 0},   // Early hold, not on 4th frame
		{4, 1},   // 4th frame fires
		{15, 0},  // 15 not divisible by 4
		{16, 1},  // Faster rate, 16%2==0
		{17, 0},  // Odd frame
		{30, 1},  // Boundary
		{31, 1},  // Every frame zone
		{60, 1},  // Boundary of every frame zone
		{61, 2},  // Fast zone
		{999, 2}, // Very long hold
	}
	for _, tt := range tests {
		result := rewindItemsForHoldDuration(tt.duration)
		if result != tt.expected {
			t.Errorf("rewindItemsForHoldDuration(%d) = %d, want %d", tt.duration, result, tt.expected)
		}
	}
}
