package frontend

import (
	"image"
	"testing"
	"time"

	"github.com/amzeratul/retrograde-sub000/api"
)

func TestSharedInput_SetAndRead(t *testing.T) {
	si := &SharedInput{}

	si.Set(0, PortState{Buttons: 0b1010_0101})

	ports := si.Read()
	if ports[0].Buttons != 0b1010_0101 {
		t.Fatalf("port 0 mismatch: expected 0x%X, got 0x%X", uint32(0b1010_0101), ports[0].Buttons)
	}
	if ports[1].Buttons != 0 {
		t.Fatalf("port 1 should be 0, got 0x%X", ports[1].Buttons)
	}

	si.Set(1, PortState{Buttons: 0xFF, Axes: [4]int16{1, -1, 0, 0}})
	ports = si.Read()
	if ports[0].Buttons != 0b1010_0101 {
		t.Fatalf("port 0 changed unexpectedly: 0x%X", ports[0].Buttons)
	}
	if ports[1].Buttons != 0xFF || ports[1].Axes[1] != -1 {
		t.Fatalf("port 1 mismatch: %+v", ports[1])
	}

	// Out-of-range ports are ignored
	si.Set(-1, PortState{Buttons: 0xDEAD})
	si.Set(MaxPorts, PortState{Buttons: 0xDEAD})
	ports = si.Read()
	if ports[0].Buttons != 0b1010_0101 || ports[1].Buttons != 0xFF {
		t.Fatal("out-of-range Set should not change state")
	}
}

func TestSharedFramebuffer_UpdateAndRead(t *testing.T) {
	sf := &SharedFramebuffer{}

	img, _, serial := sf.Read()
	if img != nil || serial != 0 {
		t.Fatalf("expected empty framebuffer, got %v serial %d", img, serial)
	}

	frame := image.NewRGBA(image.Rect(0, 0, 4, 2))
	g := api.Geometry{Width: 2, Height: 4, Rotation: 1}
	sf.Update(frame, g)

	got, gotG, s1 := sf.Read()
	if got != frame {
		t.Fatal("Read should return the stored image")
	}
	if gotG != g {
		t.Fatalf("geometry mismatch: expected %+v, got %+v", g, gotG)
	}

	sf.Update(frame, g)
	if _, _, s2 := sf.Read(); s2 == s1 {
		t.Fatal("serial should change on every Update")
	}

	sf.Clear()
	if img, _, _ := sf.Read(); img != nil {
		t.Fatal("Clear should drop the frame")
	}
}

func TestEmuControl_PauseResume(t *testing.T) {
	ec := NewEmuControl()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for ec.CheckPause() {
			time.Sleep(time.Millisecond)
		}
	}()

	time.Sleep(20 * time.Millisecond)

	ec.RequestPause()
	if !ec.IsPaused() {
		t.Fatal("expected paused after RequestPause")
	}

	// A second request while paused returns immediately
	ec.RequestPause()

	ec.RequestResume()
	time.Sleep(20 * time.Millisecond)
	if ec.IsPaused() {
		t.Fatal("expected not paused after RequestResume")
	}

	ec.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine did not exit after Stop")
	}
	if ec.ShouldRun() {
		t.Fatal("ShouldRun should be false after Stop")
	}
}

func TestEmuControl_StopWhilePaused(t *testing.T) {
	ec := NewEmuControl()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for ec.CheckPause() {
			time.Sleep(time.Millisecond)
		}
	}()

	ec.RequestPause()
	ec.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("paused goroutine did not exit after Stop")
	}

	// Pausing a stopped loop must not block
	ec.RequestPause()
}
