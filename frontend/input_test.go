package frontend

import (
	"testing"

	"github.com/amzeratul/retrograde-sub000/libretro"
)

// TestInput_State tests joypad, bitmask and analog queries
func TestInput_State(t *testing.T) {
	si := &SharedInput{}
	si.Set(0, PortState{
		Buttons: 1<<libretro.JoypadA | 1<<libretro.JoypadStart,
		Axes:    [4]int16{100, -200, 300, -400},
	})
	si.Set(1, PortState{Buttons: 1 << libretro.JoypadB})

	in := NewInput(si)

	if got := in.State(0, libretro.DeviceJoypad, 0, libretro.JoypadA); got != 0 {
		t.Fatalf("state before Poll should be released, got %d", got)
	}
	in.Poll()

	tests := []struct {
		name   string
		port   uint32
		device uint32
		index  uint32
		id     uint32
		want   int16
	}{
		{"a pressed", 0, libretro.DeviceJoypad, 0, libretro.JoypadA, 1},
		{"b released", 0, libretro.DeviceJoypad, 0, libretro.JoypadB, 0},
		{"port 1 b", 1, libretro.DeviceJoypad, 0, libretro.JoypadB, 1},
		{"bitmask", 0, libretro.DeviceJoypad, 0, libretro.JoypadMask, 1<<libretro.JoypadA | 1<<libretro.JoypadStart},
		{"subclassed joypad", 0, libretro.DeviceJoypad | 1<<libretro.DeviceTypeShift, 0, libretro.JoypadStart, 1},
		{"left x", 0, libretro.DeviceAnalog, libretro.AnalogIndexLeft, libretro.AnalogX, 100},
		{"left y", 0, libretro.DeviceAnalog, libretro.AnalogIndexLeft, libretro.AnalogY, -200},
		{"right x", 0, libretro.DeviceAnalog, libretro.AnalogIndexRight, libretro.AnalogX, 300},
		{"right y", 0, libretro.DeviceAnalog, libretro.AnalogIndexRight, libretro.AnalogY, -400},
		{"analog button", 0, libretro.DeviceAnalog, libretro.AnalogIndexButton, libretro.JoypadA, 0x7fff},
		{"bad axis", 0, libretro.DeviceAnalog, libretro.AnalogIndexLeft, 2, 0},
		{"mouse", 0, libretro.DeviceMouse, 0, 0, 0},
		{"port out of range", MaxPorts, libretro.DeviceJoypad, 0, libretro.JoypadA, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := in.State(tt.port, tt.device, tt.index, tt.id); got != tt.want {
				t.Errorf("State = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestInput_PollLatches tests that changes after Poll are not visible
func TestInput_PollLatches(t *testing.T) {
	si := &SharedInput{}
	in := NewInput(si)
	in.Poll()

	si.Set(0, PortState{Buttons: 1 << libretro.JoypadUp})
	if in.State(0, libretro.DeviceJoypad, 0, libretro.JoypadUp) != 0 {
		t.Fatal("state changed before Poll")
	}
	in.Poll()
	if in.State(0, libretro.DeviceJoypad, 0, libretro.JoypadUp) != 1 {
		t.Fatal("state not visible after Poll")
	}
}

// TestAxisValue tests conversion and clamping of stick values
func TestAxisValue(t *testing.T) {
	tests := []struct {
		in   float64
		want int16
	}{
		{0, 0},
		{1, 0x7fff},
		{-1, -0x7fff},
		{2, 0x7fff},
		{-3, -0x7fff},
		{0.5, 16384},
	}
	for _, tt := range tests {
		if got := AxisValue(tt.in); got != tt.want {
			t.Errorf("AxisValue(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// TestDefaultMapping tests that every joypad direction and face button is bound
func TestDefaultMapping(t *testing.T) {
	m := DefaultMapping()
	for _, id := range []int{
		libretro.JoypadUp, libretro.JoypadDown, libretro.JoypadLeft, libretro.JoypadRight,
		libretro.JoypadA, libretro.JoypadB, libretro.JoypadStart, libretro.JoypadSelect,
	} {
		if _, ok := m.Keys[id]; !ok {
			t.Errorf("no key for joypad id %d", id)
		}
		if _, ok := m.Gamepad[id]; !ok {
			t.Errorf("no gamepad button for joypad id %d", id)
		}
	}
	for id := range m.Gamepad {
		if id < 0 || id > libretro.JoypadR3 {
			t.Errorf("gamepad mapping uses invalid joypad id %d", id)
		}
	}
}
