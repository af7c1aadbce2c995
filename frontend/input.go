package frontend

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/amzeratul/retrograde-sub000/api"
	"github.com/amzeratul/retrograde-sub000/libretro"
)

var _ api.InputSource = (*Input)(nil)

// InputMapping maps libretro joypad ids to ebiten inputs.
type InputMapping struct {
	Keys    map[int]ebiten.Key                   // joypad id -> keyboard key
	Gamepad map[int]ebiten.StandardGamepadButton // joypad id -> gamepad button
}

// DefaultMapping returns the built-in bindings. The keyboard drives port 0
// only.
func DefaultMapping() InputMapping {
	return InputMapping{
		Keys: map[int]ebiten.Key{
			libretro.JoypadUp:     ebiten.KeyArrowUp,
			libretro.JoypadDown:   ebiten.KeyArrowDown,
			libretro.JoypadLeft:   ebiten.KeyArrowLeft,
			libretro.JoypadRight:  ebiten.KeyArrowRight,
			libretro.JoypadA:      ebiten.KeyX,
			libretro.JoypadB:      ebiten.KeyZ,
			libretro.JoypadX:      ebiten.KeyS,
			libretro.JoypadY:      ebiten.KeyA,
			libretro.JoypadL:      ebiten.KeyQ,
			libretro.JoypadR:      ebiten.KeyW,
			libretro.JoypadStart:  ebiten.KeyEnter,
			libretro.JoypadSelect: ebiten.KeyShiftRight,
		},
		Gamepad: map[int]ebiten.StandardGamepadButton{
			libretro.JoypadUp:     ebiten.StandardGamepadButtonLeftTop,
			libretro.JoypadDown:   ebiten.StandardGamepadButtonLeftBottom,
			libretro.JoypadLeft:   ebiten.StandardGamepadButtonLeftLeft,
			libretro.JoypadRight:  ebiten.StandardGamepadButtonLeftRight,
			libretro.JoypadA:      ebiten.StandardGamepadButtonRightRight,
			libretro.JoypadB:      ebiten.StandardGamepadButtonRightBottom,
			libretro.JoypadX:      ebiten.StandardGamepadButtonRightTop,
			libretro.JoypadY:      ebiten.StandardGamepadButtonRightLeft,
			libretro.JoypadL:      ebiten.StandardGamepadButtonFrontTopLeft,
			libretro.JoypadR:      ebiten.StandardGamepadButtonFrontTopRight,
			libretro.JoypadL2:     ebiten.StandardGamepadButtonFrontBottomLeft,
			libretro.JoypadR2:     ebiten.StandardGamepadButtonFrontBottomRight,
			libretro.JoypadL3:     ebiten.StandardGamepadButtonLeftStick,
			libretro.JoypadR3:     ebiten.StandardGamepadButtonRightStick,
			libretro.JoypadStart:  ebiten.StandardGamepadButtonCenterRight,
			libretro.JoypadSelect: ebiten.StandardGamepadButtonCenterLeft,
		},
	}
}

// PollKeyboard reads the mapped keyboard keys into a button mask.
func PollKeyboard(m InputMapping) uint32 {
	var buttons uint32
	for id, key := range m.Keys {
		if ebiten.IsKeyPressed(key) {
			buttons |= 1 << id
		}
	}
	return buttons
}

// PollGamepad reads a standard layout gamepad.
func PollGamepad(m InputMapping, id ebiten.GamepadID) PortState {
	var st PortState
	if !ebiten.IsStandardGamepadLayoutAvailable(id) {
		return st
	}
	for bit, btn := range m.Gamepad {
		if ebiten.IsStandardGamepadButtonPressed(id, btn) {
			st.Buttons |= 1 << bit
		}
	}
	st.Axes[0] = AxisValue(ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal))
	st.Axes[1] = AxisValue(ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical))
	st.Axes[2] = AxisValue(ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal))
	st.Axes[3] = AxisValue(ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical))
	return st
}

// AxisValue converts an ebiten axis in [-1, 1] to the libretro analog
// range.
func AxisValue(v float64) int16 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int16(math.Round(v * 0x7fff))
}

// Input answers core input queries from state latched out of SharedInput.
type Input struct {
	shared  *SharedInput
	latched [MaxPorts]PortState
}

// NewInput creates an input source reading shared.
func NewInput(shared *SharedInput) *Input {
	return &Input{shared: shared}
}

// Poll latches the shared state for the frame.
func (in *Input) Poll() {
	in.latched = in.shared.Read()
}

// State returns the latched value of a control.
func (in *Input) State(port, device, index, id uint32) int16 {
	if port >= MaxPorts {
		return 0
	}
	st := in.latched[port]
	switch device & libretro.DeviceMask {
	case libretro.DeviceJoypad:
		if id == libretro.JoypadMask {
			return int16(st.Buttons & 0xffff)
		}
		if id < 16 && st.Buttons&(1<<id) != 0 {
			return 1
		}
	case libretro.DeviceAnalog:
		switch index {
		case libretro.AnalogIndexLeft, libretro.AnalogIndexRight:
			if id <= libretro.AnalogY {
				return st.Axes[index*2+id]
			}
		case libretro.AnalogIndexButton:
			if id < 16 && st.Buttons&(1<<id) != 0 {
				return 0x7fff
			}
		}
	}
	return 0
}
