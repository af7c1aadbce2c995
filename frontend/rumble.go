package frontend

import (
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/amzeratul/retrograde-sub000/api"
	"github.com/amzeratul/retrograde-sub000/libretro"
)

// Low strengths are below what gamepad motors can actuate, so any non-zero
// request is raised to this floor.
const minRumbleMagnitude = 0.40

// rumblePulse is how long each vibration request lasts. Apply renews it
// every tick while a motor is on.
const rumblePulse = 100 * time.Millisecond

var _ api.RumbleSink = (*Rumble)(nil)

type motors struct {
	strong, weak uint16
}

// Rumble records motor strengths set by the core and drives gamepads from
// the ebiten thread.
type Rumble struct {
	mu    sync.Mutex
	ports [MaxPorts]motors
}

// SetRumble implements api.RumbleSink.
func (r *Rumble) SetRumble(port, effect uint32, strength uint16) bool {
	if port >= MaxPorts {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	switch effect {
	case libretro.RumbleStrong:
		r.ports[port].strong = strength
	case libretro.RumbleWeak:
		r.ports[port].weak = strength
	default:
		return false
	}
	return true
}

// Magnitudes returns the vibration magnitudes for a port in [0, 1].
func (r *Rumble) Magnitudes(port int) (strong, weak float64) {
	if port < 0 || port >= MaxPorts {
		return 0, 0
	}
	r.mu.Lock()
	m := r.ports[port]
	r.mu.Unlock()
	return magnitude(m.strong), magnitude(m.weak)
}

// Stop turns every motor off.
func (r *Rumble) Stop() {
	r.mu.Lock()
	r.ports = [MaxPorts]motors{}
	r.mu.Unlock()
}

// Apply vibrates the gamepad assigned to each port.
func (r *Rumble) Apply(gamepads []ebiten.GamepadID) {
	for port, id := range gamepads {
		if port >= MaxPorts {
			break
		}
		strong, weak := r.Magnitudes(port)
		if strong == 0 && weak == 0 {
			continue
		}
		ebiten.VibrateGamepad(id, &ebiten.VibrateGamepadOptions{
			Duration:        rumblePulse,
			StrongMagnitude: strong,
			WeakMagnitude:   weak,
		})
	}
}

func magnitude(strength uint16) float64 {
	if strength == 0 {
		return 0
	}
	m := float64(strength) / 65535.0
	if m < minRumbleMagnitude {
		m = minRumbleMagnitude
	}
	return m
}
