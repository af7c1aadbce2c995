package frontend

import (
	"image"
	"sync"
	"time"

	"github.com/amzeratul/retrograde-sub000/api"
)

// MaxPorts is the number of controller ports polled from the window.
const MaxPorts = 2

// Analog axis slots per port: left x, left y, right x, right y.
const analogAxes = 4

// PortState is the input of one port as seen by the core.
type PortState struct {
	// Buttons is a bitmask of libretro joypad ids.
	Buttons uint32
	// Axes holds analog stick values in libretro range.
	Axes [analogAxes]int16
}

// SharedInput holds controller state written by the ebiten thread and read
// by the emulation goroutine.
type SharedInput struct {
	mu    sync.Mutex
	ports [MaxPorts]PortState
}

// Set updates the state of a port.
func (si *SharedInput) Set(port int, st PortState) {
	if port < 0 || port >= MaxPorts {
		return
	}
	si.mu.Lock()
	si.ports[port] = st
	si.mu.Unlock()
}

// Read returns the current state of all ports.
func (si *SharedInput) Read() [MaxPorts]PortState {
	si.mu.Lock()
	result := si.ports
	si.mu.Unlock()
	return result
}

// SharedFramebuffer holds the last decoded frame written by the emulation
// goroutine and read by Draw. Frames are replaced, never modified, so Draw
// can use the image after Read returns.
type SharedFramebuffer struct {
	mu       sync.Mutex
	img      *image.RGBA
	geometry api.Geometry
	serial   uint64
}

// Update stores img with the geometry it should be shown at.
func (sf *SharedFramebuffer) Update(img *image.RGBA, g api.Geometry) {
	sf.mu.Lock()
	sf.img = img
	sf.geometry = g
	sf.serial++
	sf.mu.Unlock()
}

// Read returns the latest frame, its geometry and a serial that changes
// with every Update.
func (sf *SharedFramebuffer) Read() (img *image.RGBA, g api.Geometry, serial uint64) {
	sf.mu.Lock()
	img, g, serial = sf.img, sf.geometry, sf.serial
	sf.mu.Unlock()
	return
}

// Clear drops the current frame.
func (sf *SharedFramebuffer) Clear() {
	sf.mu.Lock()
	sf.img = nil
	sf.geometry = api.Geometry{}
	sf.serial++
	sf.mu.Unlock()
}

// EmuControl manages pause/resume/stop coordination between
// the ebiten thread and the emulation goroutine.
type EmuControl struct {
	mu       sync.Mutex
	pauseReq bool
	paused   bool
	running  bool
	stopReq  bool
	ackCh    chan struct{}
}

// NewEmuControl creates a new emulation control.
func NewEmuControl() *EmuControl {
	return &EmuControl{
		running: true,
		ackCh:   make(chan struct{}, 1),
	}
}

// RequestPause asks the emulation goroutine to pause and blocks
// until it acknowledges the pause.
func (ec *EmuControl) RequestPause() {
	ec.mu.Lock()
	if ec.paused || ec.pauseReq || !ec.running {
		ec.mu.Unlock()
		return
	}
	ec.pauseReq = true
	ec.mu.Unlock()

	<-ec.ackCh
}

// RequestResume tells the emulation goroutine to resume.
func (ec *EmuControl) RequestResume() {
	ec.mu.Lock()
	ec.pauseReq = false
	ec.paused = false
	ec.mu.Unlock()
}

// CheckPause is called by the emulation goroutine between frames.
// If a pause has been requested, it sends an acknowledgment and
// waits until resumed or stopped. Returns false if the goroutine
// should exit.
func (ec *EmuControl) CheckPause() bool {
	ec.mu.Lock()
	if !ec.running || ec.stopReq {
		ec.mu.Unlock()
		return false
	}
	if !ec.pauseReq {
		ec.mu.Unlock()
		return true
	}

	ec.paused = true
	ec.mu.Unlock()

	select {
	case ec.ackCh <- struct{}{}:
	default:
	}

	for {
		ec.mu.Lock()
		if !ec.running || ec.stopReq {
			ec.mu.Unlock()
			return false
		}
		if !ec.pauseReq {
			ec.paused = false
			ec.mu.Unlock()
			return true
		}
		ec.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
}

// Stop signals the emulation goroutine to exit. A pending RequestPause is
// released.
func (ec *EmuControl) Stop() {
	ec.mu.Lock()
	ec.running = false
	ec.stopReq = true
	ec.pauseReq = false
	ec.mu.Unlock()

	select {
	case ec.ackCh <- struct{}{}:
	default:
	}
}

// ShouldRun returns true if the goroutine should continue running.
func (ec *EmuControl) ShouldRun() bool {
	ec.mu.Lock()
	r := ec.running && !ec.stopReq
	ec.mu.Unlock()
	return r
}

// IsPaused returns true if the emulation goroutine is currently paused.
func (ec *EmuControl) IsPaused() bool {
	ec.mu.Lock()
	p := ec.paused
	ec.mu.Unlock()
	return p
}
