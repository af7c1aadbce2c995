// Package api declares the services a core host consumes from the
// surrounding application: where frames, audio and rumble go, and where
// input comes from.
package api

import (
	"time"

	"github.com/amzeratul/retrograde-sub000/libretro"
)

// TextureSink receives video output. Software frames are borrowed: the
// pixel slice is only valid during the call.
type TextureSink interface {
	// UploadFrame updates the output texture from a software frame.
	UploadFrame(f Frame)

	// PresentShared shows a hardware rendered frame. The texture is locked
	// for the duration of the call.
	PresentShared(tex SharedTexture, g Geometry)
}

// SharedTexture is a GPU resource shared between the frame sink and the
// platform interop layer. Access is bracketed by Lock and Unlock.
type SharedTexture interface {
	Lock()
	Unlock()
}

// HWRenderer provides hardware rendering contexts to cores.
type HWRenderer interface {
	// Supports reports whether a context of the given type and version
	// can be created.
	Supports(ctx libretro.HWContextType, major, minor uint32) bool

	// CurrentFramebuffer returns the framebuffer object the core renders to.
	CurrentFramebuffer() uintptr

	// ProcAddress resolves a graphics API symbol.
	ProcAddress(sym string) uintptr

	// SharedTexture returns the texture backing the core's framebuffer.
	SharedTexture() SharedTexture
}

// AudioSink plays interleaved stereo float samples. Writes never block.
type AudioSink interface {
	// SetSourceRate sets the rate samples are produced at.
	SetSourceRate(rate float64)

	// WriteSamples queues interleaved stereo samples in [-1, 1].
	WriteSamples(samples []float32)
}

// InputSource answers input queries from cores.
type InputSource interface {
	// Poll latches the current input state.
	Poll()

	// State returns the latched value for a libretro device, index and id.
	State(port, device, index, id uint32) int16
}

// RumbleSink drives force feedback.
type RumbleSink interface {
	SetRumble(port uint32, effect uint32, strength uint16) bool
}

// LEDSink mirrors LED state reported by cores.
type LEDSink interface {
	SetLED(led, state int)
}

// Notifier displays messages cores ask the frontend to show.
type Notifier interface {
	Notify(msg string, d time.Duration, level int)
}
