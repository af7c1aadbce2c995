// Package audio normalizes core audio callbacks into interleaved stereo
// float samples and plays them through oto.
package audio

import (
	"unsafe"

	"github.com/amzeratul/retrograde-sub000/api"
	"github.com/amzeratul/retrograde-sub000/libretro"
)

// FlushThreshold is the number of interleaved values the single sample
// path accumulates before forwarding.
const FlushThreshold = 256

// Normalize maps a signed 16-bit sample to [-1, 1].
func Normalize(s int16) float32 {
	return float32(s) / 32768
}

// Sink receives retro_audio_sample and retro_audio_sample_batch calls.
type Sink struct {
	out       api.AudioSink
	pending   []float32
	scratch   []float32
	rewinding bool
}

// NewSink creates a sink forwarding to out. A nil out discards audio.
func NewSink(out api.AudioSink) *Sink {
	return &Sink{
		out:     out,
		pending: make([]float32, 0, FlushThreshold*2),
	}
}

// SetSourceRate announces the core's sample rate to the output.
func (s *Sink) SetSourceRate(rate float64) {
	if s.out != nil {
		s.out.SetSourceRate(rate)
	}
}

// SetRewinding toggles reversal of batched samples.
func (s *Sink) SetRewinding(on bool) { s.rewinding = on }

// Rewinding reports whether batches are being reversed.
func (s *Sink) Rewinding() bool { return s.rewinding }

// Sample handles a single stereo frame.
func (s *Sink) Sample(left, right int16) {
	s.pending = append(s.pending, Normalize(left), Normalize(right))
	if len(s.pending) >= FlushThreshold {
		s.Flush()
	}
}

// Batch handles interleaved stereo frames and returns how many frames
// were consumed.
func (s *Sink) Batch(data []int16) int {
	frames := len(data) / 2
	if frames == 0 {
		return 0
	}
	s.Flush()

	n := frames * 2
	if cap(s.scratch) < n {
		s.scratch = make([]float32, n)
	}
	buf := s.scratch[:n]
	for i, v := range data[:n] {
		buf[i] = Normalize(v)
	}
	if s.rewinding {
		ReverseFrames(buf)
	}
	s.write(buf)
	return frames
}

// BatchPointer handles a batch given as a native pointer and frame count.
func (s *Sink) BatchPointer(data unsafe.Pointer, frames uintptr) uintptr {
	if data == nil || frames == 0 {
		return 0
	}
	raw := libretro.Bytes(data, int(frames)*4)
	samples := unsafe.Slice((*int16)(unsafe.Pointer(&raw[0])), int(frames)*2)
	return uintptr(s.Batch(samples))
}

// Flush forwards any accumulated single samples.
func (s *Sink) Flush() {
	if len(s.pending) == 0 {
		return
	}
	s.write(s.pending)
	s.pending = s.pending[:0]
}

// Pending returns the number of buffered single sample values.
func (s *Sink) Pending() int { return len(s.pending) }

// Reset drops buffered samples.
func (s *Sink) Reset() {
	s.pending = s.pending[:0]
	s.rewinding = false
}

func (s *Sink) write(buf []float32) {
	if s.out != nil {
		s.out.WriteSamples(buf)
	}
}

// ReverseFrames reverses the order of stereo frames in place, keeping each
// left/right pair intact.
func ReverseFrames(buf []float32) {
	for i, j := 0, len(buf)/2-1; i < j; i, j = i+1, j-1 {
		buf[2*i], buf[2*j] = buf[2*j], buf[2*i]
		buf[2*i+1], buf[2*j+1] = buf[2*j+1], buf[2*i+1]
	}
}

// Tee fans samples out to several sinks.
type Tee []api.AudioSink

// SetSourceRate implements api.AudioSink.
func (t Tee) SetSourceRate(rate float64) {
	for _, s := range t {
		s.SetSourceRate(rate)
	}
}

// WriteSamples implements api.AudioSink.
func (t Tee) WriteSamples(samples []float32) {
	for _, s := range t {
		s.WriteSamples(samples)
	}
}
