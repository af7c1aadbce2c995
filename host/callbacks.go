package host

import (
	"unsafe"

	"github.com/amzeratul/retrograde-sub000/core"
)

var _ core.Callbacks = (*Host)(nil)

// Environment forwards an environment call to the broker.
func (h *Host) Environment(cmd uint32, data unsafe.Pointer) bool {
	return h.broker.Environment(cmd, data)
}

// VideoRefresh forwards a frame to the video sink.
func (h *Host) VideoRefresh(data uintptr, width, height uint32, pitch uintptr) {
	h.video.Refresh(data, width, height, pitch)
}

// AudioSample forwards one stereo frame to the audio sink.
func (h *Host) AudioSample(left, right int16) {
	h.audio.Sample(left, right)
}

// AudioSampleBatch forwards interleaved stereo frames to the audio sink.
func (h *Host) AudioSampleBatch(data unsafe.Pointer, frames uintptr) uintptr {
	return h.audio.BatchPointer(data, frames)
}

// InputPoll latches input for the frame.
func (h *Host) InputPoll() {
	if h.opts.Input != nil {
		h.opts.Input.Poll()
	}
}

// InputState answers an input query. Without an input source every
// control reads as released.
func (h *Host) InputState(port, device, index, id uint32) int16 {
	if h.opts.Input == nil {
		return 0
	}
	return h.opts.Input.State(port, device, index, id)
}
