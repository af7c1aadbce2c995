package rewind

import (
	"fmt"

	"github.com/amzeratul/retrograde-sub000/logger"
)

// Stater serializes and restores a running core.
type Stater interface {
	Serialize() ([]byte, error)
	Unserialize(data []byte) error
}

// Driver captures states every frameStep frames and steps back through
// them while rewinding.
type Driver struct {
	buf       *Buffer
	log       *logger.Logger
	frameStep int // Capture every N frames
	frameTick int // Frame counter for step timing
	hold      int // Frames the rewind control has been held
	rewinding bool
}

// NewDriver creates a driver with a buffer of bufferSizeMB megabytes.
func NewDriver(bufferSizeMB, frameStep int, log *logger.Logger) (*Driver, error) {
	if bufferSizeMB <= 0 || frameStep <= 0 {
		return nil, fmt.Errorf("invalid rewind settings: %d MB, step %d", bufferSizeMB, frameStep)
	}
	if log == nil {
		log = logger.Nop()
	}
	buf, err := NewBuffer(bufferSizeMB * 1024 * 1024)
	if err != nil {
		return nil, err
	}
	return &Driver{buf: buf, log: log, frameStep: frameStep}, nil
}

// Buffer returns the underlying history.
func (d *Driver) Buffer() *Buffer { return d.buf }

// Capture stores the current state every frameStep calls. Call it after
// each frame.
func (d *Driver) Capture(s Stater) error {
	d.frameTick++
	if d.frameTick < d.frameStep {
		return nil
	}
	d.frameTick = 0

	state, err := s.Serialize()
	if err != nil {
		return fmt.Errorf("rewind capture: %w", err)
	}
	if err := d.buf.Push(state); err != nil {
		d.log.Warn().Err(err).Msg("rewind history restarted")
	}
	return nil
}

// Rewind discards count states and restores the newest one left. When the
// history runs out the oldest state is restored. It returns false when
// nothing was stored.
func (d *Driver) Rewind(s Stater, count int) (bool, error) {
	if d.buf.Len() == 0 || count <= 0 {
		return false, nil
	}
	var state []byte
	for i := 0; i < count; i++ {
		st, ok, err := d.buf.Pop()
		if err != nil {
			return false, err
		}
		if !ok {
			break
		}
		state = st
	}
	if top, ok := d.buf.Peek(); ok {
		state = top
	}
	if err := s.Unserialize(state); err != nil {
		return false, fmt.Errorf("rewind restore: %w", err)
	}
	return true, nil
}

// Hold advances the hold timer for one frame and rewinds by the number of
// steps the hold duration calls for. Releasing resets the timer.
func (d *Driver) Hold(s Stater, held bool) (bool, error) {
	if !held {
		d.hold = 0
		return false, nil
	}
	d.hold++
	n := rewindItemsForHoldDuration(d.hold)
	if n == 0 {
		return false, nil
	}
	return d.Rewind(s, n)
}

// Reset clears the history. Call on game load or state load.
func (d *Driver) Reset() {
	d.buf.Clear()
	d.frameTick = 0
	d.hold = 0
}

// IsRewinding returns whether rewind mode is active.
func (d *Driver) IsRewinding() bool { return d.rewinding }

// SetRewinding sets the rewind mode flag.
func (d *Driver) SetRewinding(v bool) {
	d.rewinding = v
	if !v {
		d.hold = 0
	}
}

// Count returns the number of stored states.
func (d *Driver) Count() int { return d.buf.Len() }

// Close releases the buffer.
func (d *Driver) Close() error { return d.buf.Close() }

// rewindItemsForHoldDuration returns the number of rewind steps to take
// based on how many frames the rewind control has been held, accelerating
// the longer it is held.
//
// Hold Duration (frames) | Items  | Effective rate
// 1 (just pressed)       | 1      | single step
// 2-15 (~0.25s)          | 0 or 1 | ~15/sec (every 4th frame)
// 16-30 (~0.5s)          | 0 or 1 | ~30/sec (every 2nd frame)
// 31-60 (~1s)            | 1      | 60/sec (every frame)
// 61+ (>1s)              | 2      | 120/sec
func rewindItemsForHoldDuration(holdDuration int) int {
	switch {
	case holdDuration <= 0:
		return 0
	case holdDuration == 1:
		return 1
	case holdDuration <= 15:
		if holdDuration%4 == 0 {
			return 1
		}
		return 0
	case holdDuration <= 30:
		if holdDuration%2 == 0 {
			return 1
		}
		return 0
	case holdDuration <= 60:
		return 1
	default:
		return 2
	}
}
