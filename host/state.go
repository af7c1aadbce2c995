package host

import (
	"fmt"
	"time"

	"github.com/amzeratul/retrograde-sub000/rewind"
	"github.com/amzeratul/retrograde-sub000/savestate"
	"github.com/amzeratul/retrograde-sub000/video"
)

var _ rewind.Stater = (*Host)(nil)

// Serialize returns the core's raw state.
func (h *Host) Serialize() ([]byte, error) {
	if h.state != StateGameLoaded {
		return nil, ErrNoGame
	}
	var data []byte
	err := h.Guarded(func() error {
		size := h.mod.SerializeSize()
		if size == 0 {
			return fmt.Errorf("%w: core reports no state", ErrSerialize)
		}
		data = make([]byte, size)
		if !h.mod.Serialize(data) {
			return ErrSerialize
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Unserialize replaces the core's state with data from Serialize.
func (h *Host) Unserialize(data []byte) error {
	if h.state != StateGameLoaded {
		return ErrNoGame
	}
	return h.Guarded(func() error {
		if len(data) == 0 || !h.mod.Unserialize(data) {
			return fmt.Errorf("%w: core rejected %d bytes", ErrSerialize, len(data))
		}
		return nil
	})
}

// snapshot captures the current state with its metadata.
func (h *Host) snapshot() (*savestate.Container, error) {
	data, err := h.Serialize()
	if err != nil {
		return nil, err
	}
	c := &savestate.Container{
		Timestamp: savestate.Timestamp{
			Epoch:         time.Now().Unix(),
			SecondsPlayed: uint64(h.played / time.Second),
		},
		SaveData: data,
	}
	if f, ok := h.video.LastFrame(); ok {
		png, err := savestate.EncodeScreenshot(video.ToRGBA(f), h.opts.ScreenshotMaxWidth)
		if err != nil {
			h.log.Warn().Err(err).Msg("failed to encode screenshot")
		} else {
			c.Screenshot = savestate.Screenshot{
				AspectRatio: float32(h.av.AspectRatio),
				Rotation:    uint8(h.av.Rotation),
				PNG:         png,
			}
		}
	}
	return c, nil
}

// restore applies a decoded container and restarts the rewind history.
func (h *Host) restore(c *savestate.Container) error {
	if err := h.Unserialize(c.SaveData); err != nil {
		return err
	}
	if c.Timestamp.SecondsPlayed > 0 {
		h.played = time.Duration(c.Timestamp.SecondsPlayed) * time.Second
	}
	if h.rewinder != nil {
		h.rewinder.Reset()
	}
	return nil
}

// SaveState serializes the core into an encoded save state container.
func (h *Host) SaveState() ([]byte, error) {
	c, err := h.snapshot()
	if err != nil {
		return nil, err
	}
	return savestate.Encode(c)
}

// LoadState restores a container produced by SaveState.
func (h *Host) LoadState(b []byte) error {
	if h.state != StateGameLoaded {
		return ErrNoGame
	}
	c, err := savestate.Decode(b)
	if err != nil {
		return err
	}
	return h.restore(c)
}

// SaveSlot saves to slot n of the current game.
func (h *Host) SaveSlot(n int) error {
	c, err := h.snapshot()
	if err != nil {
		return err
	}
	h.slots.SetSlot(n)
	return h.slots.Save(c)
}

// LoadSlot restores slot n of the current game.
func (h *Host) LoadSlot(n int) error {
	if h.state != StateGameLoaded {
		return ErrNoGame
	}
	h.slots.SetSlot(n)
	c, err := h.slots.Load()
	if err != nil {
		return err
	}
	return h.restore(c)
}

// RewindEnabled reports whether the host keeps a rewind history.
func (h *Host) RewindEnabled() bool { return h.rewinder != nil }

// Rewind steps back count captured states. It returns false when there is
// nothing to rewind to.
func (h *Host) Rewind(count int) (bool, error) {
	if h.state != StateGameLoaded {
		return false, ErrNoGame
	}
	if h.rewinder == nil {
		return false, nil
	}
	return h.rewinder.Rewind(h, count)
}

// SetRewinding switches continuous rewind on or off. While on, RunFrame
// steps back through history instead of recording it and audio plays
// reversed.
func (h *Host) SetRewinding(on bool) {
	if h.rewinder == nil {
		return
	}
	h.rewinder.SetRewinding(on)
	h.audio.SetRewinding(on)
	h.broker.SetRewinding(on)
}

// IsRewinding reports whether continuous rewind is on.
func (h *Host) IsRewinding() bool {
	return h.rewinder != nil && h.rewinder.IsRewinding()
}

// RewindCount returns the number of states in the rewind history.
func (h *Host) RewindCount() int {
	if h.rewinder == nil {
		return 0
	}
	return h.rewinder.Count()
}
