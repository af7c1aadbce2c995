package host

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"github.com/amzeratul/retrograde-sub000/api"
	"github.com/amzeratul/retrograde-sub000/content"
	"github.com/amzeratul/retrograde-sub000/environ"
	"github.com/amzeratul/retrograde-sub000/libretro"
)

// LoadGame resolves the content at path and hands it to the core. A game
// already loaded is unloaded first. On failure the host stays initialized.
func (h *Host) LoadGame(path string) error {
	switch h.state {
	case StateGameLoaded:
		if err := h.UnloadGame(); err != nil {
			return err
		}
	case StateInitialized, StateGameUnloaded:
	default:
		return fmt.Errorf("cannot load a game in state %s", h.state)
	}

	game, err := h.content.Resolve(path)
	if err != nil {
		return fmt.Errorf("failed to load game: %w", err)
	}

	info := libretro.GameInfo{Path: h.arena.CString(game.Path)}
	if len(game.Data) > 0 {
		h.arena.Pin(&game.Data[0])
		info.Data = uintptr(unsafe.Pointer(&game.Data[0]))
		info.Size = uintptr(len(game.Data))
	}

	h.av = api.AVInfo{PixelFormat: h.video.PixelFormat(), Rotation: h.video.Rotation()}
	h.broker.Bind(game, &h.av)

	g, err := h.enter()
	if err != nil {
		h.broker.Unbind()
		h.arena.Free()
		game.Release()
		return err
	}
	ok := h.mod.LoadGame(&info)
	if !ok {
		g.Release()
		h.broker.Unbind()
		h.vfs.Clear()
		h.arena.Free()
		game.Release()
		h.log.Error().Str("path", path).Msg("core rejected content")
		return fmt.Errorf("%w: %s", ErrLoadGame, path)
	}

	var avi libretro.SystemAVInfo
	h.mod.GetSystemAVInfo(&avi)
	h.av = api.NewAVInfo(avi, h.video.PixelFormat(), h.video.Rotation())
	h.audio.SetSourceRate(h.av.SampleRate)
	for port := uint32(0); port < environ.MaxUsers; port++ {
		h.mod.SetControllerPortDevice(port, libretro.DeviceJoypad)
	}
	h.broker.HWContextReset()
	g.Release()

	h.game = game
	h.frames = 0
	h.played = 0
	h.lastFrame = time.Time{}
	h.state = StateGameLoaded

	if !game.Entry.PersistData {
		game.Release()
	}
	h.slots.SetGame(game.Stem)
	h.loadSaveRAM()
	if h.rewinder != nil {
		h.rewinder.Reset()
	}
	if h.opts.AutoResume && h.slots.HasResume() {
		if c, err := h.slots.LoadResume(); err != nil {
			h.log.Warn().Err(err).Msg("failed to read resume state")
		} else if err := h.restore(c); err != nil {
			h.log.Warn().Err(err).Msg("failed to apply resume state")
		}
	}

	h.log.Info().Str("game", game.Name()).Uint32("width", h.av.BaseWidth).Uint32("height", h.av.BaseHeight).
		Float64("fps", h.av.FPS).Float64("rate", h.av.SampleRate).Msg("game loaded")
	return nil
}

// UnloadGame flushes save RAM and unloads the current game. It is a no-op
// when no game is loaded.
func (h *Host) UnloadGame() error {
	if h.state != StateGameLoaded {
		return nil
	}
	var errs []error
	if h.opts.AutoResume {
		if c, err := h.snapshot(); err != nil {
			errs = append(errs, err)
		} else if err := h.slots.SaveResume(c); err != nil {
			errs = append(errs, err)
		}
	}
	if err := h.flushSaveRAM(); err != nil {
		errs = append(errs, err)
	}

	g, err := h.enter()
	if err != nil {
		return err
	}
	h.broker.HWContextDestroy()
	h.mod.UnloadGame()
	g.Release()

	h.broker.Unbind()
	h.vfs.Clear()
	h.video.Reset()
	h.audio.Reset()
	if h.rewinder != nil {
		h.rewinder.Reset()
		h.rewinder.SetRewinding(false)
	}
	h.game.Release()
	h.game = nil
	h.arena.Free()
	h.saveRAM = saveRAM{}
	h.state = StateGameUnloaded
	h.saveOptions()
	h.log.Info().Msg("game unloaded")
	return errors.Join(errs...)
}

// RunFrame runs the core for one frame.
func (h *Host) RunFrame() error {
	if h.state != StateGameLoaded {
		return ErrNoGame
	}
	g, err := h.enter()
	if err != nil {
		return err
	}
	defer g.Release()

	now := time.Now()
	var delta time.Duration
	if !h.lastFrame.IsZero() {
		delta = now.Sub(h.lastFrame)
		h.played += delta
	}
	h.lastFrame = now
	h.broker.FrameTime(delta.Microseconds())

	rewinding := h.rewinder != nil && h.rewinder.IsRewinding()
	if rewinding {
		if _, err := h.rewinder.Hold(h, true); err != nil {
			h.log.Warn().Err(err).Msg("rewind step failed")
		}
	}

	h.mod.Run()
	h.audio.Flush()
	h.frames++

	if h.rewinder != nil && !rewinding {
		if err := h.rewinder.Capture(h); err != nil {
			h.log.Warn().Err(err).Msg("rewind capture failed")
		}
	}
	if n := h.opts.SaveRAMFlushFrames; n > 0 && h.frames%uint64(n) == 0 {
		if err := h.flushSaveRAM(); err != nil {
			h.log.Warn().Err(err).Msg("save RAM flush failed")
		}
	}
	return nil
}

// Frames returns the number of frames run since the game was loaded.
func (h *Host) Frames() uint64 { return h.frames }

// Reset restarts the loaded game.
func (h *Host) Reset() error {
	if h.state != StateGameLoaded {
		return ErrNoGame
	}
	g, err := h.enter()
	if err != nil {
		return err
	}
	defer g.Release()
	h.mod.Reset()
	if h.rewinder != nil {
		h.rewinder.Reset()
	}
	return nil
}

// AVInfo returns the audio/video description of the loaded game.
func (h *Host) AVInfo() (api.AVInfo, error) {
	if h.state != StateGameLoaded {
		return api.AVInfo{}, ErrNoGame
	}
	return h.av, nil
}

// IsScreenRotated reports whether the core turned the picture a quarter
// turn, swapping its width and height.
func (h *Host) IsScreenRotated() bool {
	return h.av.Rotation%2 == 1
}

// Region returns the region the core runs the game in.
func (h *Host) Region() (uint32, error) {
	var r uint32
	err := h.Guarded(func() error {
		r = h.mod.GetRegion()
		return nil
	})
	return r, err
}

// SetControllerPortDevice binds a libretro device to a port.
func (h *Host) SetControllerPortDevice(port, device uint32) error {
	if h.state != StateGameLoaded && h.state != StateInitialized {
		return ErrNoGame
	}
	return h.Guarded(func() error {
		h.mod.SetControllerPortDevice(port, device)
		return nil
	})
}

// Memory returns a borrowed view of a core memory region, one of the
// libretro.Memory* ids. The view is owned by the core and only valid
// until the game is unloaded. Regions the core does not expose are nil.
func (h *Host) Memory(kind uint32) ([]byte, error) {
	if h.state != StateGameLoaded {
		return nil, ErrNoGame
	}
	var mem []byte
	err := h.Guarded(func() error {
		mem = h.memory(kind)
		return nil
	})
	return mem, err
}

func (h *Host) memory(kind uint32) []byte {
	size := h.mod.GetMemorySize(kind)
	if size == 0 {
		return nil
	}
	return libretro.Bytes(h.mod.GetMemoryData(kind), int(size))
}

// Keyboard forwards a key event to the core.
func (h *Host) Keyboard(down bool, keycode, character uint32, modifiers uint16) {
	if h.state != StateGameLoaded {
		return
	}
	_ = h.Guarded(func() error {
		h.broker.Keyboard(down, keycode, character, modifiers)
		return nil
	})
}

// ShutdownRequested reports whether the core asked to be closed.
func (h *Host) ShutdownRequested() bool { return h.broker.ShutdownRequested() }

// SetFastForward tells the core whether the frontend is fast forwarding.
func (h *Host) SetFastForward(on bool) { h.broker.SetFastForward(on) }

// Game returns the loaded game, or nil.
func (h *Host) Game() *content.GameInfo { return h.game }
