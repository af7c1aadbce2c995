package host

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"

	"github.com/amzeratul/retrograde-sub000/config"
	"github.com/amzeratul/retrograde-sub000/libretro"
)

// saveRAM tracks what was last written for the battery backed memory.
type saveRAM struct {
	path string
	hash uint64
}

func (h *Host) saveRAMPath() string {
	if h.opts.Dirs.Save == "" || h.game == nil {
		return ""
	}
	return filepath.Join(h.opts.Dirs.Save, sanitize(h.game.Stem)+".srm")
}

// loadSaveRAM copies a persisted .srm file into the core's save RAM. The
// host only owns persistence when the core exposes the region.
func (h *Host) loadSaveRAM() {
	h.saveRAM = saveRAM{path: h.saveRAMPath()}
	if h.saveRAM.path == "" {
		return
	}
	g, err := h.enter()
	if err != nil {
		return
	}
	defer g.Release()

	mem := h.memory(libretro.MemorySaveRAM)
	if len(mem) == 0 {
		h.saveRAM.path = ""
		return
	}
	data, err := afero.ReadFile(h.fs, h.saveRAM.path)
	if errors.Is(err, os.ErrNotExist) {
		h.saveRAM.hash = xxhash.Sum64(mem)
		return
	}
	if err != nil {
		h.log.Warn().Err(err).Str("path", h.saveRAM.path).Msg("failed to read save RAM")
		return
	}
	if len(data) != len(mem) {
		h.log.Warn().Int("file", len(data)).Int("core", len(mem)).Msg("save RAM size differs, loading what fits")
	}
	copy(mem, data)
	h.saveRAM.hash = xxhash.Sum64(mem)
	h.log.Info().Str("path", h.saveRAM.path).Msg("save RAM loaded")
}

// flushSaveRAM writes save RAM when its contents changed since it was
// loaded or last written.
func (h *Host) flushSaveRAM() error {
	if h.saveRAM.path == "" {
		return nil
	}
	g, err := h.enter()
	if err != nil {
		return err
	}
	defer g.Release()

	mem := h.memory(libretro.MemorySaveRAM)
	if len(mem) == 0 {
		return nil
	}
	sum := xxhash.Sum64(mem)
	if sum == h.saveRAM.hash {
		return nil
	}
	if err := config.AtomicWriteFile(h.fs, h.saveRAM.path, mem); err != nil {
		return fmt.Errorf("failed to write save RAM: %w", err)
	}
	h.saveRAM.hash = sum
	h.log.Debug().Str("path", h.saveRAM.path).Msg("save RAM written")
	return nil
}

// FlushSaveRAM writes save RAM now if it changed.
func (h *Host) FlushSaveRAM() error {
	if h.state != StateGameLoaded {
		return ErrNoGame
	}
	return h.flushSaveRAM()
}
