// Package host drives a libretro core: it owns the module, wires the
// environment broker, frame sinks, option store and virtual filesystem to
// it, and exposes the load, run and serialize lifecycle.
package host

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/amzeratul/retrograde-sub000/api"
	"github.com/amzeratul/retrograde-sub000/audio"
	"github.com/amzeratul/retrograde-sub000/content"
	"github.com/amzeratul/retrograde-sub000/core"
	"github.com/amzeratul/retrograde-sub000/environ"
	"github.com/amzeratul/retrograde-sub000/libretro"
	"github.com/amzeratul/retrograde-sub000/logger"
	"github.com/amzeratul/retrograde-sub000/options"
	"github.com/amzeratul/retrograde-sub000/rewind"
	"github.com/amzeratul/retrograde-sub000/savestate"
	"github.com/amzeratul/retrograde-sub000/vfs"
	"github.com/amzeratul/retrograde-sub000/video"
)

var (
	// ErrNoGame is returned by operations that need a loaded game.
	ErrNoGame = errors.New("no game loaded")

	// ErrLoadGame is returned when the core refuses the content.
	ErrLoadGame = errors.New("core failed to load game")

	// ErrSerialize is returned when the core cannot save or restore state.
	ErrSerialize = errors.New("core state serialization failed")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("host closed")
)

// State is the lifecycle position of a host.
type State int

const (
	StateUnloaded State = iota
	StateInitialized
	StateGameLoaded
	StateGameUnloaded
	StateDeinitialized
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateInitialized:
		return "initialized"
	case StateGameLoaded:
		return "game loaded"
	case StateGameUnloaded:
		return "game unloaded"
	case StateDeinitialized:
		return "deinitialized"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configures a host. Zero values select working defaults: the
// process-wide registry, the OS filesystem and no output sinks.
type Options struct {
	Log      *logger.Logger
	Registry *core.Registry
	FS       afero.Fs

	Dirs       environ.Dirs
	StateDir   string
	OptionsDir string
	TempDir    string
	Username   string
	Language   string

	// CoreOptions seeds option values before the core declares them.
	CoreOptions map[string]string

	Video    api.TextureSink
	HW       api.HWRenderer
	Audio    api.AudioSink
	Input    api.InputSource
	Rumble   api.RumbleSink
	LED      api.LEDSink
	Notifier api.Notifier

	// SaveRAMFlushFrames is how often, in frames, save RAM is checked for
	// changes and written out. Zero disables periodic flushing.
	SaveRAMFlushFrames int

	// ScreenshotMaxWidth bounds save state thumbnails. Zero keeps the
	// native size.
	ScreenshotMaxWidth int

	// RewindBufferMB enables rewind with a history of that many megabytes.
	RewindBufferMB  int
	RewindFrameStep int

	// AutoResume restores the resume state on LoadGame and writes it on
	// UnloadGame.
	AutoResume bool
}

// Host owns one core module for its whole life.
type Host struct {
	opts     Options
	log      *logger.Logger
	mod      core.Module
	registry *core.Registry
	fs       afero.Fs

	info     api.SystemInfo
	state    State
	broker   *environ.Broker
	video    *video.Sink
	audio    *audio.Sink
	options  *options.Store
	vfs      *vfs.FS
	content  *content.Resolver
	slots    *savestate.Slots
	rewinder *rewind.Driver
	arena    *libretro.Arena

	game      *content.GameInfo
	av        api.AVInfo
	saveRAM   saveRAM
	frames    uint64
	played    time.Duration
	lastFrame time.Time
}

// Load opens the core library at path and creates a host for it.
func Load(path string, opts Options) (*Host, error) {
	mod, err := core.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open core: %w", err)
	}
	if opts.Dirs.LibretroPath == "" {
		opts.Dirs.LibretroPath = path
	}
	return New(mod, opts)
}

// New takes ownership of mod, checks its API version and initializes it.
// On error mod has been closed.
func New(mod core.Module, opts Options) (*Host, error) {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.Registry == nil {
		opts.Registry = core.DefaultRegistry()
	}
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	if opts.RewindFrameStep <= 0 {
		opts.RewindFrameStep = 1
	}

	h := &Host{
		opts:     opts,
		log:      opts.Log.Module("host"),
		mod:      mod,
		registry: opts.Registry,
		fs:       opts.FS,
		arena:    libretro.NewArena(),
	}

	g, err := h.enter()
	if err != nil {
		_ = mod.Close()
		return nil, err
	}
	v := mod.APIVersion()
	g.Release()
	if v != libretro.APIVersion {
		_ = mod.Close()
		return nil, fmt.Errorf("%w: core reports %d, host implements %d", core.ErrIncompatibleVersion, v, libretro.APIVersion)
	}

	if err := h.init(); err != nil {
		_ = mod.Close()
		return nil, err
	}
	return h, nil
}

func (h *Host) init() error {
	h.video = video.NewSink(h.opts.Video, h.opts.HW, h.opts.Log.Module("video"))
	h.audio = audio.NewSink(h.opts.Audio)
	h.vfs = vfs.New(h.fs, h.opts.Log.Module("vfs"))
	h.content = content.NewResolver(h.fs, h.opts.TempDir, 4, h.opts.Log.Module("content"))
	h.content.SetVirtual(h.vfs)
	h.slots = savestate.NewSlots(h.fs, h.opts.StateDir, h.opts.Notifier)
	h.options = options.NewStore()

	if h.opts.RewindBufferMB > 0 {
		d, err := rewind.NewDriver(h.opts.RewindBufferMB, h.opts.RewindFrameStep, h.opts.Log.Module("rewind"))
		if err != nil {
			return err
		}
		h.rewinder = d
	}

	h.broker = environ.New(environ.Deps{
		Log:      h.opts.Log.Module("environ"),
		Dirs:     h.opts.Dirs,
		Username: h.opts.Username,
		Language: h.opts.Language,
		Video:    h.video,
		Audio:    h.audio,
		Options:  h.options,
		VFS:      h.vfs,
		Content:  h.content,
		Rumble:   h.opts.Rumble,
		LED:      h.opts.LED,
		Notifier: h.opts.Notifier,
		Caller:   h.mod,
	})

	g, err := h.enter()
	if err != nil {
		return err
	}
	defer g.Release()

	var si libretro.SystemInfo
	h.mod.GetSystemInfo(&si)
	h.info = api.SystemInfo{
		LibraryName:     libretro.GoString(si.LibraryName),
		LibraryVersion:  libretro.GoString(si.LibraryVersion),
		ValidExtensions: libretro.GoString(si.ValidExtensions),
		NeedFullPath:    si.NeedFullpath,
		BlockExtract:    si.BlockExtract,
	}
	h.content.SetDescriptors(content.Set{content.NewDescriptor(h.info.ValidExtensions, h.info.NeedFullPath, false)})

	if p := h.optionsPath(); p != "" {
		if err := h.options.Load(h.fs, p); err != nil {
			h.log.Warn().Err(err).Msg("ignoring saved core options")
		}
	}
	h.options.Seed(h.opts.CoreOptions)

	h.mod.SetEnvironment(h.registry)
	h.mod.SetVideoRefresh(h.registry)
	h.mod.SetAudioSample(h.registry)
	h.mod.SetAudioSampleBatch(h.registry)
	h.mod.SetInputPoll(h.registry)
	h.mod.SetInputState(h.registry)
	h.mod.Init()

	h.state = StateInitialized
	h.log.Info().Str("core", h.info.LibraryName).Str("version", h.info.LibraryVersion).
		Str("extensions", h.info.ValidExtensions).Msg("core initialized")
	return nil
}

// enter makes h the active instance for one call into the core.
func (h *Host) enter() (*core.Guard, error) {
	return h.registry.Acquire(h)
}

// Guarded runs fn with h active. Use it for calls into core function
// pointers made outside RunFrame, such as disk control.
func (h *Host) Guarded(fn func() error) error {
	if h.state == StateDeinitialized {
		return ErrClosed
	}
	g, err := h.enter()
	if err != nil {
		return err
	}
	defer g.Release()
	return fn()
}

func (h *Host) optionsPath() string {
	if h.opts.OptionsDir == "" || h.info.LibraryName == "" {
		return ""
	}
	return filepath.Join(h.opts.OptionsDir, sanitize(h.info.LibraryName)+".json")
}

func (h *Host) saveOptions() {
	p := h.optionsPath()
	if p == "" || h.options.Len() == 0 {
		return
	}
	if err := h.options.Save(h.fs, p); err != nil {
		h.log.Warn().Err(err).Msg("failed to save core options")
	}
}

// State returns the lifecycle state.
func (h *Host) State() State { return h.state }

// SystemInfo returns what the core reported about itself.
func (h *Host) SystemInfo() api.SystemInfo { return h.info }

// Broker returns the environment broker.
func (h *Host) Broker() *environ.Broker { return h.broker }

// Options returns the core option store.
func (h *Host) Options() *options.Store { return h.options }

// VFS returns the virtual filesystem offered to the core.
func (h *Host) VFS() *vfs.FS { return h.vfs }

// Slots returns the save state slot manager.
func (h *Host) Slots() *savestate.Slots { return h.slots }

// Video returns the video sink.
func (h *Host) Video() *video.Sink { return h.video }

// SetOption changes a core option. Values the option does not allow are
// rejected.
func (h *Host) SetOption(key, value string) bool {
	if !h.options.Set(key, value) {
		return false
	}
	if h.state == StateInitialized || h.state == StateGameLoaded {
		if g, err := h.enter(); err == nil {
			h.broker.OptionsChanged()
			g.Release()
		}
	}
	return true
}

// Close unloads any game, deinitializes the core and closes the module.
// It is safe to call more than once.
func (h *Host) Close() error {
	if h.state == StateDeinitialized || h.state == StateUnloaded {
		return nil
	}
	var errs []error
	if err := h.UnloadGame(); err != nil {
		errs = append(errs, err)
	}

	g, err := h.enter()
	if err != nil {
		return err
	}
	h.mod.Deinit()
	g.Release()

	h.broker.PerfLog()
	h.saveOptions()
	h.state = StateDeinitialized
	if err := h.mod.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close core: %w", err))
	}
	h.broker.Close()
	h.vfs.Close()
	h.content.Close()
	if h.rewinder != nil {
		if err := h.rewinder.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	h.arena.Free()
	h.log.Info().Str("core", h.info.LibraryName).Msg("core closed")
	return errors.Join(errs...)
}

func sanitize(name string) string {
	out := []rune(name)
	for i, r := range out {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			out[i] = '_'
		}
	}
	return string(out)
}
