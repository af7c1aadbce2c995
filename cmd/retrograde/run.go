package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/amzeratul/retrograde-sub000/api"
	"github.com/amzeratul/retrograde-sub000/audio"
	"github.com/amzeratul/retrograde-sub000/config"
	"github.com/amzeratul/retrograde-sub000/core"
	"github.com/amzeratul/retrograde-sub000/environ"
	"github.com/amzeratul/retrograde-sub000/frontend"
	"github.com/amzeratul/retrograde-sub000/host"
	"github.com/amzeratul/retrograde-sub000/logger"
)

var errUsage = errors.New("expected a core library and a content path")

// runFlags are the command line options that only make sense for this
// binary.
type runFlags struct {
	Headless   bool
	Frames     uint64
	Throttle   bool
	AutoResume bool
}

// flagValues holds what registerFlags bound. Values are read after Parse.
type flagValues struct {
	headless   *bool
	frames     *uint64
	throttle   *bool
	autoResume *bool
}

// registerFlags adds the binary's own flags to fs.
func registerFlags(fs *flag.FlagSet) flagValues {
	return flagValues{
		headless:   fs.Bool("headless", false, "Run without a window or audio device"),
		frames:     fs.Uint64("frames", 0, "Stop after this many frames (0 runs until closed)"),
		throttle:   fs.Bool("throttle", false, "Pace headless runs at the core's frame rate"),
		autoResume: fs.Bool("resume", false, "Resume where the last session left off"),
	}
}

func (v flagValues) get() runFlags {
	return runFlags{
		Headless:   *v.headless,
		Frames:     *v.frames,
		Throttle:   *v.throttle,
		AutoResume: *v.autoResume,
	}
}

// sinks are the audio outputs opened for a run.
type sinks struct {
	output  *audio.Output
	capture *audio.Capture
	file    io.Closer
}

// openAudio opens the audio device unless headless and the WAV capture
// when configured. A missing audio device is not fatal.
func openAudio(fs afero.Fs, cfg *config.Config, headless bool, log *logger.Logger) (api.AudioSink, *sinks, error) {
	s := &sinks{}
	var tee audio.Tee
	if !headless {
		out, err := audio.NewOutput(audio.OutputConfig{
			SampleRate: cfg.Audio.SampleRate,
			Latency:    time.Duration(cfg.Audio.LatencyMS) * time.Millisecond,
			Volume:     cfg.Audio.Volume,
			Muted:      cfg.Audio.Muted,
		}, log.Module("audio"))
		if err != nil {
			log.Warn().Err(err).Msg("audio initialization failed")
		} else {
			s.output = out
			tee = append(tee, out)
		}
	}
	if cfg.Audio.CapturePath != "" {
		f, err := fs.Create(cfg.Audio.CapturePath)
		if err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("failed to create audio capture: %w", err)
		}
		s.file = f
		s.capture = audio.NewCapture(f, log.Module("capture"))
		tee = append(tee, s.capture)
	}
	switch len(tee) {
	case 0:
		return nil, s, nil
	case 1:
		return tee[0], s, nil
	default:
		return tee, s, nil
	}
}

// Close stops playback and finishes the capture file.
func (s *sinks) Close() error {
	var errs []error
	if s.output != nil {
		errs = append(errs, s.output.Close())
	}
	if s.capture != nil {
		errs = append(errs, s.capture.Close())
	}
	if s.file != nil {
		errs = append(errs, s.file.Close())
	}
	return errors.Join(errs...)
}

// hostOptions maps the configuration onto host options.
func hostOptions(cfg *config.Config, fs afero.Fs, log *logger.Logger, autoResume bool) host.Options {
	opts := host.Options{
		Log:      log,
		Registry: core.NewRegistry(cfg.StrictReentrancy),
		FS:       fs,
		Dirs:     environ.Dirs{
			System:     cfg.SystemDir,
			Save:       cfg.SaveDir,
			CoreAssets: cfg.CoreAssetsDir,
			Playlist:   cfg.PlaylistDir,
		},
		StateDir:           cfg.StateDir,
		OptionsDir:         cfg.OptionsDir,
		TempDir:            cfg.TempDir,
		Username:           cfg.Username,
		Language:           cfg.Language,
		CoreOptions:        cfg.CoreOptions,
		SaveRAMFlushFrames: cfg.SaveRAMFlushFrames,
		ScreenshotMaxWidth: cfg.ScreenshotMaxWidth,
		RewindFrameStep:    cfg.Rewind.FrameStep,
		AutoResume:         autoResume,
	}
	if cfg.Rewind.Enabled {
		opts.RewindBufferMB = cfg.Rewind.BufferSizeMB
	}
	return opts
}

func run(ctx context.Context, cfg *config.Config, rf runFlags, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	corePath, contentPath := args[0], args[1]

	log := logger.NewConsole(logger.ParseLevel(cfg.LogLevel), "", false)
	fs := afero.NewOsFs()
	if err := config.EnsureDirectories(fs, cfg); err != nil {
		return err
	}

	audioSink, s, err := openAudio(fs, cfg, rf.Headless, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close audio")
		}
	}()

	opts := hostOptions(cfg, fs, log, rf.AutoResume)
	opts.Audio = audioSink
	opts.Dirs.FileBrowser = filepath.Dir(contentPath)

	var window *frontend.Window
	if rf.Headless {
		opts.Notifier = frontend.NewNotification(log.Module("core"))
	} else {
		window = frontend.NewWindow(log.Module("window"))
		opts.Video = window.Texture
		opts.Input = window.Input
		opts.Rumble = window.Rumble
		opts.Notifier = window.Notification
	}

	h, err := host.Load(corePath, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := h.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close core")
		}
	}()
	if err := h.LoadGame(contentPath); err != nil {
		return err
	}

	loop := frontend.NewLoop(h, log.Module("loop"))
	loop.MaxFrames = rf.Frames

	if window == nil {
		loop.Throttle = rf.Throttle
		start := time.Now()
		err := loop.Run(ctx)
		log.Info().Uint64("frames", h.Frames()).Dur("elapsed", time.Since(start)).Msg("headless run finished")
		return err
	}

	if s.output != nil {
		loop.AudioFill = s.output.Fill
	}
	if cfg.CaptureDir != "" {
		window.Screenshots = frontend.NewScreenshotManager(fs, cfg.CaptureDir, window.Framebuffer)
	}
	if g := h.Game(); g != nil {
		window.GameName = g.Stem
	}
	go func() {
		<-ctx.Done()
		loop.Control().Stop()
	}()
	return window.Run(h.SystemInfo().LibraryName, loop)
}
