package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"testing"

	"github.com/spf13/afero"

	"github.com/amzeratul/retrograde-sub000/audio"
	"github.com/amzeratul/retrograde-sub000/config"
	"github.com/amzeratul/retrograde-sub000/logger"
)

// TestRun_Usage tests that missing positional arguments are a usage error
func TestRun_Usage(t *testing.T) {
	cfg := config.DefaultConfig(t.TempDir())
	for _, args := range [][]string{nil, {"core.so"}, {"core.so", "game.bin", "extra"}} {
		if err := run(context.Background(), cfg, runFlags{Headless: true}, args); !errors.Is(err, errUsage) {
			t.Errorf("args %v: expected errUsage, got %v", args, err)
		}
	}
}

// TestRegisterFlags tests that the binary's flags parse alongside the
// config flags
func TestRegisterFlags(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	fs := flag.NewFlagSet("retrograde", flag.ContinueOnError)
	v := registerFlags(fs)
	cfg, args, err := config.ParseConfig(afero.NewMemMapFs(), fs, []string{
		"-headless", "-frames", "120", "-resume", "-rewind", "core.so", "game.bin",
	})
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	rf := v.get()
	if !rf.Headless || rf.Frames != 120 || !rf.AutoResume || rf.Throttle {
		t.Fatalf("unexpected flags %+v", rf)
	}
	if !cfg.Rewind.Enabled {
		t.Fatal("expected rewind enabled from config flags")
	}
	if len(args) != 2 || args[0] != "core.so" || args[1] != "game.bin" {
		t.Fatalf("unexpected args %v", args)
	}
}

// TestHostOptions tests the mapping from configuration to host options
func TestHostOptions(t *testing.T) {
	cfg := config.DefaultConfig("/base")
	cfg.StrictReentrancy = true
	cfg.CoreOptions = map[string]string{"fake_speed": "fast"}

	opts := hostOptions(cfg, afero.NewMemMapFs(), logger.Nop(), true)
	if opts.Dirs.System != cfg.SystemDir || opts.Dirs.Save != cfg.SaveDir || opts.Dirs.CoreAssets != cfg.CoreAssetsDir || opts.Dirs.Playlist != cfg.PlaylistDir {
		t.Fatalf("directories not mapped: %+v", opts.Dirs)
	}
	if opts.StateDir != cfg.StateDir || opts.OptionsDir != cfg.OptionsDir || opts.TempDir != cfg.TempDir {
		t.Fatal("state, options or temp directory not mapped")
	}
	if opts.RewindBufferMB != 0 {
		t.Fatalf("rewind disabled in config, got %d MB", opts.RewindBufferMB)
	}
	if !opts.AutoResume {
		t.Fatal("expected AutoResume")
	}
	if opts.CoreOptions["fake_speed"] != "fast" {
		t.Fatal("core options not mapped")
	}
	if opts.Registry == nil {
		t.Fatal("expected a registry")
	}

	cfg.Rewind.Enabled = true
	if opts := hostOptions(cfg, afero.NewMemMapFs(), logger.Nop(), false); opts.RewindBufferMB != cfg.Rewind.BufferSizeMB {
		t.Fatalf("expected %d MB rewind, got %d", cfg.Rewind.BufferSizeMB, opts.RewindBufferMB)
	}
}

// TestOpenAudio_Headless tests that headless runs only open the capture
func TestOpenAudio_Headless(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := config.DefaultConfig("/base")

	sink, s, err := openAudio(fs, cfg, true, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if sink != nil || s.output != nil {
		t.Fatal("headless without capture should have no sink")
	}

	cfg.Audio.CapturePath = "/capture.wav"
	sink, s, err = openAudio(fs, cfg, true, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sink.(*audio.Capture); !ok {
		t.Fatalf("expected the capture as the only sink, got %T", sink)
	}
	sink.SetSourceRate(32000)
	sink.WriteSamples([]float32{0, 0, 0.5, -0.5})
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := afero.ReadFile(fs, "/capture.wav")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) {
		t.Fatal("capture is not a WAV file")
	}
}
