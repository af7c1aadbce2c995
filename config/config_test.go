package config

import (
	"flag"
	"io"
	"testing"

	"github.com/spf13/afero"
)

// TestLoadConfig_Missing tests that a missing file yields defaults
func TestLoadConfig_Missing(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg, err := LoadConfig(fs, "/cfg/config.json", "/base")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.SaveDir != "/base/saves" {
		t.Errorf("SaveDir = %q", cfg.SaveDir)
	}
	if cfg.Rewind.BufferSizeMB != 40 || cfg.Rewind.FrameStep != 1 {
		t.Errorf("rewind defaults: %+v", cfg.Rewind)
	}
}

// TestLoadConfig_PartialFile tests that absent fields keep their defaults
func TestLoadConfig_PartialFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/c.json", []byte(`{"username":"sam","rewind":{"enabled":true}}`), 0644)

	cfg, err := LoadConfig(fs, "/c.json", "/base")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Username != "sam" || !cfg.Rewind.Enabled {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Rewind.BufferSizeMB != 40 || cfg.Language != "en" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

// TestLoadConfig_Corrupt tests that a corrupted file is an error
func TestLoadConfig_Corrupt(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/c.json", []byte(`{not json`), 0644)
	if _, err := LoadConfig(fs, "/c.json", "/base"); err == nil {
		t.Error("expected error")
	}
}

// TestSaveConfig_RoundTrip tests atomic save and reload
func TestSaveConfig_RoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := DefaultConfig("/base")
	cfg.CoreOptions["snes9x_region"] = "pal"
	cfg.Audio.Volume = 0.5

	if err := SaveConfig(fs, "/dir/config.json", cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if ok, _ := afero.Exists(fs, "/dir/config.json.tmp"); ok {
		t.Error("temp file left behind")
	}

	got, err := LoadConfig(fs, "/dir/config.json", "/other")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if got.CoreOptions["snes9x_region"] != "pal" || got.Audio.Volume != 0.5 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.SaveDir != "/base/saves" {
		t.Errorf("SaveDir = %q, want value from file", got.SaveDir)
	}
}

// TestParseEnv tests environment overrides
func TestParseEnv(t *testing.T) {
	t.Setenv("RETROGRADE_USERNAME", "envuser")
	t.Setenv("RETROGRADE_REWIND_BUFFER_MB", "8")
	t.Setenv("RETROGRADE_CORE_OPTIONS", "a=1,b=2")

	cfg := DefaultConfig("/base")
	if err := ParseEnv(cfg); err != nil {
		t.Fatalf("ParseEnv failed: %v", err)
	}
	if cfg.Username != "envuser" || cfg.Rewind.BufferSizeMB != 8 {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.CoreOptions["a"] != "1" || cfg.CoreOptions["b"] != "2" {
		t.Errorf("CoreOptions = %v", cfg.CoreOptions)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("unset variable changed LogLevel to %q", cfg.LogLevel)
	}
}

// TestParseConfig_FlagsWin tests precedence of flags over env and file
func TestParseConfig_FlagsWin(t *testing.T) {
	t.Setenv("RETROGRADE_LOG_LEVEL", "warn")
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/c.json", []byte(`{"logLevel":"error","saveDir":"/file/saves"}`), 0644)

	flags := flag.NewFlagSet("test", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	cfg, rest, err := ParseConfig(fs, flags, []string{"-config", "/c.json", "-log-level", "debug", "-rewind", "core.so", "game.bin"})
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.SaveDir != "/file/saves" {
		t.Errorf("SaveDir = %q, want file value", cfg.SaveDir)
	}
	if !cfg.Rewind.Enabled {
		t.Error("rewind flag not applied")
	}
	if len(rest) != 2 || rest[0] != "core.so" || rest[1] != "game.bin" {
		t.Errorf("rest = %v", rest)
	}
}

// TestValidate tests clamping
func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.Audio.Volume = 3
	cfg.Validate()
	if cfg.Rewind.FrameStep != 1 || cfg.Rewind.BufferSizeMB != 1 || cfg.Audio.Volume != 1 {
		t.Errorf("not clamped: %+v", cfg)
	}
	if cfg.CoreOptions == nil {
		t.Error("CoreOptions should be initialised")
	}
}
