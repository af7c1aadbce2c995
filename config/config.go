// Package config holds the host configuration. Values come from built-in
// defaults, then an optional config.json, then RETROGRADE_* environment
// variables, then command line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/afero"
)

// Config is the host configuration.
type Config struct {
	Version int `json:"version"`

	SystemDir     string `json:"systemDir" env:"RETROGRADE_SYSTEM_DIR"`
	SaveDir       string `json:"saveDir" env:"RETROGRADE_SAVE_DIR"`
	StateDir      string `json:"stateDir" env:"RETROGRADE_STATE_DIR"`
	OptionsDir    string `json:"optionsDir" env:"RETROGRADE_OPTIONS_DIR"`
	CoreAssetsDir string `json:"coreAssetsDir" env:"RETROGRADE_CORE_ASSETS_DIR"`
	TempDir       string `json:"tempDir" env:"RETROGRADE_TEMP_DIR"`
	CaptureDir    string `json:"captureDir" env:"RETROGRADE_CAPTURE_DIR"`
	PlaylistDir   string `json:"playlistDir" env:"RETROGRADE_PLAYLIST_DIR"`

	Username string `json:"username" env:"RETROGRADE_USERNAME"`
	Language string `json:"language" env:"RETROGRADE_LANGUAGE"`
	LogLevel string `json:"logLevel" env:"RETROGRADE_LOG_LEVEL"`

	SaveRAMFlushFrames int  `json:"saveRamFlushFrames" env:"RETROGRADE_SAVE_RAM_FLUSH_FRAMES"`
	ScreenshotMaxWidth int  `json:"screenshotMaxWidth" env:"RETROGRADE_SCREENSHOT_MAX_WIDTH"`
	StrictReentrancy   bool `json:"strictReentrancy" env:"RETROGRADE_STRICT_REENTRANCY"`

	Rewind RewindConfig `json:"rewind" envPrefix:"RETROGRADE_REWIND_"`
	Audio  AudioConfig  `json:"audio" envPrefix:"RETROGRADE_AUDIO_"`

	// CoreOptions seeds core option values, key=value pairs.
	CoreOptions map[string]string `json:"coreOptions" env:"RETROGRADE_CORE_OPTIONS" envSeparator:"," envKeyValSeparator:"="`
}

// RewindConfig contains rewind settings
type RewindConfig struct {
	Enabled      bool `json:"enabled" env:"ENABLED"`
	BufferSizeMB int  `json:"bufferSizeMB" env:"BUFFER_MB"`
	FrameStep    int  `json:"frameStep" env:"FRAME_STEP"`
}

// AudioConfig contains audio output settings
type AudioConfig struct {
	SampleRate int     `json:"sampleRate" env:"SAMPLE_RATE"`
	LatencyMS  int     `json:"latencyMs" env:"LATENCY_MS"`
	Volume     float64 `json:"volume" env:"VOLUME"`
	Muted      bool    `json:"muted" env:"MUTED"`
	// CapturePath, when set, records host audio to a WAV file.
	CapturePath string `json:"capturePath" env:"CAPTURE_PATH"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
// Directories are rooted at baseDir.
func DefaultConfig(baseDir string) *Config {
	return &Config{
		Version:            1,
		SystemDir:          filepath.Join(baseDir, systemDir),
		SaveDir:            filepath.Join(baseDir, savesDir),
		StateDir:           filepath.Join(baseDir, statesDir),
		OptionsDir:         filepath.Join(baseDir, optionsDir),
		CoreAssetsDir:      filepath.Join(baseDir, assetsDir),
		TempDir:            filepath.Join(os.TempDir(), AppName, tempDirName),
		CaptureDir:         filepath.Join(baseDir, captureDir),
		PlaylistDir:        filepath.Join(baseDir, playlistDir),
		Username:           "retrograde",
		Language:           "en",
		LogLevel:           "info",
		SaveRAMFlushFrames: 300,
		ScreenshotMaxWidth: 320,
		Rewind:             RewindConfig{
			Enabled:      false,
			BufferSizeMB: 40,
			FrameStep:    1,
		},
		Audio: AudioConfig{
			SampleRate: 48000,
			LatencyMS:  64,
			Volume:     1.0,
		},
		CoreOptions: map[string]string{},
	}
}

// LoadConfig loads path over the defaults. A missing file is not an error.
// Fields absent from the file keep their defaults.
func LoadConfig(fs afero.Fs, path, baseDir string) (*Config, error) {
	cfg := DefaultConfig(baseDir)
	if path == "" {
		return cfg, nil
	}
	if _, err := fs.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err := ReadJSON(fs, path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg.Validate()
	return cfg, nil
}

// SaveConfig saves the configuration atomically
func SaveConfig(fs afero.Fs, path string, cfg *Config) error {
	return AtomicWriteJSON(fs, path, cfg)
}

// ParseEnv overlays RETROGRADE_* environment variables onto cfg. Only
// variables that are set change anything.
func ParseEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate clamps values that would break the host back into range.
func (c *Config) Validate() {
	if c.Rewind.BufferSizeMB < 1 {
		c.Rewind.BufferSizeMB = 1
	}
	if c.Rewind.FrameStep < 1 {
		c.Rewind.FrameStep = 1
	}
	if c.SaveRAMFlushFrames < 1 {
		c.SaveRAMFlushFrames = 1
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = 48000
	}
	if c.Audio.LatencyMS <= 0 {
		c.Audio.LatencyMS = 64
	}
	if c.Audio.Volume < 0 {
		c.Audio.Volume = 0
	}
	if c.Audio.Volume > 1 {
		c.Audio.Volume = 1
	}
	if c.ScreenshotMaxWidth < 0 {
		c.ScreenshotMaxWidth = 0
	}
	if c.CoreOptions == nil {
		c.CoreOptions = map[string]string{}
	}
}

// ParseConfig builds the configuration from the config file, environment and
// flags, in that order of increasing precedence. It returns the positional
// arguments left after flag parsing.
func ParseConfig(afs afero.Fs, fs *flag.FlagSet, args []string) (*Config, []string, error) {
	baseDir, err := GetBaseDir()
	if err != nil {
		return nil, nil, err
	}
	defaultPath := filepath.Join(baseDir, configFile)

	configPath := fs.String("config", defaultPath, "Path to config.json")
	systemDir := fs.String("system", "", "System (BIOS) directory")
	saveDir := fs.String("saves", "", "Save RAM directory")
	logLevel := fs.String("log-level", "", "Log level (trace, debug, info, warn, error)")
	rewind := fs.Bool("rewind", false, "Enable rewind")
	strict := fs.Bool("strict", false, "Panic on core reentrancy violations")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	cfg, err := LoadConfig(afs, *configPath, baseDir)
	if err != nil {
		return nil, nil, err
	}
	if err := ParseEnv(cfg); err != nil {
		return nil, nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "system":
			cfg.SystemDir = *systemDir
		case "saves":
			cfg.SaveDir = *saveDir
		case "log-level":
			cfg.LogLevel = *logLevel
		case "rewind":
			cfg.Rewind.Enabled = *rewind
		case "strict":
			cfg.StrictReentrancy = *strict
		}
	})
	cfg.Validate()
	return cfg, fs.Args(), nil
}
