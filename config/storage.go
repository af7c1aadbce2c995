package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"
)

// AppName is the data directory name under the platform's data home.
const AppName = "retrograde"

const (
	configFile  = "config.json"
	systemDir   = "system"
	savesDir    = "saves"
	statesDir   = "states"
	optionsDir  = "options"
	assetsDir   = "assets"
	tempDirName = "tmp"
	captureDir  = "captures"
	playlistDir = "playlists"
)

// GetBaseDir returns the base directory for application data. Example paths:
// - macOS: ~/Library/Application Support/retrograde
// - Linux: ~/.local/share/retrograde
// - Windows: %APPDATA%/retrograde
func GetBaseDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(home, "Library", "Application Support", AppName)
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		baseDir = filepath.Join(appData, AppName)
	default: // Linux and other Unix-like systems
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome != "" {
			baseDir = filepath.Join(dataHome, AppName)
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			baseDir = filepath.Join(home, ".local", "share", AppName)
		}
	}

	return baseDir, nil
}

// GetConfigPath returns the full path to config.json
func GetConfigPath() (string, error) {
	baseDir, err := GetBaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(baseDir, configFile), nil
}

// EnsureDirectories creates every directory the config points at
func EnsureDirectories(fs afero.Fs, cfg *Config) error {
	dirs := []string{cfg.SystemDir, cfg.SaveDir, cfg.StateDir, cfg.OptionsDir, cfg.CoreAssetsDir, cfg.TempDir}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// AtomicWriteFile writes data to path through a temporary file and a rename,
// so readers never see a partially-written file.
func AtomicWriteFile(fs afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempFile := path + ".tmp"
	if err := afero.WriteFile(fs, tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := fs.Rename(tempFile, path); err != nil {
		fs.Remove(tempFile) // Clean up on failure
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// AtomicWriteJSON writes data to a JSON file atomically.
func AtomicWriteJSON(fs afero.Fs, path string, data any) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return AtomicWriteFile(fs, path, jsonData)
}

// ReadJSON reads and unmarshals a JSON file
func ReadJSON(fs afero.Fs, path string, data any) error {
	jsonData, err := afero.ReadFile(fs, path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(jsonData, data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}
