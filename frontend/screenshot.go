package frontend

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/amzeratul/retrograde-sub000/config"
	"github.com/amzeratul/retrograde-sub000/savestate"
)

// ErrNoFrame is returned when there is nothing to capture.
var ErrNoFrame = errors.New("no frame to capture")

// ScreenshotManager saves the latest frame as PNG files.
type ScreenshotManager struct {
	fs  afero.Fs
	dir string
	fb  *SharedFramebuffer

	now func() time.Time
}

// NewScreenshotManager creates a manager writing into dir.
func NewScreenshotManager(fs afero.Fs, dir string, fb *SharedFramebuffer) *ScreenshotManager {
	return &ScreenshotManager{fs: fs, dir: dir, fb: fb, now: time.Now}
}

// TakeScreenshot captures the current frame at native size into
// <dir>/<game>/<unix time>.png and returns the path.
func (m *ScreenshotManager) TakeScreenshot(game string) (string, error) {
	img, _, _ := m.fb.Read()
	if img == nil {
		return "", ErrNoFrame
	}
	data, err := savestate.EncodeScreenshot(img, 0)
	if err != nil {
		return "", fmt.Errorf("failed to encode screenshot: %w", err)
	}

	dir := m.dir
	if game != "" {
		dir = filepath.Join(dir, game)
	}
	path := filepath.Join(dir, fmt.Sprintf("%d.png", m.now().Unix()))
	if err := config.AtomicWriteFile(m.fs, path, data); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}
	return path, nil
}
