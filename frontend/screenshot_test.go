package frontend

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/amzeratul/retrograde-sub000/api"
)

func TestScreenshotManager_TakeScreenshot(t *testing.T) {
	fs := afero.NewMemMapFs()
	fb := &SharedFramebuffer{}
	m := NewScreenshotManager(fs, "/captures", fb)
	m.now = func() time.Time { return time.Unix(1700000000, 0) }

	if _, err := m.TakeScreenshot("game"); !errors.Is(err, ErrNoFrame) {
		t.Fatalf("expected ErrNoFrame, got %v", err)
	}

	fb.Update(image.NewRGBA(image.Rect(0, 0, 8, 4)), api.Geometry{Width: 8, Height: 4})

	path, err := m.TakeScreenshot("game")
	if err != nil {
		t.Fatalf("TakeScreenshot failed: %v", err)
	}
	if path != "/captures/game/1700000000.png" {
		t.Fatalf("unexpected path %q", path)
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 4 {
		t.Fatalf("expected 8x4, got %v", img.Bounds())
	}

	path, err = m.TakeScreenshot("")
	if err != nil {
		t.Fatal(err)
	}
	if path != "/captures/1700000000.png" {
		t.Fatalf("unexpected path %q", path)
	}
}
