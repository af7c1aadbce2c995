package frontend

import (
	"math"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/amzeratul/retrograde-sub000/api"
	"github.com/amzeratul/retrograde-sub000/logger"
	"github.com/amzeratul/retrograde-sub000/video"
)

var _ api.TextureSink = (*Texture)(nil)

// Texture is the window's frame sink. Frames arrive on the emulation
// goroutine, are decoded to RGBA there and picked up by Draw.
type Texture struct {
	fb  *SharedFramebuffer
	log *logger.Logger

	hwWarned atomic.Bool
}

// NewTexture creates a frame sink publishing to fb.
func NewTexture(fb *SharedFramebuffer, log *logger.Logger) *Texture {
	if log == nil {
		log = logger.Nop()
	}
	return &Texture{fb: fb, log: log}
}

// UploadFrame decodes a software frame for the window.
func (t *Texture) UploadFrame(f api.Frame) {
	if f.Width <= 0 || f.Height <= 0 || f.Format.BytesPerPixel() == 0 {
		return
	}
	t.fb.Update(video.ToRGBA(f), f.Display)
}

// PresentShared acknowledges a hardware rendered frame. The caller holds
// the texture lock. The window has no access to the core's GPU context, so
// the frame is dropped.
func (t *Texture) PresentShared(_ api.SharedTexture, g api.Geometry) {
	if t.hwWarned.CompareAndSwap(false, true) {
		t.log.Warn().Int("width", g.Width).Int("height", g.Height).Msg("hardware frames are not shown by this window")
	}
}

// FramebufferRenderer owns the ebiten offscreen image and draws the shared
// frame with aspect preserving scaling, rotation and flip.
type FramebufferRenderer struct {
	fb        *SharedFramebuffer
	offscreen *ebiten.Image
	serial    uint64
	drawOpts  ebiten.DrawImageOptions
}

// NewFramebufferRenderer creates a renderer reading from fb.
func NewFramebufferRenderer(fb *SharedFramebuffer) *FramebufferRenderer {
	return &FramebufferRenderer{fb: fb}
}

// Draw renders the latest frame to screen.
func (r *FramebufferRenderer) Draw(screen *ebiten.Image) {
	img, g, serial := r.fb.Read()
	if img == nil {
		return
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return
	}
	if r.offscreen == nil || r.offscreen.Bounds().Dx() != w || r.offscreen.Bounds().Dy() != h {
		if r.offscreen != nil {
			r.offscreen.Deallocate()
		}
		r.offscreen = ebiten.NewImage(w, h)
		r.serial = serial - 1
	}
	if serial != r.serial {
		r.offscreen.WritePixels(img.Pix)
		r.serial = serial
	}

	screenW, screenH := screen.Bounds().Dx(), screen.Bounds().Dy()
	scale, tx, ty := Fit(float64(screenW), float64(screenH), g, w, h)

	r.drawOpts = ebiten.DrawImageOptions{}
	r.drawOpts.GeoM.Translate(-float64(w)/2, -float64(h)/2)
	if g.FlipH {
		r.drawOpts.GeoM.Scale(-1, 1)
	}
	if g.Rotation != 0 {
		// Screen space has y pointing down, so a counter-clockwise turn is
		// a negative angle.
		r.drawOpts.GeoM.Rotate(-float64(g.Rotation) * math.Pi / 2)
	}
	r.drawOpts.GeoM.Scale(scale, scale)
	r.drawOpts.GeoM.Translate(tx, ty)
	r.drawOpts.Filter = ebiten.FilterNearest
	screen.DrawImage(r.offscreen, &r.drawOpts)
}

// Fit returns the uniform scale that fits a w x h frame shown with g into
// the screen, and the screen position of the frame's center.
func Fit(screenW, screenH float64, g api.Geometry, w, h int) (scale, cx, cy float64) {
	nativeW, nativeH := float64(w), float64(h)
	if g.Rotation%2 != 0 {
		nativeW, nativeH = nativeH, nativeW
	}
	scale = screenW / nativeW
	if sy := screenH / nativeH; sy < scale {
		scale = sy
	}
	return scale, screenW / 2, screenH / 2
}
