// Package video turns a core's video refresh calls into texture updates:
// duplicated frames, hardware rendered frames and software buffers.
package video

import (
	"unsafe"

	"github.com/amzeratul/retrograde-sub000/api"
	"github.com/amzeratul/retrograde-sub000/libretro"
	"github.com/amzeratul/retrograde-sub000/logger"
)

// Translate maps a libretro pixel format to the texture format used to
// upload it. Unknown and unrecognised formats are treated as XRGB8888.
func Translate(p libretro.PixelFormat) api.TextureFormat {
	switch p {
	case libretro.PixelFormat0RGB1555:
		return api.TextureBGRA5551
	case libretro.PixelFormatRGB565:
		return api.TextureBGR565
	default:
		return api.TextureBGRX8888
	}
}

// ValidPixelFormat reports whether a core may select p.
func ValidPixelFormat(p libretro.PixelFormat) bool {
	switch p {
	case libretro.PixelFormat0RGB1555, libretro.PixelFormatRGB565, libretro.PixelFormatXRGB8888:
		return true
	}
	return false
}

// Kind classifies a video refresh payload.
type Kind int

const (
	KindDupe Kind = iota
	KindHardware
	KindSoftware
)

// Classify returns the kind of a refresh payload.
func Classify(data uintptr) Kind {
	switch data {
	case 0:
		return KindDupe
	case libretro.HWFrameBufferValid:
		return KindHardware
	default:
		return KindSoftware
	}
}

// OutputGeometry computes presentation for a width x height frame.
// Quarter turns 1 and 3 swap the axes. Frames with a bottom-left origin
// are flipped and turned a further half turn, which together invert them
// vertically.
func OutputGeometry(width, height int, rotation uint32, bottomLeft bool) api.Geometry {
	g := api.Geometry{Width: width, Height: height, Rotation: int(rotation % 4)}
	if bottomLeft {
		g.FlipH = true
		g.Rotation = (g.Rotation + 2) % 4
	}
	if g.Rotation%2 == 1 {
		g.Width, g.Height = height, width
	}
	return g
}

// Sink receives video refresh calls.
type Sink struct {
	out api.TextureSink
	hw  api.HWRenderer
	log *logger.Logger

	format     libretro.PixelFormat
	rotation   uint32
	hwCtx      libretro.HWContextType
	bottomLeft bool

	buf      []byte
	last     api.Frame
	hasFrame bool

	frames uint64
	dupes  uint64
}

// NewSink creates a sink writing to out. hw may be nil when hardware
// rendering is unavailable.
func NewSink(out api.TextureSink, hw api.HWRenderer, log *logger.Logger) *Sink {
	if log == nil {
		log = logger.Nop()
	}
	return &Sink{out: out, hw: hw, log: log, format: libretro.PixelFormat0RGB1555}
}

// SetPixelFormat selects the software frame format. Invalid formats are
// rejected and leave the current one in place.
func (s *Sink) SetPixelFormat(p libretro.PixelFormat) bool {
	if !ValidPixelFormat(p) {
		return false
	}
	s.format = p
	return true
}

// PixelFormat returns the negotiated format.
func (s *Sink) PixelFormat() libretro.PixelFormat { return s.format }

// SetRotation sets the rotation in quarter turns.
func (s *Sink) SetRotation(r uint32) bool {
	if r > 3 {
		return false
	}
	s.rotation = r
	return true
}

// Rotation returns the current rotation.
func (s *Sink) Rotation() uint32 { return s.rotation }

// SetHWContext records the negotiated hardware context. OpenGL family
// contexts render with a bottom-left origin.
func (s *Sink) SetHWContext(ctx libretro.HWContextType) {
	s.hwCtx = ctx
	s.bottomLeft = ctx.IsOpenGL()
}

// HWContext returns the negotiated hardware context type.
func (s *Sink) HWContext() libretro.HWContextType { return s.hwCtx }

// HWRenderer returns the hardware renderer, or nil.
func (s *Sink) HWRenderer() api.HWRenderer { return s.hw }

// Reset forgets the previous frame and hardware context.
func (s *Sink) Reset() {
	s.hasFrame = false
	s.last = api.Frame{}
	s.hwCtx = libretro.HWContextNone
	s.bottomLeft = false
	s.frames, s.dupes = 0, 0
}

// Refresh handles one retro_video_refresh call.
func (s *Sink) Refresh(data uintptr, width, height uint32, pitch uintptr) {
	s.frames++
	switch Classify(data) {
	case KindDupe:
		s.dupes++
	case KindHardware:
		s.presentHardware(int(width), int(height))
	case KindSoftware:
		s.upload(data, int(width), int(height), int(pitch))
	}
}

func (s *Sink) presentHardware(width, height int) {
	if s.hw == nil || s.hwCtx == libretro.HWContextNone {
		s.log.Warn().Msg("hardware frame without a negotiated context")
		return
	}
	tex := s.hw.SharedTexture()
	if tex == nil {
		return
	}
	g := OutputGeometry(width, height, s.rotation, s.bottomLeft)
	tex.Lock()
	defer tex.Unlock()
	if s.out != nil {
		s.out.PresentShared(tex, g)
	}
}

func (s *Sink) upload(data uintptr, width, height, pitch int) {
	format := Translate(s.format)
	bpp := format.BytesPerPixel()
	row := width * bpp
	if width <= 0 || height <= 0 || pitch < row {
		s.log.Warn().Int("width", width).Int("height", height).Int("pitch", pitch).Msg("malformed video frame")
		return
	}

	size := row * height
	if cap(s.buf) < size {
		s.buf = make([]byte, size)
	}
	s.buf = s.buf[:size]
	src := libretro.Bytes(unsafe.Pointer(data), pitch*(height-1)+row)
	for y := 0; y < height; y++ {
		copy(s.buf[y*row:(y+1)*row], src[y*pitch:y*pitch+row])
	}

	s.last = api.Frame{
		Width:   width,
		Height:  height,
		Pitch:   row,
		Format:  format,
		Pixels:  s.buf,
		Display: OutputGeometry(width, height, s.rotation, false),
	}
	s.hasFrame = true
	if s.out != nil {
		s.out.UploadFrame(s.last)
	}
}

// LastFrame returns the most recent software frame. The pixels are owned
// by the sink and change on the next refresh.
func (s *Sink) LastFrame() (api.Frame, bool) {
	return s.last, s.hasFrame
}

// Stats returns the number of refresh calls and how many were dupes.
func (s *Sink) Stats() (frames, dupes uint64) {
	return s.frames, s.dupes
}
