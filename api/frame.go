package api

// TextureFormat is the layout of pixels handed to a TextureSink.
type TextureFormat int

const (
	TextureInvalid TextureFormat = iota
	TextureBGRA5551
	TextureBGR565
	TextureBGRX8888
)

// BytesPerPixel returns the pixel size of the format.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case TextureBGRA5551, TextureBGR565:
		return 2
	case TextureBGRX8888:
		return 4
	default:
		return 0
	}
}

// String returns the format name.
func (f TextureFormat) String() string {
	switch f {
	case TextureBGRA5551:
		return "BGRA5551"
	case TextureBGR565:
		return "BGR565"
	case TextureBGRX8888:
		return "BGRX8888"
	default:
		return "Invalid"
	}
}

// Geometry describes how a frame is presented.
type Geometry struct {
	// Width and Height are the displayed size after rotation.
	Width  int
	Height int
	// Rotation is in quarter turns counter-clockwise.
	Rotation int
	// FlipH mirrors the image, compensating bottom-left origin frames.
	FlipH bool
}

// Frame is one software video frame.
type Frame struct {
	Width  int
	Height int
	Pitch  int
	Format TextureFormat
	Pixels []byte
	// Display is how the frame should be shown.
	Display Geometry
}
