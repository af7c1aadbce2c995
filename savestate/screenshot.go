package savestate

import (
	"bytes"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// EncodeScreenshot PNG-encodes img, scaling it down to at most maxWidth
// pixels wide. A non-positive maxWidth keeps the original size.
func EncodeScreenshot(img image.Image, maxWidth int) ([]byte, error) {
	b := img.Bounds()
	if maxWidth > 0 && b.Dx() > maxWidth {
		h := b.Dy() * maxWidth / b.Dx()
		if h < 1 {
			h = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		img = dst
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Image decodes the thumbnail.
func (s Screenshot) Image() (image.Image, error) {
	return png.Decode(bytes.NewReader(s.PNG))
}
