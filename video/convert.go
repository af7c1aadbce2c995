package video

import (
	"encoding/binary"
	"image"

	"github.com/amzeratul/retrograde-sub000/api"
)

// ToRGBA decodes a software frame into an opaque RGBA image, unrotated.
func ToRGBA(f api.Frame) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	bpp := f.Format.BytesPerPixel()
	if bpp == 0 {
		return img
	}
	for y := 0; y < f.Height; y++ {
		src := f.Pixels[y*f.Pitch:]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < f.Width; x++ {
			var r, g, b byte
			switch f.Format {
			case api.TextureBGRA5551:
				v := binary.LittleEndian.Uint16(src[x*2:])
				r = expand5(byte(v >> 10))
				g = expand5(byte(v >> 5))
				b = expand5(byte(v))
			case api.TextureBGR565:
				v := binary.LittleEndian.Uint16(src[x*2:])
				r = expand5(byte(v >> 11))
				g = expand6(byte(v >> 5))
				b = expand5(byte(v))
			case api.TextureBGRX8888:
				b, g, r = src[x*4], src[x*4+1], src[x*4+2]
			}
			dst[x*4] = r
			dst[x*4+1] = g
			dst[x*4+2] = b
			dst[x*4+3] = 0xff
		}
	}
	return img
}

func expand5(v byte) byte {
	v &= 0x1f
	return v<<3 | v>>2
}

func expand6(v byte) byte {
	v &= 0x3f
	return v<<2 | v>>4
}
