package api

import (
	"math"
	"testing"

	"github.com/amzeratul/retrograde-sub000/libretro"
)

func TestDisplayAspectRatio(t *testing.T) {
	tests := []struct {
		name     string
		width    uint32
		height   uint32
		reported float32
		expected float64
	}{
		{"reported", 320, 224, 4.0 / 3.0, float64(float32(4.0 / 3.0))},
		{"zero falls back to size", 256, 192, 0, 256.0 / 192.0},
		{"negative falls back to size", 320, 240, -1, 320.0 / 240.0},
		{"zero height", 320, 0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DisplayAspectRatio(tt.width, tt.height, tt.reported)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("DisplayAspectRatio(%d, %d, %f) = %f, want %f",
					tt.width, tt.height, tt.reported, got, tt.expected)
			}
		})
	}
}

func TestNewAVInfo(t *testing.T) {
	in := libretro.SystemAVInfo{
		Geometry: libretro.GameGeometry{BaseWidth: 160, BaseHeight: 144, MaxWidth: 256, MaxHeight: 224},
		Timing:   libretro.SystemTiming{FPS: 59.7275, SampleRate: 32768},
	}
	av := NewAVInfo(in, libretro.PixelFormatRGB565, 1)
	if math.Abs(av.AspectRatio-160.0/144.0) > 1e-9 {
		t.Errorf("AspectRatio = %f", av.AspectRatio)
	}
	if av.MaxWidth != 256 || av.Rotation != 1 || av.PixelFormat != libretro.PixelFormatRGB565 {
		t.Errorf("unexpected %+v", av)
	}

	av.SetGeometry(libretro.GameGeometry{BaseWidth: 320, BaseHeight: 240, AspectRatio: 1.5})
	if av.BaseWidth != 320 || av.AspectRatio != 1.5 || av.MaxWidth != 256 {
		t.Errorf("after SetGeometry %+v", av)
	}
	if av.FPS != 59.7275 {
		t.Error("SetGeometry must not touch timing")
	}
}

func TestRegionString(t *testing.T) {
	if RegionNTSC.String() != "NTSC" || RegionPAL.String() != "PAL" || Region(9).String() != "Unknown" {
		t.Error("unexpected region names")
	}
}
