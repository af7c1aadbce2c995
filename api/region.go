package api

import "github.com/amzeratul/retrograde-sub000/libretro"

// Region represents a console video region.
type Region int

const (
	RegionNTSC Region = libretro.RegionNTSC
	RegionPAL  Region = libretro.RegionPAL
)

// String returns the display name of the region.
func (r Region) String() string {
	switch r {
	case RegionNTSC:
		return "NTSC"
	case RegionPAL:
		return "PAL"
	default:
		return "Unknown"
	}
}

// Timing holds the frame and audio rates reported by a core.
type Timing struct {
	FPS        float64
	SampleRate float64
}
