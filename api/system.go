package api

import "github.com/amzeratul/retrograde-sub000/libretro"

// SystemInfo describes a loaded core.
type SystemInfo struct {
	LibraryName     string
	LibraryVersion  string
	ValidExtensions string
	NeedFullPath    bool
	BlockExtract    bool
}

// AVInfo is the audio/video description of the loaded game.
type AVInfo struct {
	BaseWidth   uint32
	BaseHeight  uint32
	MaxWidth    uint32
	MaxHeight   uint32
	AspectRatio float64
	FPS         float64
	SampleRate  float64
	PixelFormat libretro.PixelFormat
	Rotation    uint32 // quarter turns counter-clockwise, 0-3
}

// Timing returns the frame and audio rates.
func (a AVInfo) Timing() Timing {
	return Timing{FPS: a.FPS, SampleRate: a.SampleRate}
}

// SetGeometry applies a core reported geometry. Only sizes and aspect
// change.
func (a *AVInfo) SetGeometry(g libretro.GameGeometry) {
	a.BaseWidth = g.BaseWidth
	a.BaseHeight = g.BaseHeight
	if g.MaxWidth > 0 {
		a.MaxWidth = g.MaxWidth
	}
	if g.MaxHeight > 0 {
		a.MaxHeight = g.MaxHeight
	}
	a.AspectRatio = DisplayAspectRatio(g.BaseWidth, g.BaseHeight, g.AspectRatio)
}

// NewAVInfo converts the struct a core fills in get_system_av_info.
func NewAVInfo(in libretro.SystemAVInfo, format libretro.PixelFormat, rotation uint32) AVInfo {
	a := AVInfo{
		MaxWidth:    in.Geometry.MaxWidth,
		MaxHeight:   in.Geometry.MaxHeight,
		FPS:         in.Timing.FPS,
		SampleRate:  in.Timing.SampleRate,
		PixelFormat: format,
		Rotation:    rotation,
	}
	a.SetGeometry(in.Geometry)
	return a
}

// DisplayAspectRatio returns the reported aspect ratio, or width/height when
// the core reports none.
func DisplayAspectRatio(width, height uint32, reported float32) float64 {
	if reported > 0 {
		return float64(reported)
	}
	if height == 0 {
		return 1
	}
	return float64(width) / float64(height)
}
