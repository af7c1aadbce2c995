package environ

import (
	"unsafe"

	"github.com/amzeratul/retrograde-sub000/api"
	"github.com/amzeratul/retrograde-sub000/libretro"
)

func (b *Broker) setPixelFormat(data unsafe.Pointer) bool {
	if data == nil || b.Video == nil {
		return false
	}
	f := *(*libretro.PixelFormat)(data)
	if !b.Video.SetPixelFormat(f) {
		b.log.Warn().Int32("format", int32(f)).Msg("rejected pixel format")
		return false
	}
	if b.av != nil {
		b.av.PixelFormat = f
	}
	b.log.Debug().Stringer("format", f).Msg("pixel format set")
	return true
}

func (b *Broker) setRotation(data unsafe.Pointer) bool {
	if data == nil || b.Video == nil {
		return false
	}
	r := *(*uint32)(data)
	if !b.Video.SetRotation(r) {
		return false
	}
	if b.av != nil {
		b.av.Rotation = r
	}
	return true
}

func (b *Broker) setGeometry(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	if b.av == nil {
		b.log.Warn().Msg("geometry change before a game is loaded")
		return false
	}
	b.av.SetGeometry(*(*libretro.GameGeometry)(data))
	return true
}

func (b *Broker) setSystemAVInfo(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	if b.av == nil {
		b.log.Warn().Msg("AV info change before a game is loaded")
		return false
	}
	*b.av = api.NewAVInfo(*(*libretro.SystemAVInfo)(data), b.av.PixelFormat, b.av.Rotation)
	if b.Audio != nil {
		b.Audio.SetSourceRate(b.av.SampleRate)
	}
	b.log.Info().Float64("fps", b.av.FPS).Float64("rate", b.av.SampleRate).Msg("AV info changed")
	return true
}

func (b *Broker) hwRenderer() api.HWRenderer {
	if b.Video == nil {
		return nil
	}
	return b.Video.HWRenderer()
}

func (b *Broker) setHWRender(data unsafe.Pointer) bool {
	hw := b.hwRenderer()
	if data == nil || hw == nil {
		return false
	}
	cb := (*libretro.HWRenderCallback)(data)
	if !hw.Supports(cb.ContextType, cb.VersionMajor, cb.VersionMinor) {
		b.log.Warn().Stringer("context", cb.ContextType).Uint32("major", cb.VersionMajor).
			Uint32("minor", cb.VersionMinor).Msg("unsupported hardware context")
		return false
	}
	n := b.nativeTable()
	cb.GetCurrentFramebuffer = n.currentFramebuffer
	cb.GetProcAddress = n.procAddress
	b.hw = *cb
	b.hwSet = true
	b.Video.SetHWContext(cb.ContextType)
	b.log.Info().Stringer("context", cb.ContextType).Msg("hardware rendering negotiated")
	return true
}

// preferredContexts is the order hardware contexts are offered in.
var preferredContexts = []libretro.HWContextType{
	libretro.HWContextOpenGLCore,
	libretro.HWContextOpenGL,
	libretro.HWContextVulkan,
}

func (b *Broker) getPreferredHWRender(data unsafe.Pointer) bool {
	hw := b.hwRenderer()
	if data == nil || hw == nil {
		return false
	}
	for _, ctx := range preferredContexts {
		if hw.Supports(ctx, 0, 0) {
			*(*libretro.HWContextType)(data) = ctx
			return true
		}
	}
	return false
}

// HWContext returns the negotiated hardware render callback.
func (b *Broker) HWContext() (libretro.HWRenderCallback, bool) {
	return b.hw, b.hwSet
}

// HWContextReset calls the core's context_reset once the context exists.
func (b *Broker) HWContextReset() {
	if b.hwSet && b.hw.ContextReset != 0 && b.Caller != nil {
		b.Caller.Call(b.hw.ContextReset)
	}
}

// HWContextDestroy calls the core's context_destroy before teardown.
func (b *Broker) HWContextDestroy() {
	if b.hwSet && b.hw.ContextDestroy != 0 && b.Caller != nil {
		b.Caller.Call(b.hw.ContextDestroy)
	}
}
