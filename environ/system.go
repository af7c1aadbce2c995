package environ

import (
	"strings"
	"unsafe"

	"github.com/amzeratul/retrograde-sub000/libretro"
)

func (b *Broker) putBool(v bool) handler {
	return func(data unsafe.Pointer) bool {
		if data == nil {
			return false
		}
		*(*bool)(data) = v
		return true
	}
}

func (b *Broker) putUint32(v uint32) handler {
	return func(data unsafe.Pointer) bool {
		if data == nil {
			return false
		}
		*(*uint32)(data) = v
		return true
	}
}

// putString answers with a NUL terminated string owned by the broker. An
// empty value is reported as unhandled.
func (b *Broker) putString(get func() string) handler {
	return func(data unsafe.Pointer) bool {
		v := get()
		if data == nil || v == "" {
			return false
		}
		*(**byte)(data) = b.arena.CString(v)
		return true
	}
}

// getInputBitmasks reports that JoypadMask is answered by input state.
// Older cores pass a bool to fill in, newer ones pass nothing.
func (b *Broker) getInputBitmasks(data unsafe.Pointer) bool {
	if data != nil {
		*(*bool)(data) = true
	}
	return true
}

func (b *Broker) decline(what string) handler {
	return func(unsafe.Pointer) bool {
		b.log.Debug().Str("what", what).Msg("declined environment request")
		return false
	}
}

func (b *Broker) acknowledge(what string) handler {
	return func(unsafe.Pointer) bool {
		b.log.Debug().Str("what", what).Msg("acknowledged environment request")
		return true
	}
}

var languages = map[string]uint32{
	"en":    libretro.LanguageEnglish,
	"ja":    libretro.LanguageJapanese,
	"fr":    libretro.LanguageFrench,
	"es":    libretro.LanguageSpanish,
	"de":    libretro.LanguageGerman,
	"it":    libretro.LanguageItalian,
	"nl":    libretro.LanguageDutch,
	"pt-br": libretro.LanguagePortugueseBrazil,
	"pt":    libretro.LanguagePortuguesePortugal,
	"ru":    libretro.LanguageRussian,
	"ko":    libretro.LanguageKorean,
	"zh-tw": libretro.LanguageChineseTraditional,
	"zh":    libretro.LanguageChineseSimplified,
}

// LanguageID maps a language tag such as "fr" or "pt_BR" to a libretro
// language, defaulting to English.
func LanguageID(tag string) uint32 {
	tag = strings.ToLower(strings.ReplaceAll(tag, "_", "-"))
	if id, ok := languages[tag]; ok {
		return id
	}
	if i := strings.IndexByte(tag, '-'); i > 0 {
		if id, ok := languages[tag[:i]]; ok {
			return id
		}
	}
	return libretro.LanguageEnglish
}

func (b *Broker) getLanguage(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	*(*uint32)(data) = LanguageID(b.Language)
	return true
}

func (b *Broker) getInputDeviceCapabilities(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	*(*uint64)(data) = 1<<libretro.DeviceJoypad | 1<<libretro.DeviceAnalog
	return true
}

func (b *Broker) getAudioVideoEnable(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	// bit 0 video, bit 1 audio
	*(*int32)(data) = 1 | 2
	return true
}

func (b *Broker) getSavestateContext(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	*(*int32)(data) = libretro.SavestateContextNormal
	return true
}

func (b *Broker) getFastForwarding(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	*(*bool)(data) = b.fastForward
	return true
}

func (b *Broker) getTargetRefreshRate(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	*(*float32)(data) = float32(b.fps())
	return true
}

func (b *Broker) getThrottleState(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	st := (*libretro.ThrottleState)(data)
	st.Rate = float32(b.fps())
	switch {
	case b.rewinding:
		st.Mode = libretro.ThrottleRewinding
	case b.fastForward:
		st.Mode = libretro.ThrottleFastForward
		st.Rate = 0
	default:
		st.Mode = libretro.ThrottleVSync
	}
	return true
}

func (b *Broker) setShutdown(unsafe.Pointer) bool {
	b.log.Info().Msg("core requested shutdown")
	b.shutdown = true
	return true
}

func (b *Broker) setPerformanceLevel(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	b.perfLevel = *(*uint32)(data)
	return true
}

func (b *Broker) setSupportNoGame(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	b.supportNoGame = *(*bool)(data)
	return true
}

func (b *Broker) setSupportAchievements(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	b.achievements = *(*bool)(data)
	return true
}

func (b *Broker) setSerializationQuirks(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	q := (*uint64)(data)
	// Rewind restarts on a size change rather than following it.
	*q &^= libretro.SerializationQuirkFrontVariableSize
	if *q&libretro.SerializationQuirkCoreVariableSize != 0 {
		b.log.Warn().Msg("core state size may vary between frames; rewind restarts when it does")
	}
	b.quirks = *q
	return true
}

func (b *Broker) setMinimumAudioLatency(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	b.minLatency = *(*uint32)(data)
	return true
}

func (b *Broker) setFastForwardingOverride(data unsafe.Pointer) bool {
	// A NULL payload probes for support.
	if data == nil {
		return true
	}
	b.ffOverride = *(*libretro.FastForwardingOverride)(data)
	b.fastForward = b.ffOverride.FastForward
	return true
}

func (b *Broker) setInputDescriptors(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	b.descriptors = b.descriptors[:0]
	for d := (*libretro.InputDescriptor)(data); d.Description != nil; d = next(d) {
		b.descriptors = append(b.descriptors, InputDescriptor{
			Port:        d.Port,
			Device:      d.Device,
			Index:       d.Index,
			ID:          d.ID,
			Description: libretro.GoString(d.Description),
		})
	}
	return true
}

func (b *Broker) setControllerInfo(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	b.controllers = b.controllers[:0]
	for info := (*libretro.ControllerInfo)(data); info.Types != nil; info = next(info) {
		types := unsafe.Slice(info.Types, info.NumTypes)
		port := make([]ControllerType, 0, len(types))
		for _, t := range types {
			port = append(port, ControllerType{Desc: libretro.GoString(t.Desc), ID: t.ID})
		}
		b.controllers = append(b.controllers, port)
	}
	return true
}

func (b *Broker) setKeyboardCallback(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	b.keyboard = (*libretro.KeyboardCallback)(data).Callback
	return true
}

func (b *Broker) setFrameTimeCallback(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	b.frameTime = *(*libretro.FrameTimeCallback)(data)
	return true
}

func (b *Broker) setAudioBufferStatusCallback(data unsafe.Pointer) bool {
	if data == nil {
		b.bufferStatus = 0
		return true
	}
	b.bufferStatus = (*libretro.AudioBufferStatusCallback)(data).Callback
	return true
}

func (b *Broker) setProcAddressCallback(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	b.procAddress = *(*uintptr)(data)
	return true
}

func (b *Broker) setSubsystemInfo(data unsafe.Pointer) bool {
	b.log.Debug().Msg("core declared subsystems, which are not used")
	return data != nil
}

// next advances a pointer into a C array by one element.
func next[T any](p *T) *T {
	var zero T
	return (*T)(unsafe.Add(unsafe.Pointer(p), unsafe.Sizeof(zero)))
}

// Keyboard forwards a key event to the core's keyboard callback.
func (b *Broker) Keyboard(down bool, keycode, character uint32, modifiers uint16) {
	if b.keyboard == 0 || b.Caller == nil {
		return
	}
	b.Caller.Call(b.keyboard, boolArg(down), uintptr(keycode), uintptr(character), uintptr(modifiers))
}

// FrameTime reports the time since the previous frame in microseconds. A
// non-positive usec reports the reference frame time.
func (b *Broker) FrameTime(usec int64) {
	if b.frameTime.Callback == 0 || b.Caller == nil {
		return
	}
	if usec <= 0 {
		usec = b.frameTime.Reference
	}
	b.Caller.Call(b.frameTime.Callback, uintptr(usec))
}

// AudioBufferStatus reports output buffer occupancy in percent.
func (b *Broker) AudioBufferStatus(active bool, occupancy uint32, underrun bool) {
	if b.bufferStatus == 0 || b.Caller == nil {
		return
	}
	b.Caller.Call(b.bufferStatus, boolArg(active), uintptr(occupancy), boolArg(underrun))
}

func boolArg(v bool) uintptr {
	if v {
		return 1
	}
	return 0
}
