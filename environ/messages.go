package environ

import (
	"time"
	"unsafe"

	"github.com/amzeratul/retrograde-sub000/libretro"
)

func (b *Broker) setMessage(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	m := (*libretro.Message)(data)
	msg := libretro.GoString(m.Msg)
	b.log.Info().Str("msg", msg).Msg("core message")
	if b.Notifier != nil {
		b.Notifier.Notify(msg, framesDuration(m.Frames, b.fps()), libretro.LogInfo)
	}
	return true
}

func (b *Broker) setMessageExt(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	m := (*libretro.MessageExt)(data)
	msg := libretro.GoString(m.Msg)
	b.logAt(int(m.Level), "core message", msg)
	if b.Notifier != nil {
		b.Notifier.Notify(msg, msDuration(m.Duration), int(m.Level))
	}
	return true
}

func framesDuration(frames uint32, fps float64) time.Duration {
	return time.Duration(float64(frames) / fps * float64(time.Second))
}

func msDuration(ms uint32) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
