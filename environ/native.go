package environ

import (
	"runtime"
	"strings"
	"time"
	"unsafe"

	"github.com/ebitengine/purego"
	"golang.org/x/sys/cpu"

	"github.com/amzeratul/retrograde-sub000/libretro"
)

// natives holds the function tables handed to the core. Callbacks are
// created on first request and live as long as the process.
type natives struct {
	log    libretro.LogCallback
	perf   libretro.PerfCallback
	rumble libretro.RumbleInterface
	led    libretro.LEDInterface

	currentFramebuffer uintptr
	procAddress        uintptr

	counters []uintptr
}

func (b *Broker) nativeTable() *natives {
	if b.natives != nil {
		return b.natives
	}
	n := &natives{}
	n.log = libretro.LogCallback{
		// Only the register-passed variadic arguments are visible.
		Log: purego.NewCallback(func(level uintptr, format unsafe.Pointer, a0, a1, a2, a3 uintptr) {
			msg := libretro.Sprintf(libretro.GoString((*byte)(format)), []uintptr{a0, a1, a2, a3})
			b.logAt(int(level), "core", msg)
		}),
	}
	n.perf = libretro.PerfCallback{
		GetTimeUsec: purego.NewCallback(func() uintptr {
			return uintptr(time.Since(b.start).Microseconds())
		}),
		GetCPUFeatures: purego.NewCallback(func() uintptr {
			return uintptr(CPUFeatures())
		}),
		GetPerfCounter: purego.NewCallback(func() uintptr {
			return uintptr(time.Since(b.start).Nanoseconds())
		}),
		PerfRegister: purego.NewCallback(func(c unsafe.Pointer) {
			b.perfRegister((*libretro.PerfCounter)(c))
		}),
		PerfStart: purego.NewCallback(func(c unsafe.Pointer) {
			pc := (*libretro.PerfCounter)(c)
			if pc.Registered {
				pc.CallCnt++
				pc.Start = uint64(time.Since(b.start).Nanoseconds())
			}
		}),
		PerfStop: purego.NewCallback(func(c unsafe.Pointer) {
			pc := (*libretro.PerfCounter)(c)
			if pc.Registered {
				pc.Total += uint64(time.Since(b.start).Nanoseconds()) - pc.Start
			}
		}),
		PerfLog: purego.NewCallback(func() {
			b.PerfLog()
		}),
	}
	n.rumble = libretro.RumbleInterface{
		SetRumbleState: purego.NewCallback(func(port, effect, strength uintptr) uintptr {
			return boolArg(b.setRumble(uint32(port), uint32(effect), uint16(strength)))
		}),
	}
	n.led = libretro.LEDInterface{
		SetLEDState: purego.NewCallback(func(led, state uintptr) {
			if b.LED != nil {
				b.LED.SetLED(int(int32(led)), int(int32(state)))
			}
		}),
	}
	n.currentFramebuffer = purego.NewCallback(func() uintptr {
		if hw := b.hwRenderer(); hw != nil {
			return hw.CurrentFramebuffer()
		}
		return 0
	})
	n.procAddress = purego.NewCallback(func(sym unsafe.Pointer) uintptr {
		if hw := b.hwRenderer(); hw != nil {
			return hw.ProcAddress(libretro.GoString((*byte)(sym)))
		}
		return 0
	})
	b.natives = n
	return n
}

// logAt routes a core log line to the host logger at the libretro level.
func (b *Broker) logAt(level int, source, msg string) {
	ev := b.log.Info()
	switch level {
	case libretro.LogDebug:
		ev = b.log.Debug()
	case libretro.LogWarn:
		ev = b.log.Warn()
	case libretro.LogError:
		ev = b.log.Error()
	}
	ev.Str("src", source).Msg(strings.TrimRight(msg, "\r\n"))
}

func (b *Broker) perfRegister(c *libretro.PerfCounter) {
	if c == nil || c.Registered {
		return
	}
	c.Registered = true
	n := b.nativeTable()
	n.counters = append(n.counters, uintptr(unsafe.Pointer(c)))
}

// PerfLog logs every registered performance counter.
func (b *Broker) PerfLog() {
	if b.natives == nil {
		return
	}
	for _, p := range b.natives.counters {
		c := (*libretro.PerfCounter)(unsafe.Pointer(p))
		b.log.Info().Str("counter", libretro.GoString(c.Ident)).Uint64("calls", c.CallCnt).
			Dur("total", time.Duration(c.Total)).Msg("perf")
	}
}

func (b *Broker) setRumble(port, effect uint32, strength uint16) bool {
	if b.Rumble == nil {
		return false
	}
	return b.Rumble.SetRumble(port, effect, strength)
}

// CPUFeatures returns the libretro SIMD flags for the running CPU.
func CPUFeatures() uint64 {
	var f uint64
	set := func(ok bool, flag uint64) {
		if ok {
			f |= flag
		}
	}
	switch runtime.GOARCH {
	case "amd64":
		f |= libretro.SIMDSSE | libretro.SIMDMMX | libretro.SIMDCMOV | libretro.SIMDSSE2
		set(cpu.X86.HasSSE3, libretro.SIMDSSE3)
		set(cpu.X86.HasSSSE3, libretro.SIMDSSSE3)
		set(cpu.X86.HasSSE41, libretro.SIMDSSE4)
		set(cpu.X86.HasSSE42, libretro.SIMDSSE42)
		set(cpu.X86.HasAVX, libretro.SIMDAVX)
		set(cpu.X86.HasAVX2, libretro.SIMDAVX2)
		set(cpu.X86.HasPOPCNT, libretro.SIMDPOPCNT)
	case "arm64":
		set(cpu.ARM64.HasASIMD, libretro.SIMDASIMD|libretro.SIMDNEON)
	}
	return f
}

func (b *Broker) getLogInterface(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	*(*libretro.LogCallback)(data) = b.nativeTable().log
	return true
}

func (b *Broker) getPerfInterface(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	*(*libretro.PerfCallback)(data) = b.nativeTable().perf
	return true
}

func (b *Broker) getRumbleInterface(data unsafe.Pointer) bool {
	if data == nil || b.Rumble == nil {
		return false
	}
	*(*libretro.RumbleInterface)(data) = b.nativeTable().rumble
	return true
}

func (b *Broker) getLEDInterface(data unsafe.Pointer) bool {
	if data == nil || b.LED == nil {
		return false
	}
	*(*libretro.LEDInterface)(data) = b.nativeTable().led
	return true
}

func (b *Broker) getVFSInterface(data unsafe.Pointer) bool {
	if data == nil || b.VFS == nil {
		return false
	}
	info := (*libretro.VFSInterfaceInfo)(data)
	if info.RequiredInterfaceVersion > libretro.VFSInterfaceVersionMax {
		b.log.Warn().Uint32("version", info.RequiredInterfaceVersion).Msg("core requires a newer VFS interface")
		return false
	}
	b.VFS.Activate()
	info.RequiredInterfaceVersion = libretro.VFSInterfaceVersionMax
	info.Iface = b.VFS.Interface()
	return true
}
