// Package coretest provides a scriptable core.Module for tests that drive a
// host without a shared library.
package coretest

import (
	"sync"
	"unsafe"

	"github.com/amzeratul/retrograde-sub000/core"
	"github.com/amzeratul/retrograde-sub000/libretro"
)

// Fake is an in-process core. Hooks receive the callbacks the host
// registered and may call them exactly as a native core would.
type Fake struct {
	Version  uint32
	Name     string
	Release  string
	Exts     string
	FullPath bool
	AV       libretro.SystemAVInfo
	Region   uint32

	// State is what Serialize copies out and Unserialize replaces.
	State []byte
	// Memory is indexed by libretro memory id.
	Memory map[uint32][]byte

	OnSetEnvironment func(cb core.Callbacks)
	OnInit           func(cb core.Callbacks)
	OnLoadGame       func(cb core.Callbacks, game *libretro.GameInfo) bool
	OnRun            func(cb core.Callbacks)
	OnReset          func(cb core.Callbacks)

	mu     sync.Mutex
	cb     core.Callbacks
	arena  *libretro.Arena
	funcs  map[uintptr]func(args []uintptr) uintptr
	nextFn uintptr
	calls  []string
	closed int

	// LoadedPath and LoadedData record the last LoadGame argument.
	LoadedPath string
	LoadedData []byte
	Ports      map[uint32]uint32
}

// New returns a fake reporting the current API version.
func New() *Fake {
	return &Fake{
		Version: libretro.APIVersion,
		Name:    "fake",
		Release: "1.0",
		Exts:    "bin",
		AV: libretro.SystemAVInfo{
			Geometry: libretro.GameGeometry{BaseWidth: 4, BaseHeight: 2, MaxWidth: 4, MaxHeight: 2},
			Timing:   libretro.SystemTiming{FPS: 60, SampleRate: 44100},
		},
		Memory: map[uint32][]byte{},
		Ports:  map[uint32]uint32{},
		arena:  libretro.NewArena(),
		funcs:  map[uintptr]func([]uintptr) uintptr{},
		nextFn: 0x1000,
	}
}

var _ core.Module = (*Fake)(nil)

func (f *Fake) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

// Calls returns the entry points invoked so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Closed reports how many times Close was called.
func (f *Fake) Closed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Callbacks returns the callbacks registered through SetEnvironment.
func (f *Fake) Callbacks() core.Callbacks { return f.cb }

// Func registers fn and returns a fake function pointer Call dispatches to.
func (f *Fake) Func(fn func(args []uintptr) uintptr) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextFn += 8
	f.funcs[f.nextFn] = fn
	return f.nextFn
}

// CString returns a NUL-terminated copy of s owned by the fake.
func (f *Fake) CString(s string) *byte { return f.arena.CString(s) }

// Pin keeps v reachable and unmoved until the fake is closed.
func (f *Fake) Pin(v any) { f.arena.Pin(v) }

func (f *Fake) APIVersion() uint32 {
	f.record("api_version")
	return f.Version
}

func (f *Fake) SetEnvironment(cb core.Callbacks) {
	f.record("set_environment")
	f.cb = cb
	if f.OnSetEnvironment != nil {
		f.OnSetEnvironment(cb)
	}
}

func (f *Fake) SetVideoRefresh(core.Callbacks)     { f.record("set_video_refresh") }
func (f *Fake) SetAudioSample(core.Callbacks)      { f.record("set_audio_sample") }
func (f *Fake) SetAudioSampleBatch(core.Callbacks) { f.record("set_audio_sample_batch") }
func (f *Fake) SetInputPoll(core.Callbacks)        { f.record("set_input_poll") }
func (f *Fake) SetInputState(core.Callbacks)       { f.record("set_input_state") }

func (f *Fake) Init() {
	f.record("init")
	if f.OnInit != nil {
		f.OnInit(f.cb)
	}
}

func (f *Fake) Deinit() { f.record("deinit") }

func (f *Fake) GetSystemInfo(info *libretro.SystemInfo) {
	f.record("get_system_info")
	*info = libretro.SystemInfo{
		LibraryName:     f.CString(f.Name),
		LibraryVersion:  f.CString(f.Release),
		ValidExtensions: f.CString(f.Exts),
		NeedFullpath:    f.FullPath,
	}
}

func (f *Fake) GetSystemAVInfo(info *libretro.SystemAVInfo) {
	f.record("get_system_av_info")
	*info = f.AV
}

func (f *Fake) SetControllerPortDevice(port, device uint32) {
	f.record("set_controller_port_device")
	f.Ports[port] = device
}

func (f *Fake) Reset() {
	f.record("reset")
	if f.OnReset != nil {
		f.OnReset(f.cb)
	}
}

func (f *Fake) Run() {
	f.record("run")
	if f.OnRun != nil {
		f.OnRun(f.cb)
	}
}

func (f *Fake) SerializeSize() uintptr { return uintptr(len(f.State)) }

func (f *Fake) Serialize(data []byte) bool {
	f.record("serialize")
	if len(data) < len(f.State) {
		return false
	}
	copy(data, f.State)
	return true
}

func (f *Fake) Unserialize(data []byte) bool {
	f.record("unserialize")
	if len(data) != len(f.State) {
		return false
	}
	copy(f.State, data)
	return true
}

func (f *Fake) LoadGame(game *libretro.GameInfo) bool {
	f.record("load_game")
	f.LoadedPath, f.LoadedData = "", nil
	if game != nil {
		f.LoadedPath = libretro.GoString(game.Path)
		if game.Data != 0 && game.Size > 0 {
			f.LoadedData = append([]byte(nil), libretro.Bytes(unsafe.Pointer(game.Data), int(game.Size))...)
		}
	}
	if f.OnLoadGame != nil {
		return f.OnLoadGame(f.cb, game)
	}
	return true
}

func (f *Fake) UnloadGame()       { f.record("unload_game") }
func (f *Fake) GetRegion() uint32 { return f.Region }

func (f *Fake) GetMemoryData(id uint32) unsafe.Pointer {
	m := f.Memory[id]
	if len(m) == 0 {
		return nil
	}
	return unsafe.Pointer(&m[0])
}

func (f *Fake) GetMemorySize(id uint32) uintptr { return uintptr(len(f.Memory[id])) }

func (f *Fake) Call(fn uintptr, args ...uintptr) uintptr {
	f.mu.Lock()
	h := f.funcs[fn]
	f.mu.Unlock()
	if h == nil {
		return 0
	}
	return h(args)
}

func (f *Fake) Close() error {
	f.record("close")
	f.mu.Lock()
	f.closed++
	f.mu.Unlock()
	f.arena.Free()
	return nil
}
