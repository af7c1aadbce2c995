package core

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/amzeratul/retrograde-sub000/dynlib"
	"github.com/amzeratul/retrograde-sub000/libretro"
)

// native is a Module backed by a shared library.
type native struct {
	lib *dynlib.Library

	apiVersion              func() uint32
	init                    func()
	deinit                  func()
	setEnvironment          func(uintptr)
	setVideoRefresh         func(uintptr)
	setAudioSample          func(uintptr)
	setAudioSampleBatch     func(uintptr)
	setInputPoll            func(uintptr)
	setInputState           func(uintptr)
	getSystemInfo           func(*libretro.SystemInfo)
	getSystemAVInfo         func(*libretro.SystemAVInfo)
	setControllerPortDevice func(uint32, uint32)
	reset                   func()
	run                     func()
	serializeSize           func() uintptr
	serialize               func(unsafe.Pointer, uintptr) bool
	unserialize             func(unsafe.Pointer, uintptr) bool
	loadGame                func(*libretro.GameInfo) bool
	unloadGame              func()
	getRegion               func() uint32
	getMemoryData           func(uint32) unsafe.Pointer
	getMemorySize           func(uint32) uintptr
}

// Open loads the core library at path and binds its entry points. The API
// version is not checked here; hosts do that before calling anything else.
func Open(path string) (Module, error) {
	lib, err := dynlib.Open(path)
	if err != nil {
		return nil, err
	}
	syms, err := lib.Resolve(SymbolNames...)
	if err != nil {
		_ = lib.Close()
		return nil, fmt.Errorf("%s: %w", lib.Path(), err)
	}

	m := &native{lib: lib}
	bind := []struct {
		fptr any
		name string
	}{
		{&m.apiVersion, "retro_api_version"},
		{&m.init, "retro_init"},
		{&m.deinit, "retro_deinit"},
		{&m.setEnvironment, "retro_set_environment"},
		{&m.setVideoRefresh, "retro_set_video_refresh"},
		{&m.setAudioSample, "retro_set_audio_sample"},
		{&m.setAudioSampleBatch, "retro_set_audio_sample_batch"},
		{&m.setInputPoll, "retro_set_input_poll"},
		{&m.setInputState, "retro_set_input_state"},
		{&m.getSystemInfo, "retro_get_system_info"},
		{&m.getSystemAVInfo, "retro_get_system_av_info"},
		{&m.setControllerPortDevice, "retro_set_controller_port_device"},
		{&m.reset, "retro_reset"},
		{&m.run, "retro_run"},
		{&m.serializeSize, "retro_serialize_size"},
		{&m.serialize, "retro_serialize"},
		{&m.unserialize, "retro_unserialize"},
		{&m.loadGame, "retro_load_game"},
		{&m.unloadGame, "retro_unload_game"},
		{&m.getRegion, "retro_get_region"},
		{&m.getMemoryData, "retro_get_memory_data"},
		{&m.getMemorySize, "retro_get_memory_size"},
	}
	for _, b := range bind {
		purego.RegisterFunc(b.fptr, syms[b.name])
	}
	return m, nil
}

func (m *native) APIVersion() uint32 { return m.apiVersion() }

func (m *native) SetEnvironment(cb Callbacks)      { m.setEnvironment(trampolinesFor(cb).environment) }
func (m *native) SetVideoRefresh(cb Callbacks)     { m.setVideoRefresh(trampolinesFor(cb).videoRefresh) }
func (m *native) SetAudioSample(cb Callbacks)      { m.setAudioSample(trampolinesFor(cb).audioSample) }
func (m *native) SetAudioSampleBatch(cb Callbacks) { m.setAudioSampleBatch(trampolinesFor(cb).audioBatch) }
func (m *native) SetInputPoll(cb Callbacks)        { m.setInputPoll(trampolinesFor(cb).inputPoll) }
func (m *native) SetInputState(cb Callbacks)       { m.setInputState(trampolinesFor(cb).inputState) }

func (m *native) Init()   { m.init() }
func (m *native) Deinit() { m.deinit() }

func (m *native) GetSystemInfo(info *libretro.SystemInfo)     { m.getSystemInfo(info) }
func (m *native) GetSystemAVInfo(info *libretro.SystemAVInfo) { m.getSystemAVInfo(info) }

func (m *native) SetControllerPortDevice(port, device uint32) {
	m.setControllerPortDevice(port, device)
}

func (m *native) Reset() { m.reset() }
func (m *native) Run()   { m.run() }

func (m *native) SerializeSize() uintptr { return m.serializeSize() }

func (m *native) Serialize(data []byte) bool {
	if len(data) == 0 {
		return m.serialize(nil, 0)
	}
	return m.serialize(unsafe.Pointer(&data[0]), uintptr(len(data)))
}

func (m *native) Unserialize(data []byte) bool {
	if len(data) == 0 {
		return m.unserialize(nil, 0)
	}
	return m.unserialize(unsafe.Pointer(&data[0]), uintptr(len(data)))
}

func (m *native) LoadGame(game *libretro.GameInfo) bool { return m.loadGame(game) }
func (m *native) UnloadGame()                           { m.unloadGame() }
func (m *native) GetRegion() uint32                     { return m.getRegion() }

func (m *native) GetMemoryData(id uint32) unsafe.Pointer { return m.getMemoryData(id) }
func (m *native) GetMemorySize(id uint32) uintptr        { return m.getMemorySize(id) }

func (m *native) Call(fn uintptr, args ...uintptr) uintptr {
	if fn == 0 {
		return 0
	}
	r1, _, _ := purego.SyscallN(fn, args...)
	return r1
}

func (m *native) Close() error { return m.lib.Close() }

// trampolines are C-callable entry points bound to one Callbacks value.
// purego callbacks are never freed, so they are created once per target and
// reused by every module that targets it.
type trampolines struct {
	environment  uintptr
	videoRefresh uintptr
	audioSample  uintptr
	audioBatch   uintptr
	inputPoll    uintptr
	inputState   uintptr
}

var (
	trampolineMu  sync.Mutex
	trampolineSet = map[Callbacks]*trampolines{}
)

func trampolinesFor(cb Callbacks) *trampolines {
	trampolineMu.Lock()
	defer trampolineMu.Unlock()
	if t, ok := trampolineSet[cb]; ok {
		return t
	}
	t := &trampolines{
		environment: purego.NewCallback(func(cmd uintptr, data unsafe.Pointer) uintptr {
			if cb.Environment(uint32(cmd), data) {
				return 1
			}
			return 0
		}),
		videoRefresh: purego.NewCallback(func(data, width, height, pitch uintptr) {
			cb.VideoRefresh(data, uint32(width), uint32(height), pitch)
		}),
		audioSample: purego.NewCallback(func(left, right uintptr) {
			cb.AudioSample(int16(left), int16(right))
		}),
		audioBatch: purego.NewCallback(func(data unsafe.Pointer, frames uintptr) uintptr {
			return cb.AudioSampleBatch(data, frames)
		}),
		inputPoll: purego.NewCallback(func() {
			cb.InputPoll()
		}),
		inputState: purego.NewCallback(func(port, device, index, id uintptr) uintptr {
			return uintptr(uint16(cb.InputState(uint32(port), uint32(device), uint32(index), uint32(id))))
		}),
	}
	trampolineSet[cb] = t
	return t
}
