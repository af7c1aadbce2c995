// Package core defines the entry-point table of a libretro core, binds it to
// a shared library, and arbitrates which host receives the core's callbacks.
package core

import (
	"errors"
	"unsafe"

	"github.com/amzeratul/retrograde-sub000/libretro"
)

var (
	// ErrIncompatibleVersion is returned when a core reports an API version
	// other than libretro.APIVersion.
	ErrIncompatibleVersion = errors.New("incompatible libretro API version")

	// ErrInstanceBusy is returned when another instance is active.
	ErrInstanceBusy = errors.New("another core instance is active")
)

// Callbacks receives the upcalls a core makes while one of its entry points
// runs. Video data is a raw address because it may carry the
// libretro.HWFrameBufferValid sentinel instead of a pointer.
type Callbacks interface {
	Environment(cmd uint32, data unsafe.Pointer) bool
	VideoRefresh(data uintptr, width, height uint32, pitch uintptr)
	AudioSample(left, right int16)
	AudioSampleBatch(data unsafe.Pointer, frames uintptr) uintptr
	InputPoll()
	InputState(port, device, index, id uint32) int16
}

// Module is the table of entry points every libretro core exports. Each
// method maps one to one onto a retro_* function.
type Module interface {
	APIVersion() uint32

	SetEnvironment(cb Callbacks)
	SetVideoRefresh(cb Callbacks)
	SetAudioSample(cb Callbacks)
	SetAudioSampleBatch(cb Callbacks)
	SetInputPoll(cb Callbacks)
	SetInputState(cb Callbacks)

	Init()
	Deinit()
	GetSystemInfo(info *libretro.SystemInfo)
	GetSystemAVInfo(info *libretro.SystemAVInfo)
	SetControllerPortDevice(port, device uint32)
	Reset()
	Run()

	SerializeSize() uintptr
	Serialize(data []byte) bool
	Unserialize(data []byte) bool

	LoadGame(game *libretro.GameInfo) bool
	UnloadGame()
	GetRegion() uint32

	GetMemoryData(id uint32) unsafe.Pointer
	GetMemorySize(id uint32) uintptr

	// Call invokes a function pointer the core handed to the host, such as
	// a hardware context reset or a disk control entry. Arguments and the
	// return value are passed as machine words.
	Call(fn uintptr, args ...uintptr) uintptr

	// Close releases the module. It must only be called after UnloadGame
	// and Deinit, and only once.
	Close() error
}

// SymbolNames lists the mandatory exports resolved from a core library.
var SymbolNames = []string{
	"retro_api_version",
	"retro_init",
	"retro_deinit",
	"retro_set_environment",
	"retro_set_video_refresh",
	"retro_set_audio_sample",
	"retro_set_audio_sample_batch",
	"retro_set_input_poll",
	"retro_set_input_state",
	"retro_get_system_info",
	"retro_get_system_av_info",
	"retro_set_controller_port_device",
	"retro_reset",
	"retro_run",
	"retro_serialize_size",
	"retro_serialize",
	"retro_unserialize",
	"retro_load_game",
	"retro_unload_game",
	"retro_get_region",
	"retro_get_memory_data",
	"retro_get_memory_size",
}
