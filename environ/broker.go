// Package environ implements the environment callback a core uses to
// negotiate capabilities with the host. Each command code maps to a handler
// working on a typed view of the payload.
package environ

import (
	"time"
	"unsafe"

	"github.com/amzeratul/retrograde-sub000/api"
	"github.com/amzeratul/retrograde-sub000/audio"
	"github.com/amzeratul/retrograde-sub000/content"
	"github.com/amzeratul/retrograde-sub000/libretro"
	"github.com/amzeratul/retrograde-sub000/logger"
	"github.com/amzeratul/retrograde-sub000/options"
	"github.com/amzeratul/retrograde-sub000/vfs"
	"github.com/amzeratul/retrograde-sub000/video"
)

// MaxUsers is the number of input ports reported to cores.
const MaxUsers = 4

// Caller invokes a function pointer provided by the core.
type Caller interface {
	Call(fn uintptr, args ...uintptr) uintptr
}

// Dirs are the directories reported to the core.
type Dirs struct {
	System       string
	Save         string
	CoreAssets   string
	LibretroPath string
	Playlist     string
	// FileBrowser is where a core's own file browser starts, usually the
	// content's directory.
	FileBrowser string
}

// Deps are the collaborators a Broker writes into. Any service may be nil.
type Deps struct {
	Log      *logger.Logger
	Dirs     Dirs
	Username string
	Language string

	Video    *video.Sink
	Audio    *audio.Sink
	Options  *options.Store
	VFS      *vfs.FS
	Content  *content.Resolver
	Rumble   api.RumbleSink
	LED      api.LEDSink
	Notifier api.Notifier
	Caller   Caller
}

type handler func(data unsafe.Pointer) bool

// Broker answers environment calls for one core.
type Broker struct {
	Deps
	log      *logger.Logger
	handlers map[uint32]handler
	arena    *libretro.Arena

	// per session state
	game           *content.GameInfo
	gameExt        *libretro.GameInfoExt
	av             *api.AVInfo
	shutdown       bool
	supportNoGame  bool
	achievements   bool
	quirks         uint64
	perfLevel      uint32
	minLatency     uint32
	fastForward    bool
	rewinding      bool
	ffOverride     libretro.FastForwardingOverride
	descriptors    []InputDescriptor
	controllers    [][]ControllerType
	keyboard       uintptr
	frameTime      libretro.FrameTimeCallback
	bufferStatus   uintptr
	procAddress    uintptr
	optionsDisplay uintptr

	hw    libretro.HWRenderCallback
	hwSet bool
	disks *DiskControl

	natives *natives
	start   time.Time
}

// InputDescriptor names one input of a core.
type InputDescriptor struct {
	Port, Device, Index, ID uint32
	Description             string
}

// ControllerType is one device a core accepts on a port.
type ControllerType struct {
	Desc string
	ID   uint32
}

// New creates a broker over deps.
func New(deps Deps) *Broker {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	b := &Broker{
		Deps:  deps,
		log:   deps.Log,
		arena: libretro.NewArena(),
		start: time.Now(),
	}
	b.handlers = b.table()
	return b
}

func (b *Broker) table() map[uint32]handler {
	return map[uint32]handler{
		// fixed policy
		libretro.EnvGetOverscan:                    b.putBool(false),
		libretro.EnvGetCanDupe:                     b.putBool(true),
		libretro.EnvGetJITCapable:                  b.putBool(true),
		libretro.EnvGetInputMaxUsers:               b.putUint32(MaxUsers),
		libretro.EnvGetCoreOptionsVersion:          b.putUint32(libretro.CoreOptionsVersion),
		libretro.EnvGetMessageInterfaceVersion:     b.putUint32(1),
		libretro.EnvGetDiskControlInterfaceVersion: b.putUint32(1),
		libretro.EnvGetInputDeviceCapabilities:     b.getInputDeviceCapabilities,
		libretro.EnvGetAudioVideoEnable:            b.getAudioVideoEnable,
		libretro.EnvGetSavestateContext:            b.getSavestateContext,
		libretro.EnvGetLanguage:                    b.getLanguage,
		libretro.EnvGetUsername:                    b.putString(func() string { return b.Username }),
		libretro.EnvGetSystemDirectory:             b.putString(func() string { return b.Dirs.System }),
		libretro.EnvGetSaveDirectory:               b.putString(func() string { return b.Dirs.Save }),
		libretro.EnvGetCoreAssetsDirectory:         b.putString(func() string { return b.Dirs.CoreAssets }),
		libretro.EnvGetLibretroPath:                b.putString(func() string { return b.Dirs.LibretroPath }),
		libretro.EnvGetPlaylistDirectory:           b.putString(func() string { return b.Dirs.Playlist }),
		libretro.EnvGetFileBrowserStartDirectory:   b.putString(func() string { return b.Dirs.FileBrowser }),
		libretro.EnvGetInputBitmasks:               b.getInputBitmasks,

		// host state
		libretro.EnvGetFastForwarding:            b.getFastForwarding,
		libretro.EnvGetTargetRefreshRate:         b.getTargetRefreshRate,
		libretro.EnvGetThrottleState:             b.getThrottleState,
		libretro.EnvShutdown:                     b.setShutdown,
		libretro.EnvSetPerformanceLevel:          b.setPerformanceLevel,
		libretro.EnvSetSupportNoGame:             b.setSupportNoGame,
		libretro.EnvSetSupportAchievements:       b.setSupportAchievements,
		libretro.EnvSetSerializationQuirks:       b.setSerializationQuirks,
		libretro.EnvSetMinimumAudioLatency:       b.setMinimumAudioLatency,
		libretro.EnvSetFastForwardingOverride:    b.setFastForwardingOverride,
		libretro.EnvSetInputDescriptors:          b.setInputDescriptors,
		libretro.EnvSetControllerInfo:            b.setControllerInfo,
		libretro.EnvSetKeyboardCallback:          b.setKeyboardCallback,
		libretro.EnvSetFrameTimeCallback:         b.setFrameTimeCallback,
		libretro.EnvSetAudioBufferStatusCallback: b.setAudioBufferStatusCallback,
		libretro.EnvSetProcAddressCallback:       b.setProcAddressCallback,
		libretro.EnvSetSubsystemInfo:             b.setSubsystemInfo,
		libretro.EnvSetMemoryMaps:                b.acknowledge("memory maps"),

		// video
		libretro.EnvSetPixelFormat:       b.setPixelFormat,
		libretro.EnvSetRotation:          b.setRotation,
		libretro.EnvSetGeometry:          b.setGeometry,
		libretro.EnvSetSystemAVInfo:      b.setSystemAVInfo,
		libretro.EnvSetHWRender:          b.setHWRender,
		libretro.EnvGetPreferredHWRender: b.getPreferredHWRender,

		// messages
		libretro.EnvSetMessage:    b.setMessage,
		libretro.EnvSetMessageExt: b.setMessageExt,

		// options
		libretro.EnvSetVariables:                        b.setVariables,
		libretro.EnvSetCoreOptions:                      b.setCoreOptions,
		libretro.EnvSetCoreOptionsIntl:                  b.setCoreOptionsIntl,
		libretro.EnvSetCoreOptionsV2:                    b.setCoreOptionsV2,
		libretro.EnvSetCoreOptionsV2Intl:                b.setCoreOptionsV2Intl,
		libretro.EnvSetCoreOptionsDisplay:               b.setCoreOptionsDisplay,
		libretro.EnvSetCoreOptionsUpdateDisplayCallback: b.setCoreOptionsUpdateDisplayCallback,
		libretro.EnvGetVariable:                         b.getVariable,
		libretro.EnvGetVariableUpdate:                   b.getVariableUpdate,
		libretro.EnvSetVariable:                         b.setVariable,

		// interfaces
		libretro.EnvGetLogInterface:    b.getLogInterface,
		libretro.EnvGetPerfInterface:   b.getPerfInterface,
		libretro.EnvGetRumbleInterface: b.getRumbleInterface,
		libretro.EnvGetLEDInterface:    b.getLEDInterface,
		libretro.EnvGetVFSInterface:    b.getVFSInterface,

		// disk control
		libretro.EnvSetDiskControlInterface:    b.setDiskControl,
		libretro.EnvSetDiskControlExtInterface: b.setDiskControlExt,

		// content
		libretro.EnvSetContentInfoOverride: b.setContentInfoOverride,
		libretro.EnvGetGameInfoExt:         b.getGameInfoExt,

		// declined
		libretro.EnvSetAudioCallback:     b.decline("audio callback"),
		libretro.EnvGetLocationInterface: b.decline("location interface"),
	}
}

// Environment handles one environment call.
func (b *Broker) Environment(cmd uint32, data unsafe.Pointer) bool {
	h, ok := b.handlers[cmd]
	if !ok {
		if libretro.IsExperimental(cmd) {
			b.log.Warn().Uint32("cmd", cmd&^libretro.EnvironmentExperimental).Msg("unsupported experimental environment command")
		} else {
			b.log.Error().Uint32("cmd", cmd).Msg("unsupported environment command")
		}
		return false
	}
	return h(data)
}

// Handles reports whether cmd has a handler.
func (b *Broker) Handles(cmd uint32) bool {
	_, ok := b.handlers[cmd]
	return ok
}

// Bind attaches the loaded game and its AV info for the session.
func (b *Broker) Bind(game *content.GameInfo, av *api.AVInfo) {
	b.game = game
	b.gameExt = nil
	b.av = av
}

// Unbind forgets per game state when the game is unloaded.
func (b *Broker) Unbind() {
	b.game = nil
	b.gameExt = nil
	b.av = nil
	b.shutdown = false
	b.hw = libretro.HWRenderCallback{}
	b.hwSet = false
	b.disks = nil
	b.frameTime = libretro.FrameTimeCallback{}
	b.bufferStatus = 0
	b.keyboard = 0
}

// Close releases native memory handed to the core.
func (b *Broker) Close() {
	b.Unbind()
	b.arena.Free()
}

// ShutdownRequested reports whether the core asked to exit.
func (b *Broker) ShutdownRequested() bool { return b.shutdown }

// SupportsNoGame reports whether the core can run without content.
func (b *Broker) SupportsNoGame() bool { return b.supportNoGame }

// SupportsAchievements reports whether the core declared achievement support.
func (b *Broker) SupportsAchievements() bool { return b.achievements }

// Quirks returns the serialization quirks the core declared.
func (b *Broker) Quirks() uint64 { return b.quirks }

// PerformanceLevel returns the core's declared performance level.
func (b *Broker) PerformanceLevel() uint32 { return b.perfLevel }

// MinimumAudioLatency returns the latency in milliseconds the core asked for.
func (b *Broker) MinimumAudioLatency() uint32 { return b.minLatency }

// FastForwardOverride returns the core's fast forward override.
func (b *Broker) FastForwardOverride() libretro.FastForwardingOverride { return b.ffOverride }

// InputDescriptors returns the inputs the core described.
func (b *Broker) InputDescriptors() []InputDescriptor { return b.descriptors }

// Controllers returns, per port, the device types the core accepts.
func (b *Broker) Controllers() [][]ControllerType { return b.controllers }

// SetFastForward tells the core about fast forward state.
func (b *Broker) SetFastForward(on bool) { b.fastForward = on }

// SetRewinding tells the core about rewind state.
func (b *Broker) SetRewinding(on bool) { b.rewinding = on }

// Disks returns the disk control interface, or nil.
func (b *Broker) Disks() *DiskControl { return b.disks }

func (b *Broker) fps() float64 {
	if b.av != nil && b.av.FPS > 0 {
		return b.av.FPS
	}
	return 60
}
