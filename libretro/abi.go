// Package libretro mirrors the frontend side of the libretro ABI: the
// constants, C struct layouts and string helpers a host needs to talk to a
// core loaded from a shared library. Struct layouts match libretro.h on
// 64-bit platforms field for field.
package libretro

import "math"

// APIVersion is the libretro API version this host implements.
const APIVersion = 1

// Environment command namespaces.
const (
	EnvironmentExperimental = 0x10000
	EnvironmentPrivate      = 0x20000
)

// Environment commands.
const (
	EnvSetRotation                          = 1
	EnvGetOverscan                          = 2
	EnvGetCanDupe                           = 3
	EnvSetMessage                           = 6
	EnvShutdown                             = 7
	EnvSetPerformanceLevel                  = 8
	EnvGetSystemDirectory                   = 9
	EnvSetPixelFormat                       = 10
	EnvSetInputDescriptors                  = 11
	EnvSetKeyboardCallback                  = 12
	EnvSetDiskControlInterface              = 13
	EnvSetHWRender                          = 14
	EnvGetVariable                          = 15
	EnvSetVariables                         = 16
	EnvGetVariableUpdate                    = 17
	EnvSetSupportNoGame                     = 18
	EnvGetLibretroPath                      = 19
	EnvSetFrameTimeCallback                 = 21
	EnvSetAudioCallback                     = 22
	EnvGetRumbleInterface                   = 23
	EnvGetInputDeviceCapabilities           = 24
	EnvGetSensorInterface                   = 25 | EnvironmentExperimental
	EnvGetCameraInterface                   = 26 | EnvironmentExperimental
	EnvGetLogInterface                      = 27
	EnvGetPerfInterface                     = 28
	EnvGetLocationInterface                 = 29
	EnvGetCoreAssetsDirectory               = 30
	EnvGetSaveDirectory                     = 31
	EnvSetSystemAVInfo                      = 32
	EnvSetProcAddressCallback               = 33
	EnvSetSubsystemInfo                     = 34
	EnvSetControllerInfo                    = 35
	EnvSetMemoryMaps                        = 36 | EnvironmentExperimental
	EnvSetGeometry                          = 37
	EnvGetUsername                          = 38
	EnvGetLanguage                          = 39
	EnvGetCurrentSoftwareFramebuffer        = 40 | EnvironmentExperimental
	EnvGetHWRenderInterface                 = 41 | EnvironmentExperimental
	EnvSetSupportAchievements               = 42 | EnvironmentExperimental
	EnvSetHWRenderContextNegotiation        = 43 | EnvironmentExperimental
	EnvSetSerializationQuirks               = 44
	EnvSetHWSharedContext                   = 44 | EnvironmentExperimental
	EnvGetVFSInterface                      = 45 | EnvironmentExperimental
	EnvGetLEDInterface                      = 46 | EnvironmentExperimental
	EnvGetAudioVideoEnable                  = 47 | EnvironmentExperimental
	EnvGetMIDIInterface                     = 48 | EnvironmentExperimental
	EnvGetFastForwarding                    = 49 | EnvironmentExperimental
	EnvGetTargetRefreshRate                 = 50 | EnvironmentExperimental
	EnvGetInputBitmasks                     = 51 | EnvironmentExperimental
	EnvGetCoreOptionsVersion                = 52
	EnvSetCoreOptions                       = 53
	EnvSetCoreOptionsIntl                   = 54
	EnvSetCoreOptionsDisplay                = 55
	EnvGetPreferredHWRender                 = 56
	EnvGetDiskControlInterfaceVersion       = 57
	EnvSetDiskControlExtInterface           = 58
	EnvGetMessageInterfaceVersion           = 59
	EnvSetMessageExt                        = 60
	EnvGetInputMaxUsers                     = 61
	EnvSetAudioBufferStatusCallback         = 62
	EnvSetMinimumAudioLatency               = 63
	EnvSetFastForwardingOverride            = 64
	EnvSetContentInfoOverride               = 65
	EnvGetGameInfoExt                       = 66
	EnvSetCoreOptionsV2                     = 67
	EnvSetCoreOptionsV2Intl                 = 68
	EnvSetCoreOptionsUpdateDisplayCallback  = 69
	EnvSetVariable                          = 70
	EnvGetThrottleState                     = 71 | EnvironmentExperimental
	EnvGetSavestateContext                  = 72 | EnvironmentExperimental
	EnvGetHWRenderContextNegotiationSupport = 73 | EnvironmentExperimental
	EnvGetJITCapable                        = 74
	EnvGetMicrophoneInterface               = 75 | EnvironmentExperimental
	EnvGetDevicePower                       = 77 | EnvironmentExperimental
	EnvSetNetpacketInterface                = 78
	EnvGetPlaylistDirectory                 = 79
	EnvGetFileBrowserStartDirectory         = 80
)

// IsExperimental reports whether cmd lies in the experimental namespace.
func IsExperimental(cmd uint32) bool {
	return cmd&EnvironmentExperimental != 0
}

// PixelFormat is enum retro_pixel_format.
type PixelFormat int32

// Pixel formats.
const (
	PixelFormat0RGB1555 PixelFormat = 0
	PixelFormatXRGB8888 PixelFormat = 1
	PixelFormatRGB565   PixelFormat = 2
	PixelFormatUnknown  PixelFormat = math.MaxInt32
)

// String returns the libretro name of the format.
func (p PixelFormat) String() string {
	switch p {
	case PixelFormat0RGB1555:
		return "0RGB1555"
	case PixelFormatXRGB8888:
		return "XRGB8888"
	case PixelFormatRGB565:
		return "RGB565"
	case PixelFormatUnknown:
		return "Unknown"
	default:
		return "Invalid"
	}
}

// HWContextType is enum retro_hw_context_type.
type HWContextType uint32

// Hardware context types.
const (
	HWContextNone            HWContextType = 0
	HWContextOpenGL          HWContextType = 1
	HWContextOpenGLES2       HWContextType = 2
	HWContextOpenGLCore      HWContextType = 3
	HWContextOpenGLES3       HWContextType = 4
	HWContextOpenGLESVersion HWContextType = 5
	HWContextVulkan          HWContextType = 6
	HWContextD3D11           HWContextType = 7
	HWContextD3D10           HWContextType = 8
	HWContextD3D12           HWContextType = 9
	HWContextD3D9            HWContextType = 10
	HWContextDummy           HWContextType = math.MaxInt32
)

// IsOpenGL reports whether the context renders through an OpenGL family API,
// whose framebuffers have a bottom-left origin.
func (c HWContextType) IsOpenGL() bool {
	switch c {
	case HWContextOpenGL, HWContextOpenGLES2, HWContextOpenGLCore,
		HWContextOpenGLES3, HWContextOpenGLESVersion:
		return true
	}
	return false
}

// String returns a short name for the context type.
func (c HWContextType) String() string {
	switch c {
	case HWContextNone:
		return "none"
	case HWContextOpenGL:
		return "opengl"
	case HWContextOpenGLES2:
		return "gles2"
	case HWContextOpenGLCore:
		return "glcore"
	case HWContextOpenGLES3:
		return "gles3"
	case HWContextOpenGLESVersion:
		return "gles"
	case HWContextVulkan:
		return "vulkan"
	case HWContextD3D11:
		return "d3d11"
	case HWContextD3D10:
		return "d3d10"
	case HWContextD3D12:
		return "d3d12"
	case HWContextD3D9:
		return "d3d9"
	case HWContextDummy:
		return "dummy"
	default:
		return "unknown"
	}
}

// HWFrameBufferValid is the sentinel data pointer passed to video refresh
// when the frame was rendered into the hardware framebuffer.
const HWFrameBufferValid = ^uintptr(0)

// Serialization quirks.
const (
	SerializationQuirkIncomplete        uint64 = 1 << 0
	SerializationQuirkMustInitialize    uint64 = 1 << 1
	SerializationQuirkCoreVariableSize  uint64 = 1 << 2
	SerializationQuirkFrontVariableSize uint64 = 1 << 3
	SerializationQuirkSingleSession     uint64 = 1 << 4
	SerializationQuirkEndianDependent   uint64 = 1 << 5
	SerializationQuirkPlatformDependent uint64 = 1 << 6
)

// Memory region ids for retro_get_memory_data.
const (
	MemorySaveRAM   = 0
	MemoryRTC       = 1
	MemorySystemRAM = 2
	MemoryVideoRAM  = 3
)

// Input devices.
const (
	DeviceNone     = 0
	DeviceJoypad   = 1
	DeviceMouse    = 2
	DeviceKeyboard = 3
	DeviceLightgun = 4
	DeviceAnalog   = 5
	DevicePointer  = 6

	DeviceTypeShift = 8
	DeviceMask      = (1 << DeviceTypeShift) - 1
)

// Joypad button ids.
const (
	JoypadB      = 0
	JoypadY      = 1
	JoypadSelect = 2
	JoypadStart  = 3
	JoypadUp     = 4
	JoypadDown   = 5
	JoypadLeft   = 6
	JoypadRight  = 7
	JoypadA      = 8
	JoypadX      = 9
	JoypadL      = 10
	JoypadR      = 11
	JoypadL2     = 12
	JoypadR2     = 13
	JoypadL3     = 14
	JoypadR3     = 15
	JoypadMask   = 256
)

// Analog indices and axes.
const (
	AnalogIndexLeft   = 0
	AnalogIndexRight  = 1
	AnalogIndexButton = 2
	AnalogX           = 0
	AnalogY           = 1
)

// Log levels for the log interface.
const (
	LogDebug = 0
	LogInfo  = 1
	LogWarn  = 2
	LogError = 3
)

// Languages (subset reported by the host).
const (
	LanguageEnglish            = 0
	LanguageJapanese           = 1
	LanguageFrench             = 2
	LanguageSpanish            = 3
	LanguageGerman             = 4
	LanguageItalian            = 5
	LanguageDutch              = 6
	LanguagePortugueseBrazil   = 7
	LanguagePortuguesePortugal = 8
	LanguageRussian            = 9
	LanguageKorean             = 10
	LanguageChineseTraditional = 11
	LanguageChineseSimplified  = 12
)

// Rumble effects.
const (
	RumbleStrong = 0
	RumbleWeak   = 1
)

// Regions for retro_get_region.
const (
	RegionNTSC = 0
	RegionPAL  = 1
)

// Core options.
const (
	NumCoreOptionValuesMax = 128
	CoreOptionsVersion     = 2
)

// VFS interface versions and flags.
const (
	VFSInterfaceVersionMax = 3

	VFSFileAccessRead           = 1 << 0
	VFSFileAccessWrite          = 1 << 1
	VFSFileAccessReadWrite      = VFSFileAccessRead | VFSFileAccessWrite
	VFSFileAccessUpdateExisting = 1 << 2

	VFSSeekPositionStart   = 0
	VFSSeekPositionCurrent = 1
	VFSSeekPositionEnd     = 2

	VFSStatIsValid            = 1 << 0
	VFSStatIsDirectory        = 1 << 1
	VFSStatIsCharacterSpecial = 1 << 2
)

// SIMD feature flags for the perf interface.
const (
	SIMDSSE    = 1 << 0
	SIMDSSE2   = 1 << 1
	SIMDVMX    = 1 << 2
	SIMDAVX    = 1 << 4
	SIMDNEON   = 1 << 5
	SIMDSSE3   = 1 << 6
	SIMDSSSE3  = 1 << 7
	SIMDMMX    = 1 << 8
	SIMDMMXEXT = 1 << 9
	SIMDSSE4   = 1 << 10
	SIMDSSE42  = 1 << 11
	SIMDAVX2   = 1 << 12
	SIMDPOPCNT = 1 << 14
	SIMDMOVBE  = 1 << 15
	SIMDCMOV   = 1 << 16
	SIMDASIMD  = 1 << 17
)

// Savestate contexts reported by GET_SAVESTATE_CONTEXT.
const (
	SavestateContextNormal       = 0
	SavestateContextRunaheadSame = 1
)
