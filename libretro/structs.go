package libretro

// The types below are laid out exactly like their libretro.h counterparts.
// Pointers to C data are kept as *byte / uintptr so the structs can be read
// and written through unsafe.Pointer values handed over by a core.

// SystemInfo is struct retro_system_info.
type SystemInfo struct {
	LibraryName     *byte
	LibraryVersion  *byte
	ValidExtensions *byte
	NeedFullpath    bool
	BlockExtract    bool
}

// GameGeometry is struct retro_game_geometry.
type GameGeometry struct {
	BaseWidth   uint32
	BaseHeight  uint32
	MaxWidth    uint32
	MaxHeight   uint32
	AspectRatio float32
}

// SystemTiming is struct retro_system_timing.
type SystemTiming struct {
	FPS        float64
	SampleRate float64
}

// SystemAVInfo is struct retro_system_av_info.
type SystemAVInfo struct {
	Geometry GameGeometry
	Timing   SystemTiming
}

// GameInfo is struct retro_game_info.
type GameInfo struct {
	Path *byte
	Data uintptr
	Size uintptr
	Meta *byte
}

// GameInfoExt is struct retro_game_info_ext.
type GameInfoExt struct {
	FullPath       *byte
	ArchivePath    *byte
	ArchiveFile    *byte
	Dir            *byte
	Name           *byte
	Ext            *byte
	Meta           *byte
	Data           uintptr
	Size           uintptr
	FileInArchive  bool
	PersistentData bool
}

// SystemContentInfoOverride is struct retro_system_content_info_override.
type SystemContentInfoOverride struct {
	Extensions     *byte
	NeedFullpath   bool
	PersistentData bool
}

// Variable is struct retro_variable.
type Variable struct {
	Key   *byte
	Value *byte
}

// CoreOptionValue is struct retro_core_option_value.
type CoreOptionValue struct {
	Value *byte
	Label *byte
}

// CoreOptionDefinition is struct retro_core_option_definition.
type CoreOptionDefinition struct {
	Key          *byte
	Desc         *byte
	Info         *byte
	Values       [NumCoreOptionValuesMax]CoreOptionValue
	DefaultValue *byte
}

// CoreOptionsIntl is struct retro_core_options_intl.
type CoreOptionsIntl struct {
	US    *CoreOptionDefinition
	Local *CoreOptionDefinition
}

// CoreOptionV2Category is struct retro_core_option_v2_category.
type CoreOptionV2Category struct {
	Key  *byte
	Desc *byte
	Info *byte
}

// CoreOptionV2Definition is struct retro_core_option_v2_definition.
type CoreOptionV2Definition struct {
	Key             *byte
	Desc            *byte
	DescCategorized *byte
	Info            *byte
	InfoCategorized *byte
	CategoryKey     *byte
	Values          [NumCoreOptionValuesMax]CoreOptionValue
	DefaultValue    *byte
}

// CoreOptionsV2 is struct retro_core_options_v2.
type CoreOptionsV2 struct {
	Categories  *CoreOptionV2Category
	Definitions *CoreOptionV2Definition
}

// CoreOptionsV2Intl is struct retro_core_options_v2_intl.
type CoreOptionsV2Intl struct {
	US    *CoreOptionsV2
	Local *CoreOptionsV2
}

// CoreOptionDisplay is struct retro_core_option_display.
type CoreOptionDisplay struct {
	Key     *byte
	Visible bool
}

// CoreOptionsUpdateDisplayCallback is struct retro_core_options_update_display_callback.
type CoreOptionsUpdateDisplayCallback struct {
	Callback uintptr
}

// LogCallback is struct retro_log_callback.
type LogCallback struct {
	Log uintptr
}

// RumbleInterface is struct retro_rumble_interface.
type RumbleInterface struct {
	SetRumbleState uintptr
}

// LEDInterface is struct retro_led_interface.
type LEDInterface struct {
	SetLEDState uintptr
}

// PerfCallback is struct retro_perf_callback.
type PerfCallback struct {
	GetTimeUsec    uintptr
	GetCPUFeatures uintptr
	GetPerfCounter uintptr
	PerfRegister   uintptr
	PerfStart      uintptr
	PerfStop       uintptr
	PerfLog        uintptr
}

// PerfCounter is struct retro_perf_counter.
type PerfCounter struct {
	Ident      *byte
	Start      uint64
	Total      uint64
	CallCnt    uint64
	Registered bool
}

// HWRenderCallback is struct retro_hw_render_callback.
type HWRenderCallback struct {
	ContextType           HWContextType
	ContextReset          uintptr
	GetCurrentFramebuffer uintptr
	GetProcAddress        uintptr
	Depth                 bool
	Stencil               bool
	BottomLeftOrigin      bool
	VersionMajor          uint32
	VersionMinor          uint32
	CacheContext          bool
	ContextDestroy        uintptr
	DebugContext          bool
}

// Message is struct retro_message.
type Message struct {
	Msg    *byte
	Frames uint32
}

// MessageExt is struct retro_message_ext.
type MessageExt struct {
	Msg      *byte
	Duration uint32
	Priority uint32
	Level    int32
	Target   int32
	Type     int32
	Progress int8
}

// ControllerDescription is struct retro_controller_description.
type ControllerDescription struct {
	Desc *byte
	ID   uint32
}

// ControllerInfo is struct retro_controller_info.
type ControllerInfo struct {
	Types    *ControllerDescription
	NumTypes uint32
}

// InputDescriptor is struct retro_input_descriptor.
type InputDescriptor struct {
	Port        uint32
	Device      uint32
	Index       uint32
	ID          uint32
	Description *byte
}

// DiskControlCallback is struct retro_disk_control_callback.
type DiskControlCallback struct {
	SetEjectState     uintptr
	GetEjectState     uintptr
	GetImageIndex     uintptr
	SetImageIndex     uintptr
	GetNumImages      uintptr
	ReplaceImageIndex uintptr
	AddImageIndex     uintptr
}

// DiskControlExtCallback is struct retro_disk_control_ext_callback.
type DiskControlExtCallback struct {
	DiskControlCallback
	SetInitialImage uintptr
	GetImagePath    uintptr
	GetImageLabel   uintptr
}

// FrameTimeCallback is struct retro_frame_time_callback.
type FrameTimeCallback struct {
	Callback  uintptr
	Reference int64
}

// AudioBufferStatusCallback is struct retro_audio_buffer_status_callback.
type AudioBufferStatusCallback struct {
	Callback uintptr
}

// KeyboardCallback is struct retro_keyboard_callback.
type KeyboardCallback struct {
	Callback uintptr
}

// FastForwardingOverride is struct retro_fastforwarding_override.
type FastForwardingOverride struct {
	Ratio         float32
	FastForward   bool
	Notification  bool
	InhibitToggle bool
}

// ThrottleState is struct retro_throttle_state.
type ThrottleState struct {
	Mode uint32
	Rate float32
}

// Throttle modes.
const (
	ThrottleNone          = 0
	ThrottleFrameStepping = 1
	ThrottleFastForward   = 2
	ThrottleSlowMotion    = 3
	ThrottleRewinding     = 4
	ThrottleVSync         = 5
	ThrottleUnblocked     = 6
)

// VFSInterfaceInfo is struct retro_vfs_interface_info.
type VFSInterfaceInfo struct {
	RequiredInterfaceVersion uint32
	Iface                    *VFSInterface
}

// VFSInterface is struct retro_vfs_interface, versions 1 to 3.
type VFSInterface struct {
	// v1
	GetPath uintptr
	Open    uintptr
	Close   uintptr
	Size    uintptr
	Tell    uintptr
	Seek    uintptr
	Read    uintptr
	Write   uintptr
	Flush   uintptr
	Remove  uintptr
	Rename  uintptr
	// v2
	Truncate uintptr
	// v3
	Stat          uintptr
	Mkdir         uintptr
	Opendir       uintptr
	Readdir       uintptr
	DirentGetName uintptr
	DirentIsDir   uintptr
	Closedir      uintptr
}
