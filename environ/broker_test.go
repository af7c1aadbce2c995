package environ

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unsafe"

	"github.com/spf13/afero"

	"github.com/amzeratul/retrograde-sub000/api"
	"github.com/amzeratul/retrograde-sub000/audio"
	"github.com/amzeratul/retrograde-sub000/content"
	"github.com/amzeratul/retrograde-sub000/core/coretest"
	"github.com/amzeratul/retrograde-sub000/libretro"
	"github.com/amzeratul/retrograde-sub000/logger"
	"github.com/amzeratul/retrograde-sub000/options"
	"github.com/amzeratul/retrograde-sub000/vfs"
	"github.com/amzeratul/retrograde-sub000/video"
)

type note struct {
	msg   string
	d     time.Duration
	level int
}

type notifier struct{ notes []note }

func (n *notifier) Notify(msg string, d time.Duration, level int) {
	n.notes = append(n.notes, note{msg, d, level})
}

type audioRecorder struct{ rate float64 }

func (a *audioRecorder) SetSourceRate(r float64)   { a.rate = r }
func (a *audioRecorder) WriteSamples([]float32) {}

type noHW struct{}

func (noHW) Supports(ctx libretro.HWContextType, major, minor uint32) bool { return false }
func (noHW) CurrentFramebuffer() uintptr                                  { return 0 }
func (noHW) ProcAddress(string) uintptr                                   { return 0 }
func (noHW) SharedTexture() api.SharedTexture                             { return nil }

type fixture struct {
	b        *Broker
	fake     *coretest.Fake
	opts     *options.Store
	resolver *content.Resolver
	notes    *notifier
	audio    *audioRecorder
	logs     *bytes.Buffer
	av       api.AVInfo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		fake:     coretest.New(),
		opts:     options.NewStore(),
		resolver: content.NewResolver(afero.NewMemMapFs(), "/tmp", 2, nil),
		notes:    &notifier{},
		audio:    &audioRecorder{},
		logs:     &bytes.Buffer{},
	}
	f.b = New(Deps{
		Log:      logger.New(f.logs, logger.WarnLevel),
		Dirs:     Dirs{System: "/sys", Save: "/saves", Playlist: "/playlists", FileBrowser: "/roms"},
		Username: "player",
		Language: "fr_FR",
		Video:    video.NewSink(nil, noHW{}, nil),
		Audio:    audio.NewSink(f.audio),
		Options:  f.opts,
		VFS:      vfs.New(afero.NewMemMapFs(), nil),
		Content:  f.resolver,
		Notifier: f.notes,
		Caller:   f.fake,
	})
	t.Cleanup(func() {
		f.b.Close()
		f.fake.Close()
	})
	return f
}

func (f *fixture) bindGame() {
	f.av = api.AVInfo{BaseWidth: 320, BaseHeight: 240, FPS: 50, SampleRate: 44100}
	f.b.Bind(&content.GameInfo{
		Path: "/roms/game.bin", Dir: "/roms", Stem: "game", Ext: "bin",
		Data: []byte{1, 2, 3}, Size: 3,
	}, &f.av)
}

func env[T any](b *Broker, cmd uint32, v *T) bool {
	return b.Environment(cmd, unsafe.Pointer(v))
}

// TestEnvironment_FixedPolicy tests queries answered with host defaults
func TestEnvironment_FixedPolicy(t *testing.T) {
	f := newFixture(t)

	overscan, dupe := true, false
	if !env(f.b, libretro.EnvGetOverscan, &overscan) || overscan {
		t.Error("GET_OVERSCAN should report false")
	}
	if !env(f.b, libretro.EnvGetCanDupe, &dupe) || !dupe {
		t.Error("GET_CAN_DUPE should report true")
	}

	var u uint32
	if !env(f.b, libretro.EnvGetCoreOptionsVersion, &u) || u != 2 {
		t.Errorf("GET_CORE_OPTIONS_VERSION = %d", u)
	}
	if !env(f.b, libretro.EnvGetInputMaxUsers, &u) || u != MaxUsers {
		t.Errorf("GET_INPUT_MAX_USERS = %d", u)
	}
	if !env(f.b, libretro.EnvGetLanguage, &u) || u != libretro.LanguageFrench {
		t.Errorf("GET_LANGUAGE = %d, want French", u)
	}

	var caps uint64
	if !env(f.b, libretro.EnvGetInputDeviceCapabilities, &caps) || caps&(1<<libretro.DeviceJoypad) == 0 {
		t.Errorf("capabilities = %#x", caps)
	}
	if f.b.Environment(libretro.EnvGetOverscan, nil) {
		t.Error("NULL payload should not be handled")
	}

	bitmasks := false
	if !env(f.b, libretro.EnvGetInputBitmasks, &bitmasks) || !bitmasks {
		t.Error("GET_INPUT_BITMASKS should report support")
	}
	if !f.b.Environment(libretro.EnvGetInputBitmasks, nil) {
		t.Error("GET_INPUT_BITMASKS without a payload should still be handled")
	}
}

// TestEnvironment_Strings tests directory and username queries
func TestEnvironment_Strings(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		cmd  uint32
		want string
		ok   bool
	}{
		{libretro.EnvGetSystemDirectory, "/sys", true},
		{libretro.EnvGetSaveDirectory, "/saves", true},
		{libretro.EnvGetPlaylistDirectory, "/playlists", true},
		{libretro.EnvGetFileBrowserStartDirectory, "/roms", true},
		{libretro.EnvGetUsername, "player", true},
		{libretro.EnvGetCoreAssetsDirectory, "", false},
	}
	for _, tt := range tests {
		var p *byte
		ok := env(f.b, tt.cmd, &p)
		if ok != tt.ok || libretro.GoString(p) != tt.want {
			t.Errorf("cmd %d = %v %q, want %v %q", tt.cmd, ok, libretro.GoString(p), tt.ok, tt.want)
		}
	}
}

// TestEnvironment_Unknown tests unsupported commands are refused
func TestEnvironment_Unknown(t *testing.T) {
	f := newFixture(t)
	var x uint64
	tests := []uint32{9999, libretro.EnvGetSensorInterface, libretro.EnvGetCameraInterface, libretro.EnvSetAudioCallback}
	for _, cmd := range tests {
		if env(f.b, cmd, &x) {
			t.Errorf("command %#x handled", cmd)
		}
	}
	if f.b.Handles(9999) || !f.b.Handles(libretro.EnvSetPixelFormat) {
		t.Error("Handles disagrees with the table")
	}
}

// TestEnvironment_PixelFormat tests format negotiation
func TestEnvironment_PixelFormat(t *testing.T) {
	f := newFixture(t)
	f.bindGame()
	tests := []struct {
		format libretro.PixelFormat
		ok     bool
	}{
		{libretro.PixelFormatRGB565, true},
		{libretro.PixelFormatXRGB8888, true},
		{libretro.PixelFormatUnknown, false},
		{3, false},
	}
	for _, tt := range tests {
		p := tt.format
		if got := env(f.b, libretro.EnvSetPixelFormat, &p); got != tt.ok {
			t.Errorf("SET_PIXEL_FORMAT(%v) = %v, want %v", tt.format, got, tt.ok)
		}
	}
	if f.av.PixelFormat != libretro.PixelFormatXRGB8888 {
		t.Errorf("AV pixel format = %v", f.av.PixelFormat)
	}
}

// TestEnvironment_Geometry tests geometry and AV info updates
func TestEnvironment_Geometry(t *testing.T) {
	f := newFixture(t)
	g := libretro.GameGeometry{BaseWidth: 256, BaseHeight: 224}
	if env(f.b, libretro.EnvSetGeometry, &g) {
		t.Error("SET_GEOMETRY before a game should fail")
	}

	f.bindGame()
	if !env(f.b, libretro.EnvSetGeometry, &g) {
		t.Fatal("SET_GEOMETRY failed")
	}
	if f.av.BaseWidth != 256 || f.av.BaseHeight != 224 || f.av.FPS != 50 {
		t.Errorf("AV after geometry = %+v", f.av)
	}

	rot := uint32(1)
	if !env(f.b, libretro.EnvSetRotation, &rot) || f.av.Rotation != 1 {
		t.Errorf("rotation = %d", f.av.Rotation)
	}
	rot = 4
	if env(f.b, libretro.EnvSetRotation, &rot) {
		t.Error("rotation 4 accepted")
	}

	info := libretro.SystemAVInfo{
		Geometry: libretro.GameGeometry{BaseWidth: 640, BaseHeight: 480},
		Timing:   libretro.SystemTiming{FPS: 59.94, SampleRate: 32000},
	}
	if !env(f.b, libretro.EnvSetSystemAVInfo, &info) {
		t.Fatal("SET_SYSTEM_AV_INFO failed")
	}
	if f.av.FPS != 59.94 || f.audio.rate != 32000 || f.av.Rotation != 1 {
		t.Errorf("AV = %+v, audio rate %v", f.av, f.audio.rate)
	}
}

// TestEnvironment_HWRenderRefused tests unsupported contexts are declined
func TestEnvironment_HWRenderRefused(t *testing.T) {
	f := newFixture(t)
	cb := libretro.HWRenderCallback{ContextType: libretro.HWContextOpenGLCore, VersionMajor: 3, VersionMinor: 3}
	if env(f.b, libretro.EnvSetHWRender, &cb) {
		t.Error("SET_HW_RENDER accepted without support")
	}
	if _, ok := f.b.HWContext(); ok {
		t.Error("context recorded after refusal")
	}
	var ctx libretro.HWContextType
	if env(f.b, libretro.EnvGetPreferredHWRender, &ctx) {
		t.Error("preferred context reported without support")
	}
}

// TestEnvironment_Options tests declaration, queries and updates
func TestEnvironment_Options(t *testing.T) {
	f := newFixture(t)
	vars := []libretro.Variable{
		{Key: f.fake.CString("region"), Value: f.fake.CString("Region; auto|ntsc|pal")},
		{},
	}
	if !env(f.b, libretro.EnvSetVariables, &vars[0]) {
		t.Fatal("SET_VARIABLES failed")
	}

	q := libretro.Variable{Key: f.fake.CString("region")}
	if !env(f.b, libretro.EnvGetVariable, &q) || libretro.GoString(q.Value) != "auto" {
		t.Errorf("GET_VARIABLE = %q", libretro.GoString(q.Value))
	}
	missing := libretro.Variable{Key: f.fake.CString("nope")}
	if env(f.b, libretro.EnvGetVariable, &missing) {
		t.Error("GET_VARIABLE for an unknown key succeeded")
	}

	var updated bool
	env(f.b, libretro.EnvGetVariableUpdate, &updated)
	if updated {
		t.Error("declaration should not raise the update flag")
	}
	f.opts.Set("region", "pal")
	env(f.b, libretro.EnvGetVariableUpdate, &updated)
	if !updated {
		t.Error("update flag not reported")
	}

	set := libretro.Variable{Key: f.fake.CString("region"), Value: f.fake.CString("bogus")}
	if env(f.b, libretro.EnvSetVariable, &set) {
		t.Error("SET_VARIABLE with a disallowed value succeeded")
	}
	if !f.b.Environment(libretro.EnvSetVariable, nil) {
		t.Error("SET_VARIABLE support probe failed")
	}

	disp := libretro.CoreOptionDisplay{Key: f.fake.CString("region"), Visible: false}
	env(f.b, libretro.EnvSetCoreOptionsDisplay, &disp)
	if o, _ := f.opts.Option("region"); o.Visible {
		t.Error("option still visible")
	}
}

// TestEnvironment_OptionsUpdateDisplay tests the visibility callback
func TestEnvironment_OptionsUpdateDisplay(t *testing.T) {
	f := newFixture(t)
	if f.b.OptionsChanged() {
		t.Error("no callback registered yet")
	}
	calls := 0
	cb := libretro.CoreOptionsUpdateDisplayCallback{Callback: f.fake.Func(func([]uintptr) uintptr {
		calls++
		return 1
	})}
	env(f.b, libretro.EnvSetCoreOptionsUpdateDisplayCallback, &cb)
	if !f.b.OptionsChanged() || calls != 1 {
		t.Errorf("callback calls = %d", calls)
	}
}

// TestEnvironment_ContentOverride tests descriptor overrides reach the resolver
func TestEnvironment_ContentOverride(t *testing.T) {
	f := newFixture(t)
	f.resolver.SetDescriptors(content.Set{content.NewDescriptor("bin", false, false)})
	overrides := []libretro.SystemContentInfoOverride{
		{Extensions: f.fake.CString("cue|chd"), NeedFullpath: true},
		{},
	}
	if !env(f.b, libretro.EnvSetContentInfoOverride, &overrides[0]) {
		t.Fatal("SET_CONTENT_INFO_OVERRIDE failed")
	}
	d := f.resolver.Descriptors().Match("game.chd")
	if !d.NeedFullPath {
		t.Error("override not applied")
	}
	if d := f.resolver.Descriptors().Match("game.bin"); d.NeedFullPath {
		t.Error("original descriptor lost")
	}
}

// TestEnvironment_GameInfoExt tests the extended game info
func TestEnvironment_GameInfoExt(t *testing.T) {
	f := newFixture(t)
	var ext *libretro.GameInfoExt
	if env(f.b, libretro.EnvGetGameInfoExt, &ext) {
		t.Error("GET_GAME_INFO_EXT without a game succeeded")
	}
	f.bindGame()
	if !env(f.b, libretro.EnvGetGameInfoExt, &ext) {
		t.Fatal("GET_GAME_INFO_EXT failed")
	}
	if libretro.GoString(ext.Name) != "game" || libretro.GoString(ext.Ext) != "bin" || ext.Size != 3 || ext.FullPath != nil {
		t.Errorf("ext = %+v", ext)
	}
}

// TestEnvironment_Messages tests messages reach the notifier
func TestEnvironment_Messages(t *testing.T) {
	f := newFixture(t)
	f.bindGame()
	m := libretro.Message{Msg: f.fake.CString("Disk 2"), Frames: 100}
	env(f.b, libretro.EnvSetMessage, &m)
	ext := libretro.MessageExt{Msg: f.fake.CString("Saved"), Duration: 1500, Level: libretro.LogWarn}
	env(f.b, libretro.EnvSetMessageExt, &ext)

	want := []note{
		{"Disk 2", 2 * time.Second, libretro.LogInfo},
		{"Saved", 1500 * time.Millisecond, libretro.LogWarn},
	}
	if len(f.notes.notes) != len(want) {
		t.Fatalf("notes = %+v", f.notes.notes)
	}
	for i := range want {
		if f.notes.notes[i] != want[i] {
			t.Errorf("note %d = %+v, want %+v", i, f.notes.notes[i], want[i])
		}
	}
}

// TestEnvironment_HostState tests flags a core sets and reads
func TestEnvironment_HostState(t *testing.T) {
	f := newFixture(t)
	f.bindGame()

	yes := true
	env(f.b, libretro.EnvSetSupportNoGame, &yes)
	if !f.b.SupportsNoGame() {
		t.Error("support no game not recorded")
	}
	f.b.Environment(libretro.EnvShutdown, nil)
	if !f.b.ShutdownRequested() {
		t.Error("shutdown not recorded")
	}


	var st libretro.ThrottleState
	env(f.b, libretro.EnvGetThrottleState, &st)
	if st.Mode != libretro.ThrottleVSync || st.Rate != 50 {
		t.Errorf("throttle = %+v", st)
	}
	f.b.SetRewinding(true)
	env(f.b, libretro.EnvGetThrottleState, &st)
	if st.Mode != libretro.ThrottleRewinding {
		t.Errorf("throttle while rewinding = %+v", st)
	}

	f.b.Unbind()
	if f.b.ShutdownRequested() {
		t.Error("Unbind should clear the shutdown request")
	}
}

// TestEnvironment_InputDescriptors tests NULL terminated array walking
func TestEnvironment_InputDescriptors(t *testing.T) {
	f := newFixture(t)
	descs := []libretro.InputDescriptor{
		{Device: libretro.DeviceJoypad, ID: libretro.JoypadA, Description: f.fake.CString("Jump")},
		{Port: 1, Device: libretro.DeviceJoypad, ID: libretro.JoypadB, Description: f.fake.CString("Fire")},
		{},
	}
	env(f.b, libretro.EnvSetInputDescriptors, &descs[0])
	got := f.b.InputDescriptors()
	if len(got) != 2 || got[1].Port != 1 || got[1].Description != "Fire" {
		t.Errorf("descriptors = %+v", got)
	}

	types := []libretro.ControllerDescription{
		{Desc: f.fake.CString("Pad"), ID: libretro.DeviceJoypad},
		{Desc: f.fake.CString("Mouse"), ID: libretro.DeviceMouse},
	}
	info := []libretro.ControllerInfo{{Types: &types[0], NumTypes: 2}, {}}
	env(f.b, libretro.EnvSetControllerInfo, &info[0])
	if c := f.b.Controllers(); len(c) != 1 || len(c[0]) != 2 || c[0][1].Desc != "Mouse" {
		t.Errorf("controllers = %+v", c)
	}
}

// TestEnvironment_VFSVersion tests that newer VFS versions are refused
func TestEnvironment_VFSVersion(t *testing.T) {
	f := newFixture(t)
	info := libretro.VFSInterfaceInfo{RequiredInterfaceVersion: libretro.VFSInterfaceVersionMax + 1}
	if env(f.b, libretro.EnvGetVFSInterface, &info) {
		t.Error("newer VFS version accepted")
	}
	if f.b.VFS.Active() {
		t.Error("VFS activated on refusal")
	}
}

// TestEnvironment_Callbacks tests frame time and keyboard forwarding
func TestEnvironment_Callbacks(t *testing.T) {
	f := newFixture(t)
	var frameArgs, keyArgs []uintptr
	ft := libretro.FrameTimeCallback{
		Callback:  f.fake.Func(func(a []uintptr) uintptr { frameArgs = a; return 0 }),
		Reference: 16666,
	}
	env(f.b, libretro.EnvSetFrameTimeCallback, &ft)
	f.b.FrameTime(0)
	if len(frameArgs) != 1 || frameArgs[0] != 16666 {
		t.Errorf("frame time args = %v", frameArgs)
	}

	kb := libretro.KeyboardCallback{Callback: f.fake.Func(func(a []uintptr) uintptr { keyArgs = a; return 0 })}
	env(f.b, libretro.EnvSetKeyboardCallback, &kb)
	f.b.Keyboard(true, 97, 'a', 0)
	if len(keyArgs) != 4 || keyArgs[0] != 1 || keyArgs[1] != 97 {
		t.Errorf("keyboard args = %v", keyArgs)
	}
}

// TestLanguageID tests language tag mapping
func TestLanguageID(t *testing.T) {
	tests := []struct {
		tag  string
		want uint32
	}{
		{"en", libretro.LanguageEnglish},
		{"de_DE", libretro.LanguageGerman},
		{"pt-BR", libretro.LanguagePortugueseBrazil},
		{"pt_PT", libretro.LanguagePortuguesePortugal},
		{"zh_TW", libretro.LanguageChineseTraditional},
		{"xx", libretro.LanguageEnglish},
		{"", libretro.LanguageEnglish},
	}
	for _, tt := range tests {
		if got := LanguageID(tt.tag); got != tt.want {
			t.Errorf("LanguageID(%q) = %d, want %d", tt.tag, got, tt.want)
		}
	}
}

// TestEnvironment_SerializationQuirks tests that the host never claims
// variable state sizes and warns when the core has them
func TestEnvironment_SerializationQuirks(t *testing.T) {
	tests := []struct {
		name string
		in   uint64
		want uint64
		warn bool
	}{
		{"none", 0, 0, false},
		{"front variable stripped", libretro.SerializationQuirkFrontVariableSize | libretro.SerializationQuirkIncomplete, libretro.SerializationQuirkIncomplete, false},
		{"core variable", libretro.SerializationQuirkCoreVariableSize, libretro.SerializationQuirkCoreVariableSize, true},
		{"both", libretro.SerializationQuirkCoreVariableSize | libretro.SerializationQuirkFrontVariableSize, libretro.SerializationQuirkCoreVariableSize, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			q := tt.in
			if !env(f.b, libretro.EnvSetSerializationQuirks, &q) {
				t.Fatal("SET_SERIALIZATION_QUIRKS not handled")
			}
			if q != tt.want || f.b.Quirks() != tt.want {
				t.Errorf("reply %#x, recorded %#x, want %#x", q, f.b.Quirks(), tt.want)
			}
			if got := strings.Contains(f.logs.String(), "state size may vary"); got != tt.warn {
				t.Errorf("warning logged = %v, want %v: %s", got, tt.warn, f.logs.String())
			}
		})
	}
}
