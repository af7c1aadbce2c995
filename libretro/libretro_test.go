package libretro

import (
	"runtime"
	"testing"
	"unsafe"
)

// TestGoString_Basic verifies NUL-terminated strings are copied
func TestGoString_Basic(t *testing.T) {
	b := CStringBytes("snes9x")
	if got := GoString(&b[0]); got != "snes9x" {
		t.Errorf("GoString = %q, want %q", got, "snes9x")
	}
	if got := GoString(nil); got != "" {
		t.Errorf("GoString(nil) = %q, want empty", got)
	}
}

// TestGoStringTrim strips trailing newlines from log lines
func TestGoStringTrim(t *testing.T) {
	b := CStringBytes("loaded rom\n")
	if got := GoStringTrim(&b[0]); got != "loaded rom" {
		t.Errorf("GoStringTrim = %q", got)
	}
}

// TestArena_CStringShared checks equal strings reuse storage
func TestArena_CStringShared(t *testing.T) {
	a := NewArena()
	defer a.Free()

	p1 := a.CString("enabled")
	p2 := a.CString("enabled")
	if p1 != p2 {
		t.Error("expected identical pointers for equal strings")
	}
	if GoString(p1) != "enabled" {
		t.Errorf("arena string = %q", GoString(p1))
	}
	p3 := a.CString("disabled")
	if p3 == p1 {
		t.Error("distinct strings must not share storage")
	}
}

// TestSprintf covers the integer-class conversions
func TestSprintf(t *testing.T) {
	name := CStringBytes("core")
	namePtr := uintptr(unsafe.Pointer(&name[0]))
	defer runtime.KeepAlive(name)

	tests := []struct {
		format string
		args   []uintptr
		want   string
	}{
		{"plain", nil, "plain"},
		{"%d frames", []uintptr{42}, "42 frames"},
		{"%d", []uintptr{uintptr(0xFFFFFFFF)}, "-1"},
		{"%u", []uintptr{uintptr(0xFFFFFFFF)}, "4294967295"},
		{"%lld", []uintptr{uintptr(1) << 40}, "1099511627776"},
		{"%04x", []uintptr{0xab}, "00ab"},
		{"%#X", []uintptr{0xab}, "0XAB"},
		{"[%s]", []uintptr{namePtr}, "[core]"},
		{"[%.2s]", []uintptr{namePtr}, "[co]"},
		{"[%-6s]", []uintptr{namePtr}, "[core  ]"},
		{"%s", []uintptr{0}, "(null)"},
		{"%c%c", []uintptr{'o', 'k'}, "ok"},
		{"100%%", nil, "100%"},
		{"%f", nil, "?"},
		{"%d %d", []uintptr{1}, "1 ?"},
		{"%5d|", []uintptr{7}, "    7|"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := Sprintf(tt.format, tt.args); got != tt.want {
				t.Errorf("Sprintf(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

// TestStructLayout pins the sizes of structs whose layout cores depend on
func TestStructLayout(t *testing.T) {
	if unsafe.Sizeof(uintptr(0)) != 8 {
		t.Skip("layout checks assume a 64-bit platform")
	}
	tests := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"retro_game_geometry", unsafe.Sizeof(GameGeometry{}), 20},
		{"retro_system_av_info", unsafe.Sizeof(SystemAVInfo{}), 40},
		{"retro_game_info", unsafe.Sizeof(GameInfo{}), 32},
		{"retro_variable", unsafe.Sizeof(Variable{}), 16},
		{"retro_core_option_definition", unsafe.Sizeof(CoreOptionDefinition{}), 8*3 + 16*NumCoreOptionValuesMax + 8},
		{"retro_hw_render_callback", unsafe.Sizeof(HWRenderCallback{}), 64},
		{"retro_system_content_info_override", unsafe.Sizeof(SystemContentInfoOverride{}), 16},
		{"retro_vfs_interface", unsafe.Sizeof(VFSInterface{}), 19 * 8},
		{"retro_perf_counter", unsafe.Sizeof(PerfCounter{}), 40},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("sizeof(%s) = %d, want %d", tt.name, tt.got, tt.want)
		}
	}
	if off := unsafe.Offsetof(HWRenderCallback{}.VersionMajor); off != 36 {
		t.Errorf("offsetof(version_major) = %d, want 36", off)
	}
	if off := unsafe.Offsetof(SystemAVInfo{}.Timing); off != 24 {
		t.Errorf("offsetof(timing) = %d, want 24", off)
	}
}

// TestIsExperimental distinguishes the command namespaces
func TestIsExperimental(t *testing.T) {
	if IsExperimental(EnvSetPixelFormat) {
		t.Error("SET_PIXEL_FORMAT is not experimental")
	}
	if !IsExperimental(EnvGetVFSInterface) {
		t.Error("GET_VFS_INTERFACE is experimental")
	}
}
