package dynlib

import (
	"errors"
	"path/filepath"
	"runtime"
	"testing"
)

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing_libretro"))
	if err == nil {
		t.Fatal("expected error opening a missing library")
	}
}

func TestExt(t *testing.T) {
	want := map[string]string{"darwin": ".dylib", "windows": ".dll", "linux": ".so"}
	if w, ok := want[runtime.GOOS]; ok && Ext() != w {
		t.Errorf("Ext() = %q, want %q", Ext(), w)
	}
}

func TestClosedLibrary(t *testing.T) {
	l := &Library{path: "fake"}
	if _, err := l.Sym("retro_init"); !errors.Is(err, ErrClosed) {
		t.Errorf("Sym on closed library: err = %v, want ErrClosed", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close on closed library: %v", err)
	}
}

func TestResolve_System(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("libc path is linux specific")
	}
	l, err := Open("libc.so.6")
	if err != nil {
		t.Skipf("libc not loadable: %v", err)
	}
	defer l.Close()

	syms, err := l.Resolve("malloc", "free")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if syms["malloc"] == 0 || syms["free"] == 0 {
		t.Error("expected non-zero symbol addresses")
	}

	_, err = l.Resolve("malloc", "retro_definitely_missing")
	if !errors.Is(err, ErrSymbolNotFound) {
		t.Errorf("err = %v, want ErrSymbolNotFound", err)
	}

	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
