// Package dynlib loads native shared libraries and resolves their entry
// points without cgo.
package dynlib

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// ErrSymbolNotFound is returned when a required entry point is missing.
var ErrSymbolNotFound = errors.New("symbol not found")

// ErrClosed is returned when a closed library is used.
var ErrClosed = errors.New("library closed")

// Library owns an open shared library handle. Close releases it exactly once.
type Library struct {
	path string

	mu     sync.Mutex
	handle uintptr
}

// Open loads the shared library at path. If path has no extension the
// platform's shared library suffix is appended.
func Open(path string) (*Library, error) {
	full := path
	if filepath.Ext(path) == "" {
		full = path + Ext()
	}
	h, err := dlopen(full)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", full, err)
	}
	return &Library{path: full, handle: h}, nil
}

// Path returns the resolved library path.
func (l *Library) Path() string { return l.path }

// Handle returns the raw handle, zero once closed.
func (l *Library) Handle() uintptr {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.handle
}

// Sym resolves a named entry point.
func (l *Library) Sym(name string) (uintptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handle == 0 {
		return 0, ErrClosed
	}
	addr, err := dlsym(l.handle, name)
	if err != nil || addr == 0 {
		return 0, fmt.Errorf("%w: %s", ErrSymbolNotFound, name)
	}
	return addr, nil
}

// Resolve looks up every name and fails on the first missing symbol.
func (l *Library) Resolve(names ...string) (map[string]uintptr, error) {
	syms := make(map[string]uintptr, len(names))
	var missing []string
	for _, n := range names {
		addr, err := l.Sym(n)
		if err != nil {
			missing = append(missing, n)
			continue
		}
		syms[n] = addr
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, strings.Join(missing, ", "))
	}
	return syms, nil
}

// Close unloads the library. Calling Close more than once is a no-op.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handle == 0 {
		return nil
	}
	err := dlclose(l.handle)
	l.handle = 0
	return err
}

// Ext returns the shared library suffix for the running platform.
func Ext() string {
	switch runtime.GOOS {
	case "darwin", "ios":
		return ".dylib"
	case "windows":
		return ".dll"
	default:
		return ".so"
	}
}
