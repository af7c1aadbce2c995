package libretro

import (
	"runtime"
	"strings"
	"sync"
	"unsafe"
)

// GoString copies a NUL-terminated C string. A nil pointer yields "".
func GoString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}

// GoStringTrim copies a C string and strips trailing newlines, the way core
// log lines usually arrive.
func GoStringTrim(p *byte) string {
	return strings.TrimRight(GoString(p), "\r\n")
}

// Bytes returns a borrowed view of n bytes at p. The view aliases memory the
// host does not own and must not outlive the call that produced it.
func Bytes(p unsafe.Pointer, n int) []byte {
	if p == nil || n <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(p), n)
}

// Arena hands out Go memory that stays valid, and pinned, while a core may
// hold on to it: option values, directory paths, interface tables. Free
// releases everything at once.
type Arena struct {
	mu      sync.Mutex
	pinner  runtime.Pinner
	strings map[string]*byte
	keep    []any
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{strings: make(map[string]*byte)}
}

// CString returns a pinned NUL-terminated copy of s. Equal strings share
// storage, so repeated lookups of the same value do not grow the arena.
func (a *Arena) CString(s string) *byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	if p, ok := a.strings[s]; ok {
		return p
	}
	b := make([]byte, len(s)+1)
	copy(b, s)
	p := &b[0]
	a.pinner.Pin(p)
	a.strings[s] = p
	return p
}

// Pin keeps v (which must be a pointer) reachable and pinned until Free.
func (a *Arena) Pin(v any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pinner.Pin(v)
	a.keep = append(a.keep, v)
}

// Free unpins and forgets everything allocated from the arena.
func (a *Arena) Free() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pinner.Unpin()
	a.strings = make(map[string]*byte)
	a.keep = nil
}

// CStringBytes returns a fresh NUL-terminated byte slice holding s. It is
// meant for short-lived arguments passed down into a core during one call.
func CStringBytes(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}
