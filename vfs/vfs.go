// Package vfs is the filesystem a core reaches through the libretro VFS
// interface: in-memory virtual files shadow a passthrough to the real
// filesystem.
package vfs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/amzeratul/retrograde-sub000/libretro"
	"github.com/amzeratul/retrograde-sub000/logger"
)

// ErrBadHandle is returned for unknown or closed handles.
var ErrBadHandle = errors.New("invalid vfs handle")

// FS routes file operations to the virtual layer when the path exists
// there, otherwise to the real filesystem.
type FS struct {
	real afero.Fs
	log  *logger.Logger

	mu     sync.Mutex
	mem    afero.Fs
	active bool
	nextID uintptr
	files  map[uintptr]*file
	dirs   map[uintptr]*dir
	arena  *libretro.Arena
	iface  *libretro.VFSInterface
}

type file struct {
	path    string
	f       afero.File
	virtual bool
}

type dir struct {
	entries []os.FileInfo
	pos     int
}

// New creates an inactive filesystem passing through to real.
func New(real afero.Fs, log *logger.Logger) *FS {
	if log == nil {
		log = logger.Nop()
	}
	return &FS{
		real:   real,
		log:    log,
		mem:    afero.NewMemMapFs(),
		files:  make(map[uintptr]*file),
		dirs:   make(map[uintptr]*dir),
		arena:  libretro.NewArena(),
		nextID: 1,
	}
}

// Activate marks the filesystem as negotiated by a core.
func (v *FS) Activate() {
	v.mu.Lock()
	v.active = true
	v.mu.Unlock()
}

// Active reports whether a core negotiated the VFS interface.
func (v *FS) Active() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.active
}

// AddFile places a virtual file at path, replacing any previous one.
func (v *FS) AddFile(path string, data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	path = clean(path)
	if err := v.mem.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(v.mem, path, data, 0o644)
}

// ReadVirtual returns the contents of a virtual file.
func (v *FS) ReadVirtual(path string) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return afero.ReadFile(v.mem, clean(path))
}

// Clear closes every open handle and drops all virtual files.
func (v *FS) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	for id, f := range v.files {
		f.f.Close()
		delete(v.files, id)
	}
	clear(v.dirs)
	v.mem = afero.NewMemMapFs()
}

// Close releases everything including the native interface table.
func (v *FS) Close() {
	v.Clear()
	v.mu.Lock()
	defer v.mu.Unlock()
	v.active = false
	v.arena.Free()
}

func clean(p string) string {
	return filepath.Clean(p)
}

// route picks the layer for path. Paths present in memory, or whose parent
// directory only exists in memory, are virtual.
func (v *FS) route(path string) (afero.Fs, bool) {
	if _, err := v.mem.Stat(path); err == nil {
		return v.mem, true
	}
	parent := filepath.Dir(path)
	if parent != path {
		if _, err := v.mem.Stat(parent); err == nil {
			if _, err := v.real.Stat(parent); err != nil {
				return v.mem, true
			}
		}
	}
	return v.real, false
}

func openFlags(mode uint32) (int, error) {
	switch mode & libretro.VFSFileAccessReadWrite {
	case libretro.VFSFileAccessRead:
		return os.O_RDONLY, nil
	case libretro.VFSFileAccessWrite:
		if mode&libretro.VFSFileAccessUpdateExisting != 0 {
			return os.O_WRONLY, nil
		}
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC, nil
	case libretro.VFSFileAccessReadWrite:
		if mode&libretro.VFSFileAccessUpdateExisting != 0 {
			return os.O_RDWR, nil
		}
		return os.O_RDWR | os.O_CREATE | os.O_TRUNC, nil
	}
	return 0, fmt.Errorf("invalid vfs access mode %#x", mode)
}

// Open opens path and returns a handle id.
func (v *FS) Open(path string, mode uint32) (uintptr, error) {
	flags, err := openFlags(mode)
	if err != nil {
		return 0, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	path = clean(path)
	layer, virtual := v.route(path)
	f, err := layer.OpenFile(path, flags, 0o644)
	if err != nil {
		return 0, err
	}
	id := v.nextID
	v.nextID++
	v.files[id] = &file{path: path, f: f, virtual: virtual}
	return id, nil
}

func (v *FS) file(id uintptr) (*file, error) {
	f, ok := v.files[id]
	if !ok {
		return nil, ErrBadHandle
	}
	return f, nil
}

// Path returns the path a handle was opened with.
func (v *FS) Path(id uintptr) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	f, err := v.file(id)
	if err != nil {
		return "", err
	}
	return f.path, nil
}

// CloseFile closes a handle.
func (v *FS) CloseFile(id uintptr) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	f, err := v.file(id)
	if err != nil {
		return err
	}
	delete(v.files, id)
	return f.f.Close()
}

// Size returns the current size of an open file.
func (v *FS) Size(id uintptr) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	f, err := v.file(id)
	if err != nil {
		return -1, err
	}
	st, err := f.f.Stat()
	if err != nil {
		return -1, err
	}
	return st.Size(), nil
}

// Tell returns the current offset.
func (v *FS) Tell(id uintptr) (int64, error) {
	return v.Seek(id, 0, io.SeekCurrent)
}

// Seek moves the offset. whence uses io.Seek* values.
func (v *FS) Seek(id uintptr, offset int64, whence int) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	f, err := v.file(id)
	if err != nil {
		return -1, err
	}
	return f.f.Seek(offset, whence)
}

// Read reads into p, returning the bytes read. End of file is not an error.
func (v *FS) Read(id uintptr, p []byte) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	f, err := v.file(id)
	if err != nil {
		return -1, err
	}
	n, err := io.ReadFull(f.f, p)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	return int64(n), err
}

// Write writes p at the current offset.
func (v *FS) Write(id uintptr, p []byte) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	f, err := v.file(id)
	if err != nil {
		return -1, err
	}
	n, err := f.f.Write(p)
	return int64(n), err
}

// Flush commits buffered writes.
func (v *FS) Flush(id uintptr) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	f, err := v.file(id)
	if err != nil {
		return err
	}
	return f.f.Sync()
}

// Truncate sets the file length.
func (v *FS) Truncate(id uintptr, length int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	f, err := v.file(id)
	if err != nil {
		return err
	}
	return f.f.Truncate(length)
}

// Remove deletes a file.
func (v *FS) Remove(path string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	path = clean(path)
	layer, _ := v.route(path)
	return layer.Remove(path)
}

// Rename moves a file within one layer. A virtual source stays virtual.
func (v *FS) Rename(oldPath, newPath string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	oldPath, newPath = clean(oldPath), clean(newPath)
	layer, virtual := v.route(oldPath)
	if virtual {
		if err := v.mem.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
			return err
		}
	}
	return layer.Rename(oldPath, newPath)
}

// Stat returns libretro stat flags and the size of path. Missing paths
// yield zero flags.
func (v *FS) Stat(path string) (flags uint32, size int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	path = clean(path)
	layer, _ := v.route(path)
	st, err := layer.Stat(path)
	if err != nil {
		return 0, 0
	}
	flags = libretro.VFSStatIsValid
	if st.IsDir() {
		flags |= libretro.VFSStatIsDirectory
	}
	if st.Mode()&os.ModeCharDevice != 0 {
		flags |= libretro.VFSStatIsCharacterSpecial
	}
	return flags, st.Size()
}

// Mkdir results.
const (
	MkdirOK     = 0
	MkdirFailed = -1
	MkdirExists = -2
)

// Mkdir creates a directory, returning one of the Mkdir codes.
func (v *FS) Mkdir(path string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	path = clean(path)
	layer, _ := v.route(path)
	if _, err := layer.Stat(path); err == nil {
		return MkdirExists
	}
	if err := layer.Mkdir(path, 0o755); err != nil {
		if errors.Is(err, os.ErrExist) {
			return MkdirExists
		}
		return MkdirFailed
	}
	return MkdirOK
}

// Opendir lists path across both layers, virtual entries shadowing real
// ones of the same name.
func (v *FS) Opendir(path string, includeHidden bool) (uintptr, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	path = clean(path)

	byName := map[string]os.FileInfo{}
	realEntries, realErr := afero.ReadDir(v.real, path)
	for _, e := range realEntries {
		byName[e.Name()] = e
	}
	memEntries, memErr := afero.ReadDir(v.mem, path)
	for _, e := range memEntries {
		byName[e.Name()] = e
	}
	if realErr != nil && memErr != nil {
		return 0, realErr
	}

	d := &dir{pos: -1}
	for name, e := range byName {
		if !includeHidden && strings.HasPrefix(name, ".") {
			continue
		}
		d.entries = append(d.entries, e)
	}
	slices.SortFunc(d.entries, func(a, b os.FileInfo) int { return strings.Compare(a.Name(), b.Name()) })

	id := v.nextID
	v.nextID++
	v.dirs[id] = d
	return id, nil
}

// Readdir advances to the next entry, returning false at the end.
func (v *FS) Readdir(id uintptr) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	d, ok := v.dirs[id]
	if !ok {
		return false
	}
	if d.pos < len(d.entries) {
		d.pos++
	}
	return d.pos < len(d.entries)
}

func (v *FS) entry(id uintptr) os.FileInfo {
	d, ok := v.dirs[id]
	if !ok || d.pos < 0 || d.pos >= len(d.entries) {
		return nil
	}
	return d.entries[d.pos]
}

// DirentName returns the name of the current entry.
func (v *FS) DirentName(id uintptr) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if e := v.entry(id); e != nil {
		return e.Name()
	}
	return ""
}

// DirentIsDir reports whether the current entry is a directory.
func (v *FS) DirentIsDir(id uintptr) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	e := v.entry(id)
	return e != nil && e.IsDir()
}

// Closedir releases a directory handle.
func (v *FS) Closedir(id uintptr) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.dirs[id]; !ok {
		return ErrBadHandle
	}
	delete(v.dirs, id)
	return nil
}

// OpenHandles returns the number of open file and directory handles.
func (v *FS) OpenHandles() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.files) + len(v.dirs)
}
