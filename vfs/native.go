package vfs

import (
	"io"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/amzeratul/retrograde-sub000/libretro"
)

// Interface returns the libretro VFS function table for this filesystem,
// built on first use and valid until Close. The table implements every
// version up to libretro.VFSInterfaceVersionMax.
func (v *FS) Interface() *libretro.VFSInterface {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.iface != nil {
		return v.iface
	}

	t := &libretro.VFSInterface{
		GetPath: purego.NewCallback(func(h uintptr) uintptr {
			p, err := v.Path(h)
			if err != nil {
				return 0
			}
			return uintptr(unsafe.Pointer(v.arena.CString(p)))
		}),
		Open: purego.NewCallback(func(path unsafe.Pointer, mode, _ uintptr) uintptr {
			id, err := v.Open(libretro.GoString((*byte)(path)), uint32(mode))
			if err != nil {
				v.log.Debug().Err(err).Msg("vfs open failed")
				return 0
			}
			return id
		}),
		Close: purego.NewCallback(func(h uintptr) uintptr {
			return status(v.CloseFile(h))
		}),
		Size: purego.NewCallback(func(h uintptr) uintptr {
			n, _ := v.Size(h)
			return uintptr(n)
		}),
		Tell: purego.NewCallback(func(h uintptr) uintptr {
			n, err := v.Tell(h)
			if err != nil {
				return minusOne
			}
			return uintptr(n)
		}),
		Seek: purego.NewCallback(func(h uintptr, offset uintptr, pos uintptr) uintptr {
			n, err := v.Seek(h, int64(offset), whence(int32(pos)))
			if err != nil {
				return minusOne
			}
			return uintptr(n)
		}),
		Read: purego.NewCallback(func(h uintptr, buf unsafe.Pointer, n uintptr) uintptr {
			got, err := v.Read(h, libretro.Bytes(buf, int(n)))
			if err != nil {
				return minusOne
			}
			return uintptr(got)
		}),
		Write: purego.NewCallback(func(h uintptr, buf unsafe.Pointer, n uintptr) uintptr {
			got, err := v.Write(h, libretro.Bytes(buf, int(n)))
			if err != nil {
				return minusOne
			}
			return uintptr(got)
		}),
		Flush: purego.NewCallback(func(h uintptr) uintptr {
			return status(v.Flush(h))
		}),
		Remove: purego.NewCallback(func(path unsafe.Pointer) uintptr {
			return status(v.Remove(libretro.GoString((*byte)(path))))
		}),
		Rename: purego.NewCallback(func(oldPath, newPath unsafe.Pointer) uintptr {
			return status(v.Rename(libretro.GoString((*byte)(oldPath)), libretro.GoString((*byte)(newPath))))
		}),
		Truncate: purego.NewCallback(func(h uintptr, length uintptr) uintptr {
			return status(v.Truncate(h, int64(length)))
		}),
		Stat: purego.NewCallback(func(path unsafe.Pointer, size unsafe.Pointer) uintptr {
			flags, n := v.Stat(libretro.GoString((*byte)(path)))
			if size != nil {
				*(*int32)(size) = int32(n)
			}
			return uintptr(flags)
		}),
		Mkdir: purego.NewCallback(func(path unsafe.Pointer) uintptr {
			return uintptr(int64(v.Mkdir(libretro.GoString((*byte)(path)))))
		}),
		Opendir: purego.NewCallback(func(path unsafe.Pointer, hidden uintptr) uintptr {
			id, err := v.Opendir(libretro.GoString((*byte)(path)), hidden&0xff != 0)
			if err != nil {
				return 0
			}
			return id
		}),
		Readdir: purego.NewCallback(func(h uintptr) uintptr {
			return boolWord(v.Readdir(h))
		}),
		DirentGetName: purego.NewCallback(func(h uintptr) uintptr {
			name := v.DirentName(h)
			if name == "" {
				return 0
			}
			return uintptr(unsafe.Pointer(v.arena.CString(name)))
		}),
		DirentIsDir: purego.NewCallback(func(h uintptr) uintptr {
			return boolWord(v.DirentIsDir(h))
		}),
		Closedir: purego.NewCallback(func(h uintptr) uintptr {
			return status(v.Closedir(h))
		}),
	}
	v.arena.Pin(t)
	v.iface = t
	return t
}

const minusOne = ^uintptr(0)

func status(err error) uintptr {
	if err != nil {
		return minusOne
	}
	return 0
}

func boolWord(b bool) uintptr {
	if b {
		return 1
	}
	return 0
}

func whence(pos int32) int {
	switch pos {
	case libretro.VFSSeekPositionCurrent:
		return io.SeekCurrent
	case libretro.VFSSeekPositionEnd:
		return io.SeekEnd
	default:
		return io.SeekStart
	}
}
