package environ

import (
	"errors"
	"runtime"
	"unsafe"

	"github.com/amzeratul/retrograde-sub000/libretro"
)

// ErrDiskUnsupported is returned when the core lacks a disk control entry.
var ErrDiskUnsupported = errors.New("disk control operation not supported by core")

// DiskControl drives a multi-disc core through its disk control callbacks.
type DiskControl struct {
	cb       libretro.DiskControlExtCallback
	extended bool
	caller   Caller
}

func (b *Broker) setDiskControl(data unsafe.Pointer) bool {
	if data == nil || b.Caller == nil {
		return false
	}
	b.disks = &DiskControl{
		cb:     libretro.DiskControlExtCallback{DiskControlCallback: *(*libretro.DiskControlCallback)(data)},
		caller: b.Caller,
	}
	b.log.Debug().Msg("disk control interface registered")
	return true
}

func (b *Broker) setDiskControlExt(data unsafe.Pointer) bool {
	if data == nil || b.Caller == nil {
		return false
	}
	b.disks = &DiskControl{
		cb:       *(*libretro.DiskControlExtCallback)(data),
		extended: true,
		caller:   b.Caller,
	}
	b.log.Debug().Msg("extended disk control interface registered")
	return true
}

// Extended reports whether the core registered the extended interface.
func (d *DiskControl) Extended() bool { return d.extended }

func (d *DiskControl) call(fn uintptr, args ...uintptr) (uintptr, error) {
	if fn == 0 {
		return 0, ErrDiskUnsupported
	}
	return d.caller.Call(fn, args...), nil
}

func (d *DiskControl) callBool(fn uintptr, args ...uintptr) (bool, error) {
	r, err := d.call(fn, args...)
	return r&0xff != 0, err
}

// SetEjected opens or closes the virtual tray.
func (d *DiskControl) SetEjected(ejected bool) (bool, error) {
	return d.callBool(d.cb.SetEjectState, boolArg(ejected))
}

// Ejected reports whether the tray is open.
func (d *DiskControl) Ejected() (bool, error) {
	return d.callBool(d.cb.GetEjectState)
}

// ImageIndex returns the inserted image index.
func (d *DiskControl) ImageIndex() (uint32, error) {
	r, err := d.call(d.cb.GetImageIndex)
	return uint32(r), err
}

// SetImageIndex selects the image to insert. The tray must be open.
func (d *DiskControl) SetImageIndex(i uint32) (bool, error) {
	return d.callBool(d.cb.SetImageIndex, uintptr(i))
}

// NumImages returns the number of images.
func (d *DiskControl) NumImages() (uint32, error) {
	r, err := d.call(d.cb.GetNumImages)
	return uint32(r), err
}

// AddImage appends an empty image slot.
func (d *DiskControl) AddImage() (bool, error) {
	return d.callBool(d.cb.AddImageIndex)
}

// ReplaceImage loads path into slot i. An empty path removes the image.
func (d *DiskControl) ReplaceImage(i uint32, path string) (bool, error) {
	if path == "" {
		return d.callBool(d.cb.ReplaceImageIndex, uintptr(i), 0)
	}
	cpath := libretro.CStringBytes(path)
	game := &libretro.GameInfo{Path: &cpath[0]}
	ok, err := d.callBool(d.cb.ReplaceImageIndex, uintptr(i), uintptr(unsafe.Pointer(game)))
	runtime.KeepAlive(game)
	runtime.KeepAlive(cpath)
	return ok, err
}

// SetInitialImage selects the image to boot with before the game loads.
func (d *DiskControl) SetInitialImage(i uint32, path string) (bool, error) {
	cpath := libretro.CStringBytes(path)
	ok, err := d.callBool(d.cb.SetInitialImage, uintptr(i), uintptr(unsafe.Pointer(&cpath[0])))
	runtime.KeepAlive(cpath)
	return ok, err
}

// ImagePath returns the path of image i.
func (d *DiskControl) ImagePath(i uint32) (string, error) {
	return d.readString(d.cb.GetImagePath, i)
}

// ImageLabel returns the label of image i.
func (d *DiskControl) ImageLabel(i uint32) (string, error) {
	return d.readString(d.cb.GetImageLabel, i)
}

func (d *DiskControl) readString(fn uintptr, i uint32) (string, error) {
	buf := make([]byte, 4096)
	ok, err := d.callBool(fn, uintptr(i), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if err != nil || !ok {
		return "", err
	}
	buf[len(buf)-1] = 0
	return libretro.GoString(&buf[0]), nil
}
