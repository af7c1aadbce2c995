package environ

import (
	"unsafe"

	"github.com/amzeratul/retrograde-sub000/content"
	"github.com/amzeratul/retrograde-sub000/libretro"
)

func (b *Broker) setContentInfoOverride(data unsafe.Pointer) bool {
	// A NULL payload probes for support.
	if data == nil {
		return true
	}
	if b.Content == nil {
		return false
	}
	var set content.Set
	for o := (*libretro.SystemContentInfoOverride)(data); o.Extensions != nil; o = next(o) {
		set = append(set, content.NewDescriptor(libretro.GoString(o.Extensions), o.NeedFullpath, o.PersistentData))
	}
	if len(set) == 0 {
		return false
	}
	b.Content.Override(set)
	b.log.Debug().Int("descriptors", len(set)).Msg("content info overridden")
	return true
}

func (b *Broker) getGameInfoExt(data unsafe.Pointer) bool {
	if data == nil || b.game == nil {
		return false
	}
	if b.gameExt == nil {
		b.gameExt = b.buildGameInfoExt()
	}
	*(**libretro.GameInfoExt)(data) = b.gameExt
	return true
}

func (b *Broker) buildGameInfoExt() *libretro.GameInfoExt {
	g := b.game
	str := func(s string) *byte {
		if s == "" {
			return nil
		}
		return b.arena.CString(s)
	}
	ext := &libretro.GameInfoExt{
		Dir:            str(g.Dir),
		Name:           str(g.Stem),
		Ext:            str(g.Ext),
		FileInArchive:  g.InArchive,
		PersistentData: g.Entry.PersistData,
	}
	if g.InArchive {
		ext.ArchivePath = str(g.ArchivePath)
		ext.ArchiveFile = str(g.ArchiveEntry)
	}
	if g.Data != nil {
		ext.Data = uintptr(unsafe.Pointer(&g.Data[0]))
		ext.Size = uintptr(len(g.Data))
	} else {
		ext.FullPath = str(g.Path)
	}
	b.arena.Pin(ext)
	return ext
}
