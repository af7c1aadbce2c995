// Package content resolves a content file, possibly inside an archive, to
// the descriptor a core declared for it and loads the payload the way that
// descriptor requires.
package content

import (
	"path/filepath"
	"slices"
	"strings"
)

// Descriptor describes how a core wants a class of files handed to it.
type Descriptor struct {
	// Extensions holds lower case extensions without the leading dot. An
	// empty set accepts any file.
	Extensions map[string]struct{}
	// NeedFullPath means the core opens the file itself and must be given
	// a real path instead of a memory buffer.
	NeedFullPath bool
	// PersistData means the core keeps referencing the buffer after
	// load_game returns.
	PersistData bool
}

// NewDescriptor builds a descriptor from a libretro style "a|b|c" list.
func NewDescriptor(exts string, needFullPath, persistData bool) Descriptor {
	d := Descriptor{
		Extensions:   make(map[string]struct{}),
		NeedFullPath: needFullPath,
		PersistData:  persistData,
	}
	for _, e := range strings.Split(exts, "|") {
		e = normExt(e)
		if e != "" {
			d.Extensions[e] = struct{}{}
		}
	}
	return d
}

// Matches reports whether ext (with or without a dot) is accepted.
func (d Descriptor) Matches(ext string) bool {
	if len(d.Extensions) == 0 {
		return true
	}
	_, ok := d.Extensions[normExt(ext)]
	return ok
}

// List returns the extensions in sorted order.
func (d Descriptor) List() []string {
	out := make([]string, 0, len(d.Extensions))
	for e := range d.Extensions {
		out = append(out, e)
	}
	slices.Sort(out)
	return out
}

// Set is an ordered list of descriptors resolved first match first.
type Set []Descriptor

// Match returns the first descriptor in list order accepting the
// extension of name, falling back to the first descriptor. A descriptor
// without extensions accepts everything. An empty set yields a zero
// descriptor that accepts anything in memory.
func (s Set) Match(name string) Descriptor {
	ext := filepath.Ext(name)
	for _, d := range s {
		if d.Matches(ext) {
			return d
		}
	}
	if len(s) == 0 {
		return Descriptor{}
	}
	return s[0]
}

// Accepts reports whether any descriptor explicitly lists the extension
// of name, or one accepts everything.
func (s Set) Accepts(name string) bool {
	ext := filepath.Ext(name)
	for _, d := range s {
		if d.Matches(ext) {
			return true
		}
	}
	return false
}

// lists reports whether a descriptor names ext explicitly.
func (s Set) lists(ext string) bool {
	ext = normExt(ext)
	for _, d := range s {
		if _, ok := d.Extensions[ext]; ok {
			return true
		}
	}
	return false
}

func normExt(e string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
}
