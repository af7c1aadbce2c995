package options

import (
	"strings"
	"unsafe"

	"github.com/amzeratul/retrograde-sub000/libretro"
)

// ParseLegacy parses a retro_variable value of the form
// "Description; first|second|third". The first value is the default.
func ParseLegacy(key, value string) Option {
	o := Option{Key: key, Visible: true}
	desc, list, ok := strings.Cut(value, ";")
	if !ok {
		o.Desc = strings.TrimSpace(value)
		return o
	}
	o.Desc = strings.TrimSpace(desc)
	for _, v := range strings.Split(strings.TrimSpace(list), "|") {
		if v == "" {
			continue
		}
		o.Values = append(o.Values, Value{Value: v})
	}
	if len(o.Values) > 0 {
		o.Default = o.Values[0].Value
	}
	return o
}

// FromVariables converts a NULL-terminated retro_variable array.
func FromVariables(vars *libretro.Variable) []Option {
	var out []Option
	for v := vars; v != nil && v.Key != nil; v = next(v) {
		out = append(out, ParseLegacy(libretro.GoString(v.Key), libretro.GoString(v.Value)))
	}
	return out
}

// FromDefinitions converts a NULL-terminated v1 definition array.
func FromDefinitions(defs *libretro.CoreOptionDefinition) []Option {
	var out []Option
	for d := defs; d != nil && d.Key != nil; d = next(d) {
		out = append(out, Option{
			Key:     libretro.GoString(d.Key),
			Desc:    libretro.GoString(d.Desc),
			Info:    libretro.GoString(d.Info),
			Default: libretro.GoString(d.DefaultValue),
			Values:  values(d.Values[:]),
			Visible: true,
		})
	}
	return out
}

// FromIntl converts v1 internationalised definitions, preferring the local
// strings where present.
func FromIntl(intl *libretro.CoreOptionsIntl) []Option {
	if intl == nil {
		return nil
	}
	us := FromDefinitions(intl.US)
	local := FromDefinitions(intl.Local)
	return mergeLocal(us, local)
}

// FromV2 converts v2 categories and definitions.
func FromV2(opts *libretro.CoreOptionsV2) ([]Category, []Option) {
	if opts == nil {
		return nil, nil
	}
	var cats []Category
	for c := opts.Categories; c != nil && c.Key != nil; c = next(c) {
		cats = append(cats, Category{
			Key:  libretro.GoString(c.Key),
			Desc: libretro.GoString(c.Desc),
			Info: libretro.GoString(c.Info),
		})
	}
	var out []Option
	for d := opts.Definitions; d != nil && d.Key != nil; d = next(d) {
		out = append(out, Option{
			Key:      libretro.GoString(d.Key),
			Desc:     libretro.GoString(d.Desc),
			Info:     libretro.GoString(d.Info),
			Category: libretro.GoString(d.CategoryKey),
			Default:  libretro.GoString(d.DefaultValue),
			Values:   values(d.Values[:]),
			Visible:  true,
		})
	}
	return cats, out
}

// FromV2Intl converts internationalised v2 options.
func FromV2Intl(intl *libretro.CoreOptionsV2Intl) ([]Category, []Option) {
	if intl == nil {
		return nil, nil
	}
	cats, us := FromV2(intl.US)
	lcats, local := FromV2(intl.Local)
	for i := range cats {
		for _, lc := range lcats {
			if lc.Key == cats[i].Key && lc.Desc != "" {
				cats[i].Desc = lc.Desc
				if lc.Info != "" {
					cats[i].Info = lc.Info
				}
			}
		}
	}
	return cats, mergeLocal(us, local)
}

func mergeLocal(us, local []Option) []Option {
	byKey := make(map[string]Option, len(local))
	for _, o := range local {
		byKey[o.Key] = o
	}
	for i := range us {
		l, ok := byKey[us[i].Key]
		if !ok {
			continue
		}
		if l.Desc != "" {
			us[i].Desc = l.Desc
		}
		if l.Info != "" {
			us[i].Info = l.Info
		}
		for j := range us[i].Values {
			for _, lv := range l.Values {
				if lv.Value == us[i].Values[j].Value && lv.Label != "" {
					us[i].Values[j].Label = lv.Label
				}
			}
		}
	}
	return us
}

func values(vs []libretro.CoreOptionValue) []Value {
	var out []Value
	for _, v := range vs {
		if v.Value == nil {
			break
		}
		out = append(out, Value{Value: libretro.GoString(v.Value), Label: libretro.GoString(v.Label)})
	}
	return out
}

// next steps to the following element of a C array.
func next[T any](p *T) *T {
	var zero T
	return (*T)(unsafe.Add(unsafe.Pointer(p), unsafe.Sizeof(zero)))
}
