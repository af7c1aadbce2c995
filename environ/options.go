package environ

import (
	"unsafe"

	"github.com/amzeratul/retrograde-sub000/libretro"
	"github.com/amzeratul/retrograde-sub000/options"
)

func (b *Broker) declare(cats []options.Category, opts []options.Option) bool {
	if b.Options == nil {
		return false
	}
	b.Options.DeclareAll(cats, opts)
	b.log.Debug().Int("count", len(opts)).Msg("core options declared")
	return true
}

func (b *Broker) setVariables(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	return b.declare(nil, options.FromVariables((*libretro.Variable)(data)))
}

func (b *Broker) setCoreOptions(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	return b.declare(nil, options.FromDefinitions((*libretro.CoreOptionDefinition)(data)))
}

func (b *Broker) setCoreOptionsIntl(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	return b.declare(nil, options.FromIntl((*libretro.CoreOptionsIntl)(data)))
}

func (b *Broker) setCoreOptionsV2(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	return b.declare(options.FromV2((*libretro.CoreOptionsV2)(data)))
}

func (b *Broker) setCoreOptionsV2Intl(data unsafe.Pointer) bool {
	if data == nil {
		return false
	}
	return b.declare(options.FromV2Intl((*libretro.CoreOptionsV2Intl)(data)))
}

func (b *Broker) setCoreOptionsDisplay(data unsafe.Pointer) bool {
	if data == nil || b.Options == nil {
		return false
	}
	d := (*libretro.CoreOptionDisplay)(data)
	if d.Key == nil {
		return false
	}
	return b.Options.SetVisible(libretro.GoString(d.Key), d.Visible)
}

func (b *Broker) setCoreOptionsUpdateDisplayCallback(data unsafe.Pointer) bool {
	if data == nil {
		b.optionsDisplay = 0
		return true
	}
	b.optionsDisplay = (*libretro.CoreOptionsUpdateDisplayCallback)(data).Callback
	return true
}

// OptionsChanged lets the core refresh option visibility after the host
// changed a value. It reports whether visibility may have changed.
func (b *Broker) OptionsChanged() bool {
	if b.optionsDisplay == 0 || b.Caller == nil {
		return false
	}
	return b.Caller.Call(b.optionsDisplay)&0xff != 0
}

func (b *Broker) getVariable(data unsafe.Pointer) bool {
	if data == nil || b.Options == nil {
		return false
	}
	v := (*libretro.Variable)(data)
	if v.Key == nil {
		return false
	}
	val, ok := b.Options.Get(libretro.GoString(v.Key))
	if !ok {
		v.Value = nil
		return false
	}
	v.Value = b.arena.CString(val)
	return true
}

func (b *Broker) getVariableUpdate(data unsafe.Pointer) bool {
	if data == nil || b.Options == nil {
		return false
	}
	*(*bool)(data) = b.Options.Updated()
	return true
}

func (b *Broker) setVariable(data unsafe.Pointer) bool {
	// A NULL payload probes for support.
	if data == nil {
		return true
	}
	if b.Options == nil {
		return false
	}
	v := (*libretro.Variable)(data)
	if v.Key == nil || v.Value == nil {
		return false
	}
	return b.Options.Set(libretro.GoString(v.Key), libretro.GoString(v.Value))
}
