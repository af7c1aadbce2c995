package core

import (
	"fmt"
	"sync"
	"unsafe"
)

// Registry is the single active-instance slot for core callbacks. The
// libretro callbacks carry no context pointer, so a registry forwards every
// upcall to whichever owner currently holds it.
//
// The same owner may acquire the slot repeatedly (a callback that calls back
// into its own host); each acquisition increments a depth counter. A
// different owner acquiring while the depth is non-zero is a programming
// error: strict registries panic, others return ErrInstanceBusy.
type Registry struct {
	mu     sync.Mutex
	owner  Callbacks
	depth  int
	strict bool
}

// NewRegistry creates an independent registry.
func NewRegistry(strict bool) *Registry {
	return &Registry{strict: strict}
}

var defaultRegistry = NewRegistry(false)

// DefaultRegistry returns the process-wide registry used when a host is not
// given one.
func DefaultRegistry() *Registry { return defaultRegistry }

// Guard is a scoped acquisition of a registry. Release must be called
// exactly once, usually deferred.
type Guard struct {
	r     *Registry
	owner Callbacks
	done  bool
}

// Acquire makes owner the active instance, or nests a further level if it
// already is.
func (r *Registry) Acquire(owner Callbacks) (*Guard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.depth > 0 && r.owner != owner {
		if r.strict {
			panic(fmt.Sprintf("core: instance %p activated while %p is active (depth %d)", owner, r.owner, r.depth))
		}
		return nil, ErrInstanceBusy
	}
	r.owner = owner
	r.depth++
	return &Guard{r: r, owner: owner}, nil
}

// Release pops one level. The slot is vacated when the depth reaches zero.
func (g *Guard) Release() {
	if g == nil || g.done {
		return
	}
	g.done = true
	r := g.r
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.owner != g.owner || r.depth == 0 {
		panic("core: unbalanced registry release")
	}
	r.depth--
	if r.depth == 0 {
		r.owner = nil
	}
}

// Depth returns the current nesting depth.
func (r *Registry) Depth() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.depth
}

// Active returns the current owner, or nil.
func (r *Registry) Active() Callbacks {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.owner
}

// The Callbacks implementation below is what native trampolines call into.
// Upcalls arriving with no active owner are dropped.

func (r *Registry) Environment(cmd uint32, data unsafe.Pointer) bool {
	if o := r.Active(); o != nil {
		return o.Environment(cmd, data)
	}
	return false
}

func (r *Registry) VideoRefresh(data uintptr, width, height uint32, pitch uintptr) {
	if o := r.Active(); o != nil {
		o.VideoRefresh(data, width, height, pitch)
	}
}

func (r *Registry) AudioSample(left, right int16) {
	if o := r.Active(); o != nil {
		o.AudioSample(left, right)
	}
}

func (r *Registry) AudioSampleBatch(data unsafe.Pointer, frames uintptr) uintptr {
	if o := r.Active(); o != nil {
		return o.AudioSampleBatch(data, frames)
	}
	return frames
}

func (r *Registry) InputPoll() {
	if o := r.Active(); o != nil {
		o.InputPoll()
	}
}

func (r *Registry) InputState(port, device, index, id uint32) int16 {
	if o := r.Active(); o != nil {
		return o.InputState(port, device, index, id)
	}
	return 0
}
