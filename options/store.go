// Package options holds the configuration variables a core declares and
// tracks changes for the core's update polling.
package options

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/spf13/afero"

	"github.com/amzeratul/retrograde-sub000/config"
)

// Value is one allowed value of an option.
type Value struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

// Option is a declared core option.
type Option struct {
	Key      string  `json:"key"`
	Desc     string  `json:"desc"`
	Info     string  `json:"info,omitempty"`
	Category string  `json:"category,omitempty"`
	Default  string  `json:"default"`
	Value    string  `json:"value"`
	Values   []Value `json:"values"`
	Visible  bool    `json:"visible"`
}

// Allows reports whether v is one of the option's allowed values. An option
// without a value list accepts anything.
func (o *Option) Allows(v string) bool {
	if len(o.Values) == 0 {
		return true
	}
	for _, a := range o.Values {
		if a.Value == v {
			return true
		}
	}
	return false
}

// Category groups options in v2 declarations.
type Category struct {
	Key  string `json:"key"`
	Desc string `json:"desc"`
	Info string `json:"info,omitempty"`
}

// Store holds options in declaration order.
type Store struct {
	mu         sync.Mutex
	order      []string
	opts       map[string]*Option
	categories []Category
	seed       map[string]string
	updated    bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		opts: make(map[string]*Option),
		seed: make(map[string]string),
	}
}

// Seed provides values to adopt when the matching keys are declared, from
// user configuration or a previous session.
func (s *Store) Seed(values map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.seed[k] = v
		if o, ok := s.opts[k]; ok && o.Allows(v) && o.Value != v {
			o.Value = v
			s.updated = true
		}
	}
}

// Declare adds or redeclares an option. A redeclared option keeps its
// current value unless that is empty, in which case the declared default is
// adopted.
func (s *Store) Declare(o Option) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.declare(o)
}

// DeclareAll declares options and categories in one step.
func (s *Store) DeclareAll(cats []Category, opts []Option) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cats {
		if i := slices.IndexFunc(s.categories, func(e Category) bool { return e.Key == c.Key }); i >= 0 {
			s.categories[i] = c
		} else {
			s.categories = append(s.categories, c)
		}
	}
	for _, o := range opts {
		s.declare(o)
	}
}

func (s *Store) declare(o Option) {
	if o.Default == "" && len(o.Values) > 0 {
		o.Default = o.Values[0].Value
	}
	o.Values = slices.Clone(o.Values)

	if prev, ok := s.opts[o.Key]; ok {
		current := prev.Value
		*prev = o
		if current != "" {
			prev.Value = current
		} else {
			prev.Value = o.Default
		}
		return
	}

	o.Value = o.Default
	if v, ok := s.seed[o.Key]; ok && o.Allows(v) {
		o.Value = v
	}
	s.opts[o.Key] = &o
	s.order = append(s.order, o.Key)
}

// Get returns the current value of key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.opts[key]
	if !ok {
		return "", false
	}
	return o.Value, true
}

// Option returns a copy of the option declared under key.
func (s *Store) Option(key string) (Option, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.opts[key]
	if !ok {
		return Option{}, false
	}
	c := *o
	c.Values = slices.Clone(o.Values)
	return c, true
}

// Options returns copies of every option in declaration order.
func (s *Store) Options() []Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Option, 0, len(s.order))
	for _, k := range s.order {
		c := *s.opts[k]
		c.Values = slices.Clone(c.Values)
		out = append(out, c)
	}
	return out
}

// Categories returns declared categories.
func (s *Store) Categories() []Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.categories)
}

// Len returns the number of declared options.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Set changes the value of a declared option. It fails, leaving the stored
// value unchanged, when the key is unknown or value is not allowed.
func (s *Store) Set(key, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.opts[key]
	if !ok || !o.Allows(value) {
		return false
	}
	if o.Value != value {
		o.Value = value
		s.updated = true
	}
	return true
}

// SetVisible changes whether a frontend should show the option.
func (s *Store) SetVisible(key string, visible bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.opts[key]
	if !ok {
		return false
	}
	o.Visible = visible
	return true
}

// Updated reports whether any value changed since the last call, and
// clears the flag.
func (s *Store) Updated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.updated
	s.updated = false
	return u
}

// Values returns the current value of every option.
func (s *Store) Values() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.opts))
	for k, o := range s.opts {
		out[k] = o.Value
	}
	return out
}

// Reset forgets every declaration. Seeds are kept.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.opts = make(map[string]*Option)
	s.categories = nil
	s.updated = false
}

// persisted is the on-disk form of a core's option values.
type persisted struct {
	Version int               `json:"version"`
	Values  map[string]string `json:"values"`
}

// Save writes current values to path.
func (s *Store) Save(fs afero.Fs, path string) error {
	return config.AtomicWriteJSON(fs, path, persisted{Version: 1, Values: s.Values()})
}

// Load reads values saved by Save and seeds them. A missing file is not an
// error.
func (s *Store) Load(fs afero.Fs, path string) error {
	var p persisted
	if err := config.ReadJSON(fs, path, &p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load options: %w", err)
	}
	s.Seed(p.Values)
	return nil
}
