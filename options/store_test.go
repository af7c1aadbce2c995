package options

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/amzeratul/retrograde-sub000/libretro"
)

func cstr(s string) *byte { return &libretro.CStringBytes(s)[0] }

func testOption() Option {
	return Option{
		Key:     "k",
		Desc:    "Key",
		Values:  []Value{{Value: "on"}, {Value: "off"}},
		Visible: true,
	}
}

// TestStore_SetValidates tests that disallowed values are rejected
func TestStore_SetValidates(t *testing.T) {
	s := NewStore()
	s.Declare(testOption())

	if v, _ := s.Get("k"); v != "on" {
		t.Fatalf("default value = %q, want on", v)
	}
	if s.Set("k", "badvalue") {
		t.Error("Set with a disallowed value should fail")
	}
	if v, _ := s.Get("k"); v != "on" {
		t.Errorf("value changed to %q after failed Set", v)
	}
	if s.Updated() {
		t.Error("failed Set should not raise the update flag")
	}
	if s.Set("missing", "on") {
		t.Error("Set on an unknown key should fail")
	}
}

// TestStore_Updated tests the update flag is raised once per change
func TestStore_Updated(t *testing.T) {
	s := NewStore()
	s.Declare(testOption())

	if !s.Set("k", "off") {
		t.Fatal("Set failed")
	}
	if !s.Updated() {
		t.Error("Updated() should be true after a change")
	}
	if s.Updated() {
		t.Error("Updated() should clear the flag")
	}
	s.Set("k", "off")
	if s.Updated() {
		t.Error("setting the same value should not raise the flag")
	}
}

// TestStore_Redeclare tests that redeclaration keeps non-empty values
func TestStore_Redeclare(t *testing.T) {
	s := NewStore()
	s.Declare(testOption())
	s.Set("k", "off")

	o := testOption()
	o.Desc = "Renamed"
	s.Declare(o)

	got, _ := s.Option("k")
	if got.Value != "off" || got.Desc != "Renamed" {
		t.Errorf("redeclared option = %+v", got)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}

	empty := Option{Key: "e", Default: ""}
	s.Declare(empty)
	s.Declare(Option{Key: "e", Default: "x"})
	if v, _ := s.Get("e"); v != "x" {
		t.Errorf("empty value should adopt default, got %q", v)
	}
}

// TestStore_Seed tests seeded values on declaration and afterwards
func TestStore_Seed(t *testing.T) {
	s := NewStore()
	s.Seed(map[string]string{"k": "off", "other": "bad"})
	s.Declare(testOption())
	if v, _ := s.Get("k"); v != "off" {
		t.Errorf("seeded value = %q, want off", v)
	}

	s.Seed(map[string]string{"k": "nope"})
	if v, _ := s.Get("k"); v != "off" {
		t.Errorf("invalid seed applied: %q", v)
	}
}

// TestStore_Persistence tests saving and loading values
func TestStore_Persistence(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore()
	s.Declare(testOption())
	s.Set("k", "off")
	if err := s.Save(fs, "/opts/core.json"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	s2 := NewStore()
	if err := s2.Load(fs, "/opts/core.json"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	s2.Declare(testOption())
	if v, _ := s2.Get("k"); v != "off" {
		t.Errorf("loaded value = %q, want off", v)
	}

	if err := NewStore().Load(fs, "/opts/missing.json"); err != nil {
		t.Errorf("missing file should not be an error: %v", err)
	}
}

// TestParseLegacy tests the "Desc; a|b" form
func TestParseLegacy(t *testing.T) {
	tests := []struct {
		in     string
		desc   string
		values int
		deflt  string
	}{
		{"Region; auto|ntsc|pal", "Region", 3, "auto"},
		{"No values", "No values", 0, ""},
		{"Trailing; a|", "Trailing", 1, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			o := ParseLegacy("key", tt.in)
			if o.Desc != tt.desc || len(o.Values) != tt.values || o.Default != tt.deflt {
				t.Errorf("ParseLegacy(%q) = %+v", tt.in, o)
			}
		})
	}
}

// TestFromVariables tests walking a NULL-terminated variable array
func TestFromVariables(t *testing.T) {
	vars := []libretro.Variable{
		{Key: cstr("a"), Value: cstr("A; 1|2")},
		{Key: cstr("b"), Value: cstr("B; x|y|z")},
		{},
	}
	got := FromVariables(&vars[0])
	if len(got) != 2 || got[0].Key != "a" || got[1].Default != "x" || len(got[1].Values) != 3 {
		t.Errorf("FromVariables = %+v", got)
	}
}

// TestFromV2 tests v2 categories and definitions
func TestFromV2(t *testing.T) {
	cats := []libretro.CoreOptionV2Category{
		{Key: cstr("video"), Desc: cstr("Video")},
		{},
	}
	defs := make([]libretro.CoreOptionV2Definition, 2)
	defs[0].Key = cstr("scale")
	defs[0].Desc = cstr("Scale")
	defs[0].CategoryKey = cstr("video")
	defs[0].Values[0] = libretro.CoreOptionValue{Value: cstr("1x"), Label: cstr("Native")}
	defs[0].Values[1] = libretro.CoreOptionValue{Value: cstr("2x")}
	defs[0].DefaultValue = cstr("2x")

	c, o := FromV2(&libretro.CoreOptionsV2{Categories: &cats[0], Definitions: &defs[0]})
	if len(c) != 1 || c[0].Key != "video" {
		t.Errorf("categories = %+v", c)
	}
	if len(o) != 1 || o[0].Category != "video" || o[0].Default != "2x" || len(o[0].Values) != 2 || o[0].Values[0].Label != "Native" {
		t.Errorf("options = %+v", o)
	}

	s := NewStore()
	s.DeclareAll(c, o)
	if v, _ := s.Get("scale"); v != "2x" {
		t.Errorf("value = %q, want 2x", v)
	}
}

// TestFromIntl tests that local strings override US ones
func TestFromIntl(t *testing.T) {
	us := make([]libretro.CoreOptionDefinition, 2)
	us[0].Key = cstr("k")
	us[0].Desc = cstr("Speed")
	us[0].Values[0] = libretro.CoreOptionValue{Value: cstr("fast")}
	local := make([]libretro.CoreOptionDefinition, 2)
	local[0].Key = cstr("k")
	local[0].Desc = cstr("Vitesse")
	local[0].Values[0] = libretro.CoreOptionValue{Value: cstr("fast"), Label: cstr("rapide")}

	got := FromIntl(&libretro.CoreOptionsIntl{US: &us[0], Local: &local[0]})
	if len(got) != 1 || got[0].Desc != "Vitesse" || got[0].Values[0].Label != "rapide" {
		t.Errorf("FromIntl = %+v", got)
	}
}
