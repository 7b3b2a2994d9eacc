package model

import (
	"errors"
	"testing"
)

func TestDefaultSheetPresetsAreValid(t *testing.T) {
	presets := DefaultSheetPresets()
	if len(presets) == 0 {
		t.Fatal("expected default presets")
	}
	seen := map[string]bool{}
	for _, p := range presets {
		if err := p.Validate(); err != nil {
			t.Errorf("preset %q: %v", p.Name, err)
		}
		if seen[p.Name] {
			t.Errorf("duplicate preset name %q", p.Name)
		}
		seen[p.Name] = true
	}
}

func TestFindPreset(t *testing.T) {
	presets := DefaultSheetPresets()

	p, ok := FindPreset(presets, "FULL")
	if !ok {
		t.Fatal("expected to find preset case-insensitively")
	}
	if p.Width != 2440 || p.Height != 1220 {
		t.Errorf("unexpected preset %+v", p)
	}
	if p.Area() != 2440*1220 {
		t.Errorf("unexpected area %g", p.Area())
	}

	if _, ok := FindPreset(presets, "nonexistent"); ok {
		t.Error("expected no match")
	}
	if _, ok := FindPreset(nil, "full"); ok {
		t.Error("expected no match in an empty list")
	}
}

func TestSheetPresetValidate(t *testing.T) {
	cases := []SheetPreset{
		{Name: "", Width: 10, Height: 10},
		{Name: "flat", Width: 0, Height: 10},
		{Name: "tall", Width: 10, Height: -1},
	}
	for _, p := range cases {
		err := p.Validate()
		var inputErr *InputError
		if !errors.As(err, &inputErr) {
			t.Errorf("%+v: expected an InputError, got %v", p, err)
		}
	}
}

func TestPresetNames(t *testing.T) {
	names := PresetNames([]SheetPreset{{Name: "a"}, {Name: "b"}})
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("unexpected names %v", names)
	}
}
