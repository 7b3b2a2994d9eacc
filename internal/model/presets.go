package model

import "strings"

// SheetPreset is a named, reusable sheet size.
type SheetPreset struct {
	Name     string  `json:"name" toml:"name"`
	Width    float64 `json:"width" toml:"width"`
	Height   float64 `json:"height" toml:"height"`
	Material string  `json:"material,omitempty" toml:"material,omitempty"`
}

// Area returns the sheet area.
func (p SheetPreset) Area() float64 {
	return p.Width * p.Height
}

// Validate checks the preset's name and dimensions.
func (p SheetPreset) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &InputError{Field: "preset name", Reason: "must not be empty"}
	}
	return ValidateSheet(p.Width, p.Height)
}

// DefaultSheetPresets returns the common stock sizes.
func DefaultSheetPresets() []SheetPreset {
	return []SheetPreset{
		{Name: "full", Width: 2440, Height: 1220, Material: "Plywood"},
		{Name: "half", Width: 1220, Height: 1220, Material: "Plywood"},
		{Name: "quarter", Width: 1220, Height: 610, Material: "MDF"},
		{Name: "a4", Width: 297, Height: 210, Material: "Paper"},
		{Name: "acrylic", Width: 600, Height: 400, Material: "Acrylic"},
	}
}

// FindPreset returns the preset with the given name, compared without regard
// to case.
func FindPreset(presets []SheetPreset, name string) (SheetPreset, bool) {
	for _, p := range presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return SheetPreset{}, false
}

// PresetNames returns the preset names in order.
func PresetNames(presets []SheetPreset) []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}
