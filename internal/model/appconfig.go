package model

import (
	"fmt"
	"slices"
	"time"
)

// AppConfig holds user preferences and the default pack settings. It is
// stored as TOML; every field can be overridden from SHEETFIT_* environment
// variables.
type AppConfig struct {
	// Default sheet used when a command gives none
	SheetWidth  float64 `toml:"sheet_width" env:"SHEETFIT_SHEET_WIDTH"`
	SheetHeight float64 `toml:"sheet_height" env:"SHEETFIT_SHEET_HEIGHT"`

	Pack PackSettings `toml:"pack"`

	// Named sheet sizes selectable with --sheet
	Presets []SheetPreset `toml:"presets"`

	// Application preferences
	Timeout    string   `toml:"timeout" env:"SHEETFIT_TIMEOUT"` // Go duration, "" = no deadline
	LogLevel   string   `toml:"log_level" env:"SHEETFIT_LOG_LEVEL"`
	RecentJobs []string `toml:"recent_jobs"`
}

// maxRecentJobs bounds the recent job list.
const maxRecentJobs = 10

// DefaultAppConfig returns an AppConfig populated with sensible defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		SheetWidth:  2440,
		SheetHeight: 1220,
		Pack:        DefaultSettings(),
		Presets:     DefaultSheetPresets(),
		Timeout:     "",
		LogLevel:    "info",
		RecentJobs:  []string{},
	}
}

// TimeoutDuration parses Timeout. An empty value means no deadline.
func (c AppConfig) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", c.Timeout)
	}
	return d, nil
}

// AddRecentJob moves path to the front of RecentJobs, keeping at most ten.
func (c *AppConfig) AddRecentJob(path string) {
	jobs := slices.DeleteFunc(slices.Clone(c.RecentJobs), func(p string) bool { return p == path })
	jobs = append([]string{path}, jobs...)
	if len(jobs) > maxRecentJobs {
		jobs = jobs[:maxRecentJobs]
	}
	c.RecentJobs = jobs
}
