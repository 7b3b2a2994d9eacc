package model

// PackSettings holds the search configuration shared by every entry point.
type PackSettings struct {
	// Bin-selection heuristics the solver tries, in order; empty means all.
	Heuristics []string `json:"heuristics" toml:"heuristics" env:"SHEETFIT_HEURISTICS" envSeparator:","`

	// Fraction of the sheet a max-usage subset must cover; 0 disables.
	MinUsage float64 `json:"min_usage" toml:"min_usage" env:"SHEETFIT_MIN_USAGE"`
	// Sheet limit for multi-sheet packing; 0 means unlimited.
	MaxSheets int `json:"max_sheets" toml:"max_sheets" env:"SHEETFIT_MAX_SHEETS"`

	// Memoized probe answers kept; 0 disables the cache.
	ProbeCacheSize int `json:"probe_cache_size" toml:"probe_cache_size" env:"SHEETFIT_PROBE_CACHE_SIZE"`

	// Fall back to a genetic search over insertion orders when the fixed
	// orders find no layout.
	Genetic bool `json:"genetic" toml:"genetic" env:"SHEETFIT_GENETIC"`
	// Seed for the genetic search.
	Seed int64 `json:"seed" toml:"seed" env:"SHEETFIT_SEED"`
}

// DefaultSettings returns the settings used when no configuration is given.
func DefaultSettings() PackSettings {
	return PackSettings{
		Heuristics:     []string{"bssf", "bl", "baf", "cp", "blsf"},
		MinUsage:       0,
		MaxSheets:      0,
		ProbeCacheSize: 4096,
		Genetic:        false,
		Seed:           42,
	}
}
