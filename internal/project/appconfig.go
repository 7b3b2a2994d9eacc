package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/piwi3910/sheetfit/internal/model"
)

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.sheetfit/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".sheetfit")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.toml")
}

// SaveAppConfig persists an AppConfig to the given path as TOML.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config model.AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(config); err != nil {
		f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}

// LoadAppConfig reads an AppConfig from the given path. Keys missing from the
// file keep their defaults. If the file does not exist, it returns
// DefaultAppConfig with no error.
func LoadAppConfig(path string) (model.AppConfig, error) {
	config := model.DefaultAppConfig()
	// Decoding into the default presets would merge them with the file's.
	config.Presets = nil
	md, err := toml.DecodeFile(path, &config)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.DefaultAppConfig(), nil
		}
		return model.AppConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return model.AppConfig{}, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	if config.RecentJobs == nil {
		config.RecentJobs = []string{}
	}
	if !md.IsDefined("presets") {
		config.Presets = model.DefaultSheetPresets()
	}
	for _, p := range config.Presets {
		if err := p.Validate(); err != nil {
			return model.AppConfig{}, fmt.Errorf("config %s: %w", path, err)
		}
	}
	return config, nil
}

// ApplyEnv overrides config fields from SHEETFIT_* environment variables.
func ApplyEnv(config *model.AppConfig) error {
	if err := env.Parse(config); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}

// Load reads the config file at path (or the default path when empty) and
// applies environment overrides.
func Load(path string) (model.AppConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	config, err := LoadAppConfig(path)
	if err != nil {
		return config, err
	}
	if err := ApplyEnv(&config); err != nil {
		return config, err
	}
	return config, nil
}
