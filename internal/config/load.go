package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvConfig names an environment variable holding a config file path. It is
// consulted after -config and before the standard locations.
const EnvConfig = "PIECEMODEL_CONFIG"

// FileName is the config file name looked up in the working directory and
// in ConfigDir.
const FileName = "modeltool.yaml"

// ErrInvalid is returned for configs that load but cannot be used.
var ErrInvalid = errors.New("invalid config")

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = os.Getenv(EnvConfig)
	}
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the model loader depends on.
func (c *Config) Validate() error {
	if len(c.Data.Roots) == 0 {
		return fmt.Errorf("%w: no data roots", ErrInvalid)
	}
	for _, ext := range c.Model.MetaExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("%w: meta extension %q must start with a dot", ErrInvalid, ext)
		}
	}
	if c.Model.Concurrency < 0 {
		return fmt.Errorf("%w: negative concurrency %d", ErrInvalid, c.Model.Concurrency)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		FileName,
		filepath.Join(ConfigDir(), FileName),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "PieceModel")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "PieceModel")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "piecemodel")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "piecemodel")
	}
}

// loadFromFile merges a YAML file into cfg. Unknown keys are rejected so a
// misspelled section does not silently fall back to defaults.
func loadFromFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
