// Package config handles tool configuration loading and management.
package config

// Config holds all settings.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Model   ModelConfig   `yaml:"model"`
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig holds asset search paths.
type DataConfig struct {
	Roots      []string `yaml:"roots"`       // Directories searched for models, later roots win
	TextureDir string   `yaml:"texture_dir"` // Directory searched for textures, relative to a root
}

// ModelConfig holds model loading settings.
type ModelConfig struct {
	MetaExtensions []string `yaml:"meta_extensions"` // Metadata file extensions, tried in order
	Concurrency    int      `yaml:"concurrency"`     // Parallel loads, 0 = unbounded
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	// Sections silences individual log sections below a level, e.g. piece: warn.
	Sections map[string]string `yaml:"sections,omitempty"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Roots:      []string{"."},
			TextureDir: "unittextures",
		},
		Model: ModelConfig{
			MetaExtensions: []string{".yaml", ".yml", ".toml"},
			Concurrency:    4,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
