// Package config loads tabops defaults from an optional YAML file.
// Priority: built-in defaults < config file < command line flags; flag
// merging happens in the commands, this package only resolves the file.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory and home.
const FileName = ".tabops.yaml"

// Config holds all tabops defaults.
type Config struct {
	Split SplitConfig `yaml:"split"`
	Hash  HashConfig  `yaml:"hash"`
}

// SplitConfig carries defaults for the split command.
type SplitConfig struct {
	Workers         int    `yaml:"workers"`          // 0 = available parallelism
	Separator       string `yaml:"separator"`        // input field delimiter
	OutputSeparator string `yaml:"output_separator"` // output field delimiter
	OutputFormat    string `yaml:"output_format"`
}

// HashConfig carries defaults for the hash commands.
type HashConfig struct {
	Algorithm string `yaml:"algorithm"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Split: SplitConfig{
			Separator:       ",",
			OutputSeparator: ",",
			OutputFormat:    "csv",
		},
		Hash: HashConfig{
			Algorithm: "blake2b",
		},
	}
}

// Load reads a config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Discover resolves the effective config: the working directory's file wins
// over the home directory's; with neither present the defaults apply.
func Discover() *Config {
	if cfg, err := Load(FileName); err == nil {
		return cfg
	}
	if home, err := os.UserHomeDir(); err == nil {
		if cfg, err := Load(filepath.Join(home, FileName)); err == nil {
			return cfg
		}
	}
	return Default()
}
