// Package config loads optional YAML defaults for the driver and consumer
// CLIs, layered under explicit flags (SPEC_FULL §2: "Configuration").
// Consumer/driver CLI parsing itself is out of core scope per spec.md §1;
// this is the repository's ambient config-loading concern, built with
// gopkg.in/yaml.v3 as in the teacher's go.mod.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the fields a YAML file may override. Zero values mean
// "unset"; callers apply flag values over these, not the other way round.
type Config struct {
	SocketDir    string `yaml:"socket_dir"`
	BatchSize    int    `yaml:"batch_size"`
	Sink         string `yaml:"sink"`
	FilterScript string `yaml:"filter_script"`
	Wire         string `yaml:"wire"`
	Disasm       string `yaml:"disasm"`
	Debug        bool   `yaml:"debug"`
}

// Default returns the built-in defaults used when no config file is given
// and no flag overrides a field.
func Default() Config {
	return Config{
		SocketDir: os.TempDir(),
		BatchSize: 64,
		Sink:      "stdout",
		Wire:      "fixed",
	}
}

// Load reads and parses a YAML config file at path, starting from Default()
// so a partial file only overrides the fields it mentions.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOptional behaves like Load, but returns Default() with a nil error
// when path is empty (no config file given is not an error).
func LoadOptional(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
