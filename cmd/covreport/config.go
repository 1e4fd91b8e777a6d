package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional session-mapping / default-flags file: it lets a
// run apply the same flag defaults across several report files without
// repeating them on every invocation.
type Config struct {
	DefaultFlags   []string           `yaml:"default_flags"`
	SessionMapping map[int32][]string `yaml:"session_mapping"`
}

// LoadConfig reads a YAML config file. An empty path returns a zero Config,
// not an error: the config file is optional.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("covreport: read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("covreport: parse config %s: %w", path, err)
	}
	return &cfg, nil
}
