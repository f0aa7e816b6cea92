package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds the tunables of a reactive context.
// Zero values mean "unspecified" and keep the runtime defaults.
type Config struct {
	LogLevel         string `json:"log_level" yaml:"log_level" toml:"log_level"`
	StormDepth       int    `json:"storm_depth" yaml:"storm_depth" toml:"storm_depth"`
	StormCount       int    `json:"storm_count" yaml:"storm_count" toml:"storm_count"`
	MaxReevaluations int    `json:"max_reevaluations" yaml:"max_reevaluations" toml:"max_reevaluations"`
	CheckAffinity    bool   `json:"check_affinity" yaml:"check_affinity" toml:"check_affinity"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects negative limits and unknown log levels.
func (c Config) Validate() error {
	if c.StormDepth < 0 || c.StormCount < 0 || c.MaxReevaluations < 0 {
		return fmt.Errorf("limits must not be negative")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel. An empty level means info.
func (c Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return lvl, nil
}
