// Package config loads runtime settings from a TOML or YAML file on top of
// built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log     LogConfig     `toml:"log" yaml:"log"`
	Pool    PoolConfig    `toml:"pool" yaml:"pool"`
	System  SystemConfig  `toml:"system" yaml:"system"`
	Metrics MetricsConfig `toml:"metrics" yaml:"metrics"`
}

type LogConfig struct {
	Level    string `toml:"level" yaml:"level"`       // debug, info, warn, error
	Encoding string `toml:"encoding" yaml:"encoding"` // json or console
}

type PoolConfig struct {
	Size        int           `toml:"size" yaml:"size"` // 0 = one worker per CPU
	IdleTimeout time.Duration `toml:"idle_timeout" yaml:"idle_timeout"`
}

type SystemConfig struct {
	Name string        `toml:"name" yaml:"name"`
	Tick time.Duration `toml:"tick" yaml:"tick"`
}

type MetricsConfig struct {
	Enabled   bool   `toml:"enabled" yaml:"enabled"`
	Namespace string `toml:"namespace" yaml:"namespace"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return defaults()
}

// Load reads path and overlays it on the defaults. The format follows the
// extension: .toml, .yaml or .yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("config %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Pool.Size < 0 {
		return fmt.Errorf("pool.size must not be negative, got %d", c.Pool.Size)
	}
	if c.System.Tick <= 0 {
		return fmt.Errorf("system.tick must be positive, got %s", c.System.Tick)
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("log.encoding must be json or console, got %q", c.Log.Encoding)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
		Pool: PoolConfig{
			IdleTimeout: 5 * time.Second,
		},
		System: SystemConfig{
			Name: "main",
			Tick: 16 * time.Millisecond,
		},
		Metrics: MetricsConfig{
			Namespace: "thunder",
		},
	}
}
