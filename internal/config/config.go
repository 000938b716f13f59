package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds runtime configuration for scriptline.
// Values are populated from .scriptline.yaml, SCRIPTLINE_* env vars, and CLI flags.
type Config struct {
	DB         string  `mapstructure:"db"`
	Zoom       float64 `mapstructure:"zoom"`
	ActPrefix  bool    `mapstructure:"act_prefix"`
	DebounceMS int     `mapstructure:"debounce_ms"`
	Verbose    bool    `mapstructure:"verbose"`
}

// Zoom bounds for the lane timeline, in columns per second.
const (
	MinZoom = 0.125
	MaxZoom = 16.0
)

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("db", "")
	viper.SetDefault("zoom", 1.0)
	viper.SetDefault("act_prefix", true)
	viper.SetDefault("debounce_ms", 100)
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values no command can work with.
func (c Config) Validate() error {
	if c.Zoom < MinZoom || c.Zoom > MaxZoom {
		return fmt.Errorf("zoom %v out of range [%v, %v]", c.Zoom, MinZoom, MaxZoom)
	}
	if c.DebounceMS < 0 {
		return fmt.Errorf("debounce_ms must not be negative, got %d", c.DebounceMS)
	}
	return nil
}
