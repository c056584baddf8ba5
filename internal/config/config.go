// Package config loads the inspector daemon's YAML configuration file:
// sample rate, channel list to auto-open, queue/pool options, and the
// optional mDNS/event-log settings.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kc9xyz/suscan-inspector/internal/channel"
)

// Config is the on-disk configuration shape.
type Config struct {
	SampleRate float64 `yaml:"sample_rate"`

	Channels []channel.Descriptor `yaml:"channels"`

	Queue struct {
		UsePool bool `yaml:"use_pool"`
	} `yaml:"queue"`

	WorkerConcurrency int `yaml:"worker_concurrency"`

	EventLog struct {
		Enabled bool   `yaml:"enabled"`
		Dir     string `yaml:"dir"`
	} `yaml:"event_log"`

	Discovery struct {
		Enabled     bool   `yaml:"enabled"`
		ServiceName string `yaml:"service_name"`
		Port        int    `yaml:"port"`
	} `yaml:"discovery"`

	LogLevel string `yaml:"log_level"`
}

// Default returns a Config with conservative defaults for every field a
// YAML file may omit.
func Default() Config {
	var c Config
	c.SampleRate = 250000
	c.WorkerConcurrency = 4
	c.LogLevel = "info"
	c.Discovery.ServiceName = "suscan-inspector"
	c.Discovery.Port = 7422
	c.EventLog.Dir = "./logs"
	return c
}

// Load reads and parses a YAML config file at path, overlaying it onto
// Default().
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.SampleRate <= 0 {
		return Config{}, fmt.Errorf("config: sample_rate must be positive, got %v", cfg.SampleRate)
	}

	return cfg, nil
}
