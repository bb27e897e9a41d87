// Package config provides configuration management for the Browsion core
// service.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Version is the current version of the core service.
// Set at build time via ldflags.
var Version = "dev"

// Duration wraps time.Duration so it can be written as "10s" in YAML
// instead of a raw nanosecond count.
type Duration time.Duration

// UnmarshalYAML accepts either a duration string ("10s") or a bare
// integer, which is treated as nanoseconds.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(time.Duration(v))
	default:
		return fmt.Errorf("invalid duration value %v", raw)
	}
	return nil
}

// MarshalYAML renders the duration in its string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config holds all configuration options for the core service.
type Config struct {
	// HTTP service (C7)
	HTTPPort int    `yaml:"http_port"`
	APIKey   string `yaml:"api_key"`

	// Lifecycle (C6)
	CDPPortRangeLow  int      `yaml:"cdp_port_range_low"`
	CDPPortRangeHigh int      `yaml:"cdp_port_range_high"`
	LaunchProbeWait  Duration `yaml:"launch_probe_wait"`
	SweepInterval    Duration `yaml:"sweep_interval"`

	// Persisted state paths
	ProfilesPath string `yaml:"profiles_path"`
	SessionsPath string `yaml:"sessions_path"`
	ActionLogDir string `yaml:"action_log_dir"`
	SnapshotsDir string `yaml:"snapshots_dir"`

	// Ring buffer capacities
	ConsoleLogCapacity int `yaml:"console_log_capacity"`
	NetworkLogCapacity int `yaml:"network_log_capacity"`
	ActionLogCapacity  int `yaml:"action_log_capacity"`

	// CDP command behavior
	CommandTimeout Duration `yaml:"command_timeout"`

	// Privacy
	Redact             bool     `yaml:"redact"`
	RedactExtraHeaders []string `yaml:"redact_extra_headers"`
	RedactExtraFields  []string `yaml:"redact_extra_fields"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		HTTPPort: 38472,
		APIKey:   "",

		CDPPortRangeLow:  9222,
		CDPPortRangeHigh: 19221,
		LaunchProbeWait:  Duration(3 * time.Second),
		SweepInterval:    Duration(30 * time.Second),

		ProfilesPath: "./data/profiles.toml",
		SessionsPath: "./data/sessions.json",
		ActionLogDir: "./data/action_log",
		SnapshotsDir: "./data/snapshots",

		ConsoleLogCapacity: 1000,
		NetworkLogCapacity: 1000,
		ActionLogCapacity:  2000,

		CommandTimeout: Duration(30 * time.Second),

		Redact: true,
	}
}

// LoadFromFile loads configuration from a YAML file.
// Values from the file override the defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 {
		return fmt.Errorf("http_port must be positive")
	}
	if c.CDPPortRangeHigh <= c.CDPPortRangeLow {
		return fmt.Errorf("cdp_port_range_high must be greater than cdp_port_range_low")
	}
	if c.ProfilesPath == "" {
		return fmt.Errorf("profiles_path is required")
	}
	if c.SessionsPath == "" {
		return fmt.Errorf("sessions_path is required")
	}
	if c.ActionLogDir == "" {
		return fmt.Errorf("action_log_dir is required")
	}
	if c.ConsoleLogCapacity < 1 {
		return fmt.Errorf("console_log_capacity must be at least 1")
	}
	if c.NetworkLogCapacity < 1 {
		return fmt.Errorf("network_log_capacity must be at least 1")
	}
	if c.ActionLogCapacity < 1 {
		return fmt.Errorf("action_log_capacity must be at least 1")
	}
	return nil
}
