package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HTTPPort != 38472 {
		t.Errorf("expected HTTPPort 38472, got %d", cfg.HTTPPort)
	}
	if cfg.APIKey != "" {
		t.Errorf("expected empty APIKey, got %q", cfg.APIKey)
	}
	if cfg.CDPPortRangeLow != 9222 || cfg.CDPPortRangeHigh != 19221 {
		t.Errorf("unexpected CDP port range: [%d, %d]", cfg.CDPPortRangeLow, cfg.CDPPortRangeHigh)
	}
	if cfg.SweepInterval != Duration(30*time.Second) {
		t.Errorf("expected SweepInterval 30s, got %v", cfg.SweepInterval)
	}
	if cfg.ActionLogCapacity != 2000 {
		t.Errorf("expected ActionLogCapacity 2000, got %d", cfg.ActionLogCapacity)
	}
	if cfg.Redact != true {
		t.Errorf("expected Redact true, got %v", cfg.Redact)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
http_port: 9090
api_key: "secret"
cdp_port_range_low: 9300
cdp_port_range_high: 9400
sweep_interval: 10s
action_log_capacity: 500
redact: false
`

	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.HTTPPort != 9090 {
		t.Errorf("expected HTTPPort 9090, got %d", cfg.HTTPPort)
	}
	if cfg.APIKey != "secret" {
		t.Errorf("expected APIKey secret, got %q", cfg.APIKey)
	}
	if cfg.CDPPortRangeLow != 9300 || cfg.CDPPortRangeHigh != 9400 {
		t.Errorf("unexpected CDP port range: [%d, %d]", cfg.CDPPortRangeLow, cfg.CDPPortRangeHigh)
	}
	if cfg.SweepInterval != Duration(10*time.Second) {
		t.Errorf("expected SweepInterval 10s, got %v", cfg.SweepInterval)
	}
	if cfg.ActionLogCapacity != 500 {
		t.Errorf("expected ActionLogCapacity 500, got %d", cfg.ActionLogCapacity)
	}
	if cfg.Redact != false {
		t.Errorf("expected Redact false, got %v", cfg.Redact)
	}

	// Unspecified fields keep their defaults.
	if cfg.ConsoleLogCapacity != 1000 {
		t.Errorf("expected default ConsoleLogCapacity 1000, got %d", cfg.ConsoleLogCapacity)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	if err := os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := LoadFromFile(configPath); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid default config", func(c *Config) {}, false},
		{"zero http port", func(c *Config) { c.HTTPPort = 0 }, true},
		{"inverted cdp range", func(c *Config) { c.CDPPortRangeHigh = c.CDPPortRangeLow }, true},
		{"empty profiles path", func(c *Config) { c.ProfilesPath = "" }, true},
		{"zero action log capacity", func(c *Config) { c.ActionLogCapacity = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
