package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func envFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() should validate, got %v", err)
	}

	if cfg.Detection.Seed != 42 || cfg.Detection.Trees != 100 {
		t.Errorf("unexpected detection defaults: %+v", cfg.Detection)
	}
	if !slices.Equal(cfg.Server.CORSOrigins, []string{"*"}) {
		t.Errorf("CORSOrigins = %v, want [*]", cfg.Server.CORSOrigins)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dyncomm.yaml")
	data := `
server:
  port: 9090
  shutdown_timeout: 5s
detection:
  seed: 7
  trees: 12
  partitioner: louvain
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 5s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Detection.Seed != 7 || cfg.Detection.Trees != 12 || cfg.Detection.Partitioner != "louvain" {
		t.Errorf("Detection = %+v", cfg.Detection)
	}
	// Unset keys keep their defaults.
	if cfg.Detection.MinSamplesSplit != 2 || cfg.Server.MaxFiles != 256 {
		t.Errorf("defaults lost: %+v %+v", cfg.Detection, cfg.Server)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envFrom(map[string]string{
		"PORT":                 "8181",
		"LOG_LEVEL":            "WARN",
		"DYNCOMM_SEED":         "1234",
		"DYNCOMM_PARTITIONER":  " Louvain ",
		"DYNCOMM_TREES":        "50",
		"DYNCOMM_WORKERS":      "4",
		"DYNCOMM_CORS_ORIGINS": "https://a.example, https://b.example,",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	if cfg.Server.Port != 8181 {
		t.Errorf("Port = %d, want 8181", cfg.Server.Port)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Detection.Seed != 1234 || cfg.Detection.Partitioner != "louvain" ||
		cfg.Detection.Trees != 50 || cfg.Detection.Workers != 4 {
		t.Errorf("Detection = %+v", cfg.Detection)
	}
	if want := []string{"https://a.example", "https://b.example"}; !slices.Equal(cfg.Server.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestApplyEnv_BadNumbers(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envFrom(map[string]string{
		"PORT":         "eighty",
		"DYNCOMM_SEED": "-1",
	}))
	if err == nil {
		t.Fatal("expected error for malformed numbers")
	}
	if !strings.Contains(err.Error(), "PORT") || !strings.Contains(err.Error(), "DYNCOMM_SEED") {
		t.Errorf("error should name both variables, got %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port changed to %d on parse failure", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "Port: must be at least 1"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "Port: must not exceed 65535"},
		{"no trees", func(c *Config) { c.Detection.Trees = 0 }, "Trees: must be at least 1"},
		{"split of one", func(c *Config) { c.Detection.MinSamplesSplit = 1 }, "MinSamplesSplit: must be at least 2"},
		{"unknown partitioner", func(c *Config) { c.Detection.Partitioner = "spectral" }, "Partitioner: spectral must be one of"},
		{"zero resolution", func(c *Config) { c.Detection.Resolution = 0 }, "Resolution: must be greater than 0"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "Level: trace must be one of"},
		{"too many features", func(c *Config) { c.Detection.MaxFeatures = 5 }, "MaxFeatures: must not exceed 4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsAllFields(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 0
	cfg.Detection.Trees = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "Port") || !strings.Contains(err.Error(), "Trees") {
		t.Errorf("error should mention both fields, got %v", err)
	}
}

func TestDetectionConfig_Detector(t *testing.T) {
	d := Default().Detection
	d.Seed = 3
	d.Trees = 17
	d.MaxDepth = 6
	d.Partitioner = "louvain"
	d.Workers = 2

	cfg := d.Detector()
	if cfg.Seed != 3 || cfg.Forest.Trees != 17 || cfg.Forest.MaxDepth != 6 {
		t.Errorf("Detector() = %+v", cfg)
	}
	if cfg.Partitioner != "louvain" || cfg.Workers != 2 || cfg.Resolution != 1.0 {
		t.Errorf("Detector() = %+v", cfg)
	}
}

func TestApplyEnv_ProxiesAndRateLimit(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envFrom(map[string]string{
		"DYNCOMM_TRUSTED_PROXIES": "10.0.0.0/8, 192.168.1.1",
		"DYNCOMM_RATE_LIMIT_RPS":  "0",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if want := []string{"10.0.0.0/8", "192.168.1.1"}; !slices.Equal(cfg.Server.TrustedProxies, want) {
		t.Errorf("TrustedProxies = %v, want %v", cfg.Server.TrustedProxies, want)
	}
	if cfg.Server.RateLimitRPS != 0 {
		t.Errorf("RateLimitRPS = %v, want 0", cfg.Server.RateLimitRPS)
	}

	if err := cfg.ApplyEnv(envFrom(map[string]string{"DYNCOMM_RATE_LIMIT_RPS": "fast"})); err == nil {
		t.Error("expected error for non-numeric rate")
	}
}
