// Package config loads service and detection settings from defaults, an
// optional YAML file and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-dyncomm/pkg/classifier"
	"github.com/dd0wney/cluso-dyncomm/pkg/temporal"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Detection DetectionConfig `yaml:"detection"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" validate:"min=1024"`
	MaxFiles        int           `yaml:"max_files" validate:"min=1,max=10000"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// RateLimitRPS is the per-client request rate; 0 disables limiting.
	RateLimitRPS   float64  `yaml:"rate_limit_rps" validate:"min=0"`
	RateLimitBurst int      `yaml:"rate_limit_burst" validate:"min=0"`
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// DetectionConfig configures the community tracking pipeline.
type DetectionConfig struct {
	Seed            uint64  `yaml:"seed"`
	Trees           int     `yaml:"trees" validate:"min=1,max=10000"`
	MaxDepth        int     `yaml:"max_depth" validate:"min=0"`
	MinSamplesSplit int     `yaml:"min_samples_split" validate:"min=2"`
	MaxFeatures     int     `yaml:"max_features" validate:"min=0,max=4"`
	Partitioner     string  `yaml:"partitioner" validate:"oneof=greedy louvain"`
	Resolution      float64 `yaml:"resolution" validate:"gt=0"`
	Workers         int     `yaml:"workers" validate:"min=0,max=1024"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			MaxUploadBytes:  32 << 20,
			MaxFiles:        256,
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: 30 * time.Second,
			RateLimitRPS:    2,
			RateLimitBurst:  10,
		},
		Detection: DetectionConfig{
			Seed:            42,
			Trees:           100,
			MinSamplesSplit: 2,
			Partitioner:     "greedy",
			Resolution:      1.0,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds a configuration from the defaults, the YAML file at path (if
// path is non-empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables looked up with
// lookup. Unset variables leave fields unchanged.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error

	setInt := func(name string, dst *int) {
		if v, ok := lookup(name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = n
		}
	}

	setInt("PORT", &c.Server.Port)
	setInt("DYNCOMM_TREES", &c.Detection.Trees)
	setInt("DYNCOMM_WORKERS", &c.Detection.Workers)

	if v, ok := lookup("DYNCOMM_SEED"); ok {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("DYNCOMM_SEED: %w", err))
		} else {
			c.Detection.Seed = n
		}
	}
	if v, ok := lookup("DYNCOMM_PARTITIONER"); ok {
		c.Detection.Partitioner = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup("DYNCOMM_CORS_ORIGINS"); ok {
		c.Server.CORSOrigins = splitList(v)
	}

	if v, ok := lookup("DYNCOMM_TRUSTED_PROXIES"); ok {
		c.Server.TrustedProxies = splitList(v)
	}
	if v, ok := lookup("DYNCOMM_RATE_LIMIT_RPS"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("DYNCOMM_RATE_LIMIT_RPS: %w", err))
		} else {
			c.Server.RateLimitRPS = f
		}
	}

	return errors.Join(errs...)
}

// Detector converts the detection section into a detector configuration.
func (d DetectionConfig) Detector() temporal.Config {
	forest := classifier.DefaultConfig()
	forest.Trees = d.Trees
	forest.MaxDepth = d.MaxDepth
	forest.MinSamplesSplit = d.MinSamplesSplit
	forest.MaxFeatures = d.MaxFeatures

	return temporal.Config{
		Seed:        d.Seed,
		Forest:      forest,
		Partitioner: d.Partitioner,
		Resolution:  d.Resolution,
		Workers:     d.Workers,
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
