// Package config provides configuration loading and structs for the nextbest server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Recommend RecommendConfig `yaml:"recommend"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// Server delivery modes. Both serve the same handlers; they differ in the
// default bind address and the page banner.
const (
	ModeLocal  = "local"
	ModeHosted = "hosted"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	Mode           string        `yaml:"mode"`
	PublicURL      string        `yaml:"public_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Addr returns host:port.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CatalogConfig locates the product table.
type CatalogConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // csv, xlsx, sqlite; empty = by file extension
	Sheet  string `yaml:"sheet"`  // xlsx only; empty = first sheet
	Table  string `yaml:"table"`  // sqlite only
}

// RecommendConfig holds retrieval settings.
type RecommendConfig struct {
	DefaultTopN  int    `yaml:"default_top_n"`
	MaxTopN      int    `yaml:"max_top_n"` // 0 means unlimited
	RatingSource string `yaml:"rating_source"` // raw or normalized
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed, or if a value is invalid.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Catalog.Path = expandPath(cfg.Catalog.Path, configDir)

	return &cfg, nil
}

// Default returns a config with all defaults applied, for running without a file.
// Relative paths are resolved against the working directory.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if abs, err := filepath.Abs(cfg.Catalog.Path); err == nil {
		cfg.Catalog.Path = abs
	}
	return cfg
}

// Validate checks enumerated and bounded values.
func (c *Config) Validate() error {
	switch c.Server.Mode {
	case ModeLocal, ModeHosted:
	default:
		return fmt.Errorf("invalid server.mode %q (supported: local, hosted)", c.Server.Mode)
	}
	switch strings.ToLower(c.Catalog.Format) {
	case "", "csv", "xlsx", "sqlite":
	default:
		return fmt.Errorf("invalid catalog.format %q (supported: csv, xlsx, sqlite)", c.Catalog.Format)
	}
	switch c.Recommend.RatingSource {
	case "raw", "normalized":
	default:
		return fmt.Errorf("invalid recommend.rating_source %q (supported: raw, normalized)", c.Recommend.RatingSource)
	}
	if c.Recommend.MaxTopN < 0 {
		return fmt.Errorf("recommend.max_top_n must be >= 0, got %d", c.Recommend.MaxTopN)
	}
	if c.Recommend.MaxTopN > 0 && c.Recommend.MaxTopN < c.Recommend.DefaultTopN {
		return fmt.Errorf("recommend.max_top_n (%d) must be >= default_top_n (%d)",
			c.Recommend.MaxTopN, c.Recommend.DefaultTopN)
	}
	return nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
