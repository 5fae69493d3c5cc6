package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
  request_timeout: 5s
catalog:
  path: "/data/products.csv"
recommend:
  default_top_n: 3
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Server.RequestTimeout != 5*time.Second {
		t.Errorf("request_timeout = %v, want 5s", cfg.Server.RequestTimeout)
	}
	if cfg.Catalog.Path != "/data/products.csv" {
		t.Errorf("catalog path = %s", cfg.Catalog.Path)
	}
	if cfg.Recommend.DefaultTopN != 3 {
		t.Errorf("default_top_n = %d, want 3", cfg.Recommend.DefaultTopN)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_debugTrue(t *testing.T) {
	path := writeConfig(t, `
debug: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, `
catalog:
  path: "./data/products.csv"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(filepath.Dir(path), "data", "products.csv")
	if cfg.Catalog.Path != want {
		t.Errorf("catalog path = %s, want %s", cfg.Catalog.Path, want)
	}
}

func TestLoad_defaultCatalogRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, "debug: false\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(filepath.Dir(path), "bosch_item_based_collaborative_filtering.csv")
	if cfg.Catalog.Path != want {
		t.Errorf("catalog path = %s, want %s", cfg.Catalog.Path, want)
	}
}

func TestLoad_invalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"mode", "server:\n  mode: cloud\n"},
		{"format", "catalog:\n  format: parquet\n"},
		{"rating source", "recommend:\n  rating_source: scaled\n"},
		{"top n bounds", "recommend:\n  default_top_n: 20\n  max_top_n: 10\n"},
		{"negative max top n", "recommend:\n  max_top_n: -1\n"},
		{"bad yaml", "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Mode != ModeLocal {
		t.Errorf("default mode: got %s", cfg.Server.Mode)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Recommend.DefaultTopN != 5 || cfg.Recommend.MaxTopN != 0 {
		t.Errorf("top n defaults: got %d/%d", cfg.Recommend.DefaultTopN, cfg.Recommend.MaxTopN)
	}
	if cfg.Recommend.RatingSource != "raw" {
		t.Errorf("rating source: got %s", cfg.Recommend.RatingSource)
	}
	if cfg.Catalog.Table != "products" {
		t.Errorf("catalog table: got %s", cfg.Catalog.Table)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("metrics path: got %s", cfg.Metrics.Path)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestApplyDefaults_hostedBindsAllInterfaces(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Mode: ModeHosted}}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("hosted host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Addr() != "0.0.0.0:5000" {
		t.Errorf("Addr() = %s", cfg.Server.Addr())
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if !filepath.IsAbs(cfg.Catalog.Path) {
		t.Errorf("Default catalog path should be absolute, got %s", cfg.Catalog.Path)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Server:  ServerConfig{Host: "localhost", Port: 9090, RequestTimeout: 2 * time.Second},
		Catalog: CatalogConfig{Path: "/tmp/products.xlsx", Sheet: "Items"},
	}
	ApplyDefaults(cfg)
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
	if loaded.Server.RequestTimeout != 2*time.Second {
		t.Errorf("loaded timeout: got %v", loaded.Server.RequestTimeout)
	}
	if loaded.Catalog.Sheet != "Items" {
		t.Errorf("loaded sheet: got %s", loaded.Catalog.Sheet)
	}
}
