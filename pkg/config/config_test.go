package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load([]string{"--env-file", missingEnvFile(t)})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.BaseURL != "https://reality.bazos.cz" {
		t.Errorf("BaseURL: got %q", cfg.BaseURL)
	}
	if !reflect.DeepEqual(cfg.Regions, []string{"ostrava", "karvina"}) {
		t.Errorf("Regions: got %v", cfg.Regions)
	}
	if cfg.RecencyWindow != 2*time.Hour {
		t.Errorf("RecencyWindow: got %v, want 2h", cfg.RecencyWindow)
	}
	if cfg.OutputPath != "data/listings.csv" {
		t.Errorf("OutputPath: got %q", cfg.OutputPath)
	}
	if cfg.FetchMode != FetchModeHTTP {
		t.Errorf("FetchMode: got %q", cfg.FetchMode)
	}
	if cfg.DryRun {
		t.Error("DryRun should default to false")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("REGIONS", "brno, praha ,")
	t.Setenv("RECENCY_WINDOW", "90m")
	t.Setenv("FETCH_MODE", "browser")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load([]string{"--env-file", missingEnvFile(t)})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if !reflect.DeepEqual(cfg.Regions, []string{"brno", "praha"}) {
		t.Errorf("Regions: got %v, want [brno praha]", cfg.Regions)
	}
	if cfg.RecencyWindow != 90*time.Minute {
		t.Errorf("RecencyWindow: got %v, want 90m", cfg.RecencyWindow)
	}
	if cfg.FetchMode != FetchModeBrowser {
		t.Errorf("FetchMode: got %q", cfg.FetchMode)
	}
	if cfg.RedisDB != 3 {
		t.Errorf("RedisDB: got %d, want 3", cfg.RedisDB)
	}
}

func TestLoadFromEnvFileAndFlags(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	content := "OUTPUT_PATH=/tmp/from-file.csv\nLOG_LEVEL=debug\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load([]string{"--env-file", envFile, "--dry-run"})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.OutputPath != "/tmp/from-file.csv" {
		t.Errorf("OutputPath: got %q", cfg.OutputPath)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q", cfg.LogLevel)
	}
	if !cfg.DryRun {
		t.Error("DryRun should be enabled by --dry-run")
	}

	cfg, err = Load([]string{"--env-file", envFile, "--output", "other.csv"})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.OutputPath != "other.csv" {
		t.Errorf("--output should win over the env file, got %q", cfg.OutputPath)
	}
}

func TestLoadHelp(t *testing.T) {
	_, err := Load([]string{"--help"})
	if !errors.Is(err, pflag.ErrHelp) {
		t.Errorf("expected pflag.ErrHelp, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		BaseURL:       "https://reality.bazos.cz",
		Regions:       []string{"ostrava"},
		RecencyWindow: time.Hour,
		OutputPath:    "out.csv",
		FetchMode:     FetchModeHTTP,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no regions", func(c *Config) { c.Regions = nil }},
		{"zero window", func(c *Config) { c.RecencyWindow = 0 }},
		{"empty output", func(c *Config) { c.OutputPath = "" }},
		{"bad fetch mode", func(c *Config) { c.FetchMode = "carrier-pigeon" }},
		{"empty base url", func(c *Config) { c.BaseURL = "" }},
	}
	for _, tt := range tests {
		c := valid
		tt.mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}
