package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "errand.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
version: "1"
gateway:
  listen: "0.0.0.0:9000"
  auth_token: secret
store:
  driver: memory
embedding:
  model: text-embedding-3-small
dedup:
  threshold: 0.9
  window: 12h
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Gateway.Listen != "0.0.0.0:9000" {
		t.Fatalf("listen = %q", cfg.Gateway.Listen)
	}
	if cfg.Store.Driver != "memory" {
		t.Fatalf("driver = %q", cfg.Store.Driver)
	}
	if cfg.Dedup.Threshold != 0.9 {
		t.Fatalf("threshold = %v", cfg.Dedup.Threshold)
	}
	if cfg.Dedup.Window != 12*time.Hour {
		t.Fatalf("window = %v", cfg.Dedup.Window)
	}

	// Defaults for unset fields.
	if cfg.DataDir != "./data" {
		t.Fatalf("data_dir default = %q", cfg.DataDir)
	}
	if cfg.Schedule.DefaultHour != 9 {
		t.Fatalf("default_hour default = %d", cfg.Schedule.DefaultHour)
	}
	if cfg.Retention.Window != 24*time.Hour {
		t.Fatalf("retention default = %v", cfg.Retention.Window)
	}
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	path := writeConfig(t, `
version: "1"
gatway:
  listen: ":9000"
`)

	if _, err := Load(path); err == nil {
		t.Fatal("misspelled key should be rejected")
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("ERRAND_TEST_TOKEN", "from-env")

	path := writeConfig(t, `
version: "1"
gateway:
  auth_token: ${ERRAND_TEST_TOKEN}
store:
  driver: ${ERRAND_TEST_DRIVER:-memory}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gateway.AuthToken != "from-env" {
		t.Fatalf("auth_token = %q", cfg.Gateway.AuthToken)
	}
	if cfg.Store.Driver != "memory" {
		t.Fatalf("driver = %q, want fallback default", cfg.Store.Driver)
	}
}

func TestLoad_UnresolvedVariable(t *testing.T) {
	path := writeConfig(t, `
version: "1"
gateway:
  auth_token: ${ERRAND_TEST_MISSING_VAR}
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("unresolved variable should fail")
	}
	if !strings.Contains(err.Error(), "ERRAND_TEST_MISSING_VAR") {
		t.Fatalf("error should name the variable: %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Config{Version: "1"}.WithDefaults()
	if err := Validate(&valid); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing version", func(c *Config) { c.Version = "" }},
		{"unsupported version", func(c *Config) { c.Version = "2" }},
		{"bad listen address", func(c *Config) { c.Gateway.Listen = "no-port" }},
		{"unknown store driver", func(c *Config) { c.Store.Driver = "redis" }},
		{"threshold too high", func(c *Config) { c.Dedup.Threshold = 1.0 }},
		{"threshold negative", func(c *Config) { c.Dedup.Threshold = -0.5 }},
		{"zero dedup window", func(c *Config) { c.Dedup.Window = -time.Hour }},
		{"default hour out of range", func(c *Config) { c.Schedule.DefaultHour = 24 }},
		{"retention shorter than dedup window", func(c *Config) { c.Retention.Window = time.Hour }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Config{Version: "1"}.WithDefaults()
			tt.mutate(&cfg)
			if err := Validate(&cfg); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
