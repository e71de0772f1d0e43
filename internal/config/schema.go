// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for errand.
package config

import "time"

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// DataDir is where persistent state lives. Default "./data".
	DataDir string `yaml:"data_dir"`

	Gateway   GatewayConfig   `yaml:"gateway"`
	Store     StoreConfig     `yaml:"store"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Dedup     DedupConfig     `yaml:"dedup"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Retention RetentionConfig `yaml:"retention"`
}

// GatewayConfig configures the HTTP gateway.
type GatewayConfig struct {
	// Listen is the bind address. Default "127.0.0.1:8740".
	Listen string `yaml:"listen"`

	// AuthToken guards /api and /ws when set; empty leaves them open
	// (loopback deployments).
	AuthToken string `yaml:"auth_token"`
}

// StoreConfig selects the execution-record store backend.
type StoreConfig struct {
	// Driver is "sqlite" (default) or "memory".
	Driver string `yaml:"driver"`

	// Path is the SQLite database file. Default <data_dir>/errand.db.
	Path string `yaml:"path"`
}

// EmbeddingConfig configures the embedding provider client.
type EmbeddingConfig struct {
	APIKey     string        `yaml:"api_key"`
	Model      string        `yaml:"model"`
	BaseURL    string        `yaml:"base_url"`
	Dimensions int           `yaml:"dimensions"`
	Timeout    time.Duration `yaml:"timeout"`
}

// DedupConfig configures the duplicate guard.
type DedupConfig struct {
	// Threshold is the strict similarity bound for a duplicate. Default 0.85.
	Threshold float64 `yaml:"threshold"`

	// Window bounds how far back duplicates are looked for. Default 24h.
	Window time.Duration `yaml:"window"`
}

// ScheduleConfig configures the runner.
type ScheduleConfig struct {
	// DefaultHour is used for daily/weekly prompts that carry no time of
	// day. Default 9 (09:00).
	DefaultHour int `yaml:"default_hour"`
}

// RetentionConfig configures execution-record pruning.
type RetentionConfig struct {
	// Window is how long records are kept. Default 24h.
	Window time.Duration `yaml:"window"`

	// ScheduleExpr overrides the prune cadence (5-field cron expression).
	ScheduleExpr string `yaml:"schedule"`
}

// WithDefaults returns a copy with unset fields filled in.
func (c Config) WithDefaults() Config {
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.Gateway.Listen == "" {
		c.Gateway.Listen = "127.0.0.1:8740"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "sqlite"
	}
	if c.Dedup.Threshold == 0 {
		c.Dedup.Threshold = 0.85
	}
	if c.Dedup.Window == 0 {
		c.Dedup.Window = 24 * time.Hour
	}
	if c.Schedule.DefaultHour == 0 {
		c.Schedule.DefaultHour = 9
	}
	if c.Retention.Window == 0 {
		c.Retention.Window = 24 * time.Hour
	}
	return c
}
