// Package config loads the application configuration from YAML with
// environment variable overrides.
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the margin collector.
type Config struct {
	Storage  Storage  `yaml:"storage"`
	Scrape   Scrape   `yaml:"scrape"`
	Backfill Backfill `yaml:"backfill"`
	Server   Server   `yaml:"server"`
	Logging  Logging  `yaml:"logging"`
}

// Storage holds paths for data persistence and exports.
type Storage struct {
	SQLitePath string `yaml:"sqlite_path"`
	ExportDir  string `yaml:"export_dir"`
}

// Scrape configures the browser session driven against the clearing
// corporation's site.
type Scrape struct {
	HomeURL    string `yaml:"home_url"`
	MarginURL  string `yaml:"margin_url"`
	UserAgent  string `yaml:"user_agent"`
	Headless   bool   `yaml:"headless"`
	TimeoutSec int    `yaml:"timeout_sec"` // per-date budget for the whole page flow
}

// Backfill controls the date-range collection loop.
type Backfill struct {
	StartDate       string   `yaml:"start_date"`
	Symbols         []string `yaml:"symbols"` // allow list; only these persist
	RequestDelaySec int      `yaml:"request_delay_sec"`
}

// Server holds network listener configuration for the read-only API.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns the configuration used when no YAML file is provided.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg
}

// Load reads the YAML configuration file at the given path, fills in
// defaults for unset fields, and then applies environment variable
// overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "data/margins.db"
	}
	if cfg.Storage.ExportDir == "" {
		cfg.Storage.ExportDir = "exports"
	}
	if cfg.Scrape.HomeURL == "" {
		cfg.Scrape.HomeURL = "https://www.mcxccl.com/"
	}
	if cfg.Scrape.MarginURL == "" {
		cfg.Scrape.MarginURL = "https://www.mcxccl.com/risk-management/daily-margin"
	}
	if cfg.Scrape.UserAgent == "" {
		cfg.Scrape.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if cfg.Scrape.TimeoutSec == 0 {
		cfg.Scrape.TimeoutSec = 120
	}
	if len(cfg.Backfill.Symbols) == 0 {
		cfg.Backfill.Symbols = []string{"NATURALGAS", "NATGASMINI"}
	}
	if cfg.Backfill.RequestDelaySec == 0 {
		cfg.Backfill.RequestDelaySec = 3
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("EXPORT_DIR"); v != "" {
		cfg.Storage.ExportDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("REQUEST_DELAY_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Backfill.RequestDelaySec = n
		}
	}
}
