package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	yamlContent := []byte(`
storage:
  sqlite_path: "/tmp/mcxmargin/margins.db"
  export_dir: "/tmp/mcxmargin/exports"
scrape:
  home_url: "https://example.test/"
  margin_url: "https://example.test/daily-margin"
  headless: true
  timeout_sec: 60
backfill:
  start_date: "2025-04-01"
  symbols: ["NATURALGAS", "NATGASMINI"]
  request_delay_sec: 5
server:
  host: "127.0.0.1"
  port: 9090
logging:
  level: "debug"
  format: "json"
`)

	tmpFile, err := os.CreateTemp("", "mcxmargin-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}

	os.Unsetenv("SQLITE_PATH")
	os.Unsetenv("EXPORT_DIR")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("REQUEST_DELAY_SEC")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// -- Storage --
	if cfg.Storage.SQLitePath != "/tmp/mcxmargin/margins.db" {
		t.Errorf("Storage.SQLitePath = %q, want %q", cfg.Storage.SQLitePath, "/tmp/mcxmargin/margins.db")
	}
	if cfg.Storage.ExportDir != "/tmp/mcxmargin/exports" {
		t.Errorf("Storage.ExportDir = %q, want %q", cfg.Storage.ExportDir, "/tmp/mcxmargin/exports")
	}

	// -- Scrape --
	if cfg.Scrape.HomeURL != "https://example.test/" {
		t.Errorf("Scrape.HomeURL = %q, want %q", cfg.Scrape.HomeURL, "https://example.test/")
	}
	if !cfg.Scrape.Headless {
		t.Error("Scrape.Headless = false, want true")
	}
	if cfg.Scrape.TimeoutSec != 60 {
		t.Errorf("Scrape.TimeoutSec = %d, want %d", cfg.Scrape.TimeoutSec, 60)
	}
	// Default should kick in for the unset user agent.
	if cfg.Scrape.UserAgent == "" {
		t.Error("Scrape.UserAgent should default to a Chrome UA string")
	}

	// -- Backfill --
	if cfg.Backfill.StartDate != "2025-04-01" {
		t.Errorf("Backfill.StartDate = %q, want %q", cfg.Backfill.StartDate, "2025-04-01")
	}
	if len(cfg.Backfill.Symbols) != 2 {
		t.Errorf("Backfill.Symbols = %v, want two symbols", cfg.Backfill.Symbols)
	}
	if cfg.Backfill.RequestDelaySec != 5 {
		t.Errorf("Backfill.RequestDelaySec = %d, want %d", cfg.Backfill.RequestDelaySec, 5)
	}

	// -- Server --
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}

	// -- Logging --
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestDefault(t *testing.T) {
	os.Unsetenv("SQLITE_PATH")
	os.Unsetenv("EXPORT_DIR")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("REQUEST_DELAY_SEC")

	cfg := Default()

	if cfg.Storage.SQLitePath != "data/margins.db" {
		t.Errorf("Storage.SQLitePath = %q, want %q", cfg.Storage.SQLitePath, "data/margins.db")
	}
	if cfg.Scrape.MarginURL == "" {
		t.Error("Scrape.MarginURL should have a default")
	}
	if cfg.Backfill.RequestDelaySec != 3 {
		t.Errorf("Backfill.RequestDelaySec = %d, want %d", cfg.Backfill.RequestDelaySec, 3)
	}
	want := []string{"NATURALGAS", "NATGASMINI"}
	if len(cfg.Backfill.Symbols) != 2 || cfg.Backfill.Symbols[0] != want[0] || cfg.Backfill.Symbols[1] != want[1] {
		t.Errorf("Backfill.Symbols = %v, want %v", cfg.Backfill.Symbols, want)
	}
}

func TestEnvOverrides(t *testing.T) {
	yamlContent := []byte(`
storage:
  sqlite_path: "/original/margins.db"
logging:
  level: "info"
`)

	tmpFile, err := os.CreateTemp("", "mcxmargin-config-env-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmpFile.Close()

	os.Setenv("SQLITE_PATH", "/env/margins.db")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("REQUEST_DELAY_SEC", "7")
	defer os.Unsetenv("SQLITE_PATH")
	defer os.Unsetenv("LOG_LEVEL")
	defer os.Unsetenv("REQUEST_DELAY_SEC")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Storage.SQLitePath != "/env/margins.db" {
		t.Errorf("Storage.SQLitePath = %q, want %q (env override)", cfg.Storage.SQLitePath, "/env/margins.db")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q (env override)", cfg.Logging.Level, "debug")
	}
	if cfg.Backfill.RequestDelaySec != 7 {
		t.Errorf("Backfill.RequestDelaySec = %d, want %d (env override)", cfg.Backfill.RequestDelaySec, 7)
	}
	// export_dir should remain the default since no env override was set.
	if cfg.Storage.ExportDir != "exports" {
		t.Errorf("Storage.ExportDir = %q, want %q (default)", cfg.Storage.ExportDir, "exports")
	}
}
