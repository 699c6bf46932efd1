package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseMergesOntoDefaults(t *testing.T) {
	t.Parallel()

	raw := []byte(`
logging:
  level: debug
store:
  backend: sql
  tables:
    bills: Legislation
sync:
  defaultLimit: 25
  batchDelay: 500ms
  states: [" CA ", "tx", ""]
subjects:
  overrides:
    agriculturalpolicy: Agricultural Policy
`)

	cfg, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}
	if cfg.Store.Backend != BackendSQL {
		t.Fatalf("unexpected backend: %s", cfg.Store.Backend)
	}
	if cfg.Store.Tables.Bills != "Legislation" || cfg.Store.Tables.Legislators != "Legislators" {
		t.Fatalf("unexpected tables: %+v", cfg.Store.Tables)
	}
	if cfg.Sync.DefaultLimit != 25 || cfg.Sync.BatchSize != 5 {
		t.Fatalf("unexpected sync config: %+v", cfg.Sync)
	}
	if cfg.Sync.BatchDelay != 500*time.Millisecond {
		t.Fatalf("unexpected batch delay: %v", cfg.Sync.BatchDelay)
	}
	if len(cfg.Sync.States) != 2 || cfg.Sync.States[0] != "ca" || cfg.Sync.States[1] != "tx" {
		t.Fatalf("unexpected states: %v", cfg.Sync.States)
	}
	if cfg.Subjects.Overrides["agriculturalpolicy"] != "Agricultural Policy" {
		t.Fatalf("unexpected overrides: %v", cfg.Subjects.Overrides)
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if len(cfg.Sync.States) != 50 {
		t.Fatalf("expected 50 default states, got %d", len(cfg.Sync.States))
	}
	if cfg.Source.ChunkSize != 10 || cfg.Sync.BatchSize != 5 || cfg.Sync.BatchDelay != 2*time.Second {
		t.Fatalf("unexpected defaults: %+v %+v", cfg.Source, cfg.Sync)
	}
	if cfg.Store.Airtable.RequestsPerSecond != 5 {
		t.Fatalf("unexpected store rate: %v", cfg.Store.Airtable.RequestsPerSecond)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(manualTokenEnv, "manual-secret")
	t.Setenv(cronTokenEnv, "cron-secret")
	t.Setenv(storeBackendEnv, BackendSQL)
	t.Setenv(schedulerEnabledEnv, "true")

	cfg := Load()
	if cfg.Auth.ManualToken != "manual-secret" || cfg.Auth.CronToken != "cron-secret" {
		t.Fatalf("unexpected auth: %+v", cfg.Auth)
	}
	if cfg.Store.Backend != BackendSQL {
		t.Fatalf("unexpected backend: %s", cfg.Store.Backend)
	}
	if !cfg.Scheduler.Enabled {
		t.Fatal("expected scheduler enabled")
	}
}

func TestLoadFromFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billsync.yaml")
	raw := []byte("source:\n  apiKey: from-file\n  chunkSize: 5\nsubjects:\n  overrides:\n    healthcare: Health Care\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(sourceAPIKeyEnv, "from-env")

	cfg := LoadFrom(path)
	if cfg.Source.APIKey != "from-env" {
		t.Fatalf("env must win over file, got %q", cfg.Source.APIKey)
	}
	if cfg.Source.ChunkSize != 5 {
		t.Fatalf("unexpected chunk size: %d", cfg.Source.ChunkSize)
	}
	if cfg.Subjects.Overrides["healthcare"] != "Health Care" {
		t.Fatalf("unexpected overrides: %v", cfg.Subjects.Overrides)
	}
}

func TestLoadFromMissingFileKeepsDefaults(t *testing.T) {
	t.Setenv(sourceAPIKeyEnv, "")

	cfg := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	if cfg.Source.BaseURL != "https://v3.openstates.org" {
		t.Fatalf("unexpected base url: %s", cfg.Source.BaseURL)
	}
}
