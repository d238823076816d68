package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rajshekhar-verma01/task-manage/internal/storage"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Backend != storage.BackendSQLite {
		t.Fatalf("default backend = %q", cfg.Storage.Backend)
	}
	if cfg.Server.Addr != ":8484" {
		t.Fatalf("default addr = %q", cfg.Server.Addr)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  addr: \":9000\"\nstorage:\n  backend: file\n  path: tracker.json\nsweep:\n  interval: 30m\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("TASKMANAGE_STORAGE_BACKEND", "memory")
	t.Setenv("TASKMANAGE_SWEEP_INTERVAL", "15m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Fatalf("file addr not applied: %q", cfg.Server.Addr)
	}
	if cfg.Storage.Backend != storage.BackendMemory {
		t.Fatalf("env override not applied: %q", cfg.Storage.Backend)
	}
	if cfg.Sweep.Interval != 15*time.Minute {
		t.Fatalf("sweep interval = %s", cfg.Sweep.Interval)
	}
}

func TestValidateRejectsBadBackend(t *testing.T) {
	cfg := Default()
	cfg.Storage.Backend = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg = Default()
	cfg.Storage.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing path")
	}
}
