package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
storage_path: "postgres://localhost/estate"
scheduling:
  default_agent: "agent-admin"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Env != "local" {
		t.Fatalf("expected local env, got %q", cfg.Env)
	}
	if cfg.WindowDays != 11 {
		t.Fatalf("expected 11 window days, got %d", cfg.WindowDays)
	}
	if cfg.PageSize != 10 {
		t.Fatalf("expected page size 10, got %d", cfg.PageSize)
	}
	if cfg.LockTTL != 10*time.Second {
		t.Fatalf("expected 10s lock ttl, got %s", cfg.LockTTL)
	}
	if cfg.HTTPServer.Timeout != 4*time.Second {
		t.Fatalf("expected 4s timeout, got %s", cfg.HTTPServer.Timeout)
	}
	loc, err := cfg.Scheduling.Location()
	if err != nil || loc != time.UTC {
		t.Fatalf("expected UTC location, got %v, %v", loc, err)
	}
}

func TestLoad_RejectsUnknownTimezone(t *testing.T) {
	path := writeConfig(t, `
storage_path: "postgres://localhost/estate"
scheduling:
  default_agent: "agent-admin"
  timezone: "Mars/Olympus"
`)

	if _, err := Load(path); err == nil {
		t.Fatalf("expected timezone error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoad_RequiresStoragePath(t *testing.T) {
	path := writeConfig(t, `
scheduling:
  default_agent: "agent-admin"
`)

	if _, err := Load(path); err == nil {
		t.Fatalf("expected missing storage_path error")
	}
}
