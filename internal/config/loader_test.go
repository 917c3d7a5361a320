package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Monitor.StaleAfter != 7*24*time.Hour {
		t.Errorf("stale after = %v", cfg.Monitor.StaleAfter)
	}
	if cfg.Monitor.DailyCostUSDLimit != 1.0 {
		t.Errorf("daily limit = %v", cfg.Monitor.DailyCostUSDLimit)
	}
	if cfg.Tier.Default != "partner" {
		t.Errorf("default tier = %q", cfg.Tier.Default)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opsplane.yaml")
	yaml := `
server:
  port: "9090"
monitor:
  daily_cost_usd_limit: 2.5
tier:
  default: intern
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Monitor.DailyCostUSDLimit != 2.5 {
		t.Errorf("daily limit = %v", cfg.Monitor.DailyCostUSDLimit)
	}
	if cfg.Tier.Default != "intern" {
		t.Errorf("default tier = %q", cfg.Tier.Default)
	}
	// Untouched keys keep their defaults.
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Errorf("nats url = %q", cfg.NATS.URL)
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opsplane.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: \"9090\"\n"), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	t.Setenv("OPSPLANE_PORT", "7070")
	t.Setenv("OPSPLANE_MONITOR_DAILY_COST_LIMIT", "0.25")
	t.Setenv("OPSPLANE_MONITOR_STALE_AFTER", "72h")
	t.Setenv("OPSPLANE_CRON_SECRET", "hunter2")
	t.Setenv("DATABASE_URL", "postgres://env:env@db:5432/opsplane")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("port = %q, env must beat yaml", cfg.Server.Port)
	}
	if cfg.Monitor.DailyCostUSDLimit != 0.25 {
		t.Errorf("daily limit = %v", cfg.Monitor.DailyCostUSDLimit)
	}
	if cfg.Monitor.StaleAfter != 72*time.Hour {
		t.Errorf("stale after = %v", cfg.Monitor.StaleAfter)
	}
	if cfg.Monitor.CronSecret != "hunter2" {
		t.Errorf("cron secret = %q", cfg.Monitor.CronSecret)
	}
	if cfg.Postgres.DSN != "postgres://env:env@db:5432/opsplane" {
		t.Errorf("dsn = %q", cfg.Postgres.DSN)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Setenv("OPSPLANE_MONITOR_STALE_AFTER", "-1h")
	if _, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected validation error for negative window")
	}
}
