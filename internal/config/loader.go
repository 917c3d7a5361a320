package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "opsplane.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "OPSPLANE_PORT")
	setString(&cfg.Server.CORSOrigin, "OPSPLANE_CORS_ORIGIN")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "OPSPLANE_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "OPSPLANE_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "OPSPLANE_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "OPSPLANE_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "OPSPLANE_PG_HEALTH_CHECK")
	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.Logging.Level, "OPSPLANE_LOG_LEVEL")
	setString(&cfg.Logging.Service, "OPSPLANE_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "OPSPLANE_LOG_ASYNC")
	setInt64(&cfg.Cache.MaxBytes, "OPSPLANE_CACHE_MAX_BYTES")
	setDuration(&cfg.Cache.SyncStatusTTL, "OPSPLANE_CACHE_SYNC_TTL")
	setDuration(&cfg.Monitor.StaleAfter, "OPSPLANE_MONITOR_STALE_AFTER")
	setDuration(&cfg.Monitor.SyncGapAfter, "OPSPLANE_MONITOR_SYNC_GAP_AFTER")
	setFloat64(&cfg.Monitor.DailyCostUSDLimit, "OPSPLANE_MONITOR_DAILY_COST_LIMIT")
	setString(&cfg.Monitor.CronSecret, "OPSPLANE_CRON_SECRET")
	setString(&cfg.Tier.Default, "OPSPLANE_TIER_DEFAULT")
	setString(&cfg.Otel.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.NATS.URL == "" {
		return errors.New("nats.url is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Monitor.StaleAfter <= 0 {
		return errors.New("monitor.stale_after must be positive")
	}
	if cfg.Monitor.SyncGapAfter <= 0 {
		return errors.New("monitor.sync_gap_after must be positive")
	}
	if cfg.Monitor.DailyCostUSDLimit < 0 {
		return errors.New("monitor.daily_cost_usd_limit must be >= 0")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
