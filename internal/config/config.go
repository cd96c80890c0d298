// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes the settings of the
// identity-resolution core: database path, matching thresholds, scan and
// backfill paging, logging, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// BackfillConfig tunes the fingerprint backfill coordinator.
type BackfillConfig struct {
	PageSize     int           // rows fetched per page
	RowsPerSec   float64       // rate limit on row writes (0 = unlimited)
	Burst        int           // limiter burst size
	MaxRetries   int           // page-read retry attempts
	RetryBackoff time.Duration // base delay between retries
}

// Config holds all configuration values for the application.
type Config struct {
	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// Store
	DBPath string // SQLite path

	// Matching
	MatchThreshold float64 // fuzzy similarity threshold [0,1]
	ScanPageSize   int     // candidates per page in the fuzzy scan
	MaxMatches     int     // early-termination cap on collected matches

	// Backfill
	Backfill BackfillConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// Store
		DBPath: getenv("DB_PATH", "ats.db"),

		// Matching
		MatchThreshold: getfloat("MATCH_THRESHOLD", 0.75),
		ScanPageSize:   getint("SCAN_PAGE_SIZE", 200),
		MaxMatches:     getint("MAX_MATCHES", 20),

		// Backfill
		Backfill: BackfillConfig{
			PageSize:     getint("BACKFILL_PAGE_SIZE", 500),
			RowsPerSec:   getfloat("BACKFILL_ROWS_PER_SEC", 200.0),
			Burst:        getint("BACKFILL_BURST", 50),
			MaxRetries:   getint("BACKFILL_MAX_RETRIES", 3),
			RetryBackoff: getdur("BACKFILL_RETRY_BACKOFF", 500*time.Millisecond),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "hr-identity-resolution"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.MatchThreshold <= 0 || cfg.MatchThreshold > 1 {
		return cfg, errors.New("MATCH_THRESHOLD must be in (0,1]")
	}
	if cfg.ScanPageSize < 1 {
		return cfg, errors.New("SCAN_PAGE_SIZE must be >= 1")
	}
	if cfg.MaxMatches < 1 {
		return cfg, errors.New("MAX_MATCHES must be >= 1")
	}
	if cfg.Backfill.PageSize < 1 {
		return cfg, errors.New("BACKFILL_PAGE_SIZE must be >= 1")
	}
	if cfg.Backfill.RowsPerSec < 0 {
		return cfg, errors.New("BACKFILL_ROWS_PER_SEC must be >= 0")
	}
	if cfg.Backfill.Burst < 1 {
		return cfg, errors.New("BACKFILL_BURST must be >= 1")
	}
	if cfg.Backfill.MaxRetries < 0 {
		return cfg, errors.New("BACKFILL_MAX_RETRIES must be >= 0")
	}
	if cfg.Backfill.RetryBackoff < 0 {
		return cfg, errors.New("BACKFILL_RETRY_BACKOFF must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
