package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: COROCHECK_[SECTION]_[KEY] (e.g., COROCHECK_ENVIRONMENT_PYTHON).
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.Analysis.CoroutineMarker, "COROCHECK_ANALYSIS_COROUTINE_MARKER")
	setEnvBool(&cfg.Analysis.FailOnMismatch, "COROCHECK_ANALYSIS_FAIL_ON_MISMATCH")

	setEnvString(&cfg.Environment.Python, "COROCHECK_ENVIRONMENT_PYTHON")
	setEnvInt(&cfg.Environment.CacheSize, "COROCHECK_ENVIRONMENT_CACHE_SIZE")
	if val, ok := os.LookupEnv("COROCHECK_ENVIRONMENT_EXECUTE_IMPORTS"); ok {
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			slog.Debug("applying env override", "key", "COROCHECK_ENVIRONMENT_EXECUTE_IMPORTS", "value", val)
			cfg.Environment.ExecuteImports = &b
		}
	}

	setEnvString(&cfg.Output.Format, "COROCHECK_OUTPUT_FORMAT")

	setEnvDuration(&cfg.Watch.Debounce, "COROCHECK_WATCH_DEBOUNCE")

	setEnvBool(&cfg.History.Enabled, "COROCHECK_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "COROCHECK_HISTORY_PATH")

	setEnvString(&cfg.Observability.MetricsAddr, "COROCHECK_OBSERVABILITY_METRICS_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "COROCHECK_OBSERVABILITY_OTLP_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
