package config

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

func validateVersion(cfg *Config) error {
	if cfg.Version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", cfg.Version)
	}
	if cfg.Version > 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateAnalysis(cfg *Config) error {
	if !isDottedName(cfg.Analysis.CoroutineMarker) {
		return fmt.Errorf("analysis.coroutine_marker must be a dotted name, got %q", cfg.Analysis.CoroutineMarker)
	}
	return nil
}

func validateEnvironment(cfg *Config) error {
	if strings.ContainsAny(cfg.Environment.Python, "\n\r") {
		return fmt.Errorf("environment.python must be a single command")
	}
	for i, name := range cfg.Environment.KnownCoroutines {
		if !isDottedName(name) {
			return fmt.Errorf("environment.known_coroutines[%d] must be a dotted name, got %q", i, name)
		}
	}
	return nil
}

func validateOutput(cfg *Config) error {
	switch cfg.Output.Format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("output.format must be one of: text, json (got %q)", cfg.Output.Format)
	}
}

func validateExclude(cfg *Config) error {
	for _, pattern := range cfg.Exclude.Dirs {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.dirs pattern %q: %w", pattern, err)
		}
	}
	for _, pattern := range cfg.Exclude.Files {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.files pattern %q: %w", pattern, err)
		}
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Rate > 1000 {
		return fmt.Errorf("watch.rate must be <= 1000 runs per second, got %v", cfg.Watch.Rate)
	}
	return nil
}

func validateHistory(cfg *Config) error {
	if cfg.History.Enabled && strings.TrimSpace(cfg.History.Path) == "" {
		return fmt.Errorf("history.path must not be empty when history is enabled")
	}
	return nil
}

func isDottedName(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	for _, part := range strings.Split(value, ".") {
		if part == "" {
			return false
		}
		for i, r := range part {
			if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9') {
				continue
			}
			return false
		}
	}
	return true
}
