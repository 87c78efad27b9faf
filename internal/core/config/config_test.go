package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corocheck.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
version = 1

[analysis]
coroutine_marker = "trollius.coroutine"
await_is_delegation = true
fail_on_mismatch = true

[environment]
execute_imports = false
python = "/usr/bin/python3.9"
cache_size = 64
known_coroutines = ["aiohttp.request"]

[output]
format = "JSON"
color = false

[exclude]
dirs = [".git", "build*"]
files = ["*_pb2.py"]

[watch]
debounce = "1s"
rate = 4.0

[history]
enabled = true
path = "state/runs.db"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Analysis.CoroutineMarker != "trollius.coroutine" {
		t.Errorf("unexpected marker %q", cfg.Analysis.CoroutineMarker)
	}
	if !cfg.Analysis.AwaitIsDelegation || !cfg.Analysis.FailOnMismatch {
		t.Errorf("expected analysis toggles to be set, got %+v", cfg.Analysis)
	}
	if cfg.Environment.ImportsEnabled() {
		t.Error("expected execute_imports=false to disable import execution")
	}
	if cfg.Environment.Python != "/usr/bin/python3.9" || cfg.Environment.CacheSize != 64 {
		t.Errorf("unexpected environment %+v", cfg.Environment)
	}
	if len(cfg.Environment.KnownCoroutines) != 1 || cfg.Environment.KnownCoroutines[0] != "aiohttp.request" {
		t.Errorf("unexpected known coroutines %v", cfg.Environment.KnownCoroutines)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("expected format to be normalized to json, got %q", cfg.Output.Format)
	}
	if cfg.Output.ColorEnabled() {
		t.Error("expected color=false")
	}
	if cfg.Watch.Debounce != time.Second || cfg.Watch.Rate != 4 {
		t.Errorf("unexpected watch %+v", cfg.Watch)
	}
	if !cfg.History.Enabled || cfg.History.Path != "state/runs.db" {
		t.Errorf("unexpected history %+v", cfg.History)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ``))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("expected version 1, got %d", cfg.Version)
	}
	if cfg.Analysis.CoroutineMarker != "asyncio.coroutine" {
		t.Errorf("expected default marker, got %q", cfg.Analysis.CoroutineMarker)
	}
	if !cfg.Environment.ImportsEnabled() {
		t.Error("expected import execution to default to enabled")
	}
	if cfg.Environment.Python != "python3" {
		t.Errorf("expected python3, got %q", cfg.Environment.Python)
	}
	if len(cfg.Environment.KnownCoroutines) != len(DefaultKnownCoroutines) {
		t.Errorf("expected default known coroutines, got %v", cfg.Environment.KnownCoroutines)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("expected default debounce 500ms, got %v", cfg.Watch.Debounce)
	}
	if cfg.Output.Format != "text" || !cfg.Output.ColorEnabled() {
		t.Errorf("unexpected output defaults %+v", cfg.Output)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad version", "version = 3", "unsupported config version"},
		{"bad marker", "[analysis]\ncoroutine_marker = \"asyncio..coroutine\"", "analysis.coroutine_marker"},
		{"bad known coroutine", "[environment]\nknown_coroutines = [\"asyncio.sleep()\"]", "known_coroutines[0]"},
		{"bad format", "[output]\nformat = \"xml\"", "output.format"},
		{"bad glob", "[exclude]\ndirs = [\"[\"]", "exclude.dirs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("implicit default file missing", func(t *testing.T) {
		dir := t.TempDir()
		wd, err := os.Getwd()
		if err != nil {
			t.Fatal(err)
		}
		if err := os.Chdir(dir); err != nil {
			t.Fatal(err)
		}
		defer os.Chdir(wd)

		cfg, err := LoadOrDefault(DefaultConfigFile)
		if err != nil {
			t.Fatalf("expected defaults, got %v", err)
		}
		if cfg.Analysis.CoroutineMarker != "asyncio.coroutine" {
			t.Errorf("unexpected marker %q", cfg.Analysis.CoroutineMarker)
		}
	})

	t.Run("explicit file missing", func(t *testing.T) {
		_, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
		if err == nil {
			t.Fatal("expected error for explicit missing config")
		}
	})
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("COROCHECK_ENVIRONMENT_PYTHON", "pypy3")
	t.Setenv("COROCHECK_ENVIRONMENT_EXECUTE_IMPORTS", "false")
	t.Setenv("COROCHECK_WATCH_DEBOUNCE", "2s")

	cfg, err := Load(writeConfig(t, ``))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Environment.Python != "pypy3" {
		t.Errorf("expected env override for python, got %q", cfg.Environment.Python)
	}
	if cfg.Environment.ImportsEnabled() {
		t.Error("expected env override to disable import execution")
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("expected 2s debounce, got %v", cfg.Watch.Debounce)
	}
}
