package app

import (
	"context"
	"log/slog"
	"os"
	"time"

	"corocheck/internal/core/watcher"
	"corocheck/internal/shared/observability"
	"corocheck/internal/shared/util"
	"corocheck/internal/ui/report"
)

// limiterTTL bounds how long an idle file keeps its rate limiter.
const limiterTTL = 10 * time.Minute

// Watch analyzes paths once, then re-analyzes changed files until ctx is
// done. Faults are logged and do not stop watching. Re-runs of one file are
// throttled by the configured rate.
func (a *App) Watch(ctx context.Context, paths []string, rep report.Reporter) error {
	files, err := a.Discover(paths)
	if err != nil {
		return err
	}
	for _, path := range files {
		if _, err := a.AnalyzeFile(ctx, path, rep); err != nil {
			slog.Error("analysis failed", "path", path, "error", err)
		}
	}

	limiters := util.NewLimiterRegistry(a.Config.Watch.Rate, a.Config.Watch.Burst, limiterTTL)
	defer limiters.Close()

	w, err := watcher.NewWatcher(a.Config.Watch.Debounce, a.filter, func(changed []string) {
		a.HandleChanges(ctx, changed, rep, limiters)
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(paths); err != nil {
		return err
	}
	slog.Info("watching for changes", "paths", paths, "debounce", a.Config.Watch.Debounce)

	<-ctx.Done()
	return nil
}

// HandleChanges re-analyzes changed files. Removed files are dropped from the
// current update.
func (a *App) HandleChanges(ctx context.Context, paths []string, rep report.Reporter, limiters *util.LimiterRegistry) {
	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		if _, err := os.Stat(path); err != nil {
			slog.Debug("changed file is gone", "path", path)
			a.forget(path)
			continue
		}
		if limiters != nil && !limiters.Get(path).Allow(1) {
			observability.WatcherThrottledTotal.Inc()
			slog.Debug("re-analysis throttled", "path", path)
			continue
		}
		if _, err := a.AnalyzeFile(ctx, path, rep); err != nil {
			slog.Error("analysis failed", "path", path, "error", err)
		}
	}
}
