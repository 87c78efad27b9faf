package app

import (
	"context"
	"log/slog"

	"corocheck/internal/shared/util"
	"corocheck/internal/ui/report"
)

// Totals aggregates the runs of one invocation.
type Totals struct {
	Files      int
	Calls      int
	Mismatches int
}

// Run analyzes every file under paths in order, one run per file. The first
// fault stops the invocation.
func (a *App) Run(ctx context.Context, paths []string, rep report.Reporter) (Totals, error) {
	var totals Totals

	files, err := a.Discover(paths)
	if err != nil {
		return totals, err
	}
	if len(files) == 0 {
		slog.Warn("no Python files found", "paths", paths)
		return totals, nil
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return totals, err
		}
		res, err := a.AnalyzeFile(ctx, path, rep)
		totals.Files++
		totals.Calls += res.Summary.Calls
		totals.Mismatches += res.Summary.Mismatches
		if err != nil {
			return totals, err
		}
		slog.Debug("analyzed file",
			"path", path,
			"run_id", res.RunID,
			"duration", res.Summary.Duration,
			"heap_mb", util.HeapAllocMB())
	}
	return totals, nil
}
