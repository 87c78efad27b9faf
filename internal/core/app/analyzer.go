package app

import (
	"context"
	"log/slog"
	"time"

	"corocheck/internal/core/errors"
	"corocheck/internal/data/history"
	"corocheck/internal/engine/classifier"
	"corocheck/internal/engine/collector"
	"corocheck/internal/engine/environment"
	"corocheck/internal/engine/event"
	"corocheck/internal/engine/parser"
	"corocheck/internal/shared/observability"
	"corocheck/internal/ui/report"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Result is the outcome of analyzing one file.
type Result struct {
	RunID   string
	Path    string
	Summary report.Summary
	Events  []event.Event
	// Err is the fault that ended the run early, if any.
	Err error
}

// Calls returns the classified call events.
func (r Result) Calls() []event.Event {
	var out []event.Event
	for _, e := range r.Events {
		if e.Kind == event.KindCall {
			out = append(out, e)
		}
	}
	return out
}

// AnalyzeFile runs both walks over path, streaming events to rep. A fault
// truncates the output: rep receives no summary and the error is returned.
func (a *App) AnalyzeFile(ctx context.Context, path string, rep report.Reporter) (Result, error) {
	res := Result{RunID: uuid.NewString(), Path: path}
	started := time.Now()

	ctx, span := observability.Tracer.Start(ctx, "app.AnalyzeFile", trace.WithAttributes(
		attribute.String("path", path),
		attribute.String("run_id", res.RunID),
	))
	defer span.End()

	rec := &event.Recorder{}
	summary, err := a.analyze(ctx, path, event.Tee(rec, rep))
	summary.RunID = res.RunID
	summary.Path = path
	summary.Duration = time.Since(started)
	res.Summary = summary
	res.Events = rec.Events

	if err != nil {
		res.Err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.RunsTotal.WithLabelValues("fault").Inc()
	} else {
		if rep != nil {
			rep.Finish(summary)
		}
		observability.RunsTotal.WithLabelValues("ok").Inc()
	}

	a.record(ctx, res, started)
	a.publish(res)
	return res, err
}

func (a *App) analyze(ctx context.Context, path string, sink event.Sink) (report.Summary, error) {
	var summary report.Summary

	var tree *parser.Tree
	err := a.stage(ctx, "parse", func(context.Context) error {
		start := time.Now()
		defer func() { observability.ParsingDuration.Observe(time.Since(start).Seconds()) }()
		var err error
		tree, err = a.parser.ParseFile(path)
		return err
	})
	if err != nil {
		return summary, err
	}
	defer tree.Close()

	var env environment.Environment
	err = a.stage(ctx, "environment", func(ctx context.Context) error {
		var err error
		env, err = a.environment.Build(ctx, tree, a.environmentOptions())
		return err
	})
	if err != nil {
		return summary, errors.AddContext(err, errors.CtxPath, path)
	}
	defer func() {
		recordCacheStats(env)
		if err := env.Close(); err != nil {
			slog.Debug("close environment", "path", path, "error", err)
		}
	}()

	analysis := a.Config.Analysis
	var collected *collector.Result
	_ = a.stage(ctx, "collect", func(context.Context) error {
		collected = collector.New(collector.Options{
			Marker:              analysis.CoroutineMarker,
			AsyncDefIsCoroutine: analysis.AsyncDefIsCoroutine,
		}, sink).Collect(tree)
		return nil
	})
	summary.Signatures = len(collected.Signatures)
	observability.SignaturesTotal.Add(float64(summary.Signatures))

	var checked classifier.Summary
	err = a.stage(ctx, "classify", func(ctx context.Context) error {
		checker := classifier.NewChecker(
			classifier.Options{AwaitIsDelegation: analysis.AwaitIsDelegation},
			classifier.DefaultTiers(env, collected),
			sink,
		)
		var err error
		checked, err = checker.Check(ctx, tree)
		return err
	})

	summary.Calls = checked.Calls
	summary.Coroutines = checked.Coroutines
	summary.Mismatches = checked.Mismatches
	summary.Unresolved = checked.Unresolved
	for tier, n := range checked.ByTier {
		observability.CallsTotal.WithLabelValues(string(tier)).Add(float64(n))
	}
	if err != nil {
		return summary, errors.AddContext(err, errors.CtxPath, path)
	}
	return summary, nil
}

// stage runs fn inside a child span and records its duration.
func (a *App) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := observability.Tracer.Start(ctx, "app.stage."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	observability.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func recordCacheStats(env environment.Environment) {
	cached, ok := env.(interface{ Stats() (int, int) })
	if !ok {
		return
	}
	hits, misses := cached.Stats()
	observability.EnvironmentCacheTotal.WithLabelValues("hit").Add(float64(hits))
	observability.EnvironmentCacheTotal.WithLabelValues("miss").Add(float64(misses))
}

// record persists res when history is enabled. Failures are logged only.
func (a *App) record(ctx context.Context, res Result, started time.Time) {
	for _, e := range res.Calls() {
		if e.Mismatch() {
			observability.MismatchesTotal.WithLabelValues(string(e.Usage)).Inc()
		}
	}
	if a.history == nil {
		return
	}

	run := history.Run{
		ID:         res.RunID,
		ProjectKey: a.Config.History.Project,
		Path:       res.Path,
		StartedAt:  started.UTC(),
		Duration:   res.Summary.Duration,
		Calls:      res.Summary.Calls,
		Coroutines: res.Summary.Coroutines,
		Mismatches: res.Summary.Mismatches,
		Unresolved: res.Summary.Unresolved,
		Status:     "ok",
	}
	if res.Err != nil {
		run.Status = "fault"
		run.Error = res.Err.Error()
	}

	calls := res.Calls()
	verdicts := make([]history.Verdict, 0, len(calls))
	for _, e := range calls {
		verdicts = append(verdicts, history.Verdict{
			Line:      e.Location.Line,
			Column:    e.Location.Column,
			Callee:    e.Name,
			Target:    e.Target,
			Coroutine: e.Coroutine,
			Delegated: e.Delegated,
			Tier:      string(e.Tier),
			Usage:     string(e.Usage),
		})
	}
	if err := a.history.SaveRun(ctx, run, verdicts); err != nil {
		slog.Warn("failed to save run history", "path", res.Path, "run_id", res.RunID, "error", err)
	}
}
