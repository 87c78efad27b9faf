// Package ports declares the boundaries of the analysis pipeline so that
// storage and the name environment can be swapped in tests.
package ports

import (
	"context"
	"time"

	"corocheck/internal/data/history"
	"corocheck/internal/data/queue"
	"corocheck/internal/engine/environment"
	"corocheck/internal/engine/parser"
)

// HistoryStore persists run summaries and verdicts.
type HistoryStore interface {
	SaveRun(ctx context.Context, run history.Run, verdicts []history.Verdict) error
	LoadRuns(ctx context.Context, projectKey string, since time.Time) ([]history.Run, error)
	Close() error
}

// EnvironmentBuilder produces the name environment for a parsed file.
type EnvironmentBuilder interface {
	Build(ctx context.Context, tree *parser.Tree, opts environment.Options) (environment.Environment, error)
}

// EnvironmentBuilderFunc adapts a function to EnvironmentBuilder.
type EnvironmentBuilderFunc func(ctx context.Context, tree *parser.Tree, opts environment.Options) (environment.Environment, error)

func (f EnvironmentBuilderFunc) Build(ctx context.Context, tree *parser.Tree, opts environment.Options) (environment.Environment, error) {
	return f(ctx, tree, opts)
}

var (
	_ HistoryStore = (*history.Store)(nil)
	_ HistoryStore = (*queue.AsyncStore)(nil)
)
