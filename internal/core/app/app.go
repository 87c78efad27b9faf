// Package app wires parsing, environment construction and both analysis
// walks into runs over files, and drives watch mode.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"corocheck/internal/core/config"
	"corocheck/internal/core/ports"
	"corocheck/internal/core/watcher"
	"corocheck/internal/data/history"
	"corocheck/internal/data/queue"
	"corocheck/internal/engine/environment"
	"corocheck/internal/engine/parser"
	"corocheck/internal/shared/util"
)

type App struct {
	Config *config.Config

	parser      *parser.Parser
	filter      *watcher.Filter
	environment ports.EnvironmentBuilder
	history     ports.HistoryStore
	asyncWrites int

	updateMu sync.RWMutex
	onUpdate func(Update)
	latest   map[string]Result
}

// Update is published after every run so that interactive front ends can
// refresh.
type Update struct {
	Results []Result
	At      time.Time
}

type Option func(*App)

// WithEnvironmentBuilder replaces the interpreter-backed environment.
func WithEnvironmentBuilder(b ports.EnvironmentBuilder) Option {
	return func(a *App) { a.environment = b }
}

// WithAsyncHistory queues history writes, holding at most capacity pending
// runs. Watch mode uses it so analyses do not wait on the database.
func WithAsyncHistory(capacity int) Option {
	return func(a *App) { a.asyncWrites = capacity }
}

func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	filter, err := watcher.NewFilter(cfg.Exclude.Dirs, cfg.Exclude.Files)
	if err != nil {
		return nil, fmt.Errorf("compile exclude patterns: %w", err)
	}

	a := &App{
		Config:      cfg,
		parser:      parser.NewParser(),
		filter:      filter,
		environment: ports.EnvironmentBuilderFunc(buildEnvironment),
		latest:      make(map[string]Result),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.history == nil && cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			if !history.IsCorruptError(err) {
				return nil, err
			}
			slog.Warn("history database unusable, continuing without history", "path", cfg.History.Path, "error", err)
		} else {
			a.history = store
		}
	}
	if a.history != nil && a.asyncWrites > 0 {
		a.history = queue.NewAsyncStore(a.history, a.asyncWrites)
	}
	return a, nil
}

func buildEnvironment(ctx context.Context, tree *parser.Tree, opts environment.Options) (environment.Environment, error) {
	env, _, err := environment.Build(ctx, tree, opts)
	if err != nil {
		return nil, err
	}
	return env, nil
}

func (a *App) environmentOptions() environment.Options {
	env := a.Config.Environment
	return environment.Options{
		ExecuteImports:  env.ImportsEnabled(),
		Python:          env.Python,
		KnownCoroutines: env.KnownCoroutines,
		CacheSize:       env.CacheSize,
	}
}

// History returns the configured store, or nil.
func (a *App) History() ports.HistoryStore {
	return a.history
}

func (a *App) SetUpdateHandler(handler func(Update)) {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	a.onUpdate = handler
}

// CurrentUpdate returns the latest result of every analyzed path.
func (a *App) CurrentUpdate() Update {
	a.updateMu.RLock()
	defer a.updateMu.RUnlock()

	results := make([]Result, 0, len(a.latest))
	for _, path := range util.SortedStringKeys(a.latest) {
		results = append(results, a.latest[path])
	}
	return Update{Results: results, At: time.Now()}
}

func (a *App) publish(res Result) {
	a.updateMu.Lock()
	a.latest[res.Path] = res
	handler := a.onUpdate
	a.updateMu.Unlock()

	if handler != nil {
		handler(a.CurrentUpdate())
	}
}

func (a *App) forget(path string) {
	a.updateMu.Lock()
	delete(a.latest, path)
	handler := a.onUpdate
	a.updateMu.Unlock()

	if handler != nil {
		handler(a.CurrentUpdate())
	}
}

func (a *App) Close() error {
	if a.history != nil {
		return a.history.Close()
	}
	return nil
}
