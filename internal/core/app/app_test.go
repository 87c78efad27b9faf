package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"corocheck/internal/core/config"
	"corocheck/internal/core/errors"
	"corocheck/internal/core/ports"
	"corocheck/internal/data/history"
	"corocheck/internal/data/queue"
	"corocheck/internal/engine/environment"
	"corocheck/internal/engine/event"
	"corocheck/internal/engine/parser"
	"corocheck/internal/shared/util"
	"corocheck/internal/ui/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const workerSource = `import asyncio
import tasks


@asyncio.coroutine
def fetch():
    pass


class Worker:
    def run(self, job: tasks.Job):
        self.job = job
        yield from fetch()
        fetch()
        yield from self.job()
        yield from len(list())
`

// recordingReporter keeps what a Reporter receives.
type recordingReporter struct {
	event.Recorder
	summaries []report.Summary
}

func (r *recordingReporter) Finish(s report.Summary) {
	r.summaries = append(r.summaries, s)
}

type mapEnv struct {
	known  map[string]bool
	faults map[string]bool
}

func (e *mapEnv) Evaluate(ctx context.Context, expr string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if e.faults[expr] {
		return false, errors.New(errors.CodeEnvironment, "RuntimeError: broken")
	}
	v, ok := e.known[expr]
	if !ok {
		return false, errors.New(errors.CodeNameResolution, "name is not defined")
	}
	return v, nil
}

func (e *mapEnv) Close() error { return nil }

func fakeBuilder(env *mapEnv) ports.EnvironmentBuilder {
	return ports.EnvironmentBuilderFunc(func(context.Context, *parser.Tree, environment.Options) (environment.Environment, error) {
		return env, nil
	})
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newApp(t *testing.T, cfg *config.Config, opts ...Option) *App {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	a, err := New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestAnalyzeFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "worker.py", workerSource)
	env := &mapEnv{known: map[string]bool{"tasks.Job": true, "len": false}}
	a := newApp(t, nil, WithEnvironmentBuilder(fakeBuilder(env)))

	rep := &recordingReporter{}
	res, err := a.AnalyzeFile(context.Background(), path, rep)
	require.NoError(t, err)

	calls := res.Calls()
	require.Len(t, calls, 5)
	assert.Equal(t, event.UsageCorrect, calls[0].Usage)
	assert.Equal(t, event.UsageMissingDelegation, calls[1].Usage)
	assert.Equal(t, event.TierDeclaredType, calls[2].Tier)
	assert.Equal(t, event.UsageCorrect, calls[2].Usage)
	assert.Equal(t, "len", calls[3].Name)
	assert.Equal(t, event.UsageNeedlessDelegation, calls[3].Usage)
	assert.Equal(t, "list", calls[4].Name)

	assert.Equal(t, 1, res.Summary.Signatures)
	assert.Equal(t, 5, res.Summary.Calls)
	assert.Equal(t, 2, res.Summary.Mismatches)
	assert.NotEmpty(t, res.RunID)

	require.Len(t, rep.summaries, 1)
	assert.Equal(t, res.Summary, rep.summaries[0])
	assert.Equal(t, len(res.Events), len(rep.Events))
	assert.Equal(t, event.KindSignature, rep.Events[0].Kind)

	update := a.CurrentUpdate()
	require.Len(t, update.Results, 1)
	assert.Equal(t, path, update.Results[0].Path)
}

func TestAnalyzeFile_StaticEnvironment(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sleepy.py", `import asyncio

def main():
    asyncio.sleep(1)
    yield from asyncio.sleep(2)
`)
	cfg := config.DefaultConfig()
	disabled := false
	cfg.Environment.ExecuteImports = &disabled
	a := newApp(t, cfg)

	res, err := a.AnalyzeFile(context.Background(), path, nil)
	require.NoError(t, err)
	calls := res.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, event.TierLive, calls[0].Tier)
	assert.Equal(t, event.UsageMissingDelegation, calls[0].Usage)
	assert.Equal(t, event.UsageCorrect, calls[1].Usage)
}

func TestAnalyzeFile_ParseErrorIsFatal(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.py", "def broken(:\n    pass\n")
	a := newApp(t, nil, WithEnvironmentBuilder(fakeBuilder(&mapEnv{})))

	rep := &recordingReporter{}
	_, err := a.AnalyzeFile(context.Background(), path, rep)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeParse))
	assert.Empty(t, rep.summaries)
}

func TestAnalyzeFile_FaultTruncatesOutput(t *testing.T) {
	path := writeFile(t, t.TempDir(), "faulty.py", `import mod

mod.first()
mod.broken()
mod.never()
`)
	env := &mapEnv{
		known:  map[string]bool{"mod.first": false},
		faults: map[string]bool{"mod.broken": true},
	}
	a := newApp(t, nil, WithEnvironmentBuilder(fakeBuilder(env)))

	var buf bytes.Buffer
	res, err := a.AnalyzeFile(context.Background(), path, report.NewTextReporter(&buf, false))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeEnvironment))
	assert.Equal(t, res.Err, err)
	assert.Len(t, res.Calls(), 1)
	assert.Contains(t, buf.String(), "mod.first is not coroutine")
	assert.NotContains(t, buf.String(), "mod.never")
	assert.NotContains(t, buf.String(), "mismatch")
}

func TestAnalyzeFile_RecordsHistory(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "worker.py", workerSource)

	cfg := config.DefaultConfig()
	cfg.History.Enabled = true
	cfg.History.Path = filepath.Join(dir, "state", "history.db")
	cfg.History.Project = "demo"
	env := &mapEnv{known: map[string]bool{"tasks.Job": true}}
	a := newApp(t, cfg, WithEnvironmentBuilder(fakeBuilder(env)))
	require.NotNil(t, a.History())

	res, err := a.AnalyzeFile(context.Background(), path, nil)
	require.NoError(t, err)

	runs, err := a.History().LoadRuns(context.Background(), "demo", time.Time{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].ID)
	assert.Equal(t, res.Summary.Mismatches, runs[0].Mismatches)
	assert.Equal(t, "ok", runs[0].Status)

	store, ok := a.History().(*history.Store)
	require.True(t, ok)
	verdicts, err := store.LoadVerdicts(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.Len(t, verdicts, len(res.Calls()))
}

func TestAnalyzeFile_AsyncHistory(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "worker.py", workerSource)

	cfg := config.DefaultConfig()
	cfg.History.Enabled = true
	cfg.History.Path = filepath.Join(dir, "history.db")
	env := &mapEnv{known: map[string]bool{"tasks.Job": true}}
	a, err := New(cfg, WithEnvironmentBuilder(fakeBuilder(env)), WithAsyncHistory(8))
	require.NoError(t, err)
	_, ok := a.History().(*queue.AsyncStore)
	require.True(t, ok)

	res, err := a.AnalyzeFile(context.Background(), path, nil)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	store, err := history.Open(cfg.History.Path)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.LoadRuns(context.Background(), cfg.History.Project, time.Time{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].ID)
}

func TestAnalyzeFile_Spans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	path := writeFile(t, t.TempDir(), "worker.py", workerSource)
	a := newApp(t, nil, WithEnvironmentBuilder(fakeBuilder(&mapEnv{})))
	_, err := a.AnalyzeFile(context.Background(), path, nil)
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, s := range exporter.GetSpans() {
		names[s.Name] = true
	}
	for _, want := range []string{"app.AnalyzeFile", "app.stage.parse", "app.stage.environment", "app.stage.collect", "app.stage.classify"} {
		assert.True(t, names[want], "missing span %s", want)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pkg/a.py", "pass\n")
	writeFile(t, dir, "pkg/b.py", "pass\n")
	writeFile(t, dir, "pkg/api_pb2.py", "pass\n")
	writeFile(t, dir, "pkg/notes.txt", "")
	writeFile(t, dir, ".venv/lib/site.py", "pass\n")
	explicit := writeFile(t, dir, "gen_pb2.py", "pass\n")

	cfg := config.DefaultConfig()
	cfg.Exclude.Files = []string{"*_pb2.py"}
	a := newApp(t, cfg)

	files, err := a.Discover([]string{dir, explicit, filepath.Join(dir, "pkg", "a.py")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "pkg", "a.py"),
		filepath.Join(dir, "pkg", "b.py"),
		explicit,
	}, files)

	_, err = a.Discover([]string{filepath.Join(dir, "pkg", "notes.txt")})
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))

	_, err = a.Discover([]string{filepath.Join(dir, "missing")})
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", workerSource)
	writeFile(t, dir, "b.py", "def bar():\n    return 1\n\ndef main():\n    yield from bar()\n")

	env := &mapEnv{known: map[string]bool{"tasks.Job": true}}
	a := newApp(t, nil, WithEnvironmentBuilder(fakeBuilder(env)))

	var buf bytes.Buffer
	totals, err := a.Run(context.Background(), []string{dir}, report.NewTextReporter(&buf, false))
	require.NoError(t, err)
	assert.Equal(t, 2, totals.Files)
	assert.Equal(t, 3, totals.Mismatches)
	assert.Equal(t, 2, strings.Count(buf.String(), "mismatch"))
}

func TestHandleChanges(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.py", workerSource)
	gone := filepath.Join(dir, "gone.py")

	a := newApp(t, nil, WithEnvironmentBuilder(fakeBuilder(&mapEnv{})))
	var updates []Update
	a.SetUpdateHandler(func(u Update) { updates = append(updates, u) })

	limiters := util.NewLimiterRegistry(0.001, 1, time.Minute)
	defer limiters.Close()

	rep := &recordingReporter{}
	a.HandleChanges(context.Background(), []string{path, gone}, rep, limiters)
	require.Len(t, rep.summaries, 1)

	// A second change inside the rate window is throttled.
	a.HandleChanges(context.Background(), []string{path}, rep, limiters)
	assert.Len(t, rep.summaries, 1)

	require.NoError(t, os.Remove(path))
	a.HandleChanges(context.Background(), []string{path}, rep, limiters)
	require.NotEmpty(t, updates)
	assert.Empty(t, updates[len(updates)-1].Results)
}

func TestWatch_FileArgumentIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.py", workerSource)

	cfg := config.DefaultConfig()
	cfg.Watch.Debounce = 50 * time.Millisecond
	cfg.Watch.Rate = 1000
	cfg.Watch.Burst = 10
	a := newApp(t, cfg, WithEnvironmentBuilder(fakeBuilder(&mapEnv{})))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx, []string{path}, nil) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	runID := func() string {
		for _, res := range a.CurrentUpdate().Results {
			if res.Path == path {
				return res.RunID
			}
		}
		return ""
	}
	// touch rewrites a.py until a new run of it is published.
	touch := func() {
		before := runID()
		require.Eventually(t, func() bool {
			if err := os.WriteFile(path, []byte(workerSource), 0o644); err != nil {
				return false
			}
			return runID() != before
		}, 5*time.Second, 200*time.Millisecond)
	}

	require.Eventually(t, func() bool { return runID() != "" }, 5*time.Second, 20*time.Millisecond)
	touch()

	writeFile(t, dir, "b.py", "def bar():\n    return 1\n")
	touch()
	time.Sleep(200 * time.Millisecond)

	var paths []string
	for _, res := range a.CurrentUpdate().Results {
		paths = append(paths, res.Path)
	}
	assert.Equal(t, []string{path}, paths)
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	cfg := config.DefaultConfig()
	cfg.Exclude.Dirs = []string{"["}
	_, err = New(cfg)
	assert.Error(t, err)
}
