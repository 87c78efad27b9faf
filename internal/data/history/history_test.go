package history

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_SaveLoadRun(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)
	run := Run{
		ID:         "run-1",
		ProjectKey: "project-a",
		Path:       "pkg/worker.py",
		StartedAt:  base,
		Duration:   1500 * time.Millisecond,
		Calls:      3,
		Coroutines: 2,
		Mismatches: 1,
		Status:     "ok",
	}
	verdicts := []Verdict{
		{Line: 8, Column: 16, Callee: "foo", Target: "main.foo", Coroutine: true, Delegated: true, Tier: "signature", Usage: "correct"},
		{Line: 9, Column: 5, Callee: "foo", Target: "main.foo", Coroutine: true, Tier: "signature", Usage: "coroutine invoked without delegation"},
	}
	if err := store.SaveRun(ctx, run, verdicts); err != nil {
		t.Fatalf("save run: %v", err)
	}

	runs, err := store.LoadRuns(ctx, "project-a", time.Time{})
	if err != nil {
		t.Fatalf("load runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.Path != run.Path || got.Mismatches != 1 || got.Duration != run.Duration || !got.StartedAt.Equal(base) {
		t.Fatalf("unexpected run roundtrip %+v", got)
	}

	loaded, err := store.LoadVerdicts(ctx, "run-1")
	if err != nil {
		t.Fatalf("load verdicts: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 verdicts, got %d", len(loaded))
	}
	if !loaded[0].Delegated || loaded[1].Delegated || loaded[1].Line != 9 || loaded[0].RunID != "run-1" {
		t.Fatalf("unexpected verdicts %+v", loaded)
	}

	// Saving the same id again replaces its verdicts.
	run.Mismatches = 0
	if err := store.SaveRun(ctx, run, verdicts[:1]); err != nil {
		t.Fatal(err)
	}
	loaded, err = store.LoadVerdicts(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected replaced verdicts, got %d", len(loaded))
	}
}

func TestStore_SaveRunRequiresID(t *testing.T) {
	store := openStore(t)
	if err := store.SaveRun(context.Background(), Run{Path: "a.py"}, nil); err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestStore_LoadRuns_SinceAndProjectIsolation(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)

	for i, r := range []Run{
		{ID: "a1", ProjectKey: "project-a", Path: "a.py", StartedAt: base, Status: "ok"},
		{ID: "a2", ProjectKey: "project-a", Path: "a.py", StartedAt: base.Add(2 * time.Hour), Status: "ok"},
		{ID: "b1", ProjectKey: "project-b", Path: "b.py", StartedAt: base, Status: "fault", Error: "boom"},
		{ID: "d1", Path: "d.py", StartedAt: base, Status: "ok"},
	} {
		if err := store.SaveRun(ctx, r, nil); err != nil {
			t.Fatalf("save run %d: %v", i, err)
		}
	}

	recent, err := store.LoadRuns(ctx, "project-a", base.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || recent[0].ID != "a2" {
		t.Fatalf("unexpected since filter result %+v", recent)
	}

	b, err := store.LoadRuns(ctx, "project-b", time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 1 || b[0].Error != "boom" {
		t.Fatalf("unexpected project-b rows %+v", b)
	}

	d, err := store.LoadRuns(ctx, "", time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(d) != 1 || d[0].ProjectKey != "default" {
		t.Fatalf("expected default project rows, got %+v", d)
	}
}

func TestStore_OpenRejectsDirectoryPath(t *testing.T) {
	_, err := Open(t.TempDir())
	if err == nil {
		t.Fatal("expected open error for directory path")
	}
	if !strings.Contains(err.Error(), "is a directory") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStore_OpenCorruptDBPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	if err := os.WriteFile(path, []byte("this is not sqlite"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path)
	if err == nil {
		t.Fatal("expected sqlite open error")
	}
	lower := strings.ToLower(err.Error())
	if !strings.Contains(lower, "not a database") && !strings.Contains(lower, "schema") {
		t.Fatalf("expected schema/open error, got: %v", err)
	}
}

func TestEnsureSchema_DetectsNewerVersionDrift(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := store.db.Exec(`INSERT OR REPLACE INTO schema_migrations(version) VALUES (?)`, SchemaVersion+1); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open(driverName, "file:"+path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	err = EnsureSchema(db)
	if err == nil {
		t.Fatal("expected drift error")
	}
	if !strings.Contains(err.Error(), "newer than supported") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIsCorruptError(t *testing.T) {
	if !IsCorruptError(errors.New("database disk image is malformed")) {
		t.Fatal("expected malformed sqlite message to be treated as corrupt")
	}
	if IsCorruptError(nil) {
		t.Fatal("nil is not corrupt")
	}
}

func TestBuildTrends(t *testing.T) {
	base := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)
	trends := BuildTrends([]Run{
		{Path: "b.py", StartedAt: base, Mismatches: 4, Status: "ok"},
		{Path: "a.py", StartedAt: base, Mismatches: 1, Status: "ok"},
		{Path: "b.py", StartedAt: base.Add(time.Hour), Mismatches: 1, Status: "ok"},
		{Path: "b.py", StartedAt: base.Add(2 * time.Hour), Mismatches: 3, Status: "fault"},
	})

	if len(trends) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(trends))
	}
	if trends[0].Path != "a.py" || trends[0].Runs != 1 || trends[0].DeltaMismatch != 0 {
		t.Fatalf("unexpected a.py trend %+v", trends[0])
	}
	b := trends[1]
	if b.Runs != 3 || b.LastMismatches != 3 || b.DeltaMismatch != 2 || b.LastStatus != "fault" {
		t.Fatalf("unexpected b.py trend %+v", b)
	}
}
