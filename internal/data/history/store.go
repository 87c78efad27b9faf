// Package history persists analysis runs and their verdicts in sqlite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	driverName        = "sqlite"
	maxAttempts       = 5
	defaultProjectKey = "default"
)

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	if dir := filepath.Dir(cleanPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts between watch-mode runs.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// SaveRun stores run and its verdicts atomically. Saving a run id twice
// replaces the earlier verdicts.
func (s *Store) SaveRun(ctx context.Context, run Run, verdicts []Verdict) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		return fmt.Errorf("run id must not be empty")
	}
	if strings.TrimSpace(run.ProjectKey) == "" {
		run.ProjectKey = defaultProjectKey
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	return s.withRetry("save run", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := insertRun(ctx, tx, run, verdicts); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
}

func insertRun(ctx context.Context, tx *sql.Tx, run Run, verdicts []Verdict) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO runs (
  id, project_key, path, started_at_utc, duration_ms, call_count, coroutine_count,
  mismatch_count, unresolved_count, status, error
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  duration_ms=excluded.duration_ms,
  call_count=excluded.call_count,
  coroutine_count=excluded.coroutine_count,
  mismatch_count=excluded.mismatch_count,
  unresolved_count=excluded.unresolved_count,
  status=excluded.status,
  error=excluded.error
`,
		run.ID,
		run.ProjectKey,
		run.Path,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Duration.Milliseconds(),
		run.Calls,
		run.Coroutines,
		run.Mismatches,
		run.Unresolved,
		run.Status,
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM verdicts WHERE run_id = ?`, run.ID); err != nil {
		return fmt.Errorf("clear verdicts: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO verdicts (run_id, seq, line, col, callee, target, coroutine, delegated, tier, usage)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare verdict insert: %w", err)
	}
	defer stmt.Close()

	for i, v := range verdicts {
		if _, err := stmt.ExecContext(ctx, run.ID, i, v.Line, v.Column, v.Callee, v.Target,
			v.Coroutine, v.Delegated, v.Tier, v.Usage); err != nil {
			return fmt.Errorf("insert verdict %d: %w", i, err)
		}
	}
	return nil
}

// LoadRuns returns the runs of projectKey started at or after since, oldest first.
func (s *Store) LoadRuns(ctx context.Context, projectKey string, since time.Time) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(projectKey) == "" {
		projectKey = defaultProjectKey
	}

	query := `
SELECT id, project_key, path, started_at_utc, duration_ms, call_count, coroutine_count,
  mismatch_count, unresolved_count, status, error
FROM runs
WHERE project_key = ?`
	args := []any{projectKey}
	if !since.IsZero() {
		query += " AND started_at_utc >= ?"
		args = append(args, since.UTC().Format(time.RFC3339Nano))
	}
	query += " ORDER BY started_at_utc ASC, id ASC"

	var rows *sql.Rows
	err := s.withRetry("load runs", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var (
			run        Run
			startedRaw string
			durationMS int64
		)
		if err := rows.Scan(
			&run.ID,
			&run.ProjectKey,
			&run.Path,
			&startedRaw,
			&durationMS,
			&run.Calls,
			&run.Coroutines,
			&run.Mismatches,
			&run.Unresolved,
			&run.Status,
			&run.Error,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		started, err := time.Parse(time.RFC3339Nano, startedRaw)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", startedRaw, err)
		}
		run.StartedAt = started.UTC()
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

// LoadVerdicts returns the verdicts of runID in source order.
func (s *Store) LoadVerdicts(ctx context.Context, runID string) ([]Verdict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := s.withRetry("load verdicts", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, `
SELECT run_id, line, col, callee, target, coroutine, delegated, tier, usage
FROM verdicts WHERE run_id = ? ORDER BY seq ASC`, runID)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	verdicts := make([]Verdict, 0)
	for rows.Next() {
		var v Verdict
		if err := rows.Scan(&v.RunID, &v.Line, &v.Column, &v.Callee, &v.Target,
			&v.Coroutine, &v.Delegated, &v.Tier, &v.Usage); err != nil {
			return nil, fmt.Errorf("scan verdict row: %w", err)
		}
		verdicts = append(verdicts, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verdict rows: %w", err)
	}
	return verdicts, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func IsCorruptError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "malformed") || strings.Contains(msg, "not a database") || errors.Is(err, os.ErrInvalid)
}
