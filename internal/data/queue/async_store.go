package queue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"corocheck/internal/data/history"
	"corocheck/internal/shared/observability"
)

const (
	batchSize = 32
	batchWait = 250 * time.Millisecond
)

// Store is the subset of the history store that AsyncStore wraps.
type Store interface {
	SaveRun(ctx context.Context, run history.Run, verdicts []history.Verdict) error
	LoadRuns(ctx context.Context, projectKey string, since time.Time) ([]history.Run, error)
	Close() error
}

var ErrQueueFull = errors.New("history queue is full")

// AsyncStore queues SaveRun calls and writes them from one goroutine. Reads
// go straight to the wrapped store.
type AsyncStore struct {
	inner Store
	queue *MemoryQueue
	done  chan struct{}
	once  sync.Once
}

func NewAsyncStore(inner Store, capacity int) *AsyncStore {
	s := &AsyncStore{
		inner: inner,
		queue: NewMemoryQueue(capacity),
		done:  make(chan struct{}),
	}
	go s.drain()
	return s
}

// SaveRun returns ErrQueueFull when the record was dropped.
func (s *AsyncStore) SaveRun(_ context.Context, run history.Run, verdicts []history.Verdict) error {
	if s.queue.Enqueue(Record{Run: run, Verdicts: verdicts}) == EnqueueDropped {
		observability.HistoryDroppedTotal.Inc()
		return ErrQueueFull
	}
	return nil
}

func (s *AsyncStore) LoadRuns(ctx context.Context, projectKey string, since time.Time) ([]history.Run, error) {
	return s.inner.LoadRuns(ctx, projectKey, since)
}

// Close flushes queued records and closes the wrapped store.
func (s *AsyncStore) Close() error {
	var err error
	s.once.Do(func() {
		_ = s.queue.Close()
		<-s.done
		err = s.inner.Close()
	})
	return err
}

func (s *AsyncStore) drain() {
	defer close(s.done)
	ctx := context.Background()
	for {
		batch, err := s.queue.DequeueBatch(ctx, batchSize, batchWait)
		for _, rec := range batch {
			if saveErr := s.inner.SaveRun(ctx, rec.Run, rec.Verdicts); saveErr != nil {
				slog.Warn("failed to save run history", "path", rec.Run.Path, "run_id", rec.Run.ID, "error", saveErr)
			}
		}
		if errors.Is(err, io.EOF) {
			return
		}
	}
}
