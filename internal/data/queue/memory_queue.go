// Package queue moves history writes off the analysis path.
package queue

import (
	"context"
	"io"
	"sync"
	"time"

	"corocheck/internal/data/history"
)

// Record is one run with its verdicts, written in a single transaction.
type Record struct {
	Run      history.Run
	Verdicts []history.Verdict
}

type EnqueueResult string

const (
	EnqueueAccepted EnqueueResult = "accepted"
	EnqueueDropped  EnqueueResult = "dropped"
)

type MemoryQueue struct {
	ch     chan Record
	mu     sync.RWMutex
	closed bool
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemoryQueue{ch: make(chan Record, capacity)}
}

// Enqueue never blocks: a full or closed queue drops the record.
func (q *MemoryQueue) Enqueue(rec Record) EnqueueResult {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return EnqueueDropped
	}
	select {
	case q.ch <- rec:
		return EnqueueAccepted
	default:
		return EnqueueDropped
	}
}

// DequeueBatch waits up to wait for the first record, then takes whatever
// else is buffered up to maxItems. It returns io.EOF once the queue is closed
// and drained.
func (q *MemoryQueue) DequeueBatch(ctx context.Context, maxItems int, wait time.Duration) ([]Record, error) {
	if maxItems <= 0 {
		maxItems = 1
	}
	batch := make([]Record, 0, maxItems)

	var timer <-chan time.Time
	if wait > 0 {
		t := time.NewTimer(wait)
		defer t.Stop()
		timer = t.C
	}

	select {
	case rec, ok := <-q.ch:
		if !ok {
			return nil, io.EOF
		}
		batch = append(batch, rec)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer:
		return nil, nil
	default:
		if wait <= 0 {
			return nil, nil
		}
		select {
		case rec, ok := <-q.ch:
			if !ok {
				return nil, io.EOF
			}
			batch = append(batch, rec)
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer:
			return nil, nil
		}
	}

	for len(batch) < maxItems {
		select {
		case rec, ok := <-q.ch:
			if !ok {
				return batch, io.EOF
			}
			batch = append(batch, rec)
		default:
			return batch, nil
		}
	}

	return batch, nil
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.ch)
	return nil
}

func (q *MemoryQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.ch)
}
