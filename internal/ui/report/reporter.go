// Package report renders analysis events for humans (colored text) and for
// tools (JSON lines).
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"corocheck/internal/engine/event"
)

// Summary closes the output of one successful run.
type Summary struct {
	RunID      string        `json:"run_id"`
	Path       string        `json:"path"`
	Signatures int           `json:"signatures"`
	Calls      int           `json:"calls"`
	Coroutines int           `json:"coroutines"`
	Mismatches int           `json:"mismatches"`
	Unresolved int           `json:"unresolved"`
	Duration   time.Duration `json:"duration_ns"`
}

// Reporter is an event sink that can also close a run.
type Reporter interface {
	event.Sink
	Finish(Summary)
}

// New returns the reporter for format ("text" or "json").
func New(format string, w io.Writer, color bool) (Reporter, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return NewTextReporter(w, color), nil
	case "json":
		return NewJSONReporter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}
