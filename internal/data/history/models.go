package history

import "time"

const SchemaVersion = 1

// Run summarizes one analysis of one file.
type Run struct {
	ID         string
	ProjectKey string
	Path       string
	StartedAt  time.Time
	Duration   time.Duration
	Calls      int
	Coroutines int
	Mismatches int
	Unresolved int
	// Status is "ok" or "fault"; Error holds the fault message.
	Status string
	Error  string
}

// Verdict is one classified call site of a run.
type Verdict struct {
	RunID     string `json:"run_id"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Callee    string `json:"callee"`
	Target    string `json:"target,omitempty"`
	Coroutine bool   `json:"coroutine"`
	Delegated bool   `json:"delegated"`
	Tier      string `json:"tier"`
	Usage     string `json:"usage"`
}
