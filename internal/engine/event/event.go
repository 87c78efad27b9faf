// Package event defines the diagnostics produced while analyzing a file.
package event

import "corocheck/internal/engine/parser"

type Kind string

const (
	// KindSignature reports a function recorded as a coroutine definition.
	KindSignature Kind = "coroutine_def"
	// KindDelegation reports a delegation marker ("yield from").
	KindDelegation Kind = "delegation"
	// KindCall reports a classified call site.
	KindCall Kind = "call"
)

// Usage is the delegation gate's judgement of a call site.
type Usage string

const (
	UsageCorrect            Usage = "correct"
	UsageMissingDelegation  Usage = "coroutine invoked without delegation"
	UsageNeedlessDelegation Usage = "delegation used on a non-coroutine"
)

// Tier names the classification strategy that produced a verdict.
type Tier string

const (
	TierLive         Tier = "live"
	TierDeclaredType Tier = "declared_type"
	TierSignature    Tier = "signature"
	TierDefault      Tier = "default"
)

type Event struct {
	Kind     Kind            `json:"kind"`
	Location parser.Location `json:"location"`
	// Name is the qualified definition name, the delegation keyword, or the callee.
	Name      string `json:"name"`
	Target    string `json:"target,omitempty"`
	Delegated bool   `json:"delegated,omitempty"`
	Coroutine bool   `json:"coroutine,omitempty"`
	Tier      Tier   `json:"tier,omitempty"`
	Usage     Usage  `json:"usage,omitempty"`
}

// Mismatch reports whether a call event was flagged as a likely bug.
func (e Event) Mismatch() bool {
	return e.Kind == KindCall && e.Usage != UsageCorrect
}

// Judge compares a verdict with the delegation flag.
func Judge(coroutine, delegated bool) Usage {
	switch {
	case coroutine && !delegated:
		return UsageMissingDelegation
	case !coroutine && delegated:
		return UsageNeedlessDelegation
	default:
		return UsageCorrect
	}
}

// Sink receives events in the order they are produced.
type Sink interface {
	Emit(Event)
}

type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Recorder collects events in memory.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Emit(e Event) {
	r.Events = append(r.Events, e)
}

// Calls returns the recorded call events.
func (r *Recorder) Calls() []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind == KindCall {
			out = append(out, e)
		}
	}
	return out
}

// Tee fans events out to several sinks.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(e Event) {
		for _, s := range sinks {
			if s != nil {
				s.Emit(e)
			}
		}
	})
}
