package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "corocheck_parsing_seconds",
		Help:    "Time spent parsing a Python source file.",
		Buckets: prometheus.DefBuckets,
	})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "corocheck_stage_seconds",
		Help:    "Time spent in each analysis stage.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corocheck_runs_total",
		Help: "Total number of file analyses by outcome.",
	}, []string{"status"})

	CallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corocheck_calls_total",
		Help: "Total number of classified call sites by deciding tier.",
	}, []string{"tier"})

	MismatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corocheck_mismatches_total",
		Help: "Total number of call sites flagged as likely bugs.",
	}, []string{"usage"})

	SignaturesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "corocheck_signatures_total",
		Help: "Total number of coroutine definitions collected.",
	})

	EnvironmentCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corocheck_environment_cache_total",
		Help: "Environment evaluation cache lookups by result.",
	}, []string{"result"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "corocheck_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	WatcherThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "corocheck_watcher_throttled_total",
		Help: "Total number of re-analyses skipped by the rate limiter.",
	})

	HistoryDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "corocheck_history_dropped_total",
		Help: "Total number of run records dropped because the history queue was full.",
	})
)
