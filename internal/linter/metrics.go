package linter

import "github.com/prometheus/client_golang/prometheus"

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hlsllint",
			Subsystem: "lint",
			Name:      "runs_total",
			Help:      "Compiler runs by outcome",
		},
		[]string{"outcome"},
	)

	runDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "hlsllint",
			Subsystem: "lint",
			Name:      "run_duration_seconds",
			Help:      "Wall time of compiler runs in seconds",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	triggersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hlsllint",
			Subsystem: "lint",
			Name:      "triggers_total",
			Help:      "Lint requests handed to the scheduler by document event",
		},
		[]string{"event"},
	)

	skippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hlsllint",
			Subsystem: "lint",
			Name:      "skipped_total",
			Help:      "Document events that did not lead to a run",
		},
		[]string{"reason"},
	)

	diagnosticsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hlsllint",
			Subsystem: "lint",
			Name:      "diagnostics_published_total",
			Help:      "Diagnostics published by severity",
		},
		[]string{"severity"},
	)
)

// Run outcomes.
const (
	outcomeOK          = "ok"
	outcomeToolMissing = "tool_missing"
	outcomeSpawnError  = "spawn_error"
	outcomeCanceled    = "canceled"
	outcomeError       = "error"
)

func init() {
	prometheus.MustRegister(runsTotal, runDuration, triggersTotal, skippedTotal, diagnosticsPublished)
}
