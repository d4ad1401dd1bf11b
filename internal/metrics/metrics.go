// Package metrics provides Prometheus metrics for the TrendPress pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "trendpress"

// Stage run statuses.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

var (
	// StageRuns counts triggered stage runs by outcome.
	StageRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_runs_total",
			Help:      "Total number of stage runs",
		},
		[]string{"stage", "status"},
	)

	// StageDuration measures how long a stage run takes.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of stage runs in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"stage"},
	)

	// Items counts per-item outcomes inside a stage.
	Items = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_total",
			Help:      "Total number of items handled by stages",
		},
		[]string{"stage", "outcome"},
	)

	// BackendCalls counts generation backend calls.
	BackendCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_calls_total",
			Help:      "Total number of generation backend calls",
		},
		[]string{"outcome"},
	)

	// SourceFetches counts source adapter fetches.
	SourceFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fetch_total",
			Help:      "Total number of source adapter fetches",
		},
		[]string{"source", "outcome"},
	)
)

// RecordStage records one stage run.
func RecordStage(stage, status string, duration time.Duration) {
	StageRuns.WithLabelValues(stage, status).Inc()
	if status != StatusSkipped {
		StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	}
}

// RecordItem records one item outcome such as "inserted", "duplicate" or "failed".
func RecordItem(stage, outcome string) {
	Items.WithLabelValues(stage, outcome).Inc()
}

// RecordBackendCall records a backend call outcome: "ok", "error" or "unavailable".
func RecordBackendCall(outcome string) {
	BackendCalls.WithLabelValues(outcome).Inc()
}

// RecordSourceFetch records a source fetch outcome: "ok" or "fallback".
func RecordSourceFetch(source, outcome string) {
	SourceFetches.WithLabelValues(source, outcome).Inc()
}
