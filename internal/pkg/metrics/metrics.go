// Package metrics provides Prometheus metrics recording for internal packages.
// This package exists to avoid import cycles between service and middleware packages.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for evaluations
const (
	OutcomeOK = "ok"
)

var (
	// evaluationsTotal counts evaluations per operation and outcome
	evaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ergo_evaluations_total",
			Help: "Total number of counter evaluations",
		},
		[]string{"operation", "outcome"},
	)

	// failuresTotal counts translated failures per kind and status
	failuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ergo_failures_total",
			Help: "Total number of failures translated into responses",
		},
		[]string{"kind", "status"},
	)

	// countsReceived tracks the distribution of received counts
	countsReceived = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ergo_counts_received",
			Help:    "Counts received before decrement",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 1000, 1e6},
		},
		[]string{"operation"},
	)
)

// RecordEvaluation records the outcome of one evaluation. outcome is
// OutcomeOK or a failure kind name.
func RecordEvaluation(operation, outcome string) {
	evaluationsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordFailure records a failure translated at the response boundary
func RecordFailure(kind, status string) {
	failuresTotal.WithLabelValues(kind, status).Inc()
}

// RecordCount records a received count
func RecordCount(operation string, count uint64) {
	countsReceived.WithLabelValues(operation).Observe(float64(count))
}
