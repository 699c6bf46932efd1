// Package metrics exposes the Prometheus collectors updated by the sync
// pipeline and its adapters. Collectors register on the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billsync_upstream_requests_total",
			Help: "Requests sent to the legislative-data API by response status",
		},
		[]string{"status"},
	)

	StoreRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billsync_store_requests_total",
			Help: "Record store operations by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	RecordsReconciled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billsync_records_reconciled_total",
			Help: "Records reconciled by collection and action (created, updated)",
		},
		[]string{"collection", "action"},
	)

	SyncFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billsync_sync_failures_total",
			Help: "Isolated failures by unit (bill, legislator, subject, jurisdiction)",
		},
		[]string{"unit"},
	)

	JurisdictionSyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "billsync_jurisdiction_sync_duration_seconds",
			Help:    "Duration of one jurisdiction sync",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "billsync_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// Outcome maps an error to the "ok"/"error" label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
