// Package metrics defines Prometheus metrics for linkmirror.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linkmirror_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkmirror_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkmirror_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkmirror_runs_total",
			Help: "Sync and reconcile invocations by job and result",
		},
		[]string{"job", "result"},
	)

	RunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linkmirror_run_duration_seconds",
			Help:    "Sync and reconcile run duration in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"job"},
	)

	PagesScanned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkmirror_source_pages_scanned_total",
			Help: "Source pages fetched, by scan",
		},
		[]string{"scan"},
	)

	ItemsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkmirror_items_processed_total",
			Help: "Candidate outcomes by decision",
		},
		[]string{"decision"},
	)

	RowsArchived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "linkmirror_rows_archived_total",
			Help: "Ledger rows permanently archived by reconciliation",
		},
	)

	DeletionsDetected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "linkmirror_deletions_detected_total",
			Help: "Rows newly flagged as deleted by reconciliation",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		RunsTotal, RunDuration, PagesScanned, ItemsProcessed,
		RowsArchived, DeletionsDetected,
	)
}
