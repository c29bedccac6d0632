// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "canchaya_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "canchaya_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// ReconcileTotal counts reconciliations by data source: "live",
	// "fallback" (template, no live data) or "error".
	ReconcileTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "canchaya_reconcile_total",
			Help: "Total number of slot reconciliations by result",
		},
		[]string{"result"},
	)

	// SubmissionsTotal counts booking submissions by outcome: "booked",
	// "rejected", "conflict" or "error".
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "canchaya_booking_submissions_total",
			Help: "Total number of booking submissions by outcome",
		},
		[]string{"outcome"},
	)

	TemplateSyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "canchaya_template_sync_total",
			Help: "Total number of weekly template sync runs by result",
		},
		[]string{"result"},
	)
)
