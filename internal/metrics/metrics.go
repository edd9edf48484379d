package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fermops_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fermops_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Alert engine metrics
	AlertsGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fermops_alerts_generated_total",
			Help: "Total number of smart alerts returned to callers",
		},
		[]string{"severity"},
	)

	AlertsSuppressedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fermops_alerts_suppressed_total",
			Help: "Total number of alerts filtered out by same-day dismissals",
		},
	)

	// Dismissal metrics
	DismissalsWrittenTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fermops_dismissals_written_total",
			Help: "Total number of alert dismissal writes accepted",
		},
	)

	// Digest metrics
	DigestRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fermops_digest_runs_total",
			Help: "Total number of daily digest runs",
		},
		[]string{"status"}, // status: success, failed
	)
)
