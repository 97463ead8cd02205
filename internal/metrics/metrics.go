package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the ground-operations
// service
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Storage Metrics
	StorageOpsTotal   prometheus.CounterVec
	StorageOpDuration prometheus.HistogramVec
	StorageFailures   prometheus.CounterVec

	// Turnaround Metrics
	StatusRecomputesTotal prometheus.Counter
	FlightsCompletedTotal prometheus.Counter
	FlightsActiveGauge    prometheus.Gauge
	OverdueFlightsGauge   prometheus.Gauge

	// Auto-save Metrics
	AutosavesWrittenTotal prometheus.Counter
	AutosavesSkippedTotal prometheus.CounterVec
	AutosaveErrorsTotal   prometheus.Counter

	// Live Stream Metrics
	WSClientsGauge prometheus.Gauge
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groundops_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "groundops_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "groundops_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		StorageOpsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groundops_storage_ops_total",
				Help: "Total durable storage operations by operation type",
			},
			[]string{"op"},
		),
		StorageOpDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "groundops_storage_op_duration_seconds",
				Help:    "Durable storage operation time in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"op"},
		),
		StorageFailures: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groundops_storage_failures_total",
				Help: "Total storage failures; the service degrades to in-memory operation",
			},
			[]string{"op"},
		),

		StatusRecomputesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "groundops_status_recomputes_total",
				Help: "Total live turnaround status computations",
			},
		),
		FlightsCompletedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "groundops_flights_completed_total",
				Help: "Total flights moved to the completed list",
			},
		),
		FlightsActiveGauge: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "groundops_flights_active",
				Help: "Number of flights currently in progress (0 or 1)",
			},
		),
		OverdueFlightsGauge: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "groundops_flights_overdue",
				Help: "Whether the active turnaround has exhausted its budget",
			},
		),

		AutosavesWrittenTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "groundops_autosaves_written_total",
				Help: "Total draft snapshots written to durable storage",
			},
		),
		AutosavesSkippedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groundops_autosaves_skipped_total",
				Help: "Draft saves skipped by reason (unchanged, empty)",
			},
			[]string{"reason"},
		),
		AutosaveErrorsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "groundops_autosave_errors_total",
				Help: "Draft snapshot writes that failed",
			},
		),

		WSClientsGauge: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "groundops_ws_clients",
				Help: "Connected live-status websocket clients",
			},
		),
	}
}
