// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	TrendsIngested   *prometheus.CounterVec
	IngestionErrors  *prometheus.CounterVec
	IngestionCycles  *prometheus.CounterVec
	IngestionLatency *prometheus.HistogramVec

	// Triage metrics
	TriageMutations *prometheus.CounterVec

	// Simulation metrics
	SimulationsRun      *prometheus.CounterVec
	ExchangeRateLookups *prometheus.CounterVec
	ImageEdits          *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestDuration *prometheus.HistogramVec
	WSClients           prometheus.Gauge

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulIngestion prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	return newMetrics(promauto.With(prometheus.DefaultRegisterer), namespace)
}

func newMetrics(factory promauto.Factory, namespace string) *Metrics {
	if namespace == "" {
		namespace = "trend_radar"
	}

	return &Metrics{
		TrendsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "trends_ingested_total",
			Help:      "Total number of trend rows upserted by platform",
		}, []string{"platform"}),
		IngestionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "errors_total",
			Help:      "Total number of ingestion errors by platform and stage",
		}, []string{"platform", "stage"}),
		IngestionCycles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "cycles_total",
			Help:      "Total number of ingestion cycles by status",
		}, []string{"status"}),
		IngestionLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "fetch_latency_seconds",
			Help:      "Upstream fetch latency in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"platform"}),

		TriageMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "triage",
			Name:      "mutations_total",
			Help:      "Total number of triage mutations by operation and result",
		}, []string{"operation", "result"}),

		SimulationsRun: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "runs_total",
			Help:      "Total number of landed cost simulations by result",
		}, []string{"result"}),
		ExchangeRateLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "exchange_rate_lookups_total",
			Help:      "Total number of exchange rate lookups by source",
		}, []string{"source"}),
		ImageEdits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "thumbnails",
			Name:      "edits_total",
			Help:      "Total number of thumbnail edits by result",
		}, []string{"result"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "ws_clients",
			Help:      "Number of connected websocket clients",
		}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		LastSuccessfulIngestion: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_ingestion_timestamp",
			Help:      "Unix timestamp of last successful ingestion",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTrendsIngested adds n upserted trends for a platform.
func RecordTrendsIngested(platform string, n int) {
	DefaultMetrics.TrendsIngested.WithLabelValues(platform).Add(float64(n))
}

// RecordIngestionError records a failed fetch or store step.
func RecordIngestionError(platform, stage string) {
	DefaultMetrics.IngestionErrors.WithLabelValues(platform, stage).Inc()
}

// RecordIngestionCycle records the end of an ingestion cycle. A successful
// cycle also moves the health timestamp.
func RecordIngestionCycle(status string, at time.Time) {
	DefaultMetrics.IngestionCycles.WithLabelValues(status).Inc()
	if status == "success" {
		DefaultMetrics.LastSuccessfulIngestion.Set(float64(at.Unix()))
	}
}

// RecordFetchLatency records upstream fetch latency.
func RecordFetchLatency(platform string, seconds float64) {
	DefaultMetrics.IngestionLatency.WithLabelValues(platform).Observe(seconds)
}

// RecordTriageMutation records a triage operation outcome.
func RecordTriageMutation(operation, result string) {
	DefaultMetrics.TriageMutations.WithLabelValues(operation, result).Inc()
}

// RecordSimulation records a simulation outcome.
func RecordSimulation(result string) {
	DefaultMetrics.SimulationsRun.WithLabelValues(result).Inc()
}

// RecordExchangeRateLookup records where an exchange rate came from.
func RecordExchangeRateLookup(source string) {
	DefaultMetrics.ExchangeRateLookups.WithLabelValues(source).Inc()
}

// RecordImageEdit records a thumbnail edit outcome.
func RecordImageEdit(result string) {
	DefaultMetrics.ImageEdits.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(route, method, status string, seconds float64) {
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(route, method, status).Observe(seconds)
}

// SetWSClients updates the websocket client gauge.
func SetWSClients(n int) {
	DefaultMetrics.WSClients.Set(float64(n))
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
