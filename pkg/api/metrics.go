package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics for the API
type Metrics struct {
	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	// Storage operation metrics
	storageOperationsTotal *prometheus.CounterVec
	storageRecordsTotal    *prometheus.GaugeVec

	// Analysis metrics
	analysisRunsTotal *prometheus.CounterVec

	// Chat metrics
	chatRequestsTotal *prometheus.CounterVec
	rateLimitedTotal  prometheus.Counter

	// Health check metrics
	healthChecksTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	return newMetricsWith(prometheus.DefaultRegisterer)
}

// newMetricsWith registers against an explicit registry; tests use a fresh
// one to avoid duplicate-registration panics.
func newMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cvault_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cvault_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cvault_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),

		storageOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cvault_storage_operations_total",
				Help: "Total number of storage operations",
			},
			[]string{"operation", "status"},
		),

		storageRecordsTotal: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cvault_storage_records_total",
				Help: "Number of live records per entity type",
			},
			[]string{"entity"},
		),

		analysisRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cvault_analysis_runs_total",
				Help: "Total number of CV analysis runs",
			},
			[]string{"status"},
		),

		chatRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cvault_chat_requests_total",
				Help: "Total number of chat requests",
			},
			[]string{"operation", "status"},
		),

		rateLimitedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cvault_rate_limited_requests_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
		),

		healthChecksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cvault_health_checks_total",
				Help: "Total number of health checks",
			},
			[]string{"status"},
		),
	}

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordStorageOperation records one storage operation
func (m *Metrics) RecordStorageOperation(operation string, success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.storageOperationsTotal.WithLabelValues(operation, status).Inc()
}

// UpdateRecordCount updates the live-record gauge for one entity type
func (m *Metrics) UpdateRecordCount(entityName string, count int) {
	m.storageRecordsTotal.WithLabelValues(entityName).Set(float64(count))
}

// RecordAnalysisRun records a background analysis outcome
func (m *Metrics) RecordAnalysisRun(success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.analysisRunsTotal.WithLabelValues(status).Inc()
}

// RecordChatRequest records a chat operation
func (m *Metrics) RecordChatRequest(operation string, success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.chatRequestsTotal.WithLabelValues(operation, status).Inc()
}

// RecordRateLimited counts a rate-limited rejection
func (m *Metrics) RecordRateLimited() {
	m.rateLimitedTotal.Inc()
}

// RecordHealthCheck records a health check
func (m *Metrics) RecordHealthCheck(success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.healthChecksTotal.WithLabelValues(status).Inc()
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(rw, r)

		m.RecordHTTPRequest(method, endpoint, rw.statusCode, time.Since(start))
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
