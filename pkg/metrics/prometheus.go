// Package metrics provides Prometheus metrics for the platformer backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every metric the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// Engine
	scoreSubmissions    prometheus.Counter
	rankingOutcomes     *prometheus.CounterVec
	progressImprovement *prometheus.CounterVec
	mergeConflicts      *prometheus.CounterVec

	// Accounts and levels
	registrations prometheus.Counter
	logins        *prometheus.CounterVec
	levelWrites   *prometheus.CounterVec

	// Store
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// Auth
	revokedTokens prometheus.Gauge
	authFailures  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps the default Go collectors out of /metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "platformer",
		subsystem:        "api",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "Error responses by endpoint, method and error type",
	}, []string{"endpoint", "method", "error_type"})

	m.scoreSubmissions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_submissions_total",
		Help:      "Score submissions merged into progress and leaderboards",
	})

	m.rankingOutcomes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_outcomes_total",
		Help:      "Leaderboard insert outcomes by ranking (time, points) and outcome (created, inserted, appended, discarded)",
	}, []string{"ranking", "outcome"})

	m.progressImprovement = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "progress_improvements_total",
		Help:      "Personal bests improved by field (points, time, first)",
	}, []string{"field"})

	m.mergeConflicts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "merge_conflicts_total",
		Help:      "Optimistic concurrency conflicts by record kind",
	}, []string{"record"})

	m.registrations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "registrations_total",
		Help:      "Accounts created",
	})

	m.logins = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "logins_total",
		Help:      "Login attempts by result",
	}, []string{"result"})

	m.levelWrites = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "level_writes_total",
		Help:      "Level writes by operation (create, update, delete)",
	}, []string{"operation"})

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_latency_milliseconds",
		Help:      "Store operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"collection", "operation"})

	m.storeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Store operation failures by collection and operation",
	}, []string{"collection", "operation"})

	m.revokedTokens = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "revoked_tokens",
		Help:      "Token ids currently held in the revocation list",
	})

	m.authFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "auth_failures_total",
		Help:      "Rejected requests by reason (missing, invalid, revoked)",
	}, []string{"reason"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "Heap bytes allocated",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint records an error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordScoreSubmission increments the submissions counter.
func RecordScoreSubmission() {
	globalManager.scoreSubmissions.Inc()
}

// RecordRankingOutcome records what a leaderboard insert did to one ranking.
func RecordRankingOutcome(ranking, outcome string) {
	globalManager.rankingOutcomes.WithLabelValues(ranking, outcome).Inc()
}

// RecordProgressImprovement records an improved personal best field.
func RecordProgressImprovement(field string) {
	globalManager.progressImprovement.WithLabelValues(field).Inc()
}

// RecordMergeConflict records a lost compare-and-swap on a record kind.
func RecordMergeConflict(record string) {
	globalManager.mergeConflicts.WithLabelValues(record).Inc()
}

// RecordRegistration increments the registrations counter.
func RecordRegistration() {
	globalManager.registrations.Inc()
}

// RecordLogin records a login attempt result.
func RecordLogin(result string) {
	globalManager.logins.WithLabelValues(result).Inc()
}

// RecordLevelWrite records a level create/update/delete.
func RecordLevelWrite(operation string) {
	globalManager.levelWrites.WithLabelValues(operation).Inc()
}

// RecordStoreLatency records a store operation latency.
func RecordStoreLatency(collection, operation string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(collection, operation).Observe(latencyMs)
}

// RecordStoreError records a failed store operation.
func RecordStoreError(collection, operation string) {
	globalManager.storeErrors.WithLabelValues(collection, operation).Inc()
}

// UpdateRevokedTokens sets the revocation list size.
func UpdateRevokedTokens(count int) {
	globalManager.revokedTokens.Set(float64(count))
}

// RecordAuthFailure records a rejected request.
func RecordAuthFailure(reason string) {
	globalManager.authFailures.WithLabelValues(reason).Inc()
}

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the registry backing /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
