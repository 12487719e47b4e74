// Package metrics provides Prometheus metrics for the evaluation records service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Store metrics - flat-file persistence
	storeLoads      *prometheus.CounterVec
	storeLoadErrors *prometheus.CounterVec
	storeSaves      *prometheus.CounterVec
	storeSaveErrors *prometheus.CounterVec
	storeRecords    *prometheus.GaugeVec
	storeLatency    *prometheus.HistogramVec

	// Business metrics
	validationFailures *prometheus.CounterVec
	scoresWritten      *prometheus.CounterVec
	scoresRemoved      *prometheus.CounterVec
	referentialGaps    prometheus.Counter
	evaluatorMode      prometheus.Gauge

	// Export metrics
	exports      *prometheus.CounterVec
	exportErrors *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors by component
	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "avalia",
		subsystem:        "records",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.storeLoads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_loads_total",
		Help:      "Total number of successful store loads by store",
	}, []string{"store"})

	m.storeLoadErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_load_errors_total",
		Help:      "Total number of store loads that failed to open or read the file",
	}, []string{"store"})

	m.storeSaves = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_saves_total",
		Help:      "Total number of successful store saves by store",
	}, []string{"store"})

	m.storeSaveErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_save_errors_total",
		Help:      "Total number of store saves that failed to write the file",
	}, []string{"store"})

	m.storeRecords = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_records",
		Help:      "Number of records currently held by each store",
	}, []string{"store"})

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_io_duration_milliseconds",
		Help:      "Duration of store load/save operations in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"store", "op"})

	m.validationFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validation_failures_total",
		Help:      "Total number of rejected fields by entity and field",
	}, []string{"entity", "field"})

	m.scoresWritten = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scores_written_total",
		Help:      "Total number of score writes by mode (admin, evaluator)",
	}, []string{"mode"})

	m.scoresRemoved = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scores_removed_total",
		Help:      "Total number of score removals by mode (admin, evaluator)",
	}, []string{"mode"})

	m.referentialGaps = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "referential_gaps_total",
		Help:      "Total number of score rows rendered with a project that could not be resolved",
	})

	m.evaluatorMode = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "evaluator_mode",
		Help:      "1 when an evaluator identity is set for the scores screen, 0 in admin mode",
	})

	m.exports = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "exports_total",
		Help:      "Total number of CSV exports by entity",
	}, []string{"entity"})

	m.exportErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "export_errors_total",
		Help:      "Total number of CSV exports that failed by entity",
	}, []string{"entity"})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component and error type",
		},
		[]string{"component", "error_type"},
	)
}

// Store Metrics Functions.

// RecordStoreLoad records a successful load and the resulting record count.
func RecordStoreLoad(store string, records int, latencyMs float64) {
	globalManager.storeLoads.WithLabelValues(store).Inc()
	globalManager.storeRecords.WithLabelValues(store).Set(float64(records))
	globalManager.storeLatency.WithLabelValues(store, "load").Observe(latencyMs)
}

// RecordStoreLoadError increments the failed load counter for a store.
func RecordStoreLoadError(store string) {
	globalManager.storeLoadErrors.WithLabelValues(store).Inc()
}

// RecordStoreSave records a successful save.
func RecordStoreSave(store string, records int, latencyMs float64) {
	globalManager.storeSaves.WithLabelValues(store).Inc()
	globalManager.storeRecords.WithLabelValues(store).Set(float64(records))
	globalManager.storeLatency.WithLabelValues(store, "save").Observe(latencyMs)
}

// RecordStoreSaveError increments the failed save counter for a store.
func RecordStoreSaveError(store string) {
	globalManager.storeSaveErrors.WithLabelValues(store).Inc()
}

// UpdateStoreRecords sets the record gauge for a store after an in-memory mutation.
func UpdateStoreRecords(store string, records int) {
	globalManager.storeRecords.WithLabelValues(store).Set(float64(records))
}

// Business Metrics Functions.

// RecordValidationFailure records a rejected field.
func RecordValidationFailure(entity, field string) {
	globalManager.validationFailures.WithLabelValues(entity, field).Inc()
}

// RecordScoreWritten records a score create or update.
func RecordScoreWritten(mode string) {
	globalManager.scoresWritten.WithLabelValues(mode).Inc()
}

// RecordScoreRemoved records a score removal.
func RecordScoreRemoved(mode string) {
	globalManager.scoresRemoved.WithLabelValues(mode).Inc()
}

// RecordReferentialGap records a score whose project could not be resolved.
func RecordReferentialGap() {
	globalManager.referentialGaps.Inc()
}

// SetEvaluatorMode flips the evaluator mode gauge.
func SetEvaluatorMode(on bool) {
	if on {
		globalManager.evaluatorMode.Set(1)
		return
	}
	globalManager.evaluatorMode.Set(0)
}

// Export Metrics Functions.

// RecordExport records a successful export.
func RecordExport(entity string) {
	globalManager.exports.WithLabelValues(entity).Inc()
}

// RecordExportError records a failed export.
func RecordExportError(entity string) {
	globalManager.exportErrors.WithLabelValues(entity).Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
