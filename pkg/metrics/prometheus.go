// Package metrics provides Prometheus metrics for the SPADL conversion service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the service's Prometheus collectors.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Conversion
	gamesConverted     *prometheus.CounterVec
	gamesDuplicate     prometheus.Counter
	actionsEmitted     *prometheus.CounterVec
	conversionLatency  prometheus.Histogram
	validationFailures *prometheus.CounterVec
	minutesFailures    prometheus.Counter
	storedGames        prometheus.Gauge

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter
	batchPoolRunning        prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// LatencyBuckets are the millisecond buckets of every latency histogram.
var LatencyBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000} //nolint:gochecknoglobals // read-only bucket layout

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(defaultOptions(customRegistry)...)
}

func defaultOptions(registry prometheus.Registerer) []Option {
	return []Option{
		WithNamespace("spadl"),
		WithSubsystem("converter"),
		WithHistogramBuckets(LatencyBuckets),
		WithPrometheusRegistry(registry),
	}
}

// Configure rebuilds the global collectors on a fresh registry, applying opts
// over the defaults. It must run before anything is recorded or served, and
// values recorded earlier are dropped.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	globalManager = NewManager(append(defaultOptions(registry), opts...)...)
	customRegistry = registry
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "spadl",
		subsystem:        "converter",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.gamesConverted = auto.NewCounterVec(
		m.counterOpts("games_converted_total", "Games converted, by provider and outcome"),
		[]string{"provider", "status"})
	m.gamesDuplicate = auto.NewCounter(
		m.counterOpts("games_duplicate_total", "Game submissions rejected as duplicates"))
	m.actionsEmitted = auto.NewCounterVec(
		m.counterOpts("actions_emitted_total", "Canonical actions emitted, by action type"),
		[]string{"type"})
	m.conversionLatency = auto.NewHistogram(
		m.histogramOpts("conversion_latency_milliseconds", "Time to convert and validate one game"))
	m.validationFailures = auto.NewCounterVec(
		m.counterOpts("validation_failures_total", "Schema check failures, by column and check"),
		[]string{"column", "check"})
	m.minutesFailures = auto.NewCounter(
		m.counterOpts("minutes_failures_total", "Games whose player minutes could not be extracted"))
	m.storedGames = auto.NewGauge(
		m.gaugeOpts("stored_games", "Games held in the result store"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current number of queued jobs"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum queue capacity"))
	m.queueUtilization = auto.NewGauge(
		m.gaugeOpts("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)"))
	m.queueEnqueueRate = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Jobs enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Jobs dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Rejected enqueues"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Configured number of workers"))
	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Workers currently converting a game"))
	m.workerProcessingLatency = auto.NewHistogram(
		m.histogramOpts("worker_processing_latency_milliseconds", "Worker time per job"))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Jobs that failed in a worker"))
	m.batchPoolRunning = auto.NewGauge(
		m.gaugeOpts("batch_pool_running", "Batch conversion goroutines currently running"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"})
}

// RecordGameConverted counts one conversion outcome.
func RecordGameConverted(provider, status string) {
	globalManager.gamesConverted.WithLabelValues(provider, status).Inc()
}

// RecordGameDuplicate counts a duplicate submission.
func RecordGameDuplicate() {
	globalManager.gamesDuplicate.Inc()
}

// RecordActionEmitted counts n actions of one type.
func RecordActionEmitted(typeName string, n int) {
	globalManager.actionsEmitted.WithLabelValues(typeName).Add(float64(n))
}

// RecordConversionLatency records conversion latency in milliseconds.
func RecordConversionLatency(latencyMs float64) {
	globalManager.conversionLatency.Observe(latencyMs)
}

// RecordValidationFailure counts one failed schema check.
func RecordValidationFailure(column, check string) {
	globalManager.validationFailures.WithLabelValues(column, check).Inc()
}

// RecordMinutesFailure counts a failed minutes extraction.
func RecordMinutesFailure() {
	globalManager.minutesFailures.Inc()
}

// UpdateStoredGames sets the number of stored results.
func UpdateStoredGames(count int) {
	globalManager.storedGames.Set(float64(count))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// AddWorkerActive adjusts the active worker gauge by delta.
func AddWorkerActive(delta int) {
	globalManager.workerActiveCount.Add(float64(delta))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// UpdateBatchPoolRunning sets the number of running batch goroutines.
func UpdateBatchPoolRunning(n int) {
	globalManager.batchPoolRunning.Set(float64(n))
}

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
