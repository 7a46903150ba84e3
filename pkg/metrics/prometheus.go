// Package metrics provides Prometheus metrics for the sentiscope service.
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
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Analysis metrics
	analysesTotal         *prometheus.CounterVec
	analysisErrors        *prometheus.CounterVec
	analysisLatency       *prometheus.HistogramVec
	documentPolarity      prometheus.Histogram
	documentSubjectivity  prometheus.Histogram
	tokensBucketed        *prometheus.CounterVec
	extractedDocuments    *prometheus.CounterVec
	extractedDocumentSize prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueTotal  prometheus.Counter
	queueDequeueTotal  prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec

	// Worker metrics
	workerCount             prometheus.Gauge
	workerBusyCount         prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Error metrics
	errorsByEndpoint *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// scoreBuckets spans the [-1, 1] range of polarity and compound scores.
var scoreBuckets = []float64{-1, -0.75, -0.5, -0.25, -0.1, -0.05, 0, 0.05, 0.1, 0.25, 0.5, 0.75, 1}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "sentiscope",
		subsystem:        "analysis",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.analysesTotal = auto.NewCounterVec(
		m.counter("analyses_total", "Total number of completed analyses by resulting label"),
		[]string{"operation", "label"},
	)
	m.analysisErrors = auto.NewCounterVec(
		m.counter("analysis_errors_total", "Total number of failed analyses by error kind"),
		[]string{"operation", "kind"},
	)
	m.analysisLatency = auto.NewHistogramVec(
		m.histogram("analysis_latency_milliseconds", "Analysis latency in milliseconds", m.histogramBuckets),
		[]string{"operation"},
	)
	m.documentPolarity = auto.NewHistogram(
		m.histogram("document_polarity", "Distribution of document polarity scores", scoreBuckets),
	)
	m.documentSubjectivity = auto.NewHistogram(
		m.histogram("document_subjectivity", "Distribution of document subjectivity scores",
			[]float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}),
	)
	m.tokensBucketed = auto.NewCounterVec(
		m.counter("tokens_total", "Total number of tokens classified by bucket"),
		[]string{"bucket"},
	)
	m.extractedDocuments = auto.NewCounterVec(
		m.counter("extracted_documents_total", "Total number of uploaded documents by format and outcome"),
		[]string{"format", "outcome"},
	)
	m.extractedDocumentSize = auto.NewHistogram(
		m.histogram("extracted_text_bytes", "Size of extracted document text in bytes",
			prometheus.ExponentialBuckets(64, 4, 10)),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counter("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogram("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.queueSize = auto.NewGauge(m.gauge("queue_size", "Current number of analysis jobs waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gauge("queue_capacity", "Maximum queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)"))
	m.queueEnqueueTotal = auto.NewCounter(m.counter("queue_enqueue_total", "Total number of jobs enqueued"))
	m.queueDequeueTotal = auto.NewCounter(m.counter("queue_dequeue_total", "Total number of jobs dequeued"))
	m.queueEnqueueErrors = auto.NewCounterVec(
		m.counter("queue_enqueue_errors_total", "Total number of rejected enqueues by reason"),
		[]string{"reason"},
	)

	m.workerCount = auto.NewGauge(m.gauge("worker_count", "Number of analysis workers"))
	m.workerBusyCount = auto.NewGauge(m.gauge("worker_busy_count", "Number of workers currently running an analysis"))
	m.workerProcessingLatency = auto.NewHistogram(
		m.histogram("worker_processing_latency_milliseconds", "Worker job processing latency in milliseconds", m.histogramBuckets),
	)
	m.workerErrors = auto.NewCounter(m.counter("worker_errors_total", "Total number of jobs that finished with an error"))

	m.errorsByEndpoint = auto.NewCounterVec(
		m.counter("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordAnalysis records a completed analysis and its label. Operations are
// "analyze", "score" and "tokens"; label is empty where none applies.
func RecordAnalysis(operation, label string, latencyMs float64) {
	globalManager.analysesTotal.WithLabelValues(operation, label).Inc()
	globalManager.analysisLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordAnalysisError records a failed analysis.
func RecordAnalysisError(operation, kind string) {
	globalManager.analysisErrors.WithLabelValues(operation, kind).Inc()
}

// ObserveDocument records document-level scores.
func ObserveDocument(polarity, subjectivity float64) {
	globalManager.documentPolarity.Observe(polarity)
	globalManager.documentSubjectivity.Observe(subjectivity)
}

// RecordTokens adds the bucket sizes of one token classification.
func RecordTokens(positives, negatives, neutral int) {
	globalManager.tokensBucketed.WithLabelValues("positive").Add(float64(positives))
	globalManager.tokensBucketed.WithLabelValues("negative").Add(float64(negatives))
	globalManager.tokensBucketed.WithLabelValues("neutral").Add(float64(neutral))
}

// RecordExtraction records an uploaded document extraction attempt.
func RecordExtraction(format, outcome string, textBytes int) {
	globalManager.extractedDocuments.WithLabelValues(format, outcome).Inc()
	if outcome == "ok" {
		globalManager.extractedDocumentSize.Observe(float64(textBytes))
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateQueueSize sets the current queue size and utilization.
func UpdateQueueSize(size, capacity int) {
	globalManager.queueSize.Set(float64(size))
	if capacity > 0 {
		globalManager.queueUtilization.Set(float64(size) / float64(capacity))
	}
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueTotal.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueTotal.Inc()
}

// RecordQueueEnqueueError increments the rejected enqueue counter.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the number of workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// WorkerBusy adjusts the busy worker gauge by delta.
func WorkerBusy(delta int) {
	globalManager.workerBusyCount.Add(float64(delta))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
