// Package metrics provides Prometheus metrics for the buildlab service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the buildlab service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Pipeline Metrics
	builds          *prometheus.CounterVec
	pipelineLatency *prometheus.HistogramVec
	badgesResolved  prometheus.Histogram
	buildNameSource *prometheus.CounterVec
	degradations    *prometheus.CounterVec

	// Oracle Metrics
	oracleLatency *prometheus.HistogramVec
	oracleErrors  *prometheus.CounterVec

	// Reference Dataset Metrics
	datasetLatency     *prometheus.HistogramVec
	datasetErrors      *prometheus.CounterVec
	datasetCacheHits   prometheus.Counter
	datasetCacheMisses prometheus.Counter

	// Queue Metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker Metrics
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
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

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "buildlab",
		subsystem:        "recommender",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	m.builds = m.counterVec("builds_total", "Total number of pipeline runs by operation and outcome", "operation", "outcome")
	m.pipelineLatency = m.histogramVec("pipeline_latency_milliseconds", "End-to-end pipeline latency in milliseconds", "operation")
	m.badgesResolved = m.histogram("badges_resolved", "Number of badges resolved per generated build", []float64{0, 1, 3, 5, 10, 15, 20, 30})
	m.buildNameSource = m.counterVec("build_name_source_total", "Where the final build name came from", "source")
	m.degradations = m.counterVec("degradations_total", "Steps that degraded to an empty or default result", "component")

	m.oracleLatency = m.histogramVec("oracle_latency_milliseconds", "Oracle completion latency in milliseconds", "schema", "provider")
	m.oracleErrors = m.counterVec("oracle_errors_total", "Total number of failed oracle completions", "schema", "provider")

	m.datasetLatency = m.histogramVec("dataset_fetch_latency_milliseconds", "Reference dataset fetch latency in milliseconds", "dataset")
	m.datasetErrors = m.counterVec("dataset_errors_total", "Total number of failed reference dataset fetches", "dataset")
	m.datasetCacheHits = m.counter("dataset_cache_hits_total", "Reference dataset snapshot cache hits")
	m.datasetCacheMisses = m.counter("dataset_cache_misses_total", "Reference dataset snapshot cache misses")

	m.queueSize = m.gauge("queue_size", "Current size of the request queue (backlog indicator)")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of jobs enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueues")

	m.workerCount = m.gauge("worker_count", "Configured number of workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Number of workers currently running a job")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Worker job latency in milliseconds", m.histogramBuckets)
	m.workerErrorRate = m.counter("worker_errors_total", "Total number of jobs that finished with an error")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Total number of errors by type", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds", "Latency of operations that resulted in errors", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordBuild counts a finished pipeline run.
func RecordBuild(operation, outcome string) {
	globalManager.builds.WithLabelValues(operation, outcome).Inc()
}

// RecordPipelineLatency records end-to-end latency of one operation.
func RecordPipelineLatency(operation string, latencyMs float64) {
	globalManager.pipelineLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordBadgesResolved records how many badges a build ended up with.
func RecordBadgesResolved(count int) {
	globalManager.badgesResolved.Observe(float64(count))
}

// RecordBuildNameSource counts where a build name came from.
func RecordBuildNameSource(source string) {
	globalManager.buildNameSource.WithLabelValues(source).Inc()
}

// RecordDegradation counts a step that fell back to an empty result.
func RecordDegradation(component string) {
	globalManager.degradations.WithLabelValues(component).Inc()
}

// RecordOracleLatency records a completion round trip.
func RecordOracleLatency(schema, provider string, latencyMs float64) {
	globalManager.oracleLatency.WithLabelValues(schema, provider).Observe(latencyMs)
}

// RecordOracleError counts a failed completion.
func RecordOracleError(schema, provider string) {
	globalManager.oracleErrors.WithLabelValues(schema, provider).Inc()
}

// RecordDatasetFetchLatency records one dataset GET.
func RecordDatasetFetchLatency(dataset string, latencyMs float64) {
	globalManager.datasetLatency.WithLabelValues(dataset).Observe(latencyMs)
}

// RecordDatasetError counts a failed dataset fetch or decode.
func RecordDatasetError(dataset string) {
	globalManager.datasetErrors.WithLabelValues(dataset).Inc()
}

// RecordDatasetCacheHit increments the snapshot cache hit counter.
func RecordDatasetCacheHit() {
	globalManager.datasetCacheHits.Inc()
}

// RecordDatasetCacheMiss increments the snapshot cache miss counter.
func RecordDatasetCacheMiss() {
	globalManager.datasetCacheMisses.Inc()
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

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
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
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
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
