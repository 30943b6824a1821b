// Package metrics provides Prometheus metrics for the league wrapped engine.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector the engine and its adapters record into.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Engine
	stageDuration      *prometheus.HistogramVec
	stageFailures      *prometheus.CounterVec
	seasonRecords      *prometheus.GaugeVec
	roundsAggregated   prometheus.Counter
	pairsScored        prometheus.Counter
	pairsExcluded      prometheus.Counter
	awardsResolved     *prometheus.CounterVec
	awardsInapplicable *prometheus.CounterVec

	// Worker pool
	jobsProcessed prometheus.Counter
	jobsFailed    prometheus.Counter
	jobLatency    prometheus.Histogram
	workerCount   prometheus.Gauge
	queueSize     prometheus.Gauge
	queueRejected *prometheus.CounterVec

	// Enrichment
	popularityLookups *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// System
	systemMemory     prometheus.Gauge
	systemGoroutines prometheus.Gauge
	systemGCPause    prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "wrapped",
		subsystem:        "engine",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat collector declarations
	auto := promauto.With(m.registry)

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stage_duration_milliseconds",
		Help:      "Duration of each pipeline stage in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"stage"})

	m.stageFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stage_failures_total",
		Help:      "Pipeline stages that aborted the run",
	}, []string{"stage"})

	m.seasonRecords = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "season_records",
		Help:      "Number of loaded records per table",
	}, []string{"table"})

	m.roundsAggregated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rounds_aggregated_total",
		Help:      "Rounds processed by the per-round aggregator",
	})

	m.pairsScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pairs_scored_total",
		Help:      "Competitor pairs that met the shared-vote threshold",
	})

	m.pairsExcluded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pairs_excluded_total",
		Help:      "Competitor pairs dropped for insufficient overlap",
	})

	m.awardsResolved = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "awards_resolved_total",
		Help:      "Awards resolved with at least one winner",
	}, []string{"category"})

	m.awardsInapplicable = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "awards_not_applicable_total",
		Help:      "Awards reported as not applicable for lack of data",
	}, []string{"category"})

	m.jobsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "worker",
		Name:      "jobs_processed_total",
		Help:      "Jobs completed by the worker pool",
	})

	m.jobsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "worker",
		Name:      "jobs_failed_total",
		Help:      "Jobs that returned an error",
	})

	m.jobLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "worker",
		Name:      "job_latency_milliseconds",
		Help:      "Job execution latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "worker",
		Name:      "count",
		Help:      "Workers started for the current batch",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "queue",
		Name:      "size",
		Help:      "Jobs waiting in the queue",
	})

	m.queueRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "queue",
		Name:      "rejected_total",
		Help:      "Jobs the queue refused, by reason",
	}, []string{"reason"})

	m.popularityLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "popularity",
		Name:      "lookups_total",
		Help:      "Track popularity lookups by outcome",
	}, []string{"status"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.httpErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "errors_total",
		Help:      "HTTP error responses by endpoint and error type",
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemory = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_bytes",
		Help:      "Heap bytes allocated",
	})

	m.systemGoroutines = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutines",
		Help:      "Number of goroutines",
	})

	m.systemGCPause = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "gc_pause_milliseconds",
		Help:      "Average GC pause in milliseconds",
	})
}

// ObserveStageDuration records how long a pipeline stage took.
func ObserveStageDuration(stage string, ms float64) {
	globalManager.stageDuration.WithLabelValues(stage).Observe(ms)
}

// RecordStageFailure counts a stage that aborted the run.
func RecordStageFailure(stage string) {
	globalManager.stageFailures.WithLabelValues(stage).Inc()
}

// UpdateSeasonRecords sets the loaded record count for a table.
func UpdateSeasonRecords(table string, count int) {
	globalManager.seasonRecords.WithLabelValues(table).Set(float64(count))
}

// RecordRoundsAggregated adds n aggregated rounds.
func RecordRoundsAggregated(n int) {
	globalManager.roundsAggregated.Add(float64(n))
}

// RecordPairsScored adds n eligible pairs.
func RecordPairsScored(n int) {
	globalManager.pairsScored.Add(float64(n))
}

// RecordPairsExcluded adds n pairs dropped below the overlap threshold.
func RecordPairsExcluded(n int) {
	globalManager.pairsExcluded.Add(float64(n))
}

// RecordAwardResolved counts an award with winners.
func RecordAwardResolved(category string) {
	globalManager.awardsResolved.WithLabelValues(category).Inc()
}

// RecordAwardNotApplicable counts an award without any defined metric.
func RecordAwardNotApplicable(category string) {
	globalManager.awardsInapplicable.WithLabelValues(category).Inc()
}

// RecordJobProcessed counts a successful job.
func RecordJobProcessed() {
	globalManager.jobsProcessed.Inc()
}

// RecordJobFailed counts a failed job.
func RecordJobFailed() {
	globalManager.jobsFailed.Inc()
}

// ObserveJobLatency records job latency in milliseconds.
func ObserveJobLatency(ms float64) {
	globalManager.jobLatency.Observe(ms)
}

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateQueueSize sets the number of queued jobs.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// RecordQueueRejected counts a refused enqueue.
func RecordQueueRejected(reason string) {
	globalManager.queueRejected.WithLabelValues(reason).Inc()
}

// RecordPopularityLookup counts a popularity lookup by status (hit, missing, error).
func RecordPopularityLookup(status string) {
	globalManager.popularityLookups.WithLabelValues(status).Inc()
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

// RecordHTTPError counts an HTTP error response.
func RecordHTTPError(endpoint, method, errorType string) {
	globalManager.httpErrors.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the allocated heap size.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemory.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutines.Set(float64(n))
}

// RecordSystemGCPauseTime sets the average GC pause.
func RecordSystemGCPauseTime(ms float64) {
	globalManager.systemGCPause.Set(ms)
}

// GetRegistry returns the custom registry backing the package-level helpers.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// FamilyNames gathers the custom registry and returns the metric family names.
func FamilyNames() ([]string, error) {
	families, err := customRegistry.Gather()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatherFailed, err)
	}
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	return names, nil
}
