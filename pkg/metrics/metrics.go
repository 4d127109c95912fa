// Package metrics provides Prometheus metrics for the content pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace string
	subsystem string
	registry  *prometheus.Registry

	// Batch metrics
	batchesTotal  *prometheus.CounterVec
	batchDuration *prometheus.HistogramVec
	itemsReturned *prometheus.HistogramVec

	// Pipeline stage metrics
	itemsFetched    prometheus.Counter
	stageRejections *prometheus.CounterVec
	sourcesDegraded *prometheus.CounterVec

	// Rewrite provider metrics
	providerRequests *prometheus.CounterVec
	providerLatency  prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Configuration gauges
	sourcesConfigured prometheus.Gauge
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithRegistry sets a custom Prometheus registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// WithNamespace overrides the metric namespace.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "sgc",
		subsystem: "pipeline",
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.batchesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "batches_total",
		Help: "Batch runs by kind and outcome.",
	}, []string{"kind", "status"})

	m.batchDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "batch_duration_seconds",
		Help:    "End-to-end batch processing time.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"kind"})

	m.itemsReturned = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "batch_items_returned",
		Help:    "Items returned per batch.",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	}, []string{"kind"})

	m.itemsFetched = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "items_fetched_total",
		Help: "Raw items retrieved from sources.",
	})

	m.stageRejections = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "items_rejected_total",
		Help: "Items dropped, by pipeline stage.",
	}, []string{"stage"})

	m.sourcesDegraded = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "sources_degraded_total",
		Help: "Source fetches that failed for a whole run.",
	}, []string{"source"})

	m.providerRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "provider_requests_total",
		Help: "Rewrite provider calls by provider and outcome.",
	}, []string{"provider", "outcome"})

	m.providerLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "provider_latency_seconds",
		Help:    "Rewrite provider call latency.",
		Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "http",
		Name: "requests_total",
		Help: "HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "http",
		Name:    "request_duration_seconds",
		Help:    "HTTP request latency by endpoint.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "method"})

	m.sourcesConfigured = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "sources_configured",
		Help: "Number of configured active sources.",
	})

	return m
}

// Package-level recorders operating on the global manager.

// RecordBatch counts a finished batch run.
func RecordBatch(kind, status string) {
	globalManager.batchesTotal.WithLabelValues(kind, status).Inc()
}

// ObserveBatchDuration records end-to-end batch latency in seconds.
func ObserveBatchDuration(kind string, seconds float64) {
	globalManager.batchDuration.WithLabelValues(kind).Observe(seconds)
}

// ObserveItemsReturned records the size of a batch response.
func ObserveItemsReturned(kind string, n int) {
	globalManager.itemsReturned.WithLabelValues(kind).Observe(float64(n))
}

// RecordItemsFetched counts raw items retrieved from sources.
func RecordItemsFetched(n int) {
	globalManager.itemsFetched.Add(float64(n))
}

// RecordStageRejections counts items dropped at a pipeline stage.
func RecordStageRejections(stage string, n int) {
	if n > 0 {
		globalManager.stageRejections.WithLabelValues(stage).Add(float64(n))
	}
}

// RecordSourceDegraded counts a source failing for a whole run.
func RecordSourceDegraded(source string) {
	globalManager.sourcesDegraded.WithLabelValues(source).Inc()
}

// RecordProviderRequest counts one rewrite provider call.
func RecordProviderRequest(provider, outcome string) {
	globalManager.providerRequests.WithLabelValues(provider, outcome).Inc()
}

// ObserveProviderLatency records rewrite provider call latency in seconds.
func ObserveProviderLatency(seconds float64) {
	globalManager.providerLatency.Observe(seconds)
}

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// ObserveHTTPRequestDuration records HTTP request latency in seconds.
func ObserveHTTPRequestDuration(endpoint, method string, seconds float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(seconds)
}

// UpdateSourcesConfigured sets the active source count gauge.
func UpdateSourcesConfigured(n int) {
	globalManager.sourcesConfigured.Set(float64(n))
}

// GetRegistry exposes the registry for the /metrics handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
