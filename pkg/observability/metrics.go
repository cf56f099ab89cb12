package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Gateway management API metrics
	EdgeRequestsTotal   *prometheus.CounterVec
	EdgeRequestDuration *prometheus.HistogramVec

	// Entity cache metrics
	CacheHitsTotal      *prometheus.CounterVec
	CacheMissesTotal    *prometheus.CounterVec
	CacheEvictionsTotal *prometheus.CounterVec

	// Sync metrics
	SyncOperationsTotal *prometheus.CounterVec
	ReconcileRunsTotal  *prometheus.CounterVec
	ReconcileDuration   prometheus.Histogram
	DevelopersTotal     prometheus.Gauge

	// Database metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portalsync_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portalsync_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		EdgeRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portalsync_edge_requests_total",
				Help: "Total number of gateway management API requests",
			},
			[]string{"operation", "status"},
		),
		EdgeRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portalsync_edge_request_duration_seconds",
				Help:    "Gateway management API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portalsync_cache_hits_total",
				Help: "Total number of entity cache hits",
			},
			[]string{"tier"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portalsync_cache_misses_total",
				Help: "Total number of entity cache misses",
			},
			[]string{"tier"},
		),
		CacheEvictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portalsync_cache_evictions_total",
				Help: "Total number of entity cache evictions",
			},
			[]string{"tier"},
		),
		SyncOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portalsync_sync_operations_total",
				Help: "Total number of developer sync operations",
			},
			[]string{"operation", "status"},
		),
		ReconcileRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portalsync_reconcile_runs_total",
				Help: "Total number of reconciliation runs",
			},
			[]string{"status"},
		),
		ReconcileDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "portalsync_reconcile_duration_seconds",
				Help:    "Reconciliation run duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
		),
		DevelopersTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "portalsync_developers_total",
				Help: "Number of developers known on the gateway platform",
			},
		),
		DBConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "portalsync_db_connections_active",
				Help: "Number of active database connections",
			},
		),
		DBConnectionsIdle: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "portalsync_db_connections_idle",
				Help: "Number of idle database connections",
			},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.EdgeRequestsTotal,
		m.EdgeRequestDuration,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.CacheEvictionsTotal,
		m.SyncOperationsTotal,
		m.ReconcileRunsTotal,
		m.ReconcileDuration,
		m.DevelopersTotal,
		m.DBConnectionsActive,
		m.DBConnectionsIdle,
	)

	return m
}

// Handler returns an HTTP handler serving the metrics registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records a completed HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordEdgeRequest records a gateway management API call
func (m *Metrics) RecordEdgeRequest(operation, status string, duration time.Duration) {
	m.EdgeRequestsTotal.WithLabelValues(operation, status).Inc()
	m.EdgeRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCacheHit records an entity cache hit
func (m *Metrics) RecordCacheHit(tier string) {
	m.CacheHitsTotal.WithLabelValues(tier).Inc()
}

// RecordCacheMiss records an entity cache miss
func (m *Metrics) RecordCacheMiss(tier string) {
	m.CacheMissesTotal.WithLabelValues(tier).Inc()
}

// RecordCacheEviction records an entity cache eviction
func (m *Metrics) RecordCacheEviction(tier string) {
	m.CacheEvictionsTotal.WithLabelValues(tier).Inc()
}

// RecordSyncOperation records a developer sync operation outcome
func (m *Metrics) RecordSyncOperation(operation, status string) {
	m.SyncOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordReconcileRun records a reconciliation run
func (m *Metrics) RecordReconcileRun(status string, duration time.Duration) {
	m.ReconcileRunsTotal.WithLabelValues(status).Inc()
	m.ReconcileDuration.Observe(duration.Seconds())
}
