package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
)

const metricsNamespace = "gearguard"

// MetricsService owns the Prometheus registry and keeps cheap atomic
// aggregates alongside it for the admin snapshot endpoint. A nil receiver
// disables instrumentation everywhere.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	httpDuration *prometheus.HistogramVec
	httpTotal    *prometheus.CounterVec
	cacheLookup  prometheus.Observer
	cacheWrite   prometheus.Observer
	cacheRatio   prometheus.Gauge
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	dbDuration   *prometheus.HistogramVec

	hitCount     uint64
	missCount    uint64
	httpCount    uint64
	httpNanos    uint64
	dbQueryCount uint64
	dbQueryNanos uint64
}

// NewMetricsService builds a registry with the HTTP, cache and database
// collectors pre-registered.
func NewMetricsService() *MetricsService {
	m := &MetricsService{registry: prometheus.NewRegistry()}

	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	m.httpTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "http_requests_total",
		Help:      "HTTP request count by route",
	}, []string{"method", "path", "status"})

	cacheLookup := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "cache_lookup_seconds",
		Help:      "Cache read latency",
		Buckets:   prometheus.DefBuckets,
	})
	m.cacheLookup = cacheLookup

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "cache_write_seconds",
		Help:      "Cache write latency",
		Buckets:   prometheus.DefBuckets,
	})
	m.cacheWrite = cacheWrite

	m.cacheRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "cache_hit_ratio",
		Help:      "Hits over total cache lookups",
	})

	m.cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "cache_hits_total",
		Help:      "Cache hit count",
	})

	m.cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "cache_misses_total",
		Help:      "Cache miss count",
	})

	m.dbDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "db_query_duration_seconds",
		Help:      "Database query latency by label",
		Buckets:   prometheus.DefBuckets,
	}, []string{"query"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "goroutines",
		Help:      "Live goroutine count",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	m.registry.MustRegister(
		m.httpDuration, m.httpTotal,
		cacheLookup, cacheWrite, m.cacheRatio, m.cacheHits, m.cacheMisses,
		m.dbDuration, goroutines,
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// Handler serves the scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.httpTotal.WithLabelValues(method, path, code).Inc()
	atomic.AddUint64(&m.httpCount, 1)
	atomic.AddUint64(&m.httpNanos, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records one cache lookup and refreshes the ratio gauge.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLookup.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.hitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.missCount, 1)
	}
	if ratio, ok := m.hitRatio(); ok {
		m.cacheRatio.Set(ratio)
	}
}

// ObserveCacheWrite records one cache set.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records one labelled database query.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbDuration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.dbQueryCount, 1)
	atomic.AddUint64(&m.dbQueryNanos, uint64(duration.Nanoseconds()))
}

func (m *MetricsService) hitRatio() (float64, bool) {
	hits := atomic.LoadUint64(&m.hitCount)
	total := hits + atomic.LoadUint64(&m.missCount)
	if total == 0 {
		return 0, false
	}
	return float64(hits) / float64(total), true
}

func avgMillis(totalNanos, count uint64) float64 {
	if count == 0 {
		return 0
	}
	return float64(totalNanos) / float64(count) / float64(time.Millisecond)
}

// Snapshot condenses the aggregates for the admin system endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}

	ratio, _ := m.hitRatio()
	return models.SystemMetrics{
		CacheHitRatio:            ratio,
		CacheHits:                atomic.LoadUint64(&m.hitCount),
		CacheMisses:              atomic.LoadUint64(&m.missCount),
		RequestsTotal:            atomic.LoadUint64(&m.httpCount),
		AverageRequestDurationMs: avgMillis(atomic.LoadUint64(&m.httpNanos), atomic.LoadUint64(&m.httpCount)),
		DBQueryCount:             atomic.LoadUint64(&m.dbQueryCount),
		AverageDBQueryDurationMs: avgMillis(atomic.LoadUint64(&m.dbQueryNanos), atomic.LoadUint64(&m.dbQueryCount)),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
