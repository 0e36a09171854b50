package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/course-planner-api/internal/models"
)

const metricsNamespace = "course_planner"

type httpCollectors struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

type cacheCollectors struct {
	lookup   prometheus.Histogram
	write    prometheus.Histogram
	hitRatio prometheus.Gauge
	results  *prometheus.CounterVec
}

type plannerCollectors struct {
	generated   *prometheus.CounterVec
	engine      prometheus.Histogram
	terms       prometheus.Histogram
	dropped     prometheus.Counter
	underFilled prometheus.Counter
	catalogLoad *prometheus.HistogramVec
	catalogSize *prometheus.GaugeVec
}

// counters back Snapshot without scraping the registry.
type counters struct {
	cacheHits       atomic.Uint64
	cacheMisses     atomic.Uint64
	requests        atomic.Uint64
	requestNanos    atomic.Uint64
	catalogLoads    atomic.Uint64
	catalogLoadNano atomic.Uint64
	plans           atomic.Uint64
}

// MetricsService owns the Prometheus registry and the counters behind the summary endpoint.
type MetricsService struct {
	handler http.Handler
	http    httpCollectors
	cache   cacheCollectors
	planner plannerCollectors
	totals  counters
}

// NewMetricsService registers every collector on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		http: httpCollectors{
			duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: metricsNamespace, Subsystem: "http", Name: "request_duration_seconds",
				Help: "HTTP request latency", Buckets: prometheus.DefBuckets,
			}, []string{"method", "path", "status"}),
			total: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace, Subsystem: "http", Name: "requests_total",
				Help: "HTTP requests served",
			}, []string{"method", "path", "status"}),
		},
		cache: cacheCollectors{
			lookup: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: metricsNamespace, Subsystem: "cache", Name: "lookup_seconds",
				Help: "Plan cache lookup latency", Buckets: prometheus.DefBuckets,
			}),
			write: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: metricsNamespace, Subsystem: "cache", Name: "write_seconds",
				Help: "Plan cache write latency", Buckets: prometheus.DefBuckets,
			}),
			hitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: metricsNamespace, Subsystem: "cache", Name: "hit_ratio",
				Help: "Hits over total lookups since start",
			}),
			results: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace, Subsystem: "cache", Name: "lookups_total",
				Help: "Plan cache lookups by result",
			}, []string{"result"}),
		},
		planner: plannerCollectors{
			generated: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace, Subsystem: "planner", Name: "plans_generated_total",
				Help: "Multi-term plans generated, by termination state",
			}, []string{"termination"}),
			engine: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: metricsNamespace, Subsystem: "planner", Name: "generation_duration_seconds",
				Help:    "Time spent in the planning engine per request",
				Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
			}),
			terms: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: metricsNamespace, Subsystem: "planner", Name: "terms_per_plan",
				Help: "Number of terms produced per plan", Buckets: prometheus.LinearBuckets(1, 2, 8),
			}),
			dropped: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: metricsNamespace, Subsystem: "planner", Name: "dropped_courses_total",
				Help: "Selected courses left out of a term because no time slot was free",
			}),
			underFilled: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: metricsNamespace, Subsystem: "planner", Name: "underfilled_terms_total",
				Help: "Non-empty terms below the minimum unit load",
			}),
			catalogLoad: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: metricsNamespace, Subsystem: "planner", Name: "catalog_load_seconds",
				Help: "Time to load candidate courses, by source", Buckets: prometheus.DefBuckets,
			}, []string{"source"}),
			catalogSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: metricsNamespace, Subsystem: "planner", Name: "catalog_courses",
				Help: "Candidate courses in the most recent load, by source",
			}, []string{"source"}),
		},
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace, Name: "goroutines",
		Help: "Goroutines currently running",
	}, func() float64 { return float64(runtime.NumGoroutine()) })

	registry.MustRegister(
		m.http.duration, m.http.total,
		m.cache.lookup, m.cache.write, m.cache.hitRatio, m.cache.results,
		m.planner.generated, m.planner.engine, m.planner.terms, m.planner.dropped,
		m.planner.underFilled, m.planner.catalogLoad, m.planner.catalogSize,
		goroutines,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
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
	m.http.duration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.http.total.WithLabelValues(method, path, code).Inc()
	m.totals.requests.Add(1)
	m.totals.requestNanos.Add(uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a plan cache lookup and refreshes the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cache.lookup.Observe(duration.Seconds())
	if hit {
		m.cache.results.WithLabelValues("hit").Inc()
		m.totals.cacheHits.Add(1)
	} else {
		m.cache.results.WithLabelValues("miss").Inc()
		m.totals.cacheMisses.Add(1)
	}
	m.cache.hitRatio.Set(ratio(m.totals.cacheHits.Load(), m.totals.cacheMisses.Load()))
}

// ObserveCacheWrite records a plan cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cache.write.Observe(duration.Seconds())
}

// ObserveCatalogLoad records how candidate courses reached the engine.
func (m *MetricsService) ObserveCatalogLoad(source string, courses int, duration time.Duration) {
	if m == nil {
		return
	}
	m.planner.catalogLoad.WithLabelValues(source).Observe(duration.Seconds())
	m.planner.catalogSize.WithLabelValues(source).Set(float64(courses))
	if source != "inline" {
		m.totals.catalogLoads.Add(1)
		m.totals.catalogLoadNano.Add(uint64(duration.Nanoseconds()))
	}
}

// ObservePlan records one engine run.
func (m *MetricsService) ObservePlan(plan models.MultiTermPlan, minUnits int, duration time.Duration) {
	if m == nil {
		return
	}
	m.planner.generated.WithLabelValues(string(plan.Termination)).Inc()
	m.planner.engine.Observe(duration.Seconds())
	m.planner.terms.Observe(float64(len(plan.Terms)))
	for _, term := range plan.Terms {
		if n := len(term.Dropped); n > 0 {
			m.planner.dropped.Add(float64(n))
		}
		if term.TotalUnits > 0 && term.TotalUnits < minUnits {
			m.planner.underFilled.Inc()
		}
	}
	m.totals.plans.Add(1)
}

// Snapshot returns aggregated metrics for the summary endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits, misses := m.totals.cacheHits.Load(), m.totals.cacheMisses.Load()
	requests := m.totals.requests.Load()
	loads := m.totals.catalogLoads.Load()

	return models.SystemMetrics{
		CacheHitRatio:            ratio(hits, misses),
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: averageMillis(m.totals.requestNanos.Load(), requests),
		CatalogLoads:             loads,
		AverageCatalogLoadMs:     averageMillis(m.totals.catalogLoadNano.Load(), loads),
		PlansGenerated:           m.totals.plans.Load(),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

func ratio(hits, misses uint64) float64 {
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

func averageMillis(totalNanos, count uint64) float64 {
	if count == 0 {
		return 0
	}
	return float64(totalNanos) / float64(count) / float64(time.Millisecond)
}
