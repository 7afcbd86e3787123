package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the timetable API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	lessonWrites    *prometheus.CounterVec
	conflicts       *prometheus.CounterVec
	batchDuration   *prometheus.HistogramVec
	batchEntries    *prometheus.CounterVec
	registryLoads   *prometheus.CounterVec
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by result",
	}, []string{"result"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	lessonWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_lesson_writes_total",
		Help: "Lesson entry writes by operation and result",
	}, []string{"operation", "result"})

	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_conflicts_total",
		Help: "Rejected placements by conflict reason",
	}, []string{"reason"})

	batchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_batch_duration_seconds",
		Help:    "Wall time of bulk lesson batches",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"kind", "state"})

	batchEntries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_batch_entries_total",
		Help: "Bulk batch entries by outcome",
	}, []string{"kind", "outcome"})

	registryLoads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_registry_loads_total",
		Help: "School configuration snapshot loads by source",
	}, []string{"source"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLookups, cacheLatency, lessonWrites, conflicts, batchDuration, batchEntries, registryLoads, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLookups:    cacheLookups,
		cacheLatency:    cacheLatency,
		lessonWrites:    lessonWrites,
		conflicts:       conflicts,
		batchDuration:   batchDuration,
		batchEntries:    batchEntries,
		registryLoads:   registryLoads,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// RecordLessonWrite counts a single-entry write.
func (m *MetricsService) RecordLessonWrite(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.lessonWrites.WithLabelValues(operation, result).Inc()
}

// RecordConflict counts a rejected placement.
func (m *MetricsService) RecordConflict(reason models.ConflictReason) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(string(reason)).Inc()
}

// ObserveBatch records the outcome of a finished batch.
func (m *MetricsService) ObserveBatch(result models.BatchResult, duration time.Duration) {
	if m == nil {
		return
	}
	m.batchDuration.WithLabelValues(result.Kind, string(result.State)).Observe(duration.Seconds())
	m.batchEntries.WithLabelValues(result.Kind, "succeeded").Add(float64(result.Succeeded))
	m.batchEntries.WithLabelValues(result.Kind, "failed").Add(float64(result.Failed))
}

// RecordRegistryLoad counts snapshot loads from the cache or the backend.
func (m *MetricsService) RecordRegistryLoad(source string) {
	if m == nil {
		return
	}
	m.registryLoads.WithLabelValues(source).Inc()
}
