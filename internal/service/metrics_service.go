package service

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/supplenze/supplenze-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the import
// pipeline and the substitute matcher.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	importTotal     *prometheus.CounterVec
	importDuration  prometheus.Histogram
	matcherDuration prometheus.Histogram
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// NewMetricsService registers the core collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	importTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_imports_total",
		Help: "Total timetable import calls by mode and outcome",
	}, []string{"mode", "outcome"})

	importDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_import_duration_seconds",
		Help:    "Duration of the full normalize-dedupe-write sequence",
		Buckets: prometheus.DefBuckets,
	})

	matcherDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "substitute_matcher_duration_seconds",
		Help:    "Duration of substitute candidate lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Cache lookups that found an entry",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Cache lookups that found nothing",
	})

	registry.MustRegister(importTotal, importDuration, matcherDuration, cacheHits, cacheMisses)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		importTotal:     importTotal,
		importDuration:  importDuration,
		matcherDuration: matcherDuration,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
	}
}

// RecordImport counts one import call and observes its duration.
func (s *MetricsService) RecordImport(mode models.ImportMode, outcome string, duration time.Duration) {
	if s == nil {
		return
	}
	s.importTotal.WithLabelValues(string(mode), outcome).Inc()
	s.importDuration.Observe(duration.Seconds())
}

// ObserveMatcher records the duration of one candidate lookup.
func (s *MetricsService) ObserveMatcher(duration time.Duration) {
	if s == nil {
		return
	}
	s.matcherDuration.Observe(duration.Seconds())
}

// RecordCacheOperation counts a cache hit or miss.
func (s *MetricsService) RecordCacheOperation(hit bool) {
	if s == nil {
		return
	}
	if hit {
		s.cacheHits.Inc()
	} else {
		s.cacheMisses.Inc()
	}
}

// Handler exposes the registry for the /metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}
