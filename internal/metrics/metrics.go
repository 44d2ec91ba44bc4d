// Package metrics exposes Prometheus instrumentation for the analyzer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the analyzer.
type Metrics struct {
	RefreshTotal  *prometheus.CounterVec // labels: source
	RefreshErrors *prometheus.CounterVec // labels: source
	ComputeDur    prometheus.Histogram
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
	AlertsSent    prometheus.Counter
	Requests      *prometheus.CounterVec // labels: route, code

	registry *prometheus.Registry
}

// NewMetrics creates the metrics on a private registry, so several
// instances can coexist in one process.
func NewMetrics() *Metrics {
	m := &Metrics{
		RefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nepse_refresh_total",
			Help: "Total symbol price refreshes attempted",
		}, []string{"source"}),
		RefreshErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nepse_refresh_errors_total",
			Help: "Total symbol price refreshes that failed",
		}, []string{"source"}),
		ComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nepse_indicator_compute_seconds",
			Help:    "Time to compute a full indicator set for one symbol",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nepse_cache_hits_total",
			Help: "Snapshot cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nepse_cache_misses_total",
			Help: "Snapshot cache misses",
		}),
		AlertsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nepse_alerts_sent_total",
			Help: "Recommendation change alerts delivered",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nepse_http_requests_total",
			Help: "API requests by route and status code",
		}, []string{"route", "code"}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.RefreshTotal,
		m.RefreshErrors,
		m.ComputeDur,
		m.CacheHits,
		m.CacheMisses,
		m.AlertsSent,
		m.Requests,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
