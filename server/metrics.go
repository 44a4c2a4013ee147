package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the resolver service
type Metrics struct {
	ResolutionsTotal   *prometheus.CounterVec
	ResolutionDuration *prometheus.HistogramVec
	UpstreamTotal      *prometheus.CounterVec
	UpstreamDuration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		ResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tmdb_resolver_resolutions_total",
				Help: "Total number of movie resolutions",
			},
			[]string{"kind", "outcome"},
		),
		ResolutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tmdb_resolver_resolution_duration_seconds",
				Help:    "Time spent resolving a movie",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		UpstreamTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tmdb_resolver_upstream_requests_total",
				Help: "Total number of requests to TMDB",
			},
			[]string{"endpoint", "outcome"},
		),
		UpstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tmdb_resolver_upstream_request_duration_seconds",
				Help:    "Latency of requests to TMDB",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
	}

	reg.MustRegister(
		metrics.ResolutionsTotal,
		metrics.ResolutionDuration,
		metrics.UpstreamTotal,
		metrics.UpstreamDuration,
	)

	return metrics
}

// RecordResolution counts a finished resolution
func (m *Metrics) RecordResolution(kind, outcome string, elapsed time.Duration) {
	m.ResolutionsTotal.WithLabelValues(kind, outcome).Inc()
	m.ResolutionDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ObserveUpstream implements tmdb.RequestObserver
func (m *Metrics) ObserveUpstream(endpoint, outcome string, elapsed time.Duration) {
	m.UpstreamTotal.WithLabelValues(endpoint, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
