package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors exposed on /metrics.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	FormationRuns       *prometheus.CounterVec
	FormationDuration   prometheus.Histogram
	FormationScore      prometheus.Histogram
	CacheHits           *prometheus.CounterVec
	RateLimitRejections prometheus.Counter
}

// NewMetrics creates and registers all collectors on the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "elevate",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "elevate",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),

		FormationRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "elevate",
			Name:      "formation_runs_total",
			Help:      "Team formation runs by outcome.",
		}, []string{"outcome"}),

		FormationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "elevate",
			Name:      "formation_duration_seconds",
			Help:      "Wall time of team formation runs.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 45},
		}),

		FormationScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "elevate",
			Name:      "formation_score",
			Help:      "Average per-team score of completed formation runs.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),

		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "elevate",
			Name:      "cache_requests_total",
			Help:      "Cache lookups by result.",
		}, []string{"result"}),

		RateLimitRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "elevate",
			Name:      "rate_limit_rejections_total",
			Help:      "Requests rejected by the tenant rate limiter.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.FormationRuns,
		m.FormationDuration,
		m.FormationScore,
		m.CacheHits,
		m.RateLimitRejections,
	)
	return m
}
