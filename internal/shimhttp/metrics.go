package shimhttp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors SHIM publishes at /metrics.
type Metrics struct {
	ExecutionsTotal   *prometheus.CounterVec
	SandboxDuration   *prometheus.HistogramVec
	CESHistogram      prometheus.Histogram
	RateLimitRejected *prometheus.CounterVec
}

// NewMetrics registers a fresh Metrics set against reg. Callers that need
// isolated metrics per test should pass a prometheus.NewRegistry() instead
// of the global default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ExecutionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "coachcore_executions_total",
			Help: "Total number of code executions, by language and terminal status.",
		}, []string{"language", "status"}),
		SandboxDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coachcore_sandbox_duration_seconds",
			Help:    "Wall-clock duration of sandboxed executions, by language.",
			Buckets: prometheus.DefBuckets,
		}, []string{"language"}),
		CESHistogram: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "coachcore_ces_score",
			Help:    "Distribution of computed Cognitive Engagement Scores.",
			Buckets: []float64{-1, -0.5, 0, 0.2, 0.5, 1},
		}),
		RateLimitRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "coachcore_rate_limit_rejected_total",
			Help: "Requests rejected by the rate limiter, by bucket.",
		}, []string{"bucket"}),
	}
}
