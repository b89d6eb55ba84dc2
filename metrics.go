package viewload

import "github.com/prometheus/client_golang/prometheus"

// Metric label values for request outcomes.
const (
	outcomeApplied       = "applied"
	outcomeFailed        = "failed"
	outcomeInvalidTarget = "invalid_target"
	outcomeSuppressed    = "suppressed"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewload_requests_total",
			Help: "Total number of image load requests by terminal outcome.",
		},
		[]string{"outcome"},
	)

	cancellationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "viewload_cancellations_total",
			Help: "Total number of in-flight operations cancelled.",
		},
	)

	staleDropsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "viewload_stale_results_dropped_total",
			Help: "Total number of deferred steps skipped because a newer request superseded them.",
		},
	)

	fetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "viewload_fetch_duration_seconds",
			Help:    "Duration from issuing a fetch to its final delivery, in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(cancellationsTotal)
	prometheus.MustRegister(staleDropsTotal)
	prometheus.MustRegister(fetchDuration)

	// Pre-initialize outcome labels so they appear with value 0 from
	// startup, rather than only after first observation.
	for _, o := range []string{outcomeApplied, outcomeFailed, outcomeInvalidTarget, outcomeSuppressed} {
		requestsTotal.WithLabelValues(o)
	}
}
