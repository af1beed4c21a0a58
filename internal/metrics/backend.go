package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// BackendRequestDuration tracks search backend request latency.
	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "searchbridge",
			Name:      "backend_request_duration_seconds",
			Help:      "Search backend request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	// BackendRequestsTotal counts search backend requests by outcome.
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchbridge",
			Name:      "backend_requests_total",
			Help:      "Total number of search backend requests",
		},
		[]string{"endpoint", "status"},
	)

	// FuzzyFallbacksTotal counts primary queries that produced zero hits
	// and triggered the fuzzy re-query.
	FuzzyFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "searchbridge",
			Name:      "fuzzy_fallbacks_total",
			Help:      "Total number of fuzzy fallback queries issued",
		},
	)
)

// RegisterBackendMetrics registers the backend metrics explicitly (no init()).
func RegisterBackendMetrics() {
	prometheus.MustRegister(BackendRequestDuration)
	prometheus.MustRegister(BackendRequestsTotal)
	prometheus.MustRegister(FuzzyFallbacksTotal)
}
