package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "search_requests_total",
			Help:      "Total number of search calls by category and outcome",
		},
		[]string{"category", "outcome"}, // outcome: "hit" / "miss" / "error"
	)

	ExecutorDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docsearch",
			Name:      "search_executor_duration_seconds",
			Help:      "Search backend round-trip duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"driver"},
	)

	ExecutorErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "search_executor_errors_total",
			Help:      "Search backend failures swallowed at the execution boundary",
		},
		[]string{"driver", "reason"}, // reason: "breaker_open" / "index_not_found" / "bad_query" / "other"
	)

	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "docsearch",
			Name:      "search_breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"driver"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(ExecutorDuration)
	prometheus.MustRegister(ExecutorErrorsTotal)
	prometheus.MustRegister(BreakerState)
	searchMetricsRegistered = true
}
