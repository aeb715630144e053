// Package metrics exposes Prometheus collectors for the scheduler.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "beauty_scheduler"

var (
	once sync.Once

	solveResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "solve_results_total",
			Help:      "Count of optimizer results by status.",
		},
		[]string{"status"},
	)

	solveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solve_duration_seconds",
			Help:      "Wall time of optimizer calls.",
			Buckets:   []float64{.05, .1, .5, 1, 2, 5, 10, 30, 60},
		},
	)

	warnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_warnings_total",
			Help:      "Count of warnings raised while accepting results.",
		},
		[]string{"code"},
	)

	storeOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Count of store operations by entity, operation and outcome.",
		},
		[]string{"entity", "op", "outcome"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of API requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimizer_cache_lookups_total",
			Help:      "Optimizer result cache lookups by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(solveResults, solveDuration, warnings, storeOps, httpRequests, cacheLookups)
	})
}

func ObserveSolve(status string, elapsed time.Duration) {
	solveResults.WithLabelValues(status).Inc()
	solveDuration.Observe(elapsed.Seconds())
}

func IncWarning(code string) {
	warnings.WithLabelValues(code).Inc()
}

// IncStoreOp records a store call; err decides the outcome label.
func IncStoreOp(entity, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	storeOps.WithLabelValues(entity, op, outcome).Inc()
}

func IncCacheLookup(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
