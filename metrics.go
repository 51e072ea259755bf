package resolver

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics.go instruments the Selector facade with Prometheus collectors,
// grounded on the heavy client_golang usage across the rest of the
// retrieval pack (the histogram/counter/counter-vector trio mirrors the
// shape of that pack's own reconcile-latency and outcome-count metrics) and
// applied to the one concern spec.md §4.3/§5 flags as performance-critical:
// a long-running host process embedding this solver can observe its health
// without instrumenting call sites itself.
var (
	solveDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "solve_duration_seconds",
		Help:    "Wall-clock duration of Selector.FindSolution calls.",
		Buckets: prometheus.DefBuckets,
	})

	solveBacktracksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "solve_backtracks_total",
		Help: "Cumulative number of search backtracks across all solves.",
	})

	solveResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solve_results_total",
		Help: "Count of Selector.FindSolution outcomes by kind.",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(solveDurationSeconds, solveBacktracksTotal, solveResultsTotal)
}

type solveTimer struct {
	start time.Time
}

func observeSolveStart() solveTimer {
	return solveTimer{start: time.Now()}
}

func (t solveTimer) observeDuration() {
	solveDurationSeconds.Observe(time.Since(t.start).Seconds())
}
