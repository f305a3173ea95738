// Package metrics exposes Prometheus instrumentation for solve runs:
// nodes explored, backtracks, and solve duration. Wiring it is
// optional; the engine itself publishes no observable intermediate
// state, so the CLI records these counters only after a Solve call
// returns.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder wraps the collectors a single solve run updates.
type Recorder struct {
	registry *prometheus.Registry

	nodesExplored prometheus.Counter
	backtracks    prometheus.Counter
	solveSeconds  prometheus.Histogram
	infeasible    prometheus.Counter
}

// NewRecorder registers the solve-run collectors on a fresh registry.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	nodesExplored := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_nodes_explored_total",
		Help: "Total decision-tree nodes created across all solves.",
	})
	backtracks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_backtracks_total",
		Help: "Total failed decision nodes (backtracks) across all solves.",
	})
	solveSeconds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_solve_duration_seconds",
		Help:    "Wall-clock duration of a single solve.",
		Buckets: prometheus.DefBuckets,
	})
	infeasible := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_infeasible_total",
		Help: "Total solves that proved no solution exists.",
	})

	registry.MustRegister(nodesExplored, backtracks, solveSeconds, infeasible)

	return &Recorder{
		registry:      registry,
		nodesExplored: nodesExplored,
		backtracks:    backtracks,
		solveSeconds:  solveSeconds,
		infeasible:    infeasible,
	}
}

// Observe records one finished solve's metrics.
func (r *Recorder) Observe(nodesExplored, backtracks int, seconds float64, ok bool) {
	r.nodesExplored.Add(float64(nodesExplored))
	r.backtracks.Add(float64(backtracks))
	r.solveSeconds.Observe(seconds)
	if !ok {
		r.infeasible.Inc()
	}
}

// Handler returns the /metrics scrape handler for this recorder's
// registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
