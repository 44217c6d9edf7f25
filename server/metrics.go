package server

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"tem/calculator"
)

// Metrics are registered on a private registry served at /metrics.
type Metrics struct {
	Registry *prometheus.Registry

	runs        *prometheus.CounterVec
	iterations  prometheus.Histogram
	duration    prometheus.Histogram
	nodes       prometheus.Gauge
	connections prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tem_runs_total",
				Help: "Solver runs by outcome",
			},
			[]string{"status"},
		),
		iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tem_solver_iterations",
			Help:    "Iterations per solver run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "tem_run_duration_seconds",
			Help: "Wall time of a run from mesh generation to convergence",
		}),
		nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tem_mesh_nodes",
			Help: "Nodes in the last meshed layout",
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tem_ws_connections",
			Help: "Open websocket connections",
		}),
	}
	m.Registry.MustRegister(m.runs, m.iterations, m.duration, m.nodes, m.connections)
	return m
}

func outcome(err error) string {
	var ce *calculator.ConvergenceError
	switch {
	case err == nil:
		return "converged"
	case errors.As(err, &ce):
		return "not_converged"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	}
	return "error"
}

func (m *Metrics) observe(res *calculator.Result, err error) {
	m.runs.WithLabelValues(outcome(err)).Inc()
	if res == nil || res.Mesh == nil {
		return
	}
	m.nodes.Set(float64(len(res.Mesh.Nodes)))
	if res.Solve.Iterations > 0 {
		m.iterations.Observe(float64(res.Solve.Iterations))
		m.duration.Observe(res.Elapsed.Seconds())
	}
}
