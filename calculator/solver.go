package calculator

import (
	"context"
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"tem/deque"
	"tem/geometry"
	"tem/mesh"
)

const defaultTemperature = 300.0

// SolveResult summarises one Solve call.
type SolveResult struct {
	Iterations int
	MaxChange  float64
	Converged  bool
	Initial    float64
	Residuals  []float64 // most recent max changes, oldest first
	Frozen     int       // nodes skipped because AP == 0
	Elapsed    time.Duration
	SweepTime  time.Duration
}

// Solver relaxes the assembled system with alternating line sweeps: a
// column sweep (TDMA along y, east/west neighbours lagged) then a row sweep
// (TDMA along x, north/south neighbours lagged). Lagged values are read from
// a snapshot taken before each sweep so the lines of one sweep are
// independent and run on the executor.
type Solver struct {
	tolerance float64
	maxIter   int
	workers   int
	initial   float64
	window    int

	reporter Reporter
	log      log.FieldLogger
}

func NewSolver(cfg Config, reporter Reporter, logger log.FieldLogger) *Solver {
	if reporter == nil {
		reporter = nopReporter{}
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	window := cfg.History
	if window <= 0 {
		window = 64
	}
	return &Solver{
		tolerance: cfg.Tolerance,
		maxIter:   cfg.MaxIterations,
		workers:   cfg.Workers,
		initial:   cfg.InitialTemperature,
		window:    window,
		reporter:  reporter,
		log:       logger.WithField("phase", "solve"),
	}
}

// InitialGuess is the configured temperature, else the mean prescribed
// temperature, else the mean ambient temperature.
func InitialGuess(configured float64, bc BoundaryConditions) float64 {
	if configured > 0 {
		return configured
	}
	if ts := bc.Dirichlet(); len(ts) > 0 {
		return stat.Mean(ts, nil)
	}
	if ts := bc.Ambient(); len(ts) > 0 {
		return stat.Mean(ts, nil)
	}
	return defaultTemperature
}

// Solve iterates until the largest temperature change of a full iteration
// drops below the tolerance. Reaching the iteration cap returns a
// *ConvergenceError together with the partial result.
func (s *Solver) Solve(ctx context.Context, m *mesh.Mesh, bc BoundaryConditions) (SolveResult, error) {
	start := time.Now()
	res := SolveResult{Initial: InitialGuess(s.initial, bc)}
	if s.tolerance <= 0 || s.maxIter <= 0 {
		return res, fmt.Errorf("%w: tolerance %g, max iterations %d", ErrConfig, s.tolerance, s.maxIter)
	}

	for idx := range m.Nodes {
		if !bc.Pinned(&m.Nodes[idx]) {
			m.Nodes[idx].Phi = res.Initial
		}
	}

	history := deque.NewArrDeque(s.window)
	exec := newExecutor(s.workers)
	defer exec.stop()
	for idx := range m.Nodes {
		if m.Nodes[idx].AP == 0 {
			res.Frozen++
		}
	}

	prev := m.Field()
	snap := make([]float64, len(m.Nodes))
	lastReport := -1

	s.reporter.Status("Solving")
	for res.Iterations < s.maxIter {
		if err := ctx.Err(); err != nil {
			res.Residuals = history.Values()
			res.Elapsed = time.Since(start)
			return res, err
		}

		copy(snap, prev)
		res.SweepTime += exec.dispatchTask(0, len(m.Columns), func(c int) {
			s.solveLine(m, m.Columns[c], geometry.North, geometry.South, snap)
		})
		copy(snap, m.Field())
		res.SweepTime += exec.dispatchTask(0, len(m.Rows), func(r int) {
			s.solveLine(m, m.Rows[r], geometry.East, geometry.West, snap)
		})
		res.Iterations++

		phi := m.Field()
		res.MaxChange = floats.Distance(phi, prev, math.Inf(1))
		history.Push(res.MaxChange)
		prev = phi

		if p := res.Iterations * 100 / s.maxIter; p != lastReport {
			lastReport = p
			s.reporter.Progress(p)
		}
		s.log.WithFields(log.Fields{"iteration": res.Iterations, "max change": res.MaxChange}).Debug("sweep done")

		if res.MaxChange < s.tolerance {
			res.Converged = true
			break
		}
	}

	res.Residuals = history.Values()
	res.Elapsed = time.Since(start)
	if res.Frozen > 0 {
		s.log.WithField("nodes", res.Frozen).Warn("nodes with AP = 0 kept their value")
	}

	fields := log.Fields{
		"iterations": res.Iterations,
		"max change": res.MaxChange,
		"elapsed":    res.Elapsed,
	}
	if !res.Converged {
		s.log.WithFields(fields).Warn("solver stopped at iteration cap")
		return res, &ConvergenceError{Iterations: res.Iterations, MaxChange: res.MaxChange, Tolerance: s.tolerance}
	}
	s.reporter.Progress(100)
	s.log.WithFields(fields).Info("solver converged")
	return res, nil
}

// solveLine applies the Thomas algorithm along line, fwd being the direction
// of increasing index. Neighbours off the line, lagged ones included, are
// read from snap.
func (s *Solver) solveLine(m *mesh.Mesh, line []int, fwd, bwd geometry.Direction, snap []float64) {
	if len(line) == 0 {
		return
	}
	cross := [2]geometry.Direction{geometry.East, geometry.West}
	if !fwd.Vertical() {
		cross = [2]geometry.Direction{geometry.North, geometry.South}
	}

	var pPrev, qPrev float64
	last := len(line) - 1
	for k, idx := range line {
		n := &m.Nodes[idx]

		ab := 0.0
		if k > 0 {
			ab = n.Coefficient(bwd)
		}
		denom := n.AP - ab*pPrev
		if n.AP == 0 || denom == 0 {
			n.P, n.Q = 0, snap[idx]
			pPrev, qPrev = n.P, n.Q
			continue
		}

		c := n.D
		for _, d := range cross {
			if j := n.Coupled(d); j >= 0 {
				c += n.Coefficient(d) * snap[j]
			}
		}
		// line ends may face a node of another layer off this line
		if j := n.Lag(bwd); k == 0 && j >= 0 {
			c += n.Coefficient(bwd) * snap[j]
		}
		if j := n.Lag(fwd); k == last && j >= 0 {
			c += n.Coefficient(fwd) * snap[j]
		}
		af := 0.0
		if k < last {
			af = n.Coefficient(fwd)
		}
		n.P = af / denom
		n.Q = (c + ab*qPrev) / denom
		pPrev, qPrev = n.P, n.Q
	}

	m.Nodes[line[last]].Phi = m.Nodes[line[last]].Q
	for k := last - 1; k >= 0; k-- {
		n := &m.Nodes[line[k]]
		n.Phi = n.P*m.Nodes[line[k+1]].Phi + n.Q
	}
}
