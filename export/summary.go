package export

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"tem/calculator"
	"tem/model"
)

// Summarize collects the figures reported for a run. res may hold a
// partial result when the solver stopped early.
func Summarize(id string, res *calculator.Result, runErr error) model.Summary {
	s := model.Summary{ID: id, CreatedAt: time.Now().UTC()}
	if runErr != nil {
		s.Error = runErr.Error()
	}
	if res == nil {
		return s
	}
	s.BoundaryNodes = res.BoundaryNodes
	s.Iterations = res.Solve.Iterations
	s.MaxChange = res.Solve.MaxChange
	s.Converged = res.Solve.Converged
	s.Violations = res.Violations
	s.Elapsed = res.Elapsed
	if res.Mesh == nil || len(res.Mesh.Nodes) == 0 {
		return s
	}
	phi := res.Mesh.Field()
	s.Nodes = len(phi)
	s.Layers = len(res.Mesh.Layers)
	s.Min = floats.Min(phi)
	s.Max = floats.Max(phi)
	s.Mean = stat.Mean(phi, nil)
	return s
}
