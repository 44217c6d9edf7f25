package calculator

import (
	"errors"
	"fmt"
)

var (
	ErrConfig         = errors.New("invalid configuration")
	ErrBoundaryConfig = errors.New("boundary condition defined but not set")
	ErrInitialization = errors.New("node initialization failed")
	ErrNotConverged   = errors.New("solver did not converge")
)

// ConvergenceError is returned when the iteration cap is reached. The mesh
// keeps the last iterate, a retry with a looser tolerance or a higher cap may
// succeed.
type ConvergenceError struct {
	Iterations int
	MaxChange  float64
	Tolerance  float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("no convergence after %d iterations: max change %.3e K > tolerance %.3e K",
		e.Iterations, e.MaxChange, e.Tolerance)
}

func (e *ConvergenceError) Unwrap() error {
	return ErrNotConverged
}

// NodeError ties an initialization failure to a node.
type NodeError struct {
	Node     int
	Material string
	Err      error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %d (%s): %v", e.Node, e.Material, e.Err)
}

func (e *NodeError) Unwrap() []error {
	return []error{ErrInitialization, e.Err}
}

// EdgeError names the edge whose boundary condition is incomplete.
type EdgeError struct {
	Edge   string
	Kind   Kind
	Reason string
}

func (e *EdgeError) Error() string {
	return fmt.Sprintf("%s edge (%s): %s", e.Edge, e.Kind, e.Reason)
}

func (e *EdgeError) Unwrap() error {
	return ErrBoundaryConfig
}
