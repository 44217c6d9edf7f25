package mesh

import (
	"tem/geometry"
)

// Node is one control volume. Mesh builds position, widths and material,
// calculator.Initializer writes gamma, spacings and coefficients,
// calculator.BoundaryConditions rewrites edge nodes and the solver owns Phi, P and Q.
type Node struct {
	ID       int
	LayerID  int
	Material string

	X, Y   float64
	DX, DY float64 // control volume widths

	DxE, DxW, DyN, DyS float64

	Gamma float64

	AE, AW, AN, AS, AP float64
	AP0                float64

	Sc, Sp float64
	D      float64
	Phi    float64
	P, Q   float64

	Boundary bool
	Corner   bool

	// own-layer inset edges the node lies on
	Sides geometry.Direction
	// outer edges of the whole mesh the node lies on
	DomainEdges geometry.Direction
	// directions whose coefficient was replaced by an interface value
	Interface geometry.Direction
	// material across each side, N, S, E, W order
	NeighborMaterial [4]string

	Col, Row int
	// arena indices of the N, S, E, W neighbours, -1 when none
	Neighbors [4]int

	// nodes of an adjacent layer off the node's grid line, coupled through
	// the side's coefficient with a lagged value; valid for LaggedSides only
	Lagged      [4]int
	LaggedSides geometry.Direction
}

func (n *Node) Neighbor(d geometry.Direction) int {
	return n.Neighbors[d.Index()]
}

// Lag returns the lagged neighbour across side d, -1 when none.
func (n *Node) Lag(d geometry.Direction) int {
	if !n.LaggedSides.Has(d) {
		return -1
	}
	return n.Lagged[d.Index()]
}

// Coupled returns the grid neighbour on side d, else the lagged one.
func (n *Node) Coupled(d geometry.Direction) int {
	if j := n.Neighbor(d); j >= 0 {
		return j
	}
	return n.Lag(d)
}

func (n *Node) Coefficient(d geometry.Direction) float64 {
	switch d {
	case geometry.North:
		return n.AN
	case geometry.South:
		return n.AS
	case geometry.East:
		return n.AE
	case geometry.West:
		return n.AW
	}
	return 0
}

func (n *Node) coefficient(d geometry.Direction) *float64 {
	switch d {
	case geometry.North:
		return &n.AN
	case geometry.South:
		return &n.AS
	case geometry.East:
		return &n.AE
	case geometry.West:
		return &n.AW
	}
	return nil
}

func (n *Node) Spacing(d geometry.Direction) float64 {
	switch d {
	case geometry.North:
		return n.DyN
	case geometry.South:
		return n.DyS
	case geometry.East:
		return n.DxE
	case geometry.West:
		return n.DxW
	}
	return 0
}

func (n *Node) spacing(d geometry.Direction) *float64 {
	switch d {
	case geometry.North:
		return &n.DyN
	case geometry.South:
		return &n.DyS
	case geometry.East:
		return &n.DxE
	case geometry.West:
		return &n.DxW
	}
	return nil
}

// Face is the control volume face length normal to d.
func (n *Node) Face(d geometry.Direction) float64 {
	if d.Vertical() {
		return n.DX
	}
	return n.DY
}

// Position returns the node coordinate along the axis of d.
func (n *Node) Position(d geometry.Direction) float64 {
	if d.Vertical() {
		return n.Y
	}
	return n.X
}

// Across returns the node coordinate perpendicular to the axis of d.
func (n *Node) Across(d geometry.Direction) float64 {
	if d.Vertical() {
		return n.X
	}
	return n.Y
}

// Off is the sum of the four neighbour coefficients.
func (n *Node) Off() float64 {
	return n.AE + n.AW + n.AN + n.AS
}

func (n *Node) Volume() float64 {
	return n.DX * n.DY
}
