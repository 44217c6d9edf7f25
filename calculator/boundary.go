package calculator

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"tem/geometry"
	"tem/mesh"
)

// Kind of an outer boundary.
type Kind int

const (
	Adiabatic   Kind = iota // zero flux
	Temperature             // prescribed temperature
	Convection              // h·(T∞ - T)
)

func (k Kind) String() string {
	switch k {
	case Adiabatic:
		return "adiabatic"
	case Temperature:
		return "temperature"
	case Convection:
		return "convection"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "adiabatic", "insulated", "neumann":
		return Adiabatic, nil
	case "temperature", "dirichlet", "constant":
		return Temperature, nil
	case "convection", "convective", "robin":
		return Convection, nil
	}
	return 0, fmt.Errorf("%w: unknown boundary kind %q", ErrConfig, s)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Edge configures one outer side of the domain.
type Edge struct {
	Kind Kind    `json:"kind"`
	T    float64 `json:"t,omitempty"`     // K, Temperature
	H    float64 `json:"h,omitempty"`     // W/(m²·K), Convection
	TInf float64 `json:"t_inf,omitempty"` // K, Convection
}

// BoundaryConditions of the four outer edges.
type BoundaryConditions struct {
	South Edge `json:"south"`
	North Edge `json:"north"`
	West  Edge `json:"west"`
	East  Edge `json:"east"`
}

func (bc BoundaryConditions) Edge(d geometry.Direction) Edge {
	switch d {
	case geometry.North:
		return bc.North
	case geometry.South:
		return bc.South
	case geometry.East:
		return bc.East
	}
	return bc.West
}

func edgeName(d geometry.Direction) string {
	switch d {
	case geometry.North:
		return "north"
	case geometry.South:
		return "south"
	case geometry.East:
		return "east"
	}
	return "west"
}

// Validate reports every edge selected without its parameter.
func (bc BoundaryConditions) Validate() error {
	var errs []error
	for _, d := range geometry.Directions {
		e := bc.Edge(d)
		switch e.Kind {
		case Temperature:
			if e.T == 0 {
				errs = append(errs, &EdgeError{Edge: edgeName(d), Kind: e.Kind, Reason: "temperature not set"})
			}
		case Convection:
			if e.H == 0 || e.TInf == 0 {
				errs = append(errs, &EdgeError{Edge: edgeName(d), Kind: e.Kind, Reason: "h or T∞ not set"})
			}
		case Adiabatic:
		default:
			errs = append(errs, &EdgeError{Edge: edgeName(d), Kind: e.Kind, Reason: "unknown kind"})
		}
	}
	return errors.Join(errs...)
}

// Dirichlet returns the prescribed temperatures.
func (bc BoundaryConditions) Dirichlet() []float64 {
	var ts []float64
	for _, d := range geometry.Directions {
		if e := bc.Edge(d); e.Kind == Temperature {
			ts = append(ts, e.T)
		}
	}
	return ts
}

// Ambient returns the T∞ of the convective edges.
func (bc BoundaryConditions) Ambient() []float64 {
	var ts []float64
	for _, d := range geometry.Directions {
		if e := bc.Edge(d); e.Kind == Convection {
			ts = append(ts, e.TInf)
		}
	}
	return ts
}

// Pinned reports whether n lies on a prescribed temperature edge.
func (bc BoundaryConditions) Pinned(n *mesh.Node) bool {
	for _, d := range geometry.Directions {
		if n.DomainEdges.Has(d) && bc.Edge(d).Kind == Temperature {
			return true
		}
	}
	return false
}

// Apply rewrites every node on an outer edge. The outward coefficient is
// removed, a Dirichlet edge pins the node, otherwise AP and d collect the
// convective exchange of each edge the node lies on. Applying the same
// conditions twice gives the same coefficients.
func (bc BoundaryConditions) Apply(m *mesh.Mesh, logger log.FieldLogger) (int, error) {
	if err := bc.Validate(); err != nil {
		return 0, err
	}
	if logger == nil {
		logger = m.Logger()
	}
	logger = logger.WithField("phase", "boundary")

	touched := 0
	for idx := range m.Nodes {
		n := &m.Nodes[idx]
		if n.DomainEdges == 0 {
			continue
		}
		touched++

		var (
			pinned   bool
			pinT     float64
			exchange float64 // Σ h·face
			ambient  float64 // Σ h·face·T∞
		)
		for _, d := range geometry.Directions {
			if !n.DomainEdges.Has(d) {
				continue
			}
			m.SetCoefficient(idx, d, 0)
			e := bc.Edge(d)
			switch e.Kind {
			case Temperature:
				if !pinned {
					pinned, pinT = true, e.T
				}
			case Convection:
				exchange += e.H * n.Face(d)
				ambient += e.H * n.Face(d) * e.TInf
			}
		}

		if pinned {
			for _, d := range geometry.Directions {
				m.SetCoefficient(idx, d, 0)
			}
			n.AP = n.Off() + 1
			n.D = pinT
			n.Phi = pinT
			continue
		}
		m.SetAP(idx, n.Off()+exchange-n.Sp*n.Volume())
		n.D = ambient + n.Sc*n.Volume()
	}

	logger.WithFields(log.Fields{
		"nodes": touched,
		"south": bc.South.Kind,
		"north": bc.North.Kind,
		"west":  bc.West.Kind,
		"east":  bc.East.Kind,
	}).Info("boundary conditions applied")
	return touched, nil
}
