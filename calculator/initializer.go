package calculator

import (
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"tem/geometry"
	"tem/material"
	"tem/mesh"
)

// Initializer assigns conductivities and assembles the influence
// coefficients, replacing them with harmonic-mean interface values where a
// node faces another layer.
type Initializer struct {
	catalog  *material.Catalog
	step     float64
	maxSteps int
	log      log.FieldLogger

	// BoundaryNodes counted by the last Initialize.
	BoundaryNodes int
}

func NewInitializer(catalog *material.Catalog, cfg Config, logger log.FieldLogger) *Initializer {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Initializer{
		catalog:  catalog,
		step:     cfg.ProbeStep,
		maxSteps: cfg.MaxProbeSteps,
		log:      logger.WithField("phase", "initialize"),
	}
}

func (in *Initializer) Initialize(m *mesh.Mesh) error {
	if err := in.assignMaterials(m); err != nil {
		return err
	}
	for idx := range m.Nodes {
		in.baseCoefficients(m, idx)
	}

	in.BoundaryNodes = 0
	corrected := 0
	// layer found beyond each side of a boundary node
	adjacent := make([][4]*geometry.Layer, len(m.Nodes))
	for idx := range m.Nodes {
		n := &m.Nodes[idx]
		if !n.Boundary {
			continue
		}
		in.BoundaryNodes++
		own := m.Layer(idx)
		for _, d := range geometry.Directions {
			if !n.Sides.Has(d) || n.DomainEdges.Has(d) {
				continue
			}
			neighbor, ok := in.probe(m, own, n, d)
			if !ok {
				continue
			}
			adjacent[idx][d.Index()] = neighbor
			if in.correct(m, idx, d, neighbor) {
				corrected++
			}
		}
	}

	byLayer := m.LayerNodes()
	coupled, insulated := 0, 0
	for idx := range m.Nodes {
		n := &m.Nodes[idx]
		for _, d := range geometry.Directions {
			if n.Neighbor(d) >= 0 || n.DomainEdges.Has(d) || n.Coefficient(d) == 0 {
				continue
			}
			var candidates []int
			if l := adjacent[idx][d.Index()]; l != nil {
				candidates = byLayer[l.ID]
			}
			if j := nearest(m, candidates, idx, d); j >= 0 {
				m.SetLag(idx, d, j)
				coupled++
				continue
			}
			in.log.WithFields(log.Fields{"node": n.ID, "dir": d}).Debug("nothing beyond, side insulated")
			m.SetCoefficient(idx, d, 0)
			insulated++
		}
		m.SetAP(idx, n.Off()-n.Sp*n.Volume())
		n.D = n.Sc * n.Volume()
	}

	in.log.WithFields(log.Fields{
		"boundary nodes": in.BoundaryNodes,
		"interfaces":     corrected,
		"off grid":       coupled,
		"insulated":      insulated,
	}).Info("nodes initialized")
	return nil
}

// nearest picks among candidates the node closest to the point one spacing
// beyond side d of node idx, the first in arena order on ties.
func nearest(m *mesh.Mesh, candidates []int, idx int, d geometry.Direction) int {
	n := &m.Nodes[idx]
	tx, ty := n.X, n.Y
	if d.Vertical() {
		ty += d.Sign() * n.Spacing(d)
	} else {
		tx += d.Sign() * n.Spacing(d)
	}
	best, bestDist := -1, math.Inf(1)
	for _, j := range candidates {
		c := &m.Nodes[j]
		if dist := math.Hypot(c.X-tx, c.Y-ty); dist < bestDist {
			best, bestDist = j, dist
		}
	}
	return best
}

func (in *Initializer) assignMaterials(m *mesh.Mesh) error {
	var errs []error
	unknown := make(map[string]bool)
	for idx := range m.Nodes {
		n := &m.Nodes[idx]
		k, err := in.catalog.Conductivity(n.Material)
		if err == nil && k == 0 {
			err = fmt.Errorf("conductivity of %q is zero", n.Material)
		}
		if err != nil {
			// one error per material is enough
			if !unknown[n.Material] {
				unknown[n.Material] = true
				errs = append(errs, &NodeError{Node: n.ID, Material: n.Material, Err: err})
			}
			continue
		}
		n.Gamma = m.NonNegative(idx, "gamma", k)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	in.log.Debug("finished assigning material properties")
	return nil
}

func (in *Initializer) baseCoefficients(m *mesh.Mesh, idx int) {
	n := &m.Nodes[idx]
	for _, d := range geometry.Directions {
		s := n.Spacing(d)
		if s <= 0 {
			m.SetCoefficient(idx, d, 0)
			continue
		}
		m.SetCoefficient(idx, d, n.Gamma*n.Face(d)/s)
	}
	m.SetAP(idx, n.Off()-n.Sp*n.Volume())
}

// correct replaces the coefficient of side d with the harmonic-mean value
// towards the neighbouring layer.
func (in *Initializer) correct(m *mesh.Mesh, idx int, d geometry.Direction, neighbor *geometry.Layer) bool {
	n := &m.Nodes[idx]
	own := m.Layer(idx)
	k, err := in.catalog.Conductivity(neighbor.Material)
	if err != nil {
		in.log.WithFields(log.Fields{"node": n.ID, "dir": d, "material": neighbor.Material}).
			Error("neighbouring material not in catalog")
		return false
	}

	spacing := in.spacing(m, own, n, d)
	if spacing <= 0 {
		in.log.WithFields(log.Fields{"node": n.ID, "dir": d}).Warn("no interface spacing found, keeping layer pitch")
		spacing = n.Spacing(d)
	}

	n.NeighborMaterial[d.Index()] = neighbor.Material
	n.Interface |= d
	m.SetSpacing(idx, d, spacing)
	m.SetCoefficient(idx, d, interfaceCoefficient(n.Gamma, k, n.Face(d), spacing))
	return true
}

// probe walks outward from the node's own layer face in fixed steps until the
// point falls inside another layer. Several layers containing the point are
// ordered by distance between their centre and the point, then by id.
func (in *Initializer) probe(m *mesh.Mesh, own *geometry.Layer, n *mesh.Node, d geometry.Direction) (*geometry.Layer, bool) {
	across := n.Across(d)
	face := own.Face(d)
	lo, hi := m.Bounds.X0, m.Bounds.XF
	if d.Vertical() {
		lo, hi = m.Bounds.YF, m.Bounds.Y0
	}

	for s := 1; s <= in.maxSteps; s++ {
		along := face + d.Sign()*float64(s)*in.step
		if along < lo || along > hi {
			return nil, false
		}
		x, y := along, across
		if d.Vertical() {
			x, y = across, along
		}

		var best *geometry.Layer
		bestDist := math.Inf(1)
		for _, l := range m.Layers {
			if l.ID == own.ID || !l.Contains(x, y) {
				continue
			}
			cx, cy := l.Rect.Center()
			dist := math.Hypot(cx-x, cy-y)
			if dist < bestDist || (dist == bestDist && l.ID < best.ID) {
				best, bestDist = l, dist
			}
		}
		if best != nil {
			return best, true
		}
	}
	in.log.WithFields(log.Fields{"node": n.ID, "dir": d, "steps": in.maxSteps}).
		Debug("probe found no layer")
	return nil, false
}

// spacing is the distance to the nearest inset edge coordinate of another
// layer that spans the node and lies beyond the own face along d.
func (in *Initializer) spacing(m *mesh.Mesh, own *geometry.Layer, n *mesh.Node, d geometry.Direction) float64 {
	pos := n.Position(d)
	across := n.Across(d)
	face := own.Face(d)

	best := math.Inf(1)
	for _, l := range m.Layers {
		if l.ID == own.ID || !l.Spans(d, across) {
			continue
		}
		a, b := l.InsetEdges(d)
		for _, c := range [2]float64{a, b} {
			if (c-face)*d.Sign() < 0 {
				continue
			}
			best = math.Min(best, math.Abs(c-pos))
		}
	}
	if math.IsInf(best, 1) {
		return 0
	}
	return best
}
