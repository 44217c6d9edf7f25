package mesh

import (
	"errors"
	"fmt"
	"math"
	"sort"

	log "github.com/sirupsen/logrus"

	"tem/geometry"
)

var ErrEmptyMesh = errors.New("mesh has no nodes")

// Mesh owns every node. Columns group node indices by x (ascending),
// each column ordered by y. Rows group node indices by y, each ordered by x.
type Mesh struct {
	Nodes   []Node
	Columns [][]int
	Rows    [][]int
	Layers  []*geometry.Layer
	Bounds  geometry.Rect

	// count of negative assignments clamped to zero
	Violations int

	layers map[int]*geometry.Layer
	log    log.FieldLogger
}

// Build meshes every layer in order, drops nodes that coincide with an
// earlier node, sorts into columns and rows and links neighbours.
func Build(layers []*geometry.Layer, logger log.FieldLogger) (*Mesh, error) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	m := &Mesh{
		Layers: layers,
		layers: make(map[int]*geometry.Layer, len(layers)),
		log:    logger.WithField("phase", "mesh"),
	}
	if len(layers) == 0 {
		return nil, ErrEmptyMesh
	}
	m.Bounds = bounds(layers)

	generated := 0
	seen := make(map[[2]float64]struct{})
	for _, l := range layers {
		m.layers[l.ID] = l
		for i := 0; i < l.N; i++ {
			for j := 0; j < l.N; j++ {
				n := m.newNode(generated, l, i, j)
				generated++
				key := [2]float64{n.X, n.Y}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				m.Nodes = append(m.Nodes, n)
			}
		}
	}
	if len(m.Nodes) == 0 {
		return nil, ErrEmptyMesh
	}

	m.sort()
	m.link()
	m.markDomainEdges()

	m.log.WithFields(log.Fields{
		"generated":  generated,
		"duplicates": generated - len(m.Nodes),
		"nodes":      len(m.Nodes),
		"columns":    len(m.Columns),
		"rows":       len(m.Rows),
	}).Info("mesh generated")
	return m, nil
}

func bounds(layers []*geometry.Layer) geometry.Rect {
	b := geometry.Rect{X0: math.Inf(1), YF: math.Inf(1), XF: math.Inf(-1), Y0: math.Inf(-1)}
	for _, l := range layers {
		b.X0 = math.Min(b.X0, l.Rect.X0)
		b.YF = math.Min(b.YF, l.Rect.YF)
		b.XF = math.Max(b.XF, l.Rect.XF)
		b.Y0 = math.Max(b.Y0, l.Rect.Y0)
	}
	return b
}

func (m *Mesh) newNode(id int, l *geometry.Layer, i, j int) Node {
	px, py := l.NodeSpacing()
	last := l.N - 1
	n := Node{
		ID:        id,
		LayerID:   l.ID,
		Material:  l.Material,
		X:         l.X(i),
		Y:         l.Y(j),
		DX:        px,
		DY:        py,
		DxE:       px,
		DxW:       px,
		DyN:       py,
		DyS:       py,
		Boundary:  i == 0 || i == last || j == 0 || j == last,
		Corner:    (i == 0 || i == last) && (j == 0 || j == last),
		Neighbors: [4]int{-1, -1, -1, -1},
	}
	if i == 0 {
		n.Sides |= geometry.West
	}
	if i == last {
		n.Sides |= geometry.East
	}
	if j == 0 {
		n.Sides |= geometry.South
	}
	if j == last {
		n.Sides |= geometry.North
	}
	if !l.Contains(n.X, n.Y) {
		m.log.WithFields(log.Fields{"node": id, "layer": l.ID, "x": n.X, "y": n.Y}).
			Error("node outside its layer")
	}
	return n
}

func (m *Mesh) sort() {
	sort.SliceStable(m.Nodes, func(a, b int) bool {
		if m.Nodes[a].X != m.Nodes[b].X {
			return m.Nodes[a].X < m.Nodes[b].X
		}
		return m.Nodes[a].Y < m.Nodes[b].Y
	})

	m.Columns = m.Columns[:0]
	for idx := range m.Nodes {
		if idx == 0 || m.Nodes[idx].X != m.Nodes[idx-1].X {
			m.Columns = append(m.Columns, nil)
		}
		c := len(m.Columns) - 1
		m.Nodes[idx].Col = c
		m.Nodes[idx].Row = len(m.Columns[c])
		m.Columns[c] = append(m.Columns[c], idx)
	}

	byY := make(map[float64][]int)
	var ys []float64
	for _, col := range m.Columns {
		for _, idx := range col {
			y := m.Nodes[idx].Y
			if _, ok := byY[y]; !ok {
				ys = append(ys, y)
			}
			// columns are visited in x order, so each row is x ordered
			byY[y] = append(byY[y], idx)
		}
	}
	sort.Float64s(ys)
	m.Rows = make([][]int, len(ys))
	for r, y := range ys {
		m.Rows[r] = byY[y]
	}
}

// link connects adjacent nodes of a column (N/S) and of a row (E/W).
func (m *Mesh) link() {
	for _, col := range m.Columns {
		for k := 1; k < len(col); k++ {
			m.Nodes[col[k-1]].Neighbors[geometry.North.Index()] = col[k]
			m.Nodes[col[k]].Neighbors[geometry.South.Index()] = col[k-1]
		}
	}
	for _, row := range m.Rows {
		for k := 1; k < len(row); k++ {
			m.Nodes[row[k-1]].Neighbors[geometry.East.Index()] = row[k]
			m.Nodes[row[k]].Neighbors[geometry.West.Index()] = row[k-1]
		}
	}
}

// markDomainEdges flags nodes whose own layer face lies on the mesh bounds.
func (m *Mesh) markDomainEdges() {
	outer := map[geometry.Direction]float64{
		geometry.North: m.Bounds.Y0,
		geometry.South: m.Bounds.YF,
		geometry.East:  m.Bounds.XF,
		geometry.West:  m.Bounds.X0,
	}
	for idx := range m.Nodes {
		n := &m.Nodes[idx]
		l := m.layers[n.LayerID]
		for _, d := range geometry.Directions {
			if n.Sides.Has(d) && l.Face(d) == outer[d] {
				n.DomainEdges |= d
			}
		}
	}
}

// SetLag couples side d of node idx to node j of an adjacent layer.
func (m *Mesh) SetLag(idx int, d geometry.Direction, j int) {
	n := &m.Nodes[idx]
	n.Lagged[d.Index()] = j
	n.LaggedSides |= d
}

// LayerNodes groups node indices by the layer that generated them.
func (m *Mesh) LayerNodes() map[int][]int {
	byLayer := make(map[int][]int, len(m.Layers))
	for idx := range m.Nodes {
		id := m.Nodes[idx].LayerID
		byLayer[id] = append(byLayer[id], idx)
	}
	return byLayer
}

// Layer returns the layer that generated node idx.
func (m *Mesh) Layer(idx int) *geometry.Layer {
	return m.layers[m.Nodes[idx].LayerID]
}

func (m *Mesh) Logger() log.FieldLogger {
	return m.log
}

// NonNegative clamps v to zero, logging and counting the violation.
func (m *Mesh) NonNegative(idx int, field string, v float64) float64 {
	if v >= 0 {
		return v
	}
	m.Violations++
	m.log.WithFields(log.Fields{
		"node":  m.Nodes[idx].ID,
		"field": field,
		"value": v,
	}).Warn("negative value clamped to 0")
	return 0
}

func (m *Mesh) SetCoefficient(idx int, d geometry.Direction, v float64) {
	*m.Nodes[idx].coefficient(d) = m.NonNegative(idx, "A"+d.String(), v)
}

func (m *Mesh) SetSpacing(idx int, d geometry.Direction, v float64) {
	*m.Nodes[idx].spacing(d) = m.NonNegative(idx, "delta"+d.String(), v)
}

func (m *Mesh) SetAP(idx int, v float64) {
	m.Nodes[idx].AP = m.NonNegative(idx, "AP", v)
}

// Field returns the solution values in arena order.
func (m *Mesh) Field() []float64 {
	phi := make([]float64, len(m.Nodes))
	for i := range m.Nodes {
		phi[i] = m.Nodes[i].Phi
	}
	return phi
}

// At finds the node at exactly (x, y).
func (m *Mesh) At(x, y float64) (int, error) {
	c := sort.Search(len(m.Columns), func(c int) bool {
		return m.Nodes[m.Columns[c][0]].X >= x
	})
	if c == len(m.Columns) || m.Nodes[m.Columns[c][0]].X != x {
		return -1, fmt.Errorf("no node at (%g, %g)", x, y)
	}
	col := m.Columns[c]
	r := sort.Search(len(col), func(r int) bool {
		return m.Nodes[col[r]].Y >= y
	})
	if r == len(col) || m.Nodes[col[r]].Y != y {
		return -1, fmt.Errorf("no node at (%g, %g)", x, y)
	}
	return col[r], nil
}
