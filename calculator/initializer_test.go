package calculator

import (
	"math"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tem/geometry"
	"tem/material"
	"tem/mesh"
)

func TestInitialize_Coefficients(t *testing.T) {
	m := initialized(t)

	// interior ceramic node, uniform pitch 0.3
	n := at(t, m, 1.0, 1.0)
	assert.Equal(t, 40.0, n.Gamma)
	for _, d := range geometry.Directions {
		assert.InDelta(t, 40.0, n.Coefficient(d), 1e-9, d.String())
	}
	assert.InDelta(t, 160.0, n.AP, 1e-9)
	assert.Zero(t, n.D)
	assert.Zero(t, n.Interface)

	// copper interior
	c := at(t, m, 1.0, 3.0)
	assert.Equal(t, 400.0, c.Gamma)
	assert.InDelta(t, 1600.0, c.AP, 1e-9)
}

func TestInitialize_Interface(t *testing.T) {
	m := initialized(t)
	want := interfaceCoefficient(40, 400, 0.3, 0.8)

	for _, x := range columnXs {
		below := at(t, m, x, 1.6)
		above := at(t, m, x, 2.4)
		assert.Equal(t, geometry.North, below.Interface)
		assert.Equal(t, geometry.South, above.Interface)
		assert.InDelta(t, want, below.AN, 1e-9)
		assert.InDelta(t, want, above.AS, 1e-9)
		assert.Equal(t, material.Ceramic, above.NeighborMaterial[geometry.South.Index()])
		assert.InDelta(t, below.Off(), below.AP, 1e-9)
	}

	// outer edges are left to the boundary conditions
	for _, x := range columnXs {
		assert.Zero(t, at(t, m, x, 0.4).Interface)
		assert.Zero(t, at(t, m, x, 3.6).Interface)
	}
}

func twoLayers(t *testing.T, lower string, nLower int, upper string, nUpper int) []*geometry.Layer {
	t.Helper()
	logger, _ := test.NewNullLogger()
	b := geometry.NewBuilder(testDomain, logger)
	b.Add(geometry.Rect{X0: 0, Y0: 2, XF: 2, YF: 0}, lower, nLower)
	b.Add(geometry.Rect{X0: 0, Y0: 4, XF: 2, YF: 2}, upper, nUpper)
	layers, err := b.Layers()
	require.NoError(t, err)
	return layers
}

func row(m *mesh.Mesh, y float64) []*mesh.Node {
	var nodes []*mesh.Node
	for idx := range m.Nodes {
		if m.Nodes[idx].Y == y {
			nodes = append(nodes, &m.Nodes[idx])
		}
	}
	return nodes
}

// Sides that face a void up to the domain edge are insulated, sides that
// face a node of another layer off their grid line are coupled to it.
func TestInitialize_OffGridAndVoid(t *testing.T) {
	logger, _ := test.NewNullLogger()
	b := geometry.NewBuilder(testDomain, logger)
	b.Add(geometry.Rect{X0: 0, Y0: 2, XF: 2, YF: 0}, material.Ceramic, 5)
	b.Add(geometry.Rect{X0: 0, Y0: 4, XF: 1, YF: 2}, material.Copper, 1)
	layers, err := b.Layers()
	require.NoError(t, err)

	m, err := mesh.Build(layers, logger)
	require.NoError(t, err)
	require.NoError(t, NewInitializer(material.Default(), testConfig(BoundaryConditions{}), logger).Initialize(m))

	copperIdx, err := m.At(0.5, 3.0)
	require.NoError(t, err)

	for _, x := range []float64{0.4, 0.7, 1.0} {
		n := at(t, m, x, 1.6)
		assert.Equal(t, -1, n.Neighbor(geometry.North))
		assert.Equal(t, copperIdx, n.Lag(geometry.North), "x=%g", x)
		assert.Equal(t, copperIdx, n.Coupled(geometry.North))
		assert.Greater(t, n.AN, 0.0, "x=%g", x)
	}
	for _, x := range []float64{1.3, 1.6} {
		n := at(t, m, x, 1.6)
		assert.Equal(t, -1, n.Coupled(geometry.North))
		assert.Zero(t, n.AN, "x=%g", x)
		assert.InDelta(t, n.Off(), n.AP, 1e-9)
	}

	cu := &m.Nodes[copperIdx]
	assert.Equal(t, at(t, m, 0.4, 1.6).ID, m.Nodes[cu.Lag(geometry.South)].ID)
	assert.Greater(t, cu.AS, 0.0)
	assert.Zero(t, cu.AE, "void up to the domain edge")
	assert.Zero(t, m.Violations)
}

// Node counts that differ between layers leave no shared column, the
// interface still couples every interface node.
func TestInitialize_MismatchedGrids(t *testing.T) {
	logger, _ := test.NewNullLogger()
	m, err := mesh.Build(twoLayers(t, material.Ceramic, 5, material.Copper, 4), logger)
	require.NoError(t, err)
	require.NoError(t, NewInitializer(material.Default(), testConfig(BoundaryConditions{}), logger).Initialize(m))

	below, above := row(m, 1.6), row(m, 2.5)
	require.Len(t, below, 5)
	require.Len(t, above, 4)

	for _, n := range below {
		assert.True(t, n.Interface.Has(geometry.North))
		assert.InDelta(t, 0.9, n.DyN, 1e-12)
		assert.InDelta(t, interfaceCoefficient(40, 400, 0.3, 0.9), n.AN, 1e-9)
		j := n.Lag(geometry.North)
		require.GreaterOrEqual(t, j, 0, "x=%g", n.X)
		assert.Equal(t, material.Copper, m.Nodes[j].Material)
		assert.Equal(t, 2.5, m.Nodes[j].Y)
		assert.LessOrEqual(t, math.Abs(m.Nodes[j].X-n.X), 1.0/6+1e-12)
	}
	for _, n := range above {
		assert.True(t, n.Interface.Has(geometry.South))
		assert.InDelta(t, interfaceCoefficient(400, 40, 1.0/3, 0.9), n.AS, 1e-9)
		j := n.Lag(geometry.South)
		require.GreaterOrEqual(t, j, 0, "x=%g", n.X)
		assert.Equal(t, 1.6, m.Nodes[j].Y)
	}
}

// Corner nodes take the interface value on the side facing another layer,
// the side on the domain edge keeps its base value until the boundary pass.
func TestInitialize_Corner(t *testing.T) {
	m := initialized(t)

	n := at(t, m, 0.4, 1.6)
	require.True(t, n.Corner)
	assert.Equal(t, geometry.North, n.Interface)
	assert.InDelta(t, interfaceCoefficient(40, 400, 0.3, 0.8), n.AN, 1e-9)
	assert.InDelta(t, 40.0, n.AW, 1e-9)
	assert.True(t, n.DomainEdges.Has(geometry.West))

	// a corner on two outer edges is left to the boundary pass
	outer := at(t, m, 0.4, 0.4)
	require.True(t, outer.Corner)
	assert.Zero(t, outer.Interface)
}

// Touching layers of one material record that material across the face
// and couple with its own conductivity over the interface spacing.
func TestInitialize_SameMaterialLayers(t *testing.T) {
	logger, _ := test.NewNullLogger()
	m, err := mesh.Build(twoLayers(t, material.Ceramic, 5, material.Ceramic, 4), logger)
	require.NoError(t, err)
	require.NoError(t, NewInitializer(material.Default(), testConfig(BoundaryConditions{}), logger).Initialize(m))

	n := at(t, m, 1.0, 1.6)
	assert.Equal(t, material.Ceramic, n.NeighborMaterial[geometry.North.Index()])
	assert.InDelta(t, 40*0.3/0.9, n.AN, 1e-9)
	assert.GreaterOrEqual(t, n.Coupled(geometry.North), 0)
}

func TestInitialize_UnknownMaterialReportedOnce(t *testing.T) {
	logger, _ := test.NewNullLogger()
	b := geometry.NewBuilder(testDomain, logger)
	b.Add(geometry.Rect{X0: 0, Y0: 2, XF: 2, YF: 0}, "Kryptonite", 4)
	b.Add(geometry.Rect{X0: 0, Y0: 4, XF: 2, YF: 2}, "Kryptonite", 4)
	layers, err := b.Layers()
	require.NoError(t, err)

	m, err := mesh.Build(layers, logger)
	require.NoError(t, err)
	err = NewInitializer(material.Default(), DefaultConfig(), logger).Initialize(m)
	require.Error(t, err)

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok)
	assert.Len(t, joined.Unwrap(), 1)
	assert.ErrorIs(t, err, ErrInitialization)
}

func TestInitialize_ZeroConductivity(t *testing.T) {
	catalog := material.Default()
	vacuum, err := material.New("Vacuum", 0, 0, 0, 0)
	require.NoError(t, err)
	require.NoError(t, catalog.Add(vacuum))

	logger, _ := test.NewNullLogger()
	b := geometry.NewBuilder(testDomain, logger)
	b.Add(geometry.Rect{X0: 0, Y0: 2, XF: 2, YF: 0}, "Vacuum", 2)
	layers, err := b.Layers()
	require.NoError(t, err)

	m, err := mesh.Build(layers, logger)
	require.NoError(t, err)
	err = NewInitializer(catalog, DefaultConfig(), logger).Initialize(m)
	assert.ErrorIs(t, err, ErrInitialization)
	assert.Contains(t, err.Error(), "zero")
}

func TestSolveLine(t *testing.T) {
	// three nodes in a column: pinned 300, free, pinned 400
	m := &mesh.Mesh{
		Nodes: []mesh.Node{
			{AP: 1, D: 300, Neighbors: [4]int{1, -1, -1, -1}},
			{AN: 1, AS: 1, AP: 2, Neighbors: [4]int{2, 0, -1, -1}},
			{AP: 1, D: 400, Neighbors: [4]int{-1, 1, -1, -1}},
		},
		Columns: [][]int{{0, 1, 2}},
	}
	s := NewSolver(DefaultConfig(), nil, nil)
	s.solveLine(m, m.Columns[0], geometry.North, geometry.South, make([]float64, 3))
	assert.InDeltaSlice(t, []float64{300, 350, 400}, m.Field(), 1e-12)
}

func TestSolveLine_Lagged(t *testing.T) {
	// one free node between a pinned line neighbour and a lagged node
	m := &mesh.Mesh{
		Nodes: []mesh.Node{
			{AP: 1, D: 300, Neighbors: [4]int{1, -1, -1, -1}},
			{AN: 1, AS: 1, AP: 2, Neighbors: [4]int{-1, 0, -1, -1}},
			{AP: 1, D: 500, Neighbors: [4]int{-1, -1, -1, -1}},
		},
		Columns: [][]int{{0, 1}, {2}},
	}
	m.SetLag(1, geometry.North, 2)
	snap := []float64{300, 0, 500}

	s := NewSolver(DefaultConfig(), nil, nil)
	s.solveLine(m, m.Columns[0], geometry.North, geometry.South, snap)
	assert.InDelta(t, 400.0, m.Nodes[1].Phi, 1e-12)
}
