package geometry

import (
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unit = Domain{Width: 10, Height: 10}

func TestLayer_InsetCoordinates(t *testing.T) {
	for _, n := range []int{2, 3, 5, 30} {
		l, err := NewLayer(1, Rect{X0: 1, Y0: 4, XF: 3, YF: 2}, "Copper", n, unit)
		require.NoError(t, err)

		assert.Greater(t, l.X(0), l.Rect.X0)
		assert.Less(t, l.X(n-1), l.Rect.XF)
		assert.Greater(t, l.Y(0), l.Rect.YF)
		assert.Less(t, l.Y(n-1), l.Rect.Y0)
		for i := 1; i < n; i++ {
			assert.Greater(t, l.X(i), l.X(i-1))
			assert.Greater(t, l.Y(i), l.Y(i-1))
		}
		// deterministic
		assert.Equal(t, l.X(n-1), l.X(n-1))
	}
}

func TestLayer_Formula(t *testing.T) {
	l, err := NewLayer(1, Rect{X0: 0, Y0: 2, XF: 2, YF: 0}, "Ceramic", 5, unit)
	require.NoError(t, err)

	assert.InDelta(t, 0.4, l.AdjustedX0(), 1e-12)
	assert.InDelta(t, 1.6, l.AdjustedXF(), 1e-12)
	assert.InDelta(t, 0.4, l.AdjustedYF(), 1e-12)
	assert.InDelta(t, 1.6, l.AdjustedY0(), 1e-12)
	assert.InDelta(t, 0.7, l.X(1), 1e-12)
	assert.InDelta(t, 1.0, l.Y(2), 1e-12)

	px, py := l.NodeSpacing()
	assert.InDelta(t, 0.3, px, 1e-12)
	assert.InDelta(t, 0.3, py, 1e-12)
	assert.Equal(t, 4.0, l.Area())
}

// Nominally equal positions of different layers compare equal.
func TestLayer_SnappedCoordinates(t *testing.T) {
	wide, err := NewLayer(1, Rect{X0: 0, Y0: 2, XF: 2, YF: 0}, "Ceramic", 5, unit)
	require.NoError(t, err)
	narrow, err := NewLayer(2, Rect{X0: 0.5, Y0: 4, XF: 0.9, YF: 2}, "Copper", 1, unit)
	require.NoError(t, err)

	assert.Equal(t, 0.7, wide.X(1))
	assert.Equal(t, 1.3, wide.X(3))
	assert.Equal(t, 1.6, wide.Y(4))
	assert.Equal(t, wide.X(1), narrow.X(0))
}

func TestLayer_SingleNodeAtCentre(t *testing.T) {
	l, err := NewLayer(1, Rect{X0: 0, Y0: 2, XF: 4, YF: 0}, "Air", 1, unit)
	require.NoError(t, err)
	assert.Equal(t, 2.0, l.X(0))
	assert.Equal(t, 1.0, l.Y(0))
}

func TestNewLayer_Validation(t *testing.T) {
	tests := []struct {
		name string
		rect Rect
		n    int
	}{
		{"inverted x", Rect{X0: 3, Y0: 2, XF: 1, YF: 0}, 3},
		{"inverted y", Rect{X0: 0, Y0: 0, XF: 1, YF: 2}, 3},
		{"outside domain", Rect{X0: 0, Y0: 11, XF: 1, YF: 0}, 3},
		{"negative", Rect{X0: -1, Y0: 1, XF: 1, YF: 0}, 3},
		{"no nodes", Rect{X0: 0, Y0: 1, XF: 1, YF: 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLayer(7, tt.rect, "Copper", tt.n, unit)
			assert.Nil(t, l)
			assert.True(t, errors.Is(err, ErrInvalidLayer))
			var le *LayerError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, 7, le.ID)
		})
	}
}

func TestBuilder_SequenceAndErrors(t *testing.T) {
	logger, _ := test.NewNullLogger()
	b := NewBuilder(unit, logger)

	a := b.Add(Rect{X0: 0, Y0: 1, XF: 1, YF: 0}, "Copper", 3)
	c := b.Add(Rect{X0: 1, Y0: 1, XF: 2, YF: 0}, "BiTe", 3)
	require.NotNil(t, a)
	require.NotNil(t, c)
	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 2, c.ID)

	layers, err := b.Layers()
	require.NoError(t, err)
	assert.Len(t, layers, 2)

	b.Add(Rect{X0: 0, Y0: 1, XF: 1, YF: 1}, "Copper", 3)
	_, err = b.Layers()
	assert.ErrorIs(t, err, ErrInvalidLayer)
}

func TestBuilder_Array(t *testing.T) {
	logger, _ := test.NewNullLogger()
	b := NewBuilder(unit, logger)
	b.Array(Rect{X0: 0, Y0: 1, XF: 1, YF: 0}, "BiTe", 3, 4, 2)

	layers, err := b.Layers()
	require.NoError(t, err)
	require.Len(t, layers, 4)
	assert.Equal(t, 6.0, layers[3].Rect.X0)
	assert.Equal(t, 7.0, layers[3].Rect.XF)
}

func TestTEM(t *testing.T) {
	logger, hook := test.NewNullLogger()
	b := NewBuilder(DefaultDomain, logger)
	TEM(b, DefaultTEMMaterials)

	layers, err := b.Layers()
	require.NoError(t, err)
	// 2 plates, 2 edge gaps, 2 stubs, 8+9 connectors, 18 legs, 8+9 gaps
	assert.Len(t, layers, 58)

	legs := 0
	for _, l := range layers {
		if l.Material == "BiTe" {
			legs++
		}
		assert.Greater(t, l.Area(), 0.0)
	}
	assert.Equal(t, Legs, legs)
	assert.NotNil(t, hook.LastEntry())
}

func TestLayout(t *testing.T) {
	src := `
units: mm
domain: {width: 2000, height: 4000}
layers:
  - material: Ceramic
    rect: {x0: 0, y0: 2000, xf: 2000, yf: 0}
    nodes: 5
  - material: Copper
    rect: {x0: 0, y0: 4000, xf: 1000, yf: 2000}
    nodes: 3
    count: 2
    pitch: 1000
`
	lay, err := DecodeLayout(strings.NewReader(src))
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	layers, domain, err := lay.Build(DefaultDomain, logger)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, domain.Width, 1e-12)
	assert.InDelta(t, 4.0, domain.Height, 1e-12)
	require.Len(t, layers, 3)
	assert.InDelta(t, 1.0, layers[2].Rect.X0, 1e-12)
	assert.InDelta(t, 2.0, layers[2].Rect.XF, 1e-12)
}

func TestDirection(t *testing.T) {
	assert.Equal(t, "N|E", (North | East).String())
	assert.Equal(t, "", Direction(0).String())
	assert.Equal(t, South, North.Opposite())
	assert.True(t, South.Vertical())
	assert.False(t, West.Vertical())
	assert.Equal(t, 3, West.Index())
}
