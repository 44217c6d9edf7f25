package geometry

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidLayer = errors.New("invalid layer")

// Domain is the global extent [0,Width]×[0,Height] in meters.
type Domain struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// DefaultDomain is the module cross-section.
var DefaultDomain = Domain{Width: 0.0401828, Height: 0.004864}

// Rect is an axis-aligned rectangle, Y0 is the top edge and YF the bottom edge.
type Rect struct {
	X0 float64 `yaml:"x0" json:"x0"`
	Y0 float64 `yaml:"y0" json:"y0"`
	XF float64 `yaml:"xf" json:"xf"`
	YF float64 `yaml:"yf" json:"yf"`
}

func (r Rect) Width() float64  { return r.XF - r.X0 }
func (r Rect) Height() float64 { return r.Y0 - r.YF }

func (r Rect) Center() (float64, float64) {
	return (r.X0 + r.XF) / 2, (r.Y0 + r.YF) / 2
}

// Contains is a closed point-in-rectangle test.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X0 && x <= r.XF && y >= r.YF && y <= r.Y0
}

func (r Rect) Scale(f float64) Rect {
	return Rect{X0: r.X0 * f, Y0: r.Y0 * f, XF: r.XF * f, YF: r.YF * f}
}

// Shift moves the rectangle dx along x.
func (r Rect) Shift(dx float64) Rect {
	return Rect{X0: r.X0 + dx, Y0: r.Y0, XF: r.XF + dx, YF: r.YF}
}

// LayerError describes why a layer was rejected.
type LayerError struct {
	ID     int
	Rect   Rect
	Reason string
}

func (e *LayerError) Error() string {
	return fmt.Sprintf("layer %d (%g,%g,%g,%g): %s", e.ID, e.Rect.X0, e.Rect.Y0, e.Rect.XF, e.Rect.YF, e.Reason)
}

func (e *LayerError) Unwrap() error {
	return ErrInvalidLayer
}

// Layer is a material-tagged rectangle meshed with N×N nodes. Nodes are
// inset from the rectangle so that control volume faces, not node centres,
// lie on its edges.
type Layer struct {
	ID       int
	Rect     Rect
	Material string
	N        int

	dx, dy float64
}

func NewLayer(id int, r Rect, material string, n int, d Domain) (*Layer, error) {
	bad := func(reason string, args ...interface{}) (*Layer, error) {
		return nil, &LayerError{ID: id, Rect: r, Reason: fmt.Sprintf(reason, args...)}
	}
	switch {
	case n <= 0:
		return bad("node count %d must be positive", n)
	case material == "":
		return bad("no material")
	case r.X0 > r.XF:
		return bad("x0 > xf")
	case r.YF > r.Y0:
		return bad("yf > y0")
	case r.X0 < 0 || r.YF < 0:
		return bad("negative coordinate")
	case r.XF > d.Width || r.Y0 > d.Height:
		return bad("outside domain %gx%g", d.Width, d.Height)
	}
	l := &Layer{ID: id, Rect: r, Material: material, N: n}
	l.dx, l.dy = l.inset()
	return l, nil
}

func (l *Layer) inset() (float64, float64) {
	n := float64(l.N)
	if l.N == 2 {
		// extent/N would put both nodes at the centre
		n = 4
	}
	return l.Rect.Width() / n, l.Rect.Height() / n
}

func (l *Layer) Area() float64 {
	return l.Rect.Width() * l.Rect.Height()
}

func (l *Layer) AdjustedX0() float64 { return l.Rect.X0 + l.dx }
func (l *Layer) AdjustedXF() float64 { return l.Rect.XF - l.dx }
func (l *Layer) AdjustedY0() float64 { return l.Rect.Y0 - l.dy }
func (l *Layer) AdjustedYF() float64 { return l.Rect.YF + l.dy }

// node coordinates are rounded to 1e-12 m so that nominally equal
// positions of different layers share a column or row
const snapScale = 1e12

func snap(v float64) float64 {
	return math.Round(v*snapScale) / snapScale
}

// X returns the i-th node abscissa, i in [0,N).
func (l *Layer) X(i int) float64 {
	if l.N == 1 {
		x, _ := l.Rect.Center()
		return snap(x)
	}
	x0, xf := l.AdjustedX0(), l.AdjustedXF()
	return snap(x0 + (xf-x0)/float64(l.N-1)*float64(i))
}

// Y returns the j-th node ordinate, j in [0,N), ascending from the bottom.
func (l *Layer) Y(j int) float64 {
	if l.N == 1 {
		_, y := l.Rect.Center()
		return snap(y)
	}
	yf, y0 := l.AdjustedYF(), l.AdjustedY0()
	return snap(yf + (y0-yf)/float64(l.N-1)*float64(j))
}

// NodeSpacing is the uniform pitch between adjacent nodes along x and y.
func (l *Layer) NodeSpacing() (float64, float64) {
	if l.N == 1 {
		return l.Rect.Width(), l.Rect.Height()
	}
	return (l.AdjustedXF() - l.AdjustedX0()) / float64(l.N-1),
		(l.AdjustedY0() - l.AdjustedYF()) / float64(l.N-1)
}

func (l *Layer) Contains(x, y float64) bool {
	return l.Rect.Contains(x, y)
}

// Face returns the rectangle edge coordinate on side d.
func (l *Layer) Face(d Direction) float64 {
	switch d {
	case North:
		return l.Rect.Y0
	case South:
		return l.Rect.YF
	case East:
		return l.Rect.XF
	case West:
		return l.Rect.X0
	}
	return math.NaN()
}

// InsetEdges returns the two inset node coordinates along the axis of d,
// the y pair for North/South and the x pair for East/West.
func (l *Layer) InsetEdges(d Direction) (float64, float64) {
	if d.Vertical() {
		return l.AdjustedYF(), l.AdjustedY0()
	}
	return l.AdjustedX0(), l.AdjustedXF()
}

// Spans reports whether the perpendicular extent of the layer covers the
// coordinate c, y for East/West and x for North/South.
func (l *Layer) Spans(d Direction, c float64) bool {
	if d.Vertical() {
		return c >= l.Rect.X0 && c <= l.Rect.XF
	}
	return c >= l.Rect.YF && c <= l.Rect.Y0
}

func (l *Layer) String() string {
	return fmt.Sprintf("#%d %s [%g,%g]x[%g,%g] n=%d", l.ID, l.Material, l.Rect.X0, l.Rect.XF, l.Rect.YF, l.Rect.Y0, l.N)
}
