package export

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"tem/model"
)

var ErrTooFewNodes = errors.New("heat map needs at least two distinct x and y positions")

// grid maps the scattered node records onto the distinct x and y
// positions. Cells without a node hold NaN.
type grid struct {
	xs, ys []float64
	z      [][]float64 // [row][col]
}

func newGrid(recs []model.NodeRecord) *grid {
	g := &grid{}
	seenX := make(map[float64]int)
	seenY := make(map[float64]int)
	for _, n := range recs {
		if _, ok := seenX[n.X]; !ok {
			seenX[n.X] = 0
			g.xs = append(g.xs, n.X)
		}
		if _, ok := seenY[n.Y]; !ok {
			seenY[n.Y] = 0
			g.ys = append(g.ys, n.Y)
		}
	}
	sort.Float64s(g.xs)
	sort.Float64s(g.ys)
	for c, x := range g.xs {
		seenX[x] = c
	}
	for r, y := range g.ys {
		seenY[y] = r
	}

	g.z = make([][]float64, len(g.ys))
	for r := range g.z {
		g.z[r] = make([]float64, len(g.xs))
		for c := range g.z[r] {
			g.z[r][c] = math.NaN()
		}
	}
	for _, n := range recs {
		g.z[seenY[n.Y]][seenX[n.X]] = n.Phi
	}
	return g
}

func (g *grid) Dims() (c, r int)   { return len(g.xs), len(g.ys) }
func (g *grid) Z(c, r int) float64 { return g.z[r][c] }
func (g *grid) X(c int) float64    { return g.xs[c] }
func (g *grid) Y(r int) float64    { return g.ys[r] }

// HeatMap renders the temperature field. format is one of the gonum/plot
// formats, "png" or "svg" for instance.
func HeatMap(w io.Writer, recs []model.NodeRecord, width, height vg.Length, format string) error {
	g := newGrid(recs)
	if c, r := g.Dims(); c < 2 || r < 2 {
		return ErrTooFewNodes
	}

	phi := make([]float64, len(recs))
	for i, n := range recs {
		phi[i] = n.Phi
	}
	lo, hi := floats.Min(phi), floats.Max(phi)
	if lo == hi {
		hi = lo + 1
	}

	h := plotter.NewHeatMap(g, palette.Heat(64, 1))
	h.Min, h.Max = lo, hi
	h.NaN = color.Transparent

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Temperature field %.2f K .. %.2f K", lo, floats.Max(phi))
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	p.Add(h)

	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("render heat map: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}
