package geometry

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Sequence hands out monotonic layer ids starting at 1.
type Sequence struct {
	last int
}

func (s *Sequence) Next() int {
	s.last++
	return s.last
}

// Builder collects layers in insertion order. Construction errors are kept
// and returned by Layers so that a whole layout is reported at once.
type Builder struct {
	domain Domain
	seq    Sequence
	layers []*Layer
	errs   []error
	log    log.FieldLogger
}

func NewBuilder(domain Domain, logger log.FieldLogger) *Builder {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Builder{domain: domain, log: logger.WithField("phase", "geometry")}
}

func (b *Builder) Domain() Domain {
	return b.domain
}

// Add validates and appends one layer, nil on error.
func (b *Builder) Add(r Rect, material string, n int) *Layer {
	l, err := NewLayer(b.seq.Next(), r, material, n, b.domain)
	if err != nil {
		b.errs = append(b.errs, err)
		return nil
	}
	b.layers = append(b.layers, l)
	return l
}

// Array appends count copies of r, the k-th shifted by k·pitch along x.
func (b *Builder) Array(r Rect, material string, n, count int, pitch float64) {
	for k := 0; k < count; k++ {
		b.Add(r.Shift(float64(k)*pitch), material, n)
	}
}

// Layers checks every layer area and returns the layout.
func (b *Builder) Layers() ([]*Layer, error) {
	errs := append([]error(nil), b.errs...)
	for _, l := range b.layers {
		if l.Area() <= 0 {
			errs = append(errs, &LayerError{ID: l.ID, Rect: l.Rect, Reason: "area <= 0"})
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("geometry: %w", errors.Join(errs...))
	}
	b.log.WithFields(log.Fields{
		"layers": len(b.layers),
		"domain": fmt.Sprintf("%gx%g", b.domain.Width, b.domain.Height),
	}).Info("geometry generated")
	return b.layers, nil
}
