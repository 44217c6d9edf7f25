package geometry

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Layout is the YAML form of a layer description.
//
//	units: mm
//	domain: {width: 2, height: 4}
//	layers:
//	  - material: Copper
//	    rect: {x0: 0, y0: 4, xf: 2, yf: 2}
//	    nodes: 5
//	    count: 1
//	    pitch: 0
type Layout struct {
	Units  string        `yaml:"units"`
	Domain *Domain       `yaml:"domain"`
	Layers []LayoutLayer `yaml:"layers"`
}

type LayoutLayer struct {
	Material string  `yaml:"material"`
	Rect     Rect    `yaml:"rect"`
	Nodes    int     `yaml:"nodes"`
	Count    int     `yaml:"count"`
	Pitch    float64 `yaml:"pitch"`
}

func (l Layout) scale() (float64, error) {
	switch l.Units {
	case "", "m":
		return 1, nil
	case "mm":
		return mm, nil
	}
	return 0, fmt.Errorf("layout: unknown units %q", l.Units)
}

// Build validates the layout against domain, or the layout's own domain when set.
func (l Layout) Build(domain Domain, logger log.FieldLogger) ([]*Layer, Domain, error) {
	f, err := l.scale()
	if err != nil {
		return nil, domain, err
	}
	if l.Domain != nil {
		domain = Domain{Width: l.Domain.Width * f, Height: l.Domain.Height * f}
	}
	b := NewBuilder(domain, logger)
	for _, ll := range l.Layers {
		count := ll.Count
		if count == 0 {
			count = 1
		}
		b.Array(ll.Rect.Scale(f), ll.Material, ll.Nodes, count, ll.Pitch*f)
	}
	layers, err := b.Layers()
	return layers, domain, err
}

func DecodeLayout(r io.Reader) (Layout, error) {
	var l Layout
	if err := yaml.NewDecoder(r).Decode(&l); err != nil {
		return Layout{}, fmt.Errorf("decode layout: %w", err)
	}
	if len(l.Layers) == 0 {
		return Layout{}, fmt.Errorf("layout: no layers")
	}
	return l, nil
}

func LoadLayout(path string) (Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return Layout{}, err
	}
	defer f.Close()
	return DecodeLayout(f)
}
