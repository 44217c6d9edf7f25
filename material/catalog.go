package material

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	Copper   = "Copper"
	Glass    = "Glass"
	BiTe     = "BiTe"
	Aluminum = "Aluminum"
	Ceramic  = "Ceramic"
	Air      = "Air"
)

// Catalog holds materials by name. It is populated once and only read afterwards.
type Catalog struct {
	materials map[string]Material
	order     []string
}

func NewCatalog() *Catalog {
	return &Catalog{materials: make(map[string]Material)}
}

func (c *Catalog) Add(m Material) error {
	if m.Name == "" {
		return fmt.Errorf("add material: empty name")
	}
	if _, ok := c.materials[m.Name]; ok {
		return fmt.Errorf("add material %q: %w", m.Name, ErrDuplicate)
	}
	c.materials[m.Name] = m
	c.order = append(c.order, m.Name)
	return nil
}

func (c *Catalog) Get(name string) (Material, error) {
	m, ok := c.materials[name]
	if !ok {
		return Material{}, fmt.Errorf("material %q: %w", name, ErrUnknownMaterial)
	}
	return m, nil
}

// Conductivity returns k for name, or 0 and ErrUnknownMaterial.
func (c *Catalog) Conductivity(name string) (float64, error) {
	m, err := c.Get(name)
	if err != nil {
		return 0, err
	}
	return m.K, nil
}

// Names in insertion order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

func (c *Catalog) Len() int {
	return len(c.order)
}

// Default is the built-in property table of the module materials.
func Default() *Catalog {
	c := NewCatalog()
	for _, m := range []Material{
		{Name: Copper, K: 400, Rho: 8933, Cp: 385, Alpha: 1.83e-6},
		{Name: Glass, K: 35, Rho: 2500, Cp: 750},
		{Name: BiTe, K: 12, Rho: 7700, Cp: 154, Alpha: 2e-4},
		{Name: Aluminum, K: 200, Rho: 2702, Cp: 903, Alpha: 3.5e-6},
		{Name: Ceramic, K: 40, Rho: 3970, Cp: 765},
		{Name: Air, K: 0.0263, Rho: 1.16, Cp: 1007},
	} {
		// names are unique
		_ = c.Add(m)
	}
	return c
}

type catalogFile struct {
	Materials []Material `yaml:"materials"`
}

// LoadYAML reads a `materials:` list. Negative properties are clamped and
// reported together with the catalog so the caller can decide.
func LoadYAML(r io.Reader) (*Catalog, error) {
	var f catalogFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode materials: %w", err)
	}
	c := NewCatalog()
	var errs []error
	for _, raw := range f.Materials {
		m, err := New(raw.Name, raw.K, raw.Rho, raw.Cp, raw.Alpha)
		if err != nil {
			errs = append(errs, err)
		}
		if err := c.Add(m); err != nil {
			return nil, err
		}
	}
	if len(errs) > 0 {
		return c, fmt.Errorf("materials: %w", errors.Join(errs...))
	}
	return c, nil
}

func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadYAML(f)
}
