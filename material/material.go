package material

import (
	"errors"
	"fmt"
)

var (
	ErrNegativeProperty = errors.New("negative material property")
	ErrUnknownMaterial  = errors.New("unknown material")
	ErrDuplicate        = errors.New("material already registered")
)

// Material thermal and electrical properties, SI units.
type Material struct {
	Name  string  `yaml:"name" json:"name"`
	K     float64 `yaml:"k" json:"k"`         // W/(m·K)
	Rho   float64 `yaml:"rho" json:"rho"`     // kg/m³
	Cp    float64 `yaml:"cp" json:"cp"`       // J/(kg·K)
	Alpha float64 `yaml:"alpha" json:"alpha"` // Seebeck, V/K
}

// PropertyError reports a property that was clamped to zero.
type PropertyError struct {
	Material string
	Property string
	Value    float64
}

func (e *PropertyError) Error() string {
	return fmt.Sprintf("material %q: %s = %g is negative, clamped to 0", e.Material, e.Property, e.Value)
}

func (e *PropertyError) Unwrap() error {
	return ErrNegativeProperty
}

// New validates every property. A negative value is clamped to zero and
// reported, the returned Material is always usable.
func New(name string, k, rho, cp, alpha float64) (Material, error) {
	m := Material{Name: name}
	var errs []error
	clamp := func(property string, v float64) float64 {
		if v < 0 {
			errs = append(errs, &PropertyError{Material: name, Property: property, Value: v})
			return 0
		}
		return v
	}
	m.K = clamp("k", k)
	m.Rho = clamp("rho", rho)
	m.Cp = clamp("cp", cp)
	m.Alpha = clamp("alpha", alpha)
	return m, errors.Join(errs...)
}

// Diffusivity k/(rho·cp), zero when the heat capacity is unknown.
func (m Material) Diffusivity() float64 {
	if m.Rho == 0 || m.Cp == 0 {
		return 0
	}
	return m.K / (m.Rho * m.Cp)
}
