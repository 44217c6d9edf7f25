package calculator

import (
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"tem/geometry"
	"tem/material"
)

// Config carries every tunable of a run. Keys missing from the ini file
// keep the DefaultConfig value.
type Config struct {
	Domain geometry.Domain

	Tolerance          float64 // K
	MaxIterations      int
	Workers            int
	InitialTemperature float64 // K, 0 derives it from the boundary conditions
	History            int     // residuals kept for reporting

	ProbeStep     float64 // m
	MaxProbeSteps int

	Boundary BoundaryConditions

	MaterialsFile string
	LayoutFile    string

	LogLevel  string
	LogFormat string

	Addr string

	StoreBackend string // memory | redis
	RedisAddr    string
	RedisDB      int
	RedisPrefix  string
	RedisTTL     time.Duration
}

func DefaultConfig() Config {
	return Config{
		Domain:        geometry.DefaultDomain,
		Tolerance:     1e-4,
		MaxIterations: 1000,
		Workers:       4,
		History:       64,
		ProbeStep:     1.5e-7,
		MaxProbeSteps: 20000,
		Boundary: BoundaryConditions{
			South: Edge{Kind: Temperature, T: 350},
			North: Edge{Kind: Convection, H: 25, TInf: 298.15},
			West:  Edge{Kind: Adiabatic},
			East:  Edge{Kind: Adiabatic},
		},
		LogLevel:     "info",
		LogFormat:    "text",
		Addr:         ":9000",
		StoreBackend: "memory",
		RedisAddr:    "localhost:6379",
		RedisPrefix:  "tem:run:",
	}
}

// LoadConfig reads an ini file, e.g. conf/config.ini.
func LoadConfig(path string) (Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return loadCfg(file)
}

func loadCfg(file *ini.File) (Config, error) {
	def := DefaultConfig()

	domain := file.Section("domain")
	solver := file.Section("solver")
	logging := file.Section("log")
	server := file.Section("server")
	store := file.Section("store")

	cfg := Config{
		Domain: geometry.Domain{
			Width:  domain.Key("Width").MustFloat64(def.Domain.Width),
			Height: domain.Key("Height").MustFloat64(def.Domain.Height),
		},
		Tolerance:          solver.Key("Tolerance").MustFloat64(def.Tolerance),
		MaxIterations:      solver.Key("MaxIterations").MustInt(def.MaxIterations),
		Workers:            solver.Key("Workers").MustInt(def.Workers),
		InitialTemperature: solver.Key("InitialTemperature").MustFloat64(0),
		History:            solver.Key("History").MustInt(def.History),
		ProbeStep:          solver.Key("ProbeStep").MustFloat64(def.ProbeStep),
		MaxProbeSteps:      solver.Key("MaxProbeSteps").MustInt(def.MaxProbeSteps),

		MaterialsFile: domain.Key("Materials").String(),
		LayoutFile:    domain.Key("Layout").String(),

		LogLevel:  logging.Key("Level").MustString(def.LogLevel),
		LogFormat: logging.Key("Format").MustString(def.LogFormat),

		Addr: server.Key("Addr").MustString(def.Addr),

		StoreBackend: store.Key("Backend").MustString(def.StoreBackend),
		RedisAddr:    store.Key("RedisAddr").MustString(def.RedisAddr),
		RedisDB:      store.Key("RedisDB").MustInt(0),
		RedisPrefix:  store.Key("RedisPrefix").MustString(def.RedisPrefix),
		RedisTTL:     store.Key("RedisTTL").MustDuration(0),
	}

	edges := []struct {
		name string
		dst  *Edge
		def  Edge
	}{
		{"south", &cfg.Boundary.South, def.Boundary.South},
		{"north", &cfg.Boundary.North, def.Boundary.North},
		{"west", &cfg.Boundary.West, def.Boundary.West},
		{"east", &cfg.Boundary.East, def.Boundary.East},
	}
	for _, e := range edges {
		if !file.HasSection("boundary." + e.name) {
			*e.dst = e.def
			continue
		}
		sec := file.Section("boundary." + e.name)
		kind, err := ParseKind(sec.Key("Kind").MustString(e.def.Kind.String()))
		if err != nil {
			return Config{}, fmt.Errorf("boundary.%s: %w", e.name, err)
		}
		*e.dst = Edge{
			Kind: kind,
			T:    sec.Key("T").MustFloat64(0),
			H:    sec.Key("H").MustFloat64(0),
			TInf: sec.Key("TInf").MustFloat64(0),
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the solver settings and the boundary conditions.
func (c Config) Validate() error {
	switch {
	case c.Tolerance <= 0:
		return fmt.Errorf("%w: tolerance %g must be positive", ErrConfig, c.Tolerance)
	case c.MaxIterations <= 0:
		return fmt.Errorf("%w: max iterations %d must be positive", ErrConfig, c.MaxIterations)
	case c.ProbeStep <= 0:
		return fmt.Errorf("%w: probe step %g must be positive", ErrConfig, c.ProbeStep)
	case c.Domain.Width <= 0 || c.Domain.Height <= 0:
		return fmt.Errorf("%w: domain %gx%g", ErrConfig, c.Domain.Width, c.Domain.Height)
	case c.StoreBackend != "memory" && c.StoreBackend != "redis":
		return fmt.Errorf("%w: unknown store backend %q", ErrConfig, c.StoreBackend)
	}
	return c.Boundary.Validate()
}

// Logger builds the logrus logger described by the [log] section.
func (c Config) Logger() (*log.Logger, error) {
	logger := log.New()
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	logger.SetLevel(level)
	switch strings.ToLower(c.LogFormat) {
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	case "", "text":
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("%w: unknown log format %q", ErrConfig, c.LogFormat)
	}
	return logger, nil
}

// Catalog loads MaterialsFile, or returns the built-in table without one.
func (c Config) Catalog() (*material.Catalog, error) {
	if c.MaterialsFile == "" {
		return material.Default(), nil
	}
	return material.LoadFile(c.MaterialsFile)
}
