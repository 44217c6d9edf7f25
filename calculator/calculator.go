package calculator

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"tem/geometry"
	"tem/material"
	"tem/mesh"
)

// Result of one pipeline run.
type Result struct {
	Mesh          *mesh.Mesh
	Solve         SolveResult
	BoundaryNodes int
	EdgeNodes     int
	Violations    int
	Elapsed       time.Duration
}

// Calculator runs geometry → mesh → initialization → boundary conditions →
// solve, each phase completing before the next starts.
type Calculator struct {
	cfg     Config
	catalog *material.Catalog
	hub     Reporter
	log     log.FieldLogger
}

type Option func(*Calculator)

func WithReporter(r Reporter) Option {
	return func(c *Calculator) {
		c.hub = r
	}
}

func WithLogger(l log.FieldLogger) Option {
	return func(c *Calculator) {
		c.log = l
	}
}

func NewCalculator(cfg Config, catalog *material.Catalog, opts ...Option) *Calculator {
	c := &Calculator{
		cfg:     cfg,
		catalog: catalog,
		hub:     nopReporter{},
		log:     log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Calculator) Config() Config {
	return c.cfg
}

// GetCalcHub returns the reporter the pipeline writes to.
func (c *Calculator) GetCalcHub() Reporter {
	return c.hub
}

// TEMLayers builds the thermoelectric module layout on the configured domain.
func (c *Calculator) TEMLayers() ([]*geometry.Layer, error) {
	c.hub.Progress(0)
	c.hub.Status("Generating Geometry and Material Layers")
	b := geometry.NewBuilder(c.cfg.Domain, c.log)
	geometry.TEM(b, geometry.DefaultTEMMaterials)
	layers, err := b.Layers()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	c.hub.Debug(fmt.Sprintf("NOTE: geometry generated, %d layers", len(layers)))
	return layers, nil
}

// Layers loads the configured layout file, or the TEM layout without one.
func (c *Calculator) Layers() ([]*geometry.Layer, error) {
	if c.cfg.LayoutFile == "" {
		return c.TEMLayers()
	}
	layout, err := geometry.LoadLayout(c.cfg.LayoutFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return c.LayoutLayers(layout)
}

// LayoutLayers builds layout. A layout carrying its own domain replaces the
// configured one.
func (c *Calculator) LayoutLayers(layout geometry.Layout) ([]*geometry.Layer, error) {
	c.hub.Progress(0)
	c.hub.Status("Generating Geometry and Material Layers")
	layers, domain, err := layout.Build(c.cfg.Domain, c.log)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	c.cfg.Domain = domain
	c.hub.Debug(fmt.Sprintf("NOTE: geometry generated, %d layers", len(layers)))
	return layers, nil
}

// Run meshes layers and solves. Configuration errors abort before the solver.
func (c *Calculator) Run(ctx context.Context, layers []*geometry.Layer) (*Result, error) {
	start := time.Now()
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	res := &Result{}

	c.hub.Progress(0)
	c.hub.Status("Generating Mesh")
	m, err := mesh.Build(layers, c.log)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	res.Mesh = m
	c.hub.Debug(fmt.Sprintf("mesh: %d nodes in %d columns", len(m.Nodes), len(m.Columns)))
	c.hub.Progress(25)

	c.hub.Status("Initializing Nodes")
	in := NewInitializer(c.catalog, c.cfg, c.log)
	if err := in.Initialize(m); err != nil {
		c.hub.Debug("Node Initialization Error: " + err.Error())
		return res, err
	}
	res.BoundaryNodes = in.BoundaryNodes
	c.hub.Debug(fmt.Sprintf("Boundary nodes: %d", in.BoundaryNodes))
	c.hub.Progress(50)

	c.hub.Status("Applying Boundary Conditions")
	res.EdgeNodes, err = c.cfg.Boundary.Apply(m, c.log)
	if err != nil {
		c.hub.Debug("BOUNDARY CONDITION ERROR: " + err.Error())
		return res, err
	}
	c.hub.Debug("Finished applying boundary conditions")
	c.hub.Progress(100)

	c.hub.Progress(0)
	solver := NewSolver(c.cfg, c.hub, c.log)
	res.Solve, err = solver.Solve(ctx, m, c.cfg.Boundary)
	res.Violations = m.Violations
	res.Elapsed = time.Since(start)
	if err != nil {
		c.hub.Debug(err.Error())
		c.hub.Status("Stopped")
		return res, err
	}
	c.hub.Status("Done")

	c.log.WithFields(log.Fields{
		"nodes":      len(m.Nodes),
		"iterations": res.Solve.Iterations,
		"violations": res.Violations,
		"elapsed":    res.Elapsed,
	}).Info("run finished")
	return res, nil
}
