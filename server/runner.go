package server

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"tem/calculator"
	"tem/export"
	"tem/geometry"
	"tem/model"
)

// applyRequest overrides cfg with the non-zero fields of req.
func applyRequest(cfg calculator.Config, req model.RunRequest) (calculator.Config, error) {
	if req.Tolerance > 0 {
		cfg.Tolerance = req.Tolerance
	}
	if req.MaxIterations > 0 {
		cfg.MaxIterations = req.MaxIterations
	}
	for name, e := range req.Boundary {
		kind, err := calculator.ParseKind(e.Kind)
		if err != nil {
			return cfg, fmt.Errorf("boundary %s: %w", name, err)
		}
		edge := calculator.Edge{Kind: kind, T: e.T, H: e.H, TInf: e.TInf}
		switch name {
		case "north":
			cfg.Boundary.North = edge
		case "south":
			cfg.Boundary.South = edge
		case "east":
			cfg.Boundary.East = edge
		case "west":
			cfg.Boundary.West = edge
		default:
			return cfg, fmt.Errorf("%w: unknown edge %q", calculator.ErrConfig, name)
		}
	}
	return cfg, cfg.Validate()
}

// execute runs one request to completion and stores the outcome. A run
// that produced a mesh is stored even when the solver failed.
func (s *Server) execute(ctx context.Context, req model.RunRequest, reporter calculator.Reporter) (model.Summary, *calculator.Result, error) {
	id := uuid.NewString()
	logger := s.log.WithField("run", id)

	cfg, err := applyRequest(s.cfg, req)
	if err != nil {
		return export.Summarize(id, nil, err), nil, err
	}

	opts := []calculator.Option{calculator.WithLogger(logger)}
	if reporter != nil {
		opts = append(opts, calculator.WithReporter(reporter))
	}
	c := calculator.NewCalculator(cfg, s.catalog, opts...)

	var layers []*geometry.Layer
	if len(req.Layout) > 0 {
		var layout geometry.Layout
		layout, err = geometry.DecodeLayout(bytes.NewReader(req.Layout))
		if err == nil {
			layers, err = c.LayoutLayers(layout)
		}
	} else {
		layers, err = c.Layers()
	}
	if err != nil {
		s.metrics.observe(nil, err)
		return export.Summarize(id, nil, err), nil, err
	}

	res, err := c.Run(ctx, layers)
	s.metrics.observe(res, err)
	summary := export.Summarize(id, res, err)
	if res == nil || res.Mesh == nil {
		return summary, res, err
	}

	run := &model.Run{Summary: summary, Nodes: export.Records(res.Mesh)}
	if serr := s.store.Save(context.WithoutCancel(ctx), run); serr != nil {
		logger.WithError(serr).Error("store run")
	}
	logger.WithFields(log.Fields{
		"iterations": summary.Iterations,
		"converged":  summary.Converged,
	}).Info("run stored")
	return summary, res, err
}
