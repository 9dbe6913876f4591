// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package geoframe

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/go-logr/logr"

	"github.com/petar-djukic/geoframe/internal/axes"
	"github.com/petar-djukic/geoframe/internal/history"
	"github.com/petar-djukic/geoframe/internal/repair"
	"github.com/petar-djukic/geoframe/internal/spec"
	"github.com/petar-djukic/geoframe/internal/vectorize"
	"github.com/petar-djukic/geoframe/pkg/types"
)

const (
	defaultFrameWidth   = 14
	defaultFrameHeight  = 8
	defaultDPI          = 300
	defaultThreshold    = 0.60
	defaultTraceTimeout = 60 * time.Second
	defaultMaxRetries   = 3
	defaultTracerCmd    = "potrace"
)

// Pipeline runs the geoframe stages for one problem directory.
type Pipeline struct {
	cfg        Config
	log        logr.Logger
	vectorizer *vectorize.Vectorizer
	repo       *history.Repo // nil without git
	specOpts   []spec.Option
}

// New validates cfg, fills defaults and wires the components. When the
// problem directory sits in a git work tree and NoGit is false, every
// spec revision is committed.
func New(cfg Config) (*Pipeline, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	applyDefaults(&cfg)

	p := &Pipeline{cfg: cfg, log: cfg.Logger}

	potrace := vectorize.NewPotraceTracer(cfg.TraceTimeout, cfg.Logger.WithName("trace"))
	potrace.Command = cfg.TracerCmd
	var tracer vectorize.Tracer = potrace
	if cfg.Tracer != nil {
		tracer = cfg.Tracer
	}
	vopts := []vectorize.Option{vectorize.WithLogger(cfg.Logger.WithName("vectorize"))}
	if !cfg.NoAxisHints {
		var detector AxisDetector = axes.NewDetector()
		if cfg.AxisDetector != nil {
			detector = cfg.AxisDetector
		}
		vopts = append(vopts, vectorize.WithAxisDetector(detector))
	}
	p.vectorizer = vectorize.New(tracer, vopts...)

	p.specOpts = []spec.Option{spec.WithLogger(cfg.Logger.WithName("spec"))}
	if cfg.Drafter != nil {
		p.specOpts = append(p.specOpts, spec.WithDrafter(cfg.Drafter))
	}
	if !cfg.NoGit {
		repo, err := history.Open(cfg.ProblemDir, cfg.Logger.WithName("history"))
		switch {
		case err == nil:
			p.repo = repo
			p.specOpts = append(p.specOpts, spec.WithRecorder(repo))
		case errors.Is(err, history.ErrNoGit):
			p.log.V(1).Info("problem directory is not in a git work tree, revisions are not recorded", "dir", cfg.ProblemDir)
		default:
			return nil, err
		}
	}
	return p, nil
}

// Config returns the effective configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// SpecPath is the spec document the pipeline manages.
func (p *Pipeline) SpecPath() string { return filepath.Join(p.cfg.ProblemDir, p.cfg.SpecFile) }

func (p *Pipeline) manager() *spec.Manager { return spec.NewManager(p.SpecPath(), p.specOpts...) }

func (p *Pipeline) vectorizeOptions() vectorize.Options {
	o := vectorize.DefaultOptions()
	o.FrameWidth, o.FrameHeight = p.cfg.FrameWidth, p.cfg.FrameHeight
	o.DPI = p.cfg.DPI
	o.Threshold = p.cfg.Threshold
	return o
}

// Vectorize builds an anchor item for imagePath, optionally restricted to
// crop ([x0,y0,x1,y1] or [x,y,w,h]).
func (p *Pipeline) Vectorize(ctx context.Context, imagePath string, crop []int) (*types.AnchorItem, error) {
	o := p.vectorizeOptions()
	o.Crop = crop
	return p.vectorizer.BuildAnchorItem(ctx, imagePath, o)
}

// VectorizeProblem vectorizes every Picture region of imagePath and writes
// the crops and vector_anchors.json into the problem directory.
func (p *Pipeline) VectorizeProblem(ctx context.Context, imagePath string, regions []types.Region) (*types.VectorAnchors, RouteSummary, error) {
	route := vectorize.Route(regions)
	p.log.Info("problem routed", "mode", route.Mode, "has_diagram", route.HasDiagram, "has_list", route.HasList)
	doc, err := p.vectorizer.VectorizeProblem(ctx, imagePath, regions, p.cfg.ProblemDir, p.vectorizeOptions())
	return doc, route, err
}

// Ensure returns the persisted spec, creating a default draft if needed.
func (p *Pipeline) Ensure(ctx context.Context) (*types.GeometrySpec, error) {
	return p.manager().Ensure(ctx)
}

// Generate writes a new draft from template, the drafter or the defaults.
// An existing document is kept unless overwrite is set.
func (p *Pipeline) Generate(ctx context.Context, template []byte, overwrite bool) (*types.GeometrySpec, error) {
	return p.manager().Generate(ctx, spec.GenerateOptions{Template: template, Overwrite: overwrite})
}

// Solve computes coordinates for the spec. A solved document is returned
// unchanged unless overwrite is set.
func (p *Pipeline) Solve(overwrite bool) (*types.GeometrySpec, error) {
	return p.manager().Solve(spec.SolveOptions{Overwrite: overwrite})
}

// SolveAll solves every spec_<i>.json of the problem directory in index
// order.
func (p *Pipeline) SolveAll(overwrite bool) ([]Outcome, error) {
	return spec.SolveAll(p.cfg.ProblemDir, overwrite, p.specOpts...)
}

// Repair solves the spec and, on a fixable failure, asks fn for a
// corrected document up to MaxRetries times.
func (p *Pipeline) Repair(ctx context.Context, overwrite bool, fn RepairFunc) (*RepairResult, error) {
	return repair.Run(ctx, p.manager(), repair.Config{
		MaxRetries: p.cfg.MaxRetries,
		Overwrite:  overwrite,
		Log:        p.log.WithName("repair"),
	}, repair.RepairFunc(fn))
}

// Undo reverts the last recorded spec revision and returns the restored
// paths. It fails with history.ErrNoGit when revisions are not recorded.
func (p *Pipeline) Undo() ([]string, error) {
	if p.repo == nil {
		return nil, history.ErrNoGit
	}
	return p.repo.Undo()
}

// validateConfig checks required fields and ranges.
func validateConfig(cfg Config) error {
	if cfg.ProblemDir == "" {
		return fmt.Errorf("ProblemDir is required")
	}
	if info, err := os.Stat(cfg.ProblemDir); err != nil || !info.IsDir() {
		return fmt.Errorf("ProblemDir %q does not exist or is not a directory", cfg.ProblemDir)
	}
	if cfg.SpecFile != "" && filepath.Base(cfg.SpecFile) != cfg.SpecFile {
		return fmt.Errorf("SpecFile %q must be a file name", cfg.SpecFile)
	}
	if cfg.FrameWidth < 0 || cfg.FrameHeight < 0 || math.IsNaN(cfg.FrameWidth) || math.IsNaN(cfg.FrameHeight) {
		return fmt.Errorf("frame size must be positive, got %vx%v", cfg.FrameWidth, cfg.FrameHeight)
	}
	if cfg.DPI < 0 {
		return fmt.Errorf("DPI must be positive, got %d", cfg.DPI)
	}
	if cfg.Threshold < 0 || cfg.Threshold > 1 || math.IsNaN(cfg.Threshold) {
		return fmt.Errorf("Threshold must be in (0, 1], got %v", cfg.Threshold)
	}
	if cfg.TraceTimeout < 0 {
		return fmt.Errorf("TraceTimeout must be positive, got %s", cfg.TraceTimeout)
	}
	if cfg.MaxRetries < 0 {
		return fmt.Errorf("MaxRetries must not be negative, got %d", cfg.MaxRetries)
	}
	return nil
}

// applyDefaults fills in zero-value fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.SpecFile == "" {
		cfg.SpecFile = spec.FileName
	}
	if cfg.FrameWidth == 0 {
		cfg.FrameWidth = defaultFrameWidth
	}
	if cfg.FrameHeight == 0 {
		cfg.FrameHeight = defaultFrameHeight
	}
	if cfg.DPI == 0 {
		cfg.DPI = defaultDPI
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = defaultThreshold
	}
	if cfg.TracerCmd == "" {
		cfg.TracerCmd = defaultTracerCmd
	}
	if cfg.TraceTimeout == 0 {
		cfg.TraceTimeout = defaultTraceTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.Logger.GetSink() == nil {
		cfg.Logger = logr.Discard()
	}
}
