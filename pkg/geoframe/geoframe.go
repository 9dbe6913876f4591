// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package geoframe is the public entry point: it turns diagram images into
// vector anchors and drives a problem's spec.json from draft to solved
// coordinates.
package geoframe

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/go-logr/logr"

	"github.com/petar-djukic/geoframe/internal/repair"
	"github.com/petar-djukic/geoframe/internal/solver"
	"github.com/petar-djukic/geoframe/internal/spec"
	"github.com/petar-djukic/geoframe/internal/vectorize"
)

// ErrInvalidConfig wraps every Config validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Errors callers may want to match with errors.Is.
var (
	ErrInputImage          = vectorize.ErrInputImage
	ErrExternalTool        = vectorize.ErrExternalTool
	ErrUnsupportedTemplate = solver.ErrUnsupportedTemplate
	ErrMissingConstraint   = solver.ErrMissingConstraint
	ErrInvalidConstraint   = solver.ErrInvalidConstraint
	ErrNoFeasibleSolution  = solver.ErrNoFeasibleSolution
	ErrDegenerateGeometry  = solver.ErrDegenerateGeometry
	ErrSpecIncomplete      = spec.ErrSpecIncomplete
	ErrUnresolvedPoint     = spec.ErrUnresolvedPoint
)

// Results of the underlying components.
type (
	RouteSummary = vectorize.RouteSummary // Whether a problem has a diagram or a choice list
	Outcome      = spec.Outcome           // Per-file result of SolveAll
	RepairResult = repair.Result          // Outcome of Repair
)

// Tracer converts a black-and-white bitmap into an SVG document.
type Tracer interface {
	Trace(ctx context.Context, bitmap *image.Gray) ([]byte, error)
}

// AxisDetector finds axis candidates in a black-and-white bitmap.
type AxisDetector = vectorize.AxisDetector

// Drafter proposes an initial spec document, for example from a language
// model. Its output is untrusted.
type Drafter interface {
	Draft(ctx context.Context) ([]byte, error)
}

// RepairFunc receives a description of a failed solve and returns a
// corrected spec document.
type RepairFunc func(ctx context.Context, request string) ([]byte, error)

// Config configures a Pipeline. Only ProblemDir is required.
type Config struct {
	ProblemDir   string        // Directory holding the problem image and spec.json (required)
	SpecFile     string        // Spec document name inside ProblemDir (default "spec.json")
	FrameWidth   float64       // Drawing frame width in scene units (default 14)
	FrameHeight  float64       // Drawing frame height in scene units (default 8)
	DPI          int           // Recorded image resolution (default 300)
	Threshold    float64       // Binarization cut in (0, 1] (default 0.60)
	TracerCmd    string        // Tracer executable (default "potrace")
	TraceTimeout time.Duration // Per-trace limit (default 60s)
	NoAxisHints  bool          // Skip OpenCV axis detection
	MaxRetries   int           // Repair attempts (default 3)
	NoGit        bool          // Do not commit spec revisions
	Tracer       Tracer        // Overrides the potrace runner
	AxisDetector AxisDetector  // Overrides the Hough axis detector
	Drafter      Drafter       // Consulted by Generate when no template is given
	Logger       logr.Logger
}
