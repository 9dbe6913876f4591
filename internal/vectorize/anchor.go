// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package vectorize turns a raster diagram into an AnchorItem: traced
// polylines in SVG pixel space plus the affine map into the drawing frame.
package vectorize

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"math"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/petar-djukic/geoframe/pkg/types"
)

// Fixed values of the anchor document.
const (
	ItemType       = "raster_with_anchors"
	edgeConf       = 0.90
	segmentMaxPts  = 6
	segmentMinSpan = 10.0
	flatness       = 0.05
)

// Options tunes a single BuildAnchorItem call.
type Options struct {
	FrameWidth, FrameHeight float64 // Drawing-frame size in scene units
	DPI                     int
	Threshold               float64 // Binarization cut in [0, 1]

	SampleStep  float64 // Arc-length pixels per resampled point
	MergeGap    float64 // Resampled points closer than this are merged
	SimplifyEps float64 // RDP tolerance in pixels
	Quantum     float64 // Coordinate grid in pixels
	MinBBoxArea float64
	MinLength   float64
	MaxPaths    int
	PointCap    int // Stop adding paths once this many points are kept
	Tolerances  types.Tolerances

	Crop    []int  // Optional region of the source image, [x0,y0,x1,y1] or [x,y,w,h]
	CropOut string // When set with Crop, the crop is saved here and used as the item's URI
}

// DefaultOptions returns the standard tuning.
func DefaultOptions() Options {
	return Options{
		FrameWidth:  14,
		FrameHeight: 8,
		DPI:         300,
		Threshold:   0.60,
		SampleStep:  3,
		MergeGap:    0.8,
		SimplifyEps: 1.2,
		Quantum:     0.1,
		MinBBoxArea: 80,
		MinLength:   40,
		MaxPaths:    600,
		PointCap:    50000,
		Tolerances:  types.Tolerances{PosPx: 1, AngDeg: 1, LenPx: 2},
	}
}

// AxisDetector finds long straight lines in a binarized bitmap. Hints are
// returned in bitmap pixel coordinates.
type AxisDetector interface {
	DetectAxes(bitmap *image.Gray) ([]types.AxisHint, error)
}

// Vectorizer builds anchor items with a tracer and an optional axis
// detector.
type Vectorizer struct {
	tracer Tracer
	axes   AxisDetector
	log    logr.Logger
	newID  func() string
}

// Option configures a Vectorizer.
type Option func(*Vectorizer)

// WithAxisDetector enables axis hints.
func WithAxisDetector(d AxisDetector) Option {
	return func(v *Vectorizer) { v.axes = d }
}

// WithLogger sets the logger.
func WithLogger(log logr.Logger) Option {
	return func(v *Vectorizer) { v.log = log }
}

// WithIDFunc overrides item id generation.
func WithIDFunc(f func() string) Option {
	return func(v *Vectorizer) { v.newID = f }
}

// New returns a Vectorizer that traces with t.
func New(t Tracer, opts ...Option) *Vectorizer {
	v := &Vectorizer{
		tracer: t,
		log:    logr.Discard(),
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// BuildAnchorItem vectorizes the image at imagePath. An unreadable image
// and tracer failures are returned as errors. Paths that collapse to a
// single point are dropped.
func (v *Vectorizer) BuildAnchorItem(ctx context.Context, imagePath string, opts Options) (*types.AnchorItem, error) {
	img, err := Load(imagePath)
	if err != nil {
		return nil, err
	}

	uri := imagePath
	var cropPx []int
	if len(opts.Crop) > 0 {
		r, ok := CropRect(img.Bounds(), opts.Crop)
		if !ok {
			return nil, fmt.Errorf("%w: %v inside %v", ErrEmptyCrop, opts.Crop, img.Bounds())
		}
		img = Crop(img, r)
		cropPx = []int{r.Min.X, r.Min.Y, r.Max.X, r.Max.Y}
		if opts.CropOut != "" {
			if err := imaging.Save(img, opts.CropOut); err != nil {
				return nil, fmt.Errorf("saving crop: %w", err)
			}
			uri = opts.CropOut
		}
	}

	bitmap := Binarize(Grayscale(img), opts.Threshold)
	rasterW, rasterH := bitmap.Bounds().Dx(), bitmap.Bounds().Dy()

	svg, err := v.tracer.Trace(ctx, bitmap)
	if err != nil {
		return nil, err
	}
	doc, err := ParseSVG(svg)
	if err != nil {
		return nil, err
	}

	edges := v.edges(doc, opts)

	hints := []types.AxisHint{}
	if v.axes != nil {
		raw, err := v.axes.DetectAxes(bitmap)
		if err != nil {
			return nil, fmt.Errorf("detecting axes in %s: %w", imagePath, err)
		}
		hints = scaleHints(raw, doc, rasterW, rasterH)
	}

	useW, useH := rasterW, rasterH
	if doc.Width > 0 {
		useW = int(doc.Width)
	}
	if doc.Height > 0 {
		useH = int(doc.Height)
	}

	abs, err := filepath.Abs(uri)
	if err == nil {
		uri = abs
	}
	item := &types.AnchorItem{
		ID:       v.newID(),
		Category: types.CategoryPicture,
		Type:     ItemType,
		Image: types.ImageInfo{
			URI:    "file://" + filepath.ToSlash(uri),
			SizePx: [2]int{useW, useH},
			DPI:    opts.DPI,
			CropPx: cropPx,
		},
		Transform: types.FrameTransform{
			PxToFrame:  FrameAffine(opts.FrameWidth, opts.FrameHeight, useW, useH),
			Tolerances: opts.Tolerances,
		},
		Anchors: types.Anchors{
			Edges:     edges,
			Curves:    []types.Edge{},
			Points:    []types.Vec2{},
			AxesHints: hints,
			TextBoxes: []json.RawMessage{},
		},
	}
	v.log.V(1).Info("anchor item built", "image", imagePath, "edges", len(edges), "hints", len(hints), "size", item.Image.SizePx)
	return item, nil
}

// Polylines flattens, filters, resamples, simplifies and quantizes the
// subpaths of doc. Output order follows descending path length; adding
// stops after the path that pushes the point total past opts.PointCap.
func Polylines(doc *Document, opts Options) []Candidate {
	flat := make([][]types.Vec2, len(doc.Subpaths))
	for i, sp := range doc.Subpaths {
		flat[i] = Flatten(sp, flatness)
	}

	var out []Candidate
	total := 0
	for _, c := range SelectCandidates(flat, opts.MinBBoxArea, opts.MinLength, opts.MaxPaths) {
		pts := ResampleArcLength(c.Points, SampleCount(c.Length, opts.SampleStep), opts.MergeGap)
		pts = Quantize(Simplify(pts, opts.SimplifyEps), opts.Quantum)
		if len(pts) <= 1 {
			continue
		}
		c.Points = pts
		out = append(out, c)
		total += len(pts)
		if opts.PointCap > 0 && total > opts.PointCap {
			break
		}
	}
	return out
}

func (v *Vectorizer) edges(doc *Document, opts Options) []types.Edge {
	polys := Polylines(doc, opts)
	edges := make([]types.Edge, 0, len(polys))
	for _, c := range polys {
		edges = append(edges, ClassifyEdge(c.ID, c.Points))
	}
	v.log.V(1).Info("traced paths", "subpaths", len(doc.Subpaths), "kept", len(edges))
	return edges
}

// ClassifyEdge emits short polylines with well separated endpoints as
// segments and everything else as polylines. Coordinates are rounded to
// two decimals.
func ClassifyEdge(id string, pts []types.Vec2) types.Edge {
	first, last := round2(pts[0]), round2(pts[len(pts)-1])
	if len(pts) <= segmentMaxPts && pts[0].Dist(pts[len(pts)-1]) > segmentMinSpan {
		return types.Edge{ID: id, Kind: types.EdgeSegment, P1: &first, P2: &last, Conf: edgeConf}
	}
	rounded := make([]types.Vec2, len(pts))
	for i, p := range pts {
		rounded[i] = round2(p)
	}
	return types.Edge{ID: id, Kind: types.EdgePolyline, Points: rounded, Conf: edgeConf}
}

// FrameAffine maps a w×h pixel image onto a fw×fh frame centred on the
// origin with y pointing up.
func FrameAffine(fw, fh float64, w, h int) types.Affine {
	return types.Affine{
		A: [2][2]float64{{fw / float64(w), 0}, {0, -fh / float64(h)}},
		T: [2]float64{-fw / 2, fh / 2},
	}
}

// scaleHints moves hints from raster pixels into SVG user space.
func scaleHints(hints []types.AxisHint, doc *Document, w, h int) []types.AxisHint {
	sx, sy := 1.0, 1.0
	if doc.Width > 0 && w > 0 {
		sx = doc.Width / float64(w)
	}
	if doc.Height > 0 && h > 0 {
		sy = doc.Height / float64(h)
	}
	out := make([]types.AxisHint, len(hints))
	for i, hint := range hints {
		hint.Line[0] = round2(types.Vec2{X: hint.Line[0].X * sx, Y: hint.Line[0].Y * sy})
		hint.Line[1] = round2(types.Vec2{X: hint.Line[1].X * sx, Y: hint.Line[1].Y * sy})
		out[i] = hint
	}
	return out
}

func round2(p types.Vec2) types.Vec2 {
	return types.Vec2{X: math.Round(p.X*100) / 100, Y: math.Round(p.Y*100) / 100}
}

func pathID(i int) string { return "path" + strconv.Itoa(i) }
