// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package frame fits solved geometry into a drawing box with a uniform
// scale and a translation, so angles and length ratios survive.
package frame

import (
	"errors"
	"fmt"
	"math"

	"github.com/petar-djukic/geoframe/pkg/types"
)

// floor replaces a zero bounding-box extent so the other axis governs the
// scale.
const floor = 1e-9

var (
	ErrEmpty      = errors.New("no points to normalize")
	ErrNonFinite  = errors.New("non-finite point")
	ErrInvalidBox = errors.New("invalid box")
	ErrDegenerate = errors.New("all points coincide")
)

// Bounds returns the axis-aligned bounding box of points.
func Bounds(points types.PointSet) (lo, hi types.Vec2) {
	lo = types.Vec2{X: math.Inf(1), Y: math.Inf(1)}
	hi = types.Vec2{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, n := range points.Names() {
		p, _ := points.Get(n)
		lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
		hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
	}
	return lo, hi
}

// Normalize scales and translates points into [box.Min+margin,
// box.Max-margin]. The more restrictive axis sets the scale, and the scaled
// bounding box's lower-left corner lands on box.Min+margin. Names keep
// their order and every z is set to 0.
func Normalize(points types.PointSet, box types.Box) (types.PointSet, float64, error) {
	if points.Len() == 0 {
		return types.PointSet{}, 0, ErrEmpty
	}
	for _, n := range points.Names() {
		p, _ := points.Get(n)
		if !p.Finite() {
			return types.PointSet{}, 0, fmt.Errorf("%w: %s", ErrNonFinite, n)
		}
	}

	availW := box.Width() - 2*box.Margin
	availH := box.Height() - 2*box.Margin
	if !(availW > 0 && availH > 0) || box.Margin < 0 {
		return types.PointSet{}, 0, fmt.Errorf("%w: min %v, max %v, margin %v leave no room",
			ErrInvalidBox, box.Min, box.Max, box.Margin)
	}

	lo, hi := Bounds(points)
	w, h := hi.X-lo.X, hi.Y-lo.Y
	if w <= 0 && h <= 0 {
		return types.PointSet{}, 0, ErrDegenerate
	}
	scale := math.Min(availW/math.Max(w, floor), availH/math.Max(h, floor))

	origin := types.Vec2{X: box.Min.X + box.Margin, Y: box.Min.Y + box.Margin}
	var out types.PointSet
	for _, n := range points.Names() {
		p, _ := points.Get(n)
		q := p.XY().Sub(lo).Scale(scale).Add(origin)
		out.Set(n, q.XYZ())
	}
	return out, scale, nil
}
