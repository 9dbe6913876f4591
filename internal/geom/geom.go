// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package geom holds the planar predicates the solver and vectorizer share:
// orientation, segment intersection, signed area, rotation, and
// point-to-line distance.
package geom

import (
	"math"

	"github.com/petar-djukic/geoframe/pkg/types"
)

// Eps is the absolute tolerance used by the collinearity and on-segment
// tests. It absorbs round-off when a configuration is exactly degenerate.
const Eps = 1e-9

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 { return deg * math.Pi / 180 }

// Rotate turns v counter-clockwise by rad radians.
func Rotate(v types.Vec2, rad float64) types.Vec2 {
	c, s := math.Cos(rad), math.Sin(rad)
	return types.Vec2{X: c*v.X - s*v.Y, Y: s*v.X + c*v.Y}
}

// Unit returns v scaled to length one. ok is false for a zero vector.
func Unit(v types.Vec2) (u types.Vec2, ok bool) {
	n := v.Len()
	if n <= Eps {
		return types.Vec2{}, false
	}
	return v.Scale(1 / n), true
}

// Orient2D returns twice the signed area of triangle abc. It is positive
// when c lies counter-clockwise of the directed line a→b.
func Orient2D(a, b, c types.Vec2) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// onSegmentBox reports whether p lies inside the bounding box of ab,
// widened by Eps. Callers pair it with a collinearity test.
func onSegmentBox(a, b, p types.Vec2) bool {
	return math.Min(a.X, b.X)-Eps <= p.X && p.X <= math.Max(a.X, b.X)+Eps &&
		math.Min(a.Y, b.Y)-Eps <= p.Y && p.Y <= math.Max(a.Y, b.Y)+Eps
}

// SegmentsIntersect reports whether segment p1p2 and segment p3p4 cross
// properly or touch. An endpoint lying on the other segment counts as an
// intersection, which makes simplicity checks reject polygons with a vertex
// on a non-adjacent edge.
func SegmentsIntersect(p1, p2, p3, p4 types.Vec2) bool {
	o1 := Orient2D(p1, p2, p3)
	o2 := Orient2D(p1, p2, p4)
	o3 := Orient2D(p3, p4, p1)
	o4 := Orient2D(p3, p4, p2)

	if o1*o2 < -Eps && o3*o4 < -Eps {
		return true
	}
	if math.Abs(o1) <= Eps && onSegmentBox(p1, p2, p3) {
		return true
	}
	if math.Abs(o2) <= Eps && onSegmentBox(p1, p2, p4) {
		return true
	}
	if math.Abs(o3) <= Eps && onSegmentBox(p3, p4, p1) {
		return true
	}
	if math.Abs(o4) <= Eps && onSegmentBox(p3, p4, p2) {
		return true
	}
	return false
}

// SignedArea is the shoelace area of the closed polygon. Positive means the
// vertices run counter-clockwise.
func SignedArea(poly []types.Vec2) float64 {
	n := len(poly)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
	}
	return sum / 2
}

// IsSimple reports whether no two non-adjacent edges of the closed polygon
// intersect.
func IsSimple(poly []types.Vec2) bool {
	n := len(poly)
	if n < 4 {
		return n == 3 && math.Abs(SignedArea(poly)) > Eps
	}
	for i := 0; i < n; i++ {
		a1, a2 := poly[i], poly[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // edges share vertex 0
			}
			if SegmentsIntersect(a1, a2, poly[j], poly[(j+1)%n]) {
				return false
			}
		}
	}
	return true
}

// PerpDist is the distance from p to the infinite line through a and b,
// or to a itself when a and b coincide.
func PerpDist(p, a, b types.Vec2) float64 {
	d := b.Sub(a)
	n := d.Len()
	if n == 0 {
		return p.Dist(a)
	}
	return math.Abs(d.X*(a.Y-p.Y)-d.Y*(a.X-p.X)) / n
}

// SegmentDist is the distance from p to the closed segment ab.
func SegmentDist(p, a, b types.Vec2) float64 {
	d := b.Sub(a)
	l2 := d.X*d.X + d.Y*d.Y
	if l2 == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*d.X + (p.Y-a.Y)*d.Y) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Dist(a.Add(d.Scale(t)))
}
