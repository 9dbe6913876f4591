// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package vectorize

import (
	"math"
	"sort"

	"github.com/petar-djukic/geoframe/internal/geom"
	"github.com/petar-djukic/geoframe/pkg/types"
)

// flattenDepth bounds Bézier subdivision.
const flattenDepth = 16

// Flatten converts a subpath into a polyline whose chords stay within
// tolerance of the curves.
func Flatten(sp Subpath, tolerance float64) []types.Vec2 {
	if len(sp.Segments) == 0 {
		return nil
	}
	out := []types.Vec2{sp.Segments[0].P0}
	for _, c := range sp.Segments {
		flattenCubic(c, tolerance, flattenDepth, &out)
	}
	return out
}

// flattenCubic subdivides with de Casteljau until both control points lie
// within tolerance of the chord.
func flattenCubic(c Cubic, tolerance float64, depth int, out *[]types.Vec2) {
	if depth == 0 || (geom.PerpDist(c.P1, c.P0, c.P3) <= tolerance && geom.PerpDist(c.P2, c.P0, c.P3) <= tolerance) {
		*out = append(*out, c.P3)
		return
	}
	m01 := mid(c.P0, c.P1)
	m12 := mid(c.P1, c.P2)
	m23 := mid(c.P2, c.P3)
	m012 := mid(m01, m12)
	m123 := mid(m12, m23)
	m0123 := mid(m012, m123)
	flattenCubic(Cubic{c.P0, m01, m012, m0123}, tolerance, depth-1, out)
	flattenCubic(Cubic{m0123, m123, m23, c.P3}, tolerance, depth-1, out)
}

func mid(a, b types.Vec2) types.Vec2 { return a.Add(b).Scale(0.5) }

// Length is the total chord length of pts.
func Length(pts []types.Vec2) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += pts[i].Dist(pts[i-1])
	}
	return total
}

// BBoxArea is the area of the axis-aligned bounding box of pts.
func BBoxArea(pts []types.Vec2) float64 {
	if len(pts) == 0 {
		return 0
	}
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
		hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
	}
	return (hi.X - lo.X) * (hi.Y - lo.Y)
}

// SampleCount is the number of arc-length samples for a path of the given
// length: one per step, clamped to [20, 300].
func SampleCount(length, step float64) int {
	n := math.Ceil(length / math.Max(step, 1e-6))
	return int(math.Max(20, math.Min(300, n)))
}

// ResampleArcLength places n points evenly by arc length along pts, then
// drops any point closer than minGap to the previously kept one. The first
// point is always kept.
func ResampleArcLength(pts []types.Vec2, n int, minGap float64) []types.Vec2 {
	if len(pts) == 0 || n <= 0 {
		return nil
	}
	cum := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		cum[i] = cum[i-1] + pts[i].Dist(pts[i-1])
	}
	total := cum[len(cum)-1]

	samples := make([]types.Vec2, n)
	j := 0
	for k := 0; k < n; k++ {
		s := total
		if n > 1 {
			s = total * float64(k) / float64(n-1)
		}
		for j < len(pts)-2 && cum[j+1] < s {
			j++
		}
		if len(pts) == 1 {
			samples[k] = pts[0]
			continue
		}
		seg := cum[j+1] - cum[j]
		t := 0.0
		if seg > 0 {
			t = math.Max(0, math.Min(1, (s-cum[j])/seg))
		}
		samples[k] = pts[j].Add(pts[j+1].Sub(pts[j]).Scale(t))
	}

	kept := []types.Vec2{samples[0]}
	for _, p := range samples[1:] {
		if p.Dist(kept[len(kept)-1]) >= minGap {
			kept = append(kept, p)
		}
	}
	return kept
}

// Simplify is Ramer–Douglas–Peucker with tolerance eps. Every input point
// ends up within eps of the simplified polyline. Inputs with fewer than
// three points are returned as is.
func Simplify(pts []types.Vec2, eps float64) []types.Vec2 {
	if len(pts) < 3 {
		return pts
	}
	keep := make([]bool, len(pts))
	keep[0], keep[len(pts)-1] = true, true
	rdp(pts, 0, len(pts)-1, eps, keep)

	out := make([]types.Vec2, 0, len(pts))
	for i, k := range keep {
		if k {
			out = append(out, pts[i])
		}
	}
	return out
}

func rdp(pts []types.Vec2, lo, hi int, eps float64, keep []bool) {
	if hi-lo < 2 {
		return
	}
	idx, dmax := lo, 0.0
	for i := lo + 1; i < hi; i++ {
		if d := geom.SegmentDist(pts[i], pts[lo], pts[hi]); d > dmax {
			idx, dmax = i, d
		}
	}
	if dmax > eps {
		keep[idx] = true
		rdp(pts, lo, idx, eps, keep)
		rdp(pts, idx, hi, eps, keep)
	}
}

// Quantize rounds every coordinate to the nearest multiple of step. A
// non-positive step returns pts unchanged.
func Quantize(pts []types.Vec2, step float64) []types.Vec2 {
	if step <= 0 {
		return pts
	}
	out := make([]types.Vec2, len(pts))
	for i, p := range pts {
		out[i] = types.Vec2{X: math.Round(p.X/step) * step, Y: math.Round(p.Y/step) * step}
	}
	return out
}

// Candidate is a traced path that passed the size filters.
type Candidate struct {
	ID     string
	Points []types.Vec2 // Densely flattened, in SVG user space
	Length float64
}

// SelectCandidates keeps paths whose bounding-box area and length reach
// the minimums, ordered by descending length and cut to maxPaths. IDs are
// "path<i>" with i the path's position in the input. Ties keep input
// order.
func SelectCandidates(paths [][]types.Vec2, minArea, minLength float64, maxPaths int) []Candidate {
	var out []Candidate
	for i, p := range paths {
		if len(p) < 2 || BBoxArea(p) < minArea {
			continue
		}
		l := Length(p)
		if l < minLength {
			continue
		}
		out = append(out, Candidate{ID: pathID(i), Points: p, Length: l})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Length > out[j].Length })
	if maxPaths > 0 && len(out) > maxPaths {
		out = out[:maxPaths]
	}
	return out
}
