// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package axes finds long straight lines in a diagram bitmap that may be
// coordinate axes. It uses OpenCV's probabilistic Hough transform through
// gocv.
package axes

import (
	"fmt"
	"image"
	"math"
	"sort"

	"gocv.io/x/gocv"

	"github.com/petar-djukic/geoframe/pkg/types"
)

// HintConf is the confidence attached to every hint.
const HintConf = 0.7

// Detector runs HoughLinesP over the ink of a binarized bitmap.
type Detector struct {
	Rho          float32 // Distance resolution in pixels
	Theta        float32 // Angle resolution in radians
	Threshold    int     // Accumulator votes
	MinLenFactor float64 // Minimum line length as a fraction of min(w, h)
	MaxGap       float32 // Largest gap bridged within a line
	Keep         int     // Longest lines reported
}

// NewDetector returns a detector with the standard parameters.
func NewDetector() *Detector {
	return &Detector{
		Rho:          1,
		Theta:        math.Pi / 180,
		Threshold:    120,
		MinLenFactor: 0.6,
		MaxGap:       3,
		Keep:         8,
	}
}

// DetectAxes returns up to Keep hints in bitmap pixel coordinates, longest
// first. Dark pixels are treated as ink.
func (d *Detector) DetectAxes(bitmap *image.Gray) ([]types.AxisHint, error) {
	b := bitmap.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, nil
	}

	buf := make([]byte, w*h)
	for y := 0; y < h; y++ {
		copy(buf[y*w:(y+1)*w], bitmap.Pix[y*bitmap.Stride:])
	}
	src, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC1, buf)
	if err != nil {
		return nil, fmt.Errorf("loading bitmap into opencv: %w", err)
	}
	defer src.Close()

	ink := gocv.NewMat()
	defer ink.Close()
	gocv.BitwiseNot(src, &ink)

	lines := gocv.NewMat()
	defer lines.Close()
	minLen := float32(d.MinLenFactor * float64(min(w, h)))
	gocv.HoughLinesPWithParams(ink, &lines, d.Rho, d.Theta, d.Threshold, minLen, d.MaxGap)

	segs := make([][4]int, 0, lines.Rows())
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		segs = append(segs, [4]int{int(v[0]), int(v[1]), int(v[2]), int(v[3])})
	}
	return Rank(segs, d.Keep), nil
}

// Rank orders segments (x1, y1, x2, y2) by descending length, keeps the
// first keep of them and labels them axcand0, axcand1, ...
func Rank(segs [][4]int, keep int) []types.AxisHint {
	sorted := append([][4]int(nil), segs...)
	length := func(s [4]int) float64 {
		return math.Hypot(float64(s[2]-s[0]), float64(s[3]-s[1]))
	}
	sort.SliceStable(sorted, func(i, j int) bool { return length(sorted[i]) > length(sorted[j]) })
	if keep >= 0 && len(sorted) > keep {
		sorted = sorted[:keep]
	}

	hints := make([]types.AxisHint, len(sorted))
	for i, s := range sorted {
		hints[i] = types.AxisHint{
			ID: fmt.Sprintf("axcand%d", i),
			Line: [2]types.Vec2{
				{X: float64(s[0]), Y: float64(s[1])},
				{X: float64(s[2]), Y: float64(s[3])},
			},
			Conf: HintConf,
		}
	}
	return hints
}
