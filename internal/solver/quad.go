// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package solver

import (
	"github.com/petar-djukic/geoframe/internal/geom"
	"github.com/petar-djukic/geoframe/pkg/types"
)

// QuadDiagLenAngle is a quadrilateral ABCD given base AD, the diagonal
// lengths AC and BD, and the angles DAC and ADB the diagonals make with
// the base.
const QuadDiagLenAngle = "quad_diag2len2ang"

var quadNames = []string{"A", "B", "C", "D"}

func quadDiagLenAngleTemplate() Template {
	return Template{
		Name:    QuadDiagLenAngle,
		Seeds:   []string{"A", "D"},
		Angles:  []string{"DAC", "ADB"},
		Lengths: []string{"AC", "BD"},
		Solve:   solveQuadDiagLenAngle,
	}
}

// solveQuadDiagLenAngle places C by rotating AD about A and B by rotating DA
// about D. Each rotation has two directions, giving four candidates; the
// first one that is simple, counter-clockwise and has crossing diagonals is
// returned.
func solveQuadDiagLenAngle(c Constraints) (types.PointSet, error) {
	a, d := c.Seed["A"], c.Seed["D"]
	thA := geom.Deg2Rad(c.Angles["DAC"])
	thD := geom.Deg2Rad(c.Angles["ADB"])
	ac, bd := c.Lengths["AC"], c.Lengths["BD"]

	uAD, ok := geom.Unit(d.Sub(a))
	if !ok {
		return types.PointSet{}, &Error{
			Field:  "seed",
			Detail: "A and D coincide",
			Err:    ErrDegenerateGeometry,
		}
	}
	uDA := uAD.Scale(-1)

	for _, sA := range branchSigns {
		cc := a.Add(geom.Rotate(uAD, sA*thA).Scale(ac))
		for _, sD := range branchSigns {
			b := d.Add(geom.Rotate(uDA, sD*thD).Scale(bd))
			if acceptQuad(a, b, cc, d) {
				return pointSet(quadNames, a, b, cc, d), nil
			}
		}
	}
	return types.PointSet{}, &Error{
		Detail: "none of the 4 branches is a simple counter-clockwise quadrilateral with crossing diagonals",
		Err:    ErrNoFeasibleSolution,
	}
}

// acceptQuad checks the candidate ABCD: opposite sides must not meet,
// the vertex order must be counter-clockwise, and the diagonals must cross.
func acceptQuad(a, b, c, d types.Vec2) bool {
	quad := []types.Vec2{a, b, c, d}
	if !geom.IsSimple(quad) {
		return false
	}
	if geom.SignedArea(quad) <= 0 {
		return false
	}
	return geom.SegmentsIntersect(a, c, b, d)
}
