// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package solver

import (
	"fmt"
	"math"

	"github.com/petar-djukic/geoframe/internal/geom"
	"github.com/petar-djukic/geoframe/pkg/types"
)

// SquareWithADE is square ABCD with side AD on the x axis and an extra
// point E such that angle ADE is given and triangle AED has its right
// angle at E.
const SquareWithADE = "square_with_ADE"

var squareNames = []string{"A", "B", "C", "D", "E"}

func squareWithADETemplate() Template {
	return Template{
		Name:    SquareWithADE,
		Angles:  []string{"ADE"},
		Lengths: []string{"side"},
		Solve:   solveSquareWithADE,
	}
}

// solveSquareWithADE builds A=(0,0), D=(s,0), B=(0,-s), C=(s,-s). E is the
// foot of the perpendicular from A onto the ray leaving D at angle ADE above
// the x axis, so DE = s·cos θ and E = (s·sin²θ, s·sinθ·cosθ). For s=8 and
// θ=60° that is (6, 2√3). This replaces an older hard-coded E=(6, 4√3),
// which does not give angle ADE=60° with a right angle at E.
func solveSquareWithADE(c Constraints) (types.PointSet, error) {
	s := c.Lengths["side"]
	deg := c.Angles["ADE"]
	if deg <= 0 || deg >= 90 {
		return types.PointSet{}, &Error{
			Field:  "angles.ADE",
			Detail: fmt.Sprintf("must lie strictly between 0 and 90 degrees, got %v", deg),
			Err:    ErrNoFeasibleSolution,
		}
	}
	th := geom.Deg2Rad(deg)
	sin, cos := math.Sin(th), math.Cos(th)

	a := types.Vec2{X: 0, Y: 0}
	b := types.Vec2{X: 0, Y: -s}
	cc := types.Vec2{X: s, Y: -s}
	d := types.Vec2{X: s, Y: 0}
	e := types.Vec2{X: s * sin * sin, Y: s * sin * cos}

	return pointSet(squareNames, a, b, cc, d, e), nil
}
