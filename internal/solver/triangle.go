// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package solver

import (
	"github.com/petar-djukic/geoframe/internal/geom"
	"github.com/petar-djukic/geoframe/pkg/types"
)

// TriangleSAS is triangle ABC from side AB (the seeds), the angle BAC and
// the length AC.
const TriangleSAS = "triangle_sas"

var triangleNames = []string{"A", "B", "C"}

func triangleSASTemplate() Template {
	return Template{
		Name:    TriangleSAS,
		Seeds:   []string{"A", "B"},
		Angles:  []string{"BAC"},
		Lengths: []string{"AC"},
		Solve:   solveTriangleSAS,
	}
}

func solveTriangleSAS(c Constraints) (types.PointSet, error) {
	a, b := c.Seed["A"], c.Seed["B"]
	th := geom.Deg2Rad(c.Angles["BAC"])
	ac := c.Lengths["AC"]

	uAB, ok := geom.Unit(b.Sub(a))
	if !ok {
		return types.PointSet{}, &Error{Field: "seed", Detail: "A and B coincide", Err: ErrDegenerateGeometry}
	}
	for _, s := range branchSigns {
		cc := a.Add(geom.Rotate(uAB, s*th).Scale(ac))
		if geom.Orient2D(a, b, cc) > geom.Eps {
			return pointSet(triangleNames, a, b, cc), nil
		}
	}
	return types.PointSet{}, &Error{
		Field:  "angles.BAC",
		Detail: "angle makes A, B and C collinear",
		Err:    ErrDegenerateGeometry,
	}
}
