// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package solver

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/geoframe/internal/geom"
	"github.com/petar-djukic/geoframe/pkg/types"
)

func quadSpec(d types.Vec2, dac, adb, ac, bd float64) *types.GeometrySpec {
	return &types.GeometrySpec{
		Type:    QuadDiagLenAngle,
		Seed:    map[string]types.Vec2{"A": {}, "D": d},
		Angles:  map[string]float64{"DAC": dac, "ADB": adb},
		Lengths: map[string]float64{"AC": ac, "BD": bd},
	}
}

func xy(t *testing.T, ps types.PointSet, name string) types.Vec2 {
	t.Helper()
	p, ok := ps.Get(name)
	require.True(t, ok, "point %s missing", name)
	assert.Equal(t, 0.0, p.Z)
	return p.XY()
}

func quadVertices(t *testing.T, ps types.PointSet) (a, b, c, d types.Vec2) {
	t.Helper()
	require.Equal(t, []string{"A", "B", "C", "D"}, ps.Names())
	return xy(t, ps, "A"), xy(t, ps, "B"), xy(t, ps, "C"), xy(t, ps, "D")
}

func TestSolve_QuadFeasible(t *testing.T) {
	ps, err := Solve(quadSpec(types.Vec2{X: 4}, 30, 40, 5, 5))
	require.NoError(t, err)

	a, b, c, d := quadVertices(t, ps)
	assert.Equal(t, types.Vec2{}, a)
	assert.Equal(t, types.Vec2{X: 4}, d)
	assert.InDelta(t, 4-5*math.Cos(geom.Deg2Rad(40)), b.X, 1e-9)
	assert.InDelta(t, -5*math.Sin(geom.Deg2Rad(40)), b.Y, 1e-9)
	assert.InDelta(t, 5*math.Cos(geom.Deg2Rad(30)), c.X, 1e-9)
	assert.InDelta(t, -2.5, c.Y, 1e-9)

	assert.Greater(t, geom.Orient2D(a, b, c), 0.0)
	assert.Greater(t, geom.Orient2D(b, c, d), 0.0)
	assert.InDelta(t, 5, a.Dist(c), 1e-9)
	assert.InDelta(t, 5, b.Dist(d), 1e-9)
}

func TestSolve_QuadThinButFeasible(t *testing.T) {
	// Shallow angles with long diagonals still admit one branch: a long,
	// thin trapezoid below AD whose diagonals cross near x=0.5.
	ps, err := Solve(quadSpec(types.Vec2{X: 1}, 1, 1, 100, 100))
	require.NoError(t, err)

	a, b, c, d := quadVertices(t, ps)
	assert.Less(t, b.Y, 0.0)
	assert.Less(t, c.Y, 0.0)
	assert.Greater(t, geom.SignedArea([]types.Vec2{a, b, c, d}), 0.0)
	assert.True(t, geom.SegmentsIntersect(a, c, b, d))
}

func TestSolve_QuadInfeasible(t *testing.T) {
	// Obtuse base angles send AC left of A and BD right of D, so the
	// diagonals never meet on any branch.
	_, err := Solve(quadSpec(types.Vec2{X: 1}, 120, 120, 1, 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoFeasibleSolution)
	assert.False(t, IsAuthoringError(err))

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, QuadDiagLenAngle, se.Template)
}

func TestSolve_QuadCoincidentSeeds(t *testing.T) {
	_, err := Solve(quadSpec(types.Vec2{}, 30, 40, 5, 5))
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
	assert.ErrorIs(t, err, ErrNoFeasibleSolution)
}

func TestSolve_QuadAcceptedBranchesAreValid(t *testing.T) {
	var solved int
	for _, dac := range []float64{10, 25, 45, 60, 80, 100} {
		for _, adb := range []float64{10, 35, 55, 70, 95} {
			for _, l := range [][2]float64{{3, 3}, {5, 2}, {2, 6}} {
				ps, err := Solve(quadSpec(types.Vec2{X: 4}, dac, adb, l[0], l[1]))
				if err != nil {
					assert.ErrorIs(t, err, ErrNoFeasibleSolution)
					continue
				}
				solved++
				a, b, c, d := quadVertices(t, ps)
				poly := []types.Vec2{a, b, c, d}
				assert.Greater(t, geom.SignedArea(poly), 0.0)
				assert.True(t, geom.IsSimple(poly))
				assert.True(t, geom.SegmentsIntersect(a, c, b, d))
			}
		}
	}
	assert.Greater(t, solved, 0)
}

func TestSolve_SquareWithADE(t *testing.T) {
	tests := []struct {
		side float64
		want types.Vec2
	}{
		{8, types.Vec2{X: 6, Y: 2 * math.Sqrt(3)}},
		{4, types.Vec2{X: 3, Y: math.Sqrt(3)}},
		{12, types.Vec2{X: 9, Y: 3 * math.Sqrt(3)}},
	}
	for _, tt := range tests {
		spec := &types.GeometrySpec{
			Type:    SquareWithADE,
			Angles:  map[string]float64{"ADE": 60},
			Lengths: map[string]float64{"side": tt.side},
		}
		ps, err := Solve(spec)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C", "D", "E"}, ps.Names())

		a, d, e := xy(t, ps, "A"), xy(t, ps, "D"), xy(t, ps, "E")
		assert.InDelta(t, tt.want.X, e.X, 1e-6)
		assert.InDelta(t, tt.want.Y, e.Y, 1e-6)
		assert.Equal(t, types.Vec2{X: 0, Y: -tt.side}, xy(t, ps, "B"))
		assert.Equal(t, types.Vec2{X: tt.side, Y: -tt.side}, xy(t, ps, "C"))

		ea, ed := a.Sub(e), d.Sub(e)
		assert.InDelta(t, 0, ea.X*ed.X+ea.Y*ed.Y, 1e-9, "right angle at E")
		da, de := a.Sub(d), e.Sub(d)
		angle := math.Acos((da.X*de.X + da.Y*de.Y) / (da.Len() * de.Len()))
		assert.InDelta(t, 60, angle*180/math.Pi, 1e-9)
	}
}

func TestSolve_SquareAngleOutOfRange(t *testing.T) {
	spec := &types.GeometrySpec{
		Type:    SquareWithADE,
		Angles:  map[string]float64{"ADE": 90},
		Lengths: map[string]float64{"side": 8},
	}
	_, err := Solve(spec)
	assert.ErrorIs(t, err, ErrNoFeasibleSolution)
	assert.Contains(t, err.Error(), "angles.ADE")
}

func TestSolve_TriangleSAS(t *testing.T) {
	spec := &types.GeometrySpec{
		Type:    TriangleSAS,
		Seed:    map[string]types.Vec2{"A": {}, "B": {X: 4}},
		Angles:  map[string]float64{"BAC": 60},
		Lengths: map[string]float64{"AC": 2},
	}
	ps, err := Solve(spec)
	require.NoError(t, err)
	c := xy(t, ps, "C")
	assert.InDelta(t, 1, c.X, 1e-9)
	assert.InDelta(t, math.Sqrt(3), c.Y, 1e-9)

	// A reflex angle flips to the counter-clockwise branch.
	spec.Angles["BAC"] = 270
	ps, err = Solve(spec)
	require.NoError(t, err)
	c = xy(t, ps, "C")
	assert.InDelta(t, 0, c.X, 1e-9)
	assert.InDelta(t, 2, c.Y, 1e-9)

	spec.Angles["BAC"] = 180
	_, err = Solve(spec)
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
}

func TestSolve_AuthoringErrors(t *testing.T) {
	tests := []struct {
		name      string
		spec      *types.GeometrySpec
		wantErr   error
		wantField string
	}{
		{
			name:      "unknown template",
			spec:      &types.GeometrySpec{Type: "hexagon"},
			wantErr:   ErrUnsupportedTemplate,
			wantField: "type",
		},
		{
			name:      "placeholder template",
			spec:      &types.GeometrySpec{Type: types.TypePlaceholder},
			wantErr:   ErrUnsupportedTemplate,
			wantField: "type",
		},
		{
			name: "missing length",
			spec: &types.GeometrySpec{
				Type:    QuadDiagLenAngle,
				Seed:    map[string]types.Vec2{"A": {}, "D": {X: 4}},
				Angles:  map[string]float64{"DAC": 30, "ADB": 40},
				Lengths: map[string]float64{"AC": 5},
			},
			wantErr:   ErrMissingConstraint,
			wantField: "lengths.BD",
		},
		{
			name:      "missing seed",
			spec:      quadSpecWithout("D"),
			wantErr:   ErrMissingConstraint,
			wantField: "seed.D",
		},
		{
			name:      "non-positive length",
			spec:      quadSpec(types.Vec2{X: 4}, 30, 40, 0, 5),
			wantErr:   ErrInvalidConstraint,
			wantField: "lengths.AC",
		},
		{
			name:      "nan angle",
			spec:      quadSpec(types.Vec2{X: 4}, math.NaN(), 40, 5, 5),
			wantErr:   ErrInvalidConstraint,
			wantField: "angles.DAC",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Solve(tt.spec)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsAuthoringError(err))

			var se *Error
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.wantField, se.Field)
		})
	}
}

func quadSpecWithout(seed string) *types.GeometrySpec {
	s := quadSpec(types.Vec2{X: 4}, 30, 40, 5, 5)
	delete(s.Seed, seed)
	return s
}

func TestSolve_DoesNotMutateSpec(t *testing.T) {
	spec := quadSpec(types.Vec2{X: 4}, 30, 40, 5, 5)
	before := spec.Clone()
	_, err := Solve(spec)
	require.NoError(t, err)
	assert.Equal(t, before.Seed, spec.Seed)
	assert.Equal(t, before.Angles, spec.Angles)
	assert.Equal(t, before.Lengths, spec.Lengths)
	assert.Equal(t, 0, spec.Points.Len())
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{QuadDiagLenAngle, SquareWithADE, TriangleSAS}, Default.Names())

	r := NewRegistry()
	require.NoError(t, r.Register(Template{
		Name:  "point",
		Solve: func(Constraints) (types.PointSet, error) { return pointSet([]string{"P"}, types.Vec2{X: math.Inf(1)}), nil },
	}))
	assert.Error(t, r.Register(Template{Name: "point", Solve: solveTriangleSAS}))
	assert.Error(t, r.Register(Template{Name: "nofunc"}))

	_, err := r.Solve(&types.GeometrySpec{Type: "point"})
	assert.ErrorIs(t, err, ErrDegenerateGeometry)

	assert.Panics(t, func() { NewRegistry(triangleSASTemplate(), triangleSASTemplate()) })
}
