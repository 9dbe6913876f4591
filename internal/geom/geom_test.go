// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/petar-djukic/geoframe/pkg/types"
)

func v(x, y float64) types.Vec2 { return types.Vec2{X: x, Y: y} }

func TestOrient2D(t *testing.T) {
	assert.Greater(t, Orient2D(v(0, 0), v(1, 0), v(0, 1)), 0.0)
	assert.Less(t, Orient2D(v(0, 0), v(1, 0), v(0, -1)), 0.0)
	assert.Equal(t, 0.0, Orient2D(v(0, 0), v(1, 1), v(2, 2)))
	assert.Equal(t, 2.0, Orient2D(v(0, 0), v(2, 0), v(0, 1)))
}

func TestSegmentsIntersect(t *testing.T) {
	tests := []struct {
		name           string
		p1, p2, p3, p4 types.Vec2
		want           bool
	}{
		{"proper crossing", v(0, 0), v(2, 2), v(0, 2), v(2, 0), true},
		{"disjoint", v(0, 0), v(1, 0), v(0, 1), v(1, 1), false},
		{"parallel collinear apart", v(0, 0), v(1, 0), v(2, 0), v(3, 0), false},
		{"collinear overlap", v(0, 0), v(2, 0), v(1, 0), v(3, 0), true},
		{"endpoint touches interior", v(0, 0), v(2, 0), v(1, 0), v(1, 5), true},
		{"shared endpoint", v(0, 0), v(1, 0), v(1, 0), v(1, 1), true},
		{"t-junction miss", v(0, 0), v(2, 0), v(1, 0.001), v(1, 5), false},
		{"lines cross outside segments", v(0, 0), v(1, 1), v(3, 0), v(2, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SegmentsIntersect(tt.p1, tt.p2, tt.p3, tt.p4))
			assert.Equal(t, tt.want, SegmentsIntersect(tt.p3, tt.p4, tt.p1, tt.p2), "symmetry")
		})
	}
}

func TestSignedArea(t *testing.T) {
	ccw := []types.Vec2{v(0, 0), v(2, 0), v(2, 1), v(0, 1)}
	assert.InDelta(t, 2.0, SignedArea(ccw), 1e-12)

	cw := []types.Vec2{v(0, 0), v(0, 1), v(2, 1), v(2, 0)}
	assert.InDelta(t, -2.0, SignedArea(cw), 1e-12)

	assert.Equal(t, 0.0, SignedArea([]types.Vec2{v(0, 0), v(1, 1)}))
}

func TestIsSimple(t *testing.T) {
	square := []types.Vec2{v(0, 0), v(1, 0), v(1, 1), v(0, 1)}
	assert.True(t, IsSimple(square))

	bowtie := []types.Vec2{v(0, 0), v(1, 1), v(1, 0), v(0, 1)}
	assert.False(t, IsSimple(bowtie))

	assert.True(t, IsSimple([]types.Vec2{v(0, 0), v(1, 0), v(0, 1)}))
	assert.False(t, IsSimple([]types.Vec2{v(0, 0), v(1, 0), v(2, 0)}))
}

func TestRotateAndUnit(t *testing.T) {
	r := Rotate(v(1, 0), Deg2Rad(90))
	assert.InDelta(t, 0.0, r.X, 1e-12)
	assert.InDelta(t, 1.0, r.Y, 1e-12)

	u, ok := Unit(v(3, 4))
	assert.True(t, ok)
	assert.InDelta(t, 1.0, u.Len(), 1e-12)

	_, ok = Unit(v(0, 0))
	assert.False(t, ok)
}

func TestPerpAndSegmentDist(t *testing.T) {
	assert.InDelta(t, 1.0, PerpDist(v(5, 1), v(0, 0), v(1, 0)), 1e-12)
	assert.InDelta(t, math.Sqrt2, PerpDist(v(1, 1), v(0, 0), v(0, 0)), 1e-12)

	assert.InDelta(t, math.Hypot(4, 1), SegmentDist(v(5, 1), v(0, 0), v(1, 0)), 1e-12)
	assert.InDelta(t, 1.0, SegmentDist(v(0.5, 1), v(0, 0), v(1, 0)), 1e-12)
}
