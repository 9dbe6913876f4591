// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines the data shared across geoframe packages: geometry
// specs, vector anchors, OCR regions, and the small vector types they use.
package types

import (
	"encoding/json"
	"fmt"
	"math"
)

// Vec2 is a point or vector in the plane. It encodes as the JSON array [x, y].
type Vec2 struct {
	X float64
	Y float64
}

func (v Vec2) Add(w Vec2) Vec2      { return Vec2{v.X + w.X, v.Y + w.Y} }
func (v Vec2) Sub(w Vec2) Vec2      { return Vec2{v.X - w.X, v.Y - w.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }

// Dist returns the Euclidean distance between v and w.
func (v Vec2) Dist(w Vec2) float64 { return v.Sub(w).Len() }

// Finite reports whether both coordinates are real numbers.
func (v Vec2) Finite() bool { return finite(v.X) && finite(v.Y) }

// XYZ lifts v onto the z=0 plane.
func (v Vec2) XYZ() Vec3 { return Vec3{X: v.X, Y: v.Y} }

func (v Vec2) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{v.X, v.Y})
}

// UnmarshalJSON accepts [x, y] and [x, y, z]; z is discarded.
func (v *Vec2) UnmarshalJSON(data []byte) error {
	var c []float64
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("decoding 2-D point: %w", err)
	}
	if len(c) != 2 && len(c) != 3 {
		return fmt.Errorf("decoding 2-D point: want 2 or 3 coordinates, got %d", len(c))
	}
	v.X, v.Y = c[0], c[1]
	return nil
}

// Vec3 is a solved point. Geometry is planar, so Z is always 0 in solver
// output; the third component exists because downstream renderers expect it.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// XY drops the z component.
func (v Vec3) XY() Vec2 { return Vec2{X: v.X, Y: v.Y} }

// Finite reports whether every coordinate is a real number.
func (v Vec3) Finite() bool { return finite(v.X) && finite(v.Y) && finite(v.Z) }

func (v Vec3) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{v.X, v.Y, v.Z})
}

// UnmarshalJSON accepts [x, y] and [x, y, z].
func (v *Vec3) UnmarshalJSON(data []byte) error {
	var c []float64
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("decoding point: %w", err)
	}
	switch len(c) {
	case 2:
		*v = Vec3{X: c[0], Y: c[1]}
	case 3:
		*v = Vec3{X: c[0], Y: c[1], Z: c[2]}
	default:
		return fmt.Errorf("decoding point: want 2 or 3 coordinates, got %d", len(c))
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
