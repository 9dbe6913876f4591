// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import "encoding/json"

// EdgeKind distinguishes straight segments from general polylines.
type EdgeKind string

const (
	EdgeSegment  EdgeKind = "segment_px"
	EdgePolyline EdgeKind = "polyline_px"
)

// AnchorItem is the vectorized summary of one picture region. It is built
// once per region and never modified afterwards.
type AnchorItem struct {
	ID        string         `json:"id,omitempty"`
	Category  string         `json:"category"`
	Type      string         `json:"type"`
	Image     ImageInfo      `json:"image"`
	Transform FrameTransform `json:"transform"`
	Anchors   Anchors        `json:"anchors"`
}

// ImageInfo describes the raster an AnchorItem was extracted from.
type ImageInfo struct {
	URI    string `json:"uri"`
	SizePx [2]int `json:"size_px"`
	DPI    int    `json:"dpi"`
	CropPx []int  `json:"crop_px,omitempty"` // [x0, y0, x1, y1] in the source image
}

// FrameTransform maps pixel coordinates into the drawing frame and carries
// the tolerances consumers use to compare a reconstruction with the drawing.
type FrameTransform struct {
	PxToFrame  Affine     `json:"px_to_frame"`
	Tolerances Tolerances `json:"tolerances"`
}

// Affine is p' = A·p + T.
type Affine struct {
	A [2][2]float64 `json:"A"`
	T [2]float64    `json:"t"`
}

// Apply maps p through the transform.
func (a Affine) Apply(p Vec2) Vec2 {
	return Vec2{
		X: a.A[0][0]*p.X + a.A[0][1]*p.Y + a.T[0],
		Y: a.A[1][0]*p.X + a.A[1][1]*p.Y + a.T[1],
	}
}

// Tolerances are match thresholds expressed in pixels and degrees.
type Tolerances struct {
	PosPx  float64 `json:"pos_px"`
	AngDeg float64 `json:"ang_deg"`
	LenPx  float64 `json:"len_px"`
}

// Anchors groups the primitives extracted from the picture. Curves, Points
// and TextBoxes are reserved for richer extractors and are emitted empty.
type Anchors struct {
	Edges     []Edge            `json:"edges"`
	Curves    []Edge            `json:"curves"`
	Points    []Vec2            `json:"points"`
	AxesHints []AxisHint        `json:"axes_hints"`
	TextBoxes []json.RawMessage `json:"text_boxes"`
}

// Edge is a segment (P1, P2) or a polyline (Points), in SVG pixel space.
type Edge struct {
	ID     string   `json:"id"`
	Kind   EdgeKind `json:"kind"`
	P1     *Vec2    `json:"p1_px,omitempty"`
	P2     *Vec2    `json:"p2_px,omitempty"`
	Points []Vec2   `json:"pts_px,omitempty"`
	Conf   float64  `json:"conf"`
}

// AxisHint is a long straight line that may be a coordinate axis.
type AxisHint struct {
	ID   string  `json:"id"`
	Line [2]Vec2 `json:"line_px"`
	Conf float64 `json:"conf"`
}

// VectorAnchors is the consolidated per-problem anchor document.
type VectorAnchors struct {
	RunID         string       `json:"run_id,omitempty"`
	VectorAnchors []AnchorItem `json:"vector_anchors"`
}
