// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import "encoding/json"

// TypePlaceholder marks a spec whose template has not been authored yet.
const TypePlaceholder = "__TBD__"

// Status is the lifecycle state of a GeometrySpec.
type Status string

const (
	StatusDraft  Status = "draft"  // Constraints may be incomplete; points are empty
	StatusSolved Status = "solved" // Points and scale are populated
)

// Box is the drawing frame solved geometry is normalized into.
type Box struct {
	Min    Vec2    `json:"min"`
	Max    Vec2    `json:"max"`
	Margin float64 `json:"margin"`
}

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 { return b.Max.X - b.Min.X }

// Height returns the vertical extent of the box.
func (b Box) Height() float64 { return b.Max.Y - b.Min.Y }

// GeometrySpec is the declarative description of one figure. It is persisted
// as spec.json in the problem's working directory.
type GeometrySpec struct {
	Type        string                     `json:"type"`
	Seed        map[string]Vec2            `json:"seed"`
	Angles      map[string]float64         `json:"angles"`
	Lengths     map[string]float64         `json:"lengths"`
	Box         Box                        `json:"box"`
	Points      PointSet                   `json:"points"`
	Scale       float64                    `json:"scale"`
	Extras      []json.RawMessage          `json:"extras"`
	PointLabels map[string]json.RawMessage `json:"point_labels"`
	BorderOrder []string                   `json:"border_order,omitempty"`
	Status      Status                     `json:"status"`
	Meta        map[string]any             `json:"meta"`
}

// Clone returns a copy that shares no maps or slices with s. Extras and
// label values are treated as immutable and are not deep-copied.
func (s *GeometrySpec) Clone() *GeometrySpec {
	out := *s

	out.Seed = make(map[string]Vec2, len(s.Seed))
	for k, v := range s.Seed {
		out.Seed[k] = v
	}
	out.Angles = make(map[string]float64, len(s.Angles))
	for k, v := range s.Angles {
		out.Angles[k] = v
	}
	out.Lengths = make(map[string]float64, len(s.Lengths))
	for k, v := range s.Lengths {
		out.Lengths[k] = v
	}
	out.Points = s.Points.Clone()
	out.Extras = append([]json.RawMessage{}, s.Extras...)
	out.PointLabels = make(map[string]json.RawMessage, len(s.PointLabels))
	for k, v := range s.PointLabels {
		out.PointLabels[k] = v
	}
	if s.BorderOrder != nil {
		out.BorderOrder = append([]string{}, s.BorderOrder...)
	}
	out.Meta = make(map[string]any, len(s.Meta))
	for k, v := range s.Meta {
		out.Meta[k] = v
	}
	return &out
}

// HasTemplate reports whether a template name has been authored.
func (s *GeometrySpec) HasTemplate() bool {
	return s.Type != "" && s.Type != TypePlaceholder
}
