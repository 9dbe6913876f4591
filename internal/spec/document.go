// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package spec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/petar-djukic/geoframe/pkg/types"
)

// Meta keys written by the lifecycle manager.
const (
	MetaNotes       = "notes"
	MetaCreatedAt   = "created_at"
	MetaGeneratedBy = "generated_by"
	MetaSolvedAt    = "solved_at"
)

// Values of meta.generated_by.
const (
	GeneratedByTemplate = "template"
	GeneratedByLLM      = "llm"
	GeneratedByDefault  = "default"
)

// DefaultNotes are the authoring hints placed in a fresh draft.
var DefaultNotes = []string{
	"Fill in the geometric constraints before solving.",
	"Set 'type' to a registered template (e.g. quad_diag2len2ang).",
}

// DefaultBox is the frame every spec falls back to.
func DefaultBox() types.Box {
	return types.Box{
		Min:    types.Vec2{X: -6, Y: -3},
		Max:    types.Vec2{X: 6, Y: 3},
		Margin: 0.2,
	}
}

// Default returns an empty draft with the default box.
func Default() *types.GeometrySpec {
	notes := make([]any, len(DefaultNotes))
	for i, n := range DefaultNotes {
		notes[i] = n
	}
	return &types.GeometrySpec{
		Type:        types.TypePlaceholder,
		Seed:        map[string]types.Vec2{},
		Angles:      map[string]float64{},
		Lengths:     map[string]float64{},
		Box:         DefaultBox(),
		Scale:       1,
		Extras:      []json.RawMessage{},
		PointLabels: map[string]json.RawMessage{},
		Status:      types.StatusDraft,
		Meta:        map[string]any{MetaNotes: notes},
	}
}

// MergeDefaults decodes partial, an untrusted JSON document, on top of a
// copy of defaults. Fields absent from partial keep their default, box
// fields individually so. defaults is not modified.
//
// A document claiming to be solved whose points do not cover every
// reference is demoted to a draft, so its constraints get solved again.
func MergeDefaults(partial []byte, defaults *types.GeometrySpec) (*types.GeometrySpec, error) {
	out := defaults.Clone()
	if len(bytes.TrimSpace(partial)) > 0 {
		if err := json.Unmarshal(partial, out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedSpec, err)
		}
	}
	fillShape(out, defaults)

	switch out.Status {
	case types.StatusDraft, types.StatusSolved:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrMalformedSpec, out.Status)
	}
	if out.Status == types.StatusSolved && CheckSolved(out) != nil {
		resetDraft(out)
	}
	return out, nil
}

// Decode reads a spec document, filling absent fields from Default.
func Decode(data []byte) (*types.GeometrySpec, error) {
	return MergeDefaults(data, Default())
}

// Encode renders spec as two-space indented JSON with a trailing newline.
// Labels keep '&', '<' and '>' literal.
func Encode(spec *types.GeometrySpec) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(spec); err != nil {
		return nil, fmt.Errorf("encoding spec: %w", err)
	}
	return buf.Bytes(), nil
}

// fillShape repairs fields an explicit JSON null cleared.
func fillShape(s, defaults *types.GeometrySpec) {
	if s.Type == "" {
		s.Type = defaults.Type
	}
	if s.Seed == nil {
		s.Seed = map[string]types.Vec2{}
	}
	if s.Angles == nil {
		s.Angles = map[string]float64{}
	}
	if s.Lengths == nil {
		s.Lengths = map[string]float64{}
	}
	if s.Extras == nil {
		s.Extras = []json.RawMessage{}
	}
	if s.PointLabels == nil {
		s.PointLabels = map[string]json.RawMessage{}
	}
	if s.Meta == nil {
		s.Meta = map[string]any{}
	}
	if notes, ok := s.Meta[MetaNotes].([]any); !ok || len(notes) == 0 {
		if d, ok := defaults.Meta[MetaNotes]; ok {
			s.Meta[MetaNotes] = d
		}
	}
	if s.Scale == 0 {
		s.Scale = 1
	}
	if s.Status == "" {
		s.Status = types.StatusDraft
	}
}

// resetDraft clears solved output so the document reads as an unsolved
// draft.
func resetDraft(s *types.GeometrySpec) {
	s.Points = types.PointSet{}
	s.Scale = 1
	s.Status = types.StatusDraft
	delete(s.Meta, MetaSolvedAt)
}
