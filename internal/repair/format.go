// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repair

import (
	"errors"
	"fmt"
	"strings"

	"github.com/petar-djukic/geoframe/internal/solver"
	"github.com/petar-djukic/geoframe/internal/spec"
	"github.com/petar-djukic/geoframe/pkg/types"
)

const defaultMaxSpecBytes = 8192

// FormatConfig configures request formatting.
type FormatConfig struct {
	MaxSpecBytes int // Largest spec excerpt included (default 8192)
}

// FormatRequest describes a failed solve for whoever repairs the spec:
// the error with its structured detail, the templates that can be used,
// and the current document.
func FormatRequest(err error, current *types.GeometrySpec, templates []string, cfg FormatConfig) string {
	maxSpec := cfg.MaxSpecBytes
	if maxSpec == 0 {
		maxSpec = defaultMaxSpecBytes
	}

	var buf strings.Builder
	buf.WriteString("Solving spec.json failed. Reply with a corrected spec.json document and nothing else.\n\n")

	buf.WriteString("## Error\n\n")
	fmt.Fprintf(&buf, "%s\n", err)
	var se *solver.Error
	if errors.As(err, &se) {
		buf.WriteString("\n")
		fmt.Fprintf(&buf, "- kind: %s\n", kind(err))
		if se.Template != "" {
			fmt.Fprintf(&buf, "- template: %s\n", se.Template)
		}
		if se.Field != "" {
			fmt.Fprintf(&buf, "- field: %s\n", se.Field)
		}
		if se.Detail != "" {
			fmt.Fprintf(&buf, "- detail: %s\n", se.Detail)
		}
	}
	buf.WriteString("\n")
	buf.WriteString(hint(err))
	buf.WriteString("\n\n")

	if len(templates) > 0 {
		buf.WriteString("## Templates\n\n")
		for _, t := range templates {
			fmt.Fprintf(&buf, "- %s\n", t)
		}
		buf.WriteString("\n")
	}

	if current != nil {
		if data, err := spec.Encode(current); err == nil {
			text := string(data)
			if len(text) > maxSpec {
				text = text[:maxSpec] + "\n... (truncated)\n"
			}
			buf.WriteString("## Current spec.json\n\n```json\n")
			buf.WriteString(text)
			buf.WriteString("```\n")
		}
	}
	return buf.String()
}

func kind(err error) string {
	switch {
	case errors.Is(err, solver.ErrUnsupportedTemplate):
		return "unsupported template"
	case errors.Is(err, solver.ErrMissingConstraint):
		return "missing constraint"
	case errors.Is(err, solver.ErrInvalidConstraint):
		return "invalid constraint"
	case errors.Is(err, solver.ErrDegenerateGeometry):
		return "degenerate geometry"
	case errors.Is(err, solver.ErrNoFeasibleSolution):
		return "no feasible solution"
	}
	return "other"
}

func hint(err error) string {
	switch {
	case errors.Is(err, spec.ErrSpecIncomplete), errors.Is(err, solver.ErrUnsupportedTemplate):
		return "Set \"type\" to one of the templates below."
	case solver.IsAuthoringError(err):
		return "Add or correct the named field."
	case errors.Is(err, solver.ErrNoFeasibleSolution):
		return "The constraints admit no valid figure. Re-read the diagram and adjust angles or lengths."
	case errors.Is(err, spec.ErrUnresolvedPoint):
		return "Every point named in extras, point_labels and border_order must be produced by the template."
	case errors.Is(err, spec.ErrMalformedSpec):
		return "The previous reply was not a valid spec document."
	}
	return "Fix the document."
}
