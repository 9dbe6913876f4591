// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package solver

import (
	"errors"
	"fmt"
	"strings"
)

// Authoring errors name a spec field that must be fixed. Feasibility errors
// mean the constraints are well-formed but admit no acceptable figure.
var (
	ErrUnsupportedTemplate = errors.New("unsupported template")
	ErrMissingConstraint   = errors.New("missing constraint")
	ErrInvalidConstraint   = errors.New("invalid constraint")
	ErrNoFeasibleSolution  = errors.New("no feasible solution")

	// ErrDegenerateGeometry wraps ErrNoFeasibleSolution, so callers that only
	// distinguish authoring from feasibility problems can ignore it.
	ErrDegenerateGeometry = fmt.Errorf("%w: degenerate geometry", ErrNoFeasibleSolution)
)

// Error carries the template and field a solver failure relates to. Use
// errors.Is against the sentinels above to classify it.
type Error struct {
	Template string // Template name, empty when the template is unknown
	Field    string // Offending spec field, e.g. "lengths.AC"
	Detail   string // Human-readable explanation
	Err      error  // One of the sentinel errors
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if e.Field != "" {
		b.WriteString(": ")
		b.WriteString(e.Field)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Template != "" {
		fmt.Fprintf(&b, " (template %s)", e.Template)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// IsAuthoringError reports whether err asks for a spec edit (unknown
// template, missing or invalid field) rather than signalling infeasible
// geometry.
func IsAuthoringError(err error) bool {
	return errors.Is(err, ErrUnsupportedTemplate) ||
		errors.Is(err, ErrMissingConstraint) ||
		errors.Is(err, ErrInvalidConstraint)
}
