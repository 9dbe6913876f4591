// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package vectorize

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInputImage   = errors.New("unreadable image")
	ErrExternalTool = errors.New("external tool failed")
	ErrInvalidSVG   = errors.New("invalid svg")
	ErrInvalidPath  = errors.New("invalid path data")

	// ErrEmptyCrop is an ErrInputImage for a crop box outside the image.
	ErrEmptyCrop = fmt.Errorf("%w: empty crop", ErrInputImage)
)

// ToolError reports a failed run of an external program together with
// everything it printed.
type ToolError struct {
	Tool   string
	Output string // Combined stdout and stderr
	Err    error  // Underlying cause: exec failure, exit status, or context error
}

func (e *ToolError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Tool, e.Err, out)
}

// Unwrap exposes both ErrExternalTool and the underlying cause.
func (e *ToolError) Unwrap() []error { return []error{ErrExternalTool, e.Err} }
