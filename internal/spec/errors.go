// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package spec

import "errors"

var (
	// ErrSpecIncomplete means solving was requested before a template was
	// chosen.
	ErrSpecIncomplete = errors.New("spec incomplete")

	// ErrMalformedSpec means spec.json could not be decoded.
	ErrMalformedSpec = errors.New("malformed spec")

	// ErrUnresolvedPoint means extras, point_labels or border_order name a
	// point the solved figure does not have.
	ErrUnresolvedPoint = errors.New("unresolved point reference")

	// ErrNoSpecs means a problem directory holds no spec_<i>.json files.
	ErrNoSpecs = errors.New("no spec files")
)
