// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package spec

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/petar-djukic/geoframe/pkg/types"
)

// extraRefKeys are the extras fields that name points.
var extraRefKeys = []string{"from", "to", "apex", "p", "q"}

// References returns every point name the spec's extras, point_labels and
// border_order mention, in document order without duplicates. Extras that
// are not JSON objects or carry non-string references are skipped since
// extras are opaque to the solver.
func References(s *types.GeometrySpec) []string {
	var refs []string
	seen := map[string]bool{}
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			refs = append(refs, name)
		}
	}

	for _, raw := range s.Extras {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			continue
		}
		for _, k := range extraRefKeys {
			var name string
			if v, ok := obj[k]; ok && json.Unmarshal(v, &name) == nil {
				add(name)
			}
		}
	}
	for _, name := range sortedKeys(s.PointLabels) {
		add(name)
	}
	for _, name := range s.BorderOrder {
		add(name)
	}
	return refs
}

// CheckSolved verifies a solved spec: every referenced point exists and
// every coordinate is finite.
func CheckSolved(s *types.GeometrySpec) error {
	for _, name := range References(s) {
		if !s.Points.Has(name) {
			return fmt.Errorf("%w: %s", ErrUnresolvedPoint, name)
		}
	}
	for _, name := range s.Points.Names() {
		p, _ := s.Points.Get(name)
		if !p.Finite() {
			return fmt.Errorf("point %s is not finite", name)
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
