// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PointSet maps point names to coordinates and remembers insertion order.
// JSON encoding and decoding preserve that order, so a spec round-trips
// through disk without reshuffling its points. The zero value is empty and
// ready to use.
type PointSet struct {
	names  []string
	coords map[string]Vec3
}

// Set stores p under name. A new name is appended; an existing name keeps
// its position.
func (s *PointSet) Set(name string, p Vec3) {
	if s.coords == nil {
		s.coords = make(map[string]Vec3)
	}
	if _, ok := s.coords[name]; !ok {
		s.names = append(s.names, name)
	}
	s.coords[name] = p
}

// Get returns the point stored under name.
func (s PointSet) Get(name string) (Vec3, bool) {
	p, ok := s.coords[name]
	return p, ok
}

// Has reports whether name is present.
func (s PointSet) Has(name string) bool {
	_, ok := s.coords[name]
	return ok
}

// Names returns the point names in insertion order.
func (s PointSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

func (s PointSet) Len() int { return len(s.names) }

// Clone returns an independent copy.
func (s PointSet) Clone() PointSet {
	var out PointSet
	for _, n := range s.names {
		out.Set(n, s.coords[n])
	}
	return out
}

// MarshalJSON writes the points as a JSON object in insertion order.
func (s PointSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range s.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.coords[n])
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", n, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping the document's key order. A
// JSON null yields an empty set.
func (s *PointSet) UnmarshalJSON(data []byte) error {
	*s = PointSet{}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decoding points: %w", err)
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("decoding points: want object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decoding points: %w", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("decoding points: unexpected key %v", keyTok)
		}
		var p Vec3
		if err := dec.Decode(&p); err != nil {
			return fmt.Errorf("decoding point %q: %w", name, err)
		}
		s.Set(name, p)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decoding points: %w", err)
	}
	return nil
}
