// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package solver computes concrete coordinates for a GeometrySpec. Each
// figure type is a Template: a pure function from constraints to named
// points, registered under the name used in the spec's "type" field.
// Adding a figure type means writing one Template and registering it.
package solver

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/petar-djukic/geoframe/pkg/types"
)

// Constraints is the template-facing view of a spec.
type Constraints struct {
	Seed    map[string]types.Vec2
	Angles  map[string]float64 // Degrees
	Lengths map[string]float64
}

// SolveFunc maps validated constraints to points. It is only called after
// every required field has been checked for presence and finiteness, and
// every required length for positivity.
type SolveFunc func(c Constraints) (types.PointSet, error)

// Template declares the fields a figure type needs and how to solve it.
type Template struct {
	Name    string
	Seeds   []string // Required seed point names
	Angles  []string // Required angle names
	Lengths []string // Required length names
	Solve   SolveFunc
}

// Registry is a lookup table of templates keyed by name.
type Registry struct {
	templates map[string]Template
}

// NewRegistry builds a registry from the given templates. It panics on a
// duplicate name since registries are assembled at init time.
func NewRegistry(templates ...Template) *Registry {
	r := &Registry{templates: make(map[string]Template, len(templates))}
	for _, t := range templates {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a template. Names must be unique.
func (r *Registry) Register(t Template) error {
	if t.Name == "" || t.Solve == nil {
		return fmt.Errorf("template needs a name and a solve function")
	}
	if _, dup := r.templates[t.Name]; dup {
		return fmt.Errorf("template %q already registered", t.Name)
	}
	r.templates[t.Name] = t
	return nil
}

// Names returns the registered template names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for n := range r.templates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the template registered under name.
func (r *Registry) Lookup(name string) (Template, error) {
	t, ok := r.templates[name]
	if !ok {
		return Template{}, &Error{
			Field:  "type",
			Detail: fmt.Sprintf("%q is not one of [%s]", name, strings.Join(r.Names(), ", ")),
			Err:    ErrUnsupportedTemplate,
		}
	}
	return t, nil
}

// Solve dispatches spec to its template and returns the raw, unnormalized
// points. The spec is not modified.
func (r *Registry) Solve(spec *types.GeometrySpec) (types.PointSet, error) {
	t, err := r.Lookup(spec.Type)
	if err != nil {
		return types.PointSet{}, err
	}

	c := Constraints{Seed: spec.Seed, Angles: spec.Angles, Lengths: spec.Lengths}
	if err := t.validate(c); err != nil {
		return types.PointSet{}, err
	}

	points, err := t.Solve(c)
	if err != nil {
		if se, ok := err.(*Error); ok && se.Template == "" {
			se.Template = t.Name
		}
		return types.PointSet{}, err
	}

	for _, name := range points.Names() {
		p, _ := points.Get(name)
		if !p.Finite() {
			return types.PointSet{}, &Error{
				Template: t.Name,
				Detail:   fmt.Sprintf("point %s has non-finite coordinates", name),
				Err:      ErrDegenerateGeometry,
			}
		}
	}
	return points, nil
}

// validate checks that every required field is present and usable.
func (t Template) validate(c Constraints) error {
	for _, name := range t.Seeds {
		p, ok := c.Seed[name]
		if !ok {
			return t.missing("seed." + name)
		}
		if !p.Finite() {
			return t.invalid("seed."+name, "coordinates must be finite")
		}
	}
	for _, name := range t.Angles {
		a, ok := c.Angles[name]
		if !ok {
			return t.missing("angles." + name)
		}
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return t.invalid("angles."+name, "angle must be finite")
		}
	}
	for _, name := range t.Lengths {
		l, ok := c.Lengths[name]
		if !ok {
			return t.missing("lengths." + name)
		}
		if math.IsNaN(l) || math.IsInf(l, 0) || l <= 0 {
			return t.invalid("lengths."+name, fmt.Sprintf("length must be positive, got %v", l))
		}
	}
	return nil
}

func (t Template) missing(field string) error {
	return &Error{Template: t.Name, Field: field, Err: ErrMissingConstraint}
}

func (t Template) invalid(field, detail string) error {
	return &Error{Template: t.Name, Field: field, Detail: detail, Err: ErrInvalidConstraint}
}

// Default holds every built-in template.
var Default = NewRegistry(
	quadDiagLenAngleTemplate(),
	squareWithADETemplate(),
	triangleSASTemplate(),
)

// Solve runs spec through the default registry.
func Solve(spec *types.GeometrySpec) (types.PointSet, error) {
	return Default.Solve(spec)
}

// branchSigns is the fixed enumeration order for sign ambiguities. The
// first branch that passes a template's checks wins.
var branchSigns = [2]float64{+1, -1}

func pointSet(names []string, pts ...types.Vec2) types.PointSet {
	var ps types.PointSet
	for i, n := range names {
		ps.Set(n, pts[i].XYZ())
	}
	return ps
}
