// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package vectorize

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/petar-djukic/geoframe/pkg/types"
)

// Transform is the SVG 2×3 matrix [A C E; B D F].
type Transform struct {
	A, B, C, D, E, F float64
}

// Identity is the transform that leaves points unchanged.
var Identity = Transform{A: 1, D: 1}

// Mul returns t∘u: apply u, then t.
func (t Transform) Mul(u Transform) Transform {
	return Transform{
		A: t.A*u.A + t.C*u.B,
		B: t.B*u.A + t.D*u.B,
		C: t.A*u.C + t.C*u.D,
		D: t.B*u.C + t.D*u.D,
		E: t.A*u.E + t.C*u.F + t.E,
		F: t.B*u.E + t.D*u.F + t.F,
	}
}

func (t Transform) Apply(p types.Vec2) types.Vec2 {
	return types.Vec2{X: t.A*p.X + t.C*p.Y + t.E, Y: t.B*p.X + t.D*p.Y + t.F}
}

// ParseTransform reads a transform attribute: a list of translate, scale,
// rotate and matrix functions applied right to left.
func ParseTransform(s string) (Transform, error) {
	out := Identity
	rest := strings.TrimSpace(s)
	for rest != "" {
		open := strings.IndexByte(rest, '(')
		closing := strings.IndexByte(rest, ')')
		if open <= 0 || closing < open {
			return Identity, fmt.Errorf("%w: transform %q", ErrInvalidSVG, s)
		}
		name := strings.TrimSpace(rest[:open])
		args, err := parseNumbers(rest[open+1 : closing])
		if err != nil {
			return Identity, fmt.Errorf("%w: transform %q: %v", ErrInvalidSVG, s, err)
		}
		t, err := transformFunc(name, args)
		if err != nil {
			return Identity, fmt.Errorf("%w: transform %q: %v", ErrInvalidSVG, s, err)
		}
		out = out.Mul(t)
		rest = strings.TrimLeft(rest[closing+1:], " \t\n\r,")
	}
	return out, nil
}

func transformFunc(name string, a []float64) (Transform, error) {
	switch {
	case name == "translate" && (len(a) == 1 || len(a) == 2):
		t := Transform{A: 1, D: 1, E: a[0]}
		if len(a) == 2 {
			t.F = a[1]
		}
		return t, nil
	case name == "scale" && (len(a) == 1 || len(a) == 2):
		sy := a[0]
		if len(a) == 2 {
			sy = a[1]
		}
		return Transform{A: a[0], D: sy}, nil
	case name == "rotate" && (len(a) == 1 || len(a) == 3):
		r := a[0] * math.Pi / 180
		rot := Transform{A: math.Cos(r), B: math.Sin(r), C: -math.Sin(r), D: math.Cos(r)}
		if len(a) == 3 {
			to := Transform{A: 1, D: 1, E: a[1], F: a[2]}
			back := Transform{A: 1, D: 1, E: -a[1], F: -a[2]}
			return to.Mul(rot).Mul(back), nil
		}
		return rot, nil
	case name == "matrix" && len(a) == 6:
		return Transform{A: a[0], B: a[1], C: a[2], D: a[3], E: a[4], F: a[5]}, nil
	}
	return Identity, fmt.Errorf("unsupported %s with %d arguments", name, len(a))
}

func parseNumbers(s string) ([]float64, error) {
	lx := &pathLexer{s: s}
	var out []float64
	for lx.hasNumber() {
		v, err := lx.number()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	lx.skipSep()
	if !lx.done() {
		return nil, fmt.Errorf("unexpected %q", lx.s[lx.i:])
	}
	return out, nil
}

// Document is a parsed SVG: its user-space size and every subpath with
// group transforms applied.
type Document struct {
	Width, Height float64 // Zero when the document does not state a size
	Subpaths      []Subpath
}

// ParseSVG reads the path elements of an SVG document.
func ParseSVG(data []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	doc := &Document{}
	stack := []Transform{Identity}
	sawRoot := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSVG, err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			local, err := ParseTransform(attr(el, "transform"))
			if err != nil {
				return nil, err
			}
			t := stack[len(stack)-1].Mul(local)
			stack = append(stack, t)

			switch el.Name.Local {
			case "svg":
				if !sawRoot {
					sawRoot = true
					doc.Width, doc.Height = svgSize(el)
				}
			case "path":
				subs, err := ParsePathData(attr(el, "d"))
				if err != nil {
					return nil, err
				}
				for _, sp := range subs {
					for i := range sp.Segments {
						sp.Segments[i] = sp.Segments[i].transform(t)
					}
					doc.Subpaths = append(doc.Subpaths, sp)
				}
			}
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if !sawRoot {
		return nil, fmt.Errorf("%w: no <svg> element", ErrInvalidSVG)
	}
	return doc, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// svgSize prefers the viewBox size and falls back to the numeric prefix of
// width and height ("120pt" reads as 120).
func svgSize(el xml.StartElement) (w, h float64) {
	if vb, err := parseNumbers(attr(el, "viewBox")); err == nil && len(vb) == 4 && vb[2] > 0 && vb[3] > 0 {
		return vb[2], vb[3]
	}
	return leadingNumber(attr(el, "width")), leadingNumber(attr(el, "height"))
}

func leadingNumber(s string) float64 {
	lx := &pathLexer{s: strings.TrimSpace(s)}
	if !lx.hasNumber() {
		return 0
	}
	v, err := lx.number()
	if err != nil || v < 0 {
		return 0
	}
	return v
}
