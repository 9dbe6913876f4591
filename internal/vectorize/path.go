// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package vectorize

import (
	"fmt"
	"strconv"

	"github.com/petar-djukic/geoframe/pkg/types"
)

// Cubic is a cubic Bézier segment. Lines and quadratics are stored in
// elevated cubic form so every segment flattens the same way.
type Cubic struct {
	P0, P1, P2, P3 types.Vec2
}

func lineCubic(a, b types.Vec2) Cubic {
	d := b.Sub(a)
	return Cubic{a, a.Add(d.Scale(1.0 / 3)), a.Add(d.Scale(2.0 / 3)), b}
}

func quadCubic(a, q, b types.Vec2) Cubic {
	return Cubic{a, a.Add(q.Sub(a).Scale(2.0 / 3)), b.Add(q.Sub(b).Scale(2.0 / 3)), b}
}

func (c Cubic) transform(t Transform) Cubic {
	return Cubic{t.Apply(c.P0), t.Apply(c.P1), t.Apply(c.P2), t.Apply(c.P3)}
}

// Subpath is a run of connected segments started by a moveto.
type Subpath struct {
	Segments []Cubic
	Closed   bool
}

// ParsePathData parses an SVG path "d" attribute into subpaths. All
// commands (M L H V C S Q T A Z), their relative forms and implicit
// repetition are accepted. Elliptical arcs are approximated by the chord
// to their endpoint.
func ParsePathData(d string) ([]Subpath, error) {
	lx := &pathLexer{s: d}
	var b pathBuilder

	for {
		lx.skipSep()
		if lx.done() {
			break
		}
		c := lx.s[lx.i]
		if !isPathCommand(c) {
			return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrInvalidPath, c, lx.i)
		}
		lx.i++

		for first := true; first || lx.hasNumber(); first = false {
			if err := b.apply(c, lx); err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPath, c, err)
			}
			if c == 'Z' || c == 'z' {
				break
			}
			switch c {
			case 'M':
				c = 'L'
			case 'm':
				c = 'l'
			}
		}
	}
	b.flush()
	return b.subs, nil
}

func isPathCommand(c byte) bool {
	switch c {
	case 'M', 'm', 'L', 'l', 'H', 'h', 'V', 'v', 'C', 'c', 'S', 's', 'Q', 'q', 'T', 't', 'A', 'a', 'Z', 'z':
		return true
	}
	return false
}

type pathBuilder struct {
	subs    []Subpath
	cur     Subpath
	started bool
	pos     types.Vec2
	start   types.Vec2
	ctrl    types.Vec2 // Last control point, for S and T reflection
	prev    byte       // Previous command, upper case
}

func (b *pathBuilder) flush() {
	if len(b.cur.Segments) > 0 {
		b.subs = append(b.subs, b.cur)
	}
	b.cur = Subpath{}
}

func (b *pathBuilder) add(c Cubic) {
	b.cur.Segments = append(b.cur.Segments, c)
	b.pos = c.P3
}

func (b *pathBuilder) apply(c byte, lx *pathLexer) error {
	rel := c >= 'a'
	upper := c &^ 0x20
	if upper != 'M' && !b.started {
		return fmt.Errorf("path must start with a moveto")
	}
	point := func() (types.Vec2, error) {
		p, err := lx.pair()
		if err != nil {
			return p, err
		}
		if rel {
			p = p.Add(b.pos)
		}
		return p, nil
	}

	switch upper {
	case 'M':
		p, err := point()
		if err != nil {
			return err
		}
		b.flush()
		b.started = true
		b.pos, b.start = p, p

	case 'L':
		p, err := point()
		if err != nil {
			return err
		}
		b.add(lineCubic(b.pos, p))

	case 'H', 'V':
		v, err := lx.number()
		if err != nil {
			return err
		}
		p := b.pos
		switch {
		case upper == 'H' && rel:
			p.X += v
		case upper == 'H':
			p.X = v
		case rel:
			p.Y += v
		default:
			p.Y = v
		}
		b.add(lineCubic(b.pos, p))

	case 'C', 'S':
		var c1 types.Vec2
		if upper == 'C' {
			var err error
			if c1, err = point(); err != nil {
				return err
			}
		} else {
			c1 = b.reflect('C', 'S')
		}
		c2, err := point()
		if err != nil {
			return err
		}
		p, err := point()
		if err != nil {
			return err
		}
		b.add(Cubic{b.pos, c1, c2, p})
		b.ctrl = c2

	case 'Q', 'T':
		var q types.Vec2
		if upper == 'Q' {
			var err error
			if q, err = point(); err != nil {
				return err
			}
		} else {
			q = b.reflect('Q', 'T')
		}
		p, err := point()
		if err != nil {
			return err
		}
		b.add(quadCubic(b.pos, q, p))
		b.ctrl = q

	case 'A':
		for i := 0; i < 3; i++ { // rx, ry, x-axis-rotation
			if _, err := lx.number(); err != nil {
				return err
			}
		}
		for i := 0; i < 2; i++ { // large-arc and sweep flags
			if _, err := lx.flag(); err != nil {
				return err
			}
		}
		p, err := point()
		if err != nil {
			return err
		}
		b.add(lineCubic(b.pos, p))

	case 'Z':
		if b.pos != b.start {
			b.add(lineCubic(b.pos, b.start))
		}
		b.cur.Closed = true
		b.flush()
		b.pos = b.start
	}

	b.prev = upper
	return nil
}

// reflect returns the reflection of the last control point about the
// current point when the previous command was one of kinds, and the
// current point otherwise.
func (b *pathBuilder) reflect(kinds ...byte) types.Vec2 {
	for _, k := range kinds {
		if b.prev == k {
			return b.pos.Scale(2).Sub(b.ctrl)
		}
	}
	return b.pos
}

// pathLexer scans numbers and flags out of path data.
type pathLexer struct {
	s string
	i int
}

func (l *pathLexer) done() bool { return l.i >= len(l.s) }

func (l *pathLexer) skipSep() {
	for l.i < len(l.s) {
		switch l.s[l.i] {
		case ' ', '\t', '\n', '\r', '\f', ',':
			l.i++
		default:
			return
		}
	}
}

func (l *pathLexer) hasNumber() bool {
	l.skipSep()
	if l.done() {
		return false
	}
	c := l.s[l.i]
	return c == '-' || c == '+' || c == '.' || isDigit(c)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (l *pathLexer) number() (float64, error) {
	l.skipSep()
	start := l.i
	if l.i < len(l.s) && (l.s[l.i] == '-' || l.s[l.i] == '+') {
		l.i++
	}
	digits := 0
	for l.i < len(l.s) && isDigit(l.s[l.i]) {
		l.i++
		digits++
	}
	if l.i < len(l.s) && l.s[l.i] == '.' {
		l.i++
		for l.i < len(l.s) && isDigit(l.s[l.i]) {
			l.i++
			digits++
		}
	}
	if digits == 0 {
		return 0, fmt.Errorf("expected number at offset %d", start)
	}
	if l.i < len(l.s) && (l.s[l.i] == 'e' || l.s[l.i] == 'E') {
		j := l.i + 1
		if j < len(l.s) && (l.s[j] == '-' || l.s[j] == '+') {
			j++
		}
		if j < len(l.s) && isDigit(l.s[j]) {
			for j < len(l.s) && isDigit(l.s[j]) {
				j++
			}
			l.i = j
		}
	}
	return strconv.ParseFloat(l.s[start:l.i], 64)
}

// flag reads an arc flag, which may be written without a separator.
func (l *pathLexer) flag() (bool, error) {
	l.skipSep()
	if l.done() || (l.s[l.i] != '0' && l.s[l.i] != '1') {
		return false, fmt.Errorf("expected flag at offset %d", l.i)
	}
	v := l.s[l.i] == '1'
	l.i++
	return v, nil
}

func (l *pathLexer) pair() (types.Vec2, error) {
	x, err := l.number()
	if err != nil {
		return types.Vec2{}, err
	}
	y, err := l.number()
	if err != nil {
		return types.Vec2{}, err
	}
	return types.Vec2{X: x, Y: y}, nil
}
