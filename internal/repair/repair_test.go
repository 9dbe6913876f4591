// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repair

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/geoframe/internal/solver"
	"github.com/petar-djukic/geoframe/internal/spec"
	"github.com/petar-djukic/geoframe/pkg/types"
)

const feasibleQuad = `{
  "type": "quad_diag2len2ang",
  "seed": {"A": [0, 0], "D": [4, 0]},
  "angles": {"DAC": 30, "ADB": 40},
  "lengths": {"AC": 5, "BD": 5}
}`

const infeasibleQuad = `{
  "type": "quad_diag2len2ang",
  "seed": {"A": [0, 0], "D": [1, 0]},
  "angles": {"DAC": 120, "ADB": 120},
  "lengths": {"AC": 1, "BD": 1}
}`

type recorder struct{ summaries []string }

func (r *recorder) Record(_ string, _, _ []byte, summary string) error {
	r.summaries = append(r.summaries, summary)
	return nil
}

// scripted replies in order and remembers every request.
type scripted struct {
	replies  []string
	err      error
	requests []string
}

func (s *scripted) fn(_ context.Context, request string) ([]byte, error) {
	s.requests = append(s.requests, request)
	if s.err != nil {
		return nil, s.err
	}
	i := len(s.requests) - 1
	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	return []byte(s.replies[i]), nil
}

func newManager(t *testing.T, template string, opts ...spec.Option) *spec.Manager {
	t.Helper()
	m := spec.ForDir(t.TempDir(), opts...)
	_, err := m.Generate(context.Background(), spec.GenerateOptions{Template: []byte(template)})
	require.NoError(t, err)
	return m
}

func TestRun_SolvesWithoutRepair(t *testing.T) {
	m := newManager(t, feasibleQuad)
	s := &scripted{replies: []string{"{}"}}

	res, err := Run(context.Background(), m, Config{}, s.fn)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Zero(t, res.Retries)
	assert.Equal(t, types.StatusSolved, res.Spec.Status)
	assert.Empty(t, s.requests)
}

func TestRun_RepairsIncompleteSpec(t *testing.T) {
	rec := &recorder{}
	m := spec.ForDir(t.TempDir(), spec.WithRecorder(rec))
	_, err := m.Ensure(context.Background())
	require.NoError(t, err)
	s := &scripted{replies: []string{`{"type": "square_with_ADE", "lengths": {"side": 8}, "angles": {"ADE": 60}}`}}

	res, err := Run(context.Background(), m, Config{}, s.fn)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Retries)
	assert.Nil(t, res.LastErr)
	assert.Equal(t, 5, res.Spec.Points.Len())
	require.Len(t, s.requests, 1)
	assert.Contains(t, s.requests[0], "spec incomplete")
	assert.Contains(t, s.requests[0], "- square_with_ADE\n")
	assert.Contains(t, s.requests[0], "## Current spec.json")
	assert.Equal(t, []string{
		"draft spec.json (default)",
		"repair spec.json (attempt 1)",
		"solve spec.json (square_with_ADE)",
	}, rec.summaries)

	onDisk, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, types.StatusSolved, onDisk.Status)
}

func TestRun_SkipsUnusableReply(t *testing.T) {
	m := newManager(t, infeasibleQuad)
	s := &scripted{replies: []string{
		`{"type": `,
		`{"seed": {"D": [4, 0]}, "angles": {"DAC": 30, "ADB": 40}, "lengths": {"AC": 5, "BD": 5}}`,
	}}

	res, err := Run(context.Background(), m, Config{}, s.fn)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Retries)
	require.Len(t, s.requests, 2)
	assert.Contains(t, s.requests[0], "no feasible solution")
	assert.Contains(t, s.requests[1], "not a valid spec document")
	a, ok := res.Spec.Points.Get("A")
	require.True(t, ok)
	assert.True(t, a.Finite())
}

func TestRun_Exhausted(t *testing.T) {
	m := newManager(t, infeasibleQuad)
	s := &scripted{replies: []string{"{}"}}

	res, err := Run(context.Background(), m, Config{}, s.fn)

	assert.ErrorIs(t, err, ErrExhausted)
	assert.ErrorIs(t, err, solver.ErrNoFeasibleSolution)
	assert.False(t, res.Success)
	assert.Equal(t, 3, res.Retries)
	assert.Len(t, s.requests, 3)

	onDisk, lerr := m.Load()
	require.NoError(t, lerr)
	assert.Equal(t, types.StatusDraft, onDisk.Status)
	assert.Zero(t, onDisk.Points.Len())
}

func TestRun_MaxRetries(t *testing.T) {
	m := newManager(t, infeasibleQuad)
	s := &scripted{replies: []string{"{}"}}

	res, err := Run(context.Background(), m, Config{MaxRetries: 1}, s.fn)

	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 1, res.Retries)
}

func TestRun_NonRetryableError(t *testing.T) {
	m := spec.ForDir(t.TempDir())
	s := &scripted{replies: []string{"{}"}}

	res, err := Run(context.Background(), m, Config{}, s.fn)

	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.False(t, res.Success)
	assert.Empty(t, s.requests)
}

func TestRun_RepairFuncError(t *testing.T) {
	m := newManager(t, infeasibleQuad)
	boom := errors.New("model unavailable")
	s := &scripted{err: boom}

	res, err := Run(context.Background(), m, Config{}, s.fn)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, res.Retries)
}

func TestRun_ContextCanceled(t *testing.T) {
	m := newManager(t, infeasibleQuad)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &scripted{replies: []string{"{}"}}

	res, err := Run(ctx, m, Config{}, s.fn)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Retries)
	assert.Empty(t, s.requests)
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&solver.Error{Err: solver.ErrMissingConstraint}, true},
		{&solver.Error{Err: solver.ErrDegenerateGeometry}, true},
		{spec.ErrSpecIncomplete, true},
		{spec.ErrUnresolvedPoint, true},
		{spec.ErrMalformedSpec, true},
		{fs.ErrNotExist, false},
		{errors.New("disk full"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Retryable(tt.err), tt.err.Error())
	}
}

func TestFormatRequest(t *testing.T) {
	err := &solver.Error{Template: "quad_diag2len2ang", Field: "lengths.AC", Err: solver.ErrMissingConstraint}
	current := spec.Default()

	got := FormatRequest(err, current, []string{"quad_diag2len2ang", "triangle_sas"}, FormatConfig{})

	assert.Contains(t, got, "- kind: missing constraint\n")
	assert.Contains(t, got, "- template: quad_diag2len2ang\n")
	assert.Contains(t, got, "- field: lengths.AC\n")
	assert.NotContains(t, got, "- detail:")
	assert.Contains(t, got, "Add or correct the named field.")
	assert.Contains(t, got, "- triangle_sas\n")
	assert.Contains(t, got, "\"type\": \"__TBD__\"")
}

func TestFormatRequest_Truncates(t *testing.T) {
	got := FormatRequest(spec.ErrSpecIncomplete, spec.Default(), nil, FormatConfig{MaxSpecBytes: 10})

	assert.Contains(t, got, "... (truncated)")
	assert.NotContains(t, got, "## Templates")
	assert.NotContains(t, got, "- kind:")
}
