// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package geoframe

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/geoframe/internal/history"
	"github.com/petar-djukic/geoframe/internal/spec"
	"github.com/petar-djukic/geoframe/pkg/types"
)

const squareTemplate = `{"type": "square_with_ADE", "lengths": {"side": 8}, "angles": {"ADE": 60}}`

const lineSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 120 80"><path d="M10 10 L110 60"/><path d="M10 10 L10 70 L110 70 Z"/></svg>`

type stubTracer struct{ calls int }

func (s *stubTracer) Trace(context.Context, *image.Gray) ([]byte, error) {
	s.calls++
	return []byte(lineSVG), nil
}

type stubAxes struct {
	err   error
	calls int
}

func (s *stubAxes) DetectAxes(*image.Gray) ([]types.AxisHint, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []types.AxisHint{{ID: "axcand0", Line: [2]types.Vec2{{X: 10, Y: 40}, {X: 110, Y: 40}}, Conf: 0.7}}, nil
}

func newPipeline(t *testing.T, cfg Config) *Pipeline {
	t.Helper()
	if cfg.ProblemDir == "" {
		cfg.ProblemDir = t.TempDir()
	}
	p, err := New(cfg)
	require.NoError(t, err)
	return p
}

func TestNew_Validation(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing dir", Config{}},
		{"dir does not exist", Config{ProblemDir: filepath.Join(dir, "nope")}},
		{"dir is a file", Config{ProblemDir: file}},
		{"spec file with path", Config{ProblemDir: dir, SpecFile: "sub/spec.json"}},
		{"negative frame", Config{ProblemDir: dir, FrameWidth: -1}},
		{"threshold above one", Config{ProblemDir: dir, Threshold: 1.5}},
		{"negative retries", Config{ProblemDir: dir, MaxRetries: -1}},
		{"negative timeout", Config{ProblemDir: dir, TraceTimeout: -time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	p := newPipeline(t, Config{NoGit: true})
	cfg := p.Config()

	assert.Equal(t, "spec.json", cfg.SpecFile)
	assert.Equal(t, 14.0, cfg.FrameWidth)
	assert.Equal(t, 8.0, cfg.FrameHeight)
	assert.Equal(t, 300, cfg.DPI)
	assert.Equal(t, 0.60, cfg.Threshold)
	assert.Equal(t, "potrace", cfg.TracerCmd)
	assert.Equal(t, 60*time.Second, cfg.TraceTimeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, filepath.Join(cfg.ProblemDir, "spec.json"), p.SpecPath())
}

func TestPipeline_SpecLifecycle(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, Config{NoGit: true})

	draft, err := p.Ensure(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.StatusDraft, draft.Status)

	_, err = p.Solve(false)
	assert.ErrorIs(t, err, ErrSpecIncomplete)

	_, err = p.Generate(ctx, []byte(squareTemplate), true)
	require.NoError(t, err)

	solved, err := p.Solve(false)
	require.NoError(t, err)
	assert.Equal(t, types.StatusSolved, solved.Status)
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, solved.Points.Names())

	again, err := p.Solve(false)
	require.NoError(t, err)
	assert.Equal(t, solved.Meta[spec.MetaSolvedAt], again.Meta[spec.MetaSolvedAt])
}

func TestPipeline_SolveErrorsAreExported(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, Config{NoGit: true})
	_, err := p.Generate(ctx, []byte(`{"type": "square_with_ADE", "angles": {"ADE": 60}}`), false)
	require.NoError(t, err)

	_, err = p.Solve(false)
	assert.ErrorIs(t, err, ErrMissingConstraint)
}

func TestPipeline_SolveAll(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(spec.IndexedPath(dir, 2), []byte(squareTemplate), 0o644))
	require.NoError(t, os.WriteFile(spec.IndexedPath(dir, 1), []byte(`{"type": "__TBD__"}`), 0o644))
	p := newPipeline(t, Config{ProblemDir: dir, NoGit: true})

	outcomes, err := p.SolveAll(false)
	require.NoError(t, err)

	require.Len(t, outcomes, 2)
	assert.Equal(t, 1, outcomes[0].Index)
	assert.Equal(t, spec.OutcomeError, outcomes[0].Status)
	assert.ErrorIs(t, outcomes[0].Err, ErrSpecIncomplete)
	assert.Equal(t, spec.OutcomeSolved, outcomes[1].Status)
}

func TestPipeline_Repair(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, Config{NoGit: true, MaxRetries: 2})
	_, err := p.Ensure(ctx)
	require.NoError(t, err)

	calls := 0
	res, err := p.Repair(ctx, false, func(context.Context, string) ([]byte, error) {
		calls++
		return []byte(squareTemplate), nil
	})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, 1, calls)
}

func TestPipeline_UndoWithoutGit(t *testing.T) {
	p := newPipeline(t, Config{NoGit: true})
	_, err := p.Undo()
	assert.ErrorIs(t, err, history.ErrNoGit)

	// Outside a repository NoGit=false degrades to no history.
	p = newPipeline(t, Config{})
	_, err = p.Ensure(context.Background())
	require.NoError(t, err)
	_, err = p.Undo()
	assert.ErrorIs(t, err, history.ErrNoGit)
}

func TestPipeline_UndoWithGit(t *testing.T) {
	dir := t.TempDir()
	r, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := r.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("p\n"), 0o644))
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	_, err = wt.Commit("initial commit", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@test.com", When: time.Now()},
	})
	require.NoError(t, err)

	ctx := context.Background()
	p := newPipeline(t, Config{ProblemDir: dir})
	_, err = p.Generate(ctx, []byte(squareTemplate), false)
	require.NoError(t, err)
	_, err = p.Solve(false)
	require.NoError(t, err)

	paths, err := p.Undo()
	require.NoError(t, err)
	assert.Equal(t, []string{"spec.json"}, paths)

	s, err := p.Ensure(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.StatusDraft, s.Status)
	assert.Equal(t, "square_with_ADE", s.Type)
}

func writeImage(t *testing.T, dir string) string {
	t.Helper()
	img := imaging.New(120, 80, color.White)
	for x := 10; x < 110; x++ {
		img.Set(x, 40, color.Black)
	}
	path := filepath.Join(dir, "page.png")
	require.NoError(t, imaging.Save(img, path))
	return path
}

func TestPipeline_Vectorize(t *testing.T) {
	dir := t.TempDir()
	src := writeImage(t, dir)
	tracer := &stubTracer{}
	ax := &stubAxes{}
	p := newPipeline(t, Config{ProblemDir: dir, NoGit: true, Tracer: tracer, AxisDetector: ax, FrameWidth: 12, FrameHeight: 8})

	item, err := p.Vectorize(context.Background(), src, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, tracer.calls)
	assert.Equal(t, 1, ax.calls)
	require.Len(t, item.Anchors.AxesHints, 1)
	assert.Equal(t, types.Vec2{X: 110, Y: 40}, item.Anchors.AxesHints[0].Line[1])
	assert.Equal(t, [2]int{120, 80}, item.Image.SizePx)
	assert.InDelta(t, 0.1, item.Transform.PxToFrame.A[0][0], 1e-12)
	require.Len(t, item.Anchors.Edges, 2)
	// The triangle is longer than the line, so it ranks first.
	assert.Equal(t, "path1", item.Anchors.Edges[0].ID)
	assert.Equal(t, "path0", item.Anchors.Edges[1].ID)
}

func TestPipeline_VectorizeProblem(t *testing.T) {
	dir := t.TempDir()
	src := writeImage(t, dir)
	p := newPipeline(t, Config{ProblemDir: dir, NoGit: true, Tracer: &stubTracer{}, AxisDetector: &stubAxes{}})

	regions := []types.Region{
		{BBox: []int{0, 0, 120, 10}, Category: "Text", Text: "Find the area."},
		{BBox: []int{0, 10, 120, 80}, Category: "Picture"},
		{BBox: []int{0, 70, 60, 80}, Category: "List-item"},
	}
	doc, route, err := p.VectorizeProblem(context.Background(), src, regions)
	require.NoError(t, err)

	assert.Equal(t, RouteSummary{Mode: "vision", HasDiagram: true, HasList: true}, route)
	assert.Len(t, doc.VectorAnchors, 1)
	assert.FileExists(t, filepath.Join(dir, "vector_anchors.json"))
	assert.FileExists(t, filepath.Join(dir, "page__pic_i0.png"))
}

func TestPipeline_AxisHints(t *testing.T) {
	dir := t.TempDir()
	src := writeImage(t, dir)

	t.Run("detector failure is fatal", func(t *testing.T) {
		cause := errors.New("hough failed")
		p := newPipeline(t, Config{ProblemDir: dir, NoGit: true, Tracer: &stubTracer{}, AxisDetector: &stubAxes{err: cause}})
		_, err := p.Vectorize(context.Background(), src, nil)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("opt out", func(t *testing.T) {
		ax := &stubAxes{err: errors.New("must not run")}
		p := newPipeline(t, Config{ProblemDir: dir, NoGit: true, NoAxisHints: true, Tracer: &stubTracer{}, AxisDetector: ax})
		item, err := p.Vectorize(context.Background(), src, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, ax.calls)
		assert.Empty(t, item.Anchors.AxesHints)
	})
}
