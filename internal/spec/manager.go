// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package spec owns the spec.json document of one problem: creating a
// draft, solving it into coordinates, and persisting every revision as a
// whole document.
//
// A Manager reads then writes without locking. Callers that run several
// managers against the same file must serialize them.
package spec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/petar-djukic/geoframe/internal/frame"
	"github.com/petar-djukic/geoframe/internal/solver"
	"github.com/petar-djukic/geoframe/pkg/types"
)

// FileName is the spec document inside a problem directory.
const FileName = "spec.json"

// Drafter proposes a spec document for a problem, typically from a
// language model that has seen the problem's vector anchors. Its output is
// untrusted and is merged over the defaults before use.
type Drafter interface {
	Draft(ctx context.Context) ([]byte, error)
}

// Recorder keeps a history of persisted revisions.
type Recorder interface {
	Record(path string, before, after []byte, summary string) error
}

// Manager drives one spec document through draft and solved states.
type Manager struct {
	path     string
	registry *solver.Registry
	drafter  Drafter
	recorder Recorder
	log      logr.Logger
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithRegistry sets the template registry. Defaults to solver.Default.
func WithRegistry(r *solver.Registry) Option { return func(m *Manager) { m.registry = r } }

// WithDrafter sets the drafter consulted by Generate when no template is
// given.
func WithDrafter(d Drafter) Option { return func(m *Manager) { m.drafter = d } }

// WithRecorder sets where persisted revisions are recorded.
func WithRecorder(r Recorder) Option { return func(m *Manager) { m.recorder = r } }

// WithLogger sets the logger.
func WithLogger(l logr.Logger) Option { return func(m *Manager) { m.log = l } }

// WithClock overrides the time source used for meta timestamps.
func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// NewManager returns a manager for the spec document at path.
func NewManager(path string, opts ...Option) *Manager {
	m := &Manager{
		path:     path,
		registry: solver.Default,
		log:      logr.Discard(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// ForDir returns a manager for spec.json in dir.
func ForDir(dir string, opts ...Option) *Manager {
	return NewManager(filepath.Join(dir, FileName), opts...)
}

// Path returns the spec document path.
func (m *Manager) Path() string { return m.path }

// Templates lists the template names the manager can solve.
func (m *Manager) Templates() []string { return m.registry.Names() }

// Load reads the persisted document. A missing file yields an error
// satisfying errors.Is(err, fs.ErrNotExist).
func (m *Manager) Load() (*types.GeometrySpec, error) {
	return load(m.path)
}

func load(path string) (*types.GeometrySpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Ensure returns the persisted document, creating a draft first when none
// exists. Calling it again without an intervening write leaves the file
// byte-for-byte unchanged.
func (m *Manager) Ensure(ctx context.Context) (*types.GeometrySpec, error) {
	s, err := m.Load()
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return m.Generate(ctx, GenerateOptions{})
}

// GenerateOptions controls Generate.
type GenerateOptions struct {
	// Overwrite replaces an existing document. Without it an existing
	// document is returned unchanged.
	Overwrite bool

	// Template is a JSON spec document to start from. It takes precedence
	// over the manager's drafter.
	Template []byte
}

// Generate persists a new draft built from the template, the drafter's
// proposal, or the defaults, in that order of preference. A drafter that
// fails or returns unusable JSON falls back to the defaults.
func (m *Manager) Generate(ctx context.Context, opts GenerateOptions) (*types.GeometrySpec, error) {
	if !opts.Overwrite {
		s, err := m.Load()
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	s, by, err := m.draft(ctx, opts.Template)
	if err != nil {
		return nil, err
	}

	s.Meta[MetaCreatedAt] = m.timestamp()
	if _, ok := s.Meta[MetaGeneratedBy]; !ok || by == GeneratedByLLM {
		s.Meta[MetaGeneratedBy] = by
	}
	resetDraft(s)

	if err := m.persist(m.path, s, fmt.Sprintf("draft %s (%s)", filepath.Base(m.path), by)); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Manager) draft(ctx context.Context, template []byte) (*types.GeometrySpec, string, error) {
	if len(bytes.TrimSpace(template)) > 0 {
		s, err := MergeDefaults(template, Default())
		if err != nil {
			return nil, "", fmt.Errorf("template: %w", err)
		}
		return s, GeneratedByTemplate, nil
	}

	if m.drafter != nil {
		data, err := m.drafter.Draft(ctx)
		switch {
		case err != nil:
			m.log.Error(err, "drafter failed, using default spec", "path", m.path)
		case len(bytes.TrimSpace(data)) == 0:
			m.log.Info("drafter returned no spec, using default", "path", m.path)
		default:
			s, err := MergeDefaults(data, Default())
			if err == nil {
				return s, GeneratedByLLM, nil
			}
			m.log.Error(err, "drafter returned an unusable spec, using default", "path", m.path)
		}
	}
	return Default(), GeneratedByDefault, nil
}

// SolveOptions controls Solve.
type SolveOptions struct {
	// Overwrite re-solves a solved document from its current constraints.
	Overwrite bool

	// OutputPath receives the solved document. Defaults to the spec path.
	OutputPath string
}

// Solve moves the document from draft to solved: it runs the template,
// normalizes the points into the box, and persists the result.
//
// Without Overwrite, an already solved document (or an existing document
// at OutputPath) is returned unchanged. Solver errors are returned as they
// are. A failed solve never writes partial points; if the document had
// been solved before, it is reset to a draft so the file stays consistent
// with its constraints.
func (m *Manager) Solve(opts SolveOptions) (*types.GeometrySpec, error) {
	target := opts.OutputPath
	if target == "" {
		target = m.path
	}
	inPlace := filepath.Clean(target) == filepath.Clean(m.path)

	if !opts.Overwrite && !inPlace {
		s, err := load(target)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	s, err := m.Load()
	if err != nil {
		return nil, err
	}
	if !opts.Overwrite && inPlace && s.Status == types.StatusSolved {
		return s, nil
	}
	if !s.HasTemplate() {
		return nil, fmt.Errorf("%w: type is %q, set it to one of [%s]",
			ErrSpecIncomplete, s.Type, strings.Join(m.registry.Names(), ", "))
	}

	solved, err := m.solve(s)
	if err != nil {
		m.log.V(1).Info("solve failed", "path", m.path, "type", s.Type, "error", err.Error())
		if inPlace && s.Status == types.StatusSolved {
			draft := s.Clone()
			resetDraft(draft)
			summary := fmt.Sprintf("reset %s to draft", filepath.Base(m.path))
			if perr := m.persist(m.path, draft, summary); perr != nil {
				return nil, errors.Join(err, perr)
			}
		}
		return nil, err
	}

	summary := fmt.Sprintf("solve %s (%s)", filepath.Base(m.path), s.Type)
	if err := m.persist(target, solved, summary); err != nil {
		return nil, err
	}
	m.log.Info("spec solved", "path", target, "type", s.Type, "points", solved.Points.Len(), "scale", solved.Scale)
	return solved, nil
}

func (m *Manager) solve(s *types.GeometrySpec) (*types.GeometrySpec, error) {
	raw, err := m.registry.Solve(s)
	if err != nil {
		return nil, err
	}

	pts, scale, err := frame.Normalize(raw, s.Box)
	if err != nil {
		if errors.Is(err, frame.ErrInvalidBox) {
			return nil, &solver.Error{Template: s.Type, Field: "box", Detail: err.Error(), Err: solver.ErrInvalidConstraint}
		}
		return nil, &solver.Error{Template: s.Type, Detail: err.Error(), Err: solver.ErrDegenerateGeometry}
	}

	out := s.Clone()
	out.Points = pts
	out.Scale = scale
	out.Status = types.StatusSolved
	out.Meta[MetaSolvedAt] = m.timestamp()
	if err := CheckSolved(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Replace persists s as the new draft, discarding any solved output. The
// repair loop uses it to store a corrected document.
func (m *Manager) Replace(s *types.GeometrySpec, summary string) (*types.GeometrySpec, error) {
	out := s.Clone()
	fillShape(out, Default())
	resetDraft(out)
	if summary == "" {
		summary = fmt.Sprintf("replace %s", filepath.Base(m.path))
	}
	if err := m.persist(m.path, out, summary); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Manager) timestamp() string {
	return m.now().UTC().Format(time.RFC3339)
}

// persist writes s to path in one rename so readers never see a partial
// document, then records the revision.
func (m *Manager) persist(path string, s *types.GeometrySpec, summary string) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	before, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := writeFile(path, data); err != nil {
		return err
	}
	m.log.V(1).Info("spec written", "path", path, "status", s.Status, "bytes", len(data))

	if m.recorder != nil {
		if err := m.recorder.Record(path, before, data, summary); err != nil {
			m.log.Error(err, "recording spec revision", "path", path)
		}
	}
	return nil
}

func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".spec-*.json")
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
