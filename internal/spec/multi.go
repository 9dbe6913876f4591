// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package spec

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/petar-djukic/geoframe/pkg/types"
)

// Outcome statuses reported by SolveAll.
const (
	OutcomeSolved  = "solved"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
)

// IndexedFile is one spec_<i>.json document of a multi-figure problem.
type IndexedFile struct {
	Index int
	Path  string
}

// Outcome is the result of solving one indexed spec.
type Outcome struct {
	IndexedFile
	Status string
	Spec   *types.GeometrySpec // Set unless Status is OutcomeError
	Err    error
}

// SpecFiles lists the spec_<i>.json files in dir ordered by index. Names
// whose index is not an integer are ignored.
func SpecFiles(dir string) ([]IndexedFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []IndexedFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "spec_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "spec_"), ".json"))
		if err != nil || idx < 0 {
			continue
		}
		if name != filepath.Base(IndexedPath(dir, idx)) {
			continue // spec_01.json, spec_+1.json
		}
		files = append(files, IndexedFile{Index: idx, Path: IndexedPath(dir, idx)})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Index < files[j].Index })
	return files, nil
}

// IndexedPath returns the path of spec_<index>.json in dir.
func IndexedPath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("spec_%d.json", index))
}

// SolveAll solves every spec_<i>.json in dir in index order. One file's
// failure does not stop the others; it is reported in its Outcome. Without
// overwrite, already solved files are skipped.
func SolveAll(dir string, overwrite bool, opts ...Option) ([]Outcome, error) {
	files, err := SpecFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSpecs, dir)
	}

	outcomes := make([]Outcome, 0, len(files))
	for _, f := range files {
		m := NewManager(f.Path, opts...)
		o := Outcome{IndexedFile: f}

		s, err := m.Load()
		switch {
		case err != nil:
			o.Status, o.Err = OutcomeError, err
		case s.Status == types.StatusSolved && !overwrite:
			o.Status, o.Spec = OutcomeSkipped, s
		default:
			solved, err := m.Solve(SolveOptions{Overwrite: overwrite})
			if err != nil {
				o.Status, o.Err = OutcomeError, err
			} else {
				o.Status, o.Spec = OutcomeSolved, solved
			}
		}
		m.log.V(1).Info("indexed spec processed", "path", f.Path, "status", o.Status)
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}
