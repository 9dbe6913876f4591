// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package history commits every persisted spec revision to the git work
// tree that contains the problem directory, and undoes the last one.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-logr/logr"
)

const (
	revisionTrailer = "Generated-By: geoframe"
	authorName      = "geoframe"
	authorEmail     = "noreply@geoframe"
)

// ErrNotRevision is returned when undo targets a commit geoframe did not make.
var ErrNotRevision = errors.New("not a geoframe revision")

// ErrDirtyWorkTree is returned when undo would overwrite uncommitted edits.
var ErrDirtyWorkTree = errors.New("uncommitted changes exist")

// ErrNoGit is returned when the directory is not inside a git work tree.
var ErrNoGit = errors.New("not a git repository")

// Repo wraps the go-git repository around a problem directory.
type Repo struct {
	repo *gogit.Repository
	root string
	log  logr.Logger
	now  func() time.Time
}

// Open finds the repository containing dir, searching parent directories.
// Returns ErrNoGit if there is none.
func Open(dir string, log logr.Logger) (*Repo, error) {
	r, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}
	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}
	return &Repo{repo: r, root: wt.Filesystem.Root(), log: log, now: time.Now}, nil
}

// Root is the work tree's top directory.
func (r *Repo) Root() string { return r.root }

// rel turns path into a slash-separated path relative to the work tree.
func (r *Repo) rel(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	root, err := filepath.EvalSymlinks(r.root)
	if err != nil {
		root = r.root
	}
	if resolved, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(resolved, filepath.Base(abs))
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside the work tree %s", path, r.root)
	}
	return filepath.ToSlash(rel), nil
}

// IsRevision reports whether HEAD was made by Record.
func (r *Repo) IsRevision() (bool, error) {
	commit, err := r.head()
	if err != nil {
		return false, err
	}
	return strings.Contains(commit.Message, revisionTrailer), nil
}

func (r *Repo) head() (*object.Commit, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("getting HEAD: %w", err)
	}
	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("getting commit: %w", err)
	}
	return commit, nil
}

// commitCount returns the number of commits reachable from HEAD.
func (r *Repo) commitCount() (int, error) {
	iter, err := r.repo.Log(&gogit.LogOptions{})
	if err != nil {
		return 0, err
	}
	count := 0
	err = iter.ForEach(func(*object.Commit) error {
		count++
		return nil
	})
	return count, err
}

// fileExists reports whether path exists on disk.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
