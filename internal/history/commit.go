// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Record stages path and commits it with a message built from summary and
// the before/after contents. It satisfies the spec manager's Recorder.
// Nothing is committed when the file did not change.
func (r *Repo) Record(path string, before, after []byte, summary string) error {
	rel, err := r.rel(path)
	if err != nil {
		return err
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}
	if _, err := wt.Add(rel); err != nil {
		return fmt.Errorf("staging %s: %w", rel, err)
	}

	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("getting status: %w", err)
	}
	if fs, ok := status[rel]; !ok || fs.Staging == gogit.Unmodified {
		r.log.V(1).Info("spec unchanged, nothing to commit", "path", rel)
		return nil
	}

	msg := GenerateMessage(summary, rel, string(before), string(after))
	hash, err := wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  r.now(),
		},
	})
	if err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	r.log.Info("spec revision committed", "path", rel, "commit", hash.String()[:8], "summary", summary)
	return nil
}

// Undo reverts the last revision made by Record: files it touched get
// their previous contents back (or are removed if it created them) and
// HEAD moves to the parent. Returns the restored paths relative to the
// work tree root.
func (r *Repo) Undo() ([]string, error) {
	ok, err := r.IsRevision()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotRevision
	}

	commit, err := r.head()
	if err != nil {
		return nil, err
	}
	if commit.NumParents() == 0 {
		return nil, fmt.Errorf("cannot undo: HEAD is the initial commit")
	}
	parent, err := commit.Parent(0)
	if err != nil {
		return nil, fmt.Errorf("getting parent commit: %w", err)
	}

	fromTree, err := parent.Tree()
	if err != nil {
		return nil, fmt.Errorf("reading parent tree: %w", err)
	}
	toTree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("reading tree: %w", err)
	}
	changes, err := object.DiffTree(fromTree, toTree)
	if err != nil {
		return nil, fmt.Errorf("diffing trees: %w", err)
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("getting status: %w", err)
	}

	paths := make([]string, 0, len(changes))
	for _, c := range changes {
		name := c.To.Name
		if name == "" {
			name = c.From.Name
		}
		if fs, ok := status[name]; ok && (fs.Worktree != gogit.Unmodified || fs.Staging != gogit.Unmodified) {
			return nil, fmt.Errorf("%w: %s", ErrDirtyWorkTree, name)
		}
		paths = append(paths, name)
	}

	// Mixed reset moves HEAD and the index; the work tree is restored below.
	if err := wt.Reset(&gogit.ResetOptions{Commit: parent.Hash, Mode: gogit.MixedReset}); err != nil {
		return nil, fmt.Errorf("resetting to parent: %w", err)
	}

	for _, name := range paths {
		if err := r.restore(fromTree, name); err != nil {
			return nil, err
		}
	}
	r.log.Info("spec revision undone", "commit", commit.Hash.String()[:8], "files", paths)
	return paths, nil
}

// restore writes name as it was in tree, or removes it if tree lacks it.
func (r *Repo) restore(tree *object.Tree, name string) error {
	path := filepath.Join(r.root, filepath.FromSlash(name))
	f, err := tree.File(name)
	if errors.Is(err, object.ErrFileNotFound) {
		if fileExists(path) {
			return os.Remove(path)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s from parent: %w", name, err)
	}
	content, err := f.Contents()
	if err != nil {
		return fmt.Errorf("reading %s from parent: %w", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("restoring %s: %w", name, err)
	}
	return nil
}
