// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package repair retries a failed solve by handing the structured error
// to a caller-supplied function that returns a corrected spec.
package repair

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/petar-djukic/geoframe/internal/solver"
	"github.com/petar-djukic/geoframe/internal/spec"
	"github.com/petar-djukic/geoframe/pkg/types"
)

const defaultMaxRetries = 3

// ErrExhausted is returned when every retry still failed to solve.
var ErrExhausted = errors.New("repair retries exhausted")

// RepairFunc receives a formatted request and returns a corrected spec
// document. The reply is untrusted and merged over the current document.
type RepairFunc func(ctx context.Context, request string) ([]byte, error)

// Config configures the retry loop.
type Config struct {
	MaxRetries int          // Maximum repair attempts (default 3)
	Overwrite  bool         // Re-solve an already solved document on the first attempt
	Format     FormatConfig // Request formatting
	Log        logr.Logger
}

// Result holds the outcome of the loop.
type Result struct {
	Success bool
	Retries int                 // Repair attempts made
	Spec    *types.GeometrySpec // Solved document on success
	LastErr error               // Error of the last failed solve
}

// Retryable reports whether err can be fixed by editing the spec.
// Input, tool and I/O errors are not.
func Retryable(err error) bool {
	return solver.IsAuthoringError(err) ||
		errors.Is(err, solver.ErrNoFeasibleSolution) ||
		errors.Is(err, spec.ErrUnresolvedPoint) ||
		errors.Is(err, spec.ErrSpecIncomplete) ||
		errors.Is(err, spec.ErrMalformedSpec)
}

// Run solves the manager's document. When that fails with a retryable
// error it formats a request, calls fn, persists the corrected draft and
// solves again, up to MaxRetries times.
func Run(ctx context.Context, m *spec.Manager, cfg Config, fn RepairFunc) (*Result, error) {
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}
	log := cfg.Log
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	result := &Result{}
	solved, err := m.Solve(spec.SolveOptions{Overwrite: cfg.Overwrite})
	if err == nil {
		result.Success, result.Spec = true, solved
		return result, nil
	}
	result.LastErr = err
	if !Retryable(err) {
		return result, err
	}

	for i := 0; i < maxRetries; i++ {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("context canceled after %d retries: %w", result.Retries, err)
		}
		result.Retries++

		current, lerr := m.Load()
		if lerr != nil {
			return result, lerr
		}
		request := FormatRequest(result.LastErr, current, m.Templates(), cfg.Format)
		log.V(1).Info("requesting spec repair", "attempt", result.Retries, "error", result.LastErr.Error())

		reply, ferr := fn(ctx, request)
		if ferr != nil {
			return result, fmt.Errorf("repair %d failed: %w", result.Retries, ferr)
		}

		fixed, merr := spec.MergeDefaults(reply, current)
		if merr != nil {
			result.LastErr = merr
			log.Info("repair reply unusable", "attempt", result.Retries, "error", merr.Error())
			continue
		}
		if _, perr := m.Replace(fixed, fmt.Sprintf("repair spec.json (attempt %d)", result.Retries)); perr != nil {
			return result, perr
		}

		solved, err := m.Solve(spec.SolveOptions{})
		if err == nil {
			result.Success, result.Spec, result.LastErr = true, solved, nil
			log.Info("spec repaired", "attempts", result.Retries, "type", solved.Type)
			return result, nil
		}
		result.LastErr = err
		if !Retryable(err) {
			return result, err
		}
	}

	return result, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, maxRetries, result.LastErr)
}
