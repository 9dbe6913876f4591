// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package vectorize

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/image/bmp"
)

const defaultTraceTimeout = 60 * time.Second

// waitDelay bounds how long a killed tracer's children may hold its
// output pipes open.
const waitDelay = 500 * time.Millisecond

// Tracer turns a black-and-white bitmap into an SVG document.
type Tracer interface {
	Trace(ctx context.Context, bitmap *image.Gray) ([]byte, error)
}

// PotraceTracer runs the potrace command-line tool.
type PotraceTracer struct {
	Command  string        // Executable name or path (default "potrace")
	Timeout  time.Duration // Per-run limit (default 60s)
	TurdSize int           // Speckle suppression in pixels (default 10)
	AlphaMax float64       // Corner smoothing (default 1.2)
	Log      logr.Logger
}

// NewPotraceTracer returns a tracer with the default tuning.
func NewPotraceTracer(timeout time.Duration, log logr.Logger) *PotraceTracer {
	return &PotraceTracer{Timeout: timeout, Log: log}
}

// Trace writes bitmap to a temporary BMP, runs potrace in SVG mode, and
// returns the SVG. A missing executable, a non-zero exit or a timeout
// yields a *ToolError carrying the tool's output. The run is never
// retried.
func (p *PotraceTracer) Trace(ctx context.Context, bitmap *image.Gray) ([]byte, error) {
	command := p.Command
	if command == "" {
		command = "potrace"
	}
	timeout := p.Timeout
	if timeout == 0 {
		timeout = defaultTraceTimeout
	}
	turd := p.TurdSize
	if turd == 0 {
		turd = 10
	}
	alpha := p.AlphaMax
	if alpha == 0 {
		alpha = 1.2
	}

	if _, err := exec.LookPath(command); err != nil {
		return nil, &ToolError{Tool: command, Err: err}
	}

	dir, err := os.MkdirTemp("", "geoframe-trace-")
	if err != nil {
		return nil, fmt.Errorf("creating trace dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.bmp")
	out := filepath.Join(dir, "out.svg")
	if err := writeBMP(in, bitmap); err != nil {
		return nil, err
	}

	args := []string{in, "-s", "-o", out,
		"--turdsize", strconv.Itoa(turd),
		"--alphamax", strconv.FormatFloat(alpha, 'f', -1, 64)}
	start := time.Now()
	output, err := runCommand(ctx, dir, timeout, command, args...)
	if err != nil {
		return nil, &ToolError{Tool: command, Output: output, Err: err}
	}
	p.Log.V(1).Info("potrace finished", "elapsed", time.Since(start).String(), "size", bitmap.Bounds().Size().String())

	svg, err := os.ReadFile(out)
	if err != nil {
		return nil, &ToolError{Tool: command, Output: output, Err: fmt.Errorf("no output file: %w", err)}
	}
	if !bytes.Contains(bytes.ToLower(head(svg, 2048)), []byte("<svg")) {
		return nil, &ToolError{Tool: command, Output: output, Err: fmt.Errorf("%w: output is not an svg document", ErrInvalidSVG)}
	}
	return svg, nil
}

func writeBMP(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing bitmap: %w", err)
	}
	if err := bmp.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding bitmap: %w", err)
	}
	return f.Close()
}

func head(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

// runCommand executes a command with a timeout and captures combined output.
// On timeout it returns within waitDelay even if the command left children
// running.
func runCommand(ctx context.Context, dir string, timeout time.Duration, name string, args ...string) (string, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	if cmdCtx.Err() != nil {
		return buf.String(), fmt.Errorf("%w after %s", cmdCtx.Err(), timeout)
	}
	return buf.String(), err
}
