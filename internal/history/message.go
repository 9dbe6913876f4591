// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package history

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	maxSubjectLength = 72
	contextLines     = 2
)

// GenerateMessage builds a commit message: a "spec: summary" subject, the
// file name, a line diff of the revision and the geoframe trailer.
func GenerateMessage(summary, path, before, after string) string {
	subject := "spec: " + strings.TrimRight(strings.TrimSpace(summary), ".")
	if len(subject) > maxSubjectLength {
		subject = subject[:maxSubjectLength-3] + "..."
	}

	var b strings.Builder
	b.WriteString(subject)
	fmt.Fprintf(&b, "\n\nFile: %s\n", path)
	if d := LineDiff(before, after); d != "" {
		b.WriteString("\n")
		b.WriteString(d)
	}
	b.WriteString("\n")
	b.WriteString(revisionTrailer)
	return b.String()
}

// LineDiff renders a line-oriented diff with "+" and "-" markers. Runs of
// unchanged lines are shortened to a little context around each change.
func LineDiff(before, after string) string {
	if before == after {
		return ""
	}
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	for i, d := range diffs {
		text := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			writePrefixed(&out, "-", text)
		case diffmatchpatch.DiffInsert:
			writePrefixed(&out, "+", text)
		default:
			head, tail := contextLines, contextLines
			if i == 0 {
				head = 0
			}
			if i == len(diffs)-1 {
				tail = 0
			}
			if len(text) <= head+tail {
				writePrefixed(&out, " ", text)
				continue
			}
			writePrefixed(&out, " ", text[:head])
			out.WriteString("@@\n")
			writePrefixed(&out, " ", text[len(text)-tail:])
		}
	}
	return out.String()
}

func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func writePrefixed(b *strings.Builder, prefix string, lines []string) {
	for _, l := range lines {
		b.WriteString(prefix)
		b.WriteString(l)
		if !strings.HasSuffix(l, "\n") {
			b.WriteString("\n")
		}
	}
}
