// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff parses unified diffs and tracks which lines of a file changed.
package diff

import (
	"regexp"
	"strconv"
	"strings"
)

// =============================================================================
// DIFF TYPES
// =============================================================================

// DiffLineType represents the type of a diff line.
type DiffLineType int

const (
	// DiffLineHeader represents a hunk header ("@@ ... @@")
	DiffLineHeader DiffLineType = iota
	// DiffLineContext represents unchanged context lines
	DiffLineContext
	// DiffLineAdded represents added lines
	DiffLineAdded
	// DiffLineRemoved represents removed lines
	DiffLineRemoved
)

// String returns the string representation of a diff line type.
func (t DiffLineType) String() string {
	switch t {
	case DiffLineHeader:
		return "header"
	case DiffLineContext:
		return "context"
	case DiffLineAdded:
		return "added"
	case DiffLineRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Prefix returns the diff prefix character for this line type.
func (t DiffLineType) Prefix() string {
	switch t {
	case DiffLineAdded:
		return "+"
	case DiffLineRemoved:
		return "-"
	case DiffLineHeader:
		return ""
	default:
		return " "
	}
}

// =============================================================================
// DIFF LINE
// =============================================================================

// DiffLine represents a single row of a parsed diff.
type DiffLine struct {
	Type    DiffLineType // Type of line (header, context, added, removed)
	Content string       // Line content without its +/-/space marker
	OldLine int          // Line number in old file (0 if added or header)
	NewLine int          // Line number in new file (0 if removed or header)
}

// =============================================================================
// HUNK HEADER
// =============================================================================

// HunkHeader holds the ranges declared by an "@@ -a,b +c,d @@" line.
type HunkHeader struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
}

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// ParseHunkHeader parses a hunk header line. Omitted counts default to 1,
// as in the unified diff format.
func ParseHunkHeader(line string) (HunkHeader, bool) {
	m := hunkHeaderRe.FindStringSubmatch(line)
	if m == nil {
		return HunkHeader{}, false
	}
	return HunkHeader{
		OldStart: atoiDefault(m[1], 0),
		OldCount: atoiDefault(m[2], 1),
		NewStart: atoiDefault(m[3], 0),
		NewCount: atoiDefault(m[4], 1),
	}, true
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// =============================================================================
// LINE CLASSIFICATION
// =============================================================================

type lineClass int

const (
	classSkip lineClass = iota
	classHeader
	classContext
	classAdded
	classRemoved
)

// metadataPrefixes are diff lines that carry file metadata, not content.
var metadataPrefixes = []string{"+++", "---", "diff --git", "new file", "index "}

// scan walks raw diff text and reports each line with its classification.
// header is nil for non-header lines and for headers that failed to parse.
// Context lines are only recognised once a hunk header has been seen, so
// stray blank lines ahead of the first hunk are skipped. ChangedPositions
// shares this gate on purpose: a position only exists after a header seeds
// it, so skipping those lines cannot move any reported position.
func scan(text string, visit func(class lineClass, raw string, header *HunkHeader)) {
	if text == "" {
		return
	}
	text = strings.TrimSuffix(text, "\n")

	inHunk := false
	for _, raw := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(raw, "@@"):
			if h, ok := ParseHunkHeader(raw); ok {
				inHunk = true
				visit(classHeader, raw, &h)
			} else {
				visit(classHeader, raw, nil)
			}
		case hasMetadataPrefix(raw):
			visit(classSkip, raw, nil)
		case strings.HasPrefix(raw, "+"):
			visit(classAdded, raw, nil)
		case strings.HasPrefix(raw, "-"):
			visit(classRemoved, raw, nil)
		case raw == "" || strings.HasPrefix(raw, " "):
			if inHunk {
				visit(classContext, raw, nil)
			} else {
				visit(classSkip, raw, nil)
			}
		default:
			visit(classSkip, raw, nil)
		}
	}
}

func hasMetadataPrefix(line string) bool {
	for _, p := range metadataPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// =============================================================================
// PARSING
// =============================================================================

// Parse turns unified diff text into an ordered sequence of diff lines.
// Metadata lines are dropped; everything else keeps its input order.
// A header that does not match the hunk format is emitted without
// renumbering the lines that follow it. Parse never fails.
func Parse(text string) []DiffLine {
	lines := make([]DiffLine, 0)
	oldLine, newLine := 0, 0

	scan(text, func(class lineClass, raw string, h *HunkHeader) {
		switch class {
		case classHeader:
			if h != nil {
				oldLine, newLine = h.OldStart, h.NewStart
			}
			lines = append(lines, DiffLine{Type: DiffLineHeader, Content: raw})
		case classAdded:
			lines = append(lines, DiffLine{Type: DiffLineAdded, Content: raw[1:], NewLine: newLine})
			newLine++
		case classRemoved:
			lines = append(lines, DiffLine{Type: DiffLineRemoved, Content: raw[1:], OldLine: oldLine})
			oldLine++
		case classContext:
			content := raw
			if content != "" {
				content = content[1:]
			}
			lines = append(lines, DiffLine{Type: DiffLineContext, Content: content, OldLine: oldLine, NewLine: newLine})
			oldLine++
			newLine++
		}
	})

	return lines
}

// Stats counts added and removed lines in a unified diff body.
func Stats(text string) (additions, deletions int) {
	scan(text, func(class lineClass, _ string, _ *HunkHeader) {
		switch class {
		case classAdded:
			additions++
		case classRemoved:
			deletions++
		}
	})
	return additions, deletions
}

// IsBinary reports whether git described the change as a binary file.
func IsBinary(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "Binary files ") && strings.HasSuffix(line, " differ") {
			return true
		}
		if strings.HasPrefix(line, "GIT binary patch") {
			return true
		}
	}
	return false
}

// SplitLines splits content into lines. A trailing newline does not
// start a new line.
func SplitLines(content string) []string {
	if content == "" {
		return []string{}
	}
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
