// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// UNICODE: Widths are display columns, not bytes or runes, so wide
// (CJK) characters take two cells and combining marks none.

// TabWidth is the number of columns a tab expands to.
const TabWidth = 4

// StringWidth returns the display width of s.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// TruncateWidth cuts s to at most maxWidth columns, ending in "..." when
// anything was removed.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// PadRight pads s with spaces to exactly width columns, truncating it first
// if it is wider.
func PadRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.FillRight(runewidth.Truncate(s, width, ""), width)
}

// ExpandTabs replaces each tab with spaces up to the next TabWidth stop.
func ExpandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := TabWidth - col%TabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return b.String()
}

// ColumnAt returns the display column at byte offset off of line, with tabs
// expanded as ExpandTabs does. Offsets past the end clamp to the line width.
func ColumnAt(line string, off int) int {
	if off > len(line) {
		off = len(line)
	}
	col := 0
	for _, r := range line[:max(off, 0)] {
		if r == '\t' {
			col += TabWidth - col%TabWidth
			continue
		}
		col += runewidth.RuneWidth(r)
	}
	return col
}
