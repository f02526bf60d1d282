// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"strings"

	"github.com/samber/lo"
)

// Match is one occurrence of the query in the content.
type Match struct {
	Line   int // 0-indexed line in the content
	Start  int // Byte offset within the line
	Length int // Byte length of the match
}

// End returns the byte offset just past the match.
func (m Match) End() int {
	return m.Start + m.Length
}

// Find returns every occurrence of query in content, line by line and left to
// right. The query is a literal, case-sensitive substring. After each hit the
// scan resumes one byte further on, so overlapping occurrences of a repeated
// pattern are all reported. An empty query matches nothing.
func Find(content, query string) []Match {
	if query == "" || content == "" {
		return nil
	}

	var matches []Match
	for lineNo, line := range strings.Split(content, "\n") {
		cursor := 0
		for cursor <= len(line)-len(query) {
			idx := strings.Index(line[cursor:], query)
			if idx < 0 {
				break
			}
			start := cursor + idx
			matches = append(matches, Match{Line: lineNo, Start: start, Length: len(query)})
			cursor = start + 1
		}
	}
	return matches
}

// =============================================================================
// SESSION
// =============================================================================

// Session is an active search over one file's content. It is a value: the
// navigation methods return an updated copy.
type Session struct {
	Query   string
	Matches []Match
	Current int // Index into Matches; 0 on a fresh search
}

// NewSession runs query over content and positions on the first match.
func NewSession(content, query string) Session {
	return Session{
		Query:   query,
		Matches: Find(content, query),
	}
}

// Active reports whether a query is set, whether or not it matched.
func (s Session) Active() bool {
	return s.Query != ""
}

// Count returns the number of matches.
func (s Session) Count() int {
	return len(s.Matches)
}

// Next moves to the following match, wrapping to the first.
func (s Session) Next() Session {
	if len(s.Matches) == 0 {
		return s
	}
	s.Current = (s.Current + 1) % len(s.Matches)
	return s
}

// Prev moves to the preceding match, wrapping to the last.
func (s Session) Prev() Session {
	if len(s.Matches) == 0 {
		return s
	}
	s.Current--
	if s.Current < 0 {
		s.Current = len(s.Matches) - 1
	}
	return s
}

// CurrentMatch returns the selected match, if any.
func (s Session) CurrentMatch() (Match, bool) {
	if s.Current < 0 || s.Current >= len(s.Matches) {
		return Match{}, false
	}
	return s.Matches[s.Current], true
}

// ScrollTarget returns the scroll offset that brings the current match into
// view with contextLines of lead-in, clamped to the largest offset that still
// fills a viewport of viewportHeight over lineCount lines. ok is false when
// there is no current match.
func (s Session) ScrollTarget(contextLines, viewportHeight, lineCount int) (offset int, ok bool) {
	m, ok := s.CurrentMatch()
	if !ok {
		return 0, false
	}
	return ScrollTo(m.Line, contextLines, viewportHeight, lineCount), true
}

// LineRanges groups matches by line for rendering overlays.
func (s Session) LineRanges() map[int][]Match {
	return lo.GroupBy(s.Matches, func(m Match) int { return m.Line })
}

// =============================================================================
// SCROLL ARITHMETIC
// =============================================================================

// MaxScroll returns the largest valid scroll offset.
func MaxScroll(viewportHeight, lineCount int) int {
	if viewportHeight <= 0 {
		return max(0, lineCount-1)
	}
	return max(0, lineCount-viewportHeight)
}

// ScrollTo returns max(0, line-contextLines) clamped to MaxScroll.
func ScrollTo(line, contextLines, viewportHeight, lineCount int) int {
	return lo.Clamp(line-contextLines, 0, MaxScroll(viewportHeight, lineCount))
}
