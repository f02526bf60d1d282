// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff parses unified diffs and tracks which lines of a file changed.
//
// Parsing is total: any text, including an empty string or a diff with a
// malformed hunk header, produces a valid (possibly empty) line sequence.
//
// # Key Types
//
//   - DiffLineType: Type of diff line (header, context, added, removed)
//   - DiffLine: Single parsed row with its old/new line numbers
//   - HunkHeader: Ranges declared by an "@@ ... @@" line
//
// # Change Tracking
//
// ChangedPositions maps a diff onto 0-indexed positions of the new file.
// Deletions are anchored at the position following the last unchanged line,
// so they never advance the position counter. Chunks groups those positions
// into contiguous runs, and NextChunk/PrevChunk cycle through them.
//
// # Usage
//
//	lines := diff.Parse(text)
//	chunks := diff.Chunks(diff.ChangedPositions(text))
//	idx := diff.NextChunk(-1, len(chunks)) // first chunk
package diff
