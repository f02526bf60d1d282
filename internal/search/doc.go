// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package search finds literal matches in loaded file content and navigates
// between them.
//
// Search is synchronous over content that is already in memory; it never
// touches git.
//
// # Key Types
//
//   - Match: line and byte range of one occurrence
//   - Session: query, matches and the current match index
//
// # Usage
//
//	s := search.NewSession(file.Content, "TODO")
//	s = s.Next()
//	if offset, ok := s.ScrollTarget(5, viewportHeight, lineCount); ok {
//		scroll = offset
//	}
package search
