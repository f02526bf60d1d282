// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the diffreview TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection.

# Color System (colors.go)

  - Purple, Cyan - accents: active mode, focused panel, hashes
  - Emerald, Sky, Rose, Amber - file status: added, modified, deleted, renamed
  - ChangedLineBg, DeletedLineBg, ChunkCursorBg - content line backgrounds
  - MatchBg, CurrentMatchBg - search overlays

Gutter markers (ChangedMarker, DeletedMarker, ChunkMarker) carry the same
information as the backgrounds for terminals without color.

# Theme System (theme.go)

	theme := styles.NewTheme()
	header := theme.ModeActive.Render("DIRTY")
	code := theme.StatusStyle("A").Render("A")
*/
package styles
