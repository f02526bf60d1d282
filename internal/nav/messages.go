// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file defines the Bubble Tea messages accepted by Machine.Update.
// Messages are organized into the following categories:
//   - Mode: cycle or set the comparison mode, open a target directly
//   - Hierarchy: back, cursor movement, list/file selection, focus
//   - Viewport: scroll and resize
//   - Chunks: next/previous changed region
//   - Search: query, next/previous match, clear
//   - Results: asynchronous retrieval results
//
// Result messages carry the mode or target they were issued for; the
// machine compares those against the current state and discards stale ones.

package nav

import (
	"github.com/jeranaias/diffreview/internal/git"
	"github.com/jeranaias/diffreview/internal/resolver"
)

// =============================================================================
// MODE MESSAGES
// =============================================================================

// CycleModeMsg advances Dirty -> Commit -> Branch -> Dirty.
type CycleModeMsg struct{}

// SetModeMsg switches straight to a mode, with the same resets as cycling.
type SetModeMsg struct {
	Mode Mode
}

// OpenTargetMsg jumps to the file list of a target, skipping the picker.
// The picker entries are still listed so that Back has somewhere to go.
type OpenTargetMsg struct {
	Target resolver.Target
}

// =============================================================================
// HIERARCHY MESSAGES
// =============================================================================

// BackMsg steps one level up the view hierarchy. It never quits.
type BackMsg struct{}

// MoveCursorMsg moves the cursor of the focused panel. In the diff panel it
// scrolls.
type MoveCursorMsg struct {
	Delta int
}

// SelectListEntryMsg opens the commit or branch under the list cursor.
type SelectListEntryMsg struct{}

// SelectFileMsg selects a file by index and loads it if needed.
type SelectFileMsg struct {
	Index int
}

// FocusMsg moves focus between the file list and the diff.
type FocusMsg struct {
	Panel Panel
}

// RefreshMsg re-lists the current level, keeping the selection when possible.
type RefreshMsg struct {
	Auto bool // Sent by the file watcher; ignored outside Dirty mode
}

// =============================================================================
// VIEWPORT MESSAGES
// =============================================================================

// ScrollMsg scrolls the diff by Delta lines.
type ScrollMsg struct {
	Delta int
}

// ResizeMsg records the number of content lines the viewport can show.
type ResizeMsg struct {
	Height int
}

// =============================================================================
// CHUNK MESSAGES
// =============================================================================

// NextChunkMsg jumps to the next changed region of the selected file.
type NextChunkMsg struct{}

// PrevChunkMsg jumps to the previous changed region of the selected file.
type PrevChunkMsg struct{}

// =============================================================================
// SEARCH MESSAGES
// =============================================================================

// SearchMsg starts a search in the selected file's content.
type SearchMsg struct {
	Query string
}

// NextMatchMsg jumps to the next match.
type NextMatchMsg struct{}

// PrevMatchMsg jumps to the previous match.
type PrevMatchMsg struct{}

// ClearSearchMsg ends the active search.
type ClearSearchMsg struct{}

// =============================================================================
// RESULT MESSAGES
// =============================================================================

// ListLoadedMsg delivers commit or branch picker entries.
type ListLoadedMsg struct {
	Mode     Mode
	Commits  []git.Commit
	Branches []git.Branch
	Err      error
}

// FilesLoadedMsg delivers the file list of a target.
type FilesLoadedMsg struct {
	Target resolver.Target
	Files  []resolver.FileChange
	Err    error
}

// DetailsLoadedMsg delivers one file's diff and content.
type DetailsLoadedMsg struct {
	Target resolver.Target
	Path   string
	File   resolver.FileChange
	Err    error
}
