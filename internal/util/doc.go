// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by diffreview packages.
//
// # Key Functions
//
// Display width (go-runewidth):
//   - StringWidth, TruncateWidth, PadRight: column-aware layout
//   - ExpandTabs, ColumnAt: map byte offsets in source lines to screen columns
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	name := util.TruncateWidth(path, width-8)
//	col := util.ColumnAt(line, match.Start)
//	err := util.AtomicWriteFile(path, data, 0644)
package util
