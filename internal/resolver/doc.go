// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package resolver lists and loads file changes for a comparison target.
//
// Loading happens in two phases so that switching targets stays fast on
// large change sets:
//
//  1. ListFiles asks git only for names and statuses.
//  2. LoadDetails fetches one file's diff and content when it is selected.
//
// # Targets
//
//   - Dirty: staged and unstaged working-tree changes against HEAD
//   - Commit: the changes introduced by one commit (first parent)
//   - Branch: HEAD against its merge-base with a branch
//
// Untracked files have no diff in git; LoadDetails synthesizes one that adds
// the whole file. Retrieval failures never panic: the file comes back
// unloaded-but-marked and the error is returned for display.
package resolver
