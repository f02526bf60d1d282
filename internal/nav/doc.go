// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package nav is the review session's state machine.
//
// The session is a State value; Machine.Update takes a State and a message
// and returns the next State plus the retrieval command to run, if any. The
// presentation layer keeps the latest snapshot and re-renders from it.
//
// # Hierarchy
//
//	mode   Dirty | Commit | Branch   (cycled in that order)
//	level  List (picker) | Files
//	focus  Files | Diff
//
// Back steps from the diff to the file list, then from the file list to the
// commit or branch picker, and is a no-op at the top. It never quits.
//
// # Loading
//
// File details are loaded lazily on selection, at most once per
// (target, path) at a time. Results arrive as messages tagged with the
// target and path they were issued for; a result is dropped if the target or
// the selected path changed in the meantime.
//
// # Key Types
//
//   - State: immutable snapshot (mode, level, focus, lists, files, scroll)
//   - Machine: transition function bound to a Retriever
//   - Retriever: listing and loading, implemented by *resolver.Resolver
//
// # Usage
//
//	m := nav.NewMachine(ctx, resolver.New(client), nav.Options{})
//	state, cmd := m.Start(height)
//	...
//	state, cmd = m.Update(state, msg)
package nav
