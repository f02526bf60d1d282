// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watch notifies when the working tree of a repository changes.
//
// The watcher registers the repository root and its subdirectories (hidden
// and vendored directories excluded) plus the top of .git, where only the
// index and HEAD count as changes. Events are debounced so an editor save or
// a git command produces one notification, and notifications are rate
// limited (golang.org/x/time/rate) to one per MinRefreshInterval while files
// keep changing.
//
// # Usage
//
//	w, err := watch.New(root, 250*time.Millisecond, func() {
//		program.Send(nav.RefreshMsg{Auto: true})
//	})
//	if err == nil {
//		_ = w.Watch()
//		defer w.Close()
//	}
package watch
