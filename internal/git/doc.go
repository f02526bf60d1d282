// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package git runs the git binary as an external process and parses its output.
//
// Every command runs inside the directory a Client was created for, so there
// is no process-wide notion of "current repository". Failures come back as
// *CommandError values carrying the exit code and stderr.
//
// # Key Types
//
//   - Client: Runs git commands scoped to one working tree
//   - StatusEntry: One line of porcelain status or name-status output
//   - Commit, Branch: Entries for commit and branch pickers
//
// # Usage
//
//	root, err := git.DiscoverRoot(".")
//	client := git.NewClient(root, git.Options{Timeout: 30 * time.Second})
//	entries, err := client.Status(ctx)
package git
