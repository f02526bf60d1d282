// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the Bubble Tea interface for reviewing changes.
//
// The model is a thin shell around nav.Machine: key presses become
// navigation messages, retrieval results and watcher refreshes are
// forwarded unchanged, and View renders the current nav.State snapshot.
//
// # Key Types
//
//   - Model: Bubble Tea model (header, file list or picker, diff, status bar)
//   - Options: repository label and the first navigation message
//   - KeyMap: keyboard bindings with help text
//
// # Layout
//
// The header shows the mode tabs and the target being compared. Commit and
// Branch modes open on a full-width picker; choosing an entry shows the file
// list beside the highlighted content of the selected file. Changed lines
// carry a gutter marker as well as a background, so they read without color.
//
// # Usage
//
//	machine := nav.NewMachine(ctx, res, nav.Options{})
//	model := ui.New(machine, highlight.New(cfg.UI.Theme), ui.Options{Repo: name})
//	program := tea.NewProgram(model, tea.WithAltScreen())
//	_, err := program.Run()
package ui
