// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the headless commands of
// diffreview.
//
// Without a command the binary starts the terminal UI; the other commands
// print what the UI would show, in text or --json, so the review data can
// be scripted.
//
// # Key Types
//
//   - Command: Enumeration of the available commands
//   - Args: Parsed command-line arguments
//   - ArgParser: Unified flag and positional parsing
//   - JSONResponse: Envelope for --json output
//   - CommandError, UsageError: Structured errors mapped to exit codes
//
// # Usage
//
//	cmd, args, err := cli.Parse(os.Args[1:])
//	if err != nil {
//	    cli.HandleErrorAndExit("diffreview", err, false)
//	}
//	switch cmd {
//	case cli.CmdFiles:
//	    err = cli.HandleFiles(ctx, os.Stdout, res, args)
//	// ... other commands
//	}
//
// # Commands Overview
//
//   - (none): Review in the terminal UI
//   - files: Changed files for a target, optionally with +/- counts
//   - commits, branches: Picker entries
//   - config: show, path, init, get
//   - version, help
package cli
