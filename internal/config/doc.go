// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for diffreview.
//
// Configuration is TOML, with sensible defaults, environment variable
// overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure
//   - RepositoryConfig: working directory, git binary, per-call timeout
//   - ReviewConfig: jump context lines, commit limit, initial mode
//   - UIConfig: chroma theme, line numbers, initial viewport height
//   - WatchConfig: working-tree watcher and debounce
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (DIFFREVIEW_*)
//   - --config <path>, or ~/.diffreview/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := git.NewClient(cfg.Repository.Dir, git.Options{Binary: cfg.Repository.GitBinary})
package config
