// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation for diffreview.
//
// Command: config [subcommand]
// Short:   View and initialise configuration
//
// Subcommands:
//   show (default)      Display the effective configuration
//   path                Show the configuration file path
//   init [--force]      Write the default configuration file
//   get <key>           Print one value (e.g. review.context_lines)
//
// Examples:
//   diffreview config
//   diffreview config show --json
//   diffreview config init
//   diffreview config get ui.theme

package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/jeranaias/diffreview/internal/config"
)

// HandleConfig runs a config subcommand against the effective configuration.
func HandleConfig(w io.Writer, cfg *config.Config, args Args) error {
	switch args.Subcommand {
	case "show":
		if args.JSON {
			return NewJSONResponse("config", cfg).Print(w)
		}
		fmt.Fprintln(w, cfg.String())
		return nil

	case "path":
		path, err := configFilePath(args)
		if err != nil {
			return NewCommandError("config", "path", "could not determine the config path", err)
		}
		if args.JSON {
			return NewJSONResponse("config", map[string]string{"path": path}).Print(w)
		}
		fmt.Fprintln(w, path)
		return nil

	case "init":
		return handleConfigInit(w, args)

	case "get":
		if args.ConfigKey == "" {
			return NewUsageError("key", "", "config get needs a key", "diffreview config get ui.theme")
		}
		val, err := cfg.Get(args.ConfigKey)
		if err != nil {
			return NewUsageError("key", args.ConfigKey, err.Error(), "diffreview config get review.context_lines")
		}
		if args.JSON {
			return NewJSONResponse("config", map[string]string{args.ConfigKey: val}).Print(w)
		}
		fmt.Fprintln(w, val)
		return nil

	default:
		return NewUsageError("config subcommand", args.Subcommand, "expected show, path, init or get",
			"diffreview config show")
	}
}

func handleConfigInit(w io.Writer, args Args) error {
	path, err := configFilePath(args)
	if err != nil {
		return NewCommandError("config", "init", "could not determine the config path", err)
	}

	if _, err := os.Stat(path); err == nil && !args.Force {
		return NewCommandError("config", "init", "config file already exists (use --force to overwrite)",
			fmt.Errorf("%s", path))
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return NewCommandError("config", "init", "could not inspect the config file", err)
	}

	if err := config.SaveTOML(config.Default(), path); err != nil {
		return NewCommandError("config", "init", "could not write the config file", err)
	}

	if args.JSON {
		return NewJSONResponse("config", map[string]string{"path": path}).Print(w)
	}
	fmt.Fprintf(w, "%s wrote %s\n", RenderConditional(SuccessStyle, "[OK]"), path)
	return nil
}

func configFilePath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ConfigPath()
}

// LoadConfig loads the configuration named by --config, or the default
// location, and applies --dir on top.
func LoadConfig(args Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if args.Dir != "" {
		cfg.Repository.Dir = args.Dir
	}
	if args.Debug {
		cfg.Log.Debug = true
	}
	if args.NoWatch {
		cfg.Watch.Enabled = false
	}
	return cfg, nil
}
