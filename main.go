// diffreview - A terminal interface for reviewing git changes.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/diffreview/internal/cli"
	"github.com/jeranaias/diffreview/internal/config"
	"github.com/jeranaias/diffreview/internal/git"
	"github.com/jeranaias/diffreview/internal/highlight"
	"github.com/jeranaias/diffreview/internal/nav"
	"github.com/jeranaias/diffreview/internal/resolver"
	"github.com/jeranaias/diffreview/internal/ui"
	"github.com/jeranaias/diffreview/internal/watch"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args, err := cli.Parse(os.Args[1:])
	if err != nil {
		cli.HandleErrorAndExit(cmd.String(), err, args.JSON)
	}

	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return
	case cli.CmdVersion:
		if err := cli.HandleVersion(os.Stdout, args); err != nil {
			cli.HandleErrorAndExit(cmd.String(), err, args.JSON)
		}
		return
	}

	cfg, err := cli.LoadConfig(args)
	if err != nil {
		cli.HandleErrorAndExit("config",
			cli.NewCommandError("config", "load", "could not load configuration", err), args.JSON)
	}

	closeLog := setupLogging(cfg)
	defer closeLog()
	log.Printf("STARTUP | command=%s version=%s", cmd, Version)

	if cmd == cli.CmdConfig {
		if err := cli.HandleConfig(os.Stdout, cfg, args); err != nil {
			cli.HandleErrorAndExit(cmd.String(), err, args.JSON)
		}
		return
	}

	if err := run(cmd, cfg, args); err != nil {
		log.Printf("EXIT | command=%s error=%v", cmd, err)
		closeLog()
		cli.HandleErrorAndExit(cmd.String(), err, args.JSON)
	}
}

// run opens the repository and executes a command against it.
func run(cmd cli.Command, cfg *config.Config, args cli.Args) error {
	root, err := git.DiscoverRoot(cfg.Repository.Dir)
	if err != nil {
		return err
	}

	client := git.NewClient(root, git.Options{
		Binary:  cfg.Repository.GitBinary,
		Timeout: time.Duration(cfg.Repository.TimeoutSecs) * time.Second,
		Debug:   cfg.Log.Debug,
	})
	res := resolver.New(client)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case cli.CmdFiles:
		return cli.HandleFiles(ctx, os.Stdout, res, args)
	case cli.CmdCommits:
		return cli.HandleCommits(ctx, os.Stdout, res, args, cfg.Review.CommitLimit)
	case cli.CmdBranches:
		return cli.HandleBranches(ctx, os.Stdout, res, args)
	default:
		return runTUI(ctx, cfg, args, root, res)
	}
}

// runTUI starts the interactive review session.
func runTUI(ctx context.Context, cfg *config.Config, args cli.Args, root string, res *resolver.Resolver) error {
	if err := cli.RequiresTTY("start the review interface"); err != nil {
		return err
	}

	machine := nav.NewMachine(ctx, res, nav.Options{
		ContextLines: cfg.Review.ContextLines,
		CommitLimit:  cfg.Review.CommitLimit,
	})

	var start tea.Msg
	if target, ok := args.Target(); ok {
		start = nav.OpenTargetMsg{Target: target}
	} else if mode, _ := nav.ParseMode(cfg.Review.InitialMode); mode != nav.ModeDirty {
		start = nav.SetModeMsg{Mode: mode}
	}

	m := ui.New(machine, highlight.New(cfg.UI.Theme), ui.Options{
		Repo:            filepath.Base(root),
		Start:           start,
		ViewportHeight:  cfg.UI.ViewportHeight,
		HideLineNumbers: !cfg.UI.LineNumbers,
	})

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	// The watcher only refreshes; the machine ignores automatic refreshes
	// outside Dirty mode.
	if cfg.Watch.Enabled {
		w, err := watch.New(root, time.Duration(cfg.Watch.DebounceMs)*time.Millisecond, func() {
			p.Send(nav.RefreshMsg{Auto: true})
		})
		if err != nil {
			log.Printf("WATCH_DISABLED | error=%v", err)
		} else if err := w.Watch(); err != nil {
			log.Printf("WATCH_DISABLED | error=%v", err)
			_ = w.Close()
		} else {
			defer w.Close()
		}
	}

	log.Printf("TUI_START | root=%s watch=%t", root, cfg.Watch.Enabled)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running diffreview: %w", err)
	}
	return nil
}

// setupLogging sends the standard logger to the configured log file. The
// terminal belongs to the UI, so if the file cannot be opened logs are
// dropped rather than written to stderr.
func setupLogging(cfg *config.Config) func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	path, err := cfg.LogPath()
	if err == nil {
		err = os.MkdirAll(filepath.Dir(path), 0700)
	}
	var f *os.File
	if err == nil {
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	}
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}

	log.SetOutput(f)
	return func() {
		log.SetOutput(io.Discard)
		_ = f.Close()
	}
}
