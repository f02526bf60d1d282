// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command-line parsing for diffreview.
//
// CLI: Comprehensive help and examples for all commands
package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/jeranaias/diffreview/internal/resolver"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdFiles
	CmdCommits
	CmdBranches
	CmdConfig
	CmdVersion
	CmdHelp
)

// String returns the name of the command as typed on the command line.
func (c Command) String() string {
	switch c {
	case CmdFiles:
		return "files"
	case CmdCommits:
		return "commits"
	case CmdBranches:
		return "branches"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "tui"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Dir        string // --dir: directory inside the repository to review
	ConfigPath string // --config: explicit config file
	Debug      bool   // --debug: log every git command
	JSON       bool   // --json: machine-readable output for headless commands

	// Target selection (mutually exclusive)
	Commit string // --commit <rev>
	Branch string // --branch <name>

	// Command-specific
	Stats      bool   // files --stats: load every diff for +/- counts
	NoWatch    bool   // --no-watch: disable the working-tree watcher
	Limit      int    // commits --limit
	Subcommand string // config show|path|init|get
	ConfigKey  string // config get <key>
	Force      bool   // config init --force
}

// Target returns the comparison target named on the command line.
// ok is false when neither --commit nor --branch was given.
func (a Args) Target() (t resolver.Target, ok bool) {
	switch {
	case a.Commit != "":
		return resolver.Commit(a.Commit), true
	case a.Branch != "":
		return resolver.Branch(a.Branch), true
	default:
		return resolver.Dirty(), false
	}
}

// boolFlagNames never take a value.
var boolFlagNames = []string{"debug", "json", "stats", "no-watch", "force", "help", "h", "version", "v"}

// knownFlags lists every accepted flag.
var knownFlags = map[string]bool{
	"dir": true, "C": true, "config": true, "commit": true, "c": true, "branch": true, "b": true,
	"limit": true, "debug": true, "json": true, "stats": true, "no-watch": true, "force": true,
	"help": true, "h": true, "version": true, "v": true,
}

const usageText = `diffreview - review git changes in the terminal

Usage:
  diffreview [flags]                Review uncommitted changes (TUI)
  diffreview --commit <rev>         Review the changes introduced by a commit
  diffreview --branch <name>        Review HEAD against its merge-base with a branch
  diffreview files [flags]          Print the changed files for a target
  diffreview commits [--limit N]    Print the commit picker entries
  diffreview branches               Print the branch picker entries
  diffreview config [show|path|init|get <key>]
                                    Configuration
  diffreview version                Show version
  diffreview help                   Show this help

Flags:
  -C, --dir <path>        Directory inside the repository (default: .)
  -c, --commit <rev>      Compare a commit against its first parent
  -b, --branch <name>     Compare HEAD against merge-base(HEAD, name)
      --config <path>     Config file (default: ~/.diffreview/config.toml)
      --no-watch          Do not refresh on working-tree changes
      --debug             Log every git command to the log file
      --json              JSON output (files, commits, branches, version, config)
      --stats             files: load each diff and print +/- counts

Keys (TUI):
  tab        cycle mode (dirty -> commit -> branch)
  enter      open commit/branch, focus diff
  esc        back: clear search, diff -> files, files -> list
  j/k        move / scroll       n/N   next/previous chunk
  /          search              ]/[   next/previous match
  r          refresh             q     quit

Environment:
  DIFFREVIEW_DIR, DIFFREVIEW_GIT, DIFFREVIEW_THEME,
  DIFFREVIEW_CONTEXT_LINES, DIFFREVIEW_WATCH

Version: %s
`

// PrintUsage writes the usage/help text to w.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information to w.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "diffreview version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go version: %s\n", runtime.Version())
}

// HandleVersion handles the "version" command with JSON output support.
func HandleVersion(w io.Writer, args Args) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Print(w)
	}
	PrintVersion(w)
	return nil
}

// Parse parses command-line arguments (without the program name) and
// returns the command and its arguments.
func Parse(argv []string) (Command, Args, error) {
	p := NewArgParser(argv, boolFlagNames...)

	for _, name := range p.Flags() {
		if !knownFlags[name] {
			return CmdHelp, Args{}, NewUsageError("flag", "--"+name, "unknown flag", "diffreview help")
		}
	}

	args := Args{
		Dir:        p.FlagOrDefault("dir", p.Flag("C")),
		ConfigPath: p.Flag("config"),
		Debug:      p.BoolFlag("debug"),
		JSON:       p.BoolFlag("json"),
		Commit:     p.FlagOrDefault("commit", p.Flag("c")),
		Branch:     p.FlagOrDefault("branch", p.Flag("b")),
		Stats:      p.BoolFlag("stats"),
		NoWatch:    p.BoolFlag("no-watch"),
		Force:      p.BoolFlag("force"),
	}

	if args.Commit != "" && args.Branch != "" {
		return CmdHelp, args, NewUsageError("target", "", "--commit and --branch cannot be combined",
			"diffreview --commit HEAD~1")
	}
	if p.HasFlag("limit") {
		limit, err := p.FlagInt("limit")
		if err != nil || limit < 1 {
			return CmdHelp, args, NewUsageError("--limit", p.Flag("limit"), "must be a positive integer",
				"diffreview commits --limit 50")
		}
		args.Limit = limit
	}

	if p.BoolFlag("help") || p.BoolFlag("h") {
		return CmdHelp, args, nil
	}
	if p.BoolFlag("version") || p.BoolFlag("v") {
		return CmdVersion, args, nil
	}

	cmd := strings.ToLower(p.Subcommand())
	switch cmd {
	case "", "tui", "review":
		return CmdTUI, args, nil
	case "files", "ls":
		return CmdFiles, args, nil
	case "commits", "log":
		return CmdCommits, args, nil
	case "branches":
		return CmdBranches, args, nil
	case "config":
		args.Subcommand = strings.ToLower(p.Positional(1))
		if args.Subcommand == "" {
			args.Subcommand = "show"
		}
		args.ConfigKey = p.Positional(2)
		return CmdConfig, args, nil
	case "version":
		return CmdVersion, args, nil
	case "help":
		return CmdHelp, args, nil
	default:
		return CmdHelp, args, NewUsageError("command", cmd, "unknown command", "diffreview help")
	}
}
