// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	set "github.com/hashicorp/go-set/v2"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/diffreview/internal/config"
	"github.com/jeranaias/diffreview/internal/git"
	"github.com/jeranaias/diffreview/internal/resolver"
)

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple subcommand",
			args:    []string{"files"},
			wantSub: "files",
		},
		{
			name:    "subcommand with flag",
			args:    []string{"files", "--commit", "HEAD~1"},
			wantSub: "files",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("commit") != "HEAD~1" {
					t.Errorf("Flag(commit) = %q, want %q", p.Flag("commit"), "HEAD~1")
				}
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"files", "--branch=main"},
			wantSub: "files",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("branch") != "main" {
					t.Errorf("Flag(branch) = %q, want %q", p.Flag("branch"), "main")
				}
			},
		},
		{
			name:    "declared boolean does not swallow the subcommand",
			args:    []string{"--json", "files"},
			wantSub: "files",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("json") {
					t.Error("BoolFlag(json) should be true")
				}
			},
		},
		{
			name:    "explicit false",
			args:    []string{"files", "--json=false"},
			wantSub: "files",
			validate: func(t *testing.T, p *ArgParser) {
				if p.BoolFlag("json") {
					t.Error("BoolFlag(json) should be false")
				}
				if !p.HasFlag("json") {
					t.Error("HasFlag(json) should be true")
				}
			},
		},
		{
			name:    "double dash ends flags",
			args:    []string{"config", "get", "--", "--weird"},
			wantSub: "config",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Positional(2) != "--weird" {
					t.Errorf("Positional(2) = %q, want %q", p.Positional(2), "--weird")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewArgParser(tt.args, "json")
			if parser.Subcommand() != tt.wantSub {
				t.Errorf("Subcommand() = %q, want %q", parser.Subcommand(), tt.wantSub)
			}
			if tt.validate != nil {
				tt.validate(t, parser)
			}
		})
	}
}

func TestArgParser_FlagIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		defaultVal int
		want       int
	}{
		{"flag present", []string{"commits", "--limit", "10"}, 5, 10},
		{"flag missing uses default", []string{"commits"}, 5, 5},
		{"invalid int uses default", []string{"commits", "--limit", "abc"}, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewArgParser(tt.args).FlagIntOrDefault("limit", tt.defaultVal)
			if got != tt.want {
				t.Errorf("FlagIntOrDefault(limit, %d) = %d, want %d", tt.defaultVal, got, tt.want)
			}
		})
	}
}

func TestArgParser_EmptyArgs(t *testing.T) {
	p := NewArgParser(nil)
	if p.Subcommand() != "" || p.PositionalCount() != 0 || len(p.Flags()) != 0 {
		t.Error("Empty args should yield no subcommand, positionals or flags")
	}
	if p.Positional(3) != "" {
		t.Error("Out-of-range Positional should be empty")
	}
	if len(p.PositionalFrom(1)) != 0 {
		t.Error("Out-of-range PositionalFrom should be empty")
	}
}

// =============================================================================
// PARSE TESTS (cli.go)
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		wantCmd Command
		check   func(*testing.T, Args)
	}{
		{
			name:    "no args starts the TUI",
			argv:    nil,
			wantCmd: CmdTUI,
		},
		{
			name:    "commit target",
			argv:    []string{"--commit", "abc123"},
			wantCmd: CmdTUI,
			check: func(t *testing.T, a Args) {
				target, ok := a.Target()
				require.True(t, ok)
				require.Equal(t, resolver.Commit("abc123"), target)
			},
		},
		{
			name:    "short branch flag with files",
			argv:    []string{"files", "-b", "main", "--stats", "--json"},
			wantCmd: CmdFiles,
			check: func(t *testing.T, a Args) {
				target, ok := a.Target()
				require.True(t, ok)
				require.Equal(t, resolver.Branch("main"), target)
				require.True(t, a.Stats)
				require.True(t, a.JSON)
			},
		},
		{
			name:    "dir and config",
			argv:    []string{"-C", "/src/repo", "--config", "/tmp/c.toml", "--debug", "--no-watch"},
			wantCmd: CmdTUI,
			check: func(t *testing.T, a Args) {
				require.Equal(t, "/src/repo", a.Dir)
				require.Equal(t, "/tmp/c.toml", a.ConfigPath)
				require.True(t, a.Debug)
				require.True(t, a.NoWatch)
				_, ok := a.Target()
				require.False(t, ok, "no target flag means Dirty by default")
			},
		},
		{
			name:    "commits with limit",
			argv:    []string{"commits", "--limit", "20"},
			wantCmd: CmdCommits,
			check: func(t *testing.T, a Args) {
				require.Equal(t, 20, a.Limit)
			},
		},
		{
			name:    "config defaults to show",
			argv:    []string{"config"},
			wantCmd: CmdConfig,
			check: func(t *testing.T, a Args) {
				require.Equal(t, "show", a.Subcommand)
			},
		},
		{
			name:    "config get key",
			argv:    []string{"config", "get", "ui.theme"},
			wantCmd: CmdConfig,
			check: func(t *testing.T, a Args) {
				require.Equal(t, "get", a.Subcommand)
				require.Equal(t, "ui.theme", a.ConfigKey)
			},
		},
		{"version flag", []string{"--version"}, CmdVersion, nil},
		{"help flag wins over command", []string{"files", "-h"}, CmdHelp, nil},
		{"branches", []string{"branches"}, CmdBranches, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args, err := Parse(tt.argv)
			require.NoError(t, err)
			if cmd != tt.wantCmd {
				t.Errorf("Expected command %s, got %s", tt.wantCmd, cmd)
			}
			if tt.check != nil {
				tt.check(t, args)
			}
		})
	}
}

func TestParse_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		argv []string
	}{
		{"commit and branch", []string{"--commit", "a", "--branch", "b"}},
		{"unknown command", []string{"frobnicate"}},
		{"unknown flag", []string{"--colour"}},
		{"bad limit", []string{"commits", "--limit", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.argv)
			require.Error(t, err)
			if GetExitCode(err) != ExitUsageError {
				t.Errorf("Expected exit code %d, got %d", ExitUsageError, GetExitCode(err))
			}
		})
	}
}

// =============================================================================
// ERROR TESTS (errors.go)
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", NewUsageError("flag", "x", "bad", ""), ExitUsageError},
		{"config validation", fmt.Errorf("invalid config: %w", config.ValidateErrors{{Field: "a", Message: "b"}}), ExitConfigError},
		{"not a repository", fmt.Errorf("open: %w", git.ErrNotRepository), ExitNotRepository},
		{"missing revision", NewCommandError("files", "list", "x", fmt.Errorf("%w: commit abc", resolver.ErrNotFound)), ExitNotFoundError},
		{"git failure", NewCommandError("files", "list", "x", &git.CommandError{Args: []string{"status"}, ExitCode: 128}), ExitGitError},
		{"config command", NewCommandError("config", "init", "exists", nil), ExitConfigError},
		{"anything else", errors.New("boom"), ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("Expected exit code %d, got %d", tt.want, got)
			}
		})
	}
}

func TestDisplayError_JSON(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, "files", fmt.Errorf("wrap: %w", git.ErrNotRepository), true)

	var resp JSONResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Equal(t, "not_repository", resp.ErrorType)
	require.Equal(t, "files", resp.Command)
	require.NotNil(t, resp.Error)
}

func TestUsageError_Message(t *testing.T) {
	err := NewUsageError("--limit", "0", "must be a positive integer", "diffreview commits --limit 50")
	msg := err.Error()
	for _, want := range []string{"invalid --limit", "(got: 0)", "Example: diffreview commits --limit 50"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected %q in %q", want, msg)
		}
	}
}

// =============================================================================
// HEADLESS COMMAND TESTS (files.go)
// =============================================================================

type fakeRetriever struct {
	files    map[resolver.Target][]resolver.FileChange
	details  map[string]resolver.FileChange
	commits  []git.Commit
	branches []git.Branch
	listErr  error
	limit    int
}

func (f *fakeRetriever) ListFiles(ctx context.Context, t resolver.Target) ([]resolver.FileChange, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]resolver.FileChange(nil), f.files[t]...), nil
}

func (f *fakeRetriever) LoadDetails(ctx context.Context, fc resolver.FileChange, t resolver.Target) (resolver.FileChange, error) {
	loaded, ok := f.details[fc.Path]
	if !ok {
		err := fmt.Errorf("load %s: %w", fc.Path, errors.New("exit status 128"))
		fc.Loaded = true
		fc.LoadErr = err
		return fc, err
	}
	return loaded, nil
}

func (f *fakeRetriever) Commits(ctx context.Context, limit int) ([]git.Commit, error) {
	f.limit = limit
	return f.commits, nil
}

func (f *fakeRetriever) Branches(ctx context.Context) ([]git.Branch, error) {
	return f.branches, nil
}

func newFakeRetriever() *fakeRetriever {
	return &fakeRetriever{
		files: map[resolver.Target][]resolver.FileChange{
			resolver.Dirty(): {
				{Path: "main.go", Status: resolver.StatusModified},
				{Path: "new.go", OldPath: "old.go", Status: resolver.StatusRenamed},
				{Path: "gone.go", Status: resolver.StatusDeleted},
			},
		},
		details: map[string]resolver.FileChange{
			"main.go": {
				Path: "main.go", Status: resolver.StatusModified, Loaded: true,
				Additions: 1200, Deletions: 3, Content: "a\nb\nc\n", ChangedLines: set.From([]int{0, 2}),
			},
			"new.go": {
				Path: "new.go", OldPath: "old.go", Status: resolver.StatusRenamed, Loaded: true,
				Binary: true, ChangedLines: set.New[int](0),
			},
		},
	}
}

func TestHandleFiles_Text(t *testing.T) {
	ForceColorsEnabled(false)
	var buf bytes.Buffer

	require.NoError(t, HandleFiles(context.Background(), &buf, newFakeRetriever(), Args{}))

	out := buf.String()
	for _, want := range []string{"Changes: dirty", "M main.go", "R old.go -> new.go", "D gone.go", "3 files changed"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "+1,200") {
		t.Error("Counts should only be printed with --stats")
	}
}

func TestHandleFiles_Stats(t *testing.T) {
	ForceColorsEnabled(false)
	var buf bytes.Buffer

	require.NoError(t, HandleFiles(context.Background(), &buf, newFakeRetriever(), Args{Stats: true}))

	out := buf.String()
	for _, want := range []string{"+1,200 -3  2 chunks", "binary", "error: load gone.go", "1,200 insertions(+), 3 deletions(-)"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestHandleFiles_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HandleFiles(context.Background(), &buf, newFakeRetriever(), Args{Stats: true, JSON: true}))

	var resp struct {
		Success bool      `json:"success"`
		Data    FilesData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "dirty", resp.Data.Target)
	require.Len(t, resp.Data.Files, 3)
	require.Equal(t, 1200, resp.Data.Additions)
	require.Equal(t, 2, resp.Data.Files[0].Chunks)
	require.Equal(t, "old.go", resp.Data.Files[1].OldPath)
	require.True(t, resp.Data.Files[1].Binary)
	require.NotEmpty(t, resp.Data.Files[2].Error)
}

func TestHandleFiles_EmptyTarget(t *testing.T) {
	ForceColorsEnabled(false)
	var buf bytes.Buffer

	r := newFakeRetriever()
	require.NoError(t, HandleFiles(context.Background(), &buf, r, Args{Branch: "main"}))
	require.Contains(t, buf.String(), "Changes: branch:main")
	require.Contains(t, buf.String(), "No changes")

	buf.Reset()
	require.NoError(t, HandleFiles(context.Background(), &buf, r, Args{Branch: "main", JSON: true}))
	require.Contains(t, buf.String(), `"files": []`)
}

func TestHandleFiles_ListFailure(t *testing.T) {
	r := newFakeRetriever()
	r.listErr = fmt.Errorf("list files for commit:zzz: %w", resolver.ErrNotFound)

	err := HandleFiles(context.Background(), &bytes.Buffer{}, r, Args{Commit: "zzz"})
	require.Error(t, err)
	require.ErrorIs(t, err, resolver.ErrNotFound)
	require.Equal(t, ExitNotFoundError, GetExitCode(err))
}

func TestHandleCommits(t *testing.T) {
	ForceColorsEnabled(false)
	r := newFakeRetriever()
	r.commits = []git.Commit{{Hash: "abc123def", ShortHash: "abc123d", Author: "Dana", RelativeDate: "2 days ago", Subject: "Fix parser"}}

	var buf bytes.Buffer
	require.NoError(t, HandleCommits(context.Background(), &buf, r, Args{}, 200))
	require.Equal(t, 200, r.limit)
	require.Contains(t, buf.String(), "abc123d")
	require.Contains(t, buf.String(), "Fix parser (Dana)")

	buf.Reset()
	require.NoError(t, HandleCommits(context.Background(), &buf, r, Args{Limit: 5, JSON: true}, 200))
	require.Equal(t, 5, r.limit)
	require.Contains(t, buf.String(), `"short_hash": "abc123d"`)
}

func TestHandleBranches(t *testing.T) {
	ForceColorsEnabled(false)
	r := newFakeRetriever()
	r.branches = []git.Branch{
		{Name: "main", Current: true, ShortHash: "abc123d", RelativeDate: "1 hour ago"},
		{Name: "feature/x", ShortHash: "def456a", RelativeDate: "3 days ago"},
	}

	var buf bytes.Buffer
	require.NoError(t, HandleBranches(context.Background(), &buf, r, Args{}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "* main"))
	require.True(t, strings.HasPrefix(lines[1], "  feature/x"))
}

// =============================================================================
// CONFIG COMMAND TESTS (config.go)
// =============================================================================

func TestHandleConfig(t *testing.T) {
	ForceColorsEnabled(false)
	cfg := config.Default()

	var buf bytes.Buffer
	require.NoError(t, HandleConfig(&buf, cfg, Args{Subcommand: "get", ConfigKey: "review.context_lines"}))
	require.Equal(t, "5\n", buf.String())

	buf.Reset()
	require.NoError(t, HandleConfig(&buf, cfg, Args{Subcommand: "show"}))
	require.Contains(t, buf.String(), "[review]")

	err := HandleConfig(&buf, cfg, Args{Subcommand: "get", ConfigKey: "nope"})
	require.Equal(t, ExitUsageError, GetExitCode(err))

	err = HandleConfig(&buf, cfg, Args{Subcommand: "reset"})
	require.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestHandleConfig_Init(t *testing.T) {
	ForceColorsEnabled(false)
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	args := Args{Subcommand: "init", ConfigPath: path}

	var buf bytes.Buffer
	require.NoError(t, HandleConfig(&buf, config.Default(), args))
	require.Contains(t, buf.String(), "wrote "+path)

	_, err := os.Stat(path)
	require.NoError(t, err)

	err = HandleConfig(&buf, config.Default(), args)
	require.Error(t, err, "init must not overwrite without --force")
	require.Equal(t, ExitConfigError, GetExitCode(err))

	args.Force = true
	require.NoError(t, HandleConfig(&buf, config.Default(), args))
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	for _, name := range []string{"DIFFREVIEW_DIR", "DIFFREVIEW_GIT", "DIFFREVIEW_THEME", "DIFFREVIEW_CONTEXT_LINES", "DIFFREVIEW_WATCH"} {
		t.Setenv(name, "")
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[repository]\ndir = \"/from/file\"\n"), 0644))

	cfg, err := LoadConfig(Args{ConfigPath: path})
	require.NoError(t, err)
	require.Equal(t, "/from/file", cfg.Repository.Dir)

	cfg, err = LoadConfig(Args{ConfigPath: path, Dir: "/from/flag", Debug: true, NoWatch: true})
	require.NoError(t, err)
	require.Equal(t, "/from/flag", cfg.Repository.Dir)
	require.True(t, cfg.Log.Debug)
	require.False(t, cfg.Watch.Enabled)
}
