// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package git runs the git binary as an external process and parses its output.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// EmptyTree is the hash of git's empty tree object. Diffing a root commit
// against it lists every file the commit introduced.
const EmptyTree = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotRepository is returned when the working directory is not inside a git repository.
var ErrNotRepository = errors.New("not a git repository")

// CommandError describes a git invocation that failed.
type CommandError struct {
	Args     []string // Arguments passed to git
	ExitCode int      // Process exit code (-1 if the process never ran)
	Stderr   string   // Trimmed standard error output
	Err      error    // Underlying error
}

func (e *CommandError) Error() string {
	msg := e.Stderr
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("git %s: %s", strings.Join(e.Args, " "), msg)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// =============================================================================
// CLIENT
// =============================================================================

// Options configures a Client.
type Options struct {
	Binary  string        // git executable (default "git")
	Timeout time.Duration // Per-command timeout (0 = none)
	Debug   bool          // Log every command line
}

// Client runs git commands inside one working tree.
type Client struct {
	dir     string
	binary  string
	timeout time.Duration
	debug   bool
}

// NewClient creates a client scoped to dir, which should be the repository root.
func NewClient(dir string, opts Options) *Client {
	if opts.Binary == "" {
		opts.Binary = "git"
	}
	return &Client{
		dir:     dir,
		binary:  opts.Binary,
		timeout: opts.Timeout,
		debug:   opts.Debug,
	}
}

// Dir returns the directory commands run in.
func (c *Client) Dir() string {
	return c.dir
}

// Run executes git with args and returns its standard output unmodified.
// CANCELLATION: Context enables timeout and cancellation
func (c *Client) Run(ctx context.Context, args ...string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	full := append([]string{"-c", "core.quotepath=off"}, args...)
	cmd := exec.CommandContext(ctx, c.binary, full...)
	cmd.Dir = c.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if c.debug {
		log.Printf("GIT_RUN | dir=%s args=%q", c.dir, args)
	}

	if err := cmd.Run(); err != nil {
		// Check for context cancellation
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		cmdErr := &CommandError{
			Args:     args,
			ExitCode: -1,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		log.Printf("GIT_FAILED | args=%q exit=%d stderr=%s", args, cmdErr.ExitCode, cmdErr.Stderr)
		return "", cmdErr
	}

	return stdout.String(), nil
}

// =============================================================================
// QUERIES
// =============================================================================

// Status lists staged, unstaged and untracked changes (porcelain v1).
func (c *Client) Status(ctx context.Context) ([]StatusEntry, error) {
	out, err := c.Run(ctx, "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	return ParseStatus(out), nil
}

// NameStatus lists files that differ between two revisions. An empty to
// compares from against the working tree.
func (c *Client) NameStatus(ctx context.Context, from, to string) ([]StatusEntry, error) {
	args := []string{"diff", "--name-status", "-M", from}
	if to != "" {
		args = append(args, to)
	}
	out, err := c.Run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return ParseNameStatus(out), nil
}

// ResolveCommit returns the full hash of rev, or an error if it does not name a commit.
func (c *Client) ResolveCommit(ctx context.Context, rev string) (string, error) {
	out, err := c.Run(ctx, "rev-parse", "--verify", "-q", rev+"^{commit}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// MergeBase returns the best common ancestor of a and b.
func (c *Client) MergeBase(ctx context.Context, a, b string) (string, error) {
	out, err := c.Run(ctx, "merge-base", a, b)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Diff returns unified diff text for the given diff arguments.
func (c *Client) Diff(ctx context.Context, args ...string) (string, error) {
	return c.Run(ctx, append([]string{"diff", "--no-color", "--no-ext-diff"}, args...)...)
}

// Show returns the contents of path at rev.
func (c *Client) Show(ctx context.Context, rev, path string) (string, error) {
	return c.Run(ctx, "show", rev+":"+path)
}

// ReadFile reads a file from the working tree.
func (c *Client) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(filepath.Join(c.dir, filepath.FromSlash(path)))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Log returns up to limit commits reachable from HEAD, newest first.
func (c *Client) Log(ctx context.Context, limit int) ([]Commit, error) {
	args := []string{"log", "--format=%H%x09%h%x09%an%x09%ar%x09%s"}
	if limit > 0 {
		args = append(args, "-n", strconv.Itoa(limit))
	}
	out, err := c.Run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return ParseLog(out), nil
}

// Branches returns local branches, most recently committed first.
func (c *Client) Branches(ctx context.Context) ([]Branch, error) {
	out, err := c.Run(ctx, "branch", "--sort=-committerdate",
		"--format=%(HEAD)%09%(refname:short)%09%(objectname:short)%09%(committerdate:relative)%09%(contents:subject)")
	if err != nil {
		return nil, err
	}
	return ParseBranches(out), nil
}
