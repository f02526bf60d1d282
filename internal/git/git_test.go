// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	out := " M src/app.go\n" +
		"A  new.go\n" +
		"D  gone.go\n" +
		"R  old name.go -> new name.go\n" +
		"?? scratch/\n" +
		"?? notes.txt\n" +
		"MM both.go\n" +
		"?? \"caf\\303\\251.txt\"\n"

	entries := ParseStatus(out)
	require.Len(t, entries, 8)

	require.Equal(t, StatusEntry{X: ' ', Y: 'M', Path: "src/app.go"}, entries[0])
	require.Equal(t, StatusEntry{X: 'A', Y: ' ', Path: "new.go"}, entries[1])
	require.Equal(t, StatusEntry{X: 'R', Y: ' ', Path: "new name.go", OldPath: "old name.go"}, entries[3])
	require.True(t, entries[4].IsDir())
	require.False(t, entries[5].IsDir())
	require.Equal(t, "café.txt", entries[7].Path)
}

func TestParseStatus_Empty(t *testing.T) {
	if entries := ParseStatus(""); len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}

func TestParseNameStatus(t *testing.T) {
	out := "M\tmain.go\nA\tdocs/new.md\nD\tlegacy.go\nR087\tpkg/a.go\tpkg/b.go\n\n"

	entries := ParseNameStatus(out)
	require.Len(t, entries, 4)
	require.Equal(t, byte('M'), entries[0].X)
	require.Equal(t, "docs/new.md", entries[1].Path)
	require.Equal(t, byte('D'), entries[2].X)
	require.Equal(t, StatusEntry{X: 'R', Y: ' ', Path: "pkg/b.go", OldPath: "pkg/a.go"}, entries[3])
}

func TestParseLog(t *testing.T) {
	out := "a1b2c3d4e5\ta1b2c3d\tAda Lovelace\t2 hours ago\tFix parser\tfor tabs\n" +
		"broken line\n" +
		"f6e5d4c3b2\tf6e5d4c\tGrace Hopper\t3 days ago\tInitial commit\n"

	commits := ParseLog(out)
	require.Len(t, commits, 2)
	require.Equal(t, Commit{
		Hash:         "a1b2c3d4e5",
		ShortHash:    "a1b2c3d",
		Author:       "Ada Lovelace",
		RelativeDate: "2 hours ago",
		Subject:      "Fix parser\tfor tabs",
	}, commits[0])
	require.Equal(t, "Initial commit", commits[1].Subject)
}

func TestParseBranches(t *testing.T) {
	out := "*\tmain\tabc1234\t5 minutes ago\tMerge feature\n" +
		" \tfeature/x\tdef5678\t2 days ago\tAdd x\n" +
		"*\t(HEAD detached at abc1234)\tabc1234\t5 minutes ago\tMerge feature\n"

	branches := ParseBranches(out)
	require.Len(t, branches, 2)
	require.True(t, branches[0].Current)
	require.Equal(t, "main", branches[0].Name)
	require.False(t, branches[1].Current)
	require.Equal(t, "feature/x", branches[1].Name)
}

func TestCommandError(t *testing.T) {
	inner := errors.New("exit status 128")
	err := &CommandError{Args: []string{"show", "HEAD:x"}, ExitCode: 128, Stderr: "fatal: path 'x' does not exist", Err: inner}

	if err.Error() != "git show HEAD:x: fatal: path 'x' does not exist" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("CommandError should unwrap to its cause")
	}
}

// =============================================================================
// INTEGRATION (requires a git binary)
// =============================================================================

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

func gitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	full := append([]string{"-c", "user.name=Test", "-c", "user.email=test@example.com", "-c", "commit.gpgsign=false"}, args...)
	cmd := exec.Command("git", full...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newTestRepo(t *testing.T) string {
	t.Helper()
	requireGit(t)

	dir := t.TempDir()
	gitCmd(t, dir, "init", "-q", "-b", "main")
	writeFile(t, dir, "a.txt", "one\ntwo\nthree\n")
	writeFile(t, dir, "src/b.txt", "bee\n")
	gitCmd(t, dir, "add", ".")
	gitCmd(t, dir, "commit", "-q", "-m", "initial")
	return dir
}

func TestClient_StatusAndShow(t *testing.T) {
	dir := newTestRepo(t)
	writeFile(t, dir, "a.txt", "one\nTWO\nthree\n")
	writeFile(t, dir, "untracked.txt", "new\n")

	client := NewClient(dir, Options{Timeout: 10 * time.Second})
	ctx := context.Background()

	entries, err := client.Status(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	show, err := client.Show(ctx, "HEAD", "a.txt")
	require.NoError(t, err)
	require.Equal(t, "one\ntwo\nthree\n", show)

	text, err := client.Diff(ctx, "--", "a.txt")
	require.NoError(t, err)
	require.Contains(t, text, "+TWO")

	content, err := client.ReadFile("a.txt")
	require.NoError(t, err)
	require.Equal(t, "one\nTWO\nthree\n", content)
}

func TestClient_LogAndBranches(t *testing.T) {
	dir := newTestRepo(t)
	gitCmd(t, dir, "branch", "feature")

	client := NewClient(dir, Options{})
	ctx := context.Background()

	commits, err := client.Log(ctx, 10)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	require.Equal(t, "initial", commits[0].Subject)

	branches, err := client.Branches(ctx)
	require.NoError(t, err)
	require.Len(t, branches, 2)

	base, err := client.MergeBase(ctx, "HEAD", "feature")
	require.NoError(t, err)
	require.Equal(t, commits[0].Hash, base)
}

func TestClient_RunFailure(t *testing.T) {
	dir := newTestRepo(t)
	client := NewClient(dir, Options{})

	_, err := client.Show(context.Background(), "HEAD", "missing.txt")
	require.Error(t, err)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	require.NotZero(t, cmdErr.ExitCode)
	require.NotEmpty(t, cmdErr.Stderr)
}

func TestClient_ResolveCommitRootHasNoParent(t *testing.T) {
	dir := newTestRepo(t)
	client := NewClient(dir, Options{})

	_, err := client.ResolveCommit(context.Background(), "HEAD^")
	require.Error(t, err)

	hash, err := client.ResolveCommit(context.Background(), "HEAD")
	require.NoError(t, err)
	require.Len(t, hash, 40)
}

func TestDiscoverRoot(t *testing.T) {
	dir := newTestRepo(t)

	root, err := DiscoverRoot(filepath.Join(dir, "src"))
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestDiscoverRoot_NotRepository(t *testing.T) {
	_, err := DiscoverRoot(t.TempDir())
	require.ErrorIs(t, err, ErrNotRepository)
}
