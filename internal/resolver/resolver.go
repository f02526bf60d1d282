// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package resolver lists and loads file changes for a comparison target.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/samber/lo"

	"github.com/jeranaias/diffreview/internal/diff"
	"github.com/jeranaias/diffreview/internal/git"
)

// ErrNotFound is returned when a commit or branch no longer resolves.
var ErrNotFound = errors.New("revision not found")

// binarySniffLen matches the prefix git inspects when guessing binary content.
const binarySniffLen = 8000

// Source is the version-control collaborator. *git.Client implements it.
type Source interface {
	Status(ctx context.Context) ([]git.StatusEntry, error)
	NameStatus(ctx context.Context, from, to string) ([]git.StatusEntry, error)
	ResolveCommit(ctx context.Context, rev string) (string, error)
	MergeBase(ctx context.Context, a, b string) (string, error)
	Diff(ctx context.Context, args ...string) (string, error)
	Show(ctx context.Context, rev, path string) (string, error)
	ReadFile(path string) (string, error)
	Log(ctx context.Context, limit int) ([]git.Commit, error)
	Branches(ctx context.Context) ([]git.Branch, error)
}

// Resolver turns a comparison target into file changes. Listing only asks
// git for names and statuses; diffs and contents are fetched per file by
// LoadDetails.
type Resolver struct {
	src Source
}

// New creates a resolver backed by src.
func New(src Source) *Resolver {
	return &Resolver{src: src}
}

// =============================================================================
// LISTING
// =============================================================================

// ListFiles returns the files changed under t, in git's order, with no
// diff or content loaded. It issues at most three git commands.
func (r *Resolver) ListFiles(ctx context.Context, t Target) ([]FileChange, error) {
	var entries []git.StatusEntry
	var err error

	switch t.Kind {
	case TargetDirty:
		entries, err = r.src.Status(ctx)
	case TargetCommit:
		var parent string
		parent, err = r.commitParent(ctx, t.Ref)
		if err == nil {
			entries, err = r.src.NameStatus(ctx, parent, t.Ref)
		}
	case TargetBranch:
		var base string
		base, err = r.mergeBase(ctx, t.Ref)
		if err == nil {
			entries, err = r.src.NameStatus(ctx, base, "HEAD")
		}
	default:
		err = fmt.Errorf("unknown target kind %d", t.Kind)
	}
	if err != nil {
		log.Printf("LIST_FAILED | target=%s error=%v", t, err)
		return nil, fmt.Errorf("list files for %s: %w", t, err)
	}

	files := lo.FilterMap(entries, func(e git.StatusEntry, _ int) (FileChange, bool) {
		if e.IsDir() {
			return FileChange{}, false
		}
		return newFileChange(e), true
	})
	return files, nil
}

// Commits returns the commit picker entries.
func (r *Resolver) Commits(ctx context.Context, limit int) ([]git.Commit, error) {
	commits, err := r.src.Log(ctx, limit)
	if err != nil {
		log.Printf("LIST_FAILED | list=commits error=%v", err)
		return nil, fmt.Errorf("list commits: %w", err)
	}
	return commits, nil
}

// Branches returns the branch picker entries, most recent first.
func (r *Resolver) Branches(ctx context.Context) ([]git.Branch, error) {
	branches, err := r.src.Branches(ctx)
	if err != nil {
		log.Printf("LIST_FAILED | list=branches error=%v", err)
		return nil, fmt.Errorf("list branches: %w", err)
	}
	return branches, nil
}

// commitParent returns the first parent of hash, or the empty tree for a
// root commit.
func (r *Resolver) commitParent(ctx context.Context, hash string) (string, error) {
	if parent, err := r.src.ResolveCommit(ctx, hash+"^"); err == nil {
		return parent, nil
	}
	if _, err := r.src.ResolveCommit(ctx, hash); err != nil {
		return "", fmt.Errorf("%w: commit %s: %v", ErrNotFound, hash, err)
	}
	return git.EmptyTree, nil
}

// mergeBase returns the common ancestor of HEAD and branch.
func (r *Resolver) mergeBase(ctx context.Context, branch string) (string, error) {
	base, err := r.src.MergeBase(ctx, "HEAD", branch)
	if err != nil {
		return "", fmt.Errorf("%w: branch %s: %v", ErrNotFound, branch, err)
	}
	return base, nil
}

// =============================================================================
// DETAIL LOADING
// =============================================================================

// LoadDetails fetches the diff and content of f under t and derives its
// changed lines. On failure the file comes back with empty diff and content
// (but Loaded set) together with the error; callers should not retry.
func (r *Resolver) LoadDetails(ctx context.Context, f FileChange, t Target) (FileChange, error) {
	text, content, err := r.fetch(ctx, f, t)
	if err != nil {
		log.Printf("LOAD_FAILED | target=%s path=%s error=%v", t, f.Path, err)
		err = fmt.Errorf("load %s: %w", f.Path, err)
		f.Loaded = true
		f.LoadErr = err
		return f, err
	}

	out := f
	out.Loaded = true
	out.LoadErr = nil

	if diff.IsBinary(text) || isBinaryContent(content) {
		out.Binary = true
		return out, nil
	}

	out.Diff = text
	out.Content = content

	switch f.Status {
	case StatusUntracked:
		// Counted from the content: a line such as "++ b/x" becomes
		// "+++ b/x" in the synthesized diff and would read as a file header.
		n := out.LineCount()
		out.Additions, out.Deletions = n, 0
		out.ChangedLines = diff.AllPositions(n)
	case StatusDeleted:
		// The content shown is the removed file, so every line is a change.
		out.Additions, out.Deletions = diff.Stats(text)
		out.ChangedLines = diff.AllPositions(out.LineCount())
	default:
		out.Additions, out.Deletions = diff.Stats(text)
		out.ChangedLines = diff.ChangedPositions(text)
	}

	out.FirstChangeLine = 0
	if !out.ChangedLines.Empty() {
		out.FirstChangeLine = lo.Min(out.ChangedLines.Slice())
	}
	return out, nil
}

// fetch picks the diff and content sources for a (status, target) pair.
func (r *Resolver) fetch(ctx context.Context, f FileChange, t Target) (text, content string, err error) {
	switch {
	case f.Status == StatusUntracked:
		content, err = r.src.ReadFile(f.Path)
		if err != nil {
			return "", "", err
		}
		return diff.FormatNewFile(f.Path, content), content, nil

	case t.Kind == TargetDirty:
		text, err = r.dirtyDiff(ctx, f)
		if err != nil {
			return "", "", err
		}
		if f.Status == StatusDeleted {
			content, err = r.src.Show(ctx, "HEAD", f.Path)
		} else {
			content, err = r.src.ReadFile(f.Path)
		}
		return text, content, err

	case t.Kind == TargetCommit:
		parent, err := r.commitParent(ctx, t.Ref)
		if err != nil {
			return "", "", err
		}
		return r.revisionDetails(ctx, f, parent, t.Ref)

	case t.Kind == TargetBranch:
		base, err := r.mergeBase(ctx, t.Ref)
		if err != nil {
			return "", "", err
		}
		return r.revisionDetails(ctx, f, base, "HEAD")
	}
	return "", "", fmt.Errorf("unknown target kind %d", t.Kind)
}

// revisionDetails loads a file changed between two revisions. Deleted files
// show their old blob; everything else shows the blob at to.
func (r *Resolver) revisionDetails(ctx context.Context, f FileChange, from, to string) (text, content string, err error) {
	args := append([]string{"-M", from, to, "--"}, diffPaths(f)...)
	text, err = r.src.Diff(ctx, args...)
	if err != nil {
		return "", "", err
	}

	if f.Status == StatusDeleted {
		if from == git.EmptyTree {
			return text, "", nil
		}
		content, err = r.src.Show(ctx, from, f.Path)
	} else {
		content, err = r.src.Show(ctx, to, f.Path)
	}
	return text, content, err
}

// dirtyDiff returns one coherent diff of staged and unstaged changes.
func (r *Resolver) dirtyDiff(ctx context.Context, f FileChange) (string, error) {
	paths := diffPaths(f)

	unstaged, err := r.src.Diff(ctx, append([]string{"--"}, paths...)...)
	if err != nil {
		return "", err
	}
	staged, err := r.src.Diff(ctx, append([]string{"--cached", "-M", "--"}, paths...)...)
	if err != nil {
		return "", err
	}

	switch {
	case strings.TrimSpace(staged) == "":
		return unstaged, nil
	case strings.TrimSpace(unstaged) == "":
		return staged, nil
	}
	// Both sides changed: staged hunks are relative to HEAD and unstaged ones
	// to the index, so take the combined diff against HEAD instead.
	return r.src.Diff(ctx, append([]string{"-M", "HEAD", "--"}, paths...)...)
}

func diffPaths(f FileChange) []string {
	if f.Status == StatusRenamed && f.OldPath != "" {
		return []string{f.OldPath, f.Path}
	}
	return []string{f.Path}
}

func isBinaryContent(content string) bool {
	if len(content) > binarySniffLen {
		content = content[:binarySniffLen]
	}
	return strings.IndexByte(content, 0) >= 0
}
