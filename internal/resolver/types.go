// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package resolver

import (
	"github.com/hashicorp/go-set/v2"

	"github.com/jeranaias/diffreview/internal/diff"
	"github.com/jeranaias/diffreview/internal/git"
)

// =============================================================================
// COMPARISON TARGET
// =============================================================================

// TargetKind identifies what changes are measured against.
type TargetKind int

const (
	// TargetDirty compares the working tree (staged and unstaged) with HEAD
	TargetDirty TargetKind = iota
	// TargetCommit shows the changes introduced by a single commit
	TargetCommit
	// TargetBranch compares HEAD with its merge-base against a branch
	TargetBranch
)

// String returns the string representation of a target kind.
func (k TargetKind) String() string {
	switch k {
	case TargetDirty:
		return "dirty"
	case TargetCommit:
		return "commit"
	case TargetBranch:
		return "branch"
	default:
		return "unknown"
	}
}

// Target is a comparison target. It is a comparable value: two targets are
// the same target exactly when they are ==.
type Target struct {
	Kind TargetKind
	Ref  string // Commit hash or branch name; empty for TargetDirty
}

// Dirty returns the working-tree target.
func Dirty() Target { return Target{Kind: TargetDirty} }

// Commit returns the target for a single commit.
func Commit(hash string) Target { return Target{Kind: TargetCommit, Ref: hash} }

// Branch returns the target for a branch comparison.
func Branch(name string) Target { return Target{Kind: TargetBranch, Ref: name} }

// String returns a short human readable description.
func (t Target) String() string {
	if t.Ref == "" {
		return t.Kind.String()
	}
	return t.Kind.String() + ":" + t.Ref
}

// =============================================================================
// FILE STATUS
// =============================================================================

// FileStatus is how a file changed under the active target.
type FileStatus int

const (
	StatusModified FileStatus = iota
	StatusAdded
	StatusDeleted
	StatusRenamed
	StatusUntracked
)

// String returns the string representation of a file status.
func (s FileStatus) String() string {
	switch s {
	case StatusAdded:
		return "added"
	case StatusDeleted:
		return "deleted"
	case StatusRenamed:
		return "renamed"
	case StatusUntracked:
		return "untracked"
	default:
		return "modified"
	}
}

// Code returns the single letter shown next to a file in listings.
func (s FileStatus) Code() string {
	switch s {
	case StatusAdded:
		return "A"
	case StatusDeleted:
		return "D"
	case StatusRenamed:
		return "R"
	case StatusUntracked:
		return "?"
	default:
		return "M"
	}
}

// classify maps porcelain status columns to a FileStatus.
// Precedence: Added > Deleted > Renamed > Untracked (both columns '?') > Modified.
func classify(x, y byte) FileStatus {
	switch {
	case x == 'A' || y == 'A':
		return StatusAdded
	case x == 'D' || y == 'D':
		return StatusDeleted
	case x == 'R' || y == 'R':
		return StatusRenamed
	case x == '?' && y == '?':
		return StatusUntracked
	default:
		return StatusModified
	}
}

// =============================================================================
// FILE CHANGE
// =============================================================================

// FileChange is one changed file under the active target.
//
// A listed FileChange has empty Diff, Content and ChangedLines. LoadDetails
// fills them exactly once; Loaded records that the attempt happened even if
// it failed, so callers do not retry; LoadErr keeps the failure apart from
// a file that simply has no content.
type FileChange struct {
	Path            string
	OldPath         string // Set only for renames
	Status          FileStatus
	Additions       int
	Deletions       int
	Diff            string
	Content         string
	ChangedLines    *set.Set[int] // 0-indexed positions in Content
	FirstChangeLine int
	Binary          bool
	Loaded          bool
	LoadErr         error // Set when the load attempt failed
}

// newFileChange builds a listed (not yet loaded) file from a status entry.
func newFileChange(e git.StatusEntry) FileChange {
	f := FileChange{
		Path:         e.Path,
		Status:       classify(e.X, e.Y),
		ChangedLines: set.New[int](0),
	}
	if f.Status == StatusRenamed {
		f.OldPath = e.OldPath
	}
	return f
}

// LineCount returns the number of lines in the loaded content.
func (f FileChange) LineCount() int {
	return len(diff.SplitLines(f.Content))
}

// Chunks returns the start of each contiguous run of changed lines.
func (f FileChange) Chunks() []int {
	return diff.Chunks(f.ChangedLines)
}

// IsChanged reports whether content line i is a changed line.
func (f FileChange) IsChanged(i int) bool {
	return f.ChangedLines != nil && f.ChangedLines.Contains(i)
}
