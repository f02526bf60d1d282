// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package nav

import (
	"github.com/hashicorp/go-set/v2"

	"github.com/jeranaias/diffreview/internal/git"
	"github.com/jeranaias/diffreview/internal/resolver"
	"github.com/jeranaias/diffreview/internal/search"
)

// =============================================================================
// ENUMS
// =============================================================================

// Mode is the kind of comparison being reviewed.
type Mode int

const (
	ModeDirty Mode = iota
	ModeCommit
	ModeBranch
)

// String returns the string representation of a mode.
func (m Mode) String() string {
	switch m {
	case ModeDirty:
		return "dirty"
	case ModeCommit:
		return "commit"
	case ModeBranch:
		return "branch"
	default:
		return "unknown"
	}
}

// Next returns the mode that follows m in the cycle.
func (m Mode) Next() Mode {
	switch m {
	case ModeDirty:
		return ModeCommit
	case ModeCommit:
		return ModeBranch
	default:
		return ModeDirty
	}
}

// ParseMode converts a name ("dirty", "commit", "branch") to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "dirty", "":
		return ModeDirty, true
	case "commit":
		return ModeCommit, true
	case "branch":
		return ModeBranch, true
	}
	return ModeDirty, false
}

// ModeFor returns the mode that shows target t.
func ModeFor(t resolver.Target) Mode {
	switch t.Kind {
	case resolver.TargetCommit:
		return ModeCommit
	case resolver.TargetBranch:
		return ModeBranch
	default:
		return ModeDirty
	}
}

// pickerTarget is the placeholder target of a mode while its picker is shown.
func (m Mode) pickerTarget() resolver.Target {
	switch m {
	case ModeCommit:
		return resolver.Target{Kind: resolver.TargetCommit}
	case ModeBranch:
		return resolver.Target{Kind: resolver.TargetBranch}
	default:
		return resolver.Dirty()
	}
}

// Level is the depth in the view hierarchy.
type Level int

const (
	LevelList  Level = iota // Commit or branch picker
	LevelFiles              // Changed files of the selected target
)

// String returns the string representation of a level.
func (l Level) String() string {
	if l == LevelList {
		return "list"
	}
	return "files"
}

// Panel is the focused panel.
type Panel int

const (
	PanelFiles Panel = iota
	PanelDiff
)

// String returns the string representation of a panel.
func (p Panel) String() string {
	if p == PanelDiff {
		return "diff"
	}
	return "files"
}

// Status summarizes what the current level is showing. Empty and Failed are
// distinct so "no changes" is never confused with "could not load changes".
type Status int

const (
	StatusReady Status = iota
	StatusLoading
	StatusEmpty
	StatusFailed
)

// String returns the string representation of a status.
func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return "ready"
	}
}

// =============================================================================
// STATE
// =============================================================================

// State is an immutable snapshot of the review session. Machine.Update never
// mutates a State it was given; slices and sets are replaced, not edited, so
// a snapshot handed to the presentation layer stays valid.
type State struct {
	Mode  Mode
	Level Level
	Focus Panel

	// Picker entries (Commit and Branch modes)
	Commits   []git.Commit
	Branches  []git.Branch
	ListIndex int

	// Target is the comparison target of the file list. While the picker is
	// shown it carries only the mode's kind.
	Target    resolver.Target
	Files     []resolver.FileChange
	FileIndex int

	Scroll         int
	ChunkIndex     int // -1 when not on a chunk
	ViewportHeight int
	Search         search.Session

	LoadingList  bool
	LoadingFiles bool
	Err          error // Last listing failure

	lastSelected string
	inflight     *set.Set[string] // loadKey of detail loads not yet resolved
}

// NewState returns the initial state: Dirty mode, file level, file focus.
func NewState(viewportHeight int) State {
	return State{
		Mode:           ModeDirty,
		Level:          LevelFiles,
		Focus:          PanelFiles,
		Target:         resolver.Dirty(),
		ChunkIndex:     -1,
		ViewportHeight: viewportHeight,
	}
}

// Status returns the status of the current level.
func (s State) Status() Status {
	switch {
	case s.Level == LevelList && s.LoadingList, s.Level == LevelFiles && s.LoadingFiles:
		return StatusLoading
	case s.Err != nil:
		return StatusFailed
	case s.Level == LevelList && s.ListLen() == 0, s.Level == LevelFiles && len(s.Files) == 0:
		return StatusEmpty
	default:
		return StatusReady
	}
}

// DetailStatus returns the status of the selected file's diff. A file whose
// load failed stays Failed; it is not reloaded until the list is refreshed.
func (s State) DetailStatus() Status {
	f, ok := s.SelectedFile()
	switch {
	case !ok:
		return StatusEmpty
	case s.DetailsLoading():
		return StatusLoading
	case f.LoadErr != nil:
		return StatusFailed
	case !f.Loaded:
		return StatusLoading
	case f.Content == "" && f.Diff == "" && !f.Binary:
		return StatusEmpty
	default:
		return StatusReady
	}
}

// ListLen returns the number of picker entries for the current mode.
func (s State) ListLen() int {
	switch s.Mode {
	case ModeCommit:
		return len(s.Commits)
	case ModeBranch:
		return len(s.Branches)
	default:
		return 0
	}
}

// SelectedFile returns the file under the cursor.
func (s State) SelectedFile() (resolver.FileChange, bool) {
	if s.Level != LevelFiles || s.FileIndex < 0 || s.FileIndex >= len(s.Files) {
		return resolver.FileChange{}, false
	}
	return s.Files[s.FileIndex], true
}

// SelectedPath returns the path most recently selected for loading.
func (s State) SelectedPath() string {
	return s.lastSelected
}

// DetailsLoading reports whether the selected file has a load in flight.
func (s State) DetailsLoading() bool {
	f, ok := s.SelectedFile()
	return ok && s.isInflight(loadKey(s.Target, f.Path))
}

// InflightCount returns the number of unresolved detail loads.
func (s State) InflightCount() int {
	if s.inflight == nil {
		return 0
	}
	return s.inflight.Size()
}

// LineCount returns the number of content lines of the selected file.
func (s State) LineCount() int {
	f, ok := s.SelectedFile()
	if !ok {
		return 0
	}
	return f.LineCount()
}

// Chunks returns the chunk starts of the selected file.
func (s State) Chunks() []int {
	f, ok := s.SelectedFile()
	if !ok {
		return nil
	}
	return f.Chunks()
}

func (s State) isInflight(key string) bool {
	return s.inflight != nil && s.inflight.Contains(key)
}

// withInflight returns a copy of s whose in-flight set has key added.
func (s State) withInflight(key string) State {
	next := set.New[string](1)
	if s.inflight != nil {
		next = s.inflight.Copy()
	}
	next.Insert(key)
	s.inflight = next
	return s
}

// withoutInflight returns a copy of s whose in-flight set lacks key.
func (s State) withoutInflight(key string) State {
	if !s.isInflight(key) {
		return s
	}
	next := s.inflight.Copy()
	next.Remove(key)
	s.inflight = next
	return s
}

// loadKey identifies a detail load by (target, path).
func loadKey(t resolver.Target, path string) string {
	return t.String() + "\x00" + path
}
