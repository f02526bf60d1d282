// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package nav

import (
	"context"
	"log"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"github.com/jeranaias/diffreview/internal/diff"
	"github.com/jeranaias/diffreview/internal/git"
	"github.com/jeranaias/diffreview/internal/resolver"
	"github.com/jeranaias/diffreview/internal/search"
)

// DefaultContextLines is the lead-in kept above a jump target.
const DefaultContextLines = 5

// Retriever is what the machine needs from the resolver.
// *resolver.Resolver implements it.
type Retriever interface {
	ListFiles(ctx context.Context, t resolver.Target) ([]resolver.FileChange, error)
	LoadDetails(ctx context.Context, f resolver.FileChange, t resolver.Target) (resolver.FileChange, error)
	Commits(ctx context.Context, limit int) ([]git.Commit, error)
	Branches(ctx context.Context) ([]git.Branch, error)
}

// Options configures a Machine.
type Options struct {
	ContextLines int // Lead-in above jump targets (default 5)
	CommitLimit  int // Commits listed in Commit mode (default 200)
}

// Machine computes state transitions. It holds no session state itself; all
// of that lives in the State values passed through Update.
type Machine struct {
	r    Retriever
	opts Options
	ctx  context.Context
}

// NewMachine creates a machine backed by r.
func NewMachine(ctx context.Context, r Retriever, opts Options) *Machine {
	if opts.ContextLines <= 0 {
		opts.ContextLines = DefaultContextLines
	}
	if opts.CommitLimit <= 0 {
		opts.CommitLimit = 200
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &Machine{r: r, opts: opts, ctx: ctx}
}

// Init returns the command that loads the initial state's data.
func (m *Machine) Init(s State) tea.Cmd {
	if s.Level == LevelList {
		return m.listEntriesCmd(s.Mode)
	}
	return m.listFilesCmd(s.Target)
}

// Start returns the initial state and its loading command.
func (m *Machine) Start(viewportHeight int) (State, tea.Cmd) {
	s := NewState(viewportHeight)
	s.LoadingFiles = true
	return s, m.Init(s)
}

// Update applies msg to s and returns the next state together with any
// retrieval to run. Unknown messages leave s unchanged.
func (m *Machine) Update(s State, msg tea.Msg) (State, tea.Cmd) {
	switch msg := msg.(type) {
	case CycleModeMsg:
		return m.setMode(s, s.Mode.Next())
	case SetModeMsg:
		return m.setMode(s, msg.Mode)
	case OpenTargetMsg:
		return m.openTarget(s, msg.Target)

	case BackMsg:
		return m.back(s), nil
	case MoveCursorMsg:
		return m.moveCursor(s, msg.Delta)
	case SelectListEntryMsg:
		return m.selectListEntry(s)
	case SelectFileMsg:
		return m.selectFile(s, msg.Index)
	case FocusMsg:
		return m.focus(s, msg.Panel), nil
	case RefreshMsg:
		return m.refresh(s, msg.Auto)

	case ScrollMsg:
		return m.scrollBy(s, msg.Delta), nil
	case ResizeMsg:
		return m.resize(s, msg.Height), nil

	case NextChunkMsg:
		return m.jumpChunk(s, true), nil
	case PrevChunkMsg:
		return m.jumpChunk(s, false), nil

	case SearchMsg:
		return m.startSearch(s, msg.Query), nil
	case NextMatchMsg:
		return m.jumpMatch(s, s.Search.Next()), nil
	case PrevMatchMsg:
		return m.jumpMatch(s, s.Search.Prev()), nil
	case ClearSearchMsg:
		s.Search = search.Session{}
		return s, nil

	case ListLoadedMsg:
		return m.listLoaded(s, msg)
	case FilesLoadedMsg:
		return m.filesLoaded(s, msg)
	case DetailsLoadedMsg:
		return m.detailsLoaded(s, msg), nil
	}
	return s, nil
}

// =============================================================================
// MODE
// =============================================================================

// setMode switches modes: the file collection, selection and search are
// replaced wholesale, which also orphans any in-flight loads.
func (m *Machine) setMode(s State, mode Mode) (State, tea.Cmd) {
	next := State{
		Mode:           mode,
		Focus:          PanelFiles,
		ChunkIndex:     -1,
		ViewportHeight: s.ViewportHeight,
		Target:         mode.pickerTarget(),
	}

	if mode == ModeDirty {
		next.Level = LevelFiles
		next.LoadingFiles = true
		return next, m.listFilesCmd(next.Target)
	}
	next.Level = LevelList
	next.LoadingList = true
	return next, m.listEntriesCmd(mode)
}

// openTarget shows the file list of t directly.
func (m *Machine) openTarget(s State, t resolver.Target) (State, tea.Cmd) {
	next, listCmd := m.setMode(s, ModeFor(t))
	if t.Kind == resolver.TargetDirty {
		return next, listCmd
	}
	next.Level = LevelFiles
	next.Target = t
	next.LoadingFiles = true
	return next, tea.Batch(listCmd, m.listFilesCmd(t))
}

// =============================================================================
// HIERARCHY
// =============================================================================

// back steps up one level: diff focus -> file focus -> picker. At the top of
// the hierarchy it does nothing.
func (m *Machine) back(s State) State {
	switch {
	case s.Focus == PanelDiff:
		s.Focus = PanelFiles
		return s
	case s.Level == LevelFiles && s.Mode != ModeDirty:
		return State{
			Mode:           s.Mode,
			Level:          LevelList,
			Focus:          PanelFiles,
			Commits:        s.Commits,
			Branches:       s.Branches,
			ListIndex:      s.ListIndex,
			LoadingList:    s.LoadingList,
			Target:         s.Mode.pickerTarget(),
			ChunkIndex:     -1,
			ViewportHeight: s.ViewportHeight,
		}
	default:
		return s
	}
}

func (m *Machine) moveCursor(s State, delta int) (State, tea.Cmd) {
	switch {
	case s.Level == LevelList:
		if n := s.ListLen(); n > 0 {
			s.ListIndex = lo.Clamp(s.ListIndex+delta, 0, n-1)
		}
		return s, nil
	case s.Focus == PanelDiff:
		return m.scrollBy(s, delta), nil
	default:
		if len(s.Files) == 0 {
			return s, nil
		}
		return m.selectFile(s, lo.Clamp(s.FileIndex+delta, 0, len(s.Files)-1))
	}
}

func (m *Machine) selectListEntry(s State) (State, tea.Cmd) {
	if s.Level != LevelList || s.ListIndex < 0 || s.ListIndex >= s.ListLen() {
		return s, nil
	}

	var t resolver.Target
	if s.Mode == ModeCommit {
		t = resolver.Commit(s.Commits[s.ListIndex].Hash)
	} else {
		t = resolver.Branch(s.Branches[s.ListIndex].Name)
	}

	s.Level = LevelFiles
	s.Focus = PanelFiles
	s.Target = t
	s.Files = nil
	s.FileIndex = 0
	s.Scroll = 0
	s.ChunkIndex = -1
	s.Search = search.Session{}
	s.LoadingFiles = true
	s.Err = nil
	s.lastSelected = ""
	s.inflight = nil
	return s, m.listFilesCmd(t)
}

// selectFile moves the file cursor and starts a detail load unless the file
// is already loaded or has a load in flight.
func (m *Machine) selectFile(s State, index int) (State, tea.Cmd) {
	if s.Level != LevelFiles || index < 0 || index >= len(s.Files) {
		return s, nil
	}

	f := s.Files[index]
	if f.Path != s.lastSelected {
		s.Search = search.Session{}
	}
	s.FileIndex = index
	s.lastSelected = f.Path
	s.ChunkIndex = -1

	if f.Loaded {
		s.Scroll = max(0, f.FirstChangeLine-m.opts.ContextLines)
		s.Search = rerunSearch(s.Search, f.Content)
		return s, nil
	}

	s.Scroll = 0
	s.Search = rerunSearch(s.Search, "")

	key := loadKey(s.Target, f.Path)
	if s.isInflight(key) {
		return s, nil
	}
	s = s.withInflight(key)
	return s, m.loadDetailsCmd(f, s.Target)
}

func (m *Machine) focus(s State, p Panel) State {
	if p == PanelDiff {
		if _, ok := s.SelectedFile(); !ok {
			return s
		}
	}
	s.Focus = p
	return s
}

// refresh re-lists the current level. Automatic refreshes only apply to the
// working tree.
func (m *Machine) refresh(s State, auto bool) (State, tea.Cmd) {
	if auto && s.Mode != ModeDirty {
		return s, nil
	}

	s.Err = nil
	if s.Level == LevelList {
		s.LoadingList = true
		return s, m.listEntriesCmd(s.Mode)
	}
	s.LoadingFiles = true
	return s, m.listFilesCmd(s.Target)
}

// =============================================================================
// VIEWPORT
// =============================================================================

func (m *Machine) scrollBy(s State, delta int) State {
	s.Scroll = lo.Clamp(s.Scroll+delta, 0, search.MaxScroll(s.ViewportHeight, s.LineCount()))
	return s
}

func (m *Machine) resize(s State, height int) State {
	if height < 0 {
		height = 0
	}
	s.ViewportHeight = height
	if f, ok := s.SelectedFile(); ok && f.Loaded {
		s.Scroll = lo.Clamp(s.Scroll, 0, search.MaxScroll(height, s.LineCount()))
	}
	return s
}

// =============================================================================
// CHUNKS AND SEARCH
// =============================================================================

func (m *Machine) jumpChunk(s State, forward bool) State {
	chunks := s.Chunks()
	if len(chunks) == 0 {
		return s
	}

	if forward {
		s.ChunkIndex = diff.NextChunk(s.ChunkIndex, len(chunks))
	} else {
		s.ChunkIndex = diff.PrevChunk(s.ChunkIndex, len(chunks))
	}
	s.Scroll = search.ScrollTo(chunks[s.ChunkIndex], m.opts.ContextLines, s.ViewportHeight, s.LineCount())
	return s
}

func (m *Machine) startSearch(s State, query string) State {
	f, ok := s.SelectedFile()
	if !ok || query == "" {
		s.Search = search.Session{}
		return s
	}
	return m.jumpMatch(s, search.NewSession(f.Content, query))
}

func (m *Machine) jumpMatch(s State, session search.Session) State {
	s.Search = session
	if offset, ok := session.ScrollTarget(m.opts.ContextLines, s.ViewportHeight, s.LineCount()); ok {
		s.Scroll = offset
	}
	return s
}

// rerunSearch applies an active query to refreshed content of the same file.
func rerunSearch(prev search.Session, content string) search.Session {
	if !prev.Active() {
		return search.Session{}
	}
	return search.NewSession(content, prev.Query)
}

// =============================================================================
// RESULTS
// =============================================================================

func (m *Machine) listLoaded(s State, msg ListLoadedMsg) (State, tea.Cmd) {
	if msg.Mode != s.Mode || !s.LoadingList {
		log.Printf("LOAD_DISCARDED | kind=list mode=%s current=%s", msg.Mode, s.Mode)
		return s, nil
	}

	s.LoadingList = false
	s.Commits = msg.Commits
	s.Branches = msg.Branches
	if msg.Err != nil && s.Level == LevelList {
		s.Err = msg.Err
	}

	// Keep the cursor on the opened target when the list arrives late.
	if s.Level == LevelFiles && s.Target.Ref != "" {
		if i := s.entryIndex(s.Target.Ref); i >= 0 {
			s.ListIndex = i
		}
	}
	if n := s.ListLen(); n > 0 {
		s.ListIndex = lo.Clamp(s.ListIndex, 0, n-1)
	} else {
		s.ListIndex = 0
	}
	return s, nil
}

func (m *Machine) filesLoaded(s State, msg FilesLoadedMsg) (State, tea.Cmd) {
	if s.Level != LevelFiles || msg.Target != s.Target || !s.LoadingFiles {
		log.Printf("LOAD_DISCARDED | kind=files target=%s current=%s", msg.Target, s.Target)
		return s, nil
	}

	s.LoadingFiles = false
	s.Err = msg.Err
	s.Files = msg.Files
	s.Scroll = 0
	s.ChunkIndex = -1
	if len(s.Files) == 0 {
		s.FileIndex = 0
		s.lastSelected = ""
		s.Search = search.Session{}
		if s.Focus == PanelDiff {
			s.Focus = PanelFiles
		}
		return s, nil
	}

	index := 0
	if i := indexOfPath(s.Files, s.lastSelected); i >= 0 {
		index = i
	}
	return m.selectFile(s, index)
}

// detailsLoaded applies a detail load if its (target, path) still matches the
// selection. Otherwise the result is dropped; that is the only cancellation.
func (m *Machine) detailsLoaded(s State, msg DetailsLoadedMsg) State {
	key := loadKey(msg.Target, msg.Path)
	if msg.Target != s.Target || s.Level != LevelFiles {
		log.Printf("LOAD_DISCARDED | kind=details path=%s target=%s current=%s", msg.Path, msg.Target, s.Target)
		return s
	}
	s = s.withoutInflight(key)

	index := indexOfPath(s.Files, msg.Path)
	if msg.Path != s.lastSelected || index < 0 {
		log.Printf("LOAD_DISCARDED | kind=details path=%s selected=%s", msg.Path, s.lastSelected)
		return s
	}

	f := msg.File
	f.Loaded = true
	if msg.Err != nil && f.LoadErr == nil {
		f.LoadErr = msg.Err
	}
	files := slices.Clone(s.Files)
	files[index] = f
	s.Files = files
	s.FileIndex = index

	s.Scroll = max(0, f.FirstChangeLine-m.opts.ContextLines)
	s.ChunkIndex = -1
	s.Search = rerunSearch(s.Search, f.Content)
	return s
}

func (s State) entryIndex(ref string) int {
	switch s.Mode {
	case ModeCommit:
		_, i, ok := lo.FindIndexOf(s.Commits, func(c git.Commit) bool { return c.Hash == ref })
		if ok {
			return i
		}
	case ModeBranch:
		_, i, ok := lo.FindIndexOf(s.Branches, func(b git.Branch) bool { return b.Name == ref })
		if ok {
			return i
		}
	}
	return -1
}

func indexOfPath(files []resolver.FileChange, path string) int {
	if path == "" {
		return -1
	}
	_, i, ok := lo.FindIndexOf(files, func(f resolver.FileChange) bool { return f.Path == path })
	if !ok {
		return -1
	}
	return i
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m *Machine) listEntriesCmd(mode Mode) tea.Cmd {
	return func() tea.Msg {
		switch mode {
		case ModeCommit:
			commits, err := m.r.Commits(m.ctx, m.opts.CommitLimit)
			return ListLoadedMsg{Mode: mode, Commits: commits, Err: err}
		case ModeBranch:
			branches, err := m.r.Branches(m.ctx)
			return ListLoadedMsg{Mode: mode, Branches: branches, Err: err}
		}
		return ListLoadedMsg{Mode: mode}
	}
}

func (m *Machine) listFilesCmd(t resolver.Target) tea.Cmd {
	return func() tea.Msg {
		files, err := m.r.ListFiles(m.ctx, t)
		return FilesLoadedMsg{Target: t, Files: files, Err: err}
	}
}

func (m *Machine) loadDetailsCmd(f resolver.FileChange, t resolver.Target) tea.Cmd {
	return func() tea.Msg {
		loaded, err := m.r.LoadDetails(m.ctx, f, t)
		return DetailsLoadedMsg{Target: t, Path: f.Path, File: loaded, Err: err}
	}
}
