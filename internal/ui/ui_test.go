// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/go-set/v2"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/diffreview/internal/git"
	"github.com/jeranaias/diffreview/internal/highlight"
	"github.com/jeranaias/diffreview/internal/nav"
	"github.com/jeranaias/diffreview/internal/resolver"
	"github.com/jeranaias/diffreview/internal/search"
)

// =============================================================================
// FAKE RETRIEVER
// =============================================================================

type fakeRetriever struct {
	files    map[resolver.Target][]resolver.FileChange
	content  map[string]string // key: path
	commits  []git.Commit
	branches []git.Branch
	listErr  error

	listCalls int
}

func newFakeRetriever() *fakeRetriever {
	r := &fakeRetriever{
		files:   map[resolver.Target][]resolver.FileChange{},
		content: map[string]string{},
	}
	r.files[resolver.Dirty()] = []resolver.FileChange{
		{Path: "main.go", Status: resolver.StatusModified},
		{Path: "README.md", Status: resolver.StatusAdded},
	}
	r.content["main.go"] = "package main\n\nfunc main() {\n\tprintln(\"hello\")\n}\n"
	r.content["README.md"] = "# demo\nhello world\n"
	r.commits = []git.Commit{
		{Hash: "aaaaaaaaaaaa", ShortHash: "aaaaaaa", Author: "dev", RelativeDate: "2 days ago", Subject: "Add parser"},
		{Hash: "bbbbbbbbbbbb", ShortHash: "bbbbbbb", Author: "dev", RelativeDate: "3 days ago", Subject: "Initial commit"},
	}
	r.files[resolver.Commit("aaaaaaaaaaaa")] = []resolver.FileChange{
		{Path: "parser.go", Status: resolver.StatusAdded},
	}
	r.content["parser.go"] = "package parser\n"
	return r
}

func (f *fakeRetriever) ListFiles(ctx context.Context, t resolver.Target) ([]resolver.FileChange, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]resolver.FileChange(nil), f.files[t]...), nil
}

func (f *fakeRetriever) LoadDetails(ctx context.Context, fc resolver.FileChange, t resolver.Target) (resolver.FileChange, error) {
	fc.Content = f.content[fc.Path]
	fc.Diff = "@@ -1 +1 @@\n"
	fc.ChangedLines = set.From([]int{2, 3})
	fc.FirstChangeLine = 2
	fc.Additions = 2
	fc.Loaded = true
	return fc, nil
}

func (f *fakeRetriever) Commits(ctx context.Context, limit int) ([]git.Commit, error) {
	return f.commits, f.listErr
}

func (f *fakeRetriever) Branches(ctx context.Context) ([]git.Branch, error) {
	return f.branches, f.listErr
}

// =============================================================================
// HELPERS
// =============================================================================

// run resolves cmd into the messages it yields, dropping spinner ticks and
// quit requests.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch msg := msg.(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, run(c)...)
		}
		return out
	case nil, spinner.TickMsg, tea.QuitMsg:
		return nil
	}
	return []tea.Msg{msg}
}

// send applies msg and every follow-up message to m.
func send(m Model, msg tea.Msg) Model {
	next, cmd := m.Update(msg)
	m = next.(Model)
	for _, follow := range run(cmd) {
		m = send(m, follow)
	}
	return m
}

func keyPress(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func typeText(m Model, text string) Model {
	for _, r := range text {
		m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// newTestModel starts a model on r at 100x30 with all loads settled.
func newTestModel(t *testing.T, r *fakeRetriever, opts Options) Model {
	t.Helper()
	machine := nav.NewMachine(context.Background(), r, nav.Options{ContextLines: 1})
	m := New(machine, nil, opts)
	for _, msg := range run(m.startCmd) {
		m = send(m, msg)
	}
	return send(m, tea.WindowSizeMsg{Width: 100, Height: 30})
}

// =============================================================================
// MODEL TESTS
// =============================================================================

func TestModel_StartsOnWorkingTree(t *testing.T) {
	m := newTestModel(t, newFakeRetriever(), Options{Repo: "demo"})

	s := m.State()
	require.Equal(t, nav.ModeDirty, s.Mode)
	require.Len(t, s.Files, 2)
	require.Equal(t, "main.go", s.SelectedPath())
	require.Equal(t, nav.StatusReady, s.DetailStatus())

	view := m.View()
	require.Contains(t, view, "diffreview")
	require.Contains(t, view, "demo")
	require.Contains(t, view, "main.go")
	require.Contains(t, view, "README.md")
	require.Contains(t, view, "func main()")
}

func TestModel_ResizeSetsViewportHeight(t *testing.T) {
	m := newTestModel(t, newFakeRetriever(), Options{})
	require.Equal(t, 30-headerHeight-statusBarHeight-panelChrome, m.State().ViewportHeight)

	m = send(m, tea.WindowSizeMsg{Width: 80, Height: 4})
	require.Equal(t, 0, m.State().ViewportHeight)
}

func TestModel_ViewFitsTerminal(t *testing.T) {
	m := newTestModel(t, newFakeRetriever(), Options{Repo: "demo"})

	lines := strings.Split(m.View(), "\n")
	require.Len(t, lines, 30)
	for i, line := range lines {
		require.LessOrEqual(t, lipgloss.Width(line), 100, "line %d too wide", i)
	}
}

func TestModel_CursorSelectsNextFile(t *testing.T) {
	m := newTestModel(t, newFakeRetriever(), Options{})

	m = send(m, keyPress("j"))
	require.Equal(t, "README.md", m.State().SelectedPath())
	require.Contains(t, m.View(), "hello world")

	m = send(m, keyPress("k"))
	require.Equal(t, "main.go", m.State().SelectedPath())
}

func TestModel_FocusAndBack(t *testing.T) {
	m := newTestModel(t, newFakeRetriever(), Options{})

	m = send(m, keyPress("enter"))
	require.Equal(t, nav.PanelDiff, m.State().Focus)

	m = send(m, keyPress("esc"))
	require.Equal(t, nav.PanelFiles, m.State().Focus)

	// Esc at the top of Dirty mode does nothing.
	m = send(m, keyPress("esc"))
	require.Equal(t, nav.ModeDirty, m.State().Mode)
	require.Equal(t, nav.LevelFiles, m.State().Level)
}

func TestModel_CommitPickerFlow(t *testing.T) {
	m := newTestModel(t, newFakeRetriever(), Options{})

	m = send(m, keyPress("tab"))
	s := m.State()
	require.Equal(t, nav.ModeCommit, s.Mode)
	require.Equal(t, nav.LevelList, s.Level)
	require.Len(t, s.Commits, 2)

	view := m.View()
	require.Contains(t, view, "Commits (2)")
	require.Contains(t, view, "Add parser")
	require.Contains(t, view, "pick a commit")

	m = send(m, keyPress("enter"))
	s = m.State()
	require.Equal(t, nav.LevelFiles, s.Level)
	require.Equal(t, resolver.Commit("aaaaaaaaaaaa"), s.Target)
	require.Equal(t, "parser.go", s.SelectedPath())
	require.Contains(t, m.View(), "commit aaaaaaa")

	m = send(m, keyPress("esc"))
	require.Equal(t, nav.LevelList, m.State().Level)
}

func TestModel_StartOnTarget(t *testing.T) {
	m := newTestModel(t, newFakeRetriever(), Options{
		Start: nav.OpenTargetMsg{Target: resolver.Commit("aaaaaaaaaaaa")},
	})

	s := m.State()
	require.Equal(t, nav.ModeCommit, s.Mode)
	require.Equal(t, nav.LevelFiles, s.Level)
	require.Equal(t, "parser.go", s.SelectedPath())
}

func TestModel_Search(t *testing.T) {
	m := newTestModel(t, newFakeRetriever(), Options{})

	m = send(m, keyPress("/"))
	require.True(t, m.searching)

	// Keys go to the prompt while it is open.
	m = typeText(m, "main")
	require.Equal(t, "main.go", m.State().SelectedPath())

	m = send(m, keyPress("enter"))
	require.False(t, m.searching)
	s := m.State()
	require.Equal(t, "main", s.Search.Query)
	require.Equal(t, 2, s.Search.Count())
	require.Contains(t, m.View(), "match 1/2")

	m = send(m, keyPress("]"))
	require.Equal(t, 1, m.State().Search.Current)
	require.Contains(t, m.View(), "match 2/2")

	m = send(m, keyPress("ctrl+l"))
	require.False(t, m.State().Search.Active())
}

func TestModel_EscStepsBackWithActiveSearch(t *testing.T) {
	m := newTestModel(t, newFakeRetriever(), Options{})

	m = send(m, keyPress("/"))
	m = typeText(m, "main")
	m = send(m, keyPress("enter"))
	m = send(m, keyPress("l"))
	require.Equal(t, nav.PanelDiff, m.State().Focus)

	m = send(m, keyPress("esc"))
	s := m.State()
	require.Equal(t, nav.PanelFiles, s.Focus)
	require.True(t, s.Search.Active())
	require.Equal(t, "main", s.Search.Query)
}

func TestModel_SearchPromptEscKeepsSession(t *testing.T) {
	m := newTestModel(t, newFakeRetriever(), Options{})

	m = send(m, keyPress("/"))
	m = typeText(m, "hello")
	m = send(m, keyPress("enter"))
	require.Equal(t, 1, m.State().Search.Count())

	m = send(m, keyPress("/"))
	m = typeText(m, "zz")
	m = send(m, keyPress("esc"))
	require.False(t, m.searching)
	require.Equal(t, "hello", m.State().Search.Query)
}

func TestModel_NoMatchesShown(t *testing.T) {
	m := newTestModel(t, newFakeRetriever(), Options{})

	m = send(m, keyPress("/"))
	m = typeText(m, "absent")
	m = send(m, keyPress("enter"))
	require.True(t, m.State().Search.Active())
	require.Contains(t, m.View(), "no matches for absent")
}

func TestModel_ChunkJump(t *testing.T) {
	m := newTestModel(t, newFakeRetriever(), Options{})

	m = send(m, keyPress("n"))
	require.Equal(t, 0, m.State().ChunkIndex)
	require.Contains(t, m.View(), "chunk 1/1")
}

func TestModel_AutoRefreshFromWatcher(t *testing.T) {
	r := newFakeRetriever()
	m := newTestModel(t, r, Options{})
	before := r.listCalls

	r.files[resolver.Dirty()] = append(r.files[resolver.Dirty()], resolver.FileChange{Path: "new.go", Status: resolver.StatusUntracked})
	m = send(m, nav.RefreshMsg{Auto: true})

	require.Equal(t, before+1, r.listCalls)
	require.Len(t, m.State().Files, 3)
	require.Equal(t, "main.go", m.State().SelectedPath())
}

func TestModel_ListFailureShown(t *testing.T) {
	r := newFakeRetriever()
	r.listErr = errors.New("not a git repository")
	m := newTestModel(t, r, Options{})

	require.Equal(t, nav.StatusFailed, m.State().Status())
	require.Contains(t, m.View(), "Error: not a git repository")
}

func TestModel_EmptyWorkingTree(t *testing.T) {
	r := newFakeRetriever()
	r.files[resolver.Dirty()] = nil
	m := newTestModel(t, r, Options{})

	require.Equal(t, nav.StatusEmpty, m.State().Status())
	require.Contains(t, m.View(), "Working tree clean")
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, newFakeRetriever(), Options{})

	_, cmd := m.Update(keyPress("q"))
	require.NotNil(t, cmd)
	require.Equal(t, tea.Quit(), cmd())
}

// =============================================================================
// RENDERING TESTS
// =============================================================================

func TestRenderCode_ExactWidth(t *testing.T) {
	m := newTestModel(t, newFakeRetriever(), Options{})

	testCases := []struct {
		name    string
		line    string
		matches []search.Match
		width   int
	}{
		{"short", "abc", nil, 10},
		{"tabs", "\tx\ty", nil, 12},
		{"truncated", strings.Repeat("x", 40), nil, 10},
		{"wide", "日本語テキスト", nil, 5},
		{"match", "foo bar foo", []search.Match{{Start: 0, Length: 3}, {Start: 8, Length: 3}}, 20},
		{"empty", "", nil, 4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tokens := highlight.Plain(tc.line + "\n")
			var lineTokens []highlight.Token
			if len(tokens) > 0 {
				lineTokens = tokens[0]
			}
			got := m.renderCode(tc.line, lineTokens, tc.matches, nil, lipgloss.NewStyle(), tc.width)
			require.Equal(t, tc.width, lipgloss.Width(got))
		})
	}
}

func TestRenderCode_KeepsText(t *testing.T) {
	m := newTestModel(t, newFakeRetriever(), Options{})

	line := "a\tfoo foo"
	tokens := []highlight.Token{{Text: "a\t", Color: "#ff0000"}, {Text: "foo foo"}}
	current := search.Match{Start: 6, Length: 3}
	got := m.renderCode(line, tokens, []search.Match{{Start: 2, Length: 3}, current}, &current, lipgloss.NewStyle(), 20)

	require.Contains(t, got, "foo")
	require.Equal(t, 20, lipgloss.Width(got))
}

func TestExpandSegment(t *testing.T) {
	testCases := []struct {
		line       string
		start, end int
		expected   string
	}{
		{"abc", 0, 3, "abc"},
		{"\tx", 0, 2, "    x"},
		{"ab\tx", 2, 4, "  x"},
		{"ab\tx", 0, 2, "ab"},
	}

	for _, tc := range testCases {
		got := expandSegment(tc.line, tc.start, tc.end)
		require.Equal(t, tc.expected, got, fmt.Sprintf("expandSegment(%q, %d, %d)", tc.line, tc.start, tc.end))
	}
}

func TestWindow(t *testing.T) {
	testCases := []struct {
		cursor, count, height int
		expected              int
	}{
		{0, 5, 10, 0},
		{3, 20, 10, 0},
		{9, 20, 10, 0},
		{10, 20, 10, 1},
		{19, 20, 10, 10},
		{5, 20, 0, 0},
	}

	for _, tc := range testCases {
		require.Equal(t, tc.expected, window(tc.cursor, tc.count, tc.height),
			"window(%d, %d, %d)", tc.cursor, tc.count, tc.height)
	}
}

func TestDefaultKeyMap_ShortHelp(t *testing.T) {
	keys := DefaultKeyMap()
	for _, b := range keys.ShortHelp() {
		require.NotEmpty(t, b.Help().Key)
		require.NotEmpty(t, b.Help().Desc)
	}
}
