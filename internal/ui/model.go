// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"log"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/diffreview/internal/highlight"
	"github.com/jeranaias/diffreview/internal/nav"
	"github.com/jeranaias/diffreview/internal/ui/styles"
)

// =============================================================================
// LAYOUT
// =============================================================================

const (
	headerHeight    = 1
	statusBarHeight = 1
	panelChrome     = 3 // Top border, title row, bottom border

	minFilesWidth = 24
	maxFilesWidth = 48
)

// =============================================================================
// MODEL
// =============================================================================

// Options configures a Model.
type Options struct {
	// Repo is the repository name shown in the header.
	Repo string

	// Start is the first navigation message, such as an OpenTargetMsg for a
	// target given on the command line. Nil starts on the working tree.
	Start tea.Msg

	// ViewportHeight is the diff height assumed until the terminal reports
	// its size.
	ViewportHeight int

	HideLineNumbers bool
}

// Model is the Bubble Tea model for the review interface. All navigation
// state lives in the nav.State snapshot; the model only adds presentation
// state (size, search prompt, spinner).
type Model struct {
	machine     *nav.Machine
	state       nav.State
	startCmd    tea.Cmd
	highlighter *highlight.Highlighter

	theme   *styles.Theme
	keys    KeyMap
	spinner spinner.Model

	// Search prompt
	searchInput textinput.Model
	searching   bool

	// Dimensions
	width  int
	height int

	repo        string
	lineNumbers bool
	cache       *renderCache
}

// renderCache holds the highlighted lines of the last rendered file so that
// scrolling does not re-run the lexer.
type renderCache struct {
	key     string
	content string
	lines   [][]highlight.Token
}

// New creates the review model. hl may be nil for uncoloured content.
func New(machine *nav.Machine, hl *highlight.Highlighter, opts Options) Model {
	theme := styles.NewTheme()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Loading

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "search"
	ti.CharLimit = 256
	ti.Cursor.SetMode(cursor.CursorStatic)

	var state nav.State
	var cmd tea.Cmd
	if opts.Start != nil {
		state, cmd = machine.Update(nav.NewState(opts.ViewportHeight), opts.Start)
	} else {
		state, cmd = machine.Start(opts.ViewportHeight)
	}

	return Model{
		machine:     machine,
		state:       state,
		startCmd:    cmd,
		highlighter: hl,
		theme:       theme,
		keys:        DefaultKeyMap(),
		spinner:     sp,
		searchInput: ti,
		repo:        opts.Repo,
		lineNumbers: !opts.HideLineNumbers,
		cache:       &renderCache{},
	}
}

// State returns the current navigation snapshot.
func (m Model) State() nav.State {
	return m.state
}

// Init starts the initial load and the loading spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.startCmd, m.spinner.Tick)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles terminal events and forwards everything else, including
// retrieval results and watcher refreshes, to the navigation machine.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.dispatch(msg)
}

// dispatch applies a navigation message to the machine.
func (m Model) dispatch(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.state, cmd = m.machine.Update(m.state, msg)
	return m, cmd
}

// handleResize recomputes the diff viewport height.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.searchInput.Width = max(10, msg.Width/3)
	log.Printf("RESIZE | width=%d height=%d viewport=%d", m.width, m.height, m.viewportHeight())
	return m.dispatch(nav.ResizeMsg{Height: m.viewportHeight()})
}

// viewportHeight is the number of content lines inside a panel.
func (m Model) viewportHeight() int {
	return max(0, m.height-headerHeight-statusBarHeight-panelChrome)
}

// filesWidth is the outer width of the file list panel.
func (m Model) filesWidth() int {
	w := m.width / 3
	if w < minFilesWidth {
		w = minFilesWidth
	}
	if w > maxFilesWidth {
		w = maxFilesWidth
	}
	if w > m.width/2 {
		w = m.width / 2
	}
	return w
}

// handleKey maps key presses to navigation messages.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKey(msg)
	}

	s := m.state
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.CycleMode):
		return m.dispatch(nav.CycleModeMsg{})

	case key.Matches(msg, m.keys.Up):
		return m.dispatch(nav.MoveCursorMsg{Delta: -1})

	case key.Matches(msg, m.keys.Down):
		return m.dispatch(nav.MoveCursorMsg{Delta: 1})

	case key.Matches(msg, m.keys.PageUp):
		return m.page(-1)

	case key.Matches(msg, m.keys.PageDown):
		return m.page(1)

	case key.Matches(msg, m.keys.Enter):
		if s.Level == nav.LevelList {
			return m.dispatch(nav.SelectListEntryMsg{})
		}
		return m.dispatch(nav.FocusMsg{Panel: nav.PanelDiff})

	case key.Matches(msg, m.keys.Right):
		return m.dispatch(nav.FocusMsg{Panel: nav.PanelDiff})

	case key.Matches(msg, m.keys.Left):
		return m.dispatch(nav.FocusMsg{Panel: nav.PanelFiles})

	case key.Matches(msg, m.keys.Back):
		return m.dispatch(nav.BackMsg{})

	case key.Matches(msg, m.keys.NextChunk):
		return m.dispatch(nav.NextChunkMsg{})

	case key.Matches(msg, m.keys.PrevChunk):
		return m.dispatch(nav.PrevChunkMsg{})

	case key.Matches(msg, m.keys.Search):
		if _, ok := s.SelectedFile(); !ok {
			return m, nil
		}
		return m.enterSearchMode()

	case key.Matches(msg, m.keys.ClearSearch):
		return m.dispatch(nav.ClearSearchMsg{})

	case key.Matches(msg, m.keys.NextMatch):
		return m.dispatch(nav.NextMatchMsg{})

	case key.Matches(msg, m.keys.PrevMatch):
		return m.dispatch(nav.PrevMatchMsg{})

	case key.Matches(msg, m.keys.Refresh):
		return m.dispatch(nav.RefreshMsg{})
	}

	return m, nil
}

// page scrolls the diff, or moves the list cursor, by one viewport.
func (m Model) page(dir int) (tea.Model, tea.Cmd) {
	step := max(1, m.state.ViewportHeight)
	if m.state.Focus == nav.PanelDiff {
		return m.dispatch(nav.ScrollMsg{Delta: dir * step})
	}
	return m.dispatch(nav.MoveCursorMsg{Delta: dir * step})
}

// =============================================================================
// SEARCH PROMPT
// =============================================================================

func (m Model) enterSearchMode() (tea.Model, tea.Cmd) {
	m.searching = true
	m.searchInput.SetValue(m.state.Search.Query)
	m.searchInput.CursorEnd()
	return m, m.searchInput.Focus()
}

func (m Model) exitSearchMode() Model {
	m.searching = false
	m.searchInput.Blur()
	return m
}

// handleSearchKey edits the query. Enter runs it, Esc abandons the prompt
// without touching the active search.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEsc:
		return m.exitSearchMode(), nil

	case tea.KeyEnter:
		query := m.searchInput.Value()
		m = m.exitSearchMode()
		if query == "" {
			return m.dispatch(nav.ClearSearchMsg{})
		}
		log.Printf("SEARCH | query_len=%d", len(query))
		return m.dispatch(nav.SearchMsg{Query: query})
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}
