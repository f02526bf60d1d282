// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header       lipgloss.Style
	HeaderBrand  lipgloss.Style
	ModeActive   lipgloss.Style
	ModeInactive lipgloss.Style
	HeaderTarget lipgloss.Style

	// ==========================================================================
	// PANEL STYLES
	// ==========================================================================

	Panel        lipgloss.Style
	PanelFocused lipgloss.Style
	PanelTitle   lipgloss.Style

	// ==========================================================================
	// LIST STYLES (files, commits, branches)
	// ==========================================================================

	ListItem         lipgloss.Style
	ListItemSelected lipgloss.Style
	ListMeta         lipgloss.Style
	Hash             lipgloss.Style
	CurrentBranch    lipgloss.Style

	StatusAdded     lipgloss.Style
	StatusModified  lipgloss.Style
	StatusDeleted   lipgloss.Style
	StatusRenamed   lipgloss.Style
	StatusUntracked lipgloss.Style

	Additions lipgloss.Style
	Deletions lipgloss.Style

	// ==========================================================================
	// CONTENT STYLES
	// ==========================================================================

	LineNumber   lipgloss.Style
	Gutter       lipgloss.Style
	GutterChange lipgloss.Style
	ChangedLine  lipgloss.Style
	DeletedLine  lipgloss.Style
	ChunkCursor  lipgloss.Style
	Match        lipgloss.Style
	CurrentMatch lipgloss.Style

	// ==========================================================================
	// STATUS BAR AND MESSAGES
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	SearchPrompt lipgloss.Style
	Loading      lipgloss.Style
	Empty        lipgloss.Style
	ErrorText    lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.ModeActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Purple).
		Padding(0, 1)

	t.ModeInactive = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)

	t.HeaderTarget = lipgloss.NewStyle().
		Foreground(Amber)

	// Panels
	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay)

	t.PanelFocused = t.Panel.Copy().
		BorderForeground(Purple)

	t.PanelTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	// Lists
	t.ListItem = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.ListItemSelected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SelectionBg).
		Bold(true)

	t.ListMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Hash = lipgloss.NewStyle().
		Foreground(Cyan)

	t.CurrentBranch = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.StatusAdded = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.StatusModified = lipgloss.NewStyle().Foreground(Sky).Bold(true)
	t.StatusDeleted = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.StatusRenamed = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.StatusUntracked = lipgloss.NewStyle().Foreground(TextMuted).Bold(true)

	t.Additions = lipgloss.NewStyle().Foreground(Emerald)
	t.Deletions = lipgloss.NewStyle().Foreground(Rose)

	// Content
	t.LineNumber = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Gutter = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.GutterChange = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.ChangedLine = lipgloss.NewStyle().
		Background(ChangedLineBg)

	t.DeletedLine = lipgloss.NewStyle().
		Background(DeletedLineBg)

	t.ChunkCursor = lipgloss.NewStyle().
		Background(ChunkCursorBg)

	t.Match = lipgloss.NewStyle().
		Background(MatchBg)

	t.CurrentMatch = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(CurrentMatchBg).
		Bold(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.SearchPrompt = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.Loading = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)

	t.Empty = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.ErrorText = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)
}

// StatusStyle returns the style for a one-letter file status code
// (A, M, D, R or ?).
func (t *Theme) StatusStyle(code string) lipgloss.Style {
	switch code {
	case "A":
		return t.StatusAdded
	case "D":
		return t.StatusDeleted
	case "R":
		return t.StatusRenamed
	case "?":
		return t.StatusUntracked
	default:
		return t.StatusModified
	}
}
