// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"

	"github.com/jeranaias/diffreview/internal/diff"
	"github.com/jeranaias/diffreview/internal/git"
	"github.com/jeranaias/diffreview/internal/highlight"
	"github.com/jeranaias/diffreview/internal/nav"
	"github.com/jeranaias/diffreview/internal/resolver"
	"github.com/jeranaias/diffreview/internal/search"
	"github.com/jeranaias/diffreview/internal/ui/styles"
	"github.com/jeranaias/diffreview/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the header, the panels for the current level and the status
// bar.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	bodyHeight := max(panelChrome, m.height-headerHeight-statusBarHeight)

	var body string
	if m.state.Level == nav.LevelList {
		body = m.renderPicker(m.width, bodyHeight)
	} else {
		fw := m.filesWidth()
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderFiles(fw, bodyHeight),
			m.renderDiff(m.width-fw, bodyHeight),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderStatusBar(),
	)
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	inner := max(0, m.width-2)

	tabs := lo.Map([]nav.Mode{nav.ModeDirty, nav.ModeCommit, nav.ModeBranch}, func(mode nav.Mode, _ int) string {
		if mode == m.state.Mode {
			return m.theme.ModeActive.Render(mode.String())
		}
		return m.theme.ModeInactive.Render(mode.String())
	})

	left := m.theme.HeaderBrand.Render("diffreview") + " " + strings.Join(tabs, "")
	if label := m.targetLabel(); label != "" {
		label = util.TruncateWidth(label, inner-lipgloss.Width(left)-2)
		left += "  " + m.theme.HeaderTarget.Render(label)
	}

	right := ""
	if m.repo != "" {
		right = m.theme.ListMeta.Render(m.repo)
	}
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		right, gap = "", max(0, inner-lipgloss.Width(left))
	}

	return m.theme.Header.Copy().
		Width(m.width).
		MaxHeight(headerHeight).
		Render(left + strings.Repeat(" ", gap) + right)
}

// targetLabel describes what the file list is comparing.
func (m Model) targetLabel() string {
	t := m.state.Target
	switch {
	case m.state.Level == nav.LevelList && m.state.Mode == nav.ModeCommit:
		return "pick a commit"
	case m.state.Level == nav.LevelList:
		return "pick a branch"
	case t.Kind == resolver.TargetCommit:
		return "commit " + shortRef(t.Ref)
	case t.Kind == resolver.TargetBranch:
		return "branch " + t.Ref + " vs HEAD"
	default:
		return "working tree"
	}
}

func shortRef(ref string) string {
	if len(ref) > 7 {
		return ref[:7]
	}
	return ref
}

// =============================================================================
// PANELS
// =============================================================================

// renderPanel frames a title row and content rows in a bordered box of the
// given outer size. Rows must already fit the inner width.
func (m Model) renderPanel(title string, rows []string, width, height int, focused bool) string {
	style := m.theme.Panel
	if focused {
		style = m.theme.PanelFocused
	}
	inner := max(0, width-2)
	contentRows := max(1, height-2)

	lines := make([]string, 0, contentRows)
	lines = append(lines, m.theme.PanelTitle.Render(util.TruncateWidth(title, inner)))
	for _, row := range rows {
		if len(lines) == contentRows {
			break
		}
		lines = append(lines, row)
	}

	return style.Copy().
		Width(inner).
		Height(contentRows).
		Render(strings.Join(lines, "\n"))
}

// window returns the first visible row so that cursor stays inside a
// viewport of height rows.
func window(cursor, count, height int) int {
	if height <= 0 || count <= height {
		return 0
	}
	return lo.Clamp(cursor-height+1, 0, count-height)
}

// statusMessage renders the placeholder for a level that has no rows to
// show, or "" when it does.
func (m Model) statusMessage(status nav.Status, what, empty string, err error, width int) string {
	switch status {
	case nav.StatusLoading:
		return m.spinner.View() + m.theme.Loading.Render(util.TruncateWidth(" Loading "+what+"...", width-2))
	case nav.StatusFailed:
		msg := "Error: could not load " + what
		if err != nil {
			msg = "Error: " + err.Error()
		}
		return m.theme.ErrorText.Render(util.TruncateWidth(msg, width))
	case nav.StatusEmpty:
		return m.theme.Empty.Render(util.TruncateWidth(empty, width))
	}
	return ""
}

// =============================================================================
// PICKER (commits and branches)
// =============================================================================

func (m Model) renderPicker(width, height int) string {
	s := m.state
	inner := max(0, width-2)
	rowsAvailable := max(0, height-panelChrome)

	what, title := "commits", "Commits"
	if s.Mode == nav.ModeBranch {
		what, title = "branches", "Branches"
	}
	if n := s.ListLen(); n > 0 {
		title = fmt.Sprintf("%s (%s)", title, humanize.Comma(int64(n)))
	}

	if msg := m.statusMessage(s.Status(), what, "No "+what, s.Err, inner); msg != "" {
		return m.renderPanel(title, []string{msg}, width, height, true)
	}

	start := window(s.ListIndex, s.ListLen(), rowsAvailable)
	end := min(s.ListLen(), start+rowsAvailable)
	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		selected := i == s.ListIndex
		if s.Mode == nav.ModeBranch {
			rows = append(rows, m.renderBranchRow(s.Branches[i], selected, inner))
		} else {
			rows = append(rows, m.renderCommitRow(s.Commits[i], selected, inner))
		}
	}
	return m.renderPanel(title, rows, width, height, true)
}

func (m Model) renderCommitRow(c git.Commit, selected bool, width int) string {
	meta := c.Author + ", " + c.RelativeDate
	subjectWidth := width - 2 - len(c.ShortHash) - 1 - util.StringWidth(meta) - 2
	if subjectWidth < 12 {
		meta = ""
		subjectWidth = width - 2 - len(c.ShortHash) - 1
	}
	subject := util.PadRight(c.Subject, max(0, subjectWidth))

	if selected {
		line := "> " + c.ShortHash + " " + subject
		if meta != "" {
			line += "  " + meta
		}
		return m.theme.ListItemSelected.Render(util.PadRight(line, width))
	}

	line := "  " + m.theme.Hash.Render(c.ShortHash) + " " + m.theme.ListItem.Render(subject)
	if meta != "" {
		line += "  " + m.theme.ListMeta.Render(meta)
	}
	return line
}

func (m Model) renderBranchRow(b git.Branch, selected bool, width int) string {
	marker := "  "
	if b.Current {
		marker = "* "
	}
	meta := b.ShortHash + " " + b.Subject
	if b.RelativeDate != "" {
		meta += " (" + b.RelativeDate + ")"
	}
	nameWidth := min(util.StringWidth(b.Name), max(0, width/2))
	name := util.PadRight(b.Name, nameWidth)
	meta = util.TruncateWidth(meta, max(0, width-2-nameWidth-2))

	if selected {
		return m.theme.ListItemSelected.Render(util.PadRight(marker+name+"  "+meta, width))
	}

	nameStyle := m.theme.ListItem
	if b.Current {
		nameStyle = m.theme.CurrentBranch
	}
	return marker + nameStyle.Render(name) + "  " + m.theme.ListMeta.Render(meta)
}

// =============================================================================
// FILE LIST
// =============================================================================

func (m Model) renderFiles(width, height int) string {
	s := m.state
	inner := max(0, width-2)
	rowsAvailable := max(0, height-panelChrome)
	focused := s.Focus == nav.PanelFiles

	title := "Files"
	if n := len(s.Files); n > 0 {
		adds := lo.SumBy(s.Files, func(f resolver.FileChange) int { return f.Additions })
		dels := lo.SumBy(s.Files, func(f resolver.FileChange) int { return f.Deletions })
		title = english.Plural(n, "file", "")
		if adds+dels > 0 {
			title += fmt.Sprintf("  +%s -%s", humanize.Comma(int64(adds)), humanize.Comma(int64(dels)))
		}
	}

	empty := "No changes"
	if s.Target.Kind == resolver.TargetDirty {
		empty = "Working tree clean"
	}
	if msg := m.statusMessage(s.Status(), "files", empty, s.Err, inner); msg != "" {
		return m.renderPanel(title, []string{msg}, width, height, focused)
	}

	start := window(s.FileIndex, len(s.Files), rowsAvailable)
	end := min(len(s.Files), start+rowsAvailable)
	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, m.renderFileRow(s.Files[i], i == s.FileIndex, inner))
	}
	return m.renderPanel(title, rows, width, height, focused)
}

func (m Model) renderFileRow(f resolver.FileChange, selected bool, width int) string {
	code := f.Status.Code()

	stats := ""
	if f.Additions+f.Deletions > 0 {
		stats = fmt.Sprintf("+%d -%d", f.Additions, f.Deletions)
	}
	pathWidth := width - 2
	if stats != "" {
		pathWidth -= util.StringWidth(stats) + 1
	}
	if pathWidth < 8 {
		stats = ""
		pathWidth = width - 2
	}
	path := util.PadRight(util.TruncateWidth(f.Path, max(0, pathWidth)), max(0, pathWidth))

	if selected {
		line := code + " " + path
		if stats != "" {
			line += " " + stats
		}
		return m.theme.ListItemSelected.Render(util.PadRight(line, width))
	}

	line := m.theme.StatusStyle(code).Render(code) + " " + m.theme.ListItem.Render(path)
	if stats != "" {
		line += " " + m.theme.Additions.Render(fmt.Sprintf("+%d", f.Additions)) +
			" " + m.theme.Deletions.Render(fmt.Sprintf("-%d", f.Deletions))
	}
	return line
}

// =============================================================================
// DIFF CONTENT
// =============================================================================

func (m Model) renderDiff(width, height int) string {
	s := m.state
	inner := max(0, width-2)
	focused := s.Focus == nav.PanelDiff

	f, ok := s.SelectedFile()
	if !ok {
		return m.renderPanel("Diff", nil, width, height, focused)
	}

	title := f.Path
	if f.OldPath != "" {
		title = f.OldPath + " -> " + f.Path
	}

	switch s.DetailStatus() {
	case nav.StatusLoading:
		return m.renderPanel(title, []string{m.statusMessage(nav.StatusLoading, "diff", "", nil, inner)}, width, height, focused)
	case nav.StatusFailed:
		return m.renderPanel(title, []string{m.statusMessage(nav.StatusFailed, "diff", "", f.LoadErr, inner)}, width, height, focused)
	case nav.StatusEmpty:
		return m.renderPanel(title, []string{m.theme.Empty.Render("Empty file")}, width, height, focused)
	}

	if f.Binary {
		return m.renderPanel(title, []string{m.theme.Empty.Render("Binary file not shown")}, width, height, focused)
	}

	if n := f.LineCount(); n > 0 {
		title = fmt.Sprintf("%s  (%s lines)", title, humanize.Comma(int64(n)))
	}
	return m.renderPanel(title, m.renderContent(f, inner, max(0, height-panelChrome)), width, height, focused)
}

// lineMarker classifies one content line for the gutter and background.
func (m Model) lineMarker(f resolver.FileChange, i, cursorLine int) (string, lipgloss.Style) {
	switch {
	case i == cursorLine:
		return styles.ChunkMarker, m.theme.ChunkCursor
	case f.Status == resolver.StatusDeleted:
		return styles.DeletedMarker, m.theme.DeletedLine
	case f.IsChanged(i):
		return styles.ChangedMarker, m.theme.ChangedLine
	default:
		return styles.PlainMarker, lipgloss.NewStyle()
	}
}

// renderContent renders the visible window of the file: a line number, a
// change marker, then the highlighted text with search matches overlaid.
func (m Model) renderContent(f resolver.FileChange, width, height int) []string {
	s := m.state
	raw, tokens := m.highlighted(f)
	if len(raw) == 0 || height == 0 {
		return nil
	}

	numWidth := len(fmt.Sprint(len(raw)))
	if !m.lineNumbers {
		numWidth = 0
	}
	textWidth := max(0, width-numWidth-3)

	cursorLine := -1
	if chunks := f.Chunks(); s.ChunkIndex >= 0 && s.ChunkIndex < len(chunks) {
		cursorLine = chunks[s.ChunkIndex]
	}

	var ranges map[int][]search.Match
	current, hasCurrent := search.Match{}, false
	if s.Search.Active() {
		ranges = s.Search.LineRanges()
		current, hasCurrent = s.Search.CurrentMatch()
	}

	start := max(0, s.Scroll)
	end := min(len(raw), start+height)
	rows := make([]string, 0, max(0, end-start))
	for i := start; i < end; i++ {
		marker, base := m.lineMarker(f, i, cursorLine)

		gutter := " "
		if m.lineNumbers {
			gutter = m.theme.LineNumber.Render(fmt.Sprintf("%*d", numWidth, i+1)) + " "
		}
		if marker != styles.PlainMarker {
			gutter += m.theme.GutterChange.Render(marker)
		} else {
			gutter += m.theme.Gutter.Render(marker)
		}

		var cur *search.Match
		if hasCurrent && current.Line == i {
			cur = &current
		}
		rows = append(rows, gutter+" "+m.renderCode(raw[i], tokens[i], ranges[i], cur, base, textWidth))
	}
	return rows
}

// highlighted returns the raw and tokenized lines of f, reusing the last
// result while the same content is on screen.
func (m Model) highlighted(f resolver.FileChange) ([]string, [][]highlight.Token) {
	key := m.state.Target.String() + "\x00" + f.Path
	if m.cache != nil && m.cache.key == key && m.cache.content == f.Content && m.cache.lines != nil {
		return diff.SplitLines(f.Content), m.cache.lines
	}

	var lines [][]highlight.Token
	if m.highlighter != nil {
		lines = m.highlighter.Highlight(f.Content, f.Path)
	} else {
		lines = highlight.Plain(f.Content)
	}
	if m.cache != nil {
		m.cache.key, m.cache.content, m.cache.lines = key, f.Content, lines
	}
	return diff.SplitLines(f.Content), lines
}

// Match overlay levels, in increasing precedence.
const (
	overlayNone uint8 = iota
	overlayMatch
	overlayCurrent
)

// renderCode styles one line. Tokens give the foreground; matches and the
// line background are layered on top. The result is exactly width columns.
func (m Model) renderCode(line string, tokens []highlight.Token, matches []search.Match, current *search.Match, base lipgloss.Style, width int) string {
	overlay := make([]uint8, len(line))
	mark := func(mt search.Match, level uint8) {
		for i := max(0, mt.Start); i < min(len(line), mt.End()); i++ {
			overlay[i] = max(overlay[i], level)
		}
	}
	for _, mt := range matches {
		mark(mt, overlayMatch)
	}
	if current != nil {
		mark(*current, overlayCurrent)
	}

	var sb strings.Builder
	col := 0
	off := 0
	for _, tok := range tokens {
		tokEnd := min(len(line), off+len(tok.Text))
		for off < tokEnd && col < width {
			end := off + 1
			for end < tokEnd && overlay[end] == overlay[off] {
				end++
			}

			text := expandSegment(line, off, end)
			w := util.StringWidth(text)
			if col+w > width {
				text = util.PadRight(text, width-col)
				w = width - col
			}
			sb.WriteString(m.tokenStyle(tok, overlay[off], base).Render(text))
			col += w
			off = end
		}
		off = tokEnd
	}

	if col < width {
		sb.WriteString(base.Render(strings.Repeat(" ", width-col)))
	}
	return sb.String()
}

func (m Model) tokenStyle(tok highlight.Token, overlay uint8, base lipgloss.Style) lipgloss.Style {
	if overlay == overlayCurrent {
		return m.theme.CurrentMatch
	}

	st := lipgloss.NewStyle()
	if tok.Color != "" {
		st = st.Foreground(lipgloss.Color(tok.Color))
	}
	if tok.Bold {
		st = st.Bold(true)
	}
	if overlay == overlayMatch {
		return st.Inherit(m.theme.Match)
	}
	return st.Inherit(base)
}

// expandSegment returns line[start:end] with tabs expanded relative to the
// start of the line.
func expandSegment(line string, start, end int) string {
	seg := line[start:end]
	if !strings.Contains(seg, "\t") {
		return seg
	}
	var sb strings.Builder
	col := util.ColumnAt(line, start)
	for _, r := range seg {
		if r == '\t' {
			n := util.TabWidth - col%util.TabWidth
			sb.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		sb.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return sb.String()
}

// =============================================================================
// STATUS BAR
// =============================================================================

func (m Model) renderStatusBar() string {
	inner := max(0, m.width-2)

	var left string
	if m.searching {
		left = m.searchInput.View()
	} else {
		hints := lo.Map(m.keys.ShortHelp(), func(b key.Binding, _ int) string {
			h := b.Help()
			return m.theme.ShortcutKey.Render(h.Key) + " " + m.theme.ShortcutDesc.Render(h.Desc)
		})
		left = strings.Join(hints, "  ")
	}

	right := strings.Join(m.statusInfo(), "  ")
	if lipgloss.Width(left)+lipgloss.Width(right)+1 > inner && !m.searching {
		left = ""
	}
	gap := max(1, inner-lipgloss.Width(left)-lipgloss.Width(right))

	return m.theme.StatusBar.Copy().
		Width(m.width).
		MaxHeight(statusBarHeight).
		Render(left + strings.Repeat(" ", gap) + right)
}

// statusInfo lists the position indicators shown on the right of the
// status bar.
func (m Model) statusInfo() []string {
	s := m.state
	var info []string

	if n := s.InflightCount(); n > 0 {
		info = append(info, m.spinner.View()+m.theme.Loading.Render("loading "+english.Plural(n, "file", "")))
	}

	if s.Search.Active() {
		if s.Search.Count() == 0 {
			info = append(info, m.theme.ErrorText.Render("no matches for "+s.Search.Query))
		} else {
			info = append(info, m.theme.SearchPrompt.Render(
				fmt.Sprintf("match %d/%d", s.Search.Current+1, s.Search.Count())))
		}
	}

	if f, ok := s.SelectedFile(); ok && f.Loaded && !f.Binary {
		if chunks := f.Chunks(); len(chunks) > 0 {
			if s.ChunkIndex >= 0 {
				info = append(info, fmt.Sprintf("chunk %d/%d", s.ChunkIndex+1, len(chunks)))
			} else {
				info = append(info, english.Plural(len(chunks), "chunk", ""))
			}
		}
	}

	if s.Level == nav.LevelFiles && len(s.Files) > 0 {
		info = append(info, fmt.Sprintf("%d/%d", s.FileIndex+1, len(s.Files)))
	}
	return info
}
