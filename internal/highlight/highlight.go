// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package highlight

import (
	"log"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/jeranaias/diffreview/internal/diff"
)

// DefaultTheme is the chroma style used when none is configured.
const DefaultTheme = "monokai"

// Token is a run of text with one colour.
type Token struct {
	Text  string
	Color string // "#rrggbb", or empty for the default foreground
	Bold  bool
}

// Highlighter colours file content by language.
type Highlighter struct {
	style *chroma.Style
}

// New creates a highlighter for a chroma style name. Unknown names fall back
// to chroma's default style.
func New(theme string) *Highlighter {
	if theme == "" {
		theme = DefaultTheme
	}
	style := chromaStyles.Get(theme)
	if style == nil {
		style = chromaStyles.Fallback
	}
	return &Highlighter{style: style}
}

// Theme returns the name of the active style.
func (h *Highlighter) Theme() string {
	return h.style.Name
}

// Highlight splits text into lines of coloured tokens. The lexer is chosen
// by path, then by content analysis. The result always has one entry per
// line of text, and each line's token texts concatenate to exactly that
// line; if highlighting cannot guarantee that, the plain rendering is
// returned instead.
func (h *Highlighter) Highlight(text, path string) [][]Token {
	lines := diff.SplitLines(text)
	if len(lines) == 0 {
		return [][]Token{}
	}

	lexer := lexers.Match(path)
	if lexer == nil {
		lexer = lexers.Analyse(text)
	}
	if lexer == nil {
		return Plain(text)
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		log.Printf("HIGHLIGHT_FAILED | path=%s error=%v", path, err)
		return Plain(text)
	}

	split := chroma.SplitTokensIntoLines(iterator.Tokens())
	out := make([][]Token, len(lines))
	for i, line := range lines {
		var tokens []Token
		if i < len(split) {
			tokens = h.convert(split[i])
		}
		if joined(tokens) != line {
			return Plain(text)
		}
		out[i] = tokens
	}
	return out
}

// convert maps chroma tokens to Tokens, dropping line terminators.
func (h *Highlighter) convert(line []chroma.Token) []Token {
	tokens := make([]Token, 0, len(line))
	for _, tok := range line {
		value := strings.TrimSuffix(tok.Value, "\n")
		if value == "" {
			continue
		}
		entry := h.style.Get(tok.Type)
		t := Token{Text: value, Bold: entry.Bold == chroma.Yes}
		if entry.Colour.IsSet() {
			t.Color = entry.Colour.String()
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// Plain returns text as one uncoloured token per line.
func Plain(text string) [][]Token {
	lines := diff.SplitLines(text)
	out := make([][]Token, len(lines))
	for i, line := range lines {
		if line == "" {
			continue
		}
		out[i] = []Token{{Text: line}}
	}
	return out
}

func joined(tokens []Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.Text)
	}
	return sb.String()
}
