// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package highlight turns file content into coloured token lines using chroma.
//
// Highlighting is decoration only. Whatever goes wrong (no lexer, tokeniser
// error, tokens that do not line up with the source) the result degrades to
// Plain, so line numbering and change markers are never affected.
package highlight
