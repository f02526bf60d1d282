// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"sort"

	"github.com/hashicorp/go-set/v2"
)

// =============================================================================
// CHANGED POSITIONS
// =============================================================================

// ChangedPositions returns the 0-indexed positions, in new-file coordinates,
// touched by a unified diff.
//
// Additions record the current position and advance it. Deletions record the
// current position without advancing: a removal is anchored at the line
// right after the last unchanged line. Context lines advance silently.
func ChangedPositions(text string) *set.Set[int] {
	changed := set.New[int](0)
	current := 0

	scan(text, func(class lineClass, _ string, h *HunkHeader) {
		switch class {
		case classHeader:
			if h != nil {
				current = max(h.NewStart-1, 0)
			}
		case classAdded:
			changed.Insert(current)
			current++
		case classRemoved:
			changed.Insert(current)
		case classContext:
			current++
		}
	})

	return changed
}

// AllPositions returns the set {0..n-1}.
func AllPositions(n int) *set.Set[int] {
	all := set.New[int](n)
	for i := 0; i < n; i++ {
		all.Insert(i)
	}
	return all
}

// SortedPositions returns the members of a position set in ascending order.
func SortedPositions(positions *set.Set[int]) []int {
	if positions == nil {
		return []int{}
	}
	sorted := positions.Slice()
	sort.Ints(sorted)
	return sorted
}

// =============================================================================
// CHUNKS
// =============================================================================

// Chunks groups changed positions into maximal runs of contiguous lines and
// returns the start of each run in ascending order.
func Chunks(positions *set.Set[int]) []int {
	sorted := SortedPositions(positions)
	starts := make([]int, 0)
	for i, pos := range sorted {
		if i == 0 || pos-sorted[i-1] > 1 {
			starts = append(starts, pos)
		}
	}
	return starts
}

// NextChunk returns the chunk index after current, wrapping to the first
// chunk. An index below zero means "not on a chunk yet".
func NextChunk(current, count int) int {
	if count == 0 {
		return current
	}
	if current < 0 || current >= count-1 {
		return 0
	}
	return current + 1
}

// PrevChunk returns the chunk index before current, wrapping to the last chunk.
func PrevChunk(current, count int) int {
	if count == 0 {
		return current
	}
	if current <= 0 {
		return count - 1
	}
	return current - 1
}
