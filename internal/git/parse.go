// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package git

import (
	"strconv"
	"strings"
)

// =============================================================================
// TYPES
// =============================================================================

// StatusEntry is one line of a status or name-status listing.
// X and Y are the two porcelain status columns; name-status output only
// fills X and leaves Y as a space.
type StatusEntry struct {
	X       byte
	Y       byte
	Path    string
	OldPath string // Set for renames and copies
}

// IsDir reports whether the entry names a directory (untracked directory
// collapsed by git status).
func (e StatusEntry) IsDir() bool {
	return strings.HasSuffix(e.Path, "/")
}

// Commit is one entry of the commit log.
type Commit struct {
	Hash         string `json:"hash"`
	ShortHash    string `json:"short_hash"`
	Author       string `json:"author"`
	RelativeDate string `json:"relative_date"`
	Subject      string `json:"subject"`
}

// Branch is one local branch.
type Branch struct {
	Name         string `json:"name"`
	Current      bool   `json:"current"`
	ShortHash    string `json:"short_hash"`
	RelativeDate string `json:"relative_date"`
	Subject      string `json:"subject"`
}

// =============================================================================
// PARSERS
// =============================================================================

// ParseStatus parses `git status --porcelain` (v1) output.
func ParseStatus(out string) []StatusEntry {
	var entries []StatusEntry
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		entry := StatusEntry{X: line[0], Y: line[1]}
		rest := line[3:]

		if (entry.X == 'R' || entry.X == 'C' || entry.Y == 'R' || entry.Y == 'C') && strings.Contains(rest, " -> ") {
			parts := strings.SplitN(rest, " -> ", 2)
			entry.OldPath = unquotePath(parts[0])
			entry.Path = unquotePath(parts[1])
		} else {
			entry.Path = unquotePath(rest)
		}
		entries = append(entries, entry)
	}
	return entries
}

// ParseNameStatus parses `git diff --name-status` output.
func ParseNameStatus(out string) []StatusEntry {
	var entries []StatusEntry
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(line, "\t")
		if len(fields) < 2 || fields[0] == "" {
			continue
		}
		entry := StatusEntry{X: fields[0][0], Y: ' '}
		if (entry.X == 'R' || entry.X == 'C') && len(fields) >= 3 {
			entry.OldPath = unquotePath(fields[1])
			entry.Path = unquotePath(fields[2])
		} else {
			entry.Path = unquotePath(fields[1])
		}
		entries = append(entries, entry)
	}
	return entries
}

// ParseLog parses log output produced with the tab separated format used by Log.
func ParseLog(out string) []Commit {
	var commits []Commit
	for _, line := range strings.Split(out, "\n") {
		fields := strings.SplitN(line, "\t", 5)
		if len(fields) < 5 {
			continue
		}
		commits = append(commits, Commit{
			Hash:         fields[0],
			ShortHash:    fields[1],
			Author:       fields[2],
			RelativeDate: fields[3],
			Subject:      fields[4],
		})
	}
	return commits
}

// ParseBranches parses branch output produced with the format used by Branches.
// Detached HEAD pseudo-entries are skipped.
func ParseBranches(out string) []Branch {
	var branches []Branch
	for _, line := range strings.Split(out, "\n") {
		fields := strings.SplitN(line, "\t", 5)
		if len(fields) < 5 || fields[1] == "" || strings.HasPrefix(fields[1], "(") {
			continue
		}
		branches = append(branches, Branch{
			Current:      strings.TrimSpace(fields[0]) == "*",
			Name:         fields[1],
			ShortHash:    fields[2],
			RelativeDate: fields[3],
			Subject:      fields[4],
		})
	}
	return branches
}

// unquotePath undoes git's C-style quoting of unusual path names.
func unquotePath(p string) string {
	if len(p) >= 2 && p[0] == '"' && p[len(p)-1] == '"' {
		if s, err := strconv.Unquote(p); err == nil {
			return s
		}
	}
	return p
}
