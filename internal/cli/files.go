// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// files.go - Headless listing commands.
//
// Command: files [--commit <rev> | --branch <name>] [--stats] [--json]
// Short:   Print the files changed under a comparison target
//
// Command: commits [--limit N] [--json]
// Command: branches [--json]
// Short:   Print the entries the TUI offers in its commit and branch pickers
//
// Examples:
//   diffreview files                      Uncommitted changes
//   diffreview files --commit HEAD --stats
//   diffreview files --branch main --json
//   diffreview commits --limit 20

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/samber/lo"

	"github.com/jeranaias/diffreview/internal/git"
	"github.com/jeranaias/diffreview/internal/resolver"
	"github.com/jeranaias/diffreview/internal/util"
)

// Retriever is the subset of *resolver.Resolver the headless commands use.
type Retriever interface {
	ListFiles(ctx context.Context, t resolver.Target) ([]resolver.FileChange, error)
	LoadDetails(ctx context.Context, f resolver.FileChange, t resolver.Target) (resolver.FileChange, error)
	Commits(ctx context.Context, limit int) ([]git.Commit, error)
	Branches(ctx context.Context) ([]git.Branch, error)
}

// =============================================================================
// FILES
// =============================================================================

// HandleFiles prints the change set of the target named in args.
// With --stats each file's diff is loaded so additions, deletions and
// chunk counts can be reported; a file that fails to load is listed with
// its error instead of aborting the command.
func HandleFiles(ctx context.Context, w io.Writer, r Retriever, args Args) error {
	target, _ := args.Target()

	files, err := r.ListFiles(ctx, target)
	if err != nil {
		return NewCommandError("files", "list", "could not list changed files", err)
	}

	if args.Stats {
		for i, f := range files {
			// LoadDetails returns the file with LoadErr set on failure.
			files[i], _ = r.LoadDetails(ctx, f, target)
		}
	}

	data := FilesData{
		Target: target.String(),
		Files:  lo.Map(files, func(f resolver.FileChange, _ int) FileData { return toFileData(f) }),
	}
	data.Additions = lo.SumBy(data.Files, func(f FileData) int { return f.Additions })
	data.Deletions = lo.SumBy(data.Files, func(f FileData) int { return f.Deletions })

	if args.JSON {
		return NewJSONResponse("files", data).Print(w)
	}

	renderFiles(w, files, data, args.Stats)
	return nil
}

func toFileData(f resolver.FileChange) FileData {
	d := FileData{
		Path:      f.Path,
		OldPath:   f.OldPath,
		Status:    f.Status.String(),
		Additions: f.Additions,
		Deletions: f.Deletions,
		Binary:    f.Binary,
	}
	if f.Loaded && !f.Binary {
		d.Chunks = len(f.Chunks())
	}
	if f.LoadErr != nil {
		d.Error = f.LoadErr.Error()
	}
	return d
}

func renderFiles(w io.Writer, files []resolver.FileChange, data FilesData, stats bool) {
	fmt.Fprintln(w, RenderConditional(TitleStyle, "Changes: "+data.Target))

	if len(data.Files) == 0 {
		fmt.Fprintln(w, RenderConditional(DimStyle, "No changes"))
		return
	}

	width, _ := GetTerminalSize()
	for i, f := range data.Files {
		status := files[i].Status
		name := f.Path
		if f.OldPath != "" {
			name = f.OldPath + " -> " + f.Path
		}

		line := RenderConditional(StatusStyle(status), status.Code()) + " " + util.TruncateWidth(name, width-24)
		if stats {
			switch {
			case f.Error != "":
				line += "  " + RenderConditional(ErrorStyle, "error: "+f.Error)
			case f.Binary:
				line += "  " + RenderConditional(DimStyle, "binary")
			default:
				line += fmt.Sprintf("  %s %s  %s",
					RenderConditional(SuccessStyle, "+"+humanize.Comma(int64(f.Additions))),
					RenderConditional(ErrorStyle, "-"+humanize.Comma(int64(f.Deletions))),
					RenderConditional(DimStyle, english.Plural(f.Chunks, "chunk", "")))
			}
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w, RenderSeparator(40))
	summary := english.Plural(len(data.Files), "file", "") + " changed"
	if stats {
		summary += fmt.Sprintf(", %s(+), %s(-)",
			english.Plural(data.Additions, "insertion", ""),
			english.Plural(data.Deletions, "deletion", ""))
	}
	fmt.Fprintln(w, summary)
}

// =============================================================================
// COMMITS / BRANCHES
// =============================================================================

// HandleCommits prints up to limit commits, newest first.
func HandleCommits(ctx context.Context, w io.Writer, r Retriever, args Args, limit int) error {
	if args.Limit > 0 {
		limit = args.Limit
	}
	commits, err := r.Commits(ctx, limit)
	if err != nil {
		return NewCommandError("commits", "list", "could not read the commit log", err)
	}
	if commits == nil {
		commits = []git.Commit{}
	}

	if args.JSON {
		return NewJSONResponse("commits", commits).Print(w)
	}

	width, _ := GetTerminalSize()
	for _, c := range commits {
		prefix := fmt.Sprintf("%s %-14s ", RenderConditional(WarningStyle, c.ShortHash), c.RelativeDate)
		fmt.Fprintln(w, prefix+util.TruncateWidth(c.Subject, width-40)+" "+RenderConditional(DimStyle, "("+c.Author+")"))
	}
	return nil
}

// HandleBranches prints local branches, most recent first, marking HEAD.
func HandleBranches(ctx context.Context, w io.Writer, r Retriever, args Args) error {
	branches, err := r.Branches(ctx)
	if err != nil {
		return NewCommandError("branches", "list", "could not list branches", err)
	}
	if branches == nil {
		branches = []git.Branch{}
	}

	if args.JSON {
		return NewJSONResponse("branches", branches).Print(w)
	}

	for _, b := range branches {
		marker := " "
		if b.Current {
			marker = RenderConditional(SuccessStyle, "*")
		}
		fmt.Fprintf(w, "%s %-24s %s %s\n", marker, b.Name,
			RenderConditional(WarningStyle, b.ShortHash),
			RenderConditional(DimStyle, b.RelativeDate))
	}
	return nil
}
