package output

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/masmgr/gitcommits-go/internal/git"
)

func markdownChange(change git.Change) string {
	switch ch := change.(type) {
	case git.Added:
		return fmt.Sprintf("**A** `%s` (%s)", ch.Path, formatBytes(ch.Size))
	case git.Modified:
		return fmt.Sprintf("**M** `%s` (%s -> %s)", ch.Path, formatBytes(ch.OldSize), formatBytes(ch.NewSize))
	case git.Deleted:
		return fmt.Sprintf("**D** `%s` (%s)", ch.Path, formatBytes(ch.Size))
	case git.Renamed:
		return fmt.Sprintf("**R** `%s` -> `%s` (%s)", ch.OldPath, ch.NewPath, formatBytes(ch.Size))
	default:
		return escapeMarkdown(change.String())
	}
}

// MarkdownLogWriter writes commits as a Markdown document.
type MarkdownLogWriter struct {
	out     io.Writer
	options OutputOptions
	started bool
	commits int
	summary changeSummary
}

// WriteCommit writes one commit section.
func (w *MarkdownLogWriter) WriteCommit(cs git.CommitChangeSet) error {
	if !w.started {
		w.started = true
		fmt.Fprintln(w.out, "# Commit Log")
		fmt.Fprintln(w.out)
	}
	w.commits++

	c := cs.Commit
	fmt.Fprintf(w.out, "### `%s` %s\n\n", shortSHA(c.SHA), escapeMarkdown(c.Message))
	fmt.Fprintf(w.out, "%s by %s\n\n", c.When.Format(reportDateTimeLayout), escapeMarkdown(c.Author.Name))
	if w.options.NoChanges || len(cs.Changes) == 0 {
		return nil
	}
	for _, change := range cs.Changes {
		w.summary.add(change)
		fmt.Fprintf(w.out, "- %s\n", markdownChange(change))
	}
	_, err := fmt.Fprintln(w.out)
	return err
}

// Close writes the totals.
func (w *MarkdownLogWriter) Close() error {
	if !w.started {
		fmt.Fprintln(w.out, "# Commit Log")
		fmt.Fprintln(w.out)
	}
	_, err := fmt.Fprintf(w.out, "**Commits:** %d, **Changes:** %d, **Net:** %s\n",
		w.commits, w.summary.Total(), formatDelta(w.summary.NetDelta))
	return err
}

// MarkdownDiffWriter writes diff reports as Markdown.
type MarkdownDiffWriter struct{}

// Write outputs the diff report as Markdown.
func (w *MarkdownDiffWriter) Write(out io.Writer, report *DiffReport, options OutputOptions) error {
	r := report.Result
	fmt.Fprintf(out, "# Changes `%s..%s`\n\n", r.Base, r.Head)
	fmt.Fprintf(out, "**Repository:** %s\n\n", report.RepoPath)
	if r.MergeBase != "" {
		fmt.Fprintf(out, "**Merge base:** `%s`\n\n", shortSHA(r.MergeBase))
	}

	tbl := table.NewWriter()
	tbl.AppendHeader(table.Row{"Kind", "Path", "Old Path", "Old Size", "New Size", "Delta"})
	for _, change := range r.Changes {
		row := flattenChange(change)
		tbl.AppendRow(table.Row{
			string(row.Kind.Letter()), row.Path, row.OldPath,
			formatBytes(row.OldSize), formatBytes(row.NewSize), formatDelta(git.SizeDelta(change)),
		})
	}
	fmt.Fprintln(out, tbl.RenderMarkdown())
	fmt.Fprintln(out)

	s := summarize(r.Changes)
	_, err := fmt.Fprintf(out, "**Changes:** %d, **Net:** %s\n", s.Total(), formatDelta(s.NetDelta))
	return err
}

// MarkdownStatsWriter writes stats reports as Markdown.
type MarkdownStatsWriter struct{}

// Write outputs the stats report as Markdown.
func (w *MarkdownStatsWriter) Write(out io.Writer, report *StatsReport, options OutputOptions) error {
	t := report.Totals
	label, value := dateRangeLabelAndValue(report.Since, report.Until)

	fmt.Fprintln(out, "# Repository Size Statistics")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Repository:** %s\n\n", report.RepoPath)
	fmt.Fprintf(out, "**%s:** %s\n\n", label, value)
	fmt.Fprintf(out, "**Commits:** %d, **Authors:** %d, **Changes:** %d\n\n", t.Commits, t.Authors, t.Changes())
	fmt.Fprintf(out, "**Bytes added:** %s, **Bytes removed:** %s, **Net:** %s\n\n",
		formatBytes(t.BytesAdded), formatBytes(t.BytesRemoved), formatDelta(t.NetDelta()))

	if files := limitTop(report.Files, options.Top); len(files) > 0 {
		fmt.Fprintf(out, "## Top Files by %s\n\n", report.SortKey)
		tbl := table.NewWriter()
		tbl.AppendHeader(table.Row{"#", "Path", "Size", "Peak", "Churn", "Commits", "Renames", "Authors", "Burst", "Activity"})
		for i, fm := range files {
			path := "`" + fm.Path + "`"
			if fm.Deleted {
				path += " (deleted)"
			}
			tbl.AppendRow(table.Row{
				i + 1, path, formatBytes(fm.CurrentSize), formatBytes(fm.PeakSize), formatBytes(fm.ChurnTotal()),
				fm.CommitCount, fm.RenameCount, fm.ContributorCount(), fmt.Sprintf("%.2f", fm.BurstScore),
				fmt.Sprintf("%.2f", fm.ActivityScore),
			})
		}
		fmt.Fprintln(out, tbl.RenderMarkdown())
		fmt.Fprintln(out)
	}

	if commits := limitTop(report.Commits, options.Top); len(commits) > 0 {
		fmt.Fprintln(out, "## Largest Commits")
		fmt.Fprintln(out)
		tbl := table.NewWriter()
		tbl.AppendHeader(table.Row{"#", "SHA", "Date", "Files", "Churn", "Net", "Message"})
		for i, cm := range commits {
			tbl.AppendRow(table.Row{
				i + 1, "`" + shortSHA(cm.SHA) + "`", cm.When.Format(reportDateLayout), cm.FileCount,
				formatBytes(cm.TotalChurn()), formatDelta(cm.NetDelta()), escapeMarkdown(truncateMessage(cm.Message, 60)),
			})
		}
		fmt.Fprintln(out, tbl.RenderMarkdown())
		fmt.Fprintln(out)
	}

	if report.Coupling != nil {
		fmt.Fprintln(out, "## Change Coupling")
		fmt.Fprintln(out)
		couplings := limitTop(report.Coupling.Couplings, options.Top)
		if len(couplings) == 0 {
			_, err := fmt.Fprintln(out, "No significant file couplings found.")
			return err
		}
		tbl := table.NewWriter()
		tbl.AppendHeader(table.Row{"#", "File A", "File B", "Co-Commits", "Jaccard", "Confidence", "Lift"})
		for i, c := range couplings {
			tbl.AppendRow(table.Row{
				i + 1, "`" + c.FileA + "`", "`" + c.FileB + "`", c.CoCommitCount,
				fmt.Sprintf("%.3f", c.JaccardCoefficient), fmt.Sprintf("%.3f", c.Confidence), fmt.Sprintf("%.2f", c.Lift),
			})
		}
		_, err := fmt.Fprintln(out, tbl.RenderMarkdown())
		return err
	}
	return nil
}
