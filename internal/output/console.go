package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/masmgr/gitcommits-go/internal/git"
)

// ConsoleLogWriter prints commits in a compact, colored form.
type ConsoleLogWriter struct {
	out     io.Writer
	options OutputOptions
	commits int
	summary changeSummary
}

// WriteCommit prints one commit and its changes.
func (w *ConsoleLogWriter) WriteCommit(cs git.CommitChangeSet) error {
	w.commits++
	c := cs.Commit
	_, err := fmt.Fprintf(w.out, "%s %s %s %s\n",
		color.YellowString(shortSHA(c.SHA)),
		c.When.Format(reportDateTimeLayout),
		color.CyanString(c.Author.Name),
		c.Message,
	)
	if err != nil {
		return err
	}
	if w.options.NoChanges {
		return nil
	}
	for _, change := range cs.Changes {
		w.summary.add(change)
		if _, err := fmt.Fprintf(w.out, "    %s\n", formatChange(change)); err != nil {
			return err
		}
	}
	return nil
}

// Close prints a one-line total.
func (w *ConsoleLogWriter) Close() error {
	if w.options.NoChanges {
		_, err := fmt.Fprintf(w.out, "\n%d commits\n", w.commits)
		return err
	}
	_, err := fmt.Fprintf(w.out, "\n%d commits, %s\n", w.commits, formatSummary(w.summary))
	return err
}

func kindColor(kind git.ChangeKind) func(format string, a ...interface{}) string {
	switch kind {
	case git.ChangeKindAdded:
		return color.GreenString
	case git.ChangeKindDeleted:
		return color.RedString
	case git.ChangeKindRenamed:
		return color.BlueString
	default:
		return color.YellowString
	}
}

// formatChange renders one change with its symbol and human-readable sizes.
func formatChange(change git.Change) string {
	paint := kindColor(change.Kind())
	symbol := paint("%c", change.Kind().Symbol())
	switch ch := change.(type) {
	case git.Added:
		return fmt.Sprintf("%s %s (%s)", symbol, ch.Path, formatBytes(ch.Size))
	case git.Modified:
		return fmt.Sprintf("%s %s (%s -> %s, %s)", symbol, ch.Path,
			formatBytes(ch.OldSize), formatBytes(ch.NewSize), formatDelta(ch.Delta()))
	case git.Deleted:
		return fmt.Sprintf("%s %s (%s)", symbol, ch.Path, formatBytes(ch.Size))
	case git.Renamed:
		return fmt.Sprintf("%s %s -> %s (%s)", symbol, ch.OldPath, ch.NewPath, formatBytes(ch.Size))
	default:
		return change.String()
	}
}

func formatSummary(s changeSummary) string {
	return fmt.Sprintf("%d changes (%s added, %s modified, %s deleted, %s renamed), net %s",
		s.Total(),
		color.GreenString("%d", s.Added),
		color.YellowString("%d", s.Modified),
		color.RedString("%d", s.Deleted),
		color.BlueString("%d", s.Renamed),
		formatDelta(s.NetDelta),
	)
}

// ConsoleDiffWriter prints a diff report to the console.
type ConsoleDiffWriter struct{}

// Write outputs the diff report.
func (w *ConsoleDiffWriter) Write(out io.Writer, report *DiffReport, options OutputOptions) error {
	r := report.Result
	fmt.Fprintln(out, color.GreenString("Changes %s..%s", r.Base, r.Head))
	fmt.Fprintf(out, "Repository: %s\n", report.RepoPath)
	if r.MergeBase != "" {
		fmt.Fprintf(out, "Merge base: %s\n", shortSHA(r.MergeBase))
	}
	fmt.Fprintln(out)

	for _, change := range r.Changes {
		fmt.Fprintf(out, "  %s\n", formatChange(change))
	}
	_, err := fmt.Fprintf(out, "\n%s\n", formatSummary(summarize(r.Changes)))
	return err
}

// ConsoleStatsWriter prints a stats report as tables.
type ConsoleStatsWriter struct{}

func newConsoleTable(out io.Writer) table.Writer {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(out)
	tbl.SetStyle(table.StyleLight)
	return tbl
}

// Write outputs the stats report.
func (w *ConsoleStatsWriter) Write(out io.Writer, report *StatsReport, options OutputOptions) error {
	t := report.Totals
	label, value := dateRangeLabelAndValue(report.Since, report.Until)

	fmt.Fprintln(out, color.GreenString("Repository Size Statistics"))
	fmt.Fprintf(out, "Repository: %s\n", report.RepoPath)
	fmt.Fprintf(out, "%s: %s\n\n", label, value)

	summary := newConsoleTable(out)
	summary.AppendRows([]table.Row{
		{"Commits", t.Commits},
		{"Authors", t.Authors},
		{"Changes", t.Changes()},
		{"Added / Modified / Deleted / Renamed", fmt.Sprintf("%d / %d / %d / %d", t.Added, t.Modified, t.Deleted, t.Renamed)},
		{"Bytes added", formatBytes(t.BytesAdded)},
		{"Bytes removed", formatBytes(t.BytesRemoved)},
		{"Net growth", formatDelta(t.NetDelta())},
	})
	if report.Busiest.Count > 0 {
		summary.AppendRow(table.Row{"Busiest window", fmt.Sprintf("%d commits, %s to %s",
			report.Busiest.Count, report.Busiest.Start.Format(reportDateLayout), report.Busiest.End.Format(reportDateLayout))})
	}
	if report.FixCounts != nil {
		summary.AppendRow(table.Row{"Matching commits", report.FixTotal})
	}
	summary.Render()

	files := limitTop(report.Files, options.Top)
	if len(files) > 0 {
		fmt.Fprintf(out, "\nTop files by %s\n", report.SortKey)
		tbl := newConsoleTable(out)
		header := table.Row{"#", "Path", "Size", "Peak", "Churn", "Commits", "Renames", "Authors", "Burst", "Activity"}
		if report.FixCounts != nil {
			header = append(header, "Matches")
		}
		tbl.AppendHeader(header)
		for i, fm := range files {
			path := fm.Path
			if fm.Deleted {
				path = color.RedString("%s (deleted)", fm.Path)
			}
			row := table.Row{
				i + 1, path,
				formatBytes(fm.CurrentSize), formatBytes(fm.PeakSize), formatBytes(fm.ChurnTotal()),
				fm.CommitCount, fm.RenameCount, fm.ContributorCount(), fmt.Sprintf("%.2f", fm.BurstScore),
				fmt.Sprintf("%.2f", fm.ActivityScore),
			}
			if report.FixCounts != nil {
				row = append(row, report.FixCounts[fm.Path])
			}
			tbl.AppendRow(row)
		}
		tbl.Render()
	}

	commits := limitTop(report.Commits, options.Top)
	if len(commits) > 0 {
		fmt.Fprintln(out, "\nLargest commits")
		tbl := newConsoleTable(out)
		tbl.AppendHeader(table.Row{"#", "SHA", "Date", "Files", "Churn", "Net", "Entropy", "Message"})
		for i, cm := range commits {
			tbl.AppendRow(table.Row{
				i + 1, color.YellowString(shortSHA(cm.SHA)), cm.When.Format(reportDateLayout),
				cm.FileCount, formatBytes(cm.TotalChurn()), formatDelta(cm.NetDelta()),
				fmt.Sprintf("%.2f", cm.SizeEntropy), truncateMessage(cm.Message, 40),
			})
		}
		tbl.Render()
	}

	if report.Coupling != nil {
		couplings := limitTop(report.Coupling.Couplings, options.Top)
		fmt.Fprintln(out, "\nChange coupling")
		if len(couplings) == 0 {
			fmt.Fprintln(out, "No significant file couplings found.")
			return nil
		}
		tbl := newConsoleTable(out)
		tbl.AppendHeader(table.Row{"#", "File A", "File B", "Co-Commits", "Jaccard", "Confidence", "Lift"})
		for i, c := range couplings {
			tbl.AppendRow(table.Row{
				i + 1, c.FileA, c.FileB, c.CoCommitCount,
				fmt.Sprintf("%.3f", c.JaccardCoefficient), fmt.Sprintf("%.3f", c.Confidence), fmt.Sprintf("%.2f", c.Lift),
			})
		}
		tbl.Render()
	}
	return nil
}
