package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/masmgr/gitcommits-go/internal/git"
)

var csvChangeHeader = []string{"Kind", "Path", "OldPath", "OldSize", "NewSize", "Delta"}

func csvChangeFields(change git.Change) []string {
	row := flattenChange(change)
	return []string{
		string(row.Kind.Letter()),
		row.Path,
		row.OldPath,
		strconv.FormatInt(row.OldSize, 10),
		strconv.FormatInt(row.NewSize, 10),
		strconv.FormatInt(git.SizeDelta(change), 10),
	}
}

// CSVLogWriter writes one row per change. A commit without changes, or any
// commit when NoChanges is set, gets a single row with empty change columns.
type CSVLogWriter struct {
	writer  *csv.Writer
	options OutputOptions
	started bool
}

// NewCSVLogWriter creates a CSV log writer.
func NewCSVLogWriter(out io.Writer, options OutputOptions) *CSVLogWriter {
	return &CSVLogWriter{writer: csv.NewWriter(out), options: options}
}

// WriteCommit writes the rows of one commit.
func (w *CSVLogWriter) WriteCommit(cs git.CommitChangeSet) error {
	if !w.started {
		w.started = true
		header := []string{"SHA", "Date", "Author", "Email", "Message"}
		if !w.options.NoChanges {
			header = append(header, csvChangeHeader...)
		}
		if err := w.writer.Write(header); err != nil {
			return err
		}
	}

	c := cs.Commit
	prefix := []string{c.SHA, c.When.Format(reportDateTimeLayout), c.Author.Name, c.Author.Email, c.Message}
	if w.options.NoChanges {
		return w.writer.Write(prefix)
	}
	if len(cs.Changes) == 0 {
		return w.writer.Write(append(prefix, "", "", "", "", "", ""))
	}
	for _, change := range cs.Changes {
		row := append(append([]string{}, prefix...), csvChangeFields(change)...)
		if err := w.writer.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes buffered rows.
func (w *CSVLogWriter) Close() error {
	w.writer.Flush()
	return w.writer.Error()
}

// CSVDiffWriter writes diff reports as CSV.
type CSVDiffWriter struct{}

// Write outputs the diff report as CSV.
func (w *CSVDiffWriter) Write(out io.Writer, report *DiffReport, options OutputOptions) error {
	writer := csv.NewWriter(out)
	if err := writer.Write(csvChangeHeader); err != nil {
		return err
	}
	for _, change := range report.Result.Changes {
		if err := writer.Write(csvChangeFields(change)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// CSVStatsWriter writes the file table of a stats report as CSV.
type CSVStatsWriter struct{}

// Write outputs the stats report as CSV.
func (w *CSVStatsWriter) Write(out io.Writer, report *StatsReport, options OutputOptions) error {
	writer := csv.NewWriter(out)

	headers := []string{"Path", "Deleted", "CurrentSize", "PeakSize", "BytesAdded", "BytesRemoved",
		"CommitCount", "RenameCount", "Contributors", "OwnershipRatio", "BurstScore", "ActivityScore", "FirstSeen", "LastModified"}
	if report.FixCounts != nil {
		headers = append(headers, "Matches")
	}
	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, fm := range limitTop(report.Files, options.Top) {
		row := []string{
			fm.Path,
			strconv.FormatBool(fm.Deleted),
			strconv.FormatInt(fm.CurrentSize, 10),
			strconv.FormatInt(fm.PeakSize, 10),
			strconv.FormatInt(fm.BytesAdded, 10),
			strconv.FormatInt(fm.BytesRemoved, 10),
			strconv.Itoa(fm.CommitCount),
			strconv.Itoa(fm.RenameCount),
			strconv.Itoa(fm.ContributorCount()),
			fmt.Sprintf("%.6f", fm.OwnershipRatio()),
			fmt.Sprintf("%.6f", fm.BurstScore),
			fmt.Sprintf("%.6f", fm.ActivityScore),
			fm.FirstSeenAt.Format(reportDateTimeLayout),
			fm.LastModifiedAt.Format(reportDateTimeLayout),
		}
		if report.FixCounts != nil {
			row = append(row, strconv.Itoa(report.FixCounts[fm.Path]))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
