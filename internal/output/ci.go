package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/masmgr/gitcommits-go/internal/git"
)

// NDJSON output writes one JSON object per line. Every object carries a
// "type" field so consumers can dispatch on it.

// NDJSONSummary is the closing line of a log stream.
type NDJSONSummary struct {
	Type     string `json:"type"`
	Commits  int    `json:"commits"`
	Changes  int    `json:"changes"`
	Added    int    `json:"added"`
	Modified int    `json:"modified"`
	Deleted  int    `json:"deleted"`
	Renamed  int    `json:"renamed"`
	NetDelta int64  `json:"netDelta"`
}

// NDJSONCommit is one commit line.
type NDJSONCommit struct {
	Type string `json:"type"`
	JSONCommit
}

// NDJSONChange is one change line of a diff stream.
type NDJSONChange struct {
	Type string `json:"type"`
	JSONChange
}

// NDJSONLogWriter writes one line per commit and a summary line on Close.
type NDJSONLogWriter struct {
	out     io.Writer
	options OutputOptions
	commits int
	summary changeSummary
}

// WriteCommit writes one commit line.
func (w *NDJSONLogWriter) WriteCommit(cs git.CommitChangeSet) error {
	w.commits++
	for _, change := range cs.Changes {
		w.summary.add(change)
	}
	return writeNDJSONLine(w.out, NDJSONCommit{Type: "commit", JSONCommit: toJSONCommit(cs, !w.options.NoChanges)})
}

// Close writes the summary line.
func (w *NDJSONLogWriter) Close() error {
	return writeNDJSONLine(w.out, newNDJSONSummary(w.commits, w.summary))
}

func newNDJSONSummary(commits int, s changeSummary) NDJSONSummary {
	return NDJSONSummary{
		Type:     "summary",
		Commits:  commits,
		Changes:  s.Total(),
		Added:    s.Added,
		Modified: s.Modified,
		Deleted:  s.Deleted,
		Renamed:  s.Renamed,
		NetDelta: s.NetDelta,
	}
}

// NDJSONDiffWriter writes a summary line followed by one line per change.
type NDJSONDiffWriter struct{}

// Write outputs the diff report as NDJSON.
func (w *NDJSONDiffWriter) Write(out io.Writer, report *DiffReport, options OutputOptions) error {
	changes := report.Result.Changes
	if err := writeNDJSONLine(out, newNDJSONSummary(0, summarize(changes))); err != nil {
		return err
	}
	for _, change := range changes {
		if err := writeNDJSONLine(out, NDJSONChange{Type: "change", JSONChange: toJSONChange(change)}); err != nil {
			return err
		}
	}
	return nil
}

// NDJSONStatsSummary is the first line of a stats stream.
type NDJSONStatsSummary struct {
	Type        string `json:"type"`
	GeneratedAt string `json:"generatedAt"`
	JSONTotals
}

// NDJSONFile is one file line of a stats stream.
type NDJSONFile struct {
	Type string `json:"type"`
	JSONFileItem
}

// NDJSONStatsWriter writes a summary line followed by one line per file.
type NDJSONStatsWriter struct{}

// Write outputs the stats report as NDJSON.
func (w *NDJSONStatsWriter) Write(out io.Writer, report *StatsReport, options OutputOptions) error {
	summary := NDJSONStatsSummary{
		Type:        "summary",
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
		JSONTotals:  toJSONTotals(report),
	}
	if err := writeNDJSONLine(out, summary); err != nil {
		return err
	}
	for _, fm := range limitTop(report.Files, options.Top) {
		if err := writeNDJSONLine(out, NDJSONFile{Type: "file", JSONFileItem: toJSONFileItem(fm, report.FixCounts)}); err != nil {
			return err
		}
	}
	return nil
}

func writeNDJSONLine(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal NDJSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
