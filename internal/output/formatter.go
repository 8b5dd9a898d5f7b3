package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/masmgr/gitcommits-go/internal/aggregation"
	"github.com/masmgr/gitcommits-go/internal/burst"
	"github.com/masmgr/gitcommits-go/internal/coupling"
	"github.com/masmgr/gitcommits-go/internal/git"
)

// Compile-time interface conformance checks.
var (
	_ LogWriter = (*ConsoleLogWriter)(nil)
	_ LogWriter = (*JSONLogWriter)(nil)
	_ LogWriter = (*NDJSONLogWriter)(nil)
	_ LogWriter = (*CSVLogWriter)(nil)
	_ LogWriter = (*MarkdownLogWriter)(nil)

	_ DiffReportWriter = (*ConsoleDiffWriter)(nil)
	_ DiffReportWriter = (*JSONDiffWriter)(nil)
	_ DiffReportWriter = (*NDJSONDiffWriter)(nil)
	_ DiffReportWriter = (*CSVDiffWriter)(nil)
	_ DiffReportWriter = (*MarkdownDiffWriter)(nil)

	_ StatsReportWriter = (*ConsoleStatsWriter)(nil)
	_ StatsReportWriter = (*JSONStatsWriter)(nil)
	_ StatsReportWriter = (*NDJSONStatsWriter)(nil)
	_ StatsReportWriter = (*CSVStatsWriter)(nil)
	_ StatsReportWriter = (*MarkdownStatsWriter)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatConsole  OutputFormat = "console"
	FormatJSON     OutputFormat = "json"
	FormatNDJSON   OutputFormat = "ndjson"
	FormatCSV      OutputFormat = "csv"
	FormatMarkdown OutputFormat = "markdown"
	// FormatCI is an alias of FormatNDJSON.
	FormatCI OutputFormat = "ci"
)

// ParseFormat parses a --format value. An empty value selects console.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatConsole, nil
	case FormatCI:
		return FormatNDJSON, nil
	case "md":
		return FormatMarkdown, nil
	case FormatConsole, FormatJSON, FormatNDJSON, FormatCSV, FormatMarkdown:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format %q (expected console, json, ndjson, csv, markdown)", s)
	}
}

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format OutputFormat
	Top    int
	// NoChanges prints commit headers only.
	NoChanges bool
}

// LogWriter streams commits as they are read. Close finishes the document
// and must be called once after the last commit.
type LogWriter interface {
	WriteCommit(cs git.CommitChangeSet) error
	Close() error
}

// NewLogWriter creates a streaming log writer for the specified format.
func NewLogWriter(format OutputFormat, out io.Writer, options OutputOptions) LogWriter {
	switch format {
	case FormatJSON:
		return &JSONLogWriter{out: out, options: options}
	case FormatNDJSON, FormatCI:
		return &NDJSONLogWriter{out: out, options: options}
	case FormatCSV:
		return NewCSVLogWriter(out, options)
	case FormatMarkdown:
		return &MarkdownLogWriter{out: out, options: options}
	default:
		return &ConsoleLogWriter{out: out, options: options}
	}
}

// DiffReport holds the changes between two revisions.
type DiffReport struct {
	RepoPath    string
	GeneratedAt time.Time
	Result      *git.DiffResult
}

// DiffReportWriter writes diff reports.
type DiffReportWriter interface {
	Write(out io.Writer, report *DiffReport, options OutputOptions) error
}

// NewDiffReportWriter creates a diff report writer for the specified format.
func NewDiffReportWriter(format OutputFormat) DiffReportWriter {
	switch format {
	case FormatJSON:
		return &JSONDiffWriter{}
	case FormatNDJSON, FormatCI:
		return &NDJSONDiffWriter{}
	case FormatCSV:
		return &CSVDiffWriter{}
	case FormatMarkdown:
		return &MarkdownDiffWriter{}
	default:
		return &ConsoleDiffWriter{}
	}
}

// StatsReport holds the size metrics of a history read.
type StatsReport struct {
	RepoPath    string
	Since       *time.Time
	Until       time.Time
	GeneratedAt time.Time
	Totals      aggregation.Totals
	SortKey     aggregation.SortKey
	// Files and Commits are already ranked.
	Files   []*aggregation.FileMetrics
	Commits []aggregation.CommitMetrics
	Busiest burst.Window
	// Coupling is nil when coupling analysis was not requested.
	Coupling *coupling.Result
	// FixCounts maps paths to the number of matching commits that touched
	// them. It is nil when no match patterns were given.
	FixCounts map[string]int
	FixTotal  int
}

// StatsReportWriter writes stats reports.
type StatsReportWriter interface {
	Write(out io.Writer, report *StatsReport, options OutputOptions) error
}

// NewStatsReportWriter creates a stats report writer for the specified format.
func NewStatsReportWriter(format OutputFormat) StatsReportWriter {
	switch format {
	case FormatJSON:
		return &JSONStatsWriter{}
	case FormatNDJSON, FormatCI:
		return &NDJSONStatsWriter{}
	case FormatCSV:
		return &CSVStatsWriter{}
	case FormatMarkdown:
		return &MarkdownStatsWriter{}
	default:
		return &ConsoleStatsWriter{}
	}
}
