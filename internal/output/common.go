package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/masmgr/gitcommits-go/internal/git"
)

const (
	reportDateLayout     = "2006-01-02"
	reportDateTimeLayout = "2006-01-02T15:04:05"
)

func limitTop[T any](items []T, top int) []T {
	if top <= 0 || top >= len(items) {
		return items
	}
	return items[:top]
}

func dateRangeLabelAndValue(since *time.Time, until time.Time) (string, string) {
	if since != nil {
		return "Period", since.Format(reportDateLayout) + " to " + until.Format(reportDateLayout)
	}
	return "Until", until.Format(reportDateLayout)
}

func formatSinceDate(since *time.Time) *string {
	if since == nil {
		return nil
	}
	formatted := since.Format(reportDateLayout)
	return &formatted
}

// OpenOutput returns stdout for an empty path, otherwise a newly created file.
// The returned close function is never nil.
func OpenOutput(outputPath string) (io.Writer, func() error, error) {
	if outputPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, nil, err
	}
	return file, file.Close, nil
}

// ConfigureColor turns console colors on or off. "auto" enables them only
// when f is a terminal.
func ConfigureColor(mode string, f *os.File) error {
	switch strings.ToLower(mode) {
	case "", "auto":
		fd := f.Fd()
		color.NoColor = !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid color mode %q (expected auto, always, never)", mode)
	}
	return nil
}

func truncateMessage(msg string, maxLen int) string {
	if len(msg) <= maxLen {
		return msg
	}
	return msg[:maxLen-3] + "..."
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}

// formatBytes renders a byte count the way `ls -h` users expect.
func formatBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

// formatDelta renders a signed size change.
func formatDelta(n int64) string {
	if n > 0 {
		return "+" + humanize.IBytes(uint64(n))
	}
	return formatBytes(n)
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"|", "\\|",
		"*", "\\*",
		"_", "\\_",
		"`", "\\`",
	)
	return replacer.Replace(s)
}

// changeRow is the flattened form of a change used by tabular formats.
type changeRow struct {
	Kind    git.ChangeKind
	Path    string
	OldPath string
	OldSize int64
	NewSize int64
}

func flattenChange(change git.Change) changeRow {
	switch ch := change.(type) {
	case git.Added:
		return changeRow{Kind: ch.Kind(), Path: ch.Path, NewSize: ch.Size}
	case git.Modified:
		return changeRow{Kind: ch.Kind(), Path: ch.Path, OldSize: ch.OldSize, NewSize: ch.NewSize}
	case git.Deleted:
		return changeRow{Kind: ch.Kind(), Path: ch.Path, OldSize: ch.Size}
	case git.Renamed:
		return changeRow{Kind: ch.Kind(), Path: ch.NewPath, OldPath: ch.OldPath, OldSize: ch.Size, NewSize: ch.Size}
	default:
		return changeRow{}
	}
}

func (r changeRow) Delta() int64 {
	return r.NewSize - r.OldSize
}

// changeSummary counts changes and net bytes over a list.
type changeSummary struct {
	Added    int
	Modified int
	Deleted  int
	Renamed  int
	NetDelta int64
}

func summarize(changes []git.Change) changeSummary {
	var s changeSummary
	for _, change := range changes {
		s.add(change)
	}
	return s
}

func (s *changeSummary) add(change git.Change) {
	switch change.Kind() {
	case git.ChangeKindAdded:
		s.Added++
	case git.ChangeKindModified:
		s.Modified++
	case git.ChangeKindDeleted:
		s.Deleted++
	case git.ChangeKindRenamed:
		s.Renamed++
	}
	s.NetDelta += git.SizeDelta(change)
}

func (s changeSummary) Total() int {
	return s.Added + s.Modified + s.Deleted + s.Renamed
}
