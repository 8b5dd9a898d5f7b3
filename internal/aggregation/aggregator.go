package aggregation

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/masmgr/gitcommits-go/internal/git"
)

// Totals summarises a whole history read.
type Totals struct {
	Commits      int
	Added        int
	Modified     int
	Deleted      int
	Renamed      int
	BytesAdded   int64
	BytesRemoved int64
	First        time.Time
	Last         time.Time
	Authors      int
}

// NetDelta returns the net bytes added over the read.
func (t Totals) NetDelta() int64 {
	return t.BytesAdded - t.BytesRemoved
}

// Changes returns the number of classified changes.
func (t Totals) Changes() int {
	return t.Added + t.Modified + t.Deleted + t.Renamed
}

// Aggregator consumes change sets one at a time and keeps per-commit and
// per-file size metrics.
type Aggregator struct {
	commitCalc *CommitMetricsCalculator
	files      *FileMetricsAggregator
	commits    []CommitMetrics
	authors    map[string]struct{}
	totals     Totals
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		commitCalc: NewCommitMetricsCalculator(),
		files:      NewFileMetricsAggregator(),
		authors:    make(map[string]struct{}),
	}
}

// Add records one commit. It has the signature of a HistoryReader callback.
func (a *Aggregator) Add(cs git.CommitChangeSet) error {
	m := a.commitCalc.Calculate(cs)
	a.commits = append(a.commits, m)
	a.files.Add(cs)

	t := &a.totals
	t.Commits++
	t.Added += m.Added
	t.Modified += m.Modified
	t.Deleted += m.Deleted
	t.Renamed += m.Renamed
	t.BytesAdded += m.BytesAdded
	t.BytesRemoved += m.BytesRemoved
	if t.First.IsZero() || m.When.Before(t.First) {
		t.First = m.When
	}
	if m.When.After(t.Last) {
		t.Last = m.When
	}
	a.authors[cs.Commit.Author.ContributorKey()] = struct{}{}
	t.Authors = len(a.authors)
	return nil
}

// Commits returns per-commit metrics in the order they were added.
func (a *Aggregator) Commits() []CommitMetrics {
	return a.commits
}

// Files returns per-file metrics keyed by latest path.
func (a *Aggregator) Files() map[string]*FileMetrics {
	return a.files.GetMetrics()
}

// Totals returns the running totals.
func (a *Aggregator) Totals() Totals {
	return a.totals
}

// SortKey selects the ordering of ranked results.
type SortKey string

const (
	SortBySize     SortKey = "size"
	SortByPeak     SortKey = "peak"
	SortByChurn    SortKey = "churn"
	SortByCommits  SortKey = "commits"
	SortByGrowth   SortKey = "growth"
	// SortByActivity needs ActivityScore to be computed first.
	SortByActivity SortKey = "activity"
)

// ParseSortKey parses a sort key flag value.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortByChurn, nil
	case SortBySize, SortByPeak, SortByChurn, SortByCommits, SortByGrowth, SortByActivity:
		return k, nil
	default:
		return "", fmt.Errorf("invalid sort key %q (expected size, peak, churn, commits, growth, activity)", s)
	}
}

// TopFiles returns up to n files ordered by key, largest first. Deleted
// files are included only when includeDeleted is set. Ties are broken by path.
func TopFiles(metrics map[string]*FileMetrics, key SortKey, n int, includeDeleted bool) []*FileMetrics {
	files := make([]*FileMetrics, 0, len(metrics))
	for _, fm := range metrics {
		if fm.Deleted && !includeDeleted {
			continue
		}
		files = append(files, fm)
	}

	value := func(fm *FileMetrics) float64 {
		switch key {
		case SortBySize:
			return float64(fm.CurrentSize)
		case SortByPeak:
			return float64(fm.PeakSize)
		case SortByCommits:
			return float64(fm.CommitCount)
		case SortByGrowth:
			return float64(fm.BytesAdded - fm.BytesRemoved)
		case SortByActivity:
			return fm.ActivityScore
		default:
			return float64(fm.ChurnTotal())
		}
	}

	slices.SortFunc(files, func(a, b *FileMetrics) int {
		va, vb := value(a), value(b)
		if va != vb {
			if va > vb {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Path, b.Path)
	})

	if n > 0 && len(files) > n {
		files = files[:n]
	}
	return files
}

// TopCommits returns up to n commits ordered by total byte churn.
func TopCommits(commits []CommitMetrics, n int) []CommitMetrics {
	sorted := slices.Clone(commits)
	slices.SortStableFunc(sorted, func(a, b CommitMetrics) int {
		ca, cb := a.TotalChurn(), b.TotalChurn()
		switch {
		case ca > cb:
			return -1
		case ca < cb:
			return 1
		default:
			return 0
		}
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
