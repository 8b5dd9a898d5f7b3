package aggregation

import (
	"time"

	"github.com/masmgr/gitcommits-go/internal/git"
)

// FileMetrics holds aggregated size metrics for a single file, following it
// across renames. Path is the file's latest known path.
type FileMetrics struct {
	Path                    string
	PreviousPaths           []string
	CommitCount             int
	RenameCount             int
	CurrentSize             int64
	PeakSize                int64
	BytesAdded              int64
	BytesRemoved            int64
	Deleted                 bool
	FirstSeenAt             time.Time
	LastModifiedAt          time.Time
	Contributors            map[string]struct{}
	ContributorCommitCounts map[string]int
	CommitTimes             []time.Time
	BurstScore              float64
	ActivityScore           float64

	// lastSHA guards against counting a Modified/Renamed pair twice.
	lastSHA string
}

// NewFileMetrics creates a new FileMetrics instance.
func NewFileMetrics(path string) *FileMetrics {
	return &FileMetrics{
		Path:                    path,
		Contributors:            make(map[string]struct{}),
		ContributorCommitCounts: make(map[string]int),
		CommitTimes:             make([]time.Time, 0),
	}
}

// ChurnTotal returns total bytes written or removed.
func (f *FileMetrics) ChurnTotal() int64 {
	return f.BytesAdded + f.BytesRemoved
}

// ContributorCount returns number of unique contributors.
func (f *FileMetrics) ContributorCount() int {
	return len(f.Contributors)
}

// OwnershipRatio returns proportion of commits by top contributor.
// A high ratio means concentrated ownership (one person owns the file).
// A low ratio means dispersed ownership (many people contribute).
func (f *FileMetrics) OwnershipRatio() float64 {
	if f.CommitCount == 0 || len(f.ContributorCommitCounts) == 0 {
		return 1.0
	}

	maxCommits := 0
	for _, count := range f.ContributorCommitCounts {
		if count > maxCommits {
			maxCommits = count
		}
	}

	return float64(maxCommits) / float64(f.CommitCount)
}

// touch records that commit touched the file. A commit is counted once.
func (f *FileMetrics) touch(commit git.CommitInfo) {
	if commit.SHA != "" && f.lastSHA == commit.SHA {
		return
	}
	f.lastSHA = commit.SHA
	f.CommitCount++

	if f.FirstSeenAt.IsZero() || commit.When.Before(f.FirstSeenAt) {
		f.FirstSeenAt = commit.When
	}
	if f.LastModifiedAt.IsZero() || commit.When.After(f.LastModifiedAt) {
		f.LastModifiedAt = commit.When
	}

	contributorKey := commit.Author.ContributorKey()
	f.Contributors[contributorKey] = struct{}{}
	f.ContributorCommitCounts[contributorKey]++

	f.CommitTimes = append(f.CommitTimes, commit.When)
}

func (f *FileMetrics) setSize(size int64) {
	f.CurrentSize = size
	if size > f.PeakSize {
		f.PeakSize = size
	}
}

// AddChange applies one classified change made by commit to the file.
// Renames are handled by the aggregator, which owns the path index.
func (f *FileMetrics) AddChange(commit git.CommitInfo, change git.Change) {
	f.touch(commit)

	switch ch := change.(type) {
	case git.Added:
		f.Deleted = false
		f.BytesAdded += ch.Size
		f.setSize(ch.Size)
	case git.Modified:
		f.Deleted = false
		if d := ch.Delta(); d > 0 {
			f.BytesAdded += d
		} else {
			f.BytesRemoved -= d
		}
		f.setSize(ch.NewSize)
	case git.Deleted:
		f.Deleted = true
		f.BytesRemoved += ch.Size
		f.CurrentSize = 0
	case git.Renamed:
		f.Deleted = false
		f.RenameCount++
		f.PreviousPaths = append(f.PreviousPaths, ch.OldPath)
		f.setSize(ch.Size)
	}
}

// FileMetricsAggregator aggregates file changes from commits.
// Change sets must be added oldest first for sizes to be meaningful.
type FileMetricsAggregator struct {
	metrics map[string]*FileMetrics
}

// NewFileMetricsAggregator creates a new aggregator.
func NewFileMetricsAggregator() *FileMetricsAggregator {
	return &FileMetricsAggregator{
		metrics: make(map[string]*FileMetrics),
	}
}

// Process processes all commit change sets and aggregates metrics.
func (a *FileMetricsAggregator) Process(changeSets []git.CommitChangeSet) map[string]*FileMetrics {
	for _, cs := range changeSets {
		a.Add(cs)
	}
	return a.metrics
}

// Add processes a single commit change set.
func (a *FileMetricsAggregator) Add(cs git.CommitChangeSet) {
	for _, change := range cs.Changes {
		if r, ok := change.(git.Renamed); ok {
			a.rename(r.OldPath, r.NewPath)
			a.get(r.NewPath).AddChange(cs.Commit, r)
			continue
		}

		path := currentPath(change)
		if path == "" {
			continue
		}
		a.get(path).AddChange(cs.Commit, change)
	}
}

func (a *FileMetricsAggregator) get(path string) *FileMetrics {
	fm, ok := a.metrics[path]
	if !ok {
		fm = NewFileMetrics(path)
		a.metrics[path] = fm
	}
	return fm
}

// rename moves the history recorded under oldPath to newPath.
func (a *FileMetricsAggregator) rename(oldPath, newPath string) {
	oldMetrics, exists := a.metrics[oldPath]
	if !exists || oldPath == newPath {
		return
	}
	delete(a.metrics, oldPath)

	target, newExists := a.metrics[newPath]
	if !newExists {
		oldMetrics.Path = newPath
		a.metrics[newPath] = oldMetrics
		return
	}
	a.mergeMetrics(target, oldMetrics)
}

// mergeMetrics merges source metrics into target. Target keeps its current
// size, which reflects the newer content.
func (a *FileMetricsAggregator) mergeMetrics(target, source *FileMetrics) {
	target.CommitCount += source.CommitCount
	target.RenameCount += source.RenameCount
	target.BytesAdded += source.BytesAdded
	target.BytesRemoved += source.BytesRemoved
	target.PreviousPaths = append(source.PreviousPaths, target.PreviousPaths...)

	if source.PeakSize > target.PeakSize {
		target.PeakSize = source.PeakSize
	}
	if !source.FirstSeenAt.IsZero() && (target.FirstSeenAt.IsZero() || source.FirstSeenAt.Before(target.FirstSeenAt)) {
		target.FirstSeenAt = source.FirstSeenAt
	}
	if source.LastModifiedAt.After(target.LastModifiedAt) {
		target.LastModifiedAt = source.LastModifiedAt
	}

	for k := range source.Contributors {
		target.Contributors[k] = struct{}{}
	}

	for k, v := range source.ContributorCommitCounts {
		target.ContributorCommitCounts[k] += v
	}

	target.CommitTimes = append(target.CommitTimes, source.CommitTimes...)
}

// GetMetrics returns the aggregated metrics.
func (a *FileMetricsAggregator) GetMetrics() map[string]*FileMetrics {
	return a.metrics
}
