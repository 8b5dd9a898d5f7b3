package coupling

import (
	"cmp"
	"slices"
	"strings"

	"github.com/masmgr/gitcommits-go/config"
	"github.com/masmgr/gitcommits-go/internal/git"
)

// FilePair is an unordered pair of paths.
type FilePair struct {
	FileA string
	FileB string
}

// NewFilePair creates a pair with the lexicographically smaller path first.
func NewFilePair(a, b string) FilePair {
	if a > b {
		a, b = b, a
	}
	return FilePair{FileA: a, FileB: b}
}

// ChangeCoupling describes how often two files change in the same commit.
type ChangeCoupling struct {
	FileA              string
	FileB              string
	CoCommitCount      int     // Commits touching both files
	FileACommitCount   int     // Commits touching FileA
	FileBCommitCount   int     // Commits touching FileB
	JaccardCoefficient float64 // |A ∩ B| / |A ∪ B|
	Confidence         float64 // P(B|A) = CoCommitCount / FileACommitCount
	Lift               float64 // P(A,B) / (P(A) × P(B))
}

// Result holds the outcome of a coupling analysis.
type Result struct {
	Couplings    []ChangeCoupling
	TotalCommits int
	TotalFiles   int
	TotalPairs   int
	// SkippedCommits touched more files than MaxFilesPerCommit.
	SkippedCommits int
}

// Analyzer accumulates co-change counts one commit at a time.
// Counts follow files across renames. Deleted files do not form pairs.
// Paths are compared case-insensitively.
type Analyzer struct {
	options config.CouplingConfig

	fileCommits map[string]int
	pairCommits map[FilePair]int
	commits     int
	skipped     int
}

// NewAnalyzer creates an empty analyzer.
func NewAnalyzer(options config.CouplingConfig) *Analyzer {
	return &Analyzer{
		options:     options,
		fileCommits: make(map[string]int),
		pairCommits: make(map[FilePair]int),
	}
}

// Add records one commit. It has the signature of a HistoryReader callback.
func (a *Analyzer) Add(cs git.CommitChangeSet) error {
	a.commits++

	// Renames move history first so that a Modified entry listed before
	// its Renamed counts toward the followed file.
	for _, change := range cs.Changes {
		if r, ok := change.(git.Renamed); ok {
			a.rename(r.OldPath, r.NewPath)
		}
	}

	var files []string
	seen := make(map[string]struct{})
	for _, change := range cs.Changes {
		var path string
		switch ch := change.(type) {
		case git.Added:
			path = ch.Path
		case git.Modified:
			path = ch.Path
		case git.Renamed:
			path = ch.NewPath
		case git.Deleted:
			continue
		}
		key := strings.ToLower(path)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		a.fileCommits[key]++
		files = append(files, key)
	}

	// Very wide commits are usually mechanical and say little about coupling.
	if a.options.MaxFilesPerCommit > 0 && len(files) > a.options.MaxFilesPerCommit {
		a.skipped++
		return nil
	}
	for i := 0; i < len(files); i++ {
		for j := i + 1; j < len(files); j++ {
			a.pairCommits[NewFilePair(files[i], files[j])]++
		}
	}
	return nil
}

// rename moves the history recorded under oldPath to newPath. Any history
// already recorded under newPath belonged to the file the rename replaced
// and is dropped.
func (a *Analyzer) rename(oldPath, newPath string) {
	from, to := strings.ToLower(oldPath), strings.ToLower(newPath)
	n, ok := a.fileCommits[from]
	if !ok || from == to {
		return
	}
	delete(a.fileCommits, from)
	a.fileCommits[to] = n

	moved := make(map[FilePair]int)
	for pair, count := range a.pairCommits {
		switch to {
		case pair.FileA, pair.FileB:
			delete(a.pairCommits, pair)
			continue
		}
		var other string
		switch from {
		case pair.FileA:
			other = pair.FileB
		case pair.FileB:
			other = pair.FileA
		default:
			continue
		}
		delete(a.pairCommits, pair)
		moved[NewFilePair(other, to)] = count
	}
	for pair, count := range moved {
		a.pairCommits[pair] = count
	}
}

// Analyze adds every change set and returns the result.
func (a *Analyzer) Analyze(changeSets []git.CommitChangeSet) Result {
	for _, cs := range changeSets {
		_ = a.Add(cs)
	}
	return a.Result()
}

// Result computes coupling metrics for the pairs that pass the thresholds,
// strongest first.
func (a *Analyzer) Result() Result {
	var couplings []ChangeCoupling
	for pair, co := range a.pairCommits {
		if co < a.options.MinCoCommits {
			continue
		}

		commitsA := a.fileCommits[pair.FileA]
		commitsB := a.fileCommits[pair.FileB]
		union := commitsA + commitsB - co
		jaccard := float64(co) / float64(union)
		if jaccard < a.options.MinJaccardThreshold {
			continue
		}

		total := float64(a.commits)
		supportA := float64(commitsA) / total
		supportB := float64(commitsB) / total
		supportAB := float64(co) / total

		couplings = append(couplings, ChangeCoupling{
			FileA:              pair.FileA,
			FileB:              pair.FileB,
			CoCommitCount:      co,
			FileACommitCount:   commitsA,
			FileBCommitCount:   commitsB,
			JaccardCoefficient: jaccard,
			Confidence:         float64(co) / float64(commitsA),
			Lift:               supportAB / (supportA * supportB),
		})
	}

	slices.SortFunc(couplings, func(x, y ChangeCoupling) int {
		return cmp.Or(
			cmp.Compare(y.JaccardCoefficient, x.JaccardCoefficient),
			cmp.Compare(y.CoCommitCount, x.CoCommitCount),
			cmp.Compare(x.FileA, y.FileA),
			cmp.Compare(x.FileB, y.FileB),
		)
	})

	if a.options.TopPairs > 0 && len(couplings) > a.options.TopPairs {
		couplings = couplings[:a.options.TopPairs]
	}

	return Result{
		Couplings:      couplings,
		TotalCommits:   a.commits,
		TotalFiles:     len(a.fileCommits),
		TotalPairs:     len(a.pairCommits),
		SkippedCommits: a.skipped,
	}
}
