package match

import "github.com/masmgr/gitcommits-go/internal/git"

// Counter counts, per path, the matching commits that touched each file.
type Counter struct {
	matcher *Matcher

	Commits map[string]struct{}
	Files   map[string]int
	Total   int
}

// NewCounter creates a counter for commits accepted by m.
func NewCounter(m *Matcher) *Counter {
	return &Counter{
		matcher: m,
		Commits: make(map[string]struct{}),
		Files:   make(map[string]int),
	}
}

// Add records one commit. It has the signature of a HistoryReader callback.
// Deleted files are not counted. Counts follow renames in every commit,
// matching or not, so they stay keyed by each file's latest path.
func (c *Counter) Add(cs git.CommitChangeSet) error {
	for _, change := range cs.Changes {
		if r, ok := change.(git.Renamed); ok {
			c.rename(r.OldPath, r.NewPath)
		}
	}
	if c.matcher.Empty() || !c.matcher.MatchCommit(cs.Commit) {
		return nil
	}
	c.Commits[cs.Commit.SHA] = struct{}{}
	c.Total++

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
		default:
			continue
		}
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		c.Files[path]++
	}
	return nil
}

func (c *Counter) rename(oldPath, newPath string) {
	n, ok := c.Files[oldPath]
	if !ok || oldPath == newPath {
		return
	}
	delete(c.Files, oldPath)
	c.Files[newPath] = n
}
