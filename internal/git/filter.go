package git

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PathFilter decides which paths are reported, from include/exclude globs.
// A nil *PathFilter accepts every path.
type PathFilter struct {
	include []string
	exclude []string
	cache   map[string]bool
}

// NewPathFilter validates the patterns and builds a filter.
// It returns nil when both pattern lists are empty.
func NewPathFilter(include, exclude []string) (*PathFilter, error) {
	if len(include) == 0 && len(exclude) == 0 {
		return nil, nil
	}
	for _, p := range exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	for _, p := range include {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid include pattern %q", p)
		}
	}
	return &PathFilter{
		include: include,
		exclude: exclude,
		cache:   make(map[string]bool),
	}, nil
}

// Matches checks if a path matches the include/exclude filters.
func (f *PathFilter) Matches(path string) bool {
	if f == nil {
		return true
	}

	// Normalize path separators
	path = strings.ReplaceAll(path, "\\", "/")

	if v, ok := f.cache[path]; ok {
		return v
	}
	v := f.match(path)
	f.cache[path] = v
	return v
}

func (f *PathFilter) match(path string) bool {
	// Check exclude patterns first
	for _, pattern := range f.exclude {
		if doublestar.MatchUnvalidated(pattern, path) {
			return false
		}
	}

	// If no include patterns, accept all
	if len(f.include) == 0 {
		return true
	}

	for _, pattern := range f.include {
		if doublestar.MatchUnvalidated(pattern, path) {
			return true
		}
	}
	return false
}

// MatchesDelta reports whether any path of the delta passes the filter.
// Both events of a rename with content change share this decision.
func (f *PathFilter) MatchesDelta(d Delta) bool {
	if f == nil {
		return true
	}
	for _, p := range d.Paths() {
		if f.Matches(p) {
			return true
		}
	}
	return false
}
