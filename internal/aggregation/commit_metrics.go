package aggregation

import (
	"strings"
	"time"

	"github.com/masmgr/gitcommits-go/internal/entropy"
	"github.com/masmgr/gitcommits-go/internal/git"
)

// CommitMetrics holds diffusion, size, and entropy metrics for a single commit.
type CommitMetrics struct {
	SHA            string
	When           time.Time
	Author         git.AuthorInfo
	Message        string
	FileCount      int // NF: Number of distinct files
	DirectoryCount int // ND: Number of directories
	SubsystemCount int // NS: Number of subsystems (top-level directories)
	Added          int
	Modified       int
	Deleted        int
	Renamed        int
	BytesAdded     int64   // Added sizes plus growth of modified files
	BytesRemoved   int64   // Deleted sizes plus shrinkage of modified files
	SizeEntropy    float64 // Normalized Shannon entropy of byte churn
}

// NetDelta returns how many bytes the commit added to the tree.
func (c *CommitMetrics) NetDelta() int64 {
	return c.BytesAdded - c.BytesRemoved
}

// TotalChurn returns the total bytes written or removed.
func (c *CommitMetrics) TotalChurn() int64 {
	return c.BytesAdded + c.BytesRemoved
}

// ChangeCount returns the number of classified changes.
func (c *CommitMetrics) ChangeCount() int {
	return c.Added + c.Modified + c.Deleted + c.Renamed
}

// CommitMetricsCalculator calculates diffusion, size, and entropy metrics for commits.
type CommitMetricsCalculator struct {
	entropyCalculator *entropy.Calculator
}

// NewCommitMetricsCalculator creates a new commit metrics calculator.
func NewCommitMetricsCalculator() *CommitMetricsCalculator {
	return &CommitMetricsCalculator{
		entropyCalculator: entropy.NewCalculator(),
	}
}

// Calculate computes metrics for a single commit change set.
func (c *CommitMetricsCalculator) Calculate(changeSet git.CommitChangeSet) CommitMetrics {
	commit := changeSet.Commit
	m := CommitMetrics{
		SHA:     commit.SHA,
		When:    commit.When,
		Author:  commit.Author,
		Message: truncateMessage(commit.Message),
	}

	files := make(map[string]struct{})
	directories := make(map[string]struct{})
	subsystems := make(map[string]struct{})

	for _, change := range changeSet.Changes {
		switch ch := change.(type) {
		case git.Added:
			m.Added++
			m.BytesAdded += ch.Size
		case git.Deleted:
			m.Deleted++
			m.BytesRemoved += ch.Size
		case git.Modified:
			m.Modified++
			if d := ch.Delta(); d > 0 {
				m.BytesAdded += d
			} else {
				m.BytesRemoved -= d
			}
		case git.Renamed:
			m.Renamed++
		}

		path := currentPath(change)
		files[path] = struct{}{}

		// Extract directory and subsystem from path
		dir, subsystem := extractPathComponents(path)
		if dir != "" {
			directories[strings.ToLower(dir)] = struct{}{}
		}
		if subsystem != "" {
			subsystems[strings.ToLower(subsystem)] = struct{}{}
		}
	}

	m.FileCount = len(files)
	m.DirectoryCount = len(directories)
	m.SubsystemCount = len(subsystems)
	if m.SubsystemCount == 0 && m.FileCount > 0 {
		m.SubsystemCount = 1
	}
	m.SizeEntropy = c.entropyCalculator.CalculateCommitEntropy(changeSet.Changes)
	return m
}

// CalculateAll computes metrics for all commit change sets.
func (c *CommitMetricsCalculator) CalculateAll(changeSets []git.CommitChangeSet) []CommitMetrics {
	results := make([]CommitMetrics, 0, len(changeSets))
	for _, cs := range changeSets {
		results = append(results, c.Calculate(cs))
	}
	return results
}

// currentPath is the path a change leaves behind: the new path of a rename.
func currentPath(c git.Change) string {
	if r, ok := c.(git.Renamed); ok {
		return r.NewPath
	}
	paths := git.ChangePaths(c)
	if len(paths) == 0 {
		return ""
	}
	return paths[0]
}

// extractPathComponents extracts directory path and subsystem from a file path.
// Subsystem is the first directory component (e.g., "src", "tests", "docs").
func extractPathComponents(path string) (directory, subsystem string) {
	if path == "" {
		return "", ""
	}

	// Normalize path separators
	normalizedPath := path
	if strings.Contains(path, "\\") {
		normalizedPath = strings.ReplaceAll(path, "\\", "/")
	}

	lastSlash := strings.LastIndex(normalizedPath, "/")
	if lastSlash <= 0 {
		// File is in root directory
		return "", ""
	}

	directory = normalizedPath[:lastSlash]

	// Subsystem is the first directory component
	firstSlash := strings.Index(normalizedPath, "/")
	if firstSlash > 0 {
		subsystem = normalizedPath[:firstSlash]
	} else {
		subsystem = directory
	}

	return directory, subsystem
}

// truncateMessage truncates commit message to first line, max 100 chars.
func truncateMessage(message string) string {
	if message == "" {
		return ""
	}

	// Get first line
	firstNewline := strings.IndexAny(message, "\r\n")
	firstLine := message
	if firstNewline > 0 {
		firstLine = message[:firstNewline]
	}

	// Truncate if too long
	if len(firstLine) > 100 {
		return firstLine[:97] + "..."
	}

	return firstLine
}
