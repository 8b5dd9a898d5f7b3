package entropy

import (
	"math"

	"github.com/masmgr/gitcommits-go/internal/git"
)

// Calculator measures how evenly a commit's byte churn is spread over the
// files it touches, after Hassan (2009) "Predicting Faults Using the
// Complexity of Code Changes".
type Calculator struct{}

// NewCalculator creates a new entropy calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// ByteChurn returns the number of bytes a change writes or removes.
// A pure rename moves content without churning it.
func ByteChurn(c git.Change) int64 {
	switch c := c.(type) {
	case git.Added:
		return c.Size
	case git.Deleted:
		return c.Size
	case git.Modified:
		d := c.Delta()
		if d < 0 {
			return -d
		}
		return d
	default:
		return 0
	}
}

// primaryPath is the path a change is accounted to: the new path of a rename.
func primaryPath(c git.Change) string {
	if r, ok := c.(git.Renamed); ok {
		return r.NewPath
	}
	paths := git.ChangePaths(c)
	if len(paths) == 0 {
		return ""
	}
	return paths[0]
}

// CalculateCommitEntropy calculates the normalized Shannon entropy of a
// commit's byte churn per file. Changes to the same path are pooled, so a
// Modified/Renamed pair counts as one file.
// Returns a value between 0 and 1:
//   - 0 = focused change (single file or all churn in one file)
//   - 1 = highly dispersed change (churn evenly distributed)
func (c *Calculator) CalculateCommitEntropy(changes []git.Change) float64 {
	if len(changes) == 0 {
		return 0.0
	}

	perFile := make(map[string]int64, len(changes))
	order := make([]string, 0, len(changes))
	for _, ch := range changes {
		p := primaryPath(ch)
		if _, ok := perFile[p]; !ok {
			order = append(order, p)
		}
		perFile[p] += ByteChurn(ch)
	}

	weights := make([]int64, 0, len(order))
	for _, p := range order {
		weights = append(weights, perFile[p])
	}
	return Normalized(weights)
}

// Normalized returns the Shannon entropy of weights divided by log2(n).
// A single weight has no distribution and yields 0; all-zero weights are
// treated as uniform and yield 1.
func Normalized(weights []int64) float64 {
	if len(weights) <= 1 {
		return 0.0
	}

	var total int64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return 1.0
	}

	// Shannon entropy: -Σ(p_i × log2(p_i))
	entropy := 0.0
	for _, w := range weights {
		if w > 0 {
			p := float64(w) / float64(total)
			entropy -= p * math.Log2(p)
		}
	}

	maxEntropy := math.Log2(float64(len(weights)))
	normalized := entropy / maxEntropy

	// Clamp to [0, 1] for floating point noise.
	if normalized < 0 {
		return 0.0
	}
	if normalized > 1 {
		return 1.0
	}
	return normalized
}
