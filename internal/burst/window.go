package burst

import (
	"slices"
	"time"

	"github.com/masmgr/gitcommits-go/internal/aggregation"
)

// DefaultWindowDays is the window used when none is configured.
const DefaultWindowDays = 7

// Window is the densest stretch of activity found in a series of commit times.
type Window struct {
	Start time.Time
	End   time.Time
	Count int
	Total int
}

// Score returns the share of all commits that fall inside the window.
func (w Window) Score() float64 {
	if w.Total == 0 {
		return 0
	}
	return float64(w.Count) / float64(w.Total)
}

// Calculator finds bursts of commits with a sliding window.
type Calculator struct {
	window time.Duration
}

// NewCalculator creates a calculator for windows of windowDays days.
// Non-positive values select DefaultWindowDays.
func NewCalculator(windowDays int) *Calculator {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Calculator{window: time.Duration(windowDays) * 24 * time.Hour}
}

// Compute sets BurstScore on every file.
func (c *Calculator) Compute(metrics map[string]*aggregation.FileMetrics) {
	for _, fm := range metrics {
		fm.BurstScore = c.Busiest(fm.CommitTimes).Score()
	}
}

// CommitWindow returns the busiest window over a list of commits.
func (c *Calculator) CommitWindow(commits []aggregation.CommitMetrics) Window {
	times := make([]time.Time, len(commits))
	for i, cm := range commits {
		times[i] = cm.When
	}
	return c.Busiest(times)
}

// CalculateBurstScore returns the fraction of commits in the busiest window.
// A single commit scores 1 and no commits score 0.
func (c *Calculator) CalculateBurstScore(commitTimes []time.Time) float64 {
	return c.Busiest(commitTimes).Score()
}

// Busiest returns the window holding the most commits. Ties go to the
// earliest window. The input is not modified.
func (c *Calculator) Busiest(commitTimes []time.Time) Window {
	if len(commitTimes) == 0 {
		return Window{}
	}

	times := slices.Clone(commitTimes)
	if !slices.IsSortedFunc(times, time.Time.Compare) {
		slices.SortFunc(times, time.Time.Compare)
	}

	best := Window{Start: times[0], End: times[0], Count: 1, Total: len(times)}
	left := 0
	for right := range times {
		for times[right].Sub(times[left]) > c.window {
			left++
		}
		if n := right - left + 1; n > best.Count {
			best.Start, best.End, best.Count = times[left], times[right], n
		}
	}
	return best
}
