// Package scoring ranks files by how active they have been over a history
// read, combining commit frequency, byte churn, recency, bursts, ownership
// spread and matching (bug-fix) commits into one weighted score.
package scoring

import (
	"time"

	"github.com/masmgr/gitcommits-go/config"
	"github.com/masmgr/gitcommits-go/internal/aggregation"
)

// Breakdown holds the weighted contribution of each component.
type Breakdown struct {
	Commit    float64
	Churn     float64
	Recency   float64
	Burst     float64
	Ownership float64
	Fixes     float64
}

// Total returns the sum of all components.
func (b Breakdown) Total() float64 {
	return b.Commit + b.Churn + b.Recency + b.Burst + b.Ownership + b.Fixes
}

// Context holds the per-metric bounds used to scale every file.
type Context struct {
	Commits Bounds
	Churn   Bounds
	Fixes   Bounds
}

// NewContext observes every file. fixes may be nil.
func NewContext(metrics map[string]*aggregation.FileMetrics, fixes map[string]int) Context {
	var ctx Context
	for path, fm := range metrics {
		ctx.Commits.Observe(float64(fm.CommitCount))
		ctx.Churn.Observe(float64(fm.ChurnTotal()))
		ctx.Fixes.Observe(float64(fixes[path]))
	}
	return ctx
}

// Scorer computes activity scores.
type Scorer struct {
	options config.ActivityConfig
}

// NewScorer creates a scorer with the given weights.
func NewScorer(options config.ActivityConfig) *Scorer {
	return &Scorer{options: options}
}

// Score returns the breakdown for one file. until is the end of the read
// and fixes the number of matching commits that touched the file.
func (s *Scorer) Score(fm *aggregation.FileMetrics, ctx Context, fixes int, until time.Time) Breakdown {
	w := s.options.Weights
	age := until.Sub(fm.LastModifiedAt).Hours() / 24
	return Breakdown{
		Commit:  w.Commit * LogScale(float64(fm.CommitCount), ctx.Commits),
		Churn:   w.Churn * LogScale(float64(fm.ChurnTotal()), ctx.Churn),
		Recency: w.Recency * HalfLife(age, s.options.HalfLifeDays),
		Burst:   w.Burst * fm.BurstScore,
		// A file many people touch scores higher than one with a single owner.
		Ownership: w.Ownership * (1 - fm.OwnershipRatio()),
		Fixes:     w.Fixes * LogScale(float64(fixes), ctx.Fixes),
	}
}

// Compute sets ActivityScore on every file. BurstScore must already be set
// for the burst component to count.
func (s *Scorer) Compute(metrics map[string]*aggregation.FileMetrics, fixes map[string]int, until time.Time) {
	ctx := NewContext(metrics, fixes)
	for path, fm := range metrics {
		fm.ActivityScore = s.Score(fm, ctx, fixes[path], until).Total()
	}
}
