package scoring

import "math"

// Bounds is the observed range of one metric across all files.
type Bounds struct {
	Min   float64
	Max   float64
	valid bool
}

// Observe widens the bounds to include v.
func (b *Bounds) Observe(v float64) {
	if !b.valid {
		b.Min, b.Max, b.valid = v, v, true
		return
	}
	b.Min = math.Min(b.Min, v)
	b.Max = math.Max(b.Max, v)
}

// flat reports whether every observed value was the same.
func (b Bounds) flat() bool {
	return math.Abs(b.Max-b.Min) < 1e-10
}

// LogScale maps v into [0,1] on a log(1+x) scale between the bounds, so a
// few very large values do not flatten everything else. With flat bounds any
// positive value scores 1.
func LogScale(v float64, b Bounds) float64 {
	if b.flat() {
		return step(v)
	}
	lo, hi := math.Log1p(math.Max(b.Min, 0)), math.Log1p(math.Max(b.Max, 0))
	if hi <= lo {
		return step(v)
	}
	return clamp((math.Log1p(math.Max(v, 0)) - lo) / (hi - lo))
}

// LinearScale maps v into [0,1] linearly between the bounds. Negative values
// are allowed, which LogScale cannot handle.
func LinearScale(v float64, b Bounds) float64 {
	if b.flat() {
		return step(v)
	}
	return clamp((v - b.Min) / (b.Max - b.Min))
}

// HalfLife returns exp(-ln2 * age/halfLife): 1 for age 0, 0.5 after one half
// life. Negative ages count as 0; a non-positive half life means 30 days.
func HalfLife(ageDays float64, halfLifeDays int) float64 {
	if halfLifeDays <= 0 {
		halfLifeDays = 30
	}
	ageDays = math.Max(ageDays, 0)
	return clamp(math.Exp(-math.Ln2 * ageDays / float64(halfLifeDays)))
}

func step(v float64) float64 {
	if v > 0 {
		return 1
	}
	return 0
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
