package scoring

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestBounds_Observe(t *testing.T) {
	var b Bounds
	for _, v := range []float64{5, -2, 9, 3} {
		b.Observe(v)
	}
	if b.Min != -2 || b.Max != 9 {
		t.Errorf("Bounds = {%g, %g}, expected {-2, 9}", b.Min, b.Max)
	}

	var single Bounds
	single.Observe(4)
	if single.Min != 4 || single.Max != 4 {
		t.Errorf("single observation = {%g, %g}, expected {4, 4}", single.Min, single.Max)
	}
}

func TestLogScale(t *testing.T) {
	b := Bounds{Min: 0, Max: 99}
	tests := []struct {
		name  string
		value float64
		b     Bounds
		want  float64
	}{
		{name: "AtMin", value: 0, b: b, want: 0},
		{name: "AtMax", value: 99, b: b, want: 1},
		{name: "Midpoint on log scale", value: 9, b: b, want: 0.5},
		{name: "AboveMax clamps", value: 1000, b: b, want: 1},
		{name: "Flat positive", value: 3, b: Bounds{Min: 3, Max: 3}, want: 1},
		{name: "Flat zero", value: 0, b: Bounds{}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LogScale(tt.value, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("LogScale(%g) = %g, expected %g", tt.value, got, tt.want)
			}
		})
	}
}

func TestLinearScale_NegativeRange(t *testing.T) {
	b := Bounds{Min: -100, Max: 100}
	if got := LinearScale(0, b); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("LinearScale(0) = %g, expected 0.5", got)
	}
	if got := LinearScale(-100, b); got != 0 {
		t.Errorf("LinearScale(min) = %g, expected 0", got)
	}
}

func TestHalfLife(t *testing.T) {
	tests := []struct {
		name     string
		age      float64
		halfLife int
		want     float64
	}{
		{name: "Fresh", age: 0, halfLife: 30, want: 1},
		{name: "OneHalfLife", age: 30, halfLife: 30, want: 0.5},
		{name: "TwoHalfLives", age: 20, halfLife: 10, want: 0.25},
		{name: "FutureCountsAsFresh", age: -5, halfLife: 30, want: 1},
		{name: "DefaultHalfLife", age: 30, halfLife: 0, want: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HalfLife(tt.age, tt.halfLife); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("HalfLife(%g, %d) = %g, expected %g", tt.age, tt.halfLife, got, tt.want)
			}
		})
	}
}

func TestRapidLogScale_MonotoneWithinUnitRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lo := rapid.Float64Range(0, 1e6).Draw(t, "lo")
		hi := lo + rapid.Float64Range(1, 1e6).Draw(t, "spread")
		b := Bounds{Min: lo, Max: hi}
		x := rapid.Float64Range(0, hi*2).Draw(t, "x")
		y := rapid.Float64Range(x, hi*2+1).Draw(t, "y")

		sx, sy := LogScale(x, b), LogScale(y, b)
		if sx < 0 || sx > 1 || sy < 0 || sy > 1 {
			t.Fatalf("scores out of range: %g, %g", sx, sy)
		}
		if sy < sx-1e-12 {
			t.Fatalf("LogScale(%g)=%g > LogScale(%g)=%g", x, sx, y, sy)
		}
	})
}

func TestRapidHalfLife_Decreasing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		halfLife := rapid.IntRange(1, 365).Draw(t, "halfLife")
		a := rapid.Float64Range(0, 3650).Draw(t, "a")
		b := rapid.Float64Range(a, 3651).Draw(t, "b")
		if HalfLife(b, halfLife) > HalfLife(a, halfLife)+1e-12 {
			t.Fatalf("HalfLife increased from age %g to %g", a, b)
		}
	})
}
