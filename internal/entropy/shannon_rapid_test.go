package entropy

import (
	"fmt"
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/masmgr/gitcommits-go/internal/git"
)

// --- Generators ---

func genChange() *rapid.Generator[git.Change] {
	return rapid.Custom(func(t *rapid.T) git.Change {
		path := fmt.Sprintf("file%d.go", rapid.IntRange(0, 100).Draw(t, "id"))
		size := rapid.Int64Range(0, 1000).Draw(t, "size")
		switch rapid.IntRange(0, 3).Draw(t, "kind") {
		case 0:
			return git.Added{Path: path, Size: size}
		case 1:
			return git.Deleted{Path: path, Size: size}
		case 2:
			return git.Renamed{OldPath: "old/" + path, NewPath: path, Size: size}
		default:
			return git.Modified{Path: path, OldSize: size, NewSize: rapid.Int64Range(0, 1000).Draw(t, "new")}
		}
	})
}

func genChanges() *rapid.Generator[[]git.Change] {
	return rapid.SliceOfN(genChange(), 0, 50)
}

// --- Property Tests ---

func TestRapidEntropy_OutputBounds(t *testing.T) {
	calc := NewCalculator()

	rapid.Check(t, func(t *rapid.T) {
		changes := genChanges().Draw(t, "changes")

		result := calc.CalculateCommitEntropy(changes)

		if result < 0.0 || result > 1.0 {
			t.Fatalf("CalculateCommitEntropy returned %f, expected in [0,1]", result)
		}
	})
}

func TestRapidEntropy_UniformMaximal(t *testing.T) {
	calc := NewCalculator()

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 20).Draw(t, "n")
		size := rapid.Int64Range(1, 500).Draw(t, "size")

		changes := make([]git.Change, n)
		for i := 0; i < n; i++ {
			changes[i] = git.Added{Path: fmt.Sprintf("file%d.go", i), Size: size}
		}

		result := calc.CalculateCommitEntropy(changes)

		if math.Abs(result-1.0) > 0.001 {
			t.Fatalf("Uniform distribution with %d files (size=%d) gave entropy=%f, expected 1.0",
				n, size, result)
		}
	})
}

func TestRapidEntropy_PermutationInvariant(t *testing.T) {
	calc := NewCalculator()

	rapid.Check(t, func(t *rapid.T) {
		changes := genChanges().Draw(t, "changes")
		n := len(changes)

		original := calc.CalculateCommitEntropy(changes)

		reversed := make([]git.Change, n)
		for i := 0; i < n; i++ {
			reversed[i] = changes[n-1-i]
		}
		reversedResult := calc.CalculateCommitEntropy(reversed)

		if math.Abs(original-reversedResult) > 1e-9 {
			t.Fatalf("Permutation changed entropy: original=%f, reversed=%f", original, reversedResult)
		}
	})
}

func TestRapidEntropy_ScaleInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 10).Draw(t, "n")
		k := rapid.Int64Range(2, 100).Draw(t, "k")

		weights := make([]int64, n)
		scaled := make([]int64, n)
		hasChurn := false
		for i := 0; i < n; i++ {
			w := rapid.Int64Range(0, 100).Draw(t, fmt.Sprintf("w%d", i))
			if w > 0 {
				hasChurn = true
			}
			weights[i] = w
			scaled[i] = w * k
		}

		if !hasChurn {
			return // Both would return 1.0 (zero churn), skip
		}

		original := Normalized(weights)
		scaledResult := Normalized(scaled)

		if math.Abs(original-scaledResult) > 1e-9 {
			t.Fatalf("Scale invariance violated: original=%f, scaled(k=%d)=%f", original, k, scaledResult)
		}
	})
}

func TestRapidEntropy_SingleFileZero(t *testing.T) {
	calc := NewCalculator()

	rapid.Check(t, func(t *rapid.T) {
		change := genChange().Draw(t, "change")

		result := calc.CalculateCommitEntropy([]git.Change{change})

		if result != 0.0 {
			t.Fatalf("Single file entropy = %f, expected 0.0", result)
		}
	})
}
