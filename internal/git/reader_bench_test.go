package git

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

func createBenchRepo(tb testing.TB, commits, files, vendorLines int) *testRepo {
	tb.Helper()

	tr := newTestRepo(tb)
	base := tr.now

	tr.write("src/file000.txt", "initial\n")
	if vendorLines > 0 {
		tr.write("vendor/big.txt", "initial\n")
	}
	tr.commitAt("initial", base)

	for i := 0; i < commits; i++ {
		when := base.Add(time.Duration(i+1) * time.Hour)

		for f := 0; f < files; f++ {
			rel := fmt.Sprintf("src/file%03d.txt", f)
			// Keep diffs small-ish but non-empty.
			tr.write(rel, fmt.Sprintf("commit=%d file=%d\nline\n", i, f))
		}

		if vendorLines > 0 {
			var sb strings.Builder
			sb.Grow(vendorLines * 16)
			for l := 0; l < vendorLines; l++ {
				sb.WriteString("x")
				sb.WriteString(fmt.Sprintf("%d", i))
				sb.WriteByte('\n')
			}
			tr.write("vendor/big.txt", sb.String())
		}

		tr.commitAt(fmt.Sprintf("commit %d", i), when)
	}

	return tr
}

func benchRead(b *testing.B, tr *testRepo, mutate func(*ReadOptions)) {
	b.Helper()
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		opts := DefaultReadOptions()
		opts.RepoPath = tr.dir
		mutate(&opts)

		reader, err := NewHistoryReader(opts)
		if err != nil {
			b.Fatalf("NewHistoryReader: %v", err)
		}
		n := 0
		err = reader.ReadChanges(context.Background(), func(cs CommitChangeSet) error {
			n += len(cs.Changes)
			return nil
		})
		if err != nil {
			b.Fatalf("ReadChanges: %v", err)
		}
		if n == 0 {
			b.Fatalf("unexpected empty changesets")
		}
	}
}

func BenchmarkHistoryReader_ReadChanges_Full(b *testing.B) {
	tr := createBenchRepo(b, 80, 25, 0)
	benchRead(b, tr, func(o *ReadOptions) { o.Repo.RenameDetect = RenameDetectAggressive })
}

func BenchmarkHistoryReader_ReadChanges_NoRenames(b *testing.B) {
	tr := createBenchRepo(b, 80, 25, 0)
	benchRead(b, tr, func(o *ReadOptions) { o.Repo.RenameDetect = RenameDetectOff })
}

func BenchmarkHistoryReader_ReadChanges_Topological(b *testing.B) {
	tr := createBenchRepo(b, 80, 25, 0)
	benchRead(b, tr, func(o *ReadOptions) { o.Order = SortTopological | SortReverse })
}

func BenchmarkHistoryReader_ReadChanges_ExcludeLargePath(b *testing.B) {
	tr := createBenchRepo(b, 80, 5, 4000)
	benchRead(b, tr, func(o *ReadOptions) { o.Repo.Exclude = []string{"vendor/**"} })
}

func BenchmarkHistoryReader_ReadChanges_IncludeLargePath(b *testing.B) {
	tr := createBenchRepo(b, 80, 5, 4000)
	benchRead(b, tr, func(*ReadOptions) {})
}

// BenchmarkHistoryReader_ReadChanges_TimeWindow measures the early termination
// of newest-first time walks: 200 total commits but only the last 40 are
// within the Since window.
func BenchmarkHistoryReader_ReadChanges_TimeWindow(b *testing.B) {
	const totalCommits = 200
	tr := createBenchRepo(b, totalCommits, 5, 0)
	since := tr.now.Add((totalCommits - 40) * time.Hour)

	benchRead(b, tr, func(o *ReadOptions) {
		o.Order = SortTime
		o.Since = &since
		o.Repo.RenameDetect = RenameDetectSimple
	})
}
