package output

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/masmgr/gitcommits-go/config"
	"github.com/masmgr/gitcommits-go/internal/git"
)

func configForCoupling() config.CouplingConfig {
	return config.CouplingConfig{MinCoCommits: 1, MaxFilesPerCommit: 50, TopPairs: 10}
}

func TestLimitTop(t *testing.T) {
	items := []int{1, 2, 3, 4}
	tests := []struct {
		name string
		top  int
		want int
	}{
		{name: "No limit", top: 0, want: 4},
		{name: "Negative", top: -1, want: 4},
		{name: "Below length", top: 2, want: 2},
		{name: "Above length", top: 10, want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(limitTop(items, tt.top)); got != tt.want {
				t.Errorf("len(limitTop(_, %d)) = %d, expected %d", tt.top, got, tt.want)
			}
		})
	}
}

func TestDateRangeLabelAndValue(t *testing.T) {
	until := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	label, value := dateRangeLabelAndValue(&since, until)
	if label != "Period" || value != "2025-01-01 to 2025-03-01" {
		t.Errorf("got %q %q", label, value)
	}
	label, value = dateRangeLabelAndValue(nil, until)
	if label != "Until" || value != "2025-03-01" {
		t.Errorf("got %q %q", label, value)
	}
}

func TestTruncateMessage(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		maxLen   int
		expected string
	}{
		{name: "Short message", msg: "hello", maxLen: 40, expected: "hello"},
		{name: "Exact length", msg: "1234567890", maxLen: 10, expected: "1234567890"},
		{name: "Over max length", msg: "a very long message here", maxLen: 10, expected: "a very ..."},
		{name: "Empty message", msg: "", maxLen: 40, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := truncateMessage(tt.msg, tt.maxLen); result != tt.expected {
				t.Errorf("truncateMessage(%q, %d) = %q, expected %q", tt.msg, tt.maxLen, result, tt.expected)
			}
		})
	}
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Pipe", input: "a|b", expected: "a\\|b"},
		{name: "Asterisk", input: "a*b", expected: "a\\*b"},
		{name: "Underscore", input: "a_b", expected: "a\\_b"},
		{name: "Backtick", input: "a`b", expected: "a\\`b"},
		{name: "No specials", input: "plain text", expected: "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := escapeMarkdown(tt.input); result != tt.expected {
				t.Errorf("escapeMarkdown(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n         int64
		bytes     string
		withDelta string
	}{
		{0, "0 B", "0 B"},
		{512, "512 B", "+512 B"},
		{2048, "2.0 KiB", "+2.0 KiB"},
		{-2048, "-2.0 KiB", "-2.0 KiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.bytes {
			t.Errorf("formatBytes(%d) = %q, expected %q", tt.n, got, tt.bytes)
		}
		if got := formatDelta(tt.n); got != tt.withDelta {
			t.Errorf("formatDelta(%d) = %q, expected %q", tt.n, got, tt.withDelta)
		}
	}
}

func TestFlattenChange(t *testing.T) {
	tests := []struct {
		change git.Change
		want   changeRow
	}{
		{git.Added{Path: "a", Size: 3}, changeRow{Kind: git.ChangeKindAdded, Path: "a", NewSize: 3}},
		{git.Modified{Path: "m", OldSize: 3, NewSize: 5}, changeRow{Kind: git.ChangeKindModified, Path: "m", OldSize: 3, NewSize: 5}},
		{git.Deleted{Path: "d", Size: 4}, changeRow{Kind: git.ChangeKindDeleted, Path: "d", OldSize: 4}},
		{git.Renamed{OldPath: "o", NewPath: "n", Size: 7}, changeRow{Kind: git.ChangeKindRenamed, Path: "n", OldPath: "o", OldSize: 7, NewSize: 7}},
	}
	for _, tt := range tests {
		got := flattenChange(tt.change)
		if got != tt.want {
			t.Errorf("flattenChange(%v) = %+v, expected %+v", tt.change, got, tt.want)
		}
		if got.Delta() != git.SizeDelta(tt.change) {
			t.Errorf("Delta() = %d, expected %d", got.Delta(), git.SizeDelta(tt.change))
		}
	}
}

func TestConfigureColor(t *testing.T) {
	defer func() { color.NoColor = true }()

	if err := ConfigureColor("always", os.Stdout); err != nil {
		t.Fatal(err)
	}
	if color.NoColor {
		t.Error("always: NoColor = true")
	}
	if err := ConfigureColor("never", os.Stdout); err != nil {
		t.Fatal(err)
	}
	if !color.NoColor {
		t.Error("never: NoColor = false")
	}

	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := ConfigureColor("auto", f); err != nil {
		t.Fatal(err)
	}
	if !color.NoColor {
		t.Error("auto on a regular file: NoColor = false")
	}

	if err := ConfigureColor("rainbow", os.Stdout); err == nil {
		t.Error("expected error for invalid mode")
	}
}

func TestOpenOutput(t *testing.T) {
	out, closeFn, err := OpenOutput("")
	if err != nil || out != os.Stdout {
		t.Fatalf("OpenOutput(\"\") = %v, %v", out, err)
	}
	if err := closeFn(); err != nil {
		t.Errorf("close stdout: %v", err)
	}

	path := filepath.Join(t.TempDir(), "report.txt")
	out, closeFn, err = OpenOutput(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := out.Write([]byte("ok")); err != nil {
		t.Fatal(err)
	}
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "ok" {
		t.Errorf("file contents = %q, %v", data, err)
	}
}
