package match

import (
	"testing"
	"time"

	"github.com/masmgr/gitcommits-go/internal/git"
)

func TestNewMatcher(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		want     int
		wantErr  bool
	}{
		{name: "Valid patterns", patterns: []string{`\bfix(ed|es)?\b`, `\bbug\b`, `\bhotfix\b`}, want: 3},
		{name: "Invalid pattern", patterns: []string{`[invalid`}, wantErr: true},
		{name: "Empty", patterns: nil, want: 0},
		{name: "Skips blank patterns", patterns: []string{"fix", "", "  ", "bug"}, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatcher(tt.patterns)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(m.messages) != tt.want {
				t.Errorf("compiled %d patterns, expected %d", len(m.messages), tt.want)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	m, err := NewMatcher([]string{`\bfix(ed|es)?\b`, `\bbug\b`, `\bhotfix\b`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"matches fix", "fix: resolve null pointer", true},
		{"matches fixed", "Fixed the login flow", true},
		{"matches bug", "BUG in parser", true},
		{"matches hotfix", "hotfix for release", true},
		{"no match", "add new feature", false},
		{"no partial word", "prefix handling", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Match(tt.message); got != tt.want {
				t.Errorf("Match(%q) = %v, expected %v", tt.message, got, tt.want)
			}
		})
	}
}

func TestMatch_NoPatternsAcceptsAll(t *testing.T) {
	m, _ := NewMatcher(nil)
	if !m.Empty() {
		t.Error("Empty() = false, expected true")
	}
	if !m.Match("anything") {
		t.Error("Match() = false, expected true for empty matcher")
	}
}

func TestMatchCommit_Authors(t *testing.T) {
	m, err := NewMatcher([]string{"fix"})
	if err != nil {
		t.Fatal(err)
	}
	if m, err = m.WithAuthors([]string{`@example\.com>$`}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		message string
		email   string
		want    bool
	}{
		{"both match", "fix crash", "alice@example.com", true},
		{"author mismatch", "fix crash", "bob@other.org", false},
		{"message mismatch", "docs", "alice@example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := git.CommitInfo{
				Message: tt.message,
				Author:  git.AuthorInfo{Name: "Dev", Email: tt.email},
			}
			if got := m.MatchCommit(info); got != tt.want {
				t.Errorf("MatchCommit() = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestCounter(t *testing.T) {
	m, _ := NewMatcher([]string{`\bfix\b`})
	c := NewCounter(m)
	when := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	sets := []git.CommitChangeSet{
		{
			Commit: git.CommitInfo{SHA: "1", When: when, Message: "fix parser"},
			Changes: []git.Change{
				git.Modified{Path: "parser.go", OldSize: 10, NewSize: 12},
				git.Deleted{Path: "old.go", Size: 3},
			},
		},
		{
			Commit: git.CommitInfo{SHA: "2", When: when, Message: "fix rename"},
			Changes: []git.Change{
				git.Modified{Path: "lexer.go", OldSize: 1, NewSize: 2},
				git.Renamed{OldPath: "parser.go", NewPath: "lexer.go", Size: 2},
			},
		},
		{
			Commit:  git.CommitInfo{SHA: "3", When: when, Message: "feature"},
			Changes: []git.Change{git.Modified{Path: "parser.go", OldSize: 12, NewSize: 20}},
		},
	}
	for _, cs := range sets {
		if err := c.Add(cs); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	if c.Total != 2 {
		t.Errorf("Total = %d, expected 2", c.Total)
	}
	if _, ok := c.Files["parser.go"]; ok {
		t.Errorf("parser.go = %d, expected its count to move to lexer.go", c.Files["parser.go"])
	}
	// One from parser.go before the rename, one for the rename pair itself.
	if c.Files["lexer.go"] != 2 {
		t.Errorf("lexer.go = %d, expected 2", c.Files["lexer.go"])
	}
	if _, ok := c.Files["old.go"]; ok {
		t.Error("deleted file should not be counted")
	}
}

func TestCounter_EmptyMatcherCountsNothing(t *testing.T) {
	m, _ := NewMatcher(nil)
	c := NewCounter(m)
	_ = c.Add(git.CommitChangeSet{
		Commit:  git.CommitInfo{SHA: "1", Message: "fix"},
		Changes: []git.Change{git.Added{Path: "a", Size: 1}},
	})
	if c.Total != 0 {
		t.Errorf("Total = %d, expected 0", c.Total)
	}
}

func TestCounter_RenameInNonMatchingCommit(t *testing.T) {
	m, _ := NewMatcher([]string{`\bfix\b`})
	c := NewCounter(m)

	_ = c.Add(git.CommitChangeSet{
		Commit:  git.CommitInfo{SHA: "1", Message: "fix a"},
		Changes: []git.Change{git.Added{Path: "a.go", Size: 1}},
	})
	_ = c.Add(git.CommitChangeSet{
		Commit:  git.CommitInfo{SHA: "2", Message: "move"},
		Changes: []git.Change{git.Renamed{OldPath: "a.go", NewPath: "b.go", Size: 1}},
	})

	if c.Total != 1 {
		t.Errorf("Total = %d, expected 1", c.Total)
	}
	if c.Files["b.go"] != 1 {
		t.Errorf("b.go = %d, expected 1", c.Files["b.go"])
	}
	if _, ok := c.Files["a.go"]; ok {
		t.Error("a.go should have been renamed away")
	}
}
