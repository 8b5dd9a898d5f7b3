package match

import (
	"regexp"
	"strings"

	"github.com/masmgr/gitcommits-go/internal/git"
)

// Matcher selects commits by matching their messages and authors against
// case-insensitive regular expressions.
type Matcher struct {
	messages []*regexp.Regexp
	authors  []*regexp.Regexp
}

// NewMatcher compiles message patterns. Blank patterns are ignored.
func NewMatcher(patterns []string) (*Matcher, error) {
	messages, err := compile(patterns)
	if err != nil {
		return nil, err
	}
	return &Matcher{messages: messages}, nil
}

// WithAuthors adds author patterns, matched against "Name <email>".
func (m *Matcher) WithAuthors(patterns []string) (*Matcher, error) {
	authors, err := compile(patterns)
	if err != nil {
		return nil, err
	}
	m.authors = append(m.authors, authors...)
	return m, nil
}

func compile(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "(?i)") {
			p = "(?i)" + p
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// Empty reports whether the matcher has no patterns and accepts everything.
func (m *Matcher) Empty() bool {
	return len(m.messages) == 0 && len(m.authors) == 0
}

// Match reports whether message matches any message pattern. A matcher
// without message patterns matches every message.
func (m *Matcher) Match(message string) bool {
	return anyMatch(m.messages, message)
}

// MatchCommit reports whether a commit passes both the message and the
// author patterns. It can be used as git.ReadOptions.Match.
func (m *Matcher) MatchCommit(info git.CommitInfo) bool {
	if !m.Match(info.Message) {
		return false
	}
	return anyMatch(m.authors, info.Author.Name+" <"+info.Author.Email+">")
}

func anyMatch(patterns []*regexp.Regexp, s string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
