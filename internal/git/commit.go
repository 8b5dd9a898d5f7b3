package git

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Commit is a handle to one commit of a Repository.
type Commit struct {
	repo   *Repository
	commit *object.Commit
}

func newCommit(repo *Repository, c *object.Commit) *Commit {
	return &Commit{repo: repo, commit: c}
}

// ID returns the commit's hex object id.
func (c *Commit) ID() string {
	return c.commit.Hash.String()
}

// Hash returns the commit's object id.
func (c *Commit) Hash() plumbing.Hash {
	return c.commit.Hash
}

// MessageBytes returns the raw message, which is not guaranteed to be UTF-8.
func (c *Commit) MessageBytes() []byte {
	return []byte(c.commit.Message)
}

// Message returns the message and whether it is valid UTF-8.
func (c *Commit) Message() (string, bool) {
	return c.commit.Message, utf8.ValidString(c.commit.Message)
}

// MessageLossy returns the message with invalid UTF-8 replaced by U+FFFD.
func (c *Commit) MessageLossy() string {
	return lossy(c.commit.Message)
}

// Summary returns the first non-empty line of the message.
func (c *Commit) Summary() string {
	msg := strings.TrimSpace(c.MessageLossy())
	if idx := strings.IndexByte(msg, '\n'); idx != -1 {
		msg = msg[:idx]
	}
	return strings.TrimSpace(msg)
}

// Author returns the author signature.
func (c *Commit) Author() Signature {
	return Signature{sig: c.commit.Author}
}

// Committer returns the committer signature.
func (c *Commit) Committer() Signature {
	return Signature{sig: c.commit.Committer}
}

// When returns the committer time as seconds since the epoch and the
// timezone offset in minutes.
func (c *Commit) When() (int64, int) {
	return c.Committer().When()
}

// Time returns the committer time in the committer's timezone.
func (c *Commit) Time() time.Time {
	return c.commit.Committer.When
}

// TimeUTC returns the committer time in UTC.
func (c *Commit) TimeUTC() time.Time {
	return c.commit.Committer.When.UTC()
}

// TimeLocal returns the committer time in the local timezone.
func (c *Commit) TimeLocal() time.Time {
	return c.commit.Committer.When.Local()
}

// ParentCount returns the number of parents.
func (c *Commit) ParentCount() int {
	return c.commit.NumParents()
}

// ParentIDs returns the parent commit ids.
func (c *Commit) ParentIDs() []plumbing.Hash {
	return c.commit.ParentHashes
}

// TreeID returns the id of the commit's root tree.
func (c *Commit) TreeID() plumbing.Hash {
	return c.commit.TreeHash
}

// Info summarises the commit for reports.
func (c *Commit) Info() CommitInfo {
	author, committer := c.Author(), c.Committer()
	return CommitInfo{
		SHA:       c.ID(),
		When:      c.Time(),
		Author:    AuthorInfo{Name: author.NameLossy(), Email: author.EmailLossy()},
		Committer: AuthorInfo{Name: committer.NameLossy(), Email: committer.EmailLossy()},
		Message:   c.Summary(),
		Parents:   c.ParentCount(),
	}
}

// Changes returns the changes of the commit against its first parent, or
// against the empty tree for a root commit. The diff is computed lazily.
// Every call returns a fresh iterator.
func (c *Commit) Changes(ctx context.Context) *ChangeIter {
	parentTree, err := c.firstParentTree()
	return newChangeIter(ctx, c.repo.changeIterConfig(), parentTree, c.commit.TreeHash, err)
}

func (c *Commit) firstParentTree() (plumbing.Hash, error) {
	if c.commit.NumParents() == 0 {
		return plumbing.ZeroHash, nil
	}
	parent, err := c.commit.Parent(0)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: parent of %s: %w", ErrDiff, c.ID(), err)
	}
	return parent.TreeHash, nil
}

// String returns the short id and summary.
func (c *Commit) String() string {
	return fmt.Sprintf("%s %s", c.ID()[:8], c.Summary())
}

// Signature is an identity and timestamp attached to a commit.
type Signature struct {
	sig object.Signature
}

// NameBytes returns the raw name.
func (s Signature) NameBytes() []byte { return []byte(s.sig.Name) }

// Name returns the name and whether it is valid UTF-8.
func (s Signature) Name() (string, bool) { return s.sig.Name, utf8.ValidString(s.sig.Name) }

// NameLossy returns the name with invalid UTF-8 replaced by U+FFFD.
func (s Signature) NameLossy() string { return lossy(s.sig.Name) }

// EmailBytes returns the raw email.
func (s Signature) EmailBytes() []byte { return []byte(s.sig.Email) }

// Email returns the email and whether it is valid UTF-8.
func (s Signature) Email() (string, bool) { return s.sig.Email, utf8.ValidString(s.sig.Email) }

// EmailLossy returns the email with invalid UTF-8 replaced by U+FFFD.
func (s Signature) EmailLossy() string { return lossy(s.sig.Email) }

// When returns seconds since the epoch and the timezone offset in minutes.
func (s Signature) When() (int64, int) {
	_, offset := s.sig.When.Zone()
	return s.sig.When.Unix(), offset / 60
}

// Time returns the signature time in its own timezone.
func (s Signature) Time() time.Time { return s.sig.When }

// TimeUTC returns the signature time in UTC.
func (s Signature) TimeUTC() time.Time { return s.sig.When.UTC() }

// TimeLocal returns the signature time in the local timezone.
func (s Signature) TimeLocal() time.Time { return s.sig.When.Local() }

// lossy replaces each maximal ill-formed subsequence of s with U+FFFD, so
// "a\xff\xfe" becomes two replacement characters and a truncated sequence
// becomes one.
func lossy(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r != utf8.RuneError || size > 1 {
			b.WriteString(s[i : i+size])
			i += size
			continue
		}
		b.WriteRune(utf8.RuneError)
		i += illFormedLen(s[i:])
	}
	return b.String()
}

// illFormedLen returns how many bytes at the start of s form the longest
// prefix of some well-formed sequence, or 1 when s[0] cannot start one.
func illFormedLen(s string) int {
	lead := s[0]
	need := 0
	lo, hi := byte(0x80), byte(0xBF)
	switch {
	case lead >= 0xC2 && lead <= 0xDF:
		need = 1
	case lead == 0xE0:
		need, lo = 2, 0xA0
	case lead == 0xED:
		need, hi = 2, 0x9F
	case lead >= 0xE1 && lead <= 0xEF:
		need = 2
	case lead == 0xF0:
		need, lo = 3, 0x90
	case lead == 0xF4:
		need, hi = 3, 0x8F
	case lead >= 0xF1 && lead <= 0xF3:
		need = 3
	default:
		return 1
	}

	n := 1
	for n <= need && n < len(s) && s[n] >= lo && s[n] <= hi {
		lo, hi = 0x80, 0xBF
		n++
	}
	return n
}
