package git

import (
	"fmt"
	"strings"
	"time"
)

// ChangeKind represents the type of change.
type ChangeKind int

const (
	ChangeKindAdded ChangeKind = iota
	ChangeKindModified
	ChangeKindDeleted
	ChangeKindRenamed
)

// String returns a string representation of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeKindAdded:
		return "added"
	case ChangeKindModified:
		return "modified"
	case ChangeKindDeleted:
		return "deleted"
	case ChangeKindRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Letter returns the status letter used by `git diff --name-status`.
func (k ChangeKind) Letter() rune {
	switch k {
	case ChangeKindAdded:
		return 'A'
	case ChangeKindModified:
		return 'M'
	case ChangeKindDeleted:
		return 'D'
	case ChangeKindRenamed:
		return 'R'
	default:
		return '?'
	}
}

// Symbol returns a compact glyph for the change kind.
func (k ChangeKind) Symbol() rune {
	switch k {
	case ChangeKindAdded:
		return '+'
	case ChangeKindModified:
		return '~'
	case ChangeKindDeleted:
		return '-'
	case ChangeKindRenamed:
		return '>'
	default:
		return '?'
	}
}

func (k ChangeKind) IsAdded() bool    { return k == ChangeKindAdded }
func (k ChangeKind) IsModified() bool { return k == ChangeKindModified }
func (k ChangeKind) IsDeleted() bool  { return k == ChangeKindDeleted }
func (k ChangeKind) IsRenamed() bool  { return k == ChangeKindRenamed }

// ParseChangeKind parses a status letter ("A") or a name ("added").
func ParseChangeKind(s string) (ChangeKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "added", "add":
		return ChangeKindAdded, nil
	case "m", "modified", "modify":
		return ChangeKindModified, nil
	case "d", "deleted", "delete":
		return ChangeKindDeleted, nil
	case "r", "renamed", "rename":
		return ChangeKindRenamed, nil
	default:
		return 0, fmt.Errorf("invalid change kind %q", s)
	}
}

// Change is a single file-level change introduced by a commit.
// The concrete type is one of Added, Modified, Deleted or Renamed.
type Change interface {
	Kind() ChangeKind
	String() string

	isChange()
}

// Added is a file that did not exist in the parent tree.
type Added struct {
	Path string
	// Size is the byte length of the new content.
	Size int64
}

// Modified is a file whose content changed at a stable path.
type Modified struct {
	Path    string
	OldSize int64
	NewSize int64
}

// Deleted is a file that no longer exists in the new tree.
type Deleted struct {
	Path string
	// Size is the byte length of the removed content.
	Size int64
}

// Renamed is a file that moved from OldPath to NewPath.
// Size is the byte length of the content at NewPath.
type Renamed struct {
	OldPath string
	NewPath string
	Size    int64
}

func (Added) Kind() ChangeKind    { return ChangeKindAdded }
func (Modified) Kind() ChangeKind { return ChangeKindModified }
func (Deleted) Kind() ChangeKind  { return ChangeKindDeleted }
func (Renamed) Kind() ChangeKind  { return ChangeKindRenamed }

func (Added) isChange()    {}
func (Modified) isChange() {}
func (Deleted) isChange()  {}
func (Renamed) isChange()  {}

func (c Added) String() string {
	return fmt.Sprintf("%c %s (%d bytes)", ChangeKindAdded.Letter(), c.Path, c.Size)
}

func (c Modified) String() string {
	return fmt.Sprintf("%c %s (%d -> %d bytes)", ChangeKindModified.Letter(), c.Path, c.OldSize, c.NewSize)
}

func (c Deleted) String() string {
	return fmt.Sprintf("%c %s (%d bytes)", ChangeKindDeleted.Letter(), c.Path, c.Size)
}

func (c Renamed) String() string {
	return fmt.Sprintf("%c %s -> %s (%d bytes)", ChangeKindRenamed.Letter(), c.OldPath, c.NewPath, c.Size)
}

// Delta returns the signed size difference of the modification.
func (c Modified) Delta() int64 {
	return c.NewSize - c.OldSize
}

// ChangePaths returns the paths touched by a change, old path first for renames.
func ChangePaths(c Change) []string {
	switch c := c.(type) {
	case Added:
		return []string{c.Path}
	case Modified:
		return []string{c.Path}
	case Deleted:
		return []string{c.Path}
	case Renamed:
		return []string{c.OldPath, c.NewPath}
	default:
		return nil
	}
}

// SizeDelta returns how much a change grows (positive) or shrinks (negative)
// the tree. Renames do not change the tree size.
func SizeDelta(c Change) int64 {
	switch c := c.(type) {
	case Added:
		return c.Size
	case Modified:
		return c.Delta()
	case Deleted:
		return -c.Size
	default:
		return 0
	}
}

// CommitInfo represents minimal information about a Git commit.
type CommitInfo struct {
	SHA       string
	When      time.Time
	Author    AuthorInfo
	Committer AuthorInfo
	Message   string
	Parents   int
}

// AuthorInfo represents commit author information.
type AuthorInfo struct {
	Name  string
	Email string
}

// ContributorKey returns a normalized identifier for grouping contributors.
func (a AuthorInfo) ContributorKey() string {
	return strings.ToLower(a.Email)
}

// CommitChangeSet bundles a commit with its file changes.
type CommitChangeSet struct {
	Commit  CommitInfo
	Changes []Change
}

// NetDelta returns the net byte-count change of the tree introduced by the commit.
func (cs CommitChangeSet) NetDelta() int64 {
	var n int64
	for _, c := range cs.Changes {
		n += SizeDelta(c)
	}
	return n
}

// RenameDetectMode controls how file renames are detected.
type RenameDetectMode int

const (
	RenameDetectOff RenameDetectMode = iota
	RenameDetectSimple
	RenameDetectAggressive
)

// String returns the flag spelling of the mode.
func (m RenameDetectMode) String() string {
	switch m {
	case RenameDetectOff:
		return "off"
	case RenameDetectSimple:
		return "simple"
	case RenameDetectAggressive:
		return "aggressive"
	default:
		return "unknown"
	}
}

// ParseRenameDetectMode parses a rename detection flag value.
// An empty value selects similarity-based detection.
func ParseRenameDetectMode(s string) (RenameDetectMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "aggressive", "similarity", "similar":
		return RenameDetectAggressive, nil
	case "off", "false", "none", "no":
		return RenameDetectOff, nil
	case "simple", "exact":
		return RenameDetectSimple, nil
	default:
		return RenameDetectOff, fmt.Errorf("invalid rename detection mode %q (expected auto, off, simple, aggressive)", s)
	}
}

// UnresolvedPolicy decides what happens to a delta whose file cannot be sized.
type UnresolvedPolicy int

const (
	// UnresolvedSkip drops the delta and keeps the stream going.
	UnresolvedSkip UnresolvedPolicy = iota
	// UnresolvedError reports the delta as an in-band error.
	UnresolvedError
)

// String returns the config spelling of the policy.
func (p UnresolvedPolicy) String() string {
	if p == UnresolvedError {
		return "error"
	}
	return "skip"
}

// ParseUnresolvedPolicy parses "skip" or "error".
func ParseUnresolvedPolicy(s string) (UnresolvedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return UnresolvedSkip, nil
	case "error", "strict":
		return UnresolvedError, nil
	default:
		return UnresolvedSkip, fmt.Errorf("invalid unresolved policy %q (expected skip or error)", s)
	}
}

// Backend selects the object-store implementation used for diffs.
type Backend int

const (
	// BackendNative computes diffs in-process with go-git.
	BackendNative Backend = iota
	// BackendGitCLI shells out to the git binary.
	BackendGitCLI
)

// String returns the flag spelling of the backend.
func (b Backend) String() string {
	if b == BackendGitCLI {
		return "git"
	}
	return "native"
}

// ParseBackend parses "native" or "git".
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "native", "go-git", "gogit":
		return BackendNative, nil
	case "git", "cli", "gitcli":
		return BackendGitCLI, nil
	default:
		return BackendNative, fmt.Errorf("invalid backend %q (expected native or git)", s)
	}
}
