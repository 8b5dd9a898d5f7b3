package git

import (
	"context"
	"errors"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
)

var (
	// ErrOpenRepository wraps failures to open or discover a repository.
	ErrOpenRepository = errors.New("open repository")
	// ErrTraversal wraps failures of a commit-graph walk step.
	ErrTraversal = errors.New("commit traversal")
	// ErrDiff wraps failures to resolve trees or compute a tree diff.
	ErrDiff = errors.New("diff computation")
	// ErrUnresolvedFile is reported when a delta's file cannot be sized
	// and the unresolved policy is UnresolvedError.
	ErrUnresolvedFile = errors.New("unresolved file reference")
)

// DeltaStatus is the status a diff assigns to one file entry.
type DeltaStatus int

const (
	DeltaUnmodified DeltaStatus = iota
	DeltaAdded
	DeltaDeleted
	DeltaModified
	DeltaRenamed
	DeltaCopied
	DeltaIgnored
	DeltaUntracked
	DeltaTypechange
	DeltaUnreadable
	DeltaConflicted
)

// String returns a lower-case name of the status.
func (s DeltaStatus) String() string {
	switch s {
	case DeltaUnmodified:
		return "unmodified"
	case DeltaAdded:
		return "added"
	case DeltaDeleted:
		return "deleted"
	case DeltaModified:
		return "modified"
	case DeltaRenamed:
		return "renamed"
	case DeltaCopied:
		return "copied"
	case DeltaIgnored:
		return "ignored"
	case DeltaUntracked:
		return "untracked"
	case DeltaTypechange:
		return "typechange"
	case DeltaUnreadable:
		return "unreadable"
	case DeltaConflicted:
		return "conflicted"
	default:
		return "unknown"
	}
}

// Letter returns the status letter git prints for the status.
func (s DeltaStatus) Letter() byte {
	switch s {
	case DeltaAdded:
		return 'A'
	case DeltaDeleted:
		return 'D'
	case DeltaModified:
		return 'M'
	case DeltaRenamed:
		return 'R'
	case DeltaCopied:
		return 'C'
	case DeltaIgnored:
		return '!'
	case DeltaUntracked:
		return '?'
	case DeltaTypechange:
		return 'T'
	case DeltaUnreadable:
		return 'X'
	case DeltaConflicted:
		return 'U'
	default:
		return ' '
	}
}

// deltaStatusFromLetter converts a raw diff status (e.g. "M", "R086") to a DeltaStatus.
func deltaStatusFromLetter(status string) DeltaStatus {
	if status == "" {
		return DeltaUnmodified
	}
	switch status[0] {
	case 'A':
		return DeltaAdded
	case 'D':
		return DeltaDeleted
	case 'M':
		return DeltaModified
	case 'R':
		return DeltaRenamed
	case 'C':
		return DeltaCopied
	case 'T':
		return DeltaTypechange
	case 'U':
		return DeltaConflicted
	case 'X':
		return DeltaUnreadable
	case '!':
		return DeltaIgnored
	case '?':
		return DeltaUntracked
	default:
		return DeltaUnmodified
	}
}

// FileRef is one side of a delta.
type FileRef struct {
	Path   string
	ID     plumbing.Hash
	Mode   filemode.FileMode
	Exists bool
}

// Delta is one file-level entry of a tree-to-tree diff.
type Delta struct {
	Status DeltaStatus
	Old    FileRef
	New    FileRef
}

// Paths returns the distinct non-empty paths referenced by the delta.
func (d Delta) Paths() []string {
	paths := make([]string, 0, 2)
	if d.Old.Exists && d.Old.Path != "" {
		paths = append(paths, d.Old.Path)
	}
	if d.New.Exists && d.New.Path != "" && d.New.Path != d.Old.Path {
		paths = append(paths, d.New.Path)
	}
	return paths
}

// ObjectStore is the object-store collaborator the classifier consumes.
// Rename detection is the store's responsibility.
type ObjectStore interface {
	// DiffTrees returns the deltas between two trees. plumbing.ZeroHash
	// stands for the empty tree.
	DiffTrees(ctx context.Context, oldTree, newTree plumbing.Hash) ([]Delta, error)
	// BlobSize returns the content length of a blob without reading it.
	BlobSize(ctx context.Context, id plumbing.Hash) (int64, error)
}
