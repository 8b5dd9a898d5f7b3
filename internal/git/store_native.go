package git

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// aggressiveRenameScore matches go-git's default similarity threshold.
const aggressiveRenameScore = 60

// nativeStore computes diffs and blob sizes in-process with go-git.
type nativeStore struct {
	objects storer.EncodedObjectStorer
	diffOpt *object.DiffTreeOptions
}

// encodedObjectSizer is implemented by storers that can read an object's
// size from its header without inflating the content.
type encodedObjectSizer interface {
	EncodedObjectSize(plumbing.Hash) (int64, error)
}

var _ ObjectStore = (*nativeStore)(nil)

func newNativeStore(objects storer.EncodedObjectStorer, mode RenameDetectMode) *nativeStore {
	return &nativeStore{objects: objects, diffOpt: diffTreeOptions(mode)}
}

func diffTreeOptions(mode RenameDetectMode) *object.DiffTreeOptions {
	switch mode {
	case RenameDetectOff:
		return &object.DiffTreeOptions{}
	case RenameDetectSimple:
		return &object.DiffTreeOptions{DetectRenames: true, OnlyExactRenames: true}
	default:
		return &object.DiffTreeOptions{DetectRenames: true, RenameScore: aggressiveRenameScore}
	}
}

func (s *nativeStore) tree(h plumbing.Hash) (*object.Tree, error) {
	if h.IsZero() {
		return &object.Tree{}, nil
	}
	t, err := object.GetTree(s.objects, h)
	if err != nil {
		return nil, fmt.Errorf("get tree %s: %w", h, err)
	}
	return t, nil
}

// DiffTrees implements ObjectStore.
func (s *nativeStore) DiffTrees(ctx context.Context, oldTree, newTree plumbing.Hash) ([]Delta, error) {
	if oldTree == newTree {
		return nil, nil
	}

	from, err := s.tree(oldTree)
	if err != nil {
		return nil, err
	}
	to, err := s.tree(newTree)
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTreeWithOptions(ctx, from, to, s.diffOpt)
	if err != nil {
		return nil, err
	}

	deltas := make([]Delta, 0, len(changes))
	for _, ch := range changes {
		d, err := deltaFromChange(ch)
		if err != nil {
			return nil, err
		}
		deltas = append(deltas, d)
	}
	return deltas, nil
}

// BlobSize implements ObjectStore.
func (s *nativeStore) BlobSize(ctx context.Context, id plumbing.Hash) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if sizer, ok := s.objects.(encodedObjectSizer); ok {
		size, err := sizer.EncodedObjectSize(id)
		if err == nil {
			return size, nil
		}
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return 0, err
		}
		// Fall through: some storers only size loose objects.
	}
	obj, err := s.objects.EncodedObject(plumbing.BlobObject, id)
	if err != nil {
		return 0, err
	}
	return obj.Size(), nil
}

func deltaFromChange(ch *object.Change) (Delta, error) {
	var empty object.ChangeEntry

	d := Delta{
		Old: fileRefFromEntry(ch.From, ch.From != empty),
		New: fileRefFromEntry(ch.To, ch.To != empty),
	}

	switch {
	case !d.Old.Exists && d.New.Exists:
		d.Status = DeltaAdded
	case d.Old.Exists && !d.New.Exists:
		d.Status = DeltaDeleted
	case d.Old.Exists && d.New.Exists:
		switch {
		case d.Old.Path != d.New.Path:
			d.Status = DeltaRenamed
		case modeKind(d.Old.Mode) != modeKind(d.New.Mode):
			d.Status = DeltaTypechange
		case d.Old.ID == d.New.ID && d.Old.Mode == d.New.Mode:
			d.Status = DeltaUnmodified
		default:
			d.Status = DeltaModified
		}
	default:
		return Delta{}, fmt.Errorf("malformed change: both sides empty")
	}
	return d, nil
}

func fileRefFromEntry(e object.ChangeEntry, exists bool) FileRef {
	if !exists {
		return FileRef{}
	}
	return FileRef{
		Path:   e.Name,
		ID:     e.TreeEntry.Hash,
		Mode:   e.TreeEntry.Mode,
		Exists: true,
	}
}

type entryKind int

const (
	entryKindOther entryKind = iota
	entryKindFile
	entryKindSymlink
	entryKindGitlink
)

func modeKind(m filemode.FileMode) entryKind {
	switch m {
	case filemode.Regular, filemode.Executable, filemode.Deprecated:
		return entryKindFile
	case filemode.Symlink:
		return entryKindSymlink
	case filemode.Submodule:
		return entryKindGitlink
	default:
		return entryKindOther
	}
}
