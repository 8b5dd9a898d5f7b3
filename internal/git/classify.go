package git

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing/filemode"
)

// sizedFile is a delta side whose content length has been resolved.
type sizedFile struct {
	path string
	size int64
}

// resolveFile extracts the path and blob size of one side of a delta.
// Any failure is reported as ErrUnresolvedFile, except context errors.
func resolveFile(ctx context.Context, store ObjectStore, side string, ref FileRef) (sizedFile, error) {
	if !ref.Exists || ref.Path == "" {
		return sizedFile{}, fmt.Errorf("%w: %s file missing from delta", ErrUnresolvedFile, side)
	}
	size, err := store.BlobSize(ctx, ref.ID)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return sizedFile{}, err
		}
		return sizedFile{}, fmt.Errorf("%w: %s %s (%s): %w", ErrUnresolvedFile, side, ref.Path, ref.ID, err)
	}
	return sizedFile{path: ref.Path, size: size}, nil
}

// classifyDelta maps one raw delta to zero, one or two changes.
// When two are returned, the second must be emitted right after the first.
func classifyDelta(ctx context.Context, store ObjectStore, d Delta) (Change, Change, error) {
	// A gitlink names a commit in another repository, not a blob here.
	if isGitlink(d.Old) || isGitlink(d.New) {
		return nil, nil, nil
	}

	switch d.Status {
	case DeltaAdded, DeltaCopied:
		newFile, err := resolveFile(ctx, store, "new", d.New)
		if err != nil {
			return nil, nil, err
		}
		return Added{Path: newFile.path, Size: newFile.size}, nil, nil

	case DeltaModified:
		oldFile, newFile, err := resolveBoth(ctx, store, d)
		if err != nil {
			return nil, nil, err
		}
		return Modified{Path: newFile.path, OldSize: oldFile.size, NewSize: newFile.size}, nil, nil

	case DeltaDeleted:
		oldFile, err := resolveFile(ctx, store, "old", d.Old)
		if err != nil {
			return nil, nil, err
		}
		return Deleted{Path: oldFile.path, Size: oldFile.size}, nil, nil

	case DeltaRenamed:
		oldFile, newFile, err := resolveBoth(ctx, store, d)
		if err != nil {
			return nil, nil, err
		}
		return splitRename(oldFile, newFile)

	default:
		// Unmodified, ignored, untracked, typechange, unreadable and
		// conflicted entries carry no change.
		return nil, nil, nil
	}
}

func isGitlink(ref FileRef) bool {
	return ref.Exists && ref.Mode == filemode.Submodule
}

func resolveBoth(ctx context.Context, store ObjectStore, d Delta) (sizedFile, sizedFile, error) {
	oldFile, err := resolveFile(ctx, store, "old", d.Old)
	if err != nil {
		return sizedFile{}, sizedFile{}, err
	}
	newFile, err := resolveFile(ctx, store, "new", d.New)
	if err != nil {
		return sizedFile{}, sizedFile{}, err
	}
	return oldFile, newFile, nil
}

// splitRename turns a rename delta into a Renamed change, preceded by a
// Modified change on the new path when the content size changed.
func splitRename(oldFile, newFile sizedFile) (Change, Change, error) {
	sizeChanged := oldFile.size != newFile.size

	if oldFile.path == newFile.path {
		if !sizeChanged {
			return nil, nil, nil
		}
		return Modified{Path: newFile.path, OldSize: oldFile.size, NewSize: newFile.size}, nil, nil
	}

	renamed := Renamed{OldPath: oldFile.path, NewPath: newFile.path, Size: newFile.size}
	if !sizeChanged {
		return renamed, nil, nil
	}

	modified := Modified{Path: newFile.path, OldSize: oldFile.size, NewSize: newFile.size}
	return modified, renamed, nil
}
