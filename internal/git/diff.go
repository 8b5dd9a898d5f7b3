package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// DiffResult holds the changes between two revisions.
type DiffResult struct {
	Base string
	Head string
	// MergeBase is set for three-dot specs.
	MergeBase string
	Changes   []Change
}

// ParseDiffSpec splits a diff spec into base and head refs.
// Supports both "..." (three-dot) and ".." (two-dot) syntax.
func ParseDiffSpec(spec string) (base, head string, threeDot bool, err error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return "", "", false, fmt.Errorf("empty diff spec")
	}

	// Try three-dot first (merge-base comparison)
	if idx := strings.Index(spec, "..."); idx != -1 {
		base = spec[:idx]
		head = spec[idx+3:]
		threeDot = true
	} else if idx := strings.Index(spec, ".."); idx != -1 {
		base = spec[:idx]
		head = spec[idx+2:]
	} else {
		return "", "", false, fmt.Errorf("invalid diff spec %q: expected 'base..head' or 'base...head'", spec)
	}

	if base == "" {
		return "", "", false, fmt.Errorf("invalid diff spec %q: missing base ref", spec)
	}
	if head == "" {
		head = "HEAD"
	}

	return base, head, threeDot, nil
}

// DiffChanges returns a lazy change iterator for a diff spec.
// For "base...head" the base side is the merge base of the two revisions.
func (r *Repository) DiffChanges(ctx context.Context, spec string) (*ChangeIter, *DiffResult, error) {
	base, head, threeDot, err := ParseDiffSpec(spec)
	if err != nil {
		return nil, nil, err
	}
	result := &DiffResult{Base: base, Head: head}

	if threeDot {
		mb, err := r.mergeBase(base, head)
		if err != nil {
			return nil, nil, err
		}
		result.MergeBase = mb.String()
		base = mb.String()
	}

	it, err := r.ChangesBetween(ctx, base, head)
	if err != nil {
		return nil, nil, err
	}
	return it, result, nil
}

// ReadDiff classifies every change between two revisions.
func (r *Repository) ReadDiff(ctx context.Context, spec string) (*DiffResult, error) {
	it, result, err := r.DiffChanges(ctx, spec)
	if err != nil {
		return nil, err
	}
	changes, err := it.Collect()
	if err != nil {
		return nil, err
	}
	result.Changes = changes
	return result, nil
}

func (r *Repository) mergeBase(a, b string) (plumbing.Hash, error) {
	ha, err := r.Resolve(a)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	hb, err := r.Resolve(b)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	ca, err := object.GetCommit(r.repo.Storer, ha)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("find commit %s: %w", ha, err)
	}
	cb, err := object.GetCommit(r.repo.Storer, hb)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("find commit %s: %w", hb, err)
	}

	bases, err := ca.MergeBase(cb)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("merge base of %s and %s: %w", a, b, err)
	}
	if len(bases) == 0 {
		return plumbing.ZeroHash, fmt.Errorf("no merge base between %s and %s", a, b)
	}
	return bases[0].Hash, nil
}
