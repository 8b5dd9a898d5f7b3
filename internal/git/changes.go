package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// ChangeIter streams the canonical changes of one tree-to-tree diff.
//
// The diff is computed on the first call to Next. A rename that also
// changes content yields a Modified change followed by a Renamed change;
// the Renamed change is held back until the following call.
// A ChangeIter is single-pass and not safe for concurrent use.
type ChangeIter struct {
	ctx    context.Context
	store  ObjectStore
	filter *PathFilter
	policy UnresolvedPolicy
	logger *slog.Logger

	oldTree plumbing.Hash
	newTree plumbing.Hash
	// setupErr is a failure that happened before the diff could be
	// requested, such as an unreadable parent commit.
	setupErr error

	deltas  []Delta
	loaded  bool
	next    int
	pending Change
	done    bool
}

type changeIterConfig struct {
	store  ObjectStore
	filter *PathFilter
	policy UnresolvedPolicy
	logger *slog.Logger
}

func newChangeIter(ctx context.Context, cfg changeIterConfig, oldTree, newTree plumbing.Hash, setupErr error) *ChangeIter {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := cfg.logger
	if logger == nil {
		logger = discardLogger
	}
	return &ChangeIter{
		ctx:      ctx,
		store:    cfg.store,
		filter:   cfg.filter,
		policy:   cfg.policy,
		logger:   logger,
		oldTree:  oldTree,
		newTree:  newTree,
		setupErr: setupErr,
	}
}

// Next returns the next change. It returns io.EOF once the diff is
// exhausted or after a diff failure has been reported.
func (it *ChangeIter) Next() (Change, error) {
	if it.pending != nil {
		c := it.pending
		it.pending = nil
		return c, nil
	}
	if it.done {
		return nil, io.EOF
	}

	if !it.loaded {
		if err := it.load(); err != nil {
			it.done = true
			return nil, err
		}
	}

	for it.next < len(it.deltas) {
		d := it.deltas[it.next]
		it.next++

		if !it.filter.MatchesDelta(d) {
			continue
		}

		first, second, err := classifyDelta(it.ctx, it.store, d)
		if err != nil {
			if !errors.Is(err, ErrUnresolvedFile) {
				it.done = true
				return nil, err
			}
			if it.policy == UnresolvedError {
				return nil, err
			}
			it.logger.Debug("skipping unresolved delta",
				"status", d.Status.String(),
				"old", d.Old.Path,
				"new", d.New.Path,
				"error", err)
			continue
		}
		if first == nil {
			continue
		}

		it.pending = second
		return first, nil
	}

	it.done = true
	return nil, io.EOF
}

func (it *ChangeIter) load() error {
	it.loaded = true
	if it.setupErr != nil {
		return it.setupErr
	}

	deltas, err := it.store.DiffTrees(it.ctx, it.oldTree, it.newTree)
	if err != nil {
		return fmt.Errorf("%w: %s..%s: %w", ErrDiff, shortHash(it.oldTree), shortHash(it.newTree), err)
	}
	it.deltas = deltas
	it.logger.Debug("computed tree diff",
		"old", shortHash(it.oldTree),
		"new", shortHash(it.newTree),
		"deltas", len(deltas))
	return nil
}

// ForEach calls cb for each change. Returning storer.ErrStop from cb ends
// the iteration without error.
func (it *ChangeIter) ForEach(cb func(Change) error) error {
	defer it.Close()
	for {
		c, err := it.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := cb(c); err != nil {
			if errors.Is(err, storer.ErrStop) {
				return nil
			}
			return err
		}
	}
}

// All returns a single-use sequence of changes. Errors are yielded in-band
// at the position where they occurred.
func (it *ChangeIter) All() iter.Seq2[Change, error] {
	return func(yield func(Change, error) bool) {
		defer it.Close()
		for {
			c, err := it.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(c, err) {
				return
			}
		}
	}
}

// Collect drains the iterator, stopping at the first error.
func (it *ChangeIter) Collect() ([]Change, error) {
	var changes []Change
	err := it.ForEach(func(c Change) error {
		changes = append(changes, c)
		return nil
	})
	return changes, err
}

// Close releases the computed diff. Further calls to Next return io.EOF.
func (it *ChangeIter) Close() {
	it.done = true
	it.pending = nil
	it.deltas = nil
}

func shortHash(h plumbing.Hash) string {
	if h.IsZero() {
		return "empty"
	}
	return h.String()[:8]
}
