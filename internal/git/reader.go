package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-git/go-git/v5/plumbing/storer"
)

// ReadOptions configures a HistoryReader.
type ReadOptions struct {
	RepoPath string
	Branch   string
	Order    SortOrder
	Since    *time.Time
	Until    *time.Time
	// MaxCount stops after this many change sets. Zero means no limit.
	MaxCount int
	// SkipEmpty drops commits whose (filtered) change list is empty.
	SkipEmpty bool
	// Match, when set, keeps only the commits it returns true for.
	Match func(CommitInfo) bool
	Repo  Options
}

// DefaultReadOptions reads the current directory from HEAD, oldest first.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		RepoPath: ".",
		Order:    DefaultSortOrder,
		Repo:     DefaultOptions(),
	}
}

func (o ReadOptions) walkOptions() WalkOptions {
	return WalkOptions{From: o.Branch, Order: o.Order, Since: o.Since, Until: o.Until}
}

// HistoryReader reads commit history from a Git repository.
type HistoryReader struct {
	repo *Repository
	opts ReadOptions
}

// NewHistoryReader opens the repository containing opts.RepoPath.
func NewHistoryReader(opts ReadOptions) (*HistoryReader, error) {
	repo, err := Discover(opts.RepoPath, opts.Repo)
	if err != nil {
		return nil, err
	}
	return &HistoryReader{repo: repo, opts: opts}, nil
}

// Path returns the working directory of the repository.
func (r *HistoryReader) Path() string {
	return r.repo.Path()
}

// ReadChanges walks the history and calls fn with each commit and its
// classified changes, one commit at a time. Returning storer.ErrStop from
// fn ends the read without error.
func (r *HistoryReader) ReadChanges(ctx context.Context, fn func(CommitChangeSet) error) error {
	it, err := r.repo.Commits(r.opts.walkOptions())
	if err != nil {
		return err
	}
	defer it.Close()

	emitted := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.opts.MaxCount > 0 && emitted >= r.opts.MaxCount {
			return nil
		}

		c, err := it.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		info := c.Info()
		if r.opts.Match != nil && !r.opts.Match(info) {
			continue
		}

		changes, err := c.Changes(ctx).Collect()
		if err != nil {
			return fmt.Errorf("commit %s: %w", shortHash(c.Hash()), err)
		}
		if r.opts.SkipEmpty && len(changes) == 0 {
			continue
		}

		emitted++
		if err := fn(CommitChangeSet{Commit: info, Changes: changes}); err != nil {
			if errors.Is(err, storer.ErrStop) {
				return nil
			}
			return err
		}
	}
}

// ReadAll collects every change set. Intended for small histories and tests.
func (r *HistoryReader) ReadAll(ctx context.Context) ([]CommitChangeSet, error) {
	var out []CommitChangeSet
	err := r.ReadChanges(ctx, func(cs CommitChangeSet) error {
		out = append(out, cs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
