package git

import "context"

// RepositoryReader streams classified commit history.
// Commands read through it so they can be driven without a repository.
type RepositoryReader interface {
	// ReadChanges calls fn once per commit, in walk order.
	ReadChanges(ctx context.Context, fn func(CommitChangeSet) error) error
	// Path returns the working directory of the repository being read.
	Path() string
}

// Compile-time interface conformance check.
var _ RepositoryReader = (*HistoryReader)(nil)
