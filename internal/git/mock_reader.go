package git

import (
	"context"
	"errors"

	"github.com/go-git/go-git/v5/plumbing/storer"
)

// MockHistoryReader is a test double for HistoryReader.
// It allows tests to provide predefined commit data without needing a real Git repository.
type MockHistoryReader struct {
	RepoPath   string
	ChangeSets []CommitChangeSet
	// Error is returned after all change sets have been delivered.
	Error error
}

// NewMockHistoryReader creates a new MockHistoryReader with the given data.
func NewMockHistoryReader(changeSets []CommitChangeSet, err error) *MockHistoryReader {
	return &MockHistoryReader{
		ChangeSets: changeSets,
		Error:      err,
	}
}

// ReadChanges delivers the predefined change sets, then the error if any.
func (m *MockHistoryReader) ReadChanges(ctx context.Context, fn func(CommitChangeSet) error) error {
	for _, cs := range m.ChangeSets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(cs); err != nil {
			if errors.Is(err, storer.ErrStop) {
				return nil
			}
			return err
		}
	}
	return m.Error
}

// Path returns RepoPath.
func (m *MockHistoryReader) Path() string {
	return m.RepoPath
}

// Compile-time interface conformance check.
var _ RepositoryReader = (*MockHistoryReader)(nil)
