package git

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

var discardLogger = slog.New(slog.DiscardHandler)

// Options configures how a repository is read.
type Options struct {
	RenameDetect RenameDetectMode
	Backend      Backend
	Unresolved   UnresolvedPolicy
	Include      []string // Glob patterns to include
	Exclude      []string // Glob patterns to exclude
	Logger       *slog.Logger
}

// DefaultOptions returns options with similarity-based rename detection,
// the go-git backend and unresolved deltas skipped.
func DefaultOptions() Options {
	return Options{
		RenameDetect: RenameDetectAggressive,
		Backend:      BackendNative,
		Unresolved:   UnresolvedSkip,
	}
}

// Repository is a read-only view over a git repository.
// Commits and change iterators obtained from it share its object store and
// must not be used after the repository is discarded.
type Repository struct {
	repo   *gogit.Repository
	path   string
	store  ObjectStore
	filter *PathFilter
	policy UnresolvedPolicy
	logger *slog.Logger
}

// Open opens the repository at exactly path.
func Open(path string, opts Options) (*Repository, error) {
	return open(path, false, opts)
}

// Discover opens the repository containing path, searching parent
// directories for a .git directory.
func Discover(path string, opts Options) (*Repository, error) {
	return open(path, true, opts)
}

func open(path string, detect bool, opts Options) (*Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: detect})
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpenRepository, path, err)
	}

	filter, err := NewPathFilter(opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = discardLogger
	}

	root := path
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	} else if abs, err := filepath.Abs(path); err == nil {
		root = abs
	}

	var store ObjectStore
	switch opts.Backend {
	case BackendGitCLI:
		store = newCLIStore(root, opts.RenameDetect)
	default:
		store = newNativeStore(repo.Storer, opts.RenameDetect)
	}

	logger.Debug("opened repository",
		"path", root,
		"backend", opts.Backend.String(),
		"renames", opts.RenameDetect.String(),
		"unresolved", opts.Unresolved.String())

	return &Repository{
		repo:   repo,
		path:   root,
		store:  store,
		filter: filter,
		policy: opts.Unresolved,
		logger: logger,
	}, nil
}

// newRepositoryWithStore wires a repository to a custom object store.
func newRepositoryWithStore(repo *gogit.Repository, store ObjectStore, opts Options) (*Repository, error) {
	filter, err := NewPathFilter(opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger
	}
	return &Repository{
		repo:   repo,
		store:  store,
		filter: filter,
		policy: opts.Unresolved,
		logger: logger,
	}, nil
}

// Path returns the working tree root (or the path the repository was opened with).
func (r *Repository) Path() string {
	return r.path
}

// Head resolves the commit HEAD points to.
func (r *Repository) Head() (plumbing.Hash, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolve HEAD: %w", err)
	}
	return ref.Hash(), nil
}

// Resolve resolves a revision (branch, tag, sha, HEAD~2, ...) to a commit id.
// An empty revision means HEAD.
func (r *Repository) Resolve(rev string) (plumbing.Hash, error) {
	if rev == "" || rev == "HEAD" {
		return r.Head()
	}
	h, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolve revision %q: %w", rev, err)
	}
	return *h, nil
}

// CommitObject looks up a commit by id.
func (r *Repository) CommitObject(h plumbing.Hash) (*Commit, error) {
	c, err := r.repo.CommitObject(h)
	if err != nil {
		return nil, fmt.Errorf("%w: find commit %s: %w", ErrTraversal, h, err)
	}
	return newCommit(r, c), nil
}

func (r *Repository) changeIterConfig() changeIterConfig {
	return changeIterConfig{
		store:  r.store,
		filter: r.filter,
		policy: r.policy,
		logger: r.logger,
	}
}

// ChangesBetween classifies the diff between the trees of two revisions.
func (r *Repository) ChangesBetween(ctx context.Context, base, head string) (*ChangeIter, error) {
	baseTree, err := r.treeOf(base)
	if err != nil {
		return nil, err
	}
	headTree, err := r.treeOf(head)
	if err != nil {
		return nil, err
	}
	return newChangeIter(ctx, r.changeIterConfig(), baseTree, headTree, nil), nil
}

func (r *Repository) treeOf(rev string) (plumbing.Hash, error) {
	h, err := r.Resolve(rev)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	c, err := object.GetCommit(r.repo.Storer, h)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("find commit %s: %w", h, err)
	}
	return c.TreeHash, nil
}
