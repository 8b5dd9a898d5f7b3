package git

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
)

// emptyTreeHash is the id git assigns to a tree with no entries.
const emptyTreeHash = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// cliStore computes diffs by running the git binary against the repository.
type cliStore struct {
	repoPath     string
	renameDetect RenameDetectMode

	mu    sync.Mutex
	sizes map[plumbing.Hash]int64
}

var _ ObjectStore = (*cliStore)(nil)

func newCLIStore(repoPath string, mode RenameDetectMode) *cliStore {
	return &cliStore{
		repoPath:     repoPath,
		renameDetect: mode,
		sizes:        make(map[plumbing.Hash]int64),
	}
}

func (s *cliStore) diffArgs(oldTree, newTree plumbing.Hash) []string {
	args := []string{
		"-C", s.repoPath,
		"diff-tree",
		"-r", "-z",
		"--raw", "--no-abbrev",
		"--no-commit-id",
		"--no-color",
	}

	switch s.renameDetect {
	case RenameDetectOff:
		args = append(args, "--no-renames")
	case RenameDetectSimple:
		args = append(args, "-M100%")
	default:
		args = append(args, fmt.Sprintf("-M%d%%", aggressiveRenameScore), "-C")
	}

	old := emptyTreeHash
	if !oldTree.IsZero() {
		old = oldTree.String()
	}
	newRev := emptyTreeHash
	if !newTree.IsZero() {
		newRev = newTree.String()
	}
	return append(args, old, newRev)
}

// DiffTrees implements ObjectStore.
func (s *cliStore) DiffTrees(ctx context.Context, oldTree, newTree plumbing.Hash) ([]Delta, error) {
	if oldTree == newTree {
		return nil, nil
	}

	out, err := exec.CommandContext(ctx, "git", s.diffArgs(oldTree, newTree)...).Output()
	if err != nil {
		return nil, fmt.Errorf("git diff-tree failed: %w%s", err, exitStderr(err))
	}

	entries, _, err := parseGitRawEntries(out)
	if err != nil {
		return nil, err
	}

	deltas := make([]Delta, 0, len(entries))
	for _, e := range entries {
		deltas = append(deltas, e.delta())
	}

	if err := s.prefetchSizes(ctx, deltas); err != nil {
		return nil, err
	}
	return deltas, nil
}

// BlobSize implements ObjectStore.
func (s *cliStore) BlobSize(ctx context.Context, id plumbing.Hash) (int64, error) {
	s.mu.Lock()
	size, ok := s.sizes[id]
	s.mu.Unlock()
	if ok {
		return size, nil
	}

	if err := s.batchCheck(ctx, []plumbing.Hash{id}); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	size, ok = s.sizes[id]
	if !ok {
		return 0, fmt.Errorf("blob %s: %w", id, plumbing.ErrObjectNotFound)
	}
	return size, nil
}

// prefetchSizes sizes every blob referenced by the deltas with a single
// `git cat-file --batch-check` process.
func (s *cliStore) prefetchSizes(ctx context.Context, deltas []Delta) error {
	s.mu.Lock()
	var missing []plumbing.Hash
	seen := make(map[plumbing.Hash]struct{})
	for _, d := range deltas {
		for _, ref := range [2]FileRef{d.Old, d.New} {
			if !ref.Exists || ref.ID.IsZero() || ref.Mode == filemode.Submodule {
				continue
			}
			if _, ok := s.sizes[ref.ID]; ok {
				continue
			}
			if _, ok := seen[ref.ID]; ok {
				continue
			}
			seen[ref.ID] = struct{}{}
			missing = append(missing, ref.ID)
		}
	}
	s.mu.Unlock()

	if len(missing) == 0 {
		return nil
	}
	return s.batchCheck(ctx, missing)
}

func (s *cliStore) batchCheck(ctx context.Context, ids []plumbing.Hash) error {
	var stdin bytes.Buffer
	for _, id := range ids {
		stdin.WriteString(id.String())
		stdin.WriteByte('\n')
	}

	cmd := exec.CommandContext(ctx, "git", "-C", s.repoPath, "cat-file", "--batch-check")
	cmd.Stdin = &stdin
	out, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("git cat-file failed: %w%s", err, exitStderr(err))
	}

	sizes, err := parseBatchCheck(out)
	if err != nil {
		return err
	}

	s.mu.Lock()
	for id, size := range sizes {
		s.sizes[id] = size
	}
	s.mu.Unlock()
	return nil
}

// parseBatchCheck parses `git cat-file --batch-check` output.
// Lines are "<oid> <type> <size>" or "<oid> missing"; only blobs are kept.
func parseBatchCheck(out []byte) (map[plumbing.Hash]int64, error) {
	sizes := make(map[plumbing.Hash]int64)
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[1] == "missing" {
			continue
		}
		if len(fields) != 3 {
			return nil, fmt.Errorf("unexpected git cat-file output: %q", line)
		}
		if fields[1] != "blob" {
			continue
		}
		size, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse object size %q: %w", fields[2], err)
		}
		sizes[plumbing.NewHash(fields[0])] = size
	}
	return sizes, sc.Err()
}

func exitStderr(err error) string {
	var ee *exec.ExitError
	if errors.As(err, &ee) && len(ee.Stderr) > 0 {
		return ": " + strings.TrimSpace(string(ee.Stderr))
	}
	return ""
}
