package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// testRepo is a scratch repository built with go-git.
type testRepo struct {
	tb   testing.TB
	dir  string
	repo *gogit.Repository
	wt   *gogit.Worktree
	now  time.Time
	n    int
}

func newTestRepo(tb testing.TB) *testRepo {
	tb.Helper()

	dir := tb.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		tb.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		tb.Fatalf("Worktree: %v", err)
	}
	return &testRepo{
		tb:   tb,
		dir:  dir,
		repo: repo,
		wt:   wt,
		now:  time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (r *testRepo) write(rel, content string) {
	r.tb.Helper()
	full := filepath.Join(r.dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		r.tb.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		r.tb.Fatalf("WriteFile: %v", err)
	}
	if _, err := r.wt.Add(rel); err != nil {
		r.tb.Fatalf("Add: %v", err)
	}
}

func (r *testRepo) remove(rel string) {
	r.tb.Helper()
	if _, err := r.wt.Remove(rel); err != nil {
		r.tb.Fatalf("Remove: %v", err)
	}
}

func (r *testRepo) move(from, to string) {
	r.tb.Helper()
	if _, err := r.wt.Move(from, to); err != nil {
		r.tb.Fatalf("Move: %v", err)
	}
}

// commit records the staged changes one hour after the previous commit.
func (r *testRepo) commit(msg string) plumbing.Hash {
	r.tb.Helper()
	r.n++
	return r.commitAt(msg, r.now.Add(time.Duration(r.n)*time.Hour))
}

func (r *testRepo) commitAt(msg string, when time.Time) plumbing.Hash {
	r.tb.Helper()
	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: when}
	h, err := r.wt.Commit(msg, &gogit.CommitOptions{
		Author:            sig,
		Committer:         sig,
		AllowEmptyCommits: true,
	})
	if err != nil {
		r.tb.Fatalf("Commit: %v", err)
	}
	return h
}

func (r *testRepo) checkout(branch string, create bool) {
	r.tb.Helper()
	err := r.wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: create,
	})
	if err != nil {
		r.tb.Fatalf("Checkout(%s): %v", branch, err)
	}
}

func (r *testRepo) open(opts Options) *Repository {
	r.tb.Helper()
	repo, err := Open(r.dir, opts)
	if err != nil {
		r.tb.Fatalf("Open: %v", err)
	}
	return repo
}

// changesOf classifies the changes of one commit.
func changesOf(tb testing.TB, repo *Repository, h plumbing.Hash) []Change {
	tb.Helper()
	c, err := repo.CommitObject(h)
	if err != nil {
		tb.Fatalf("CommitObject: %v", err)
	}
	changes, err := c.Changes(context.Background()).Collect()
	if err != nil {
		tb.Fatalf("Changes: %v", err)
	}
	return changes
}

// lines returns n numbered lines, used to keep renamed files similar.
func lines(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += fmt.Sprintf("line %03d of the test fixture\n", i)
	}
	return s
}

func hashOf(n int) plumbing.Hash {
	return plumbing.NewHash(fmt.Sprintf("%040x", n))
}

// commitTreeSize sums the blob sizes of every file in a commit's tree.
func commitTreeSize(tb testing.TB, r *testRepo, h plumbing.Hash) int64 {
	tb.Helper()
	c, err := r.repo.CommitObject(h)
	if err != nil {
		tb.Fatalf("CommitObject: %v", err)
	}
	files, err := c.Files()
	if err != nil {
		tb.Fatalf("Files: %v", err)
	}
	var total int64
	err = files.ForEach(func(f *object.File) error {
		total += f.Size
		return nil
	})
	if err != nil {
		tb.Fatalf("ForEach: %v", err)
	}
	return total
}

// blob stores content as a loose blob and returns its id.
func (r *testRepo) blob(content string) plumbing.Hash {
	r.tb.Helper()
	obj := r.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	w, err := obj.Writer()
	if err != nil {
		r.tb.Fatalf("Writer: %v", err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		r.tb.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		r.tb.Fatalf("Close: %v", err)
	}
	h, err := r.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		r.tb.Fatalf("SetEncodedObject: %v", err)
	}
	return h
}

// commitEntries writes a commit whose tree holds exactly entries, which
// must be sorted by name, and moves the current branch to it. It can
// record entries the worktree cannot stage, such as gitlinks.
func (r *testRepo) commitEntries(msg string, entries []object.TreeEntry, parents ...plumbing.Hash) plumbing.Hash {
	r.tb.Helper()
	st := r.repo.Storer

	treeObj := st.NewEncodedObject()
	if err := (&object.Tree{Entries: entries}).Encode(treeObj); err != nil {
		r.tb.Fatalf("Encode tree: %v", err)
	}
	treeHash, err := st.SetEncodedObject(treeObj)
	if err != nil {
		r.tb.Fatalf("SetEncodedObject: %v", err)
	}

	r.n++
	sig := object.Signature{Name: "Test", Email: "test@example.com", When: r.now.Add(time.Duration(r.n) * time.Hour)}
	commitObj := st.NewEncodedObject()
	c := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      msg,
		TreeHash:     treeHash,
		ParentHashes: parents,
	}
	if err := c.Encode(commitObj); err != nil {
		r.tb.Fatalf("Encode commit: %v", err)
	}
	h, err := st.SetEncodedObject(commitObj)
	if err != nil {
		r.tb.Fatalf("SetEncodedObject: %v", err)
	}

	head, err := st.Reference(plumbing.HEAD)
	if err != nil {
		r.tb.Fatalf("Reference(HEAD): %v", err)
	}
	if err := st.SetReference(plumbing.NewHashReference(head.Target(), h)); err != nil {
		r.tb.Fatalf("SetReference: %v", err)
	}
	return h
}
