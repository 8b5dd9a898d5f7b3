package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/masmgr/gitcommits-go/internal/git"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// testRepo is a worktree repository built commit by commit.
type testRepo struct {
	t    *testing.T
	dir  string
	repo *gogit.Repository
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	return &testRepo{t: t, dir: dir, repo: repo}
}

// commit writes files, removes paths and commits the result.
func (r *testRepo) commit(message string, when time.Time, files map[string]string, remove ...string) {
	r.t.Helper()
	w, err := r.repo.Worktree()
	require.NoError(r.t, err)

	for _, path := range remove {
		_, err := w.Remove(path)
		require.NoError(r.t, err)
	}
	for path, content := range files {
		full := filepath.Join(r.dir, path)
		require.NoError(r.t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(r.t, os.WriteFile(full, []byte(content), 0o644))
		_, err := w.Add(path)
		require.NoError(r.t, err)
	}

	_, err = w.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test Author", Email: "test@example.com", When: when},
	})
	require.NoError(r.t, err)
}

// sampleRepo has three commits: an add, a fix that modifies and adds, and
// a pure rename.
func sampleRepo(t *testing.T) *testRepo {
	r := newTestRepo(t)
	r.commit("initial import", baseTime, map[string]string{"a.txt": "hello\n"})
	r.commit("fix crash on empty input", baseTime.Add(time.Hour), map[string]string{
		"a.txt": "hello world\n",
		"b.txt": "bbbbbbbbbb",
	})
	r.commit("move b to c", baseTime.Add(2*time.Hour), map[string]string{"c.txt": "bbbbbbbbbb"}, "b.txt")
	return r
}

// runApp runs the CLI with args and returns what it wrote to stdout.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.RunContext(context.Background(), append([]string{"gitcommits"}, args...))
	return out.String(), err
}

// useReader makes commands read from reader instead of a repository. It
// returns the options the command opened the reader with.
func useReader(t *testing.T, reader git.RepositoryReader) *git.ReadOptions {
	t.Helper()
	var got git.ReadOptions
	prev := openReader
	openReader = func(opts git.ReadOptions) (git.RepositoryReader, error) {
		got = opts
		return reader, nil
	}
	t.Cleanup(func() { openReader = prev })
	return &got
}
