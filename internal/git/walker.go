package git

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/emirpasic/gods/trees/binaryheap"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// SortOrder selects the order in which commits are walked. Flags combine.
type SortOrder uint8

const (
	// SortNone walks depth-first from the start commit.
	SortNone SortOrder = 0
	// SortTopological never yields a commit before all of its children.
	SortTopological SortOrder = 1 << 0
	// SortTime yields newer committer times first.
	SortTime SortOrder = 1 << 1
	// SortReverse reverses the resulting order.
	SortReverse SortOrder = 1 << 2

	// DefaultSortOrder yields the oldest reachable commit first.
	DefaultSortOrder = SortTime | SortReverse
)

// String returns the flag spelling of the order.
func (o SortOrder) String() string {
	var parts []string
	if o&SortTopological != 0 {
		parts = append(parts, "topo")
	}
	if o&SortTime != 0 {
		parts = append(parts, "time")
	}
	if len(parts) == 0 {
		parts = append(parts, "none")
	}
	s := strings.Join(parts, "+")
	if o&SortReverse != 0 {
		s += "-reverse"
	}
	return s
}

// ParseSortOrder parses values such as "time", "time-reverse", "topo",
// "topo+time-reverse" and "none". An empty value selects DefaultSortOrder.
func ParseSortOrder(s string) (SortOrder, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "default" {
		return DefaultSortOrder, nil
	}

	var order SortOrder
	if rest, ok := strings.CutSuffix(s, "-reverse"); ok {
		order |= SortReverse
		s = rest
	} else if rest, ok := strings.CutPrefix(s, "reverse-"); ok {
		order |= SortReverse
		s = rest
	}

	for _, part := range strings.Split(s, "+") {
		switch part {
		case "none", "":
		case "topo", "topological":
			order |= SortTopological
		case "time", "date", "chronological":
			order |= SortTime
		default:
			return DefaultSortOrder, fmt.Errorf("invalid sort order %q (expected time, topo, none, optionally with -reverse)", s)
		}
	}
	return order, nil
}

// WalkOptions configures a commit walk.
type WalkOptions struct {
	// From is the revision to start from. Empty means HEAD.
	From  string
	Order SortOrder
	// Since and Until bound the committer time, inclusive. A plain time
	// walk stops once it has passed sinceSlop consecutive commits older
	// than Since.
	Since *time.Time
	Until *time.Time
}

// DefaultWalkOptions walks from HEAD, oldest commit first.
func DefaultWalkOptions() WalkOptions {
	return WalkOptions{Order: DefaultSortOrder}
}

// CommitIter yields the commits reachable from a starting point, one at a
// time. It is single-pass and not safe for concurrent use.
type CommitIter struct {
	repo  *Repository
	opts  WalkOptions
	start plumbing.Hash

	// lazy is used for orders that can be produced incrementally.
	lazy commitSource
	// old counts consecutive commits below Since in a lazy time walk.
	old int
	// ids holds a precomputed order of commit ids. Commit objects are
	// loaded one at a time as the iterator advances.
	ids      []plumbing.Hash
	pos      int
	prepared bool
	done     bool
}

// Commits starts a walk over the repository history.
// Failing to resolve the starting revision is returned directly; errors
// met while walking are yielded by the iterator.
func (r *Repository) Commits(opts WalkOptions) (*CommitIter, error) {
	start, err := r.Resolve(opts.From)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("starting commit walk", "from", start.String(), "order", opts.Order.String())
	return &CommitIter{repo: r, opts: opts, start: start}, nil
}

// Next returns the next commit, or io.EOF when the walk is complete.
// After an error has been returned the iterator is exhausted.
func (it *CommitIter) Next() (*Commit, error) {
	for {
		if it.done {
			return nil, io.EOF
		}

		c, err := it.nextObject()
		if errors.Is(err, io.EOF) {
			it.Close()
			return nil, io.EOF
		}
		if err != nil {
			it.Close()
			return nil, fmt.Errorf("%w: %w", ErrTraversal, err)
		}

		if it.pastSince(c) {
			it.Close()
			return nil, io.EOF
		}
		if !it.inRange(c) {
			continue
		}
		return newCommit(it.repo, c), nil
	}
}

func (it *CommitIter) nextObject() (*object.Commit, error) {
	if !it.prepared {
		it.prepared = true
		if err := it.prepare(); err != nil {
			return nil, err
		}
	}

	if it.lazy != nil {
		return it.lazy.Next()
	}

	if it.pos >= len(it.ids) {
		return nil, io.EOF
	}
	h := it.ids[it.pos]
	it.pos++
	c, err := object.GetCommit(it.repo.repo.Storer, h)
	if err != nil {
		return nil, fmt.Errorf("find commit %s: %w", h, err)
	}
	return c, nil
}

func (it *CommitIter) prepare() error {
	order := it.opts.Order

	if order&SortTopological != 0 {
		ids, err := topologicalOrder(it.repo.repo.Storer, it.start, order&SortTime != 0)
		if err != nil {
			return err
		}
		if order&SortReverse != 0 {
			slices.Reverse(ids)
		}
		it.ids = ids
		return nil
	}

	var lazy commitSource
	if order&SortTime != 0 {
		walk, err := newTimeWalk(it.repo.repo.Storer, it.start)
		if err != nil {
			return err
		}
		lazy = walk
	} else {
		log, err := it.repo.repo.Log(&gogit.LogOptions{From: it.start})
		if err != nil {
			return err
		}
		lazy = log
	}

	if order&SortReverse == 0 {
		it.lazy = lazy
		return nil
	}

	defer lazy.Close()
	var ids []plumbing.Hash
	for {
		c, err := lazy.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		ids = append(ids, c.Hash)
	}
	slices.Reverse(ids)
	it.ids = ids
	return nil
}

// sinceSlop is how many consecutive commits older than Since a newest-first
// time walk tolerates before it stops, as git does for clock skew.
const sinceSlop = 5

// pastSince reports whether a newest-first time walk has gone far enough
// below Since that it stops. An ancestor in range behind more than
// sinceSlop skewed commits is not reached.
func (it *CommitIter) pastSince(c *object.Commit) bool {
	if it.lazy == nil || it.opts.Since == nil || it.opts.Order != SortTime {
		return false
	}
	if !c.Committer.When.Before(*it.opts.Since) {
		it.old = 0
		return false
	}
	it.old++
	return it.old > sinceSlop
}

func (it *CommitIter) inRange(c *object.Commit) bool {
	when := c.Committer.When
	if it.opts.Since != nil && when.Before(*it.opts.Since) {
		return false
	}
	if it.opts.Until != nil && when.After(*it.opts.Until) {
		return false
	}
	return true
}

// ForEach calls cb for each commit. Returning storer.ErrStop from cb ends
// the walk without error.
func (it *CommitIter) ForEach(cb func(*Commit) error) error {
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

// All returns a single-use sequence of commits with errors in-band.
func (it *CommitIter) All() iter.Seq2[*Commit, error] {
	return func(yield func(*Commit, error) bool) {
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

// Close releases the walk. Further calls to Next return io.EOF.
func (it *CommitIter) Close() {
	it.done = true
	it.ids = nil
	if it.lazy != nil {
		it.lazy.Close()
		it.lazy = nil
	}
}

// CountCommits returns how many commits a walk with opts yields.
func (r *Repository) CountCommits(opts WalkOptions) (int, error) {
	it, err := r.Commits(opts)
	if err != nil {
		return 0, err
	}
	n := 0
	err = it.ForEach(func(*Commit) error {
		n++
		return nil
	})
	return n, err
}

// WalkCommits calls fn for each commit of a walk. Returning storer.ErrStop
// stops the walk early without error.
func (r *Repository) WalkCommits(opts WalkOptions, fn func(*Commit) error) error {
	it, err := r.Commits(opts)
	if err != nil {
		return err
	}
	return it.ForEach(fn)
}

type commitSource interface {
	Next() (*object.Commit, error)
	Close()
}

// timeWalk yields commits newest committer time first. A commit's parents
// are loaded on the call after it is returned, so a missing parent is
// reported only after every commit ahead of it.
type timeWalk struct {
	s      storer.EncodedObjectStorer
	queue  *binaryheap.Heap
	seen   map[plumbing.Hash]struct{}
	expand *object.Commit
}

func newTimeWalk(s storer.EncodedObjectStorer, start plumbing.Hash) (*timeWalk, error) {
	c, err := object.GetCommit(s, start)
	if err != nil {
		return nil, fmt.Errorf("find commit %s: %w", start, err)
	}
	w := &timeWalk{
		s: s,
		queue: binaryheap.NewWith(func(a, b interface{}) int {
			ca, cb := a.(*object.Commit), b.(*object.Commit)
			if ca.Committer.When.After(cb.Committer.When) {
				return -1
			}
			if ca.Committer.When.Before(cb.Committer.When) {
				return 1
			}
			return strings.Compare(ca.Hash.String(), cb.Hash.String())
		}),
		seen: map[plumbing.Hash]struct{}{start: {}},
	}
	w.queue.Push(c)
	return w, nil
}

func (w *timeWalk) Next() (*object.Commit, error) {
	if c := w.expand; c != nil {
		w.expand = nil
		for _, p := range c.ParentHashes {
			if _, ok := w.seen[p]; ok {
				continue
			}
			w.seen[p] = struct{}{}
			pc, err := object.GetCommit(w.s, p)
			if err != nil {
				return nil, fmt.Errorf("find commit %s: %w", p, err)
			}
			w.queue.Push(pc)
		}
	}

	v, ok := w.queue.Pop()
	if !ok {
		return nil, io.EOF
	}
	c := v.(*object.Commit)
	w.expand = c
	return c, nil
}

func (w *timeWalk) Close() {
	w.queue.Clear()
	w.expand = nil
}

type walkNode struct {
	parents  []plumbing.Hash
	when     time.Time
	children int
	seq      int
}

// topologicalOrder returns every commit reachable from start so that each
// commit comes before its parents. With byTime, ties are broken by newer
// committer time; otherwise the walk prefers the most recently released
// parent, following first parents first.
func topologicalOrder(s storer.EncodedObjectStorer, start plumbing.Hash, byTime bool) ([]plumbing.Hash, error) {
	nodes := make(map[plumbing.Hash]*walkNode)
	queue := []plumbing.Hash{start}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if _, ok := nodes[h]; ok {
			continue
		}
		c, err := object.GetCommit(s, h)
		if err != nil {
			return nil, fmt.Errorf("find commit %s: %w", h, err)
		}
		nodes[h] = &walkNode{parents: c.ParentHashes, when: c.Committer.When}
		queue = append(queue, c.ParentHashes...)
	}

	for _, n := range nodes {
		for _, p := range n.parents {
			nodes[p].children++
		}
	}

	seq := 0
	ready := binaryheap.NewWith(func(a, b interface{}) int {
		na, nb := nodes[a.(plumbing.Hash)], nodes[b.(plumbing.Hash)]
		if byTime {
			if na.when.After(nb.when) {
				return -1
			}
			if na.when.Before(nb.when) {
				return 1
			}
		}
		// Later releases first.
		return nb.seq - na.seq
	})
	ready.Push(start)

	out := make([]plumbing.Hash, 0, len(nodes))
	for {
		v, ok := ready.Pop()
		if !ok {
			break
		}
		h := v.(plumbing.Hash)
		out = append(out, h)

		parents := nodes[h].parents
		for i := len(parents) - 1; i >= 0; i-- {
			pn := nodes[parents[i]]
			pn.children--
			if pn.children == 0 {
				seq++
				pn.seq = seq
				ready.Push(parents[i])
			}
		}
	}
	return out, nil
}
