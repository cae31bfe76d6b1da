package solver

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/gnolang/tpath/internal/syntax"
)

// Memo caches the answers of an underlying solver. Sibling paths share
// prefixes of their path conditions, so the same query is asked repeatedly.
// A Memo is safe for concurrent use when the wrapped solver is.
type Memo struct {
	next Solver

	mu      sync.Mutex
	entries map[uint64][]memoEntry
	hits    int
	misses  int
}

type memoEntry struct {
	key        string
	assignment Assignment
	sat        bool
}

var _ Solver = (*Memo)(nil)

// NewMemo wraps next with a cache.
func NewMemo(next Solver) *Memo {
	return &Memo{
		next:    next,
		entries: make(map[uint64][]memoEntry),
	}
}

func (m *Memo) Solve(ctx context.Context, params []syntax.Param, conds []syntax.Expr) (Assignment, bool, error) {
	key := queryKey(params, conds)
	sum := xxhash.Sum64String(key)

	m.mu.Lock()
	for _, e := range m.entries[sum] {
		if e.key == key {
			m.hits++
			m.mu.Unlock()
			return e.assignment, e.sat, nil
		}
	}
	m.misses++
	m.mu.Unlock()

	a, sat, err := m.next.Solve(ctx, params, conds)
	if err != nil {
		// errors, cancellation included, are not cached
		return nil, false, err
	}

	m.mu.Lock()
	m.entries[sum] = append(m.entries[sum], memoEntry{key: key, assignment: a, sat: sat})
	m.mu.Unlock()
	return a, sat, nil
}

// Stats returns the number of cache hits and misses so far.
func (m *Memo) Stats() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}

func queryKey(params []syntax.Param, conds []syntax.Expr) string {
	var b []byte
	for _, p := range params {
		b = append(b, p.Name...)
		b = append(b, ' ')
		b = append(b, p.Type...)
		b = append(b, ',')
	}
	b = append(b, '|')
	for _, c := range conds {
		b = append(b, c.String()...)
		b = append(b, ';')
	}
	return string(b)
}
