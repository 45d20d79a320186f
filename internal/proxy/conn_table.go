package proxy

import "sync"

// connTable is the set of admitted connection pairs, keyed by either
// socket of the pair so a callback that only knows which socket fired
// can recover the pair it belongs to. Guarded by its own RWMutex since
// callbacks can fire concurrently with accept and teardown.
type connTable struct {
	mu    sync.RWMutex
	pairs map[Socket]*connPair
}

func newConnTable() *connTable {
	return &connTable{pairs: make(map[Socket]*connPair)}
}

func (t *connTable) add(p *connPair) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pairs[p.inbound] = p
	t.pairs[p.outbound] = p
}

func (t *connTable) remove(p *connPair) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pairs, p.inbound)
	delete(t.pairs, p.outbound)
}

func (t *connTable) get(s Socket) (*connPair, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.pairs[s]
	return p, ok
}

func (t *connTable) all() []*connPair {
	t.mu.RLock()
	defer t.mu.RUnlock()
	seen := make(map[*connPair]bool, len(t.pairs))
	out := make([]*connPair, 0, len(t.pairs)/2+1)
	for _, p := range t.pairs {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

func (t *connTable) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.pairs)
}
