package ledger

import "sync"

type pairKey struct {
	actor, counterpart string
}

// guard allows one payment transition at a time per (actor, counterpart).
// Unlike a per-key mutex it never blocks: a second caller is refused.
type guard struct {
	mu       sync.Mutex
	inFlight map[pairKey]struct{}
}

func newGuard() *guard {
	return &guard{inFlight: make(map[pairKey]struct{})}
}

// acquire reserves the pair and returns its release func, or false if the
// pair is already reserved.
func (g *guard) acquire(actor, counterpart string) (func(), bool) {
	key := pairKey{actor, counterpart}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[key]; busy {
		return nil, false
	}
	g.inFlight[key] = struct{}{}

	return func() {
		g.mu.Lock()
		delete(g.inFlight, key)
		g.mu.Unlock()
	}, true
}
