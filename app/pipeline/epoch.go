package pipeline

import "sync"

// EpochGuard is a monotonic generation counter identifying the current fetch
// request. The orchestrator is its single writer; background jobs only ever
// compare against it. In-flight work from a superseded epoch is not
// cancelled, its results are discarded at the check-before-mutate boundary.
type EpochGuard struct {
	mu      sync.Mutex
	current uint64
}

func NewEpochGuard() *EpochGuard {
	return &EpochGuard{}
}

// Begin advances to the next epoch and returns it. The returned epoch is
// current until the next Begin call.
func (g *EpochGuard) Begin() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.current++
	return g.current
}

// IsCurrent reports whether epoch is still the live one. Every async
// completion calls this before touching shared state; false means drop
// silently.
func (g *EpochGuard) IsCurrent(epoch uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.current == epoch
}
