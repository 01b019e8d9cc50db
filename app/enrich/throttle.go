package enrich

import "sync"

// Throttle caps the number of concurrently active enrichment fetches.
// Acquisition never blocks; callers that miss a slot reschedule themselves.
type Throttle struct {
	mu     sync.Mutex
	active int
	max    int
}

func NewThrottle(max int) *Throttle {
	return &Throttle{max: max}
}

// TryAcquire claims a slot if one is free. It never blocks.
func (t *Throttle) TryAcquire() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active >= t.max {
		return false
	}
	t.active++
	return true
}

// Release returns a slot. Must be called exactly once per successful
// TryAcquire, on every exit path including failures.
func (t *Throttle) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active > 0 {
		t.active--
	}
}

// Active returns the number of currently held slots.
func (t *Throttle) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}
