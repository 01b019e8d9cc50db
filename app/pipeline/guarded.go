package pipeline

// GuardedSink wraps a presentation sink so that every effect is marshalled
// onto the loop and re-checked against the live epoch before applying. A
// superseded epoch's effects are dropped silently, which is what makes
// un-cancelled background work harmless.
type GuardedSink struct {
	inner Sink
	guard *EpochGuard
	epoch uint64
	loop  *Loop

	// cleared is touched only on the loop goroutine.
	cleared bool
}

var _ Sink = (*GuardedSink)(nil)

func NewGuardedSink(inner Sink, guard *EpochGuard, epoch uint64, loop *Loop) *GuardedSink {
	return &GuardedSink{inner: inner, guard: guard, epoch: epoch, loop: loop}
}

func (s *GuardedSink) SetLabel(text string) {
	s.Do(func() { s.inner.SetLabel(text) })
}

// ClearItems is idempotent per epoch: at most one real clear executes no
// matter how many delivery branches request one.
func (s *GuardedSink) ClearItems() {
	s.Do(func() {
		if s.cleared {
			return
		}
		s.cleared = true
		s.inner.ClearItems()
	})
}

func (s *GuardedSink) AddItem(title, link, thumbnail string, categoryID int, sourceName string) {
	s.Do(func() { s.inner.AddItem(title, link, thumbnail, categoryID, sourceName) })
}

// Do marshals an arbitrary effect through the same epoch-checked path the
// sink methods use.
func (s *GuardedSink) Do(effect func()) {
	s.loop.Post(func() {
		if !s.guard.IsCurrent(s.epoch) {
			return
		}
		effect()
	})
}
