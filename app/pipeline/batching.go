package pipeline

import (
	"sync"
	"time"
)

const (
	// batchSize is how many queued items one tick releases downstream.
	batchSize = 6

	batchInterval = 200 * time.Millisecond
)

type queuedItem struct {
	title      string
	link       string
	thumbnail  string
	categoryID int
	sourceName string
}

// BatchingSink queues AddItem calls and drains them in fixed-size batches on
// a periodic tick, keeping the consumer responsive when a high-volume source
// delivers a burst. Label and clear calls pass through untouched.
type BatchingSink struct {
	inner Sink

	mu      sync.Mutex
	queue   []queuedItem
	running bool
	drained []func()
}

var _ Sink = (*BatchingSink)(nil)

func NewBatchingSink(inner Sink) *BatchingSink {
	return &BatchingSink{inner: inner}
}

func (s *BatchingSink) SetLabel(text string) { s.inner.SetLabel(text) }
func (s *BatchingSink) ClearItems()          { s.inner.ClearItems() }

func (s *BatchingSink) AddItem(title, link, thumbnail string, categoryID int, sourceName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue = append(s.queue, queuedItem{title, link, thumbnail, categoryID, sourceName})
	if !s.running {
		s.running = true
		time.AfterFunc(batchInterval, s.tick)
	}
}

// NotifyDrained registers a completion callback that fires only once the
// queue has fully drained. With an already-empty queue it fires immediately.
func (s *BatchingSink) NotifyDrained(fn func()) {
	s.mu.Lock()
	if s.running || len(s.queue) > 0 {
		s.drained = append(s.drained, fn)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	fn()
}

func (s *BatchingSink) tick() {
	s.mu.Lock()
	n := len(s.queue)
	if n > batchSize {
		n = batchSize
	}
	batch := s.queue[:n]
	s.queue = s.queue[n:]
	s.mu.Unlock()

	for _, item := range batch {
		s.inner.AddItem(item.title, item.link, item.thumbnail, item.categoryID, item.sourceName)
	}

	s.mu.Lock()
	if len(s.queue) > 0 {
		time.AfterFunc(batchInterval, s.tick)
		s.mu.Unlock()
		return
	}
	s.running = false
	pending := s.drained
	s.drained = nil
	s.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}
