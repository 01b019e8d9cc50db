package pipeline

import "context"

// Loop is the single-consumer execution context that owns all shared
// presentation state. Workers never mutate that state directly; they post
// closures here and the one consumer goroutine applies them in order.
type Loop struct {
	tasks chan func()
}

func NewLoop() *Loop {
	return &Loop{tasks: make(chan func(), 256)}
}

// Run consumes posted tasks until ctx is cancelled. It must be called from
// exactly one goroutine.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case task := <-l.tasks:
			task()
		case <-ctx.Done():
			return
		}
	}
}

// Post schedules fn onto the consumer goroutine.
func (l *Loop) Post(fn func()) {
	l.tasks <- fn
}
