// Package taskq provides a single-threaded task queue with cancellable
// deferred tasks. All tasks posted to a queue run serialized on one
// goroutine, so queue-confined state needs no locking.
package taskq

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Timeout is a handle to a deferred task. Cancel is idempotent and safe
// to call from any goroutine; a cancelled task never runs, even if its
// timer has already fired.
type Timeout struct {
	cancelled atomic.Bool
	timer     *time.Timer
}

// Cancel stops the deferred task. Calling Cancel more than once, or
// after the task has run, is a no-op.
func (t *Timeout) Cancel() {
	if t.cancelled.CompareAndSwap(false, true) && t.timer != nil {
		t.timer.Stop()
	}
}

// Cancelled reports whether Cancel has been called.
func (t *Timeout) Cancelled() bool {
	return t.cancelled.Load()
}

// Queue runs tasks serialized on a single worker goroutine.
type Queue struct {
	mu      sync.Mutex
	logger  *slog.Logger
	tasks   chan func()
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// New creates a Queue. Call Start before posting tasks.
func New(logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		logger: logger,
		tasks:  make(chan func(), 64),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (q *Queue) Start() {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return
	}
	q.running = true
	q.stopCh = make(chan struct{})
	q.doneCh = make(chan struct{})
	q.mu.Unlock()

	go q.run()
	q.logger.Debug("task queue started")
}

// Stop stops the worker and waits for it to finish. Tasks still queued
// are dropped.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	close(q.stopCh)
	q.mu.Unlock()

	<-q.doneCh
	q.logger.Debug("task queue stopped")
}

// Post enqueues fn to run on the queue. Posts after Stop are dropped.
func (q *Queue) Post(fn func()) {
	select {
	case q.tasks <- fn:
	case <-q.stopCh:
	}
}

// ScheduleAfter runs fn on the queue after d has elapsed. The returned
// handle cancels the task; cancellation wins any race with the timer as
// long as it happens before the task is picked up by the worker.
func (q *Queue) ScheduleAfter(d time.Duration, fn func()) *Timeout {
	t := &Timeout{}
	t.timer = time.AfterFunc(d, func() {
		q.Post(func() {
			if !t.cancelled.Load() {
				fn()
			}
		})
	})
	return t
}

// run is the worker loop.
func (q *Queue) run() {
	defer close(q.doneCh)
	for {
		select {
		case fn := <-q.tasks:
			fn()
		case <-q.stopCh:
			return
		}
	}
}

// PostSync runs fn on the queue and waits for it to finish. It reports
// false, without running fn, if the queue stops first.
func (q *Queue) PostSync(fn func()) bool {
	q.mu.Lock()
	stopCh := q.stopCh
	q.mu.Unlock()

	done := make(chan struct{})
	task := func() {
		fn()
		close(done)
	}
	select {
	case q.tasks <- task:
	case <-stopCh:
		return false
	}
	select {
	case <-done:
		return true
	case <-stopCh:
		return false
	}
}

// Sync posts a barrier task and waits for it to execute. Useful for
// callers that need a snapshot of queue-confined state.
func (q *Queue) Sync() {
	q.PostSync(func() {})
}
