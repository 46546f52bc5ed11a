package taskq

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_PostRunsInOrder(t *testing.T) {
	q := New(nil)
	q.Start()
	defer q.Stop()

	var mu sync.Mutex
	var got []int
	for i := 0; i < 10; i++ {
		i := i
		q.Post(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	q.Sync()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 10)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestQueue_ScheduleAfterFires(t *testing.T) {
	q := New(nil)
	q.Start()
	defer q.Stop()

	fired := make(chan struct{})
	q.ScheduleAfter(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("scheduled task did not fire")
	}
}

func TestQueue_CancelPreventsRun(t *testing.T) {
	q := New(nil)
	q.Start()
	defer q.Stop()

	var mu sync.Mutex
	ran := false
	h := q.ScheduleAfter(20*time.Millisecond, func() {
		mu.Lock()
		ran = true
		mu.Unlock()
	})
	h.Cancel()

	time.Sleep(50 * time.Millisecond)
	q.Sync()

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, ran)
	assert.True(t, h.Cancelled())
}

func TestQueue_CancelIdempotent(t *testing.T) {
	q := New(nil)
	q.Start()
	defer q.Stop()

	h := q.ScheduleAfter(time.Hour, func() {})
	h.Cancel()
	h.Cancel()
	h.Cancel()
	assert.True(t, h.Cancelled())
}

func TestQueue_CancelAfterTimerFired(t *testing.T) {
	// Cancelling between timer expiry and task pickup must still win:
	// the queue is not started, so the posted closure sits in the
	// channel while we cancel.
	q := New(nil)

	ran := false
	h := q.ScheduleAfter(time.Millisecond, func() { ran = true })
	time.Sleep(20 * time.Millisecond)
	h.Cancel()

	q.Start()
	q.Sync()
	q.Stop()

	assert.False(t, ran)
}

func TestQueue_StartStopIdempotent(t *testing.T) {
	q := New(nil)
	q.Start()
	q.Start()
	q.Stop()
	q.Stop()
}

func TestQueue_PostSyncWaitsForTask(t *testing.T) {
	q := New(nil)
	q.Start()
	defer q.Stop()

	ran := false
	ok := q.PostSync(func() { ran = true })

	// PostSync returns only after the task executed, so no lock is
	// needed to observe the write.
	assert.True(t, ok)
	assert.True(t, ran)
}

func TestQueue_PostSyncAfterStopReturnsFalse(t *testing.T) {
	q := New(nil)
	q.Start()
	q.Stop()

	done := make(chan bool, 1)
	go func() {
		done <- q.PostSync(func() { t.Error("task ran on a stopped queue") })
	}()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("PostSync blocked after Stop")
	}
}

func TestQueue_PostAfterStopDropped(t *testing.T) {
	q := New(nil)
	q.Start()
	q.Stop()

	// Must not block.
	done := make(chan struct{})
	go func() {
		q.Post(func() {})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Post blocked after Stop")
	}
}
