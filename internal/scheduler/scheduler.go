// Package scheduler implements a cooperative single-fiber task queue:
// Drain runs queued tasks one at a time in FIFO order, and a semaphore
// bounds concurrent native work. The VM's Await instruction does not
// call into this package and never suspends: it takes a future's
// current value (or raises its error) and continues.
package scheduler

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/horizonanalytic/stratum/internal/vm"
)

// Task is one parked continuation: a thunk that runs to either
// completion or its next await point.
type Task func() (vm.Value, error)

// Scheduler runs Stratum's async tasks cooperatively: at most one task
// body executes at a time (single-threaded semantics), but host-side
// native work a task awaits on (timers, IO) may run concurrently up to
// the maxConcurrent limit given to New, bounded by a semaphore so a runaway program can't
// exhaust host resources.
type Scheduler struct {
	ready []Task
	sem   *semaphore.Weighted
}

// New creates a Scheduler allowing at most maxConcurrent outstanding
// native operations at once.
func New(maxConcurrent int64) *Scheduler {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Scheduler{sem: semaphore.NewWeighted(maxConcurrent)}
}

// Enqueue schedules t to run the next time Drain advances the queue.
func (s *Scheduler) Enqueue(t Task) {
	s.ready = append(s.ready, t)
}

// Drain runs every currently queued task to completion, in FIFO order.
// A task that enqueues further tasks (by awaiting another future) has
// those appended and picked up within the same Drain call, matching
// §5's "no async runtime is present" fallback of running an async
// top-level program to completion with all futures resolved eagerly.
func (s *Scheduler) Drain(ctx context.Context) error {
	for len(s.ready) > 0 {
		t := s.ready[0]
		s.ready = s.ready[1:]
		if _, err := t(); err != nil {
			return err
		}
	}
	return nil
}

// RunNative runs fn under the concurrency semaphore, for native
// functions that perform blocking host work (file IO, network) on
// behalf of an awaited future.
func (s *Scheduler) RunNative(ctx context.Context, fn func() (vm.Value, error)) (vm.Value, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return vm.Value{}, err
	}
	defer s.sem.Release(1)
	return fn()
}

// Resolve immediately settles future with value/err and wakes any
// parked waiters registered on it (used when a native call completes
// synchronously — the common case for this single-fiber scheduler).
func Resolve(future *vm.FutureObj, value vm.Value, err error) {
	future.Done = true
	future.Value = value
	future.Err = err
	for _, w := range future.Waiters {
		w(value, err)
	}
	future.Waiters = nil
}
