package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/horizonanalytic/stratum/internal/vm"
)

func TestDrainRunsQueuedTasksInOrder(t *testing.T) {
	s := New(1)
	var order []int
	s.Enqueue(func() (vm.Value, error) {
		order = append(order, 1)
		return vm.NullVal(), nil
	})
	s.Enqueue(func() (vm.Value, error) {
		order = append(order, 2)
		return vm.NullVal(), nil
	})
	if err := s.Drain(context.Background()); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("got order %v, want [1 2]", order)
	}
}

// A task that enqueues another task is picked up within the same
// Drain call, rather than requiring a second Drain invocation.
func TestDrainPicksUpTasksEnqueuedDuringDrain(t *testing.T) {
	s := New(1)
	ran := 0
	s.Enqueue(func() (vm.Value, error) {
		ran++
		s.Enqueue(func() (vm.Value, error) {
			ran++
			return vm.NullVal(), nil
		})
		return vm.NullVal(), nil
	})
	if err := s.Drain(context.Background()); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if ran != 2 {
		t.Fatalf("got %d tasks run, want 2", ran)
	}
}

func TestDrainStopsAtFirstError(t *testing.T) {
	s := New(1)
	wantErr := errors.New("boom")
	ranSecond := false
	s.Enqueue(func() (vm.Value, error) {
		return vm.Value{}, wantErr
	})
	s.Enqueue(func() (vm.Value, error) {
		ranSecond = true
		return vm.NullVal(), nil
	})
	if err := s.Drain(context.Background()); err != wantErr {
		t.Fatalf("got err %v, want %v", err, wantErr)
	}
	if ranSecond {
		t.Fatalf("second task should not have run after the first errored")
	}
}

// With maxConcurrent 1, a second RunNative call blocks behind the
// first until it releases the semaphore, rather than running
// concurrently.
func TestRunNativeSerializesBeyondConcurrencyLimit(t *testing.T) {
	s := New(1)
	inside := make(chan struct{})
	release := make(chan struct{})
	firstDone := make(chan struct{})
	go func() {
		s.RunNative(context.Background(), func() (vm.Value, error) {
			inside <- struct{}{}
			<-release
			return vm.NullVal(), nil
		})
		close(firstDone)
	}()
	<-inside

	secondStarted := make(chan struct{})
	go func() {
		s.RunNative(context.Background(), func() (vm.Value, error) {
			close(secondStarted)
			return vm.NullVal(), nil
		})
	}()

	select {
	case <-secondStarted:
		t.Fatalf("second native call started while the first still held the semaphore")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-firstDone
	<-secondStarted
}

func TestRunNativeCanceledContextErrors(t *testing.T) {
	s := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.RunNative(ctx, func() (vm.Value, error) {
		t.Fatalf("RunNative should not invoke fn when its context is already canceled")
		return vm.NullVal(), nil
	}); err == nil {
		t.Fatalf("expected a context-cancellation error acquiring the semaphore")
	}
}

func TestResolveSettlesFutureAndWakesWaiters(t *testing.T) {
	f := &vm.FutureObj{}
	var gotValue vm.Value
	var gotErr error
	woken := false
	f.Waiters = append(f.Waiters, func(v vm.Value, err error) {
		woken = true
		gotValue = v
		gotErr = err
	})

	Resolve(f, vm.IntVal(7), nil)

	if !f.Done {
		t.Fatalf("expected future to be marked Done")
	}
	if !woken {
		t.Fatalf("expected the waiter to be invoked")
	}
	if gotValue.AsInt() != 7 {
		t.Errorf("got value %v, want 7", gotValue)
	}
	if gotErr != nil {
		t.Errorf("got error %v, want nil", gotErr)
	}
	if f.Waiters != nil {
		t.Errorf("expected Waiters to be cleared after Resolve")
	}
}
