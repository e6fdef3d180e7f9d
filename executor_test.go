package relay

import (
	"sync"
	"testing"
)

func TestPool_ExecutesTasks(t *testing.T) {
	pool := NewPool(2, 4)
	defer pool.Close()

	var wg sync.WaitGroup
	var mu sync.Mutex
	done := 0

	for i := 0; i < 4; i++ {
		wg.Add(1)
		if !pool.Execute(func() {
			mu.Lock()
			done++
			mu.Unlock()
			wg.Done()
		}) {
			t.Fatal("expected task to be accepted")
		}
	}
	wg.Wait()

	if done != 4 {
		t.Errorf("expected 4 tasks run, got %d", done)
	}
}

func TestPool_DropsUnderSaturation(t *testing.T) {
	pool := NewPool(1, 1)
	defer pool.Close()

	block := make(chan struct{})
	started := make(chan struct{})

	// Occupy the single worker.
	pool.Execute(func() {
		close(started)
		<-block
	})
	<-started

	// Fill the queue.
	if !pool.Execute(func() {}) {
		t.Fatal("queued task should be accepted")
	}

	// Saturated: further work is dropped, never retried.
	if pool.Execute(func() {}) {
		t.Error("saturated pool should drop work")
	}
	if pool.Dropped() != 1 {
		t.Errorf("expected 1 dropped task, got %d", pool.Dropped())
	}

	close(block)
}

func TestPool_RejectsAfterClose(t *testing.T) {
	pool := NewPool(1, 1)
	pool.Close()

	if pool.Execute(func() {}) {
		t.Error("closed pool should reject tasks")
	}
}

func TestPool_ConcurrentExecuteAndClose(t *testing.T) {
	// Submissions racing Close must be rejected cleanly, never allowed
	// to send on the closed task channel.
	for i := 0; i < 200; i++ {
		pool := NewPool(1, 2)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 32; j++ {
				if !pool.Execute(func() {}) {
					return
				}
			}
		}()

		pool.Close()
		wg.Wait()
	}
}

func TestSetRuntime_SingleSet(t *testing.T) {
	// The runtime is process-scoped; the zero Runtime keeps delivery
	// synchronous for the rest of the test binary.
	if err := SetRuntime(Runtime{}); err != nil {
		t.Fatalf("first SetRuntime failed: %v", err)
	}
	if err := SetRuntime(Runtime{}); err != ErrRuntimeSet {
		t.Errorf("expected ErrRuntimeSet, got %v", err)
	}
	if r := CurrentRuntime(); r.Work != nil || r.Exit != nil {
		t.Error("expected zero runtime executors")
	}
}
