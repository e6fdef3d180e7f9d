package relay

import (
	"sync"
	"sync/atomic"
)

// Executor accepts tasks for asynchronous execution. The engine requires
// nothing beyond task submission; sizing, shutdown, and drain behavior
// belong to the provider. Execute reports whether the task was accepted;
// saturated executors are free to drop work, and the engine never retries
// dropped work itself.
type Executor interface {
	Execute(task func()) bool
}

// Pool is a bounded worker-pool Executor. Tasks queue up to the configured
// capacity; submissions beyond that are dropped rather than blocking the
// dispatching goroutine.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup

	// mu keeps Close from closing the task channel while a concurrent
	// Execute is mid-send.
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

// NewPool starts a Pool with the given worker count and queue capacity.
// Both are clamped to a minimum of 1.
func NewPool(workers, queue int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queue < 1 {
		queue = 1
	}
	p := &Pool{tasks: make(chan func(), queue)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.run()
	}
	return p
}

func (p *Pool) run() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Execute submits a task. It reports false when the pool is closed or the
// queue is full; dropped tasks are counted but never retried. The send is
// non-blocking, so the read lock is held only for the queue attempt.
func (p *Pool) Execute(task func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.tasks <- task:
		return true
	default:
		p.dropped.Add(1)
		return false
	}
}

// Dropped returns the number of tasks rejected under saturation.
func (p *Pool) Dropped() uint64 {
	return p.dropped.Load()
}

// Close stops accepting tasks and waits for queued work to finish.
// Closing an already-closed pool is a no-op.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}

// Ensure Pool implements Executor.
var _ Executor = (*Pool)(nil)

// Runtime holds the process-scoped executors backing asynchronous delivery:
// a work executor for ordinary dispatch and an exit executor for deferred
// consumer flushing and lower-priority teardown. Either may be nil, in
// which case the corresponding work runs synchronously.
type Runtime struct {
	Work Executor
	Exit Executor
}

var activeRuntime atomic.Pointer[Runtime]

// SetRuntime installs the process runtime. It must be called before the
// graph is used and at most once; a second call returns ErrRuntimeSet.
func SetRuntime(r Runtime) error {
	if !activeRuntime.CompareAndSwap(nil, &r) {
		return ErrRuntimeSet
	}
	return nil
}

// CurrentRuntime returns the installed runtime, or the zero Runtime
// (synchronous delivery) when none was set.
func CurrentRuntime() Runtime {
	if r := activeRuntime.Load(); r != nil {
		return *r
	}
	return Runtime{}
}

// execute runs task through ex when non-nil, synchronously otherwise.
func execute(ex Executor, task func()) {
	if ex == nil {
		task()
		return
	}
	ex.Execute(task)
}
