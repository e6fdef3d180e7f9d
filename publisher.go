package relay

import "sync"

// Observer receives committed snapshots from a Path.
type Observer[T any] func(v *Versioned[T])

// Publisher is the observer registry and delivery surface of a Path.
//
// With a nil Executor, Publish delivers synchronously at commit time, in
// registration order; the observer registered first is delivered to first.
// With a non-nil Executor, each delivery is submitted as a task and no
// ordering is guaranteed beyond each observer's own submission sequence.
type Publisher[T any] struct {
	mu       sync.RWMutex
	nextID   uint64
	entries  []pubEntry[T]
	executor Executor
}

type pubEntry[T any] struct {
	id uint64
	fn Observer[T]
}

// NewPublisher creates a Publisher. executor may be nil for synchronous
// delivery.
func NewPublisher[T any](executor Executor) *Publisher[T] {
	return &Publisher[T]{executor: executor}
}

// Add registers an observer and returns its subscription id.
func (p *Publisher[T]) Add(fn Observer[T]) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	p.entries = append(p.entries, pubEntry[T]{id: p.nextID, fn: fn})
	return p.nextID
}

// Remove drops the observer with the given subscription id and reports
// whether it was registered.
func (p *Publisher[T]) Remove(id uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, e := range p.entries {
		if e.id == id {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether the subscription id is registered.
func (p *Publisher[T]) Contains(id uint64) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, e := range p.entries {
		if e.id == id {
			return true
		}
	}
	return false
}

// Len returns the number of registered observers.
func (p *Publisher[T]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

// Publish delivers a snapshot to every registered observer. The observer
// list is snapshotted first so observers may unsubscribe during delivery.
func (p *Publisher[T]) Publish(v *Versioned[T]) {
	p.mu.RLock()
	entries := make([]pubEntry[T], len(p.entries))
	copy(entries, p.entries)
	p.mu.RUnlock()

	for _, e := range entries {
		fn := e.fn
		if p.executor == nil {
			fn(v)
			continue
		}
		p.executor.Execute(func() { fn(v) })
	}
}
