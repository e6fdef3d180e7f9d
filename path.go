package relay

import (
	"context"
	"sync"

	"github.com/zoobzio/capitan"
)

// Path is a node in the propagation graph: a versioned Cache, an activation
// state machine, and a Publisher of committed snapshots. Paths compose via
// Map and SwitchMap; upstream work only happens while something downstream
// is listening.
//
// Writes race through compare-and-swap with equality deduplication, so
// committing the same value twice produces exactly one downstream emission.
type Path[T any] struct {
	cache  *Cache[T]
	pub    *Publisher[T]
	act    activation
	onSwap SwapObserver[T]

	metrics MetricsProvider
}

// pathConfig holds construction options for a Path.
type pathConfig[T any] struct {
	equals   EqualsFunc[T]
	executor Executor
	metrics  MetricsProvider
}

// PathOption configures a Path at construction.
type PathOption[T any] func(*pathConfig[T])

// WithEquals sets the equality used for dispatch deduplication.
// Default: reflect.DeepEqual.
func WithEquals[T any](equals EqualsFunc[T]) PathOption[T] {
	return func(c *pathConfig[T]) {
		c.equals = equals
	}
}

// WithExecutor sets the delivery executor for the Path's observers,
// overriding the runtime's work executor. A nil executor delivers
// synchronously at commit time in registration order.
func WithExecutor[T any](executor Executor) PathOption[T] {
	return func(c *pathConfig[T]) {
		c.executor = executor
	}
}

// WithMetrics attaches a MetricsProvider to the Path.
func WithMetrics[T any](m MetricsProvider) PathOption[T] {
	return func(c *pathConfig[T]) {
		c.metrics = m
	}
}

// NewPath creates a root Path with no upstream. Values enter through Set or
// CompareAndSwap and propagate to derived Paths while they are active.
func NewPath[T any](opts ...PathOption[T]) *Path[T] {
	cfg := &pathConfig[T]{executor: CurrentRuntime().Work}
	for _, opt := range opts {
		opt(cfg)
	}

	p := &Path[T]{metrics: cfg.metrics}
	p.cache = NewCache(cfg.equals, p.dispatch)
	p.pub = NewPublisher[T](cfg.executor)
	p.act.onChange = p.emitActivation
	return p
}

// dispatch is the cache swap observer: committed snapshots fan out to the
// Publisher, rejected attempts are absorbed.
func (p *Path[T]) dispatch(committed bool, prev, next *Versioned[T]) {
	if p.onSwap != nil {
		p.onSwap(committed, prev, next)
	}
	if p.metrics != nil {
		if committed {
			p.metrics.OnCommit()
		} else {
			p.metrics.OnSuppressed()
		}
	}
	if committed {
		p.pub.Publish(next)
	}
}

// Get returns the current snapshot, possibly the default sentinel.
func (p *Path[T]) Get() *Versioned[T] {
	return p.cache.Get()
}

// Set attempts a best-effort commit of value, subject to deduplication.
// It reports whether the commit happened; a concurrent writer winning the
// race or an equal value both report false, and the engine never retries.
func (p *Path[T]) Set(value T) bool {
	return p.cache.WeakSet(value)
}

// CompareAndSwap commits value only if the Path still holds expected.
func (p *Path[T]) CompareAndSwap(expected *Versioned[T], value T) bool {
	return p.cache.CompareAndSwap(expected, value)
}

// State returns the Path's activation state.
func (p *Path[T]) State() ActivationState {
	return p.act.current()
}

// Activate adds a direct active reference to the Path, cascading activation
// up the parent chain and back-propagating the most recent upstream value.
// Each Activate must be balanced by one Deactivate.
func (p *Path[T]) Activate() {
	p.act.retain()
}

// Deactivate drops a direct active reference. When the last reference goes,
// the upstream subscription is dropped and deactivation cascades upward.
func (p *Path[T]) Deactivate() {
	p.act.release()
}

// Publisher exposes the Path's observer registry. Observers added here do
// not hold an activation reference; use retain-style consumers (Getter,
// derived Paths) when upstream work should stay alive.
func (p *Path[T]) Publisher() *Publisher[T] {
	return p.pub
}

// retain activates the Path for one downstream consumer: the subscription
// is installed first, then the current value (if any) is back-propagated to
// obs immediately, so no emission can be missed in between. Returns the
// subscription id for release.
func (p *Path[T]) retain(obs Observer[T]) uint64 {
	p.act.retain()
	id := p.pub.Add(obs)
	if v := p.cache.Get(); !v.IsDefault() {
		obs(v)
	}
	return id
}

// release undoes retain: the observer is removed before the activation
// reference is dropped.
func (p *Path[T]) release(id uint64) {
	p.pub.Remove(id)
	p.act.release()
}

// forcePublish delivers the current snapshot to every observer regardless
// of deduplication. Tree transactions use it to issue their single
// coordinated dispatch.
func (p *Path[T]) forcePublish() {
	p.pub.Publish(p.cache.Get())
}

func (p *Path[T]) emitActivation(active bool) {
	if p.metrics != nil {
		p.metrics.OnActivation(active)
	}
	if active {
		capitan.Emit(context.Background(), PathActivated)
		return
	}
	capitan.Emit(context.Background(), PathDeactivated)
}

// Map derives a Path whose value is transform applied to each committed
// parent value. The child only subscribes to the parent while active.
func Map[T, U any](parent *Path[T], transform func(T) U, opts ...PathOption[U]) *Path[U] {
	return OpenMap(parent, transform, nil, nil, opts...)
}

// OpenMap is Map with the child's swap observer and activation-change hook
// exposed. The engine's own consumers (Tree, Getter, Link) use it to wire
// their bookkeeping into the dispatch path.
func OpenMap[T, U any](parent *Path[T], transform func(T) U, onSwap SwapObserver[U], onActive func(bool), opts ...PathOption[U]) *Path[U] {
	child := NewPath(opts...)
	child.onSwap = onSwap

	var subID uint64
	child.act.attach = func() {
		subID = parent.retain(func(v *Versioned[T]) {
			child.Set(transform(v.Value()))
		})
	}
	child.act.detach = func() {
		parent.release(subID)
	}
	if onActive != nil {
		child.act.onChange = func(active bool) {
			child.emitActivation(active)
			onActive(active)
		}
	}
	return child
}

// SwitchMap derives a Path that, on each parent emission, selects a target
// Path from the emitted value and rebinds its upstream subscription to that
// target. Only the most recently selected target is subscribed at any time;
// the previous target is released subject to its own reference count.
func SwitchMap[T, U any](parent *Path[T], selectTarget func(T) *Path[U], opts ...PathOption[U]) *Path[U] {
	return OpenSwitchMap(parent, selectTarget, nil, nil, opts...)
}

// OpenSwitchMap is SwitchMap with the child's swap observer and
// activation-change hook exposed.
func OpenSwitchMap[T, U any](parent *Path[T], selectTarget func(T) *Path[U], onSwap SwapObserver[U], onActive func(bool), opts ...PathOption[U]) *Path[U] {
	child := NewPath(opts...)
	child.onSwap = onSwap

	var mu sync.Mutex
	var live bool
	var target *Path[U]
	var targetID uint64

	// adopt rebinds the upstream subscription to next. A parent emission
	// may still be in flight when the switch deactivates; the live flag
	// keeps such a straggler from re-retaining a target after detach.
	adopt := func(next *Path[U]) {
		mu.Lock()
		defer mu.Unlock()
		if !live || next == target {
			return
		}
		if target != nil {
			target.release(targetID)
		}
		target = next
		if target != nil {
			targetID = target.retain(func(v *Versioned[U]) {
				child.Set(v.Value())
			})
		}
	}

	var parentID uint64
	child.act.attach = func() {
		mu.Lock()
		live = true
		mu.Unlock()
		parentID = parent.retain(func(v *Versioned[T]) {
			adopt(selectTarget(v.Value()))
		})
	}
	child.act.detach = func() {
		parent.release(parentID)
		mu.Lock()
		live = false
		if target != nil {
			target.release(targetID)
			target = nil
		}
		mu.Unlock()
	}
	if onActive != nil {
		child.act.onChange = func(active bool) {
			child.emitActivation(active)
			onActive(active)
		}
	}
	return child
}
