package relay

import (
	"context"
	"sync"

	"github.com/zoobzio/capitan"
)

// Getter is a terminal, explicitly-activated read endpoint over a source
// Path. While active it mirrors the source's committed values; consumers
// that arrive before any value exists can register for exactly-once
// deferred delivery of the first value.
//
// Deactivating clears pending deferred consumers without invoking them;
// callers that deactivate before a first value arrives lose those
// registrations by design.
type Getter[T any] struct {
	source *Path[T]
	cache  *Cache[T]
	exit   Executor

	// lifeMu serializes activate/deactivate transitions so a concurrent
	// pair cannot interleave into a half-installed subscription.
	lifeMu sync.Mutex

	mu       sync.Mutex
	active   bool
	subID    uint64
	deferred []func(T)
}

// getterConfig holds construction options for a Getter.
type getterConfig[T any] struct {
	equals EqualsFunc[T]
	exit   Executor
}

// GetterOption configures a Getter at construction.
type GetterOption[T any] func(*getterConfig[T])

// WithGetterEquals sets the equality used by the Getter's mirror cache.
func WithGetterEquals[T any](equals EqualsFunc[T]) GetterOption[T] {
	return func(c *getterConfig[T]) {
		c.equals = equals
	}
}

// WithExitExecutor sets the executor used to flush deferred consumers.
// Defaults to the runtime's exit executor, or synchronous delivery when no
// runtime is configured.
func WithExitExecutor[T any](ex Executor) GetterOption[T] {
	return func(c *getterConfig[T]) {
		c.exit = ex
	}
}

// NewGetter binds a Getter to its source Path. The Getter starts inactive.
func NewGetter[T any](source *Path[T], opts ...GetterOption[T]) *Getter[T] {
	cfg := &getterConfig[T]{exit: CurrentRuntime().Exit}
	for _, opt := range opts {
		opt(cfg)
	}

	g := &Getter[T]{source: source, exit: cfg.exit}
	g.cache = NewCache(cfg.equals, func(committed bool, _, next *Versioned[T]) {
		if committed {
			g.flush(next.Value())
		}
	})
	return g
}

// Activate subscribes to the source, cascading activation up the parent
// chain, and immediately back-propagates the source's most recent value
// into the mirror if one exists. Activating an active Getter is a no-op.
func (g *Getter[T]) Activate() {
	g.lifeMu.Lock()
	defer g.lifeMu.Unlock()

	g.mu.Lock()
	if g.active {
		g.mu.Unlock()
		return
	}
	g.active = true
	g.mu.Unlock()

	// Back-propagation may run deferred flushes before retain returns,
	// which is why the queue lock is not held here.
	id := g.source.retain(g.accept)

	g.mu.Lock()
	g.subID = id
	g.mu.Unlock()
}

// Deactivate unsubscribes from the source and clears pending deferred
// consumers without invoking them. Deactivating an inactive Getter is a
// no-op.
func (g *Getter[T]) Deactivate() {
	g.lifeMu.Lock()
	defer g.lifeMu.Unlock()

	g.mu.Lock()
	if !g.active {
		g.mu.Unlock()
		return
	}
	g.active = false
	id := g.subID
	g.deferred = nil
	g.mu.Unlock()

	g.source.release(id)
}

// Active reports whether the Getter is currently subscribed.
func (g *Getter[T]) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// Get returns the current mirrored value. Reading while inactive is a
// programming error reported as ErrNotActive; a missing first value is
// reported as ErrNoValue.
func (g *Getter[T]) Get() (T, error) {
	var zero T
	if !g.Active() {
		return zero, ErrNotActive
	}
	v := g.cache.Get()
	if v.IsDefault() {
		return zero, ErrNoValue
	}
	return v.Value(), nil
}

// PassiveGet returns whatever the mirror holds, possibly the default
// sentinel. Always valid, active or not.
func (g *Getter[T]) PassiveGet() *Versioned[T] {
	return g.cache.Get()
}

// First invokes consumer immediately if a value is already present and
// reports true; otherwise it enqueues consumer for exactly-once delivery
// of the first committed value and reports false.
func (g *Getter[T]) First(consumer func(T)) bool {
	return g.enqueue(consumer, false)
}

// PassiveFirst behaves like First and does not require activation for
// immediate delivery of an already-mirrored value.
func (g *Getter[T]) PassiveFirst(consumer func(T)) bool {
	return g.enqueue(consumer, false)
}

// PassiveNext behaves like First but additionally requires the Getter to
// be active for immediate delivery, deferring otherwise.
func (g *Getter[T]) PassiveNext(consumer func(T)) bool {
	return g.enqueue(consumer, true)
}

func (g *Getter[T]) enqueue(consumer func(T), needActive bool) bool {
	g.mu.Lock()
	v := g.cache.current.Load()
	if !v.IsDefault() && (!needActive || g.active) {
		g.mu.Unlock()
		consumer(v.Value())
		return true
	}
	g.deferred = append(g.deferred, consumer)
	g.mu.Unlock()
	return false
}

// accept mirrors a source emission into the local cache; the cache's swap
// observer flushes deferred consumers on commit.
func (g *Getter[T]) accept(v *Versioned[T]) {
	g.cache.WeakSet(v.Value())
}

// flush drains the deferred queue, delivering value to each pending
// consumer exactly once through the exit executor.
func (g *Getter[T]) flush(value T) {
	g.mu.Lock()
	pending := g.deferred
	g.deferred = nil
	g.mu.Unlock()

	if len(pending) == 0 {
		return
	}
	capitan.Emit(context.Background(), GetterFlushed,
		KeyCount.Field(len(pending)),
	)
	for _, consumer := range pending {
		c := consumer
		execute(g.exit, func() { c(value) })
	}
}
