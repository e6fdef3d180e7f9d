package relay

import "sync"

// Link is a rebindable Path endpoint. Its upstream binding is mutable at
// runtime, and between upstream emissions its own cache may be mutated
// directly, diverging from the bound upstream until the next emission or
// an explicit Reset.
type Link[T any] struct {
	path *Path[T]

	mu         sync.Mutex
	upstream   *Path[T]
	upstreamID uint64
	transform  func(T) T
	subscribed bool
}

// NewLink creates an unbound Link. Options apply to the Link's own Path.
func NewLink[T any](opts ...PathOption[T]) *Link[T] {
	l := &Link[T]{}
	l.path = NewPath(opts...)
	l.path.act.attach = l.attach
	l.path.act.detach = l.detach
	return l
}

// attach and detach run under the Path's activation lock; they take l.mu
// before touching the binding, never the other way around.
func (l *Link[T]) attach() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subscribed = true
	if l.upstream != nil {
		l.upstreamID = l.upstream.retain(l.accept)
	}
}

func (l *Link[T]) detach() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subscribed = false
	if l.upstream != nil {
		l.upstream.release(l.upstreamID)
	}
}

func (l *Link[T]) accept(v *Versioned[T]) {
	l.path.Set(l.apply(v.Value()))
}

func (l *Link[T]) apply(value T) T {
	if l.transform != nil {
		return l.transform(value)
	}
	return value
}

// Bind installs or replaces the upstream source. Rebinding to the Path
// currently bound is a no-op returning the same Path unchanged. If the
// Link is active, the subscription is swapped live: the previous upstream
// is released and the new one's current value is adopted immediately.
func (l *Link[T]) Bind(upstream *Path[T]) *Path[T] {
	return l.BindWith(upstream, nil)
}

// BindWith is Bind with a transform applied to every adopted upstream
// value.
func (l *Link[T]) BindWith(upstream *Path[T], transform func(T) T) *Path[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	if upstream == l.upstream {
		return upstream
	}
	if l.subscribed && l.upstream != nil {
		l.upstream.release(l.upstreamID)
	}
	l.upstream = upstream
	l.transform = transform
	if l.subscribed && upstream != nil {
		l.upstreamID = upstream.retain(l.accept)
	}
	return upstream
}

// Unbind removes the current upstream binding and returns the previously
// bound Path, or nil if none was bound.
func (l *Link[T]) Unbind() *Path[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev := l.upstream
	if prev == nil {
		return nil
	}
	if l.subscribed {
		prev.release(l.upstreamID)
	}
	l.upstream = nil
	l.transform = nil
	return prev
}

// Upstream returns the currently bound upstream, or nil.
func (l *Link[T]) Upstream() *Path[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.upstream
}

// Reset forces re-adoption of the upstream's current value, discarding
// local divergence. It is a no-op returning false when no upstream is
// bound, the upstream holds no value, or the computed value equals the
// Link's current one.
func (l *Link[T]) Reset() bool {
	l.mu.Lock()
	upstream := l.upstream
	l.mu.Unlock()
	if upstream == nil {
		return false
	}
	uv := upstream.Get()
	if uv.IsDefault() {
		return false
	}
	return l.path.Set(l.apply(uv.Value()))
}

// Path returns the Link's own Path for composition and consumption.
func (l *Link[T]) Path() *Path[T] {
	return l.path
}

// Get returns the Link's current snapshot.
func (l *Link[T]) Get() *Versioned[T] {
	return l.path.Get()
}

// Set commits a local value independent of the upstream; the Link diverges
// until the next upstream emission or Reset.
func (l *Link[T]) Set(value T) bool {
	return l.path.Set(value)
}

// CompareAndSwap commits a local value only if the Link still holds
// expected.
func (l *Link[T]) CompareAndSwap(expected *Versioned[T], value T) bool {
	return l.path.CompareAndSwap(expected, value)
}

// UpdateAndGet applies update to the current value and commits the result,
// retrying on contention, and returns the value the Link holds afterwards.
func (l *Link[T]) UpdateAndGet(update func(T) T) T {
	for {
		cur := l.path.Get()
		next := update(cur.Value())
		if !cur.IsDefault() && l.path.cache.equals(cur.Value(), next) {
			return next
		}
		if l.path.CompareAndSwap(cur, next) {
			return next
		}
	}
}
