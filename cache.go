package relay

import "sync/atomic"

// SwapObserver is invoked after every swap attempt on a Cache, committed or
// rejected, with the previous snapshot and the candidate. Observers can
// distinguish the very first commit by prev.IsDefault().
type SwapObserver[T any] func(committed bool, prev, next *Versioned[T])

// Cache is the atomic holder of one current Versioned value. All mutation
// goes through compare-and-swap with equality-based deduplication: a swap
// commits only when the cache still holds the expected snapshot and the
// candidate differs from it, or when no value has been committed yet.
//
// A CAS miss is not an error. It is a boolean result; the Cache never
// retries on behalf of its caller.
type Cache[T any] struct {
	current atomic.Pointer[Versioned[T]]
	version atomic.Uint64
	equals  EqualsFunc[T]
	onSwap  SwapObserver[T]

	// supplier, when set, is consulted by Get to pull a fresh value
	// before returning the snapshot.
	supplier func() (T, bool)
}

// NewCache creates a Cache holding the default sentinel. A nil equals falls
// back to reflect.DeepEqual. onSwap may be nil.
func NewCache[T any](equals EqualsFunc[T], onSwap SwapObserver[T]) *Cache[T] {
	if equals == nil {
		equals = defaultEquals[T]
	}
	c := &Cache[T]{equals: equals, onSwap: onSwap}
	c.current.Store(&Versioned[T]{})
	return c
}

// Get returns the current snapshot. If a supplier is wired, it is consulted
// first and a differing supplied value is committed before the read.
func (c *Cache[T]) Get() *Versioned[T] {
	if c.supplier != nil {
		if v, ok := c.supplier(); ok {
			c.WeakSet(v)
		}
	}
	return c.current.Load()
}

// SetSupplier wires a pull source consulted by Get. The supplier reports
// whether it produced a value. Must be set before the cache is shared.
func (c *Cache[T]) SetSupplier(supplier func() (T, bool)) {
	c.supplier = supplier
}

// CompareAndSwap commits value if the cache still holds expected and the
// dedup rule allows it. It reports whether the commit happened. The swap
// observer is invoked either way.
func (c *Cache[T]) CompareAndSwap(expected *Versioned[T], value T) bool {
	next := &Versioned[T]{value: value, version: c.version.Add(1), present: true}
	if !expected.IsDefault() && c.equals(expected.Value(), value) {
		c.observe(false, expected, next)
		return false
	}
	ok := c.current.CompareAndSwap(expected, next)
	c.observe(ok, expected, next)
	return ok
}

// WeakSet performs a best-effort swap against the current snapshot, same
// dedup rule as CompareAndSwap. A concurrent writer winning the race makes
// this a no-op reporting false.
func (c *Cache[T]) WeakSet(value T) bool {
	return c.CompareAndSwap(c.current.Load(), value)
}

// silentSet overwrites the current snapshot without invoking the swap
// observer. Used by tree transactions, which dispatch once, coordinated,
// after all slots are written.
func (c *Cache[T]) silentSet(value T) {
	c.current.Store(&Versioned[T]{value: value, version: c.version.Add(1), present: true})
}

func (c *Cache[T]) observe(committed bool, prev, next *Versioned[T]) {
	if c.onSwap != nil {
		c.onSwap(committed, prev, next)
	}
}
