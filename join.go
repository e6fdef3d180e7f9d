package relay

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/zoobzio/capitan"
)

// Operator folds two values left to right. It must be associative; a Join
// reduces its slot array with it, and a Tree folds ancestor branches with
// the same function.
type Operator[T any] func(a, b T) T

// Gate decides whether a Join emission is still suppressed.
// The default gate suppresses while any slot is unset.
type Gate[T any] func(values []T, set []bool) bool

// anyUnset is the default gate.
func anyUnset[T any](_ []T, set []bool) bool {
	for _, ok := range set {
		if !ok {
			return true
		}
	}
	return false
}

// slotArray is the array-shaped value a Join aggregates. Updates clone the
// array and replace exactly one slot before a whole-array CAS, so a torn
// state is never observable.
type slotArray[T any] struct {
	values []T
	set    []bool
}

func newSlotArray[T any](n int) *slotArray[T] {
	return &slotArray[T]{values: make([]T, n), set: make([]bool, n)}
}

func (s *slotArray[T]) replace(i int, v T) *slotArray[T] {
	next := &slotArray[T]{
		values: make([]T, len(s.values)),
		set:    make([]bool, len(s.set)),
	}
	copy(next.values, s.values)
	copy(next.set, s.set)
	next.values[i] = v
	next.set[i] = true
	return next
}

// Join aggregates N upstream Paths into one array of slots and publishes
// the left-to-right fold of the array through its output Path. Emission is
// suppressed while the gate holds (by default: while any slot is unset);
// once the gate opens, every per-slot update re-emits the whole fold.
//
// The Join subscribes to its sources only while its output Path is active,
// following the same reference-counted lifecycle as every other Path.
type Join[T any] struct {
	sources []*Path[T]
	op      Operator[T]
	gate    Gate[T]
	equals  EqualsFunc[T]

	arr     atomic.Pointer[slotArray[T]]
	out     *Path[T]
	subs    []uint64
	blocked atomic.Bool

	// emitMu serializes fold publication; see publishFold.
	emitMu sync.Mutex
}

// joinConfig holds construction options for a Join.
type joinConfig[T any] struct {
	gate     Gate[T]
	equals   EqualsFunc[T]
	pathOpts []PathOption[T]
}

// JoinOption configures a Join at construction.
type JoinOption[T any] func(*joinConfig[T])

// WithGate replaces the default any-slot-unset gate.
func WithGate[T any](gate Gate[T]) JoinOption[T] {
	return func(c *joinConfig[T]) {
		c.gate = gate
	}
}

// WithJoinEquals sets the per-slot equality used to skip redundant slot
// replacements. Default: reflect.DeepEqual.
func WithJoinEquals[T any](equals EqualsFunc[T]) JoinOption[T] {
	return func(c *joinConfig[T]) {
		c.equals = equals
	}
}

// WithJoinPathOptions forwards options to the Join's output Path.
func WithJoinPathOptions[T any](opts ...PathOption[T]) JoinOption[T] {
	return func(c *joinConfig[T]) {
		c.pathOpts = opts
	}
}

// NewJoin creates a Join over the given source Paths, folded by op.
// Slot order follows source order; the fold is left to right.
func NewJoin[T any](sources []*Path[T], op Operator[T], opts ...JoinOption[T]) *Join[T] {
	cfg := &joinConfig[T]{gate: anyUnset[T], equals: defaultEquals[T]}
	for _, opt := range opts {
		opt(cfg)
	}

	j := &Join[T]{
		sources: sources,
		op:      op,
		gate:    cfg.gate,
		equals:  cfg.equals,
		subs:    make([]uint64, len(sources)),
	}
	j.arr.Store(newSlotArray[T](len(sources)))
	j.blocked.Store(true)

	j.out = NewPath(cfg.pathOpts...)
	j.out.act.attach = func() {
		for i, src := range sources {
			slot := i
			j.subs[i] = src.retain(func(v *Versioned[T]) {
				j.update(slot, v.Value())
			})
		}
	}
	j.out.act.detach = func() {
		for i, src := range sources {
			src.release(j.subs[i])
		}
	}
	return j
}

// Path returns the Join's output Path for composition and consumption.
func (j *Join[T]) Path() *Path[T] {
	return j.out
}

// Slots returns the current slot values and their set flags.
func (j *Join[T]) Slots() ([]T, []bool) {
	cur := j.arr.Load()
	values := make([]T, len(cur.values))
	set := make([]bool, len(cur.set))
	copy(values, cur.values)
	copy(set, cur.set)
	return values, set
}

// update replaces slot i if the incoming value differs, then drives the
// output to the fold of the newest array. The whole array is committed by
// CAS; a concurrent update of a sibling slot restarts the clone.
func (j *Join[T]) update(i int, value T) {
	for {
		cur := j.arr.Load()
		if cur.set[i] && j.equals(cur.values[i], value) {
			return
		}
		if j.arr.CompareAndSwap(cur, cur.replace(i, value)) {
			break
		}
	}
	j.publishFold()
}

// publishFold publishes the fold of the newest slot array. Publication is
// serialized: every slot commit is followed by a publish attempt that
// re-reads the array under emitMu, so the last publisher in lock order has
// observed every preceding slot commit and settles the output on the fold
// of the final array. A slower updater can surface a transient
// intermediate fold, never a permanently stale one.
func (j *Join[T]) publishFold() {
	j.emitMu.Lock()
	defer j.emitMu.Unlock()

	cur := j.arr.Load()
	if j.gate(cur.values, cur.set) {
		return
	}
	if j.blocked.Swap(false) {
		capitan.Emit(context.Background(), JoinUnblocked,
			KeyCount.Field(len(cur.values)),
		)
	}
	j.out.Set(j.fold(cur))
}

// silentReplace overwrites slot i without gate evaluation or emission.
// Tree transactions use it before their single coordinated dispatch.
func (j *Join[T]) silentReplace(i int, value T) {
	for {
		cur := j.arr.Load()
		if j.arr.CompareAndSwap(cur, cur.replace(i, value)) {
			return
		}
	}
}

// forceEmit folds the current slots and publishes the result regardless of
// deduplication, so downstream consumers observe exactly one coordinated
// wave even when intermediate folds are unchanged.
//
// Slots only fill through activation back-propagation, so on a join that
// never had an active consumer they are seeded from the source caches
// first. If any slot still has no value the gate holds and nothing is
// committed; the output keeps its default sentinel.
func (j *Join[T]) forceEmit() {
	j.emitMu.Lock()
	defer j.emitMu.Unlock()

	cur := j.arr.Load()
	for i, src := range j.sources {
		if cur.set[i] {
			continue
		}
		if v := src.Get(); !v.IsDefault() {
			j.silentReplace(i, v.Value())
			cur = j.arr.Load()
		}
	}
	if j.gate(cur.values, cur.set) {
		return
	}
	j.out.cache.silentSet(j.fold(cur))
	j.out.forcePublish()
}

func (j *Join[T]) fold(s *slotArray[T]) T {
	acc := s.values[0]
	for _, v := range s.values[1:] {
		acc = j.op(acc, v)
	}
	return acc
}
