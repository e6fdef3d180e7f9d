package relay

import "reflect"

// Versioned is an immutable snapshot of a value carrying a monotonically
// increasing version stamp. A Versioned with no committed value is the
// default sentinel; IsDefault reports that state.
//
// Versions are allocated per Cache and stamp commit order for that cache
// only. Dispatch deduplication compares values by equality, never by
// version or identity.
type Versioned[T any] struct {
	value   T
	version uint64
	present bool
}

// Value returns the snapshot value. For the default sentinel this is the
// zero value of T.
func (v *Versioned[T]) Value() T {
	return v.value
}

// Version returns the version stamp. The default sentinel has version 0.
func (v *Versioned[T]) Version() uint64 {
	return v.version
}

// IsDefault reports whether no value has ever been committed. Once a cache
// leaves the default state it never returns to it.
func (v *Versioned[T]) IsDefault() bool {
	return !v.present
}

// EqualsFunc compares two values for dispatch deduplication.
// A commit is suppressed when the candidate equals the current value.
type EqualsFunc[T any] func(a, b T) bool

// defaultEquals is the equality used when none is configured.
func defaultEquals[T any](a, b T) bool {
	return reflect.DeepEqual(a, b)
}
