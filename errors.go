package relay

import "errors"

var (
	// ErrNotActive is returned when a Getter's current value is read while
	// the Getter is not activated. The misuse is reported at the call site,
	// never papered over with a default value.
	ErrNotActive = errors.New("getter not active")

	// ErrNoValue is returned when a read requires a committed value and the
	// cache still holds the default sentinel.
	ErrNoValue = errors.New("no value committed")

	// ErrDuplicateTag is returned when a tree node is registered under a
	// tag that already names another node. Tree construction aborts.
	ErrDuplicateTag = errors.New("duplicate node tag")

	// ErrUnknownTag is returned when a tree lookup names no registered node.
	ErrUnknownTag = errors.New("unknown node tag")

	// ErrEmptyTag is returned when a node is registered under an empty tag.
	ErrEmptyTag = errors.New("empty node tag")

	// ErrRuntimeSet is returned when SetRuntime is called more than once.
	ErrRuntimeSet = errors.New("runtime already configured")
)
