package relay

import "github.com/zoobzio/capitan"

// Field keys for propagation events.
var (
	// KeyTag is the tree tag involved in an event.
	KeyTag = capitan.NewStringKey("tag")

	// KeyCount is a generic cardinality: nodes built, slots joined,
	// consumers flushed.
	KeyCount = capitan.NewIntKey("count")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyDebounce is the configured debounce duration of a Feeder.
	KeyDebounce = capitan.NewDurationKey("debounce")

	// KeyWatcherType is the type name of a Feeder's watcher implementation.
	KeyWatcherType = capitan.NewStringKey("watcher_type")
)
