// Package relay provides a reactive value-propagation engine: a graph of
// versioned, lazily-activated Paths that push deduplicated updates
// downstream through composition operators to terminal consumers.
//
// # Paths
//
// A Path holds one versioned value in an atomic cache and notifies its
// observers when a different value commits. Derivation is declarative:
//
//	temps := relay.NewPath[float64]()
//	display := relay.Map(temps, func(c float64) string {
//	    return fmt.Sprintf("%.1f°C", c)
//	})
//
// Nothing upstream runs until something downstream listens. Activation is
// reference counted: the first active consumer of display subscribes it to
// temps (activating temps in turn), and the most recent value is
// back-propagated immediately so late subscribers never wait for the next
// emission. The last consumer leaving tears the chain down again.
//
// # Deduplication
//
// Every write goes through compare-and-swap with equality deduplication.
// Committing the same value twice produces exactly one downstream
// emission; a CAS miss is a boolean result, never an error, and the engine
// never retries on the caller's behalf.
//
// # Joins and Trees
//
// Join aggregates several upstream Paths into one slot array and publishes
// its fold, suppressed until every slot has a value:
//
//	sum := relay.NewJoin([]*relay.Path[int]{a, b}, func(x, y int) int {
//	    return x + y
//	})
//
// Tree maintains a string-tag-addressed hierarchy where each node's value
// is the fold of its branch, built lazily exactly once, with atomic
// multi-node transactions that dispatch a single coherent wave:
//
//	tree := relay.NewTree("root", "R", concat, func(root *relay.Node[string]) error {
//	    a, err := root.Fork("a", "A")
//	    if err != nil {
//	        return err
//	    }
//	    _, err = a.Fork("b", "B")
//	    return err
//	})
//
// # Terminal consumers
//
// Getter is an explicitly-activated read endpoint with deferred
// first-value delivery; Link is a rebindable endpoint whose local value
// may diverge from its upstream between emissions.
//
// # Feeding from external sources
//
// A Feeder drives a root Path from a Watcher (file contents via fsnotify,
// or any byte channel), decoding with a Codec, validating struct tags, and
// processing through a pipz pipeline with retry, timeout, and fallback
// options:
//
//	feeder := relay.NewFeeder(
//	    relay.NewFileWatcher("limits.yaml"),
//	    limits,
//	    relay.WithRetry[Limits](3),
//	).Debounce(200 * time.Millisecond)
//
// # Thread safety
//
// All operations are safe for concurrent use. Cache mutation is CAS-based;
// activation transitions serialize per node; the only cross-node lock is a
// Tree's transaction lock, held just for the silent slot writes and the
// single forced dispatch.
package relay
