package relay

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/pipz"
)

// DefaultDebounce is the default debounce duration for change processing.
const DefaultDebounce = 100 * time.Millisecond

// validate is the shared validator instance for struct-tag validation.
var validate = validator.New()

// commitID names the terminal pipeline stage, which commits the decoded
// value to the target path.
var commitID = pipz.Name("relay:commit")

// Intake carries fed data through the processing pipeline. Stages see both
// the previous committed value and the freshly decoded one, so they can
// act on what changed.
type Intake[T any] struct {
	// Previous is the target Path's last committed value. On initial load
	// this is the zero value of T.
	Previous T

	// Current is the newly decoded and validated value. Pipeline stages
	// may modify it before it is committed.
	Current T

	// Raw contains the original bytes received from the watcher.
	Raw []byte
}

// Feeder drives a root Path from an external change source. Raw bytes from
// the watcher are decoded with the configured codec, validated by
// struct tags, processed through the pipeline, and committed to the target
// Path, where the normal dedup dispatch takes over.
type Feeder[T any] struct {
	watcher  Watcher
	target   *Path[T]
	pipeline pipz.Chainable[*Intake[T]]
	debounce time.Duration
	syncMode bool
	clock    clockz.Clock
	codec    Codec
	checked  bool

	lastError atomic.Pointer[error]

	// mu guards started and, in sync mode, the stored change channel.
	mu      sync.Mutex
	started bool
	changes <-chan []byte
}

// NewFeeder creates a Feeder committing decoded values into target.
//
// Pipeline options (With*) configure the processing pipeline. Instance
// configuration uses chainable methods before calling Start().
//
// Example:
//
//	type Limits struct {
//	    MaxInFlight int `yaml:"max_in_flight" validate:"min=1"`
//	}
//
//	limits := relay.NewPath[Limits]()
//	feeder := relay.NewFeeder(
//	    relay.NewFileWatcher("limits.yaml"),
//	    limits,
//	    relay.WithRetry[Limits](3),
//	).Debounce(200 * time.Millisecond)
func NewFeeder[T any](watcher Watcher, target *Path[T], opts ...Option[T]) *Feeder[T] {
	f := &Feeder[T]{
		watcher:  watcher,
		target:   target,
		debounce: DefaultDebounce,
		clock:    clockz.RealClock,
		codec:    AutoCodec{},
		checked:  structKind[T](),
	}

	terminal := pipz.Apply(commitID, func(_ context.Context, in *Intake[T]) (*Intake[T], error) {
		f.target.Set(in.Current)
		return in, nil
	})
	f.pipeline = buildPipeline(terminal, opts)

	return f
}

// structKind reports whether T is a struct or pointer to struct, the only
// shapes the shared validator accepts.
func structKind[T any]() bool {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// Debounce sets the debounce duration for change processing.
// Changes arriving within this duration are coalesced into a single
// update. Default: 100ms. Must be called before Start().
func (f *Feeder[T]) Debounce(d time.Duration) *Feeder[T] {
	f.debounce = d
	return f
}

// SyncMode enables synchronous processing for testing.
// In sync mode, changes are processed immediately without debouncing or
// async goroutines, making tests deterministic. Must be called before
// Start().
func (f *Feeder[T]) SyncMode() *Feeder[T] {
	f.syncMode = true
	return f
}

// Clock sets a custom clock for time operations.
// Use this with clockz.FakeClock for deterministic debounce testing.
// Must be called before Start().
func (f *Feeder[T]) Clock(clock clockz.Clock) *Feeder[T] {
	f.clock = clock
	return f
}

// Codec sets the codec for deserializing fed data.
// Default: AutoCodec. Must be called before Start().
func (f *Feeder[T]) Codec(codec Codec) *Feeder[T] {
	f.codec = codec
	return f
}

// Target returns the Path this Feeder commits into.
func (f *Feeder[T]) Target() *Path[T] {
	return f.target
}

// LastError returns the last error encountered, or nil.
func (f *Feeder[T]) LastError() error {
	ptr := f.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// Start begins watching for changes. It blocks until the first value is
// processed (success or failure), then continues watching asynchronously.
//
// If the initial value fails, Start returns the error but continues
// watching in the background for valid updates.
//
// In sync mode, Start only processes the initial value. Use Process() to
// manually trigger processing of subsequent values.
//
// Start can only be called once. Subsequent calls return an error.
func (f *Feeder[T]) Start(ctx context.Context) error {
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return fmt.Errorf("feeder already started")
	}
	f.started = true
	f.mu.Unlock()

	capitan.Emit(ctx, FeederStarted,
		KeyDebounce.Field(f.debounce),
		KeyWatcherType.Field(fmt.Sprintf("%T", f.watcher)),
	)

	changes, err := f.watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	// Wait for first value and process synchronously
	var initialErr error
	select {
	case <-ctx.Done():
		return ctx.Err()
	case raw, ok := <-changes:
		if !ok {
			return fmt.Errorf("watcher closed before emitting initial value")
		}
		capitan.Emit(ctx, FeederChangeReceived)
		initialErr = f.process(ctx, raw)
	}

	if f.syncMode {
		// In sync mode, store channel for manual processing
		f.mu.Lock()
		f.changes = changes
		f.mu.Unlock()
		return initialErr
	}

	// Continue watching asynchronously
	go f.watch(ctx, changes)

	return initialErr
}

// Process reads and processes the next value from the watcher.
// This is only available in sync mode and is used for deterministic
// testing. Returns false if no value is available or the channel is
// closed.
func (f *Feeder[T]) Process(ctx context.Context) bool {
	if !f.syncMode {
		return false
	}

	f.mu.Lock()
	changes := f.changes
	f.mu.Unlock()
	if changes == nil {
		return false
	}

	select {
	case raw, ok := <-changes:
		if !ok {
			return false
		}
		capitan.Emit(ctx, FeederChangeReceived)
		_ = f.process(ctx, raw) //nolint:errcheck // Errors stored via setError
		return true
	default:
		return false
	}
}

// process decodes, validates, and commits a single change.
func (f *Feeder[T]) process(ctx context.Context, raw []byte) error {
	var result T
	if err := f.codec.Unmarshal(raw, &result); err != nil {
		f.setError(err)
		capitan.Emit(ctx, FeederDecodeFailed,
			KeyError.Field(err.Error()),
		)
		return fmt.Errorf("decode failed: %w", err)
	}

	if f.checked {
		if err := validate.Struct(result); err != nil {
			f.setError(err)
			capitan.Emit(ctx, FeederValidationFailed,
				KeyError.Field(err.Error()),
			)
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	in := &Intake[T]{
		Previous: f.target.Get().Value(),
		Current:  result,
		Raw:      raw,
	}
	if _, err := f.pipeline.Process(ctx, in); err != nil {
		f.setError(err)
		capitan.Emit(ctx, FeederPipelineFailed,
			KeyError.Field(err.Error()),
		)
		return fmt.Errorf("pipeline failed: %w", err)
	}

	f.lastError.Store(nil)
	capitan.Emit(ctx, FeederApplied)
	return nil
}

// setError stores an error atomically.
func (f *Feeder[T]) setError(err error) {
	e := err
	f.lastError.Store(&e)
}

// watch processes changes from the watcher channel with debouncing.
func (f *Feeder[T]) watch(ctx context.Context, changes <-chan []byte) {
	defer func() {
		capitan.Emit(ctx, FeederStopped)
	}()

	var (
		timer      clockz.Timer
		pending    []byte
		hasPending bool
	)

	for {
		// Get timer channel or nil if no timer
		var timerC <-chan time.Time
		if timer != nil {
			timerC = timer.C()
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case raw, ok := <-changes:
			if !ok {
				// Channel closed, process any pending change
				if hasPending {
					_ = f.process(ctx, pending) //nolint:errcheck // Errors stored via setError
				}
				return
			}

			capitan.Emit(ctx, FeederChangeReceived)
			pending = raw
			hasPending = true

			// Reset or start debounce timer
			if timer == nil {
				timer = f.clock.NewTimer(f.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C():
					default:
					}
				}
				timer.Reset(f.debounce)
			}

		case <-timerC:
			if hasPending {
				_ = f.process(ctx, pending) //nolint:errcheck // Errors stored via setError
				hasPending = false
			}
		}
	}
}
