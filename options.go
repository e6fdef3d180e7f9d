package relay

import (
	"context"
	"time"

	"github.com/zoobzio/pipz"
)

// Option configures the processing pipeline of a Feeder. Pipeline options
// wrap the commit stage with middleware for retry, timeout, and other
// reliability patterns.
//
// Instance configuration (debounce, sync mode, codec) is handled via
// chainable methods on the Feeder before calling Start().
type Option[T any] func(pipz.Chainable[*Intake[T]]) pipz.Chainable[*Intake[T]]

// buildPipeline wraps a terminal with pipeline options.
func buildPipeline[T any](terminal pipz.Chainable[*Intake[T]], opts []Option[T]) pipz.Chainable[*Intake[T]] {
	pipeline := terminal
	for _, opt := range opts {
		pipeline = opt(pipeline)
	}
	return pipeline
}

// WithRetry wraps the pipeline with retry logic.
// Failed operations are retried immediately up to maxAttempts times.
// For exponential backoff between retries, use WithBackoff instead.
func WithRetry[T any](maxAttempts int) Option[T] {
	return func(p pipz.Chainable[*Intake[T]]) pipz.Chainable[*Intake[T]] {
		return pipz.NewRetry("retry", p, maxAttempts)
	}
}

// WithBackoff wraps the pipeline with exponential backoff retry logic.
// Failed operations are retried with increasing delays: baseDelay,
// 2*baseDelay, 4*baseDelay, etc.
func WithBackoff[T any](maxAttempts int, baseDelay time.Duration) Option[T] {
	return func(p pipz.Chainable[*Intake[T]]) pipz.Chainable[*Intake[T]] {
		return pipz.NewBackoff("backoff", p, maxAttempts, baseDelay)
	}
}

// WithTimeout wraps the pipeline with a timeout.
// If processing takes longer than the specified duration, the operation
// fails with a timeout error.
func WithTimeout[T any](d time.Duration) Option[T] {
	return func(p pipz.Chainable[*Intake[T]]) pipz.Chainable[*Intake[T]] {
		return pipz.NewTimeout("timeout", p, d)
	}
}

// WithFallback wraps the pipeline with fallback processors.
// If the primary pipeline fails, each fallback is tried in order until one
// succeeds.
func WithFallback[T any](fallbacks ...pipz.Chainable[*Intake[T]]) Option[T] {
	return func(p pipz.Chainable[*Intake[T]]) pipz.Chainable[*Intake[T]] {
		all := append([]pipz.Chainable[*Intake[T]]{p}, fallbacks...)
		return pipz.NewFallback("fallback", all...)
	}
}

// WithErrorHandler adds error observation to the pipeline.
// Errors are passed to the handler for logging, metrics, or alerting, but
// the error still propagates. Use this for observability, not recovery.
func WithErrorHandler[T any](handler pipz.Chainable[*pipz.Error[*Intake[T]]]) Option[T] {
	return func(p pipz.Chainable[*Intake[T]]) pipz.Chainable[*Intake[T]] {
		return pipz.NewHandle("error-handler", p, handler)
	}
}

// WithMiddleware wraps the pipeline with a sequence of processors.
// Processors execute in order, with the commit stage last.
//
// Use the Use* functions to create processors for common patterns, or
// provide custom pipz.Chainable implementations directly.
func WithMiddleware[T any](processors ...pipz.Chainable[*Intake[T]]) Option[T] {
	return func(p pipz.Chainable[*Intake[T]]) pipz.Chainable[*Intake[T]] {
		all := make([]pipz.Chainable[*Intake[T]], 0, len(processors)+1)
		all = append(all, processors...)
		all = append(all, p)
		return pipz.NewSequence("middleware", all...)
	}
}

// UseTransform creates a processor that transforms the intake.
// Cannot fail. Use for pure transformations that always succeed.
func UseTransform[T any](name string, fn func(context.Context, *Intake[T]) *Intake[T]) pipz.Chainable[*Intake[T]] {
	return pipz.Transform(pipz.Name(name), fn)
}

// UseApply creates a processor that can transform the intake and fail.
// Use for operations like enrichment or normalization that may produce
// errors.
func UseApply[T any](name string, fn func(context.Context, *Intake[T]) (*Intake[T], error)) pipz.Chainable[*Intake[T]] {
	return pipz.Apply(pipz.Name(name), fn)
}

// UseEffect creates a processor that performs a side effect.
// The intake passes through unchanged. Use for logging, metrics, or
// notifications that should not affect the fed value.
func UseEffect[T any](name string, fn func(context.Context, *Intake[T]) error) pipz.Chainable[*Intake[T]] {
	return pipz.Effect(pipz.Name(name), fn)
}
