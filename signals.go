package relay

import "github.com/zoobzio/capitan"

// Path lifecycle signals.
var (
	// PathActivated is emitted when a Path gains its first active consumer.
	PathActivated = capitan.NewSignal(
		"relay.path.activated",
		"Path gained its first active consumer",
	)

	// PathDeactivated is emitted when a Path loses its last active consumer.
	PathDeactivated = capitan.NewSignal(
		"relay.path.deactivated",
		"Path lost its last active consumer",
	)
)

// Join signals.
var (
	// JoinUnblocked is emitted the first time a Join's gate opens.
	JoinUnblocked = capitan.NewSignal(
		"relay.join.unblocked",
		"Join gate satisfied, emissions begin",
	)
)

// Tree signals.
var (
	// TreeBuilt is emitted when lazy tree construction completes.
	TreeBuilt = capitan.NewSignal(
		"relay.tree.built",
		"Tree construction completed",
	)

	// TreeTransaction is emitted after a multi-node transaction's single
	// forced dispatch.
	TreeTransaction = capitan.NewSignal(
		"relay.tree.transaction",
		"Tree transaction dispatched",
	)
)

// Getter signals.
var (
	// GetterFlushed is emitted when deferred consumers receive a first value.
	GetterFlushed = capitan.NewSignal(
		"relay.getter.flushed",
		"Deferred consumers flushed",
	)
)

// Feeder lifecycle signals.
var (
	// FeederStarted is emitted when a Feeder begins watching its source.
	FeederStarted = capitan.NewSignal(
		"relay.feeder.started",
		"Feeder watching started",
	)

	// FeederStopped is emitted when a Feeder stops watching its source.
	FeederStopped = capitan.NewSignal(
		"relay.feeder.stopped",
		"Feeder watching stopped",
	)

	// FeederChangeReceived is emitted when raw data arrives from the watcher.
	FeederChangeReceived = capitan.NewSignal(
		"relay.feeder.change.received",
		"Raw change received from watcher",
	)

	// FeederDecodeFailed is emitted when decoding raw data fails.
	FeederDecodeFailed = capitan.NewSignal(
		"relay.feeder.decode.failed",
		"Decoding raw change failed",
	)

	// FeederValidationFailed is emitted when a decoded value fails validation.
	FeederValidationFailed = capitan.NewSignal(
		"relay.feeder.validation.failed",
		"Decoded value failed validation",
	)

	// FeederPipelineFailed is emitted when the processing pipeline fails.
	FeederPipelineFailed = capitan.NewSignal(
		"relay.feeder.pipeline.failed",
		"Feeder pipeline failed",
	)

	// FeederApplied is emitted when a decoded value is committed to the
	// target Path.
	FeederApplied = capitan.NewSignal(
		"relay.feeder.applied",
		"Value committed to target path",
	)
)
