package relay

// MetricsProvider allows integration with metrics systems like Prometheus,
// StatsD, etc. Implement this interface and attach it with WithMetrics to
// receive callbacks on key propagation events.
type MetricsProvider interface {
	// OnCommit is called when a value commits and dispatches downstream.
	OnCommit()

	// OnSuppressed is called when a swap attempt is absorbed, either by
	// deduplication or by losing a CAS race.
	OnSuppressed()

	// OnActivation is called when a Path's activation state flips.
	OnActivation(active bool)
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnCommit()           {}
func (NoOpMetricsProvider) OnSuppressed()       {}
func (NoOpMetricsProvider) OnActivation(_ bool) {}
