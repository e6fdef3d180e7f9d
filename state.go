package relay

// ActivationState represents the activation lifecycle position of a Path.
type ActivationState int32

const (
	// StateInit is the transient pre-activation state. A Path leaves it on
	// its first activation and never returns to it.
	StateInit ActivationState = iota

	// StateActive indicates the Path is subscribed to its upstream, either
	// because it was activated directly or because an active downstream
	// consumer retains it.
	StateActive

	// StateInactive indicates the Path has been activated at least once and
	// currently has no active consumers; its upstream subscription is
	// dropped.
	StateInactive
)

// String returns the string representation of the state.
func (s ActivationState) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateActive:
		return "active"
	case StateInactive:
		return "inactive"
	default:
		return "unknown"
	}
}
