package relay

import "sync"

// activation is the per-Path activation state machine. It reference-counts
// active consumers: the 0→1 edge subscribes the Path to its upstream via
// attach, the 1→0 edge unsubscribes via detach. Each node serializes its
// own transitions under mu; cascades to ancestors happen inside attach and
// detach, one node at a time, so a concurrent activate/deactivate pair on
// the same node cannot interleave into a half-installed subscription.
type activation struct {
	mu       sync.Mutex
	state    ActivationState
	refs     int
	attach   func()
	detach   func()
	onChange func(active bool)
}

// retain adds one active consumer. The first consumer flips the node to
// StateActive and runs attach, which must install the upstream subscription
// before any back-propagation read occurs.
func (a *activation) retain() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.refs++
	if a.refs > 1 {
		return
	}
	a.state = StateActive
	if a.attach != nil {
		a.attach()
	}
	if a.onChange != nil {
		a.onChange(true)
	}
}

// release drops one active consumer. The last consumer flips the node to
// StateInactive and runs detach. Releasing a node with no consumers is a
// no-op.
func (a *activation) release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.refs == 0 {
		return
	}
	a.refs--
	if a.refs > 0 {
		return
	}
	a.state = StateInactive
	if a.detach != nil {
		a.detach()
	}
	if a.onChange != nil {
		a.onChange(false)
	}
}

func (a *activation) current() ActivationState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}
