package relay

import "testing"

func TestPathActivated(t *testing.T) {
	if PathActivated.Name() != "relay.path.activated" {
		t.Errorf("expected name 'relay.path.activated', got %q", PathActivated.Name())
	}
}

func TestPathDeactivated(t *testing.T) {
	if PathDeactivated.Name() != "relay.path.deactivated" {
		t.Errorf("expected name 'relay.path.deactivated', got %q", PathDeactivated.Name())
	}
}

func TestJoinUnblocked(t *testing.T) {
	if JoinUnblocked.Name() != "relay.join.unblocked" {
		t.Errorf("expected name 'relay.join.unblocked', got %q", JoinUnblocked.Name())
	}
}

func TestTreeBuilt(t *testing.T) {
	if TreeBuilt.Name() != "relay.tree.built" {
		t.Errorf("expected name 'relay.tree.built', got %q", TreeBuilt.Name())
	}
}

func TestTreeTransaction(t *testing.T) {
	if TreeTransaction.Name() != "relay.tree.transaction" {
		t.Errorf("expected name 'relay.tree.transaction', got %q", TreeTransaction.Name())
	}
}

func TestGetterFlushed(t *testing.T) {
	if GetterFlushed.Name() != "relay.getter.flushed" {
		t.Errorf("expected name 'relay.getter.flushed', got %q", GetterFlushed.Name())
	}
}

func TestFeederStarted(t *testing.T) {
	if FeederStarted.Name() != "relay.feeder.started" {
		t.Errorf("expected name 'relay.feeder.started', got %q", FeederStarted.Name())
	}
}

func TestFeederStopped(t *testing.T) {
	if FeederStopped.Name() != "relay.feeder.stopped" {
		t.Errorf("expected name 'relay.feeder.stopped', got %q", FeederStopped.Name())
	}
}

func TestFeederChangeReceived(t *testing.T) {
	if FeederChangeReceived.Name() != "relay.feeder.change.received" {
		t.Errorf("expected name 'relay.feeder.change.received', got %q", FeederChangeReceived.Name())
	}
}

func TestFeederDecodeFailed(t *testing.T) {
	if FeederDecodeFailed.Name() != "relay.feeder.decode.failed" {
		t.Errorf("expected name 'relay.feeder.decode.failed', got %q", FeederDecodeFailed.Name())
	}
}

func TestFeederValidationFailed(t *testing.T) {
	if FeederValidationFailed.Name() != "relay.feeder.validation.failed" {
		t.Errorf("expected name 'relay.feeder.validation.failed', got %q", FeederValidationFailed.Name())
	}
}

func TestFeederPipelineFailed(t *testing.T) {
	if FeederPipelineFailed.Name() != "relay.feeder.pipeline.failed" {
		t.Errorf("expected name 'relay.feeder.pipeline.failed', got %q", FeederPipelineFailed.Name())
	}
}

func TestFeederApplied(t *testing.T) {
	if FeederApplied.Name() != "relay.feeder.applied" {
		t.Errorf("expected name 'relay.feeder.applied', got %q", FeederApplied.Name())
	}
}
