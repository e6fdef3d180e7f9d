package relay

import (
	"errors"
	"testing"
)

func TestGetter_GetErrors(t *testing.T) {
	p := NewPath[int]()
	g := NewGetter(p)

	if _, err := g.Get(); !errors.Is(err, ErrNotActive) {
		t.Errorf("expected ErrNotActive, got %v", err)
	}

	g.Activate()
	defer g.Deactivate()

	if _, err := g.Get(); !errors.Is(err, ErrNoValue) {
		t.Errorf("expected ErrNoValue, got %v", err)
	}

	p.Set(7)
	got, err := g.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
}

func TestGetter_ActivationHoldsSourceActive(t *testing.T) {
	p := NewPath[int]()
	g := NewGetter(p)

	g.Activate()
	if !g.Active() {
		t.Fatal("expected active getter")
	}
	if p.State() != StateActive {
		t.Fatal("expected active source")
	}

	// Repeated activation must not double-count the reference.
	g.Activate()
	g.Deactivate()

	if g.Active() {
		t.Error("expected inactive getter")
	}
	if p.State() != StateInactive {
		t.Error("expected inactive source")
	}
}

func TestGetter_BackPropagatesExistingValue(t *testing.T) {
	p := NewPath[string]()
	p.Set("early")

	g := NewGetter(p)
	g.Activate()
	defer g.Deactivate()

	got, err := g.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "early" {
		t.Errorf("expected early, got %q", got)
	}
}

func TestGetter_FirstDeliversImmediatelyWhenPresent(t *testing.T) {
	p := NewPath[int]()
	p.Set(3)

	g := NewGetter(p)
	g.Activate()
	defer g.Deactivate()

	delivered := 0
	if !g.First(func(v int) {
		delivered = v
	}) {
		t.Fatal("expected immediate delivery")
	}
	if delivered != 3 {
		t.Errorf("expected 3, got %d", delivered)
	}
}

func TestGetter_FirstDefersUntilFirstCommit(t *testing.T) {
	p := NewPath[int]()
	g := NewGetter(p)
	g.Activate()
	defer g.Deactivate()

	calls := 0
	if g.First(func(int) { calls++ }) {
		t.Fatal("expected deferred registration")
	}
	if calls != 0 {
		t.Fatal("consumer must not run before the first value")
	}

	p.Set(1)
	if calls != 1 {
		t.Fatalf("expected exactly one deferred delivery, got %d", calls)
	}

	// Exactly once: later commits do not replay the consumer.
	p.Set(2)
	if calls != 1 {
		t.Errorf("expected no replay, got %d calls", calls)
	}
}

func TestGetter_DeactivationClearsDeferredConsumers(t *testing.T) {
	p := NewPath[int]()
	g := NewGetter(p)
	g.Activate()

	calls := 0
	g.First(func(int) { calls++ })
	g.Deactivate()

	g.Activate()
	defer g.Deactivate()
	p.Set(1)

	if calls != 0 {
		t.Errorf("cleared consumer must never run, got %d calls", calls)
	}
}

func TestGetter_PassiveGetAlwaysValid(t *testing.T) {
	p := NewPath[int]()
	g := NewGetter(p)

	if !g.PassiveGet().IsDefault() {
		t.Error("expected default sentinel while inactive and empty")
	}

	g.Activate()
	p.Set(9)
	g.Deactivate()

	// The mirror keeps the last value after deactivation.
	if got := g.PassiveGet().Value(); got != 9 {
		t.Errorf("expected 9, got %d", got)
	}
}

func TestGetter_PassiveNextRequiresActivation(t *testing.T) {
	p := NewPath[int]()
	p.Set(4)

	g := NewGetter(p)
	g.Activate()
	p.Set(5)
	g.Deactivate()

	// Value present but inactive: delivery is deferred, not immediate.
	calls := 0
	if g.PassiveNext(func(int) { calls++ }) {
		t.Fatal("expected deferred registration while inactive")
	}

	g.Activate()
	defer g.Deactivate()
	p.Set(6)

	if calls != 1 {
		t.Errorf("expected one delivery after reactivation, got %d", calls)
	}
}

func TestGetter_PassiveFirstWorksWithoutActivation(t *testing.T) {
	p := NewPath[int]()

	g := NewGetter(p)
	g.Activate()
	p.Set(8)
	g.Deactivate()

	got := 0
	if !g.PassiveFirst(func(v int) { got = v }) {
		t.Fatal("expected immediate delivery from the mirror")
	}
	if got != 8 {
		t.Errorf("expected 8, got %d", got)
	}
}

func TestGetter_CustomExitExecutor(t *testing.T) {
	p := NewPath[int]()
	pool := NewPool(1, 4)
	defer pool.Close()

	g := NewGetter(p, WithExitExecutor[int](pool))
	g.Activate()
	defer g.Deactivate()

	done := make(chan int, 1)
	g.First(func(v int) { done <- v })

	p.Set(11)
	if v := <-done; v != 11 {
		t.Errorf("expected 11, got %d", v)
	}
}
