package relay

import (
	"sync"
	"testing"
)

func snapshotOf(v int) *Versioned[int] {
	return &Versioned[int]{value: v, version: 1, present: true}
}

func TestPublisher_AddRemoveContains(t *testing.T) {
	p := NewPublisher[int](nil)

	id := p.Add(func(_ *Versioned[int]) {})
	if !p.Contains(id) {
		t.Error("expected subscription to be registered")
	}
	if p.Len() != 1 {
		t.Errorf("expected 1 observer, got %d", p.Len())
	}

	if !p.Remove(id) {
		t.Error("expected removal to succeed")
	}
	if p.Contains(id) {
		t.Error("expected subscription to be gone")
	}
	if p.Remove(id) {
		t.Error("removing twice should report false")
	}
}

func TestPublisher_SyncDeliveryInRegistrationOrder(t *testing.T) {
	p := NewPublisher[int](nil)

	var order []string
	p.Add(func(_ *Versioned[int]) { order = append(order, "first") })
	p.Add(func(_ *Versioned[int]) { order = append(order, "second") })
	p.Add(func(_ *Versioned[int]) { order = append(order, "third") })

	p.Publish(snapshotOf(1))

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("expected %d deliveries, got %d", len(want), len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], order[i])
		}
	}
}

func TestPublisher_ObserverCanUnsubscribeDuringDelivery(t *testing.T) {
	p := NewPublisher[int](nil)

	var id uint64
	calls := 0
	id = p.Add(func(_ *Versioned[int]) {
		calls++
		p.Remove(id)
	})

	p.Publish(snapshotOf(1))
	p.Publish(snapshotOf(2))

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestPublisher_AsyncDeliveryThroughExecutor(t *testing.T) {
	pool := NewPool(2, 8)
	defer pool.Close()

	p := NewPublisher[int](pool)

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := 0
	wg.Add(2)
	for i := 0; i < 2; i++ {
		p.Add(func(_ *Versioned[int]) {
			mu.Lock()
			seen++
			mu.Unlock()
			wg.Done()
		})
	}

	p.Publish(snapshotOf(42))
	wg.Wait()

	if seen != 2 {
		t.Errorf("expected 2 deliveries, got %d", seen)
	}
}
