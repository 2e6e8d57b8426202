package queue

import (
	"sync"
	"testing"
)

func TestRingOneSlotReserved(t *testing.T) {
	for capacity := 2; capacity <= 17; capacity++ {
		r := New[int](capacity)

		for i := 0; i < capacity-1; i++ {
			if err := r.TryPush(i); err != nil {
				t.Fatalf("capacity %d: push %d failed: %v", capacity, i, err)
			}
		}

		if err := r.TryPush(99); err != ErrFull {
			t.Errorf("capacity %d: Expected ErrFull after %d pushes, got %v", capacity, capacity-1, err)
		}

		if v, ok := r.TryPop(); !ok || v != 0 {
			t.Errorf("capacity %d: Expected to pop 0, got %d (ok=%v)", capacity, v, ok)
		}

		if err := r.TryPush(100); err != nil {
			t.Errorf("capacity %d: push after pop failed: %v", capacity, err)
		}

		if r.Len() != capacity-1 {
			t.Errorf("capacity %d: Expected length %d, got %d", capacity, capacity-1, r.Len())
		}
	}
}

func TestRingEmptyPop(t *testing.T) {
	r := New[string](4)

	if !r.IsEmpty() {
		t.Error("New ring should be empty")
	}

	if v, ok := r.TryPop(); ok {
		t.Errorf("Pop on empty ring returned %q", v)
	}
}

func TestRingFIFOAcrossWrap(t *testing.T) {
	r := New[int](5)

	for round := 0; round < 10; round++ {
		for i := 0; i < 3; i++ {
			if err := r.TryPush(round*10 + i); err != nil {
				t.Fatalf("round %d: push failed: %v", round, err)
			}
		}
		for i := 0; i < 3; i++ {
			v, ok := r.TryPop()
			if !ok {
				t.Fatalf("round %d: pop %d returned nothing", round, i)
			}
			if v != round*10+i {
				t.Errorf("round %d: Expected %d, got %d", round, round*10+i, v)
			}
		}
	}
}

func TestRingCorruptionResets(t *testing.T) {
	r := New[int](4)
	r.TryPush(1)
	r.TryPush(2)

	r.head.Store(17)

	if v, ok := r.TryPop(); ok {
		t.Errorf("Expected corrupted ring to pop nothing, got %d", v)
	}
	if !r.IsEmpty() {
		t.Error("Corrupted ring should be reset to empty")
	}
	if got := r.Stats().Corrupted; got != 1 {
		t.Errorf("Expected 1 corruption, got %d", got)
	}

	if err := r.TryPush(3); err != nil {
		t.Errorf("Push after reset failed: %v", err)
	}
	if v, ok := r.TryPop(); !ok || v != 3 {
		t.Errorf("Expected 3 after reset, got %d (ok=%v)", v, ok)
	}
}

func TestRingCheck(t *testing.T) {
	r := New[int](4)
	if r.Check() {
		t.Error("Check reported corruption on a healthy ring")
	}

	r.tail.Store(4)
	if !r.Check() {
		t.Error("Check did not report tail out of range")
	}
	if r.Check() {
		t.Error("Check should report a healthy ring after reset")
	}
}

func TestRingCorruptTripsGuard(t *testing.T) {
	r := New[int](4)
	r.TryPush(1)
	r.Corrupt()

	if r.Len() != 0 {
		t.Errorf("Expected corrupted ring to report empty, got %d", r.Len())
	}
	if !r.Check() {
		t.Error("Expected Check to reset the ring")
	}
	if got := r.Stats().Corrupted; got != 1 {
		t.Errorf("Expected 1 corruption, got %d", got)
	}
}

func TestRingDropsCounted(t *testing.T) {
	r := New[int](3)
	r.TryPush(1)
	r.TryPush(2)
	r.TryPush(3)
	r.TryPush(4)

	if got := r.Stats().Dropped; got != 2 {
		t.Errorf("Expected 2 drops, got %d", got)
	}
	if n := r.Drain(); n != 2 {
		t.Errorf("Expected to drain 2 items, drained %d", n)
	}
}

func TestRingConcurrentSPSC(t *testing.T) {
	r := New[int](8)
	const total = 10000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; {
			if r.TryPush(i) == nil {
				i++
			}
		}
	}()

	next := 0
	for next < total {
		v, ok := r.TryPop()
		if !ok {
			continue
		}
		if v != next {
			t.Fatalf("Expected %d, got %d", next, v)
		}
		next++
	}
	wg.Wait()
}

func TestChannelRoundTrip(t *testing.T) {
	ch := NewChannel[byte, int](4)

	if err := ch.Request(7); err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if ch.Pending() != 1 {
		t.Errorf("Expected 1 pending request, got %d", ch.Pending())
	}

	req, ok := ch.NextRequest()
	if !ok || req != 7 {
		t.Fatalf("Expected request 7, got %d (ok=%v)", req, ok)
	}
	if err := ch.Respond(int(req) * 3); err != nil {
		t.Fatalf("Respond failed: %v", err)
	}

	resp, ok := ch.Response()
	if !ok || resp != 21 {
		t.Errorf("Expected response 21, got %d (ok=%v)", resp, ok)
	}
	if _, ok := ch.Response(); ok {
		t.Error("Expected no further responses")
	}
}
