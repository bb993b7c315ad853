package payments

import (
	"sync"
	"testing"
)

func TestReservations_AcquireRelease(t *testing.T) {
	r := NewReservations()
	if !r.TryAcquire("pi_1") {
		t.Fatal("first acquire should succeed")
	}
	if r.TryAcquire("pi_1") {
		t.Fatal("second acquire of held key should fail")
	}
	if !r.TryAcquire("pi_2") {
		t.Fatal("different key should be independent")
	}
	r.Release("pi_1")
	if !r.TryAcquire("pi_1") {
		t.Fatal("acquire after release should succeed")
	}
	// Releasing an unheld key must be a no-op.
	r.Release("pi_never_held")
}

func TestReservations_SingleWinnerUnderContention(t *testing.T) {
	r := NewReservations()
	const goroutines = 32

	var wg sync.WaitGroup
	wins := make(chan struct{}, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.TryAcquire("pi_contended") {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	if count != 1 {
		t.Fatalf("expected exactly one winner, got %d", count)
	}
}
