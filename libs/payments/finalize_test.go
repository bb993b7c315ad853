package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type fakeRecord struct {
	Ref         string
	AmountMinor int64
}

type fakeGateway struct {
	intents map[string]IntentDetails
	err     error
}

func (g *fakeGateway) CreateIntent(_ context.Context, amountMinor int64, currency string, metadata map[string]string) (Intent, error) {
	if g.err != nil {
		return Intent{}, g.err
	}
	id := fmt.Sprintf("pi_fake_%d", len(g.intents)+1)
	g.intents[id] = IntentDetails{ID: id, Status: StatusSucceeded, AmountMinor: amountMinor, Currency: currency, Metadata: metadata}
	return Intent{ID: id, ClientSecret: id + "_secret"}, nil
}

func (g *fakeGateway) RetrieveIntent(_ context.Context, id string) (IntentDetails, error) {
	if g.err != nil {
		return IntentDetails{}, g.err
	}
	d, ok := g.intents[id]
	if !ok {
		return IntentDetails{}, errors.New("no such intent")
	}
	return d, nil
}

type memStore struct {
	mu          sync.Mutex
	records     map[string]fakeRecord
	inserts     int
	insertDelay time.Duration
}

func newMemStore() *memStore {
	return &memStore{records: map[string]fakeRecord{}}
}

func (s *memStore) FindByReference(_ context.Context, ref string) (fakeRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[ref]
	return rec, ok, nil
}

func (s *memStore) Insert(_ context.Context, details IntentDetails) (fakeRecord, error) {
	if s.insertDelay > 0 {
		time.Sleep(s.insertDelay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[details.ID]; exists {
		return fakeRecord{}, ErrDuplicateKey
	}
	rec := fakeRecord{Ref: details.ID, AmountMinor: details.AmountMinor}
	s.records[details.ID] = rec
	s.inserts++
	return rec, nil
}

func succeededGateway(ref string, amount int64) *fakeGateway {
	return &fakeGateway{intents: map[string]IntentDetails{
		ref: {ID: ref, Status: StatusSucceeded, AmountMinor: amount, Currency: "usd"},
	}}
}

func testLogger() *slog.Logger {
	return slog.Default()
}

func TestFinalize_SequentialDuplicate(t *testing.T) {
	const ref = "pi_123"
	store := newMemStore()
	f := NewFinalizer(succeededGateway(ref, 500), NewReservations(), store, testLogger())

	first, err := f.Finalize(context.Background(), ref)
	if err != nil {
		t.Fatalf("first Finalize failed: %v", err)
	}
	if first.Duplicate {
		t.Fatal("first call must not be tagged duplicate")
	}

	second, err := f.Finalize(context.Background(), ref)
	if err != nil {
		t.Fatalf("second Finalize failed: %v", err)
	}
	if !second.Duplicate {
		t.Fatal("second call must be tagged duplicate")
	}
	if second.Record != first.Record {
		t.Fatalf("duplicate record differs: %+v vs %+v", second.Record, first.Record)
	}
	if store.inserts != 1 {
		t.Fatalf("expected exactly one insert, got %d", store.inserts)
	}
}

func TestFinalize_ConcurrentSameReference(t *testing.T) {
	const ref = "pi_concurrent"
	store := newMemStore()
	store.insertDelay = 20 * time.Millisecond
	f := NewFinalizer(succeededGateway(ref, 500), NewReservations(), store, testLogger())
	f.wait = 50 * time.Millisecond

	type outcome struct {
		res Result[fakeRecord]
		err error
	}
	results := make(chan outcome, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.Finalize(context.Background(), ref)
			results <- outcome{res: res, err: err}
		}()
	}
	wg.Wait()
	close(results)

	duplicates := 0
	for out := range results {
		if out.err != nil {
			t.Fatalf("concurrent Finalize failed: %v", out.err)
		}
		if out.res.Record.Ref != ref {
			t.Fatalf("unexpected record: %+v", out.res.Record)
		}
		if out.res.Duplicate {
			duplicates++
		}
	}
	if store.inserts != 1 {
		t.Fatalf("expected exactly one insert, got %d", store.inserts)
	}
	if duplicates != 1 {
		t.Fatalf("expected exactly one duplicate-tagged result, got %d", duplicates)
	}
}

func TestFinalize_PaymentNotCompleted(t *testing.T) {
	const ref = "pi_pending"
	gw := &fakeGateway{intents: map[string]IntentDetails{
		ref: {ID: ref, Status: "requires_payment_method"},
	}}
	store := newMemStore()
	f := NewFinalizer(gw, NewReservations(), store, testLogger())

	_, err := f.Finalize(context.Background(), ref)
	if !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("expected ErrNotCompleted, got %v", err)
	}
	if store.inserts != 0 {
		t.Fatalf("no record may be created, got %d inserts", store.inserts)
	}
}

func TestFinalize_GatewayErrorLeavesRetryable(t *testing.T) {
	const ref = "pi_down"
	gw := &fakeGateway{intents: map[string]IntentDetails{}, err: errors.New("gateway unreachable")}
	store := newMemStore()
	guard := NewReservations()
	f := NewFinalizer(gw, guard, store, testLogger())

	if _, err := f.Finalize(context.Background(), ref); err == nil {
		t.Fatal("expected gateway error to propagate")
	}
	if store.inserts != 0 {
		t.Fatal("no record may be created on gateway failure")
	}
	// Reservation must be released so a retry is not blocked.
	if !guard.TryAcquire(ref) {
		t.Fatal("reservation still held after failed finalize")
	}
}

// lostRaceStore simulates losing the insert race to another process:
// the reference is absent on lookup but the unique index rejects the insert.
type lostRaceStore struct {
	record  fakeRecord
	lookups int
}

func (s *lostRaceStore) FindByReference(context.Context, string) (fakeRecord, bool, error) {
	s.lookups++
	if s.lookups == 1 {
		return fakeRecord{}, false, nil
	}
	return s.record, true, nil
}

func (s *lostRaceStore) Insert(context.Context, IntentDetails) (fakeRecord, error) {
	return fakeRecord{}, fmt.Errorf("insert appointment: %w", ErrDuplicateKey)
}

func TestFinalize_DuplicateKeyDegradesToDuplicateRead(t *testing.T) {
	const ref = "pi_race"
	store := &lostRaceStore{record: fakeRecord{Ref: ref, AmountMinor: 900}}
	f := NewFinalizer(succeededGateway(ref, 900), NewReservations(), store, testLogger())

	res, err := f.Finalize(context.Background(), ref)
	if err != nil {
		t.Fatalf("duplicate-key path must not surface an error: %v", err)
	}
	if !res.Duplicate {
		t.Fatal("expected duplicate-tagged result")
	}
	if res.Record != store.record {
		t.Fatalf("expected canonical record, got %+v", res.Record)
	}
}
