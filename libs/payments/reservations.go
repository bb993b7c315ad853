package payments

import "sync"

// Reservations tracks payment references currently being finalized in this
// process. It smooths concurrent duplicates within one instance only; the
// store's unique index on the payment reference is the correctness authority.
type Reservations struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewReservations() *Reservations {
	return &Reservations{held: map[string]struct{}{}}
}

// TryAcquire reserves key for the caller. It never blocks.
func (r *Reservations) TryAcquire(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.held[key]; busy {
		return false
	}
	r.held[key] = struct{}{}
	return true
}

// Release frees key. Releasing a key that is not held is a no-op, so callers
// can defer it on every exit path.
func (r *Reservations) Release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.held, key)
}
