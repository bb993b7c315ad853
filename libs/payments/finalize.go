package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

var (
	// ErrNotCompleted means the gateway does not report the payment as
	// succeeded. Nothing was written; the caller should not retry until the
	// payment actually completes.
	ErrNotCompleted = errors.New("payment not completed")

	// ErrInFlight means another request is still finalizing the same
	// reference in this process. Safe to retry shortly.
	ErrInFlight = errors.New("payment finalization already in flight")

	// ErrDuplicateKey is returned by Store implementations when the insert
	// hit the unique index on the payment reference. Never surfaced to
	// callers of Finalize; it degrades into a duplicate-read.
	ErrDuplicateKey = errors.New("payment reference already recorded")
)

// Store persists finalized payment records keyed by payment reference.
// Insert must return ErrDuplicateKey (possibly wrapped) when the reference
// already has a record.
type Store[R any] interface {
	FindByReference(ctx context.Context, ref string) (R, bool, error)
	Insert(ctx context.Context, details IntentDetails) (R, error)
}

// Result tags the returned record when an earlier call already created it.
// Duplicate results are field-for-field the canonical record; callers skip
// success side effects (cart clearing, events) on the duplicate path.
type Result[R any] struct {
	Record    R
	Duplicate bool
}

// Finalizer converts a succeeded payment into exactly one durable record.
// The reservation guard is injected so it can be shared across record types
// in one process and replaced in tests.
type Finalizer[R any] struct {
	gateway Gateway
	guard   *Reservations
	store   Store[R]
	logger  *slog.Logger
	wait    time.Duration
}

func NewFinalizer[R any](gateway Gateway, guard *Reservations, store Store[R], logger *slog.Logger) *Finalizer[R] {
	return &Finalizer[R]{
		gateway: gateway,
		guard:   guard,
		store:   store,
		logger:  logger,
		wait:    time.Second,
	}
}

// Finalize runs the idempotent payment-to-record flow:
// local reservation, durable lookup, gateway status check, insert behind the
// unique index, duplicate-key degrade. Every error path leaves the system
// retryable: either nothing was written or one canonical record exists.
func (f *Finalizer[R]) Finalize(ctx context.Context, ref string) (Result[R], error) {
	var zero Result[R]
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return zero, errors.New("payment reference is required")
	}

	if !f.guard.TryAcquire(ref) {
		// A concurrent request in this process holds the reservation. Give
		// it a moment to land, then serve whatever it wrote.
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(f.wait):
		}
		if rec, ok, err := f.store.FindByReference(ctx, ref); err != nil {
			return zero, err
		} else if ok {
			return Result[R]{Record: rec, Duplicate: true}, nil
		}
		if !f.guard.TryAcquire(ref) {
			return zero, ErrInFlight
		}
	}
	defer f.guard.Release(ref)

	if rec, ok, err := f.store.FindByReference(ctx, ref); err != nil {
		return zero, err
	} else if ok {
		return Result[R]{Record: rec, Duplicate: true}, nil
	}

	details, err := f.gateway.RetrieveIntent(ctx, ref)
	if err != nil {
		return zero, fmt.Errorf("retrieve payment intent: %w", err)
	}
	if details.Status != StatusSucceeded {
		return zero, fmt.Errorf("%w (status %q)", ErrNotCompleted, details.Status)
	}

	rec, err := f.store.Insert(ctx, details)
	if err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			// Lost the insert race between lookup and insert; the winner's
			// row is the canonical record.
			f.logger.Info("payment already recorded by concurrent request", "payment_reference", ref)
			existing, ok, findErr := f.store.FindByReference(ctx, ref)
			if findErr != nil {
				return zero, findErr
			}
			if !ok {
				return zero, err
			}
			return Result[R]{Record: existing, Duplicate: true}, nil
		}
		return zero, err
	}
	return Result[R]{Record: rec}, nil
}
