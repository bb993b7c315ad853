package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mahfuz-anam/pawcare/libs/payments"
	"github.com/mahfuz-anam/pawcare/services/booking-service/internal/model"
)

func TestAppointmentStoreRejectsWrongIntentKind(t *testing.T) {
	store := &appointmentStore{handler: &BookingHandler{}}
	_, err := store.Insert(context.Background(), payments.IntentDetails{
		ID:       "pi_wrong_kind",
		Status:   payments.StatusSucceeded,
		Metadata: map[string]string{"kind": "order"},
	})
	if !errors.Is(err, errWrongIntentKind) {
		t.Fatalf("expected errWrongIntentKind, got %v", err)
	}
}

func TestAppointmentStoreRejectsMissingSnapshot(t *testing.T) {
	store := &appointmentStore{handler: &BookingHandler{}}
	_, err := store.Insert(context.Background(), payments.IntentDetails{
		ID:       "pi_no_snapshot",
		Status:   payments.StatusSucceeded,
		Metadata: map[string]string{"kind": metadataKind},
	})
	if err == nil {
		t.Fatal("expected error for missing booking snapshot")
	}
}

func TestAppointmentStoreRejectsIncompleteSnapshot(t *testing.T) {
	snapshot, err := json.Marshal(model.BookingIntent{
		DoctorID: "doc-1",
		// no user, date or time
	})
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}

	store := &appointmentStore{handler: &BookingHandler{}}
	_, err = store.Insert(context.Background(), payments.IntentDetails{
		ID:       "pi_incomplete",
		Status:   payments.StatusSucceeded,
		Metadata: map[string]string{"kind": metadataKind, "booking": string(snapshot)},
	})
	if err == nil {
		t.Fatal("expected error for incomplete booking snapshot")
	}
}
