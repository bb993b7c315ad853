package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mahfuz-anam/pawcare/libs/payments"
	"github.com/mahfuz-anam/pawcare/services/shop-service/internal/model"
)

func TestOrderStoreRejectsWrongIntentKind(t *testing.T) {
	store := &orderStore{handler: &ShopHandler{}}
	_, err := store.Insert(context.Background(), payments.IntentDetails{
		ID:       "pi_wrong_kind",
		Status:   payments.StatusSucceeded,
		Metadata: map[string]string{"kind": "appointment"},
	})
	if !errors.Is(err, errWrongIntentKind) {
		t.Fatalf("expected errWrongIntentKind, got %v", err)
	}
}

func TestOrderStoreRejectsMissingSnapshot(t *testing.T) {
	store := &orderStore{handler: &ShopHandler{}}
	_, err := store.Insert(context.Background(), payments.IntentDetails{
		ID:       "pi_no_snapshot",
		Status:   payments.StatusSucceeded,
		Metadata: map[string]string{"kind": metadataKind},
	})
	if err == nil {
		t.Fatal("expected error for missing cart snapshot")
	}
}

func TestOrderStoreRejectsEmptySnapshot(t *testing.T) {
	snapshot, err := json.Marshal(model.CartSnapshot{UserID: "u-1"})
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}

	store := &orderStore{handler: &ShopHandler{}}
	_, err = store.Insert(context.Background(), payments.IntentDetails{
		ID:       "pi_empty_cart",
		Status:   payments.StatusSucceeded,
		Metadata: map[string]string{"kind": metadataKind, "cart": string(snapshot)},
	})
	if err == nil {
		t.Fatal("expected error for cart snapshot without items")
	}
}
