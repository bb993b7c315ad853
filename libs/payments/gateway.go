// Package payments holds the payment-gateway abstraction and the idempotent
// finalization flow that turns one succeeded payment into exactly one durable
// record, no matter how many times the confirmation is retried.
package payments

import "context"

// Intent is the result of creating a payment intent with the gateway.
type Intent struct {
	ID           string
	ClientSecret string
}

// IntentDetails is the gateway's view of an existing payment intent. Metadata
// carries the booking/cart snapshot attached at intent-creation time.
type IntentDetails struct {
	ID          string
	Status      string
	AmountMinor int64
	Currency    string
	Metadata    map[string]string
}

// StatusSucceeded is the only gateway status that permits record creation.
const StatusSucceeded = "succeeded"

// Gateway is the capability the services need from the payment provider.
type Gateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (Intent, error)
	RetrieveIntent(ctx context.Context, id string) (IntentDetails, error)
}
