package model

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

const (
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
)

// OrderItem is a priced line frozen at checkout time. Later product edits
// never change an existing order.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	PriceBDT  int64  `json:"price_bdt"`
	Quantity  int    `json:"quantity"`
}

// Order is created only by payment confirmation. TransactionID is the
// gateway payment reference and carries the unique index that makes order
// creation idempotent.
type Order struct {
	OrderID       string
	UserID        string
	UserEmail     string
	Items         []OrderItem
	SubtotalBDT   int64
	DiscountBDT   int64
	ShippingBDT   int64
	TaxBDT        int64
	TotalBDT      int64
	TotalUSDCents int64
	CouponCode    string
	Status        string
	TransactionID string
	CreatedAt     time.Time
}

// NewOrderID mirrors the appointment id shape with an ORD prefix.
func NewOrderID(now time.Time) string {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return "ORD-" + now.UTC().Format("20060102150405") + "-" + strings.ToUpper(hex.EncodeToString(b[:]))
}

// CartSnapshot is the typed checkout state serialized into the payment
// intent's metadata and decoded exactly once at confirmation.
type CartSnapshot struct {
	UserID        string      `json:"user_id"`
	UserEmail     string      `json:"user_email"`
	Items         []OrderItem `json:"items"`
	SubtotalBDT   int64       `json:"subtotal_bdt"`
	DiscountBDT   int64       `json:"discount_bdt"`
	ShippingBDT   int64       `json:"shipping_bdt"`
	TaxBDT        int64       `json:"tax_bdt"`
	TotalBDT      int64       `json:"total_bdt"`
	CouponCode    string      `json:"coupon_code,omitempty"`
}
