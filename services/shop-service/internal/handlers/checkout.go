package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mahfuz-anam/pawcare/libs/httpx"
	"github.com/mahfuz-anam/pawcare/libs/payments"
	"github.com/mahfuz-anam/pawcare/services/shop-service/internal/model"
	"github.com/mahfuz-anam/pawcare/services/shop-service/internal/outbox"
	"github.com/mahfuz-anam/pawcare/services/shop-service/internal/pricing"
)

type checkoutIntentRequest struct {
	CouponCode string `json:"coupon_code"`
}

type checkoutIntentResponse struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	SubtotalBDT     int64  `json:"subtotal_bdt"`
	DiscountBDT     int64  `json:"discount_bdt"`
	ShippingBDT     int64  `json:"shipping_bdt"`
	TaxBDT          int64  `json:"tax_bdt"`
	TotalBDT        int64  `json:"total_bdt"`
	AmountUSDCents  int64  `json:"amount_usd_cents"`
}

type orderItemView struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	PriceBDT  int64  `json:"price_bdt"`
	Quantity  int    `json:"quantity"`
}

type orderView struct {
	OrderID       string          `json:"order_id"`
	Items         []orderItemView `json:"items"`
	SubtotalBDT   int64           `json:"subtotal_bdt"`
	DiscountBDT   int64           `json:"discount_bdt"`
	ShippingBDT   int64           `json:"shipping_bdt"`
	TaxBDT        int64           `json:"tax_bdt"`
	TotalBDT      int64           `json:"total_bdt"`
	CouponCode    string          `json:"coupon_code,omitempty"`
	Status        string          `json:"status"`
	TransactionID string          `json:"transaction_id"`
	CreatedAt     string          `json:"created_at"`
	Duplicate     bool            `json:"duplicate,omitempty"`
}

func toOrderView(order model.Order, duplicate bool) orderView {
	items := make([]orderItemView, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, orderItemView(it))
	}
	return orderView{
		OrderID:       order.OrderID,
		Items:         items,
		SubtotalBDT:   order.SubtotalBDT,
		DiscountBDT:   order.DiscountBDT,
		ShippingBDT:   order.ShippingBDT,
		TaxBDT:        order.TaxBDT,
		TotalBDT:      order.TotalBDT,
		CouponCode:    order.CouponCode,
		Status:        order.Status,
		TransactionID: order.TransactionID,
		CreatedAt:     order.CreatedAt.UTC().Format(time.RFC3339),
		Duplicate:     duplicate,
	}
}

// CheckoutIntent snapshots the cart, prices it and creates the payment
// intent. The cart itself is untouched until the payment is confirmed.
func (h *ShopHandler) CheckoutIntent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := httpx.IdentityFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	// The body is optional; an empty POST checks out without a coupon.
	var req checkoutIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	items, err := h.carts.Items(ctx, id.UserID)
	if err != nil {
		h.logger.Error("load cart failed", "err", err)
		http.Error(w, "failed to load cart", http.StatusInternalServerError)
		return
	}
	if len(items) == 0 {
		http.Error(w, "cart is empty", http.StatusUnprocessableEntity)
		return
	}

	ids := make([]string, 0, len(items))
	for productID := range items {
		ids = append(ids, productID)
	}
	products, err := h.products.GetMany(ctx, ids)
	if err != nil {
		h.logger.Error("load cart products failed", "err", err)
		http.Error(w, "failed to price cart", http.StatusInternalServerError)
		return
	}

	var orderItems []model.OrderItem
	var lines []pricing.Line
	for productID, qty := range items {
		p, found := products[productID]
		if !found {
			continue
		}
		orderItems = append(orderItems, model.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			PriceBDT:  p.PriceBDT,
			Quantity:  qty,
		})
		lines = append(lines, pricing.Line{PriceBDT: p.PriceBDT, Quantity: qty})
	}
	if len(orderItems) == 0 {
		http.Error(w, "cart has no purchasable items", http.StatusUnprocessableEntity)
		return
	}

	couponPercent := 0
	couponCode := ""
	if code := strings.TrimSpace(req.CouponCode); code != "" {
		coupon, found, err := h.coupons.Get(ctx, code)
		if err != nil {
			h.logger.Error("load coupon failed", "err", err)
			http.Error(w, "failed to validate coupon", http.StatusInternalServerError)
			return
		}
		if !found || !coupon.Usable(time.Now().UTC()) {
			http.Error(w, "coupon is not valid", http.StatusUnprocessableEntity)
			return
		}
		couponPercent = coupon.Percent
		couponCode = coupon.Code
	}

	quote := pricing.Compute(lines, couponPercent)
	snapshot := model.CartSnapshot{
		UserID:      id.UserID,
		UserEmail:   id.Email,
		Items:       orderItems,
		SubtotalBDT: quote.SubtotalBDT,
		DiscountBDT: quote.DiscountBDT,
		ShippingBDT: quote.ShippingBDT,
		TaxBDT:      quote.TaxBDT,
		TotalBDT:    quote.TotalBDT,
		CouponCode:  couponCode,
	}
	encoded, err := json.Marshal(snapshot)
	if err != nil {
		http.Error(w, "failed to build cart snapshot", http.StatusInternalServerError)
		return
	}

	created, err := h.gateway.CreateIntent(ctx, quote.TotalUSDCents, "usd", map[string]string{
		"kind": metadataKind,
		"cart": string(encoded),
	})
	if err != nil {
		h.logger.Error("create payment intent failed", "err", err)
		http.Error(w, "payment gateway error", http.StatusBadGateway)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, checkoutIntentResponse{
		PaymentIntentID: created.ID,
		ClientSecret:    created.ClientSecret,
		SubtotalBDT:     quote.SubtotalBDT,
		DiscountBDT:     quote.DiscountBDT,
		ShippingBDT:     quote.ShippingBDT,
		TaxBDT:          quote.TaxBDT,
		TotalBDT:        quote.TotalBDT,
		AmountUSDCents:  quote.TotalUSDCents,
	})
}

// CheckoutConfirm turns a succeeded payment into the order record. Repeats
// return the same order tagged duplicate; only the first confirmation clears
// the cart.
func (h *ShopHandler) CheckoutConfirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := httpx.IdentityFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req struct {
		PaymentIntentID string `json:"payment_intent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.PaymentIntentID) == "" {
		http.Error(w, "payment_intent_id is required", http.StatusBadRequest)
		return
	}

	result, err := h.finalizer.Finalize(r.Context(), req.PaymentIntentID)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrNotCompleted):
			http.Error(w, "payment has not completed", http.StatusPaymentRequired)
		case errors.Is(err, payments.ErrInFlight):
			http.Error(w, "confirmation already in progress, retry shortly", http.StatusConflict)
		case errors.Is(err, errWrongIntentKind):
			http.Error(w, "payment intent does not belong to a checkout", http.StatusBadRequest)
		default:
			h.logger.Error("finalize order failed", "err", err, "payment_intent_id", req.PaymentIntentID)
			http.Error(w, "failed to confirm order", http.StatusInternalServerError)
		}
		return
	}

	// Clear the cart only on the path that actually created the order; a
	// duplicate confirmation must not wipe items added since.
	if !result.Duplicate {
		if err := h.carts.Clear(r.Context(), id.UserID); err != nil {
			h.logger.Warn("cart clear after checkout failed", "err", err, "user_id", id.UserID)
		}
	}

	httpx.WriteJSON(w, http.StatusOK, toOrderView(result.Record, result.Duplicate))
}

// Orders lists the caller's order history.
func (h *ShopHandler) Orders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := httpx.IdentityFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), id.UserID, 100)
	if err != nil {
		h.logger.Error("list orders failed", "err", err)
		http.Error(w, "failed to list orders", http.StatusInternalServerError)
		return
	}
	views := make([]orderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, toOrderView(order, false))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"orders": views})
}

// UpdateOrderStatus advances fulfilment. Admin only; repeating a transition
// is a no-op success.
func (h *ShopHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := httpx.IdentityFromRequest(r)
	if !ok || id.Role != httpx.RoleAdmin {
		http.Error(w, "admin role required", http.StatusForbidden)
		return
	}

	var req struct {
		OrderID string `json:"order_id"`
		Status  string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.OrderID = strings.TrimSpace(req.OrderID)
	req.Status = strings.TrimSpace(req.Status)
	if req.OrderID == "" {
		http.Error(w, "order_id is required", http.StatusBadRequest)
		return
	}
	switch req.Status {
	case model.OrderStatusProcessing, model.OrderStatusShipped, model.OrderStatusDelivered:
	default:
		http.Error(w, "status must be processing, shipped or delivered", http.StatusBadRequest)
		return
	}

	updated, err := h.orders.UpdateStatus(r.Context(), req.OrderID, req.Status)
	if err != nil {
		h.logger.Error("update order status failed", "err", err)
		http.Error(w, "failed to update order", http.StatusInternalServerError)
		return
	}
	if !updated {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"order_id": req.OrderID,
		"status":   req.Status,
	})
}

var errWrongIntentKind = errors.New("payment intent metadata kind mismatch")

// orderStore adapts the order repository to the finalizer's store contract:
// it decodes the cart snapshot from intent metadata and materializes the
// order row plus its confirmation event.
type orderStore struct {
	handler *ShopHandler
}

func (s *orderStore) FindByReference(ctx context.Context, ref string) (model.Order, bool, error) {
	return s.handler.orders.FindByTransaction(ctx, ref)
}

func (s *orderStore) Insert(ctx context.Context, details payments.IntentDetails) (model.Order, error) {
	h := s.handler
	if details.Metadata["kind"] != metadataKind {
		return model.Order{}, errWrongIntentKind
	}

	var snapshot model.CartSnapshot
	if err := json.Unmarshal([]byte(details.Metadata["cart"]), &snapshot); err != nil {
		return model.Order{}, errors.New("payment intent is missing the cart snapshot")
	}
	if snapshot.UserID == "" || len(snapshot.Items) == 0 {
		return model.Order{}, errors.New("cart snapshot is incomplete")
	}

	now := time.Now().UTC()
	order := model.Order{
		OrderID:       model.NewOrderID(now),
		UserID:        snapshot.UserID,
		UserEmail:     snapshot.UserEmail,
		Items:         snapshot.Items,
		SubtotalBDT:   snapshot.SubtotalBDT,
		DiscountBDT:   snapshot.DiscountBDT,
		ShippingBDT:   snapshot.ShippingBDT,
		TaxBDT:        snapshot.TaxBDT,
		TotalBDT:      snapshot.TotalBDT,
		TotalUSDCents: details.AmountMinor,
		CouponCode:    snapshot.CouponCode,
		Status:        model.OrderStatusProcessing,
		TransactionID: details.ID,
		CreatedAt:     now,
	}

	payload, err := json.Marshal(map[string]any{
		"order_id":   order.OrderID,
		"user_email": order.UserEmail,
		"total_bdt":  order.TotalBDT,
		"items":      len(order.Items),
	})
	if err != nil {
		return model.Order{}, err
	}

	evt := outbox.Event{
		AggregateType: "order",
		AggregateID:   order.OrderID,
		EventType:     outbox.EventOrderConfirmed,
		Payload:       payload,
	}
	if err := h.orders.InsertWithEvent(ctx, h.outboxRepo, order, evt); err != nil {
		return model.Order{}, err
	}
	return order, nil
}
