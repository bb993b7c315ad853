package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mahfuz-anam/pawcare/libs/httpx"
)

type cartLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	PriceBDT  int64  `json:"price_bdt"`
	Quantity  int    `json:"quantity"`
}

type setCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart dispatches on method: GET reads the cart priced against the current
// catalog, POST sets a line's quantity, DELETE removes a line or clears the
// cart when no product_id is given.
func (h *ShopHandler) Cart(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.cartGet(w, r, id.UserID)
	case http.MethodPost:
		h.cartSet(w, r, id.UserID)
	case http.MethodDelete:
		h.cartDelete(w, r, id.UserID)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ShopHandler) cartGet(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()
	items, err := h.carts.Items(ctx, userID)
	if err != nil {
		h.logger.Error("load cart failed", "err", err)
		http.Error(w, "failed to load cart", http.StatusInternalServerError)
		return
	}

	ids := make([]string, 0, len(items))
	for productID := range items {
		ids = append(ids, productID)
	}
	products, err := h.products.GetMany(ctx, ids)
	if err != nil {
		h.logger.Error("load cart products failed", "err", err)
		http.Error(w, "failed to load cart", http.StatusInternalServerError)
		return
	}

	lines := make([]cartLine, 0, len(items))
	var subtotal int64
	for productID, qty := range items {
		p, found := products[productID]
		if !found {
			// Product removed from the catalog since it was added.
			continue
		}
		lines = append(lines, cartLine{
			ProductID: p.ID,
			Name:      p.Name,
			PriceBDT:  p.PriceBDT,
			Quantity:  qty,
		})
		subtotal += p.PriceBDT * int64(qty)
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"items":        lines,
		"subtotal_bdt": subtotal,
	})
}

func (h *ShopHandler) cartSet(w http.ResponseWriter, r *http.Request, userID string) {
	var req setCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		http.Error(w, "product_id is required", http.StatusBadRequest)
		return
	}

	if req.Quantity > 0 {
		_, found, err := h.products.Get(r.Context(), req.ProductID)
		if err != nil {
			h.logger.Error("load product failed", "err", err)
			http.Error(w, "failed to update cart", http.StatusInternalServerError)
			return
		}
		if !found {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
	}

	if err := h.carts.SetQuantity(r.Context(), userID, req.ProductID, req.Quantity); err != nil {
		h.logger.Error("update cart failed", "err", err)
		http.Error(w, "failed to update cart", http.StatusInternalServerError)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ShopHandler) cartDelete(w http.ResponseWriter, r *http.Request, userID string) {
	productID := strings.TrimSpace(r.URL.Query().Get("product_id"))
	var err error
	if productID == "" {
		err = h.carts.Clear(r.Context(), userID)
	} else {
		err = h.carts.Remove(r.Context(), userID, productID)
	}
	if err != nil {
		h.logger.Error("update cart failed", "err", err)
		http.Error(w, "failed to update cart", http.StatusInternalServerError)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
