package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mahfuz-anam/pawcare/libs/httpx"
	"github.com/mahfuz-anam/pawcare/libs/payments"
	"github.com/mahfuz-anam/pawcare/services/shop-service/internal/cart"
	"github.com/mahfuz-anam/pawcare/services/shop-service/internal/model"
	"github.com/mahfuz-anam/pawcare/services/shop-service/internal/outbox"
	"github.com/mahfuz-anam/pawcare/services/shop-service/internal/storage"
)

// metadataKind tags payment intents created by checkout so the confirm
// endpoint refuses booking intents, and vice versa.
const metadataKind = "order"

type ShopHandler struct {
	products   *storage.ProductRepository
	coupons    *storage.CouponRepository
	orders     *storage.OrderRepository
	carts      *cart.Store
	outboxRepo *outbox.Repository
	gateway    payments.Gateway
	finalizer  *payments.Finalizer[model.Order]
	logger     *slog.Logger
}

func NewShopHandler(products *storage.ProductRepository, coupons *storage.CouponRepository, orders *storage.OrderRepository, carts *cart.Store, outboxRepo *outbox.Repository, gateway payments.Gateway, guard *payments.Reservations, logger *slog.Logger) *ShopHandler {
	h := &ShopHandler{
		products:   products,
		coupons:    coupons,
		orders:     orders,
		carts:      carts,
		outboxRepo: outboxRepo,
		gateway:    gateway,
		logger:     logger,
	}
	h.finalizer = payments.NewFinalizer[model.Order](gateway, guard, &orderStore{handler: h}, logger)
	return h
}

type productItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	PriceBDT    int64  `json:"price_bdt"`
	Stock       int    `json:"stock"`
	ImageURL    string `json:"image_url,omitempty"`
}

func toProductItem(p model.Product) productItem {
	return productItem{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		PriceBDT:    p.PriceBDT,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
	}
}

// Products serves the public catalog: all products, a category filter, or a
// single product by id.
func (h *ShopHandler) Products(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if id := strings.TrimSpace(r.URL.Query().Get("id")); id != "" {
		p, found, err := h.products.Get(r.Context(), id)
		if err != nil {
			h.logger.Error("load product failed", "err", err)
			http.Error(w, "failed to load product", http.StatusInternalServerError)
			return
		}
		if !found {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toProductItem(p))
		return
	}

	products, err := h.products.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("category")))
	if err != nil {
		h.logger.Error("list products failed", "err", err)
		http.Error(w, "failed to list products", http.StatusInternalServerError)
		return
	}
	items := make([]productItem, 0, len(products))
	for _, p := range products {
		items = append(items, toProductItem(p))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"products": items})
}

type createProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PriceBDT    int64  `json:"price_bdt"`
	Stock       int    `json:"stock"`
	ImageURL    string `json:"image_url"`
}

// CreateProduct adds a catalog entry. Admin only.
func (h *ShopHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := httpx.IdentityFromRequest(r)
	if !ok || id.Role != httpx.RoleAdmin {
		http.Error(w, "admin role required", http.StatusForbidden)
		return
	}

	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.PriceBDT <= 0 {
		http.Error(w, "name and positive price_bdt are required", http.StatusBadRequest)
		return
	}

	p := model.Product{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		PriceBDT:    req.PriceBDT,
		Stock:       req.Stock,
		ImageURL:    strings.TrimSpace(req.ImageURL),
	}
	if err := h.products.Create(r.Context(), p); err != nil {
		h.logger.Error("create product failed", "err", err)
		http.Error(w, "failed to create product", http.StatusInternalServerError)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"id": p.ID})
}

type validateCouponRequest struct {
	Code        string `json:"code"`
	SubtotalBDT int64  `json:"subtotal_bdt"`
}

// ValidateCoupon checks a code and, when a subtotal is supplied, computes
// the discount it would grant.
func (h *ShopHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req validateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		http.Error(w, "code is required", http.StatusBadRequest)
		return
	}

	coupon, found, err := h.coupons.Get(r.Context(), req.Code)
	if err != nil {
		h.logger.Error("load coupon failed", "err", err)
		http.Error(w, "failed to validate coupon", http.StatusInternalServerError)
		return
	}
	if !found || !coupon.Usable(time.Now().UTC()) {
		http.Error(w, "coupon is not valid", http.StatusNotFound)
		return
	}

	resp := map[string]any{"code": coupon.Code, "percent": coupon.Percent}
	if req.SubtotalBDT > 0 {
		resp["discount_bdt"] = req.SubtotalBDT * int64(coupon.Percent) / 100
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
