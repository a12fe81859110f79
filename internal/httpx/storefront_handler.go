package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dajiagoods/storefront/internal/cart"
	"github.com/dajiagoods/storefront/internal/catalog"
	"github.com/dajiagoods/storefront/internal/fallback"
	"github.com/dajiagoods/storefront/internal/gateway"
	"github.com/dajiagoods/storefront/internal/leads"
	"github.com/dajiagoods/storefront/internal/orders"
	"github.com/dajiagoods/storefront/internal/verify"
)

const sessionCookie = "storefront_session"

// StorefrontHandler owns the customer-facing routes: catalog, cart,
// registration, checkout, order confirmation and code verification.
type StorefrontHandler struct {
	Store   fallback.Store
	Gateway *gateway.Gateway // nil in local-only mode
	Leads   *leads.Service
	Orders  *orders.Service
	Verify  *verify.Service
}

func (h *StorefrontHandler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{slug}", h.getProduct)

	r.Get("/cart", h.getCart)
	r.Post("/cart/items", h.addItem)
	r.Put("/cart/items/{productID}", h.updateItem)
	r.Delete("/cart/items/{productID}", h.removeItem)
	r.Delete("/cart", h.clearCart)

	r.Post("/leads", h.submitLead)
	r.Post("/checkout", h.checkout)
	r.Get("/orders/{orderNumber}", h.getOrder)
	r.Get("/verify/{code}", h.verifyCode)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// sessionID reads the session cookie, minting one on first contact so the
// cart key is stable across requests.
func (h *StorefrontHandler) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (h *StorefrontHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.Gateway != nil {
		products, err := h.Gateway.ListProducts(ctx)
		if err == nil && len(products) > 0 {
			writeJSON(w, http.StatusOK, products)
			return
		}
		if err != nil {
			log.Printf("httpx: list products: %v", err)
		}
	}
	writeJSON(w, http.StatusOK, catalog.Products)
}

func (h *StorefrontHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := catalog.BySlug(chi.URLParam(r, "slug"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown product"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type cartResp struct {
	Items      []cart.Item `json:"items"`
	TotalPrice int         `json:"total_price"`
	TotalItems int         `json:"total_items"`
}

func cartJSON(m *cart.Manager) cartResp {
	items := m.Items()
	if items == nil {
		items = []cart.Item{}
	}
	return cartResp{Items: items, TotalPrice: m.TotalPrice(), TotalItems: m.TotalItems()}
}

func (h *StorefrontHandler) loadCart(w http.ResponseWriter, r *http.Request) (context.Context, context.CancelFunc, *cart.Manager) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	return ctx, cancel, cart.Load(ctx, h.Store, h.sessionID(w, r))
}

func (h *StorefrontHandler) getCart(w http.ResponseWriter, r *http.Request) {
	_, cancel, m := h.loadCart(w, r)
	defer cancel()
	writeJSON(w, http.StatusOK, cartJSON(m))
}

type addItemReq struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *StorefrontHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	product, ok := catalog.ByID(req.ProductID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown product"})
		return
	}

	ctx, cancel, m := h.loadCart(w, r)
	defer cancel()

	added, err := m.Add(ctx, product, req.Quantity)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cart save failed"})
		return
	}
	if !added {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "insufficient stock"})
		return
	}
	writeJSON(w, http.StatusOK, cartJSON(m))
}

type updateItemReq struct {
	Quantity int `json:"quantity"`
}

func (h *StorefrontHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel, m := h.loadCart(w, r)
	defer cancel()

	updated, err := m.UpdateQuantity(ctx, chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cart save failed"})
		return
	}
	if !updated {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "quantity not updated"})
		return
	}
	writeJSON(w, http.StatusOK, cartJSON(m))
}

func (h *StorefrontHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, m := h.loadCart(w, r)
	defer cancel()

	if err := m.Remove(ctx, chi.URLParam(r, "productID")); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cart save failed"})
		return
	}
	writeJSON(w, http.StatusOK, cartJSON(m))
}

func (h *StorefrontHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, m := h.loadCart(w, r)
	defer cancel()

	if err := m.Clear(ctx); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cart save failed"})
		return
	}
	writeJSON(w, http.StatusOK, cartJSON(m))
}

func (h *StorefrontHandler) submitLead(w http.ResponseWriter, r *http.Request) {
	var in leads.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	// field-level messages first, so the form can highlight inline
	if errs := leads.ValidateStage1(in); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
		return
	}
	if errs := leads.ValidateStage2(in); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	l, err := h.Leads.Submit(ctx, in)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "registration failed"})
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *StorefrontHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var form orders.FormData
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if errs := orders.ValidateForm(form); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
		return
	}

	ctx, cancel, m := h.loadCart(w, r)
	defer cancel()

	o, err := h.Orders.Checkout(ctx, m, form)
	switch {
	case errors.Is(err, orders.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cart is empty"})
		return
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "checkout failed"})
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

// getOrder serves the confirmation page: local copy first (it always exists
// for orders placed on this instance), remote as the fallback.
func (h *StorefrontHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	number := chi.URLParam(r, "orderNumber")
	o, found, err := h.Orders.LocalByNumber(ctx, number)
	if err != nil {
		log.Printf("httpx: local order lookup %s: %v", number, err)
	}
	if !found && h.Gateway != nil {
		o, found, err = h.Gateway.OrderByNumber(ctx, number)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "order lookup failed"})
			return
		}
	}
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *StorefrontHandler) verifyCode(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Verify.Verify(ctx, chi.URLParam(r, "code"))
	switch {
	case errors.Is(err, verify.ErrNotConfigured):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "verification service unavailable"})
	case errors.Is(err, verify.ErrCodeNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "code not found"})
	case errors.Is(err, verify.ErrCodeInvalidated):
		writeJSON(w, http.StatusGone, map[string]string{"error": "code already used or revoked"})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "verification failed"})
	default:
		writeJSON(w, http.StatusOK, res)
	}
}
