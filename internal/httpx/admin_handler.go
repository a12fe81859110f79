package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dajiagoods/storefront/internal/admin"
	"github.com/dajiagoods/storefront/internal/catalog"
	"github.com/dajiagoods/storefront/internal/gateway"
	"github.com/dajiagoods/storefront/internal/media"
	"github.com/dajiagoods/storefront/internal/orders"
	"github.com/dajiagoods/storefront/internal/outbox"
)

const maxUploadBytes = 10 << 20

// AdminHandler owns the back-office routes. Everything except login sits
// behind a bearer token issued by Auth.
type AdminHandler struct {
	Auth      *admin.Auth
	Admin     *admin.Service
	Gateway   *gateway.Gateway // nil in local-only mode
	Media     *media.Store     // nil when no bucket is configured
	Outbox    *outbox.Outbox   // nil when reconciliation is off
	Namespace string
}

func (h *AdminHandler) Register(r *chi.Mux) {
	r.Route("/admin", func(ar chi.Router) {
		ar.Post("/login", h.login)

		ar.Group(func(pr chi.Router) {
			pr.Use(h.requireToken)

			pr.Get("/leads", h.listLeads)
			pr.Get("/orders", h.listOrders)
			pr.Get("/codes", h.listCodes)
			pr.Get("/leads/export", h.exportLeads)
			pr.Get("/orders/export", h.exportOrders)
			pr.Get("/codes/export", h.exportCodes)

			pr.Post("/codes", h.generateCodes)
			pr.Put("/orders/{orderNumber}/status", h.setOrderStatus)

			pr.Get("/categories", h.listCategories)
			pr.Get("/media", h.listMedia)
			pr.Post("/media", h.uploadMedia)
			pr.Delete("/media/{id}", h.deleteMedia)

			pr.Get("/diagnostics", h.diagnostics)
		})
	})
}

func (h *AdminHandler) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" || h.Auth.Validate(token) != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or missing token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type loginReq struct {
	Password string `json:"password"`
}

func (h *AdminHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	token, err := h.Auth.Login(req.Password)
	switch {
	case errors.Is(err, admin.ErrLoginDisabled):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "admin login disabled"})
	case errors.Is(err, admin.ErrBadPassword):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "wrong password"})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

func pageParam(r *http.Request) int {
	p, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || p < 1 {
		return 1
	}
	return p
}

// writeListingErr renders the admin failure modes once: the gateway being
// unconfigured is 503, everything else 500.
func writeListingErr(w http.ResponseWriter, err error) {
	if errors.Is(err, admin.ErrNotConfigured) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "remote store not configured"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "listing failed"})
}

func writePage[T any](w http.ResponseWriter, r *http.Request, items []T) {
	page := pageParam(r)
	pageItems, totalPages := admin.Page(items, page)
	if pageItems == nil {
		pageItems = []T{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":       pageItems,
		"page":        page,
		"total_pages": totalPages,
		"total":       len(items),
	})
}

func (h *AdminHandler) listLeads(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	ls, err := h.Admin.Leads(ctx)
	if err != nil {
		writeListingErr(w, err)
		return
	}
	writePage(w, r, ls)
}

func (h *AdminHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	os, err := h.Admin.Orders(ctx)
	if err != nil {
		writeListingErr(w, err)
		return
	}
	writePage(w, r, os)
}

func (h *AdminHandler) listCodes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	cs, err := h.Admin.Codes(ctx)
	if err != nil {
		writeListingErr(w, err)
		return
	}
	writePage(w, r, cs)
}

func writeCSV(w http.ResponseWriter, collection string, records any) {
	name := admin.ExportFilename(collection, time.Now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := admin.ExportCSV(w, records); err != nil {
		// headers are out; nothing sensible left to send
		return
	}
}

func (h *AdminHandler) exportLeads(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	ls, err := h.Admin.Leads(ctx)
	if err != nil {
		writeListingErr(w, err)
		return
	}
	writeCSV(w, "leads", ls)
}

func (h *AdminHandler) exportOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	os, err := h.Admin.Orders(ctx)
	if err != nil {
		writeListingErr(w, err)
		return
	}
	writeCSV(w, "orders", os)
}

func (h *AdminHandler) exportCodes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	cs, err := h.Admin.Codes(ctx)
	if err != nil {
		writeListingErr(w, err)
		return
	}
	writeCSV(w, "codes", cs)
}

type generateCodesReq struct {
	ProductName string `json:"product_name"`
	Count       int    `json:"count"`
}

func (h *AdminHandler) generateCodes(w http.ResponseWriter, r *http.Request) {
	var req generateCodesReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	codes, err := h.Admin.GenerateCodes(ctx, req.ProductName, req.Count)
	switch {
	case errors.Is(err, admin.ErrNotConfigured):
		writeListingErr(w, err)
	case errors.Is(err, admin.ErrBadBatch):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "batch insert failed"})
	default:
		writeJSON(w, http.StatusCreated, map[string]any{"codes": codes, "count": len(codes)})
	}
}

type setStatusReq struct {
	Status orders.Status `json:"status"`
}

func (h *AdminHandler) setOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	number := chi.URLParam(r, "orderNumber")
	err := h.Admin.SetOrderStatus(ctx, number, req.Status)
	switch {
	case errors.Is(err, admin.ErrNotConfigured):
		writeListingErr(w, err)
	case err != nil:
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"order_number": number, "status": string(req.Status)})
	}
}

func (h *AdminHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	if h.Gateway == nil {
		writeListingErr(w, admin.ErrNotConfigured)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	mains, err := h.Gateway.ListMainCategories(ctx)
	if err != nil {
		writeListingErr(w, err)
		return
	}
	subs, err := h.Gateway.ListSubCategories(ctx)
	if err != nil {
		writeListingErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"main": mains, "sub": subs})
}

func (h *AdminHandler) listMedia(w http.ResponseWriter, r *http.Request) {
	if h.Gateway == nil {
		writeListingErr(w, admin.ErrNotConfigured)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ms, err := h.Gateway.ListMedia(ctx)
	if err != nil {
		writeListingErr(w, err)
		return
	}
	writePage(w, r, ms)
}

// uploadMedia stores the file in the bucket and records its public URL in
// the media table. Both the bucket and the gateway must be configured.
func (h *AdminHandler) uploadMedia(w http.ResponseWriter, r *http.Request) {
	if h.Media == nil || h.Gateway == nil {
		writeListingErr(w, admin.ErrNotConfigured)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file field"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read failed"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	url, err := h.Media.Upload(ctx, header.Filename, data)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "upload failed"})
		return
	}
	m := catalog.Media{
		ID:        uuid.NewString(),
		FileName:  header.Filename,
		URL:       url,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Gateway.InsertMedia(ctx, m); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "media record failed"})
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *AdminHandler) deleteMedia(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	id := chi.URLParam(r, "id")
	err := h.Admin.DeleteMedia(ctx, id)
	switch {
	case errors.Is(err, admin.ErrNotConfigured):
		writeListingErr(w, err)
	case errors.Is(err, admin.ErrMediaNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "media not found"})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "media delete failed"})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"id": id})
	}
}

// diagnostics reports the persistence picture: which namespace was resolved
// and how many writes are parked awaiting reconciliation.
func (h *AdminHandler) diagnostics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	mode := "local-only"
	if h.Gateway != nil {
		mode = "postgres"
	}
	pending := 0
	if h.Outbox != nil {
		if entries, err := h.Outbox.Pending(ctx); err == nil {
			pending = len(entries)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":           mode,
		"namespace":      h.Namespace,
		"outbox_pending": pending,
	})
}
