package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chatech/widget-api/internal/model"
	"github.com/chatech/widget-api/internal/scraper"
	"github.com/chatech/widget-api/pkg/logger"
)

type tenantAdmin interface {
	Get(ctx context.Context, tenantID string) (*model.Tenant, error)
	List(ctx context.Context) ([]model.Tenant, error)
	Create(ctx context.Context, req *model.CreateTenantRequest) (*model.Tenant, error)
	Update(ctx context.Context, tenantID string, upd model.TenantUpdate) (*model.Tenant, error)
}

type catalogRefresher interface {
	Refresh(ctx context.Context, tenantID, storeURL string) (scraper.Result, error)
}

// AdminHandler serves the authenticated tenant management surface.
type AdminHandler struct {
	tenants   tenantAdmin
	refresher catalogRefresher
	logger    *logger.Logger
}

// NewAdminHandler creates an admin handler. refresher may be nil when
// the scraper is disabled.
func NewAdminHandler(tenants tenantAdmin, refresher catalogRefresher, log *logger.Logger) *AdminHandler {
	return &AdminHandler{tenants: tenants, refresher: refresher, logger: log}
}

// List handles GET /api/admin/clients.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.tenants.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"clients": tenants,
		"total":   len(tenants),
	})
}

// Get handles GET /api/admin/clients/{id}. Returns the full record
// including private fields; this surface is operator-only.
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.tenants.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Create handles POST /api/admin/clients.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	t, err := h.tenants.Create(r.Context(), &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// Update handles PUT /api/admin/clients/{id}. Absent fields keep their
// current values.
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	var upd model.TenantUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	t, err := h.tenants.Update(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type refreshRequest struct {
	StoreURL string `json:"store_url,omitempty"`
}

// Refresh handles POST /api/admin/clients/{id}/refresh. Runs the
// catalog scrape synchronously so the operator sees the outcome.
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "catalog scraper disabled"})
		return
	}

	var req refreshRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}

	res, err := h.refresher.Refresh(r.Context(), chi.URLParam(r, "id"), req.StoreURL)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
