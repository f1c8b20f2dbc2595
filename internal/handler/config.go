package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chatech/widget-api/internal/model"
	"github.com/chatech/widget-api/pkg/logger"
)

type configProvider interface {
	PublicConfig(ctx context.Context, tenantID string) (*model.PublicConfig, error)
}

// ConfigHandler serves widget configuration to embedded clients.
type ConfigHandler struct {
	tenants configProvider
	logger  *logger.Logger
}

// NewConfigHandler creates a config handler.
func NewConfigHandler(tenants configProvider, log *logger.Logger) *ConfigHandler {
	return &ConfigHandler{tenants: tenants, logger: log}
}

// Get handles GET /api/config/{tenantId}. The response never includes
// the system prompt or any other private tenant field.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantId")

	cfg, err := h.tenants.PublicConfig(r.Context(), tenantID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}
