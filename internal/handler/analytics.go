package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chatech/widget-api/internal/model"
	"github.com/chatech/widget-api/pkg/logger"
)

type analyticsProvider interface {
	Summary(ctx context.Context, tenantID string) (*model.Analytics, error)
}

// AnalyticsHandler serves dashboard usage summaries.
type AnalyticsHandler struct {
	analytics analyticsProvider
	logger    *logger.Logger
}

// NewAnalyticsHandler creates an analytics handler.
func NewAnalyticsHandler(analytics analyticsProvider, log *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, logger: log}
}

// Get handles GET /api/dashboard/{tenantId}/analytics.
func (h *AnalyticsHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantId")

	summary, err := h.analytics.Summary(r.Context(), tenantID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
