// Package handler provides HTTP handlers for the API server.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/chatech/widget-api/internal/service"
	"github.com/chatech/widget-api/pkg/logger"
)

// errorResponse is the error body every endpoint returns.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps coded service errors onto HTTP statuses. Upstream
// completion failures surface as "service busy" so widget users see a
// retryable condition, not provider internals.
func writeError(w http.ResponseWriter, log *logger.Logger, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		log.Error("unhandled error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	switch svcErr.Code {
	case service.ErrorInvalidInput:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: svcErr.Reason, Code: string(svcErr.Code)})
	case service.ErrorNotFound:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found", Code: string(svcErr.Code)})
	case service.ErrorUpstreamUnavailable, service.ErrorUpstreamRateLimited:
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service busy, try again shortly", Code: string(svcErr.Code)})
	case service.ErrorScrapeEmpty, service.ErrorScrape:
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: svcErr.Reason, Code: string(svcErr.Code)})
	default:
		log.Error("service error", zap.String("code", string(svcErr.Code)), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error", Code: string(svcErr.Code)})
	}
}
