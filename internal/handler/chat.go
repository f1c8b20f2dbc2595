package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/chatech/widget-api/internal/model"
	"github.com/chatech/widget-api/internal/service"
	"github.com/chatech/widget-api/pkg/logger"
)

type chatRunner interface {
	Handle(ctx context.Context, in service.ChatInput) (service.ChatOutput, error)
}

// ChatHandler serves the widget chat endpoint.
type ChatHandler struct {
	chat   chatRunner
	logger *logger.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(chat chatRunner, log *logger.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: log}
}

// Post handles POST /api/chat.
func (h *ChatHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	out, err := h.chat.Handle(r.Context(), service.ChatInput{
		TenantID:     req.ClientID,
		Message:      req.Message,
		SessionToken: req.SessionID,
		Meta: model.RequestMeta{
			PageURL:    req.PageURL,
			UserAgent:  r.UserAgent(),
			RemoteAddr: r.RemoteAddr,
		},
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ChatResponse{
		BotResponse: out.Reply,
		SessionID:   out.SessionToken,
	})
}
