package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chatech/widget-api/internal/model"
	"github.com/chatech/widget-api/internal/store"
)

// ConversationStore is the persistence surface for conversations and
// messages.
type ConversationStore interface {
	GetConversationBySession(ctx context.Context, clientID, sessionID string) (*model.Conversation, error)
	CreateConversation(ctx context.Context, c *model.Conversation) (*model.Conversation, error)
	RecentMessages(ctx context.Context, conversationID int64, limit int) ([]model.Message, error)
	AppendMessage(ctx context.Context, m *model.Message) error
	BumpTenantUsage(ctx context.Context, clientID string, conversations, messages int) error
}

// ConversationService resolves session tokens to conversation records.
type ConversationService struct {
	store ConversationStore
	now   func() time.Time
}

// NewConversationService creates a conversation service.
func NewConversationService(s ConversationStore) *ConversationService {
	return &ConversationService{store: s, now: time.Now}
}

// Resolve returns the conversation bound to sessionToken, or mints a
// new token and creates the record eagerly so even a zero-message
// session is durably recorded. The second return value reports whether
// a new conversation was created.
func (s *ConversationService) Resolve(ctx context.Context, tenantID, sessionToken string, meta model.RequestMeta) (*model.Conversation, bool, error) {
	if sessionToken != "" {
		conv, err := s.store.GetConversationBySession(ctx, tenantID, sessionToken)
		if err == nil {
			return conv, false, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, false, newError(ErrorInternal, "conversation_lookup_failed", err)
		}
		// Unknown token: fall through and mint a fresh session rather
		// than trusting client-supplied identifiers.
	}

	conv := &model.Conversation{
		TenantID:   tenantID,
		SessionID:  s.mintSessionToken(tenantID),
		PageURL:    meta.PageURL,
		UserAgent:  meta.UserAgent,
		RemoteAddr: meta.RemoteAddr,
	}
	created, err := s.store.CreateConversation(ctx, conv)
	if err != nil {
		return nil, false, newError(ErrorInternal, "conversation_create_failed", err)
	}
	return created, true, nil
}

// History returns the most recent limit messages, oldest first.
func (s *ConversationService) History(ctx context.Context, conversationID int64, limit int) ([]model.Message, error) {
	messages, err := s.store.RecentMessages(ctx, conversationID, limit)
	if err != nil {
		return nil, newError(ErrorInternal, "history_fetch_failed", err)
	}
	return messages, nil
}

// mintSessionToken produces an opaque token of the form
// "<tenant>-<unix millis>-<random suffix>".
func (s *ConversationService) mintSessionToken(tenantID string) string {
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("%s-%d-%s", tenantID, s.now().UnixMilli(), suffix)
}
