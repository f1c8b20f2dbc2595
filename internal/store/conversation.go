package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/chatech/widget-api/internal/model"
)

const conversationColumns = `id, client_id, session_id, page_url, user_agent,
	remote_addr, message_count, started_at, last_activity_at`

func scanConversation(row pgx.Row) (*model.Conversation, error) {
	var c model.Conversation
	err := row.Scan(
		&c.ID, &c.TenantID, &c.SessionID, &c.PageURL, &c.UserAgent,
		&c.RemoteAddr, &c.MessageCount, &c.StartedAt, &c.LastActivity,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan conversation: %w", err)
	}
	return &c, nil
}

// GetConversationBySession retrieves the conversation bound to a
// session token for the given tenant.
func (s *Store) GetConversationBySession(ctx context.Context, clientID, sessionID string) (*model.Conversation, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+conversationColumns+` FROM conversations
		 WHERE client_id = $1 AND session_id = $2`,
		clientID, sessionID)
	return scanConversation(row)
}

// CreateConversation inserts a conversation record eagerly, before any
// message exists for it.
func (s *Store) CreateConversation(ctx context.Context, c *model.Conversation) (*model.Conversation, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO conversations (client_id, session_id, page_url, user_agent, remote_addr)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+conversationColumns,
		c.TenantID, c.SessionID, c.PageURL, c.UserAgent, c.RemoteAddr)
	return scanConversation(row)
}
