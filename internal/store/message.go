package store

import (
	"context"
	"fmt"

	"github.com/chatech/widget-api/internal/model"
)

// RecentMessages returns the most recent limit messages of a
// conversation, oldest first. Older messages stay stored; they are
// simply outside the window.
func (s *Store) RecentMessages(ctx context.Context, conversationID int64, limit int) ([]model.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, conversation_id, role, content, tokens_in, tokens_out,
		       latency_ms, cost_usd, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY id DESC
		LIMIT $2`,
		conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(
			&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.TokensIn,
			&m.TokensOut, &m.LatencyMs, &m.CostUSD, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into creation order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// AppendMessage inserts a message and bumps the owning conversation's
// counters in one transaction.
func (s *Store) AppendMessage(ctx context.Context, m *model.Message) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO messages (conversation_id, role, content, tokens_in,
		                      tokens_out, latency_ms, cost_usd)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		m.ConversationID, m.Role, m.Content, m.TokensIn, m.TokensOut,
		m.LatencyMs, m.CostUSD,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE conversations
		SET message_count = message_count + 1, last_activity_at = now()
		WHERE id = $1`,
		m.ConversationID)
	if err != nil {
		return fmt.Errorf("bump conversation counters: %w", err)
	}

	return tx.Commit(ctx)
}
