package store

import (
	"context"
	"fmt"
	"time"

	"github.com/chatech/widget-api/internal/model"
)

// TenantAnalytics aggregates usage for the window [since, now) and the
// prior window of the same length ending at since.
func (s *Store) TenantAnalytics(ctx context.Context, clientID string, since, priorSince time.Time) (*model.Analytics, error) {
	a := &model.Analytics{TenantID: clientID}

	err := s.pool.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE started_at >= $2),
			count(*) FILTER (WHERE started_at >= $3 AND started_at < $2)
		FROM conversations
		WHERE client_id = $1`,
		clientID, since, priorSince,
	).Scan(&a.Conversations, &a.PriorConversations)
	if err != nil {
		return nil, fmt.Errorf("conversation counts: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		SELECT
			count(m.id),
			coalesce(avg(m.latency_ms) FILTER (WHERE m.role = 'assistant'), 0),
			coalesce(sum(m.cost_usd), 0)
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE c.client_id = $1 AND m.created_at >= $2`,
		clientID, since,
	).Scan(&a.Messages, &a.AvgResponseLatencyMs, &a.EstimatedCostUSD)
	if err != nil {
		return nil, fmt.Errorf("message aggregates: %w", err)
	}

	if a.Conversations > 0 {
		a.AvgMessagesPerConv = float64(a.Messages) / float64(a.Conversations)
	}
	if a.PriorConversations > 0 {
		a.ConversationsTrendPct = 100 * float64(a.Conversations-a.PriorConversations) / float64(a.PriorConversations)
	}
	return a, nil
}
