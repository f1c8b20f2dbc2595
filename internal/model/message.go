package model

import (
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one turn in a conversation. Append-only, ordered by
// creation time, never mutated after insertion.
type Message struct {
	ID             int64 `json:"id"`
	ConversationID int64 `json:"conversation_id"`

	Role    Role   `json:"role"`
	Content string `json:"content"`

	// Usage metadata, set for assistant turns only.
	TokensIn  *int     `json:"tokens_in,omitempty"`
	TokensOut *int     `json:"tokens_out,omitempty"`
	LatencyMs *int64   `json:"latency_ms,omitempty"`
	CostUSD   *float64 `json:"cost_usd,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ChatRequest is the widget request for one chat turn.
type ChatRequest struct {
	Message   string `json:"message"`
	ClientID  string `json:"clientId"`
	SessionID string `json:"sessionId,omitempty"`
	PageURL   string `json:"pageUrl,omitempty"`
}

// ChatResponse is the widget response for one chat turn.
type ChatResponse struct {
	BotResponse string `json:"botResponse"`
	SessionID   string `json:"sessionId"`
}

// Analytics summarizes tenant usage over a period compared with the
// prior period of the same length.
type Analytics struct {
	TenantID               string  `json:"client_id"`
	PeriodDays             int     `json:"period_days"`
	Conversations          int64   `json:"conversations"`
	PriorConversations     int64   `json:"prior_conversations"`
	ConversationsTrendPct  float64 `json:"conversations_trend_pct"`
	Messages               int64   `json:"messages"`
	AvgMessagesPerConv     float64 `json:"avg_messages_per_conversation"`
	AvgResponseLatencyMs   float64 `json:"avg_response_latency_ms"`
	EstimatedCostUSD       float64 `json:"estimated_cost_usd"`
}
