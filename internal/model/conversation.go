package model

import (
	"time"
)

// Conversation represents one visitor session with one tenant. Records
// are created eagerly when a session token is minted and are never
// explicitly closed.
type Conversation struct {
	ID           int64     `json:"id"`
	TenantID     string    `json:"client_id"`
	SessionID    string    `json:"session_id"`
	PageURL      string    `json:"page_url,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	RemoteAddr   string    `json:"remote_addr,omitempty"`
	MessageCount int       `json:"message_count"`
	StartedAt    time.Time `json:"started_at"`
	LastActivity time.Time `json:"last_activity"`
}

// RequestMeta is advisory request metadata recorded on a conversation.
// It is never used for authorization.
type RequestMeta struct {
	PageURL    string
	UserAgent  string
	RemoteAddr string
}
