// Package model defines data structures for the widget backend.
package model

import (
	"time"
)

// TenantStatus is the activation state of a tenant.
type TenantStatus string

const (
	StatusActive   TenantStatus = "active"
	StatusInactive TenantStatus = "inactive"
)

// Tenant is a configured client of the chat widget.
type Tenant struct {
	ID             int64        `json:"-"`
	ClientID       string       `json:"client_id"`
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	PrimaryColor   string       `json:"primary_color"`
	SecondaryColor string       `json:"secondary_color"`
	Logo           string       `json:"logo"`
	LogoType       string       `json:"logo_type"`
	WelcomeMessage string       `json:"welcome_message"`
	SystemPrompt   string       `json:"system_prompt"`
	Hours          string       `json:"hours"`
	Shipping       string       `json:"shipping"`
	Returns        string       `json:"returns"`
	Payments       string       `json:"payments"`
	StoreURL       string       `json:"store_url"`
	Status         TenantStatus `json:"status"`
	Plan           string       `json:"plan"`
	TrialEndsAt    *time.Time   `json:"trial_ends_at,omitempty"`

	TotalConversations int64 `json:"total_conversations"`
	TotalMessages      int64 `json:"total_messages"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublicConfig is the widget-visible subset of a tenant. The private
// system prompt, contact email, store URL and usage counters never
// appear here.
type PublicConfig struct {
	ClientID       string `json:"client_id"`
	Name           string `json:"name"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
	Logo           string `json:"logo"`
	LogoType       string `json:"logo_type"`
	WelcomeMessage string `json:"welcome_message"`
	Hours          string `json:"hours"`
	Shipping       string `json:"shipping"`
	Returns        string `json:"returns"`
	Payments       string `json:"payments"`
}

// Public returns the widget-visible configuration for the tenant.
func (t *Tenant) Public() PublicConfig {
	return PublicConfig{
		ClientID:       t.ClientID,
		Name:           t.Name,
		PrimaryColor:   t.PrimaryColor,
		SecondaryColor: t.SecondaryColor,
		Logo:           t.Logo,
		LogoType:       t.LogoType,
		WelcomeMessage: t.WelcomeMessage,
		Hours:          t.Hours,
		Shipping:       t.Shipping,
		Returns:        t.Returns,
		Payments:       t.Payments,
	}
}

// TenantUpdate is a partial update of a tenant record. Nil fields are
// left untouched; last writer wins.
type TenantUpdate struct {
	Name           *string       `json:"name,omitempty"`
	Email          *string       `json:"email,omitempty"`
	PrimaryColor   *string       `json:"primary_color,omitempty"`
	SecondaryColor *string       `json:"secondary_color,omitempty"`
	Logo           *string       `json:"logo,omitempty"`
	LogoType       *string       `json:"logo_type,omitempty"`
	WelcomeMessage *string       `json:"welcome_message,omitempty"`
	SystemPrompt   *string       `json:"system_prompt,omitempty"`
	Hours          *string       `json:"hours,omitempty"`
	Shipping       *string       `json:"shipping,omitempty"`
	Returns        *string       `json:"returns,omitempty"`
	Payments       *string       `json:"payments,omitempty"`
	StoreURL       *string       `json:"store_url,omitempty"`
	Status         *TenantStatus `json:"status,omitempty"`
	Plan           *string       `json:"plan,omitempty"`
}

// CreateTenantRequest is the admin request to register a tenant.
type CreateTenantRequest struct {
	ClientID       string `json:"client_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
	Logo           string `json:"logo"`
	LogoType       string `json:"logo_type"`
	WelcomeMessage string `json:"welcome_message"`
	SystemPrompt   string `json:"system_prompt"`
	Hours          string `json:"hours"`
	Shipping       string `json:"shipping"`
	Returns        string `json:"returns"`
	Payments       string `json:"payments"`
	StoreURL       string `json:"store_url"`
	Plan           string `json:"plan"`
}
