package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/chatech/widget-api/internal/model"
)

const tenantColumns = `id, client_id, name, email, primary_color, secondary_color,
	logo, logo_type, welcome_message, system_prompt, hours, shipping, returns,
	payments, store_url, status, plan, trial_ends_at, total_conversations,
	total_messages, created_at, updated_at`

func scanTenant(row pgx.Row) (*model.Tenant, error) {
	var t model.Tenant
	err := row.Scan(
		&t.ID, &t.ClientID, &t.Name, &t.Email, &t.PrimaryColor, &t.SecondaryColor,
		&t.Logo, &t.LogoType, &t.WelcomeMessage, &t.SystemPrompt, &t.Hours,
		&t.Shipping, &t.Returns, &t.Payments, &t.StoreURL, &t.Status, &t.Plan,
		&t.TrialEndsAt, &t.TotalConversations, &t.TotalMessages,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan tenant: %w", err)
	}
	return &t, nil
}

// GetTenant retrieves a tenant by client id, regardless of status.
func (s *Store) GetTenant(ctx context.Context, clientID string) (*model.Tenant, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM clients WHERE client_id = $1`, clientID)
	return scanTenant(row)
}

// ListTenants retrieves all tenant records ordered by client id.
func (s *Store) ListTenants(ctx context.Context) ([]model.Tenant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+tenantColumns+` FROM clients ORDER BY client_id`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []model.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, *t)
	}
	return tenants, rows.Err()
}

// CreateTenant inserts a tenant record and returns the stored row.
func (s *Store) CreateTenant(ctx context.Context, t *model.Tenant) (*model.Tenant, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO clients (
			client_id, name, email, primary_color, secondary_color, logo,
			logo_type, welcome_message, system_prompt, hours, shipping,
			returns, payments, store_url, status, plan, trial_ends_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING `+tenantColumns,
		t.ClientID, t.Name, t.Email, t.PrimaryColor, t.SecondaryColor, t.Logo,
		t.LogoType, t.WelcomeMessage, t.SystemPrompt, t.Hours, t.Shipping,
		t.Returns, t.Payments, t.StoreURL, t.Status, t.Plan, t.TrialEndsAt,
	)
	return scanTenant(row)
}

// UpdateTenant merges the non-nil fields of upd into the stored record
// and returns the result. Last writer wins; there is no concurrency
// control on this path.
func (s *Store) UpdateTenant(ctx context.Context, clientID string, upd model.TenantUpdate) (*model.Tenant, error) {
	sets := []string{"updated_at = now()"}
	args := []any{clientID}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Email != nil {
		add("email", *upd.Email)
	}
	if upd.PrimaryColor != nil {
		add("primary_color", *upd.PrimaryColor)
	}
	if upd.SecondaryColor != nil {
		add("secondary_color", *upd.SecondaryColor)
	}
	if upd.Logo != nil {
		add("logo", *upd.Logo)
	}
	if upd.LogoType != nil {
		add("logo_type", *upd.LogoType)
	}
	if upd.WelcomeMessage != nil {
		add("welcome_message", *upd.WelcomeMessage)
	}
	if upd.SystemPrompt != nil {
		add("system_prompt", *upd.SystemPrompt)
	}
	if upd.Hours != nil {
		add("hours", *upd.Hours)
	}
	if upd.Shipping != nil {
		add("shipping", *upd.Shipping)
	}
	if upd.Returns != nil {
		add("returns", *upd.Returns)
	}
	if upd.Payments != nil {
		add("payments", *upd.Payments)
	}
	if upd.StoreURL != nil {
		add("store_url", *upd.StoreURL)
	}
	if upd.Status != nil {
		add("status", string(*upd.Status))
	}
	if upd.Plan != nil {
		add("plan", *upd.Plan)
	}

	query := `UPDATE clients SET ` + strings.Join(sets, ", ") +
		` WHERE client_id = $1 RETURNING ` + tenantColumns
	return scanTenant(s.pool.QueryRow(ctx, query, args...))
}

// BumpTenantUsage increments the tenant-level aggregate counters.
func (s *Store) BumpTenantUsage(ctx context.Context, clientID string, conversations, messages int) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE clients
		SET total_conversations = total_conversations + $2,
		    total_messages = total_messages + $3,
		    updated_at = now()
		WHERE client_id = $1`,
		clientID, conversations, messages)
	if err != nil {
		return fmt.Errorf("bump tenant usage: %w", err)
	}
	return nil
}
