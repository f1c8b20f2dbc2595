package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"time"

	"github.com/chatech/widget-api/internal/model"
	"github.com/chatech/widget-api/internal/store"
)

// tenantIDPattern restricts tenant identifiers before any query runs.
var tenantIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{1,63}$`)

// TenantStore is the persistence surface the directory needs.
type TenantStore interface {
	GetTenant(ctx context.Context, clientID string) (*model.Tenant, error)
	ListTenants(ctx context.Context) ([]model.Tenant, error)
	CreateTenant(ctx context.Context, t *model.Tenant) (*model.Tenant, error)
	UpdateTenant(ctx context.Context, clientID string, upd model.TenantUpdate) (*model.Tenant, error)
}

// TenantDirectory resolves tenant identifiers to configuration records.
type TenantDirectory struct {
	store TenantStore
	cache *ConfigCache
}

// NewTenantDirectory creates a directory over the given store. cache
// may be nil to disable config memoization.
func NewTenantDirectory(s TenantStore, cache *ConfigCache) *TenantDirectory {
	return &TenantDirectory{store: s, cache: cache}
}

// Lookup resolves an active tenant. Missing and inactive tenants are
// deliberately indistinguishable to callers.
func (d *TenantDirectory) Lookup(ctx context.Context, tenantID string) (*model.Tenant, error) {
	if !tenantIDPattern.MatchString(tenantID) {
		return nil, newError(ErrorInvalidInput, "malformed_tenant_id", nil)
	}

	t, err := d.store.GetTenant(ctx, tenantID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(ErrorNotFound, "tenant_not_found", nil)
	}
	if err != nil {
		return nil, newError(ErrorInternal, "tenant_lookup_failed", err)
	}
	if t.Status != model.StatusActive {
		return nil, newError(ErrorNotFound, "tenant_not_found", nil)
	}
	return t, nil
}

// PublicConfig returns the widget-visible configuration, memoized for
// one cache TTL. Staleness up to one TTL after an admin update is an
// accepted tradeoff.
func (d *TenantDirectory) PublicConfig(ctx context.Context, tenantID string) (*model.PublicConfig, error) {
	if d.cache != nil {
		if cfg, ok := d.cache.Get(tenantID); ok {
			return cfg, nil
		}
	}

	t, err := d.Lookup(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	cfg := t.Public()
	if d.cache != nil {
		d.cache.Put(tenantID, &cfg)
	}
	return &cfg, nil
}

// Get returns a tenant record regardless of status. Admin read path;
// bypasses the cache.
func (d *TenantDirectory) Get(ctx context.Context, tenantID string) (*model.Tenant, error) {
	if !tenantIDPattern.MatchString(tenantID) {
		return nil, newError(ErrorInvalidInput, "malformed_tenant_id", nil)
	}
	t, err := d.store.GetTenant(ctx, tenantID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(ErrorNotFound, "tenant_not_found", nil)
	}
	if err != nil {
		return nil, newError(ErrorInternal, "tenant_lookup_failed", err)
	}
	return t, nil
}

// List returns all tenant records. Admin read path.
func (d *TenantDirectory) List(ctx context.Context) ([]model.Tenant, error) {
	tenants, err := d.store.ListTenants(ctx)
	if err != nil {
		return nil, newError(ErrorInternal, "tenant_list_failed", err)
	}
	return tenants, nil
}

// Create registers a new tenant record.
func (d *TenantDirectory) Create(ctx context.Context, req *model.CreateTenantRequest) (*model.Tenant, error) {
	if !tenantIDPattern.MatchString(req.ClientID) {
		return nil, newError(ErrorInvalidInput, "malformed_tenant_id", nil)
	}
	if req.Name == "" {
		return nil, newError(ErrorInvalidInput, "missing_name", nil)
	}

	t := &model.Tenant{
		ClientID:       req.ClientID,
		Name:           req.Name,
		Email:          req.Email,
		PrimaryColor:   defaultString(req.PrimaryColor, "#667eea"),
		SecondaryColor: defaultString(req.SecondaryColor, "#764ba2"),
		Logo:           defaultString(req.Logo, "💬"),
		LogoType:       defaultString(req.LogoType, "emoji"),
		WelcomeMessage: req.WelcomeMessage,
		SystemPrompt:   req.SystemPrompt,
		Hours:          req.Hours,
		Shipping:       req.Shipping,
		Returns:        req.Returns,
		Payments:       req.Payments,
		StoreURL:       req.StoreURL,
		Status:         model.StatusActive,
		Plan:           defaultString(req.Plan, "professional"),
	}

	created, err := d.store.CreateTenant(ctx, t)
	if err != nil {
		return nil, newError(ErrorInternal, "tenant_create_failed", err)
	}
	return created, nil
}

// Update merges partial fields into a tenant record. Last writer wins;
// the config cache is not invalidated.
func (d *TenantDirectory) Update(ctx context.Context, tenantID string, upd model.TenantUpdate) (*model.Tenant, error) {
	if !tenantIDPattern.MatchString(tenantID) {
		return nil, newError(ErrorInvalidInput, "malformed_tenant_id", nil)
	}
	t, err := d.store.UpdateTenant(ctx, tenantID, upd)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(ErrorNotFound, "tenant_not_found", nil)
	}
	if err != nil {
		return nil, newError(ErrorInternal, "tenant_update_failed", err)
	}
	return t, nil
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// ConfigCache memoizes public tenant configuration with a fixed TTL.
// Expiry is time-based only; there is no size bound, which is
// acceptable while tenant cardinality stays small.
type ConfigCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	cfg       *model.PublicConfig
	expiresAt time.Time
}

// NewConfigCache creates a cache with the given TTL.
func NewConfigCache(ttl time.Duration) *ConfigCache {
	return &ConfigCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a cached config, or a miss if absent or expired.
func (c *ConfigCache) Get(tenantID string) (*model.PublicConfig, bool) {
	c.mu.RLock()
	entry, ok := c.entries[tenantID]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.cfg, true
}

// Put stores a config for one TTL window.
func (c *ConfigCache) Put(tenantID string, cfg *model.PublicConfig) {
	c.mu.Lock()
	c.entries[tenantID] = cacheEntry{cfg: cfg, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}
