package service

import (
	"context"
	"time"

	"github.com/chatech/widget-api/internal/model"
)

const analyticsPeriodDays = 30

// AnalyticsStore aggregates usage from the datastore.
type AnalyticsStore interface {
	TenantAnalytics(ctx context.Context, clientID string, since, priorSince time.Time) (*model.Analytics, error)
}

// AnalyticsService produces dashboard usage summaries.
type AnalyticsService struct {
	store   AnalyticsStore
	tenants tenantResolver
	now     func() time.Time
}

// NewAnalyticsService creates an analytics service.
func NewAnalyticsService(s AnalyticsStore, tenants tenantResolver) *AnalyticsService {
	return &AnalyticsService{store: s, tenants: tenants, now: time.Now}
}

// Summary returns usage for the last 30 days with a trend against the
// prior 30 days. Missing and inactive tenants report not found, the
// same as the config and chat surfaces.
func (s *AnalyticsService) Summary(ctx context.Context, tenantID string) (*model.Analytics, error) {
	if !tenantIDPattern.MatchString(tenantID) {
		return nil, newError(ErrorInvalidInput, "malformed_tenant_id", nil)
	}
	if _, err := s.tenants.Lookup(ctx, tenantID); err != nil {
		return nil, err
	}

	now := s.now()
	since := now.AddDate(0, 0, -analyticsPeriodDays)
	priorSince := now.AddDate(0, 0, -2*analyticsPeriodDays)

	a, err := s.store.TenantAnalytics(ctx, tenantID, since, priorSince)
	if err != nil {
		return nil, newError(ErrorInternal, "analytics_failed", err)
	}
	a.PeriodDays = analyticsPeriodDays
	return a, nil
}
