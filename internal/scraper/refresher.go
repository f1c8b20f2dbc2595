package scraper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/chatech/widget-api/internal/model"
	"github.com/chatech/widget-api/internal/service"
	"github.com/chatech/widget-api/pkg/logger"
	"github.com/chatech/widget-api/pkg/metrics"
)

// Result reports one refresh run.
type Result struct {
	Success      bool `json:"success"`
	Products     int  `json:"products"`
	WithStock    int  `json:"with_stock"`
	WithoutStock int  `json:"without_stock"`
}

// Refresher regenerates tenant system prompts from scraped catalogs.
// It runs out of band and may race concurrent chat requests for the
// same tenant; the last written prompt wins for subsequent calls.
type Refresher struct {
	directory *service.TenantDirectory
	fetcher   *Fetcher
	logger    *logger.Logger
	now       func() time.Time
}

// NewRefresher creates a refresher.
func NewRefresher(directory *service.TenantDirectory, fetcher *Fetcher, log *logger.Logger) *Refresher {
	return &Refresher{
		directory: directory,
		fetcher:   fetcher,
		logger:    log,
		now:       time.Now,
	}
}

// Refresh scrapes one tenant's storefront and rewrites its system
// prompt. A run that extracts zero products fails without mutating the
// tenant, so a good prompt is never overwritten with an empty catalog.
func (r *Refresher) Refresh(ctx context.Context, tenantID, storeURL string) (Result, error) {
	tenant, err := r.directory.Get(ctx, tenantID)
	if err != nil {
		return Result{}, err
	}
	if storeURL == "" {
		storeURL = tenant.StoreURL
	}
	if storeURL == "" {
		return Result{}, &service.Error{Code: service.ErrorInvalidInput, Reason: "missing_store_url"}
	}

	products, err := r.fetcher.FetchListing(ctx, storeURL)
	if err != nil {
		metrics.ScrapeRunsTotal.WithLabelValues(tenantID, "error").Inc()
		return Result{}, &service.Error{Code: service.ErrorScrape, Reason: "listing_fetch_failed", Err: err}
	}
	if len(products) == 0 {
		metrics.ScrapeRunsTotal.WithLabelValues(tenantID, "empty").Inc()
		return Result{}, &service.Error{Code: service.ErrorScrapeEmpty, Reason: "no_products_extracted"}
	}

	prompt := GeneratePrompt(tenant, products, r.now())
	if _, err := r.directory.Update(ctx, tenantID, model.TenantUpdate{SystemPrompt: &prompt}); err != nil {
		metrics.ScrapeRunsTotal.WithLabelValues(tenantID, "error").Inc()
		return Result{}, err
	}

	res := Result{Success: true, Products: len(products)}
	for _, p := range products {
		if p.InStock {
			res.WithStock++
		} else {
			res.WithoutStock++
		}
	}

	metrics.ScrapeRunsTotal.WithLabelValues(tenantID, "ok").Inc()
	metrics.ScrapedProducts.WithLabelValues(tenantID).Set(float64(res.Products))
	r.logger.Info("catalog refreshed",
		zap.String("tenant_id", tenantID),
		zap.Int("products", res.Products),
		zap.Int("with_stock", res.WithStock),
	)
	return res, nil
}

// RefreshAll refreshes every active tenant that has a store URL
// configured. Per-tenant failures are logged and do not stop the run.
func (r *Refresher) RefreshAll(ctx context.Context) {
	tenants, err := r.directory.List(ctx)
	if err != nil {
		r.logger.Error("catalog refresh: tenant list failed", zap.Error(err))
		return
	}

	for i := range tenants {
		t := &tenants[i]
		if t.Status != model.StatusActive || t.StoreURL == "" {
			continue
		}
		if _, err := r.Refresh(ctx, t.ClientID, t.StoreURL); err != nil {
			r.logger.Warn("catalog refresh failed",
				zap.String("tenant_id", t.ClientID),
				zap.Error(err),
			)
		}
	}
}
