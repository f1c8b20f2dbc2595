package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/chatech/widget-api/internal/config"
	"github.com/chatech/widget-api/internal/handler"
	"github.com/chatech/widget-api/internal/llm"
	"github.com/chatech/widget-api/internal/middleware"
	"github.com/chatech/widget-api/internal/scraper"
	"github.com/chatech/widget-api/internal/service"
	"github.com/chatech/widget-api/internal/store"
	"github.com/chatech/widget-api/internal/worker"
	"github.com/chatech/widget-api/pkg/logger"
	"github.com/chatech/widget-api/pkg/tracing"
)

func main() {
	cfg := config.Load()

	var log *logger.Logger
	var err error
	if cfg.Environment == "development" {
		log, err = logger.NewDevelopment()
	} else {
		log, err = logger.New(cfg.LogLevel)
	}
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("starting widget API server",
		zap.String("port", cfg.ServerPort),
		zap.String("environment", cfg.Environment),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "widget-api", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(context.Background(), tp)
		}
	}

	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("datastore connection failed", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}

	llmClient := newLLMClient(cfg, log)

	pool := worker.NewPool(cfg.WorkerQueueSize, cfg.WorkerCount, log)

	cache := service.NewConfigCache(cfg.ConfigCacheTTL)
	tenants := service.NewTenantDirectory(db, cache)
	conversations := service.NewConversationService(db)
	analytics := service.NewAnalyticsService(db, tenants)
	chat := service.NewChatService(tenants, conversations, db, llmClient, pool, service.ChatConfig{
		Model:       cfg.ChatModel,
		Temperature: cfg.ChatTemperature,
		MaxTokens:   cfg.ChatMaxTokens,
		Timeout:     cfg.ChatTimeout,
	}, log)

	var refresher *scraper.Refresher
	var scheduler *cron.Cron
	if cfg.ScraperEnabled {
		fetcher := scraper.NewFetcher(&http.Client{Timeout: cfg.ScraperTimeout})
		refresher = scraper.NewRefresher(tenants, fetcher, log)

		scheduler = cron.New()
		if _, err := scheduler.AddFunc(cfg.ScraperSchedule, func() {
			refresher.RefreshAll(context.Background())
		}); err != nil {
			log.Fatal("invalid scraper schedule", zap.String("schedule", cfg.ScraperSchedule), zap.Error(err))
		}
		scheduler.Start()
		log.Info("catalog scraper scheduled", zap.String("schedule", cfg.ScraperSchedule))
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	limiterStop := make(chan struct{})
	go limiter.PruneLoop(limiterStop)

	router := newRouter(cfg, log, db, tenants, chat, analytics, refresher, llmClient != nil, limiter)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
	}

	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	close(limiterStop)

	// Drain queued writes before closing the pool so finished turns are
	// not lost on a clean restart.
	pool.Shutdown(shutdownCtx)

	log.Info("shutdown complete")
}

// newLLMClient picks the completion provider from configuration. A
// missing credential is not fatal; chat turns fail with a retryable
// error until one is configured.
func newLLMClient(cfg *config.Config, log *logger.Logger) llm.Client {
	apiKey := cfg.OpenAIAPIKey
	if llm.Provider(cfg.LLMProvider) == llm.ProviderAnthropic {
		apiKey = cfg.AnthropicAPIKey
	}
	if apiKey == "" {
		log.Warn("no completion API key configured, chat is disabled",
			zap.String("provider", cfg.LLMProvider))
		return nil
	}

	client, err := llm.NewClient(llm.Provider(cfg.LLMProvider), apiKey)
	if err != nil {
		log.Warn("completion client init failed, chat is disabled", zap.Error(err))
		return nil
	}
	log.Info("completion client ready",
		zap.String("provider", client.Name()),
		zap.String("model", cfg.ChatModel),
	)
	return client
}

func newRouter(
	cfg *config.Config,
	log *logger.Logger,
	db *store.Store,
	tenants *service.TenantDirectory,
	chat *service.ChatService,
	analytics *service.AnalyticsService,
	refresher *scraper.Refresher,
	llmConfigured bool,
	limiter *middleware.RateLimiter,
) http.Handler {
	configHandler := handler.NewConfigHandler(tenants, log)
	chatHandler := handler.NewChatHandler(chat, log)
	healthHandler := handler.NewHealthHandler(db, llmConfigured)
	analyticsHandler := handler.NewAnalyticsHandler(analytics, log)

	var adminHandler *handler.AdminHandler
	if refresher != nil {
		adminHandler = handler.NewAdminHandler(tenants, refresher, log)
	} else {
		adminHandler = handler.NewAdminHandler(tenants, nil, log)
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logging(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Correlation-ID"},
		ExposedHeaders:   []string{"X-Correlation-ID", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		// Public widget surface, rate limited per caller address.
		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Get("/config/{tenantId}", configHandler.Get)
			r.Post("/chat", chatHandler.Post)
		})

		r.Get("/health", healthHandler.Get)
		r.Get("/dashboard/{tenantId}/analytics", analyticsHandler.Get)

		// Operator surface behind JWT auth and a stricter limit.
		r.Route("/admin", func(r chi.Router) {
			r.Use(httprate.LimitByIP(30, time.Minute))
			r.Use(middleware.Auth(cfg.JWTSecret))
			r.Use(middleware.RequireScope(middleware.ScopeAdmin))

			r.Get("/clients", adminHandler.List)
			r.Post("/clients", adminHandler.Create)
			r.Get("/clients/{id}", adminHandler.Get)
			r.Put("/clients/{id}", adminHandler.Update)
			r.Post("/clients/{id}/refresh", adminHandler.Refresh)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
