// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ChatTurnsTotal tracks completed chat turns per tenant.
	ChatTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Total chat turns processed",
		},
		[]string{"tenant_id", "status"},
	)

	// LLMRequestDuration tracks completion call duration.
	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Completion API call duration",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"model", "status"},
	)

	// LLMTokensTotal tracks total LLM tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"model", "direction"},
	)

	// LLMCostUSD tracks estimated completion spend.
	LLMCostUSD = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_cost_usd_total",
			Help: "Estimated completion API cost in USD",
		},
		[]string{"model"},
	)

	// RateLimitedTotal tracks requests rejected by the public rate limiter.
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limited_total",
			Help: "Requests rejected by the public rate limiter",
		},
	)

	// ScrapeRunsTotal tracks catalog refresh outcomes.
	ScrapeRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrape_runs_total",
			Help: "Catalog refresh runs",
		},
		[]string{"tenant_id", "status"},
	)

	// ScrapedProducts tracks products found by the last refresh.
	ScrapedProducts = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scraped_products",
			Help: "Products extracted by the last catalog refresh",
		},
		[]string{"tenant_id"},
	)

	// WorkerQueueDepth tracks pending background write tasks.
	WorkerQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Pending background write tasks",
		},
	)

	// WorkerTasksDropped tracks background tasks dropped at submission.
	WorkerTasksDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "worker_tasks_dropped_total",
			Help: "Background tasks dropped because the queue was full",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordCompletion records metrics for one completion API call.
func RecordCompletion(model, status string, duration float64, tokensIn, tokensOut int, costUSD float64) {
	LLMRequestDuration.WithLabelValues(model, status).Observe(duration)
	LLMTokensTotal.WithLabelValues(model, "in").Add(float64(tokensIn))
	LLMTokensTotal.WithLabelValues(model, "out").Add(float64(tokensOut))
	LLMCostUSD.WithLabelValues(model).Add(costUSD)
}
