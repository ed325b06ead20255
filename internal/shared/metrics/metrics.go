package metrics

import (
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ai-resume-saas/internal/shared/telemetry"
)

var (
	analysisTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_analysis_total",
		Help: "Resume analyses by outcome",
	}, []string{"outcome"})

	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "resume_analysis_duration_seconds",
		Help:    "End-to-end resume analysis duration",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 45, 60},
	})

	enrichmentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_enrichment_items_total",
		Help: "Per-skill enrichment results",
	}, []string{"outcome"})

	llmCallTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_calls_total",
		Help: "Calls to the reasoning provider by outcome",
	}, []string{"provider", "outcome"})

	llmCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "llm_call_duration_seconds",
		Help:    "Reasoning provider call latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	rateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rate_limited_requests_total",
		Help: "Requests rejected by the per-identity limiter",
	})

	panicsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "http_panics_total",
		Help: "Handler panics recovered into a 500",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status_code"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Analysis outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid_input"
	OutcomeNotFound    = "not_found"
	OutcomeMalformed   = "malformed_output"
	OutcomeUpstream    = "upstream_unavailable"
	OutcomeDependency  = "dependency_unavailable"
	OutcomePlaceholder = "placeholder"
	OutcomeError       = "error"
)

// IncAnalysis counts a finished analysis by outcome.
func IncAnalysis(outcome string) {
	analysisTotal.WithLabelValues(outcome).Inc()
}

// ObserveAnalysisDuration records the end-to-end duration of an analysis.
func ObserveAnalysisDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	analysisDuration.Observe(d.Seconds())
}

// IncEnrichment counts a single enrichment item.
func IncEnrichment(outcome string) {
	enrichmentTotal.WithLabelValues(outcome).Inc()
}

// ObserveLLMCall records one provider call.
func ObserveLLMCall(provider, outcome string, d time.Duration) {
	llmCallTotal.WithLabelValues(provider, outcome).Inc()
	llmCallDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// IncRateLimited counts a rejected request.
func IncRateLimited() {
	rateLimitedTotal.Inc()
}

// IncPanic counts a recovered handler panic.
func IncPanic() {
	panicsTotal.Inc()
}

// RegisterDBStats exports database/sql pool stats for db under name.
// Registering the same name twice is a no-op.
func RegisterDBStats(db *sql.DB, name string) {
	err := prometheus.Register(collectors.NewDBStatsCollector(db, name))
	var already prometheus.AlreadyRegisteredError
	if err != nil && !errors.As(err, &already) {
		telemetry.Warn("metrics.db_stats_register_failed", map[string]any{"pool": name, "err": err})
	}
}

// HTTP records per-route request counts and latency.
func HTTP() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequests.WithLabelValues(c.Request.Method, path, status).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
