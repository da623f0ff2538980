package observability

import (
	"time"

	"github.com/medicoord/coordinator-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the coordination service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	coordinationDuration *prometheus.HistogramVec
	responderInvocations *prometheus.CounterVec
	serviceErrors        *prometheus.CounterVec
	cacheHits            *prometheus.CounterVec
	cacheMisses          *prometheus.CounterVec
	tokensUsed           *prometheus.CounterVec
	requestsTotal        *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		coordinationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "medicoord_coordination_duration_seconds",
				Help:    "Duration of operations by name.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		responderInvocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medicoord_responder_invocations_total",
				Help: "Total responder invocations by responder id and outcome.",
			},
			[]string{"responder", "outcome"},
		),
		serviceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medicoord_service_errors_total",
				Help: "Total completion service call failures by caller.",
			},
			[]string{"caller"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medicoord_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medicoord_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		tokensUsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medicoord_llm_tokens_total",
				Help: "Total LLM tokens consumed.",
			},
			[]string{"type"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medicoord_coordinations_total",
				Help: "Total coordination calls by status.",
			},
			[]string{"status"},
		),
	}
}

// RecordDuration records the duration of an operation.
func (m *Metrics) RecordDuration(operation string, d time.Duration) {
	m.coordinationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrResponderInvocation counts one responder run and its outcome.
func (m *Metrics) IncrResponderInvocation(responder, outcome string) {
	m.responderInvocations.WithLabelValues(responder, outcome).Inc()
}

// IncrServiceError increments the completion-failure counter for a caller.
func (m *Metrics) IncrServiceError(caller string) {
	m.serviceErrors.WithLabelValues(caller).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordTokens records prompt and completion token usage.
func (m *Metrics) RecordTokens(prompt, completion int) {
	m.tokensUsed.WithLabelValues("prompt").Add(float64(prompt))
	m.tokensUsed.WithLabelValues("completion").Add(float64(completion))
}

// IncrCoordination increments the coordination counter with a status label.
func (m *Metrics) IncrCoordination(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// GetAgentSnapshot returns a snapshot of responder-related metrics suitable
// for the GET /v1/metrics/agents endpoint.
func (m *Metrics) GetAgentSnapshot() *domain.AgentMetrics {
	// Gather current values from Prometheus counters.
	// Note: Prometheus counters expose cumulative values.
	promptTokens := getCounterValue(m.tokensUsed, "prompt")
	completionTokens := getCounterValue(m.tokensUsed, "completion")
	totalRequests := getCounterValue(m.requestsTotal, "success") +
		getCounterValue(m.requestsTotal, "error")
	errorCount := getCounterValue(m.requestsTotal, "error")
	cacheHits := getCounterValue(m.cacheHits, "inventory")
	cacheMisses := getCounterValue(m.cacheMisses, "inventory")

	totalTokens := promptTokens + completionTokens
	avgTokens := float64(0)
	errorRate := float64(0)
	cacheHitRate := float64(0)

	if totalRequests > 0 {
		avgTokens = totalTokens / totalRequests
		errorRate = errorCount / totalRequests
	}
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	// Estimated upstream cost: ~$3/1M prompt tokens, ~$15/1M completion tokens (sonar-pro)
	estimatedCost := (promptTokens/1_000_000)*3 + (completionTokens/1_000_000)*15

	return &domain.AgentMetrics{
		TotalRequests:       int64(totalRequests),
		ErrorRate:           errorRate,
		AvgTokensPerRequest: avgTokens,
		EstimatedCostUSD:    estimatedCost,
		CacheHitRate:        cacheHitRate,
		Period:              "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
