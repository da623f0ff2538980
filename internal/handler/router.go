package handler

import (
	"net/http"
	"time"

	"github.com/medicoord/coordinator-go/internal/infra/observability"
	"github.com/medicoord/coordinator-go/internal/infra/resilience"
	"github.com/medicoord/coordinator-go/internal/port"
	"github.com/medicoord/coordinator-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(
	coord *service.Coordinator,
	ledger *service.Ledger,
	tokenSvc *service.TokenService,
	directory port.PatientDirectory,
	inventory port.InventoryProvider,
	bulkhead *resilience.Bulkhead,
	metrics *observability.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 1. Coordination
		// POST /v1/coordinate
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(OperatorAuthMiddleware(tokenSvc, logger))
			r.Post("/coordinate", coordinateHandler(coord, bulkhead, logger))
		})

		// =============================================
		// 2. Analytics
		// GET /v1/analytics/summary
		// GET /v1/analytics/requests
		// =============================================
		r.Get("/analytics/summary", analyticsSummaryHandler(ledger, logger))
		r.Get("/analytics/requests", analyticsRequestsHandler(ledger, logger))

		// =============================================
		// 3. Reference data
		// GET /v1/patients/{patientId}
		// GET /v1/inventory
		// =============================================
		r.Get("/patients/{patientId}", getPatientHandler(directory, logger))
		r.Get("/inventory", getInventoryHandler(inventory, logger))

		// =============================================
		// 4. Agent metrics
		// GET /v1/metrics/agents
		// =============================================
		r.Get("/metrics/agents", agentMetricsHandler(metrics, logger))

		// =============================================
		// 5. Operator auth
		// POST /v1/auth/token
		// =============================================
		r.Post("/auth/token", issueTokenHandler(tokenSvc, logger))
	})

	return r
}

// ============================================================
// Health
// ============================================================

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func agentMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := metrics.GetAgentSnapshot()
		writeJSON(w, http.StatusOK, snapshot)
	}
}
