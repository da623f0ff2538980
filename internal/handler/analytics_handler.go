package handler

import (
	"net/http"

	"github.com/medicoord/coordinator-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// 2. Analytics
// ============================================================

func analyticsSummaryHandler(ledger *service.Ledger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/analytics/summary")
		defer span.End()

		writeJSON(w, http.StatusOK, ledger.Summary())
	}
}

func analyticsRequestsHandler(ledger *service.Ledger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/analytics/requests")
		defer span.End()

		limit := parseLimit(r, 20)
		records := ledger.Recent(limit)
		writeJSON(w, http.StatusOK, map[string]any{"requests": records})
	}
}
