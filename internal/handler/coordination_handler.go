package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/medicoord/coordinator-go/internal/domain"
	"github.com/medicoord/coordinator-go/internal/infra/resilience"
	"github.com/medicoord/coordinator-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// 1. Coordination — POST /v1/coordinate
// ============================================================

func coordinateHandler(coord *service.Coordinator, bulkhead *resilience.Bulkhead, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/coordinate")
		defer span.End()

		if !bulkhead.TryAcquire() {
			logger.Warn("coordination rejected: too many in-flight requests")
			writeError(w, http.StatusServiceUnavailable, "too many concurrent coordinations, retry later")
			return
		}
		defer bulkhead.Release()

		var req domain.CoordinationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Request) == "" {
			writeError(w, http.StatusBadRequest, "request is required")
			return
		}
		span.SetAttributes(attribute.String("patient.id", req.PatientID))

		result, err := coord.Coordinate(ctx, req.Request, req.PatientID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
