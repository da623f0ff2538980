package handler

import (
	"net/http"

	"github.com/medicoord/coordinator-go/internal/port"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// 3. Reference data
// ============================================================

func getPatientHandler(directory port.PatientDirectory, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/patients/{patientId}")
		defer span.End()

		patientID := chi.URLParam(r, "patientId")
		if patientID == "" {
			writeError(w, http.StatusBadRequest, "patientId is required")
			return
		}
		span.SetAttributes(attribute.String("patient.id", patientID))

		record, err := directory.LookupPatient(ctx, patientID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

func getInventoryHandler(inventory port.InventoryProvider, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/inventory")
		defer span.End()

		snapshot, err := inventory.CurrentInventory(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"inventory": snapshot})
	}
}
