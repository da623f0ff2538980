package handler

import (
	"encoding/json"
	"net/http"

	"github.com/medicoord/coordinator-go/internal/domain"
	"github.com/medicoord/coordinator-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// 5. Operator auth
// ============================================================

func issueTokenHandler(tokenSvc *service.TokenService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "POST /v1/auth/token")
		defer span.End()

		if tokenSvc == nil || !tokenSvc.Enabled() {
			writeError(w, http.StatusServiceUnavailable, "operator auth not configured")
			return
		}

		var req domain.TokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := tokenSvc.IssueToken(req.OperatorKey)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
