package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/medicoord/coordinator-go/internal/domain"
	"github.com/medicoord/coordinator-go/internal/handler"
	"github.com/medicoord/coordinator-go/internal/infra/cache"
	"github.com/medicoord/coordinator-go/internal/infra/observability"
	"github.com/medicoord/coordinator-go/internal/infra/resilience"
	"github.com/medicoord/coordinator-go/internal/infra/staticdata"
	"github.com/medicoord/coordinator-go/internal/port"
	"github.com/medicoord/coordinator-go/internal/service"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// scriptedCompleter returns a fixed reply or error for every completion.
type scriptedCompleter struct {
	reply string
	err   error
}

func (c *scriptedCompleter) Complete(_ context.Context, _ []domain.ChatMessage, _ int) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

type routerOpts struct {
	completer       port.Completer
	operatorKeyHash string
	maxConcurrent   int
}

func newTestRouter(t *testing.T, opts routerOpts) http.Handler {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	completer := opts.completer
	if completer == nil {
		completer = &scriptedCompleter{reply: "AGENTS_NEEDED: none\nPRIORITY: MEDIUM\nREASONING: test"}
	}

	directory, err := staticdata.NewPatientDirectory("")
	if err != nil {
		t.Fatalf("NewPatientDirectory: %v", err)
	}
	inventory, err := staticdata.NewInventory("")
	if err != nil {
		t.Fatalf("NewInventory: %v", err)
	}

	snapshotCache := cache.New[map[string]int](time.Minute)
	t.Cleanup(snapshotCache.Close)

	responders := []port.Responder{
		service.NewSupplyChainResponder(completer, inventory, snapshotCache, metrics, logger),
		service.NewClinicalSafetyResponder(completer, directory, metrics, logger),
		service.NewDischargePlanningResponder(completer, metrics, logger),
	}

	classifier := service.NewClassifier(completer, metrics, logger)
	ledger := service.NewLedger()
	coord := service.NewCoordinator(classifier, responders, ledger, metrics, logger)
	tokenSvc := service.NewTokenService(opts.operatorKeyHash, "test-secret", time.Hour, logger)

	maxConcurrent := opts.maxConcurrent
	if maxConcurrent == 0 {
		maxConcurrent = 10
	}
	bulkhead := resilience.NewBulkhead(maxConcurrent)

	return handler.NewRouter(coord, ledger, tokenSvc, directory, inventory, bulkhead, metrics, logger)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, routerOpts{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	router := newTestRouter(t, routerOpts{})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router := newTestRouter(t, routerOpts{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestCoordinate(t *testing.T) {
	completer := &scriptedCompleter{
		reply: "AGENTS_NEEDED: supply_chain, clinical\nPRIORITY: HIGH\nREASONING: emergency",
	}
	router := newTestRouter(t, routerOpts{completer: completer})

	body, _ := json.Marshal(domain.CoordinationRequest{
		Request:   "Emergency C-section needed",
		PatientID: "patient_123",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/coordinate", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result domain.CoordinationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if result.Status != domain.StatusApproved {
		t.Errorf("expected approved, got %s", result.Status)
	}
	if len(result.Results) != 2 {
		t.Errorf("expected 2 responder results, got %d", len(result.Results))
	}
	if result.Stats == nil || result.Stats.TotalRequests != 1 {
		t.Errorf("expected stats with 1 request, got %+v", result.Stats)
	}
}

func TestCoordinate_EmptyRequest(t *testing.T) {
	router := newTestRouter(t, routerOpts{})

	req := httptest.NewRequest(http.MethodPost, "/v1/coordinate", bytes.NewReader([]byte(`{"request":"  "}`)))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCoordinate_ClassifierFailure(t *testing.T) {
	completer := &scriptedCompleter{err: context.DeadlineExceeded}
	router := newTestRouter(t, routerOpts{completer: completer})

	body, _ := json.Marshal(domain.CoordinationRequest{Request: "anything"})
	req := httptest.NewRequest(http.MethodPost, "/v1/coordinate", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAnalyticsSummary(t *testing.T) {
	completer := &scriptedCompleter{
		reply: "AGENTS_NEEDED: discharge\nPRIORITY: MEDIUM\nREASONING: routine",
	}
	router := newTestRouter(t, routerOpts{completer: completer})

	body, _ := json.Marshal(domain.CoordinationRequest{Request: "Discharge planning for room 302", PatientID: "patient_302"})
	req := httptest.NewRequest(http.MethodPost, "/v1/coordinate", bytes.NewReader(body))
	router.ServeHTTP(httptest.NewRecorder(), req)

	sumReq := httptest.NewRequest(http.MethodGet, "/v1/analytics/summary", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, sumReq)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats domain.SummaryStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decoding summary: %v", err)
	}
	if stats.TotalRequests != 1 {
		t.Errorf("expected 1 request, got %d", stats.TotalRequests)
	}
	if stats.TotalTimeSavedMinutes != 120 {
		t.Errorf("expected 120 minutes saved, got %v", stats.TotalTimeSavedMinutes)
	}
}

func TestAnalyticsRequests_Limit(t *testing.T) {
	completer := &scriptedCompleter{
		reply: "AGENTS_NEEDED: clinical\nPRIORITY: MEDIUM\nREASONING: check",
	}
	router := newTestRouter(t, routerOpts{completer: completer})

	for i := 0; i < 3; i++ {
		body, _ := json.Marshal(domain.CoordinationRequest{Request: "Medication check", PatientID: "patient_123"})
		req := httptest.NewRequest(http.MethodPost, "/v1/coordinate", bytes.NewReader(body))
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/analytics/requests?limit=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Requests []domain.MetricsRecord `json:"requests"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding requests: %v", err)
	}
	if len(resp.Requests) != 2 {
		t.Errorf("expected 2 records, got %d", len(resp.Requests))
	}
}

func TestGetPatient(t *testing.T) {
	router := newTestRouter(t, routerOpts{})

	req := httptest.NewRequest(http.MethodGet, "/v1/patients/patient_123", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var record domain.PatientRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("decoding record: %v", err)
	}
	if record.Name != "Jane Doe" {
		t.Errorf("expected Jane Doe, got %q", record.Name)
	}
}

func TestGetPatient_Unknown(t *testing.T) {
	router := newTestRouter(t, routerOpts{})

	req := httptest.NewRequest(http.MethodGet, "/v1/patients/patient_999", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var record domain.PatientRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("decoding record: %v", err)
	}
	if record.Name != "Unknown" {
		t.Errorf("expected Unknown, got %q", record.Name)
	}
}

func TestGetInventory(t *testing.T) {
	router := newTestRouter(t, routerOpts{})

	req := httptest.NewRequest(http.MethodGet, "/v1/inventory", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Inventory map[string]int `json:"inventory"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding inventory: %v", err)
	}
	if resp.Inventory["blood_o_positive"] != 50 {
		t.Errorf("expected 50 units of blood_o_positive, got %d", resp.Inventory["blood_o_positive"])
	}
}

func TestAgentMetrics(t *testing.T) {
	router := newTestRouter(t, routerOpts{})

	req := httptest.NewRequest(http.MethodGet, "/v1/metrics/agents", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthToken_Disabled(t *testing.T) {
	router := newTestRouter(t, routerOpts{})

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/token", bytes.NewReader([]byte(`{"operator_key":"x"}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestCoordinate_AuthEnabled(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("operator-key"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("generating hash: %v", err)
	}
	router := newTestRouter(t, routerOpts{operatorKeyHash: string(hash)})

	// Without a token the endpoint is rejected.
	body, _ := json.Marshal(domain.CoordinationRequest{Request: "anything"})
	req := httptest.NewRequest(http.MethodPost, "/v1/coordinate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	// Exchange the operator key for a token.
	tokenReq := httptest.NewRequest(http.MethodPost, "/v1/auth/token", bytes.NewReader([]byte(`{"operator_key":"operator-key"}`)))
	tokenRec := httptest.NewRecorder()
	router.ServeHTTP(tokenRec, tokenReq)
	if tokenRec.Code != http.StatusOK {
		t.Fatalf("expected 200 issuing token, got %d: %s", tokenRec.Code, tokenRec.Body.String())
	}
	var tokenResp domain.TokenResponse
	if err := json.Unmarshal(tokenRec.Body.Bytes(), &tokenResp); err != nil {
		t.Fatalf("decoding token: %v", err)
	}

	// With the token the coordination passes auth.
	req = httptest.NewRequest(http.MethodPost, "/v1/coordinate", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+tokenResp.AccessToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthToken_WrongKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("operator-key"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("generating hash: %v", err)
	}
	router := newTestRouter(t, routerOpts{operatorKeyHash: string(hash)})

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/token", bytes.NewReader([]byte(`{"operator_key":"wrong"}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}
