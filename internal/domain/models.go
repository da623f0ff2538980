// Package domain holds the core data model for the coordination service.
package domain

import "time"

// ============================================================
// Completion service boundary
// ============================================================

// ChatMessage is a single message in a completion request,
// in the {role, content} shape every OpenAI-compatible API speaks.
type ChatMessage struct {
	Role    string `json:"role"` // "system" | "user" | "assistant"
	Content string `json:"content"`
}

// ============================================================
// Routing
// ============================================================

// ResponderID identifies one of the specialized responders.
type ResponderID string

const (
	ResponderSupplyChain ResponderID = "supply_chain_agent"
	ResponderClinical    ResponderID = "clinical_agent"
	ResponderDischarge   ResponderID = "discharge_agent"
)

// ResponderOrder is the fixed invocation order the coordinator follows.
var ResponderOrder = []ResponderID{
	ResponderSupplyChain,
	ResponderClinical,
	ResponderDischarge,
}

// Priority is the urgency derived from the classifier reply.
type Priority string

const (
	PriorityHigh    Priority = "HIGH"
	PriorityMedium  Priority = "MEDIUM"
	PriorityUnknown Priority = "UNKNOWN"
)

// RoutingDecision is the classifier's output: which responders to run,
// at what priority, and the raw analysis text the decision was derived from.
// Error is set (and AgentsNeeded empty, Priority UNKNOWN) when the
// completion call failed.
type RoutingDecision struct {
	AgentsNeeded []ResponderID `json:"agents_needed"`
	Priority     Priority      `json:"priority"`
	Analysis     string        `json:"analysis,omitempty"`
	Request      string        `json:"original_request"`
	Error        string        `json:"error,omitempty"`
}

// Needs reports whether the decision selected the given responder.
func (r *RoutingDecision) Needs(id ResponderID) bool {
	for _, a := range r.AgentsNeeded {
		if a == id {
			return true
		}
	}
	return false
}

// ============================================================
// Responder results
// ============================================================

// ResponderResult is the outcome of one responder invocation.
// Errors are data here: a failed completion call sets Err and the
// coordinator keeps going.
type ResponderResult struct {
	Responder ResponderID `json:"responder"`
	Analysis  string      `json:"analysis,omitempty"`
	Err       string      `json:"error,omitempty"`
}

// OK reports whether the responder completed without a service failure.
func (r ResponderResult) OK() bool {
	return r.Err == ""
}

// ============================================================
// Coordination
// ============================================================

// CoordinationStatus is the aggregate outcome of one coordination call.
type CoordinationStatus string

const (
	// StatusApproved means every invoked responder returned successfully.
	StatusApproved CoordinationStatus = "approved"
	// StatusReviewRequired means at least one invoked responder failed.
	StatusReviewRequired CoordinationStatus = "review_required"
)

// CoordinationRequest is the inbound payload for POST /v1/coordinate.
type CoordinationRequest struct {
	Request   string `json:"request"`
	PatientID string `json:"patient_id,omitempty"`
}

// CoordinationResult is the composite outcome returned to the caller:
// the routing decision, every responder's output, the overall status and
// the session statistics as of this call.
type CoordinationResult struct {
	ID             string             `json:"id"`
	Routing        *RoutingDecision   `json:"routing"`
	Results        []ResponderResult  `json:"results"`
	Status         CoordinationStatus `json:"status"`
	ElapsedSeconds float64            `json:"elapsed_seconds"`
	Stats          *SummaryStats      `json:"metrics"`
}

// ============================================================
// Metrics ledger
// ============================================================

// MetricsRecord is one append-only ledger entry, written exactly once per
// coordination call. TimeSavedMinutes and CostSavedUSD are derived from the
// responder set via fixed industry-average tables, not measured effects.
type MetricsRecord struct {
	ID               string             `json:"id"`
	Timestamp        time.Time          `json:"timestamp"`
	RequestLabel     string             `json:"request_type"`
	RespondersUsed   []ResponderID      `json:"agents_used"`
	ElapsedSeconds   float64            `json:"response_time"`
	Status           CoordinationStatus `json:"status"`
	TimeSavedMinutes float64            `json:"time_saved"`
	CostSavedUSD     float64            `json:"cost_saved"`
}

// SummaryStats are derived fresh from the full ledger on every query.
// Daily and annual figures are linear extrapolations over process uptime.
type SummaryStats struct {
	TotalRequests         int     `json:"total_requests"`
	AvgResponseSeconds    float64 `json:"avg_response_time"`
	TotalTimeSavedMinutes float64 `json:"total_time_saved_minutes"`
	TotalTimeSavedHours   float64 `json:"total_time_saved_hours"`
	TotalCostSavedUSD     float64 `json:"total_cost_saved"`
	DailyCostSavedUSD     float64 `json:"daily_cost_saved"`
	AnnualProjectionUSD   float64 `json:"annual_projection"`
	UptimeHours           float64 `json:"uptime_hours"`
}

// ============================================================
// Static reference data
// ============================================================

// PatientRecord is a read-only patient entry from the directory.
// Unknown ids resolve to an all-empty record with Name "Unknown".
type PatientRecord struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Age         int      `json:"age" yaml:"age"`
	Allergies   []string `json:"allergies" yaml:"allergies"`
	Medications []string `json:"current_medications" yaml:"current_medications"`
	Conditions  []string `json:"conditions" yaml:"conditions"`
}

// ============================================================
// Operator auth
// ============================================================

// TokenRequest exchanges the shared operator key for an access token.
type TokenRequest struct {
	OperatorKey string `json:"operator_key"`
}

// TokenResponse carries a signed JWT and its lifetime in seconds.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ============================================================
// Observability snapshot
// ============================================================

// AgentMetrics is the snapshot served by GET /v1/metrics/agents,
// read back from the Prometheus counters.
type AgentMetrics struct {
	TotalRequests       int64   `json:"total_requests"`
	ErrorRate           float64 `json:"error_rate"`
	AvgTokensPerRequest float64 `json:"avg_tokens_per_request"`
	EstimatedCostUSD    float64 `json:"estimated_cost_usd"`
	CacheHitRate        float64 `json:"cache_hit_rate"`
	Period              string  `json:"period"`
}
