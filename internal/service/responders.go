package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/medicoord/coordinator-go/internal/domain"
	"github.com/medicoord/coordinator-go/internal/infra/observability"
	"github.com/medicoord/coordinator-go/internal/port"

	"go.uber.org/zap"
)

// Output budgets per responder, in tokens.
const (
	supplyMaxTokens    = 400
	clinicalMaxTokens  = 400
	dischargeMaxTokens = 500
)

// defaultCriticalItems is the item list the supply responder reports on
// when the request carries no explicit requisition.
var defaultCriticalItems = []string{
	"blood_o_positive",
	"anesthesia_propofol",
	"sterile_instruments",
}

const inventoryCacheKey = "snapshot"

// ============================================================
// Supply chain responder
// ============================================================

const supplyInstruction = `You are a hospital supply chain analyst.
Given a list of required items and current inventory, determine:
1. If supplies are sufficient
2. What's missing or low
3. Recommendations for ordering

Respond in format:
STATUS: [SUFFICIENT/INSUFFICIENT/CRITICAL]
AVAILABLE: [list items with OK stock]
LOW_STOCK: [list items running low]
MISSING: [list unavailable items]
RECOMMENDATIONS: [brief action items]`

// SupplyChainResponder analyzes requests against the current inventory
// snapshot. The snapshot is read through a small TTL cache so back-to-back
// coordinations do not hammer the provider.
type SupplyChainResponder struct {
	completer     port.Completer
	inventory     port.InventoryProvider
	snapshotCache port.Cache[map[string]int]
	requiredItems []string
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NewSupplyChainResponder creates the supply chain responder.
func NewSupplyChainResponder(
	completer port.Completer,
	inventory port.InventoryProvider,
	snapshotCache port.Cache[map[string]int],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *SupplyChainResponder {
	return &SupplyChainResponder{
		completer:     completer,
		inventory:     inventory,
		snapshotCache: snapshotCache,
		requiredItems: defaultCriticalItems,
		metrics:       metrics,
		logger:        logger,
	}
}

// ID implements port.Responder.
func (r *SupplyChainResponder) ID() domain.ResponderID {
	return domain.ResponderSupplyChain
}

// Handle checks supply availability for the request. The subject id is
// not relevant to supply checks and is ignored.
func (r *SupplyChainResponder) Handle(ctx context.Context, _ string, request string) domain.ResponderResult {
	ctx, span := tracer.Start(ctx, "SupplyChainResponder.Handle")
	defer span.End()

	r.logger.Info("supply chain responder: checking supplies", zap.String("task", request))

	snapshot, ok := r.snapshotCache.Get(inventoryCacheKey)
	if ok {
		r.metrics.IncrCacheHit("inventory")
	} else {
		r.metrics.IncrCacheMiss("inventory")
		var err error
		snapshot, err = r.inventory.CurrentInventory(ctx)
		if err != nil {
			return r.fail(err)
		}
		r.snapshotCache.Set(inventoryCacheKey, snapshot)
	}

	messages := []domain.ChatMessage{
		{Role: "system", Content: supplyInstruction},
		{Role: "user", Content: fmt.Sprintf("Task: %s\n\nRequired items: %s\n\nCurrent inventory:\n%s",
			request,
			strings.Join(r.requiredItems, ", "),
			formatInventory(snapshot),
		)},
	}

	analysis, err := r.completer.Complete(ctx, messages, supplyMaxTokens)
	if err != nil {
		return r.fail(err)
	}

	r.metrics.IncrResponderInvocation(string(r.ID()), "success")
	r.logger.Info("supply chain responder: check complete")

	return domain.ResponderResult{Responder: r.ID(), Analysis: analysis}
}

func (r *SupplyChainResponder) fail(err error) domain.ResponderResult {
	r.logger.Error("supply chain responder failed", zap.Error(err))
	r.metrics.IncrResponderInvocation(string(r.ID()), "error")
	r.metrics.IncrServiceError(string(r.ID()))
	return domain.ResponderResult{Responder: r.ID(), Err: err.Error()}
}

// formatInventory renders the snapshot as stable "- item: N units" lines.
func formatInventory(snapshot map[string]int) string {
	items := make([]string, 0, len(snapshot))
	for item := range snapshot {
		items = append(items, item)
	}
	sort.Strings(items)

	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- %s: %d units\n", item, snapshot[item])
	}
	return strings.TrimRight(b.String(), "\n")
}

// ============================================================
// Clinical safety responder
// ============================================================

const clinicalInstruction = `You are a clinical safety officer.
Analyze proposed treatments for safety issues:
1. Drug interactions
2. Contraindications
3. Allergy risks
4. Protocol compliance

Respond in format:
SAFETY_STATUS: [SAFE/CAUTION/UNSAFE]
INTERACTIONS: [any drug interactions]
CONTRAINDICATIONS: [any issues]
RECOMMENDATIONS: [clinical guidance]`

// ClinicalSafetyResponder validates a proposed treatment against the
// patient's record.
type ClinicalSafetyResponder struct {
	completer port.Completer
	patients  port.PatientDirectory
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewClinicalSafetyResponder creates the clinical safety responder.
func NewClinicalSafetyResponder(
	completer port.Completer,
	patients port.PatientDirectory,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ClinicalSafetyResponder {
	return &ClinicalSafetyResponder{
		completer: completer,
		patients:  patients,
		metrics:   metrics,
		logger:    logger,
	}
}

// ID implements port.Responder.
func (r *ClinicalSafetyResponder) ID() domain.ResponderID {
	return domain.ResponderClinical
}

// Handle checks patient safety for the request, treating the request text
// as the proposed treatment.
func (r *ClinicalSafetyResponder) Handle(ctx context.Context, subjectID, request string) domain.ResponderResult {
	ctx, span := tracer.Start(ctx, "ClinicalSafetyResponder.Handle")
	defer span.End()

	r.logger.Info("clinical responder: checking patient safety",
		zap.String("patient_id", subjectID),
		zap.String("task", request),
	)

	patient, err := r.patients.LookupPatient(ctx, subjectID)
	if err != nil {
		return r.fail(err)
	}

	messages := []domain.ChatMessage{
		{Role: "system", Content: clinicalInstruction},
		{Role: "user", Content: fmt.Sprintf(
			"Patient: %s\nAge: %d\nAllergies: %s\nCurrent medications: %s\nConditions: %s\n\nProposed treatment: %s",
			patient.Name,
			patient.Age,
			orNone(patient.Allergies),
			orNone(patient.Medications),
			orNone(patient.Conditions),
			request,
		)},
	}

	analysis, err := r.completer.Complete(ctx, messages, clinicalMaxTokens)
	if err != nil {
		return r.fail(err)
	}

	r.metrics.IncrResponderInvocation(string(r.ID()), "success")
	r.logger.Info("clinical responder: safety check complete")

	return domain.ResponderResult{Responder: r.ID(), Analysis: analysis}
}

func (r *ClinicalSafetyResponder) fail(err error) domain.ResponderResult {
	r.logger.Error("clinical responder failed", zap.Error(err))
	r.metrics.IncrResponderInvocation(string(r.ID()), "error")
	r.metrics.IncrServiceError(string(r.ID()))
	return domain.ResponderResult{Responder: r.ID(), Err: err.Error()}
}

// orNone joins list fields for prompt interpolation, with "None" standing
// in for an empty list.
func orNone(values []string) string {
	if len(values) == 0 {
		return "None"
	}
	return strings.Join(values, ", ")
}

// ============================================================
// Discharge planning responder
// ============================================================

const dischargeInstruction = `You are a discharge planning coordinator.
Create a comprehensive discharge plan including:
1. Home care arrangements
2. Medication instructions
3. Follow-up appointments
4. Warning signs to watch for

Respond in format:
HOME_CARE: [arrangements needed]
MEDICATIONS: [instructions]
FOLLOW_UP: [appointment schedule]
WARNING_SIGNS: [what to watch for]
TIMELINE: [discharge readiness]`

// DischargePlanningResponder drafts a discharge plan for the subject.
type DischargePlanningResponder struct {
	completer port.Completer
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewDischargePlanningResponder creates the discharge planning responder.
func NewDischargePlanningResponder(
	completer port.Completer,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *DischargePlanningResponder {
	return &DischargePlanningResponder{
		completer: completer,
		metrics:   metrics,
		logger:    logger,
	}
}

// ID implements port.Responder.
func (r *DischargePlanningResponder) ID() domain.ResponderID {
	return domain.ResponderDischarge
}

// Handle creates a discharge plan. Besides the subject id, no extra
// context is interpolated.
func (r *DischargePlanningResponder) Handle(ctx context.Context, subjectID, request string) domain.ResponderResult {
	ctx, span := tracer.Start(ctx, "DischargePlanningResponder.Handle")
	defer span.End()

	r.logger.Info("discharge responder: creating discharge plan",
		zap.String("patient_id", subjectID),
		zap.String("task", request),
	)

	messages := []domain.ChatMessage{
		{Role: "system", Content: dischargeInstruction},
		{Role: "user", Content: fmt.Sprintf("Patient: %s\nCondition: %s\nCreate discharge plan.", subjectID, request)},
	}

	plan, err := r.completer.Complete(ctx, messages, dischargeMaxTokens)
	if err != nil {
		r.logger.Error("discharge responder failed", zap.Error(err))
		r.metrics.IncrResponderInvocation(string(r.ID()), "error")
		r.metrics.IncrServiceError(string(r.ID()))
		return domain.ResponderResult{Responder: r.ID(), Err: err.Error()}
	}

	r.metrics.IncrResponderInvocation(string(r.ID()), "success")
	r.logger.Info("discharge responder: plan created")

	return domain.ResponderResult{Responder: r.ID(), Analysis: plan}
}
