package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/medicoord/coordinator-go/internal/domain"
	"github.com/medicoord/coordinator-go/internal/infra/observability"
	"github.com/medicoord/coordinator-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/coordination")

const routingMaxTokens = 500

// routingInstruction enumerates the responders for the model and pins the
// reply format the keyword scan depends on.
const routingInstruction = `You are a hospital coordination system orchestrator.
Analyze requests and determine which agents should be activated:

Available agents:
1. supply_chain_agent - Handles inventory, supplies, equipment
2. clinical_agent - Handles patient safety, drug interactions, protocols
3. discharge_agent - Handles patient discharge planning

Respond in this exact format:
AGENTS_NEEDED: [comma-separated list]
PRIORITY: [HIGH/MEDIUM/LOW]
REASONING: [brief explanation]`

// responderKeywords maps each responder to the literal token searched for
// (case-insensitively) in the classifier reply. The search covers the whole
// reply including the reasoning prose, so a reply that merely mentions a
// responder while arguing against it still selects it. That is the routing
// semantics this system ships with.
var responderKeywords = []struct {
	keyword string
	id      domain.ResponderID
}{
	{"supply_chain", domain.ResponderSupplyChain},
	{"clinical", domain.ResponderClinical},
	{"discharge", domain.ResponderDischarge},
}

// Classifier is the orchestrator's routing step: it asks the completion
// service which responders a request needs and derives a RoutingDecision
// from the free-text reply.
type Classifier struct {
	completer port.Completer
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewClassifier creates the routing classifier.
func NewClassifier(completer port.Completer, metrics *observability.Metrics, logger *zap.Logger) *Classifier {
	return &Classifier{
		completer: completer,
		metrics:   metrics,
		logger:    logger,
	}
}

// Classify derives the routing decision for a request. It never returns a
// Go error: a completion failure yields a decision with no responders,
// priority UNKNOWN and the Error field set, which the coordinator treats
// as request-fatal.
func (c *Classifier) Classify(ctx context.Context, request string) *domain.RoutingDecision {
	ctx, span := tracer.Start(ctx, "Classifier.Classify")
	defer span.End()

	start := time.Now()
	defer func() {
		c.metrics.RecordDuration("classify", time.Since(start))
	}()

	messages := []domain.ChatMessage{
		{Role: "system", Content: routingInstruction},
		{Role: "user", Content: fmt.Sprintf("Request: %s", request)},
	}

	analysis, err := c.completer.Complete(ctx, messages, routingMaxTokens)
	if err != nil {
		c.logger.Error("routing classification failed",
			zap.String("request", request),
			zap.Error(err),
		)
		c.metrics.IncrServiceError("classifier")
		return &domain.RoutingDecision{
			AgentsNeeded: []domain.ResponderID{},
			Priority:     domain.PriorityUnknown,
			Request:      request,
			Error:        err.Error(),
		}
	}

	decision := &domain.RoutingDecision{
		AgentsNeeded: parseAgentsNeeded(analysis),
		Priority:     parsePriority(analysis),
		Analysis:     analysis,
		Request:      request,
	}

	c.logger.Info("routing decision",
		zap.Any("agents_needed", decision.AgentsNeeded),
		zap.String("priority", string(decision.Priority)),
	)

	return decision
}

// parseAgentsNeeded scans the reply for the responder keywords,
// case-insensitively, anywhere in the text.
func parseAgentsNeeded(analysis string) []domain.ResponderID {
	lower := strings.ToLower(analysis)

	needed := make([]domain.ResponderID, 0, len(responderKeywords))
	for _, rk := range responderKeywords {
		if strings.Contains(lower, rk.keyword) {
			needed = append(needed, rk.id)
		}
	}
	return needed
}

// parsePriority is HIGH iff the exact uppercase token "HIGH" appears
// anywhere in the reply, MEDIUM otherwise. UNKNOWN is only reachable
// through the error branch.
func parsePriority(analysis string) domain.Priority {
	if strings.Contains(analysis, "HIGH") {
		return domain.PriorityHigh
	}
	return domain.PriorityMedium
}
