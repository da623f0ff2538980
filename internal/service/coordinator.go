package service

import (
	"context"
	"errors"
	"time"

	"github.com/medicoord/coordinator-go/internal/domain"
	"github.com/medicoord/coordinator-go/internal/infra/observability"
	"github.com/medicoord/coordinator-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Coordinator sequences one coordination call: classify the request,
// fan out to the selected responders one at a time, aggregate, and log a
// ledger record. There is no state machine beyond this linear sequence;
// a re-invocation re-runs everything from the classifier step.
type Coordinator struct {
	classifier *Classifier
	responders []port.Responder // fixed priority order: supply → clinical → discharge
	ledger     *Ledger
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewCoordinator creates the coordinator. Responders must be passed in the
// fixed invocation order; the ledger is owned by the caller and shared with
// the analytics read side.
func NewCoordinator(
	classifier *Classifier,
	responders []port.Responder,
	ledger *Ledger,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		classifier: classifier,
		responders: responders,
		ledger:     ledger,
		metrics:    metrics,
		logger:     logger,
	}
}

// Coordinate runs the full flow for one request.
//
// A classifier failure is request-fatal: no responder runs, no ledger
// record is written, and the error is returned. A responder failure is
// partial: the remaining responders still run and the overall status
// becomes review_required.
func (c *Coordinator) Coordinate(ctx context.Context, request, patientID string) (*domain.CoordinationResult, error) {
	// Bail out early if the caller already cancelled.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "Coordinator.Coordinate")
	defer span.End()
	span.SetAttributes(attribute.String("patient.id", patientID))

	c.logger.Info("new coordination request",
		zap.String("request", request),
		zap.String("patient_id", patientID),
	)

	// --- Step 1: classify ---
	routing := c.classifier.Classify(ctx, request)
	if routing.Error != "" {
		c.metrics.IncrCoordination("error")
		return nil, &domain.ErrServiceCall{Service: "classifier", Err: errors.New(routing.Error)}
	}

	// --- Step 2: sequential fan-out in fixed order ---
	start := time.Now()

	results := make([]domain.ResponderResult, 0, len(c.responders))
	invoked := make([]domain.ResponderID, 0, len(c.responders))
	for _, responder := range c.responders {
		if !routing.Needs(responder.ID()) {
			continue
		}
		results = append(results, responder.Handle(ctx, patientID, request))
		invoked = append(invoked, responder.ID())
	}

	elapsed := time.Since(start)

	// --- Step 3: aggregate ---
	// Absence is not failure: only invoked responders count.
	status := domain.StatusApproved
	for _, res := range results {
		if !res.OK() {
			status = domain.StatusReviewRequired
			break
		}
	}

	// --- Step 4: ledger append + return ---
	c.ledger.Log(request, invoked, elapsed, status)

	c.metrics.RecordDuration("coordinate", elapsed)
	c.metrics.IncrCoordination("success")

	c.logger.Info("coordination complete",
		zap.String("priority", string(routing.Priority)),
		zap.Int("responders_invoked", len(invoked)),
		zap.String("status", string(status)),
		zap.Duration("elapsed", elapsed),
	)

	return &domain.CoordinationResult{
		ID:             uuid.New().String(),
		Routing:        routing,
		Results:        results,
		Status:         status,
		ElapsedSeconds: elapsed.Seconds(),
		Stats:          c.ledger.Summary(),
	}, nil
}
