// Package pipeline runs one draft request end to end: validate, extract,
// generate, compose. Transports (HTTP API, web boundary, CLI) are thin
// adapters around Pipeline.Draft.
package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "support-copilot/internal/common/errors"
	"support-copilot/internal/common/logger"
	"support-copilot/internal/common/metrics"
	"support-copilot/internal/common/observability"
	"support-copilot/internal/common/validation"
	"support-copilot/internal/copilot/composer"
	"support-copilot/internal/copilot/extractor"
	"support-copilot/internal/copilot/generation"
	"support-copilot/internal/copilot/schema"
	"support-copilot/internal/models"
)

const (
	msgInvalidJSON    = "Request body must be valid JSON"
	msgInvalidRequest = "Invalid request body"
	msgDraftDefect    = "Generated draft failed validation"
)

// Pipeline holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	generator generation.Generator
	logger    logger.Logger
	obs       *observability.Observability
}

func New(generator generation.Generator, log logger.Logger, obs *observability.Observability) *Pipeline {
	if obs == nil {
		obs = observability.NewNoop("copilot")
	}
	return &Pipeline{
		generator: generator,
		logger:    log,
		obs:       obs,
	}
}

// Draft decodes and validates body, then runs the request. A non-nil error
// is always BAD_REQUEST and no draft is produced. Otherwise the result is a
// generated draft or a fallback annotated with _meta.error.
func (p *Pipeline) Draft(ctx context.Context, body []byte) (*models.DraftResult, *apperrors.StandardError) {
	if !json.Valid(body) {
		p.rejected(ctx)
		return nil, apperrors.NewBadRequestError(msgInvalidJSON, nil)
	}

	req, result := schema.ParseRequest(body)
	if !result.Valid {
		p.logger.Warn("draft request rejected", map[string]interface{}{
			"violations": len(result.Errors),
			"fields":     fieldNames(result.Errors),
		})
		p.rejected(ctx)
		return nil, apperrors.NewBadRequestError(msgInvalidRequest, result)
	}

	return p.Run(ctx, req), nil
}

// DraftRequest validates an already decoded request, e.g. one read from YAML
// by the CLI, and runs it.
func (p *Pipeline) DraftRequest(ctx context.Context, req *models.DraftRequest) (*models.DraftResult, *apperrors.StandardError) {
	result := schema.ValidateRequest(req)
	if !result.Valid {
		p.rejected(ctx)
		return nil, apperrors.NewBadRequestError(msgInvalidRequest, result)
	}
	return p.Run(ctx, req), nil
}

// Run executes extraction, generation and composition for a request that
// has already passed validation. It always returns a response-valid draft.
func (p *Pipeline) Run(ctx context.Context, req *models.DraftRequest) *models.DraftResult {
	start := time.Now()
	ctx, span := p.obs.StartSpan(ctx, "copilot.draft",
		attribute.String("tone", string(req.Tone)),
		attribute.Int("messages", len(req.Ticket.Messages)),
	)
	defer span.End()

	orderID, _ := extractor.TicketOrderID(req.Ticket)

	outcome := p.generate(ctx, generation.NewRequest(req))
	draft := composer.Compose(outcome, req.Ticket.Subject, orderID)

	if check := schema.ValidateDraft(draft); !check.Valid {
		p.logger.Error("composed draft failed validation", map[string]interface{}{
			"violations": schema.Summarize(check),
		})
		metrics.DraftValidationDefects.Inc()
		span.SetStatus(codes.Error, msgDraftDefect)
		draft = composer.Fallback(req.Ticket.Subject, orderID, msgDraftDefect)
	}

	outcomeLabel := metrics.OutcomeGenerated
	if draft.Degraded() {
		outcomeLabel = metrics.OutcomeFallback
	}
	metrics.DraftsTotal.WithLabelValues(outcomeLabel).Inc()
	p.obs.RecordDraftProcessed(ctx, outcomeLabel)
	p.obs.RecordDraftDuration(ctx, time.Since(start), outcomeLabel)
	span.SetAttributes(
		attribute.String("outcome", outcomeLabel),
		attribute.Bool("order_id.found", orderID != ""),
	)

	p.logger.Info("draft composed", map[string]interface{}{
		"outcome":      outcomeLabel,
		"orderIdFound": orderID != "",
		"durationMs":   time.Since(start).Milliseconds(),
	})
	return draft
}

func (p *Pipeline) generate(ctx context.Context, req generation.Request) generation.Outcome {
	ctx, span := p.obs.StartSpan(ctx, "copilot.generate")
	defer span.End()

	start := time.Now()
	outcome := p.generator.Generate(ctx, req)
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())

	if failure, ok := outcome.(generation.Failure); ok {
		metrics.GenerationFailures.WithLabelValues(string(failure.Reason)).Inc()
		span.SetAttributes(attribute.String("failure.reason", string(failure.Reason)))
		span.SetStatus(codes.Error, failure.Message)
	}
	return outcome
}

func (p *Pipeline) rejected(ctx context.Context) {
	metrics.BadRequests.Inc()
	metrics.DraftsTotal.WithLabelValues(metrics.OutcomeBadRequest).Inc()
	p.obs.RecordDraftProcessed(ctx, metrics.OutcomeBadRequest)
}

func fieldNames(errs []validation.ValidationError) []string {
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	return fields
}
