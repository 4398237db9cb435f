package pipeline

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "support-copilot/internal/common/errors"
	"support-copilot/internal/common/logger"
	"support-copilot/internal/common/validation"
	"support-copilot/internal/copilot/generation"
	"support-copilot/internal/models"
)

// stubGenerator returns a fixed outcome and counts calls.
type stubGenerator struct {
	outcome generation.Outcome
	calls   int32
	last    generation.Request
}

func (s *stubGenerator) Generate(ctx context.Context, req generation.Request) generation.Outcome {
	atomic.AddInt32(&s.calls, 1)
	s.last = req
	return s.outcome
}

func generated(priority models.Priority) generation.Success {
	return generation.Success{Payload: models.GeneratedDraft{
		Summary:        "Customer asks about a late order",
		SuggestedReply: "Thanks for your patience, we are checking the shipment.",
		Extracted: models.GeneratedFields{
			IssueType:  "delivery_delay",
			Priority:   priority,
			NextAction: "Check shipment status",
		},
	}}
}

const validBody = `{
  "ticket": {
    "subject": "Order delayed",
    "messages": [
      {"from": "customer", "text": "Hi, my order #A10293 has not arrived", "ts": "2024-05-01T10:00:00Z"},
      {"from": "agent", "text": "Sorry to hear that"}
    ]
  },
  "tone": "professional"
}`

func newPipeline(t *testing.T, gen generation.Generator) *Pipeline {
	return New(gen, logger.NewTestLogger(t), nil)
}

func TestPipeline_Draft_Success(t *testing.T) {
	gen := &stubGenerator{outcome: generated(models.PriorityHigh)}
	p := newPipeline(t, gen)

	draft, errResp := p.Draft(context.Background(), []byte(validBody))
	require.Nil(t, errResp)
	require.NotNil(t, draft)

	assert.Equal(t, int32(1), gen.calls)
	assert.Equal(t, models.ToneProfessional, gen.last.Tone)
	assert.Equal(t, "Order delayed", gen.last.Subject)
	assert.Len(t, gen.last.Messages, 2)

	assert.Equal(t, "Customer asks about a late order", draft.Summary)
	assert.Equal(t, models.PriorityHigh, draft.Extracted.Priority)
	assert.Equal(t, "A10293", draft.Extracted.OrderID)
	assert.False(t, draft.Degraded())
}

func TestPipeline_Draft_GenerationFailure(t *testing.T) {
	gen := &stubGenerator{outcome: generation.Failure{
		Message: "Incorrect API key provided",
		Reason:  generation.ReasonRequestFailed,
	}}
	p := newPipeline(t, gen)

	draft, errResp := p.Draft(context.Background(), []byte(validBody))
	require.Nil(t, errResp)

	assert.Equal(t, "Ticket: Order delayed", draft.Summary)
	assert.Equal(t, "unknown", draft.Extracted.IssueType)
	assert.Equal(t, models.PriorityMedium, draft.Extracted.Priority)
	assert.Equal(t, "A10293", draft.Extracted.OrderID)
	require.True(t, draft.Degraded())
	assert.Equal(t, string(apperrors.ErrCodeUpstreamError), draft.Meta.Error.Code)
	assert.Equal(t, "Incorrect API key provided", draft.Meta.Error.Message)
}

func TestPipeline_Draft_NotConfigured(t *testing.T) {
	cfg := generation.LoadConfig()
	p := newPipeline(t, generation.NewOpenAIGenerator(cfg, logger.NewTestLogger(t)))

	draft, errResp := p.Draft(context.Background(), []byte(validBody))
	require.Nil(t, errResp)
	require.True(t, draft.Degraded())
	assert.Contains(t, draft.Meta.Error.Message, "not configured")
}

func TestPipeline_Draft_BadRequest(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage string
		wantFields  []string
	}{
		{
			name:        "not json",
			body:        `{"ticket":`,
			wantMessage: "Request body must be valid JSON",
		},
		{
			name:        "empty messages and missing tone",
			body:        `{"ticket":{"subject":"Order delayed","messages":[]}}`,
			wantMessage: "Invalid request body",
			wantFields:  []string{"ticket.messages", "tone"},
		},
		{
			name:        "unknown author and tone",
			body:        `{"ticket":{"subject":"x","messages":[{"from":"system","text":"hi"}]},"tone":"casual"}`,
			wantMessage: "Invalid request body",
			wantFields:  []string{"ticket.messages.0.from", "tone"},
		},
		{
			name:        "array body",
			body:        `[]`,
			wantMessage: "Invalid request body",
			wantFields:  []string{"(root)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{outcome: generated(models.PriorityLow)}
			p := newPipeline(t, gen)

			draft, errResp := p.Draft(context.Background(), []byte(tt.body))

			assert.Nil(t, draft)
			require.NotNil(t, errResp)
			assert.Equal(t, apperrors.ErrCodeBadRequest, errResp.Code)
			assert.Equal(t, tt.wantMessage, errResp.Message)
			assert.Zero(t, atomic.LoadInt32(&gen.calls), "generation must not run")

			if len(tt.wantFields) == 0 {
				return
			}
			details, ok := errResp.Details.(*validation.ValidationResult)
			require.True(t, ok)
			assert.False(t, details.Valid)
			for _, field := range tt.wantFields {
				assert.True(t, details.HasErrors(field), "missing %s in %v", field, details.GetErrorMessages())
			}
		})
	}
}

func TestPipeline_Run_DefectReplacedByFallback(t *testing.T) {
	// A generator that skips output validation can still hand back a blank
	// summary; the composed draft must not escape.
	gen := &stubGenerator{outcome: generation.Success{Payload: models.GeneratedDraft{
		Summary:        "",
		SuggestedReply: "reply",
		Extracted: models.GeneratedFields{
			IssueType:  "x",
			Priority:   models.PriorityLow,
			NextAction: "n",
		},
	}}}
	p := newPipeline(t, gen)

	req := &models.DraftRequest{
		Ticket: models.Ticket{
			Subject:  "No order here",
			Messages: []models.Message{{From: models.RoleCustomer, Text: "hello"}},
		},
		Tone: models.ToneFriendly,
	}

	draft := p.Run(context.Background(), req)

	require.True(t, draft.Degraded())
	assert.Equal(t, "Ticket: No order here", draft.Summary)
	assert.Empty(t, draft.Extracted.OrderID)
	assert.Equal(t, "Generated draft failed validation", draft.Meta.Error.Message)
}

func TestPipeline_DraftRequest(t *testing.T) {
	gen := &stubGenerator{outcome: generated(models.PriorityMedium)}
	p := newPipeline(t, gen)

	_, errResp := p.DraftRequest(context.Background(), &models.DraftRequest{Tone: "firm"})
	require.NotNil(t, errResp)
	assert.Zero(t, gen.calls)

	draft, errResp := p.DraftRequest(context.Background(), &models.DraftRequest{
		Ticket: models.Ticket{
			Subject:  "Refund for #55512",
			Messages: []models.Message{{From: models.RoleCustomer, Text: "I want a refund"}},
		},
		Tone: models.ToneFirm,
	})
	require.Nil(t, errResp)
	assert.Equal(t, "55512", draft.Extracted.OrderID)
	assert.Equal(t, int32(1), gen.calls)
}

func TestPipeline_MockGenerator(t *testing.T) {
	p := newPipeline(t, generation.NewMockGenerator())

	draft, errResp := p.Draft(context.Background(), []byte(validBody))
	require.Nil(t, errResp)
	assert.False(t, draft.Degraded())
	assert.Equal(t, "A10293", draft.Extracted.OrderID)
}
