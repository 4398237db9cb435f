package generation

import (
	"context"
	"fmt"

	"support-copilot/internal/models"
)

// MockGenerator produces a deterministic, schema-valid draft without any
// network access. It is used for local development and the CLI.
type MockGenerator struct{}

var _ Generator = (*MockGenerator)(nil)

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

func (m *MockGenerator) Generate(ctx context.Context, req Request) Outcome {
	select {
	case <-ctx.Done():
		return NewFailure(fmt.Errorf("%w: %v", ErrTimeout, ctx.Err()))
	default:
	}

	return Success{Payload: models.GeneratedDraft{
		Summary:        fmt.Sprintf("[MOCK] %s (%d message(s))", req.Subject, len(req.Messages)),
		SuggestedReply: mockReply(req.Tone),
		Extracted: models.GeneratedFields{
			IssueType:  "general_inquiry",
			Priority:   models.PriorityMedium,
			NextAction: "Review the conversation and respond to the customer",
		},
	}}
}

func mockReply(tone models.Tone) string {
	switch tone {
	case models.ToneFriendly:
		return "[MOCK] Hi there! Thanks so much for reaching out, we're on it."
	case models.ToneFirm:
		return "[MOCK] We have received your request and will respond once it has been reviewed."
	default:
		return "[MOCK] Thank you for contacting us. We are reviewing your request."
	}
}
