package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-copilot/internal/copilot/generation"
	"support-copilot/internal/copilot/schema"
	"support-copilot/internal/models"
)

func success() generation.Success {
	return generation.Success{Payload: models.GeneratedDraft{
		Summary:        "Late delivery",
		SuggestedReply: "We're checking with the courier.",
		Extracted: models.GeneratedFields{
			IssueType:  "delivery_delay",
			Priority:   models.PriorityHigh,
			NextAction: "Contact the courier",
		},
	}}
}

func TestCompose_Success(t *testing.T) {
	t.Run("order id overlays the model output", func(t *testing.T) {
		result := Compose(success(), "Order delayed", "A10293")

		assert.Equal(t, "Late delivery", result.Summary)
		assert.Equal(t, "A10293", result.Extracted.OrderID)
		assert.Equal(t, models.PriorityHigh, result.Extracted.Priority)
		assert.Nil(t, result.Meta)
		assert.False(t, result.Degraded())
		assert.True(t, schema.ValidateDraft(result).Valid)
	})

	t.Run("absent order id stays absent", func(t *testing.T) {
		result := Compose(success(), "Question", "")
		assert.Empty(t, result.Extracted.OrderID)
		assert.True(t, schema.ValidateDraft(result).Valid)
	})
}

func TestCompose_Failure(t *testing.T) {
	failure := generation.Failure{Message: "Incorrect API key provided", Reason: generation.ReasonRequestFailed}

	result := Compose(failure, "Order delayed", "A10293")

	assert.Equal(t, "Ticket: Order delayed", result.Summary)
	assert.Equal(t, FallbackReply, result.SuggestedReply)
	assert.Equal(t, "unknown", result.Extracted.IssueType)
	assert.Equal(t, models.PriorityMedium, result.Extracted.Priority)
	assert.Equal(t, FallbackNextAction, result.Extracted.NextAction)
	assert.Equal(t, "A10293", result.Extracted.OrderID)

	require.True(t, result.Degraded())
	assert.Equal(t, "UPSTREAM_ERROR", result.Meta.Error.Code)
	assert.Equal(t, "Incorrect API key provided", result.Meta.Error.Message)
	assert.Nil(t, result.Meta.Error.Details)
}

func TestFallback_AlwaysResponseValid(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		orderID string
		message string
	}{
		{name: "with order id", subject: "Order delayed", orderID: "A10293", message: "boom"},
		{name: "without order id", subject: "Hello", message: "boom"},
		{name: "empty message uses generic text", subject: "Hello"},
		{name: "empty subject", subject: "", message: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Fallback(tt.subject, tt.orderID, tt.message)
			validation := schema.ValidateDraft(result)
			assert.True(t, validation.Valid, validation.GetErrorMessages())
			assert.NotEmpty(t, result.Meta.Error.Message)
		})
	}
}
