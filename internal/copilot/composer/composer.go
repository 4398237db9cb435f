// Package composer builds the final DraftResult from a generation outcome and
// the extracted order id. It performs no I/O.
package composer

import (
	apperrors "support-copilot/internal/common/errors"
	"support-copilot/internal/copilot/generation"
	"support-copilot/internal/models"
)

const (
	FallbackReply      = "Thanks for reaching out. We're looking into this and will follow up with an update shortly."
	FallbackIssueType  = "unknown"
	FallbackPriority   = models.PriorityMedium
	FallbackNextAction = "Request additional details from the customer"
)

// Compose merges a generation outcome with the order id found by the
// extractor. orderID is authoritative on both paths; an empty orderID means
// none was found and the field stays absent.
func Compose(outcome generation.Outcome, subject, orderID string) *models.DraftResult {
	switch o := outcome.(type) {
	case generation.Success:
		return fromSuccess(o, orderID)
	case generation.Failure:
		return Fallback(subject, orderID, o.Message)
	default:
		return Fallback(subject, orderID, generation.GenericFailureMessage)
	}
}

func fromSuccess(s generation.Success, orderID string) *models.DraftResult {
	return &models.DraftResult{
		Summary:        s.Payload.Summary,
		SuggestedReply: s.Payload.SuggestedReply,
		Extracted: models.ExtractedFields{
			IssueType:  s.Payload.Extracted.IssueType,
			Priority:   s.Payload.Extracted.Priority,
			NextAction: s.Payload.Extracted.NextAction,
			OrderID:    orderID,
		},
	}
}

// Fallback is the degraded draft returned whenever generation fails.
func Fallback(subject, orderID, message string) *models.DraftResult {
	if message == "" {
		message = generation.GenericFailureMessage
	}
	info := apperrors.NewUpstreamError(message).ToErrorInfo()
	return &models.DraftResult{
		Summary:        "Ticket: " + subject,
		SuggestedReply: FallbackReply,
		Extracted: models.ExtractedFields{
			IssueType:  FallbackIssueType,
			Priority:   FallbackPriority,
			NextAction: FallbackNextAction,
			OrderID:    orderID,
		},
		Meta: &models.DraftMeta{
			Error: &info,
		},
	}
}
