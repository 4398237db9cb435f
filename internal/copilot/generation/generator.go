// Package generation turns a validated ticket into a model-written draft.
// A Generator never returns an error: every call ends in a Success or a
// Failure that the composer can turn into a response.
package generation

import (
	"context"
	"errors"
	"net"

	"github.com/sashabaranov/go-openai"

	"support-copilot/internal/models"
)

// GenericFailureMessage is used when a failure carries no usable message.
const GenericFailureMessage = "Failed to generate draft"

var (
	ErrNotConfigured   = errors.New("OPENAI_API_KEY is not configured")
	ErrRequestFailed   = errors.New("generation request failed")
	ErrTimeout         = errors.New("generation request timed out")
	ErrEmptyResponse   = errors.New("model returned an empty response")
	ErrInvalidJSON     = errors.New("model output is not valid JSON")
	ErrSchemaViolation = errors.New("model output does not match the draft schema")
)

// Reason classifies a Failure for logs and metrics.
type Reason string

const (
	ReasonNotConfigured   Reason = "not_configured"
	ReasonRequestFailed   Reason = "request_failed"
	ReasonTimeout         Reason = "timeout"
	ReasonEmptyResponse   Reason = "empty_response"
	ReasonInvalidJSON     Reason = "invalid_json"
	ReasonSchemaViolation Reason = "schema_violation"
)

// Request carries only what the model needs to see.
type Request struct {
	Tone     models.Tone
	Subject  string
	Messages []models.Message
}

func NewRequest(req *models.DraftRequest) Request {
	return Request{
		Tone:     req.Tone,
		Subject:  req.Ticket.Subject,
		Messages: req.Ticket.Messages,
	}
}

// Outcome is either Success or Failure.
type Outcome interface {
	outcome()
}

type Success struct {
	Payload models.GeneratedDraft
}

type Failure struct {
	Message string
	Reason  Reason
	Err     error
}

func (Success) outcome() {}
func (Failure) outcome() {}

type Generator interface {
	Generate(ctx context.Context, req Request) Outcome
}

// Logger is the subset of the application logger used here.
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// NewFailure classifies err and picks the message shown to callers: the
// provider's own message when there is one, else the error text.
func NewFailure(err error) Failure {
	return Failure{
		Message: failureMessage(err),
		Reason:  classify(err),
		Err:     err,
	}
}

func classify(err error) Reason {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return ReasonNotConfigured
	case errors.Is(err, ErrEmptyResponse):
		return ReasonEmptyResponse
	case errors.Is(err, ErrInvalidJSON):
		return ReasonInvalidJSON
	case errors.Is(err, ErrSchemaViolation):
		return ReasonSchemaViolation
	case isTimeout(err):
		return ReasonTimeout
	default:
		return ReasonRequestFailed
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func failureMessage(err error) string {
	if err == nil {
		return GenericFailureMessage
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return GenericFailureMessage
}
