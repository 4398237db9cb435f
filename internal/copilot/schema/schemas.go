// Package schema holds the fixed shapes of the draft pipeline: the inbound
// request, the model's output and the composed response.
package schema

import (
	"encoding/json"

	apperrors "support-copilot/internal/common/errors"
	"support-copilot/internal/common/validation"
	"support-copilot/internal/models"
)

// ModelOutputName is the schema name announced to the provider.
const ModelOutputName = "support_draft"

func requestSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"ticket", "tone"},
		Properties: map[string]validation.Property{
			"ticket": {
				Type:     "object",
				Required: []string{"subject", "messages"},
				Properties: map[string]validation.Property{
					"subject": {
						Type:        "string",
						Description: "Ticket subject line",
						MinLength:   validation.Int(1),
					},
					"messages": {
						Type:        "array",
						Description: "Conversation in chronological order",
						MinItems:    validation.Int(1),
						Items: &validation.Property{
							Type:     "object",
							Required: []string{"from", "text"},
							Properties: map[string]validation.Property{
								"from": {Type: "string", Enum: models.Roles()},
								"text": {Type: "string", MinLength: validation.Int(1)},
								"ts":   {Type: "string"},
							},
						},
					},
				},
			},
			"tone": {
				Type:        "string",
				Description: "Voice of the suggested reply",
				Enum:        models.Tones(),
			},
		},
	}
}

// modelOutputSchema is sent to the provider as a strict response format, so
// every object is closed and lists all of its properties as required.
// order_id is deliberately not a property.
func modelOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:                 "object",
		Required:             []string{"summary", "suggested_reply", "extracted"},
		AdditionalProperties: validation.Bool(false),
		Properties: map[string]validation.Property{
			"summary": {
				Type:        "string",
				Description: "One or two sentence summary of the ticket for the agent",
			},
			"suggested_reply": {
				Type:        "string",
				Description: "Reply the agent can send to the customer",
			},
			"extracted": {
				Type:                 "object",
				Required:             []string{"issue_type", "priority", "next_action"},
				AdditionalProperties: validation.Bool(false),
				Properties: map[string]validation.Property{
					"issue_type": {
						Type:        "string",
						Description: "Short snake_case category, e.g. delivery_delay, refund_request",
					},
					"priority": {
						Type: "string",
						Enum: models.Priorities(),
					},
					"next_action": {
						Type:        "string",
						Description: "Next concrete step for the agent",
					},
				},
			},
		},
	}
}

func responseSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:                 "object",
		Required:             []string{"summary", "suggested_reply", "extracted"},
		AdditionalProperties: validation.Bool(false),
		Properties: map[string]validation.Property{
			"summary":         {Type: "string", MinLength: validation.Int(1)},
			"suggested_reply": {Type: "string", MinLength: validation.Int(1)},
			"extracted": {
				Type:                 "object",
				Required:             []string{"issue_type", "priority", "next_action"},
				AdditionalProperties: validation.Bool(false),
				Properties: map[string]validation.Property{
					"issue_type":  {Type: "string"},
					"priority":    {Type: "string", Enum: models.Priorities()},
					"next_action": {Type: "string"},
					"order_id":    {Type: "string", MinLength: validation.Int(1)},
				},
			},
			"_meta": {
				Type:                 "object",
				Required:             []string{"error"},
				AdditionalProperties: validation.Bool(false),
				Properties: map[string]validation.Property{
					"error": {
						Type:     "object",
						Required: []string{"code", "message"},
						Properties: map[string]validation.Property{
							"code": {
								Type: "string",
								Enum: []string{
									string(apperrors.ErrCodeBadRequest),
									string(apperrors.ErrCodeUpstreamError),
								},
							},
							"message": {Type: "string"},
						},
					},
				},
			},
		},
	}
}

var (
	requestValidator     = validation.MustNewValidator(requestSchema())
	modelOutputValidator = validation.MustNewValidator(modelOutputSchema())
	responseValidator    = validation.MustNewValidator(responseSchema())
)

// ModelOutputSchema returns the JSON document of the closed model output schema.
func ModelOutputSchema() json.RawMessage {
	raw, err := modelOutputSchema().JSON()
	if err != nil {
		// The schema is a static value; marshalling cannot fail.
		panic(err)
	}
	return raw
}
