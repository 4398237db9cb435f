package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"support-copilot/internal/common/validation"
	"support-copilot/internal/copilot/schema"
	"support-copilot/internal/models"
)

// OpenAIGenerator makes exactly one chat completion call per request with a
// strict JSON schema response format. It never retries.
type OpenAIGenerator struct {
	config *Config
	client *openai.Client
	schema json.RawMessage
	logger Logger
}

var _ Generator = (*OpenAIGenerator)(nil)

func NewOpenAIGenerator(config *Config, log Logger) *OpenAIGenerator {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(config.BaseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}

	return &OpenAIGenerator{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
		schema: schema.ModelOutputSchema(),
		logger: log,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) Outcome {
	if !g.config.Configured() {
		g.logger.Warn("generation skipped", map[string]interface{}{
			"reason": ReasonNotConfigured,
		})
		return NewFailure(ErrNotConfigured)
	}

	start := time.Now()
	draft, err := g.execute(ctx, req)
	if err != nil {
		failure := NewFailure(err)
		g.logger.Error("generation failed", map[string]interface{}{
			"reason":     failure.Reason,
			"error":      err.Error(),
			"model":      g.config.Model,
			"durationMs": time.Since(start).Milliseconds(),
		})
		return failure
	}

	g.logger.Info("generation completed", map[string]interface{}{
		"model":      g.config.Model,
		"priority":   draft.Extracted.Priority,
		"durationMs": time.Since(start).Milliseconds(),
	})
	return Success{Payload: *draft}
}

func (g *OpenAIGenerator) execute(ctx context.Context, req Request) (*models.GeneratedDraft, error) {
	resp, err := g.client.CreateChatCompletion(ctx, g.buildRequest(req))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded || isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrEmptyResponse)
	}
	message := resp.Choices[0].Message
	if message.Refusal != "" {
		return nil, fmt.Errorf("%w: refused: %s", ErrEmptyResponse, message.Refusal)
	}
	content := strings.TrimSpace(message.Content)
	if content == "" {
		return nil, ErrEmptyResponse
	}

	return parseContent(content)
}

func (g *OpenAIGenerator) buildRequest(req Request) openai.ChatCompletionRequest {
	temperature := float32(g.config.temperature())
	if temperature == 0 {
		// a zero temperature is dropped by omitempty and the provider default applies
		temperature = math.SmallestNonzeroFloat32
	}

	return openai.ChatCompletionRequest{
		Model:       g.config.Model,
		Temperature: temperature,
		MaxTokens:   g.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(req)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schema.ModelOutputName,
				Schema: g.schema,
				Strict: true,
			},
		},
	}
}

// parseContent runs the independent output check. Malformed JSON and shape
// violations are reported separately.
func parseContent(content string) (*models.GeneratedDraft, error) {
	draft, result := schema.ParseModelOutput(content)
	if result.Valid {
		return draft, nil
	}
	if invalidJSON(result) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidJSON, schema.Summarize(result))
	}
	return nil, fmt.Errorf("%w: %s", ErrSchemaViolation, schema.Summarize(result))
}

func invalidJSON(result *validation.ValidationResult) bool {
	for _, e := range result.Errors {
		if e.Code == "INVALID_JSON" {
			return true
		}
	}
	return false
}
