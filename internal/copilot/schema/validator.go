package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"support-copilot/internal/common/validation"
	"support-copilot/internal/models"
)

// ParseRequest validates an inbound body and decodes it. On failure the
// result lists every violated field and the request is nil.
func ParseRequest(body []byte) (*models.DraftRequest, *validation.ValidationResult) {
	result := requestValidator.ValidateBytes(body)
	if !result.Valid {
		return nil, result
	}

	var req models.DraftRequest
	if err := json.Unmarshal(body, &req); err != nil {
		result.Append("(root)", err.Error(), "INVALID_JSON")
		return nil, result
	}
	return &req, result
}

// ValidateRequest checks an already decoded request, e.g. one built by a CLI.
func ValidateRequest(req *models.DraftRequest) *validation.ValidationResult {
	return requestValidator.Validate(req)
}

// ParseModelOutput validates raw model text against the closed output schema
// and decodes it. Summary and reply must also be non-blank, which the
// provider-facing schema cannot express.
func ParseModelOutput(content string) (*models.GeneratedDraft, *validation.ValidationResult) {
	result := modelOutputValidator.ValidateBytes([]byte(content))
	if !result.Valid {
		return nil, result
	}

	var draft models.GeneratedDraft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		result.Append("(root)", err.Error(), "INVALID_JSON")
		return nil, result
	}

	if strings.TrimSpace(draft.Summary) == "" {
		result.Append("summary", "summary must not be blank", "EMPTY_VALUE")
	}
	if strings.TrimSpace(draft.SuggestedReply) == "" {
		result.Append("suggested_reply", "suggested_reply must not be blank", "EMPTY_VALUE")
	}
	if !result.Valid {
		return nil, result
	}
	return &draft, result
}

// ValidateDraft checks a composed result against the response shape.
func ValidateDraft(draft *models.DraftResult) *validation.ValidationResult {
	if draft == nil {
		return &validation.ValidationResult{
			Valid:  false,
			Errors: []validation.ValidationError{{Field: "(root)", Message: "draft is nil", Code: "INVALID_TYPE"}},
		}
	}
	return responseValidator.Validate(draft)
}

// Summarize joins the violations into one line for logs and error messages.
func Summarize(result *validation.ValidationResult) string {
	if result == nil || result.Valid {
		return ""
	}
	return fmt.Sprintf("%d violation(s): %s", len(result.Errors), strings.Join(result.GetErrorMessages(), "; "))
}
