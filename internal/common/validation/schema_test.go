package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() JSONSchema {
	return JSONSchema{
		Type:                 "object",
		Required:             []string{"name", "kind", "items"},
		AdditionalProperties: Bool(false),
		Properties: map[string]Property{
			"name": {Type: "string", MinLength: Int(1)},
			"kind": {Type: "string", Enum: []string{"a", "b"}},
			"items": {
				Type:     "array",
				MinItems: Int(1),
				Items: &Property{
					Type:     "object",
					Required: []string{"value"},
					Properties: map[string]Property{
						"value": {Type: "string", MinLength: Int(1)},
					},
				},
			},
		},
	}
}

func TestValidator_Validate(t *testing.T) {
	v, err := NewValidator(testSchema())
	require.NoError(t, err)

	tests := []struct {
		name       string
		input      map[string]interface{}
		valid      bool
		wantFields map[string]string
	}{
		{
			name: "valid document",
			input: map[string]interface{}{
				"name":  "x",
				"kind":  "a",
				"items": []interface{}{map[string]interface{}{"value": "v"}},
			},
			valid: true,
		},
		{
			name:  "every missing field is reported",
			input: map[string]interface{}{},
			valid: false,
			wantFields: map[string]string{
				"name":  "REQUIRED_FIELD_MISSING",
				"kind":  "REQUIRED_FIELD_MISSING",
				"items": "REQUIRED_FIELD_MISSING",
			},
		},
		{
			name: "constraint violations carry dotted paths",
			input: map[string]interface{}{
				"name":  "",
				"kind":  "c",
				"items": []interface{}{map[string]interface{}{"value": ""}},
				"extra": true,
			},
			valid: false,
			wantFields: map[string]string{
				"name":          "MIN_LENGTH_VIOLATION",
				"kind":          "INVALID_ENUM_VALUE",
				"items.0.value": "MIN_LENGTH_VIOLATION",
				"extra":         "EXTRA_FIELD",
			},
		},
		{
			name: "empty array",
			input: map[string]interface{}{
				"name":  "x",
				"kind":  "b",
				"items": []interface{}{},
			},
			valid:      false,
			wantFields: map[string]string{"items": "MIN_ITEMS_VIOLATION"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(tt.input)
			assert.Equal(t, tt.valid, result.Valid, result.GetErrorMessages())
			assert.Len(t, result.Errors, len(tt.wantFields))
			for field, code := range tt.wantFields {
				errs := result.GetErrorsForField(field)
				require.NotEmpty(t, errs, "expected error for %s, got %v", field, result.GetErrorMessages())
				assert.Equal(t, code, errs[0].Code)
			}
		})
	}
}

func TestValidator_ValidateBytes(t *testing.T) {
	v := MustNewValidator(testSchema())

	t.Run("invalid json", func(t *testing.T) {
		result := v.ValidateBytes([]byte(`{"name":`))
		assert.False(t, result.Valid)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "INVALID_JSON", result.Errors[0].Code)
	})

	t.Run("valid json", func(t *testing.T) {
		result := v.ValidateBytes([]byte(`{"name":"n","kind":"b","items":[{"value":"1"}]}`))
		assert.True(t, result.Valid, result.GetErrorMessages())
	})
}

func TestValidationResult_Append(t *testing.T) {
	result := &ValidationResult{Valid: true}
	result.Append("summary", "must not be blank", "EMPTY_VALUE")

	assert.False(t, result.Valid)
	assert.True(t, result.HasErrors("summary"))
	assert.Equal(t, []string{"summary: must not be blank"}, result.GetErrorMessages())
}

func TestJSONSchema_JSON(t *testing.T) {
	raw, err := testSchema().JSON()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"additionalProperties":false`)
	assert.Contains(t, string(raw), `"minItems":1`)
}
