package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "support-copilot/internal/common/errors"
	"support-copilot/internal/common/logger"
	"support-copilot/internal/copilot/generation"
	"support-copilot/internal/copilot/pipeline"
	"support-copilot/internal/models"
)

type stubGenerator struct {
	outcome generation.Outcome
	calls   int32
}

func (s *stubGenerator) Generate(ctx context.Context, req generation.Request) generation.Outcome {
	atomic.AddInt32(&s.calls, 1)
	return s.outcome
}

const draftBody = `{"ticket":{"subject":"Order delayed","messages":[{"from":"customer","text":"Order #A10293 is late"}]},"tone":"friendly"}`

func setup(t *testing.T, gen generation.Generator) (*echo.Echo, *Handler) {
	t.Helper()
	log := logger.NewTestLogger(t)
	e := echo.New()
	e.HTTPErrorHandler = apperrors.NewErrorHandler(log).HandleHTTPError
	h := NewHandler(pipeline.New(gen, log, nil), log)
	h.RegisterRoutes(e)
	return e, h
}

func TestHandler_Draft(t *testing.T) {
	tests := []struct {
		name       string
		outcome    generation.Outcome
		body       string
		wantStatus int
		wantCalls  int32
		check      func(t *testing.T, body []byte)
	}{
		{
			name: "generated draft",
			outcome: generation.Success{Payload: models.GeneratedDraft{
				Summary:        "Late order",
				SuggestedReply: "Hi! We're on it.",
				Extracted:      models.GeneratedFields{IssueType: "delivery_delay", Priority: "high", NextAction: "Check courier"},
			}},
			body:       draftBody,
			wantStatus: http.StatusOK,
			wantCalls:  1,
			check: func(t *testing.T, body []byte) {
				var got models.DraftResult
				require.NoError(t, json.Unmarshal(body, &got))
				assert.Equal(t, "A10293", got.Extracted.OrderID)
				assert.Nil(t, got.Meta)
				assert.NotContains(t, string(body), "_meta")
			},
		},
		{
			name:       "generation failure degrades with 200",
			outcome:    generation.Failure{Message: "Request timed out", Reason: generation.ReasonTimeout},
			body:       draftBody,
			wantStatus: http.StatusOK,
			wantCalls:  1,
			check: func(t *testing.T, body []byte) {
				var got models.DraftResult
				require.NoError(t, json.Unmarshal(body, &got))
				assert.Equal(t, "unknown", got.Extracted.IssueType)
				assert.Equal(t, models.PriorityMedium, got.Extracted.Priority)
				assert.Equal(t, "A10293", got.Extracted.OrderID)
				require.NotNil(t, got.Meta)
				assert.Equal(t, "UPSTREAM_ERROR", got.Meta.Error.Code)
				assert.Equal(t, "Request timed out", got.Meta.Error.Message)
			},
		},
		{
			name:       "malformed input",
			body:       `{"ticket":{"subject":"Order delayed","messages":[]}}`,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body []byte) {
				var got struct {
					Error struct {
						Code    string `json:"code"`
						Message string `json:"message"`
						Details struct {
							Valid  bool `json:"valid"`
							Errors []struct {
								Field string `json:"field"`
							} `json:"errors"`
						} `json:"details"`
					} `json:"error"`
				}
				require.NoError(t, json.Unmarshal(body, &got))
				assert.Equal(t, "BAD_REQUEST", got.Error.Code)
				assert.False(t, got.Error.Details.Valid)

				fields := make([]string, 0, len(got.Error.Details.Errors))
				for _, e := range got.Error.Details.Errors {
					fields = append(fields, e.Field)
				}
				assert.ElementsMatch(t, []string{"ticket.messages", "tone"}, fields)
			},
		},
		{
			name:       "not json",
			body:       `hello`,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body []byte) {
				assert.Contains(t, string(body), `"code":"BAD_REQUEST"`)
				assert.Contains(t, string(body), "valid JSON")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{outcome: tt.outcome}
			e, _ := setup(t, gen)

			req := httptest.NewRequest(http.MethodPost, "/copilot/draft", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&gen.calls))
			tt.check(t, rec.Body.Bytes())
		})
	}
}

func TestHandler_Health(t *testing.T) {
	_, h := setup(t, &stubGenerator{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandler_UnknownRoute(t *testing.T) {
	e, _ := setup(t, &stubGenerator{})

	req := httptest.NewRequest(http.MethodGet, "/copilot/unknown", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)
}

func TestHandler_Metrics(t *testing.T) {
	e, _ := setup(t, &stubGenerator{outcome: generation.Failure{Message: "x", Reason: generation.ReasonRequestFailed}})

	req := httptest.NewRequest(http.MethodPost, "/copilot/draft", strings.NewReader(draftBody))
	e.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "copilot_drafts_total")
	assert.Contains(t, rec.Body.String(), "copilot_generation_failures_total")
}
