// Package web is the browser-facing boundary. It either forwards draft
// requests to the API service unchanged or, with no API configured, runs
// the pipeline in-process.
package web

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "support-copilot/internal/common/errors"
	commonhttp "support-copilot/internal/common/http"
	"support-copilot/internal/common/logger"
	"support-copilot/internal/copilot/pipeline"
)

const draftPath = "/copilot/draft"

// Handler handles web boundary requests.
type Handler struct {
	apiBase  string
	client   *commonhttp.Client
	pipeline *pipeline.Pipeline
	logger   logger.Logger
}

// NewProxyHandler forwards every draft request to apiBase.
func NewProxyHandler(apiBase string, client *commonhttp.Client, log logger.Logger) *Handler {
	return &Handler{
		apiBase: strings.TrimRight(apiBase, "/"),
		client:  client,
		logger:  log,
	}
}

// NewLocalHandler runs drafts in-process.
func NewLocalHandler(p *pipeline.Pipeline, log logger.Logger) *Handler {
	return &Handler{
		pipeline: p,
		logger:   log,
	}
}

// RegisterRoutes registers the web routes.
func (h *Handler) RegisterRoutes(e *echo.Echo, draftMiddleware ...echo.MiddlewareFunc) {
	e.POST("/api/copilot/draft", h.Draft, draftMiddleware...)
	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// Draft handles POST /api/copilot/draft.
func (h *Handler) Draft(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return he
		}
		return apperrors.NewBadRequestError("Unable to read request body", nil)
	}

	if h.apiBase != "" {
		return h.forward(c, body)
	}

	draft, stdErr := h.pipeline.Draft(c.Request().Context(), body)
	if stdErr != nil {
		return stdErr
	}
	return c.JSON(http.StatusOK, draft)
}

// forward relays status and body verbatim. The ticket is never parsed here,
// so an unreachable API cannot be answered with a fallback draft. The
// caller's IP is appended to X-Forwarded-For so the API limits each browser
// client separately.
func (h *Handler) forward(c echo.Context, body []byte) error {
	header := http.Header{}
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		header.Set(echo.HeaderXRequestID, id)
	}
	header.Set(echo.HeaderXForwardedFor, forwardedFor(c))

	resp, err := h.client.PostJSON(c.Request().Context(), h.apiBase+draftPath, body, header)
	if err != nil {
		h.logger.Error("draft API unreachable", map[string]interface{}{
			"apiBase": h.apiBase,
			"error":   err,
		})
		return apperrors.NewUpstreamError("Draft service is unavailable")
	}

	contentType := resp.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = echo.MIMEApplicationJSON
	}
	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		c.Response().Header().Set("Retry-After", retryAfter)
	}
	return c.Blob(resp.StatusCode, contentType, resp.Body)
}

func forwardedFor(c echo.Context) string {
	clientIP := c.RealIP()
	if prior := c.Request().Header.Get(echo.HeaderXForwardedFor); prior != "" {
		return prior + ", " + clientIP
	}
	return clientIP
}

// Health handles GET /health.
func (h *Handler) Health(c echo.Context) error {
	mode := "local"
	if h.apiBase != "" {
		mode = "proxy"
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "mode": mode})
}
