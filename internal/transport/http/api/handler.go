// Package api serves the draft endpoint of the copilot API service.
package api

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "support-copilot/internal/common/errors"
	"support-copilot/internal/common/logger"
	"support-copilot/internal/copilot/pipeline"
)

// Handler handles draft API requests.
type Handler struct {
	pipeline *pipeline.Pipeline
	logger   logger.Logger
}

func NewHandler(p *pipeline.Pipeline, log logger.Logger) *Handler {
	return &Handler{
		pipeline: p,
		logger:   log,
	}
}

// RegisterRoutes registers the API routes. draftMiddleware applies to the
// draft route only so health checks and scrapes are never throttled.
func (h *Handler) RegisterRoutes(e *echo.Echo, draftMiddleware ...echo.MiddlewareFunc) {
	e.POST("/copilot/draft", h.Draft, draftMiddleware...)
	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// Draft handles POST /copilot/draft.
func (h *Handler) Draft(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return he
		}
		h.logger.Warn("failed to read request body", map[string]interface{}{
			"error": err,
		})
		return apperrors.NewBadRequestError("Unable to read request body", nil)
	}

	draft, stdErr := h.pipeline.Draft(c.Request().Context(), body)
	if stdErr != nil {
		return stdErr
	}
	return c.JSON(http.StatusOK, draft)
}

// Health handles GET /health.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
