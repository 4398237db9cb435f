package ratelimit

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "support-copilot/internal/common/errors"
	"support-copilot/internal/common/metrics"
)

const (
	HeaderRetryAfter         = "Retry-After"
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
)

type Logger interface {
	Warn(msg string, fields map[string]interface{})
}

// Middleware rejects requests over the budget with RATE_LIMITED before they
// reach the handler. Requests are keyed by client IP. When the backend is
// unavailable the request is let through and a warning is logged.
func Middleware(limiter Limiter, log Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			decision, err := limiter.Allow(c.Request().Context(), key)
			if err != nil {
				log.Warn("rate limiter unavailable, allowing request", map[string]interface{}{
					"backend": limiter.Backend(),
					"error":   err,
				})
				return next(c)
			}

			header := c.Response().Header()
			header.Set(HeaderRateLimitLimit, strconv.Itoa(decision.Limit))
			header.Set(HeaderRateLimitRemaining, strconv.Itoa(decision.Remaining))

			if !decision.Allowed {
				seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				header.Set(HeaderRetryAfter, strconv.Itoa(seconds))
				metrics.RateLimited.WithLabelValues(limiter.Backend()).Inc()
				return apperrors.NewRateLimitedError(decision.RetryAfter)
			}
			return next(c)
		}
	}
}
