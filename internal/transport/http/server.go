// Package http assembles the echo servers for the draft API and the web
// boundary.
package http

import (
	"net"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	apperrors "support-copilot/internal/common/errors"
	"support-copilot/internal/common/logger"
	"support-copilot/internal/common/ratelimit"
	"support-copilot/internal/copilot/pipeline"
	"support-copilot/internal/transport/http/api"
	"support-copilot/internal/transport/http/web"
)

const defaultBodyLimit = "1M"

// Options tune the listener shared by both servers.
type Options struct {
	BodyLimit string
	// TrustedProxies are the only peers whose X-Forwarded-For is used to
	// find the client IP. With none, the peer address is the client.
	TrustedProxies []*net.IPNet
}

// NewAPIServer creates the service that answers POST /copilot/draft.
// limiter may be nil to disable rate limiting.
func NewAPIServer(p *pipeline.Pipeline, limiter ratelimit.Limiter, log logger.Logger, opts Options) *echo.Echo {
	e := newEcho(log, opts)

	handler := api.NewHandler(p, log)
	handler.RegisterRoutes(e, limiterMiddleware(limiter, log)...)

	return e
}

// NewWebServer creates the browser-facing boundary.
func NewWebServer(handler *web.Handler, limiter ratelimit.Limiter, log logger.Logger, opts Options) *echo.Echo {
	e := newEcho(log, opts)

	handler.RegisterRoutes(e, limiterMiddleware(limiter, log)...)

	return e
}

func newEcho(log logger.Logger, opts Options) *echo.Echo {
	bodyLimit := opts.BodyLimit
	if bodyLimit == "" {
		bodyLimit = defaultBodyLimit
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperrors.NewErrorHandler(log).HandleHTTPError
	e.IPExtractor = ipExtractor(opts.TrustedProxies)

	// Middleware
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(logger.RequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(bodyLimit))

	return e
}

// ipExtractor never trusts forwarding headers from arbitrary peers. echo's
// XFF extractor trusts loopback and private ranges by default, so those are
// switched off and only the configured networks remain.
func ipExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}

	options := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, network := range trusted {
		options = append(options, echo.TrustIPRange(network))
	}
	return echo.ExtractIPFromXFFHeader(options...)
}

func limiterMiddleware(limiter ratelimit.Limiter, log logger.Logger) []echo.MiddlewareFunc {
	if limiter == nil {
		return nil
	}
	return []echo.MiddlewareFunc{ratelimit.Middleware(limiter, log)}
}
