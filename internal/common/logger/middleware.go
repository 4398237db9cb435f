package logger

import (
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogger emits one access log line per request. Bodies are never
// logged; ticket text stays out of the logs.
func RequestLogger(log Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status is final.
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			fields := map[string]interface{}{
				"requestId": res.Header().Get(echo.HeaderXRequestID),
				"method":    req.Method,
				"path":      req.URL.Path,
				"status":    res.Status,
				"bytesOut":  res.Size,
				"latencyMs": time.Since(start).Milliseconds(),
				"remoteIp":  c.RealIP(),
			}

			if res.Status >= 500 {
				log.Error("request completed", fields)
			} else {
				log.Info("request completed", fields)
			}
			return nil
		}
	}
}
