// Package middleware carries the serve-mode request plumbing: per-request
// logging with dataset context, panic recovery, and request identifiers.
package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Logger logs one line per request. Requests addressing a single dataset
// carry its name, so access to the derived artifacts can be traced per
// dataset the way the pipeline stages log per stage.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}
			evt = evt.
				Str("request_id", requestID(c)).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Int64("bytes", c.Response().Size).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP())
			if name := c.Param("name"); name != "" {
				evt = evt.Str("dataset", name)
			}
			evt.Msg("request")
			return err
		}
	}
}
