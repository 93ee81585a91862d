package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// RouteLogger logs one line per completed request with method, path, status,
// duration and request ID.
func RouteLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		entry := log.Info()
		status := c.Response().StatusCode()
		if status >= 500 {
			entry = log.Error()
		} else if status >= 400 {
			entry = log.Warn()
		}
		entry.
			Str("request_id", GetRequestID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
		return err
	}
}
