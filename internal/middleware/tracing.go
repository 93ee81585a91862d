package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"
const requestIDLocal = "request_id"

// Tracing tags each request with an ID, echoed in the response header so a
// frontend report can be matched to server logs. An inbound X-Request-Id is
// kept; otherwise one is minted.
func Tracing() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Locals(requestIDLocal, requestID)
		c.Set(requestIDHeader, requestID)
		return c.Next()
	}
}

// GetRequestID returns the request ID from context.
func GetRequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestIDLocal).(string); ok {
		return id
	}
	return ""
}
