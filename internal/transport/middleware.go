package transport

import (
	"strings"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/observability"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

const requestIDLocal = "requestid"

// CorrelationID assigns every request an X-Request-ID (reusing the caller's when present) and
// stores it on the user context for logging.
func CorrelationID() []fiber.Handler {
	return []fiber.Handler{
		requestid.New(requestid.Config{
			Header:     fiber.HeaderXRequestID,
			Generator:  uuid.NewString,
			ContextKey: requestIDLocal,
		}),
		func(c *fiber.Ctx) error {
			if id := RequestID(c); id != "" {
				c.SetUserContext(observability.WithCorrelationID(c.UserContext(), id))
			}
			return c.Next()
		},
	}
}

func RequestID(c *fiber.Ctx) string {
	if value, ok := c.Locals(requestIDLocal).(string); ok {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(c.Get(fiber.HeaderXRequestID))
}
