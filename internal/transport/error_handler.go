package transport

import (
	"errors"
	"strings"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/observability"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler renders handler errors as JSON. Internal errors are logged with their cause but
// answered with a generic message.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *fiber.Ctx, err error) error {
		requestLogger := observability.WithContextLogger(logger, c.UserContext()).With(
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
		)

		var disabled *domain.FeatureDisabledError
		if errors.As(err, &disabled) {
			requestLogger.Info("request rejected: feature disabled", zap.String("feature", disabled.Feature))
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":      "feature_disabled",
				"message":    disabled.Error(),
				"suggestion": disabled.Suggestion,
			})
		}

		code := fiber.StatusInternalServerError
		message := "internal server error"
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		}

		if code >= fiber.StatusInternalServerError {
			requestLogger.Error("request error", zap.Int("status", code), zap.Error(err))
		} else {
			requestLogger.Debug("request rejected", zap.Int("status", code), zap.Error(err))
		}

		return c.Status(code).JSON(fiber.Map{
			"error": strings.TrimSpace(message),
		})
	}
}
