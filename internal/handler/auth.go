package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
	"github.com/gofiber/fiber/v2"
)

const userIDLocal = "userId"

// TokenVerifier resolves a bearer token to the authenticated user id.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the user id for handlers.
func RequireAuth(verifier TokenVerifier) (fiber.Handler, error) {
	if verifier == nil {
		return nil, fmt.Errorf("token verifier is required")
	}

	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		userID, err := verifier.Verify(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired session")
			}
			return fmt.Errorf("failed to verify session: %w", err)
		}

		c.Locals(userIDLocal, userID)
		return c.Next()
	}, nil
}

// UserID returns the id stored by RequireAuth, or "" on unauthenticated routes.
func UserID(c *fiber.Ctx) string {
	if value, ok := c.Locals(userIDLocal).(string); ok {
		return value
	}
	return ""
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
