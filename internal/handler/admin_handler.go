package handler

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	defaultSessionTTL = 24 * time.Hour
	maxSessionTTL     = 30 * 24 * time.Hour
)

// FeatureToggles reads and flips the reminder channel toggles.
type FeatureToggles interface {
	Check(ctx context.Context, key string) (domain.FeatureState, error)
	Set(ctx context.Context, key string, enabled bool, message string) error
}

// SessionIssuer stores bearer sessions for landlords.
type SessionIssuer interface {
	Issue(ctx context.Context, token string, userID string, ttl time.Duration) error
}

type AdminHandler struct {
	features FeatureToggles
	sessions SessionIssuer
	now      func() time.Time
}

// RegisterAdminRoutes mounts the operator API under /v1/admin. Every route
// requires the static admin token, separate from landlord sessions.
func RegisterAdminRoutes(router fiber.Router, features FeatureToggles, sessions SessionIssuer, adminToken string) error {
	if features == nil {
		return fmt.Errorf("feature toggles are required")
	}
	if sessions == nil {
		return fmt.Errorf("session issuer is required")
	}
	adminToken = strings.TrimSpace(adminToken)
	if adminToken == "" {
		return fmt.Errorf("admin token is required")
	}

	h := &AdminHandler{features: features, sessions: sessions, now: time.Now}

	admin := router.Group("/v1/admin", requireAdminToken(adminToken))
	admin.Get("/features/:key", h.GetFeature)
	admin.Put("/features/:key", h.SetFeature)
	admin.Post("/sessions", h.IssueSession)

	return nil
}

func requireAdminToken(expected string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			return fiber.NewError(fiber.StatusUnauthorized, "admin token required")
		}
		return c.Next()
	}
}

type featureResponse struct {
	Key     string `json:"key"`
	Enabled bool   `json:"enabled"`
	Message string `json:"message,omitempty"`
}

type setFeatureRequest struct {
	Enabled *bool  `json:"enabled"`
	Message string `json:"message"`
}

type issueSessionRequest struct {
	UserID     string `json:"userId"`
	TTLSeconds int    `json:"ttlSeconds"`
}

type issueSessionResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *AdminHandler) GetFeature(c *fiber.Ctx) error {
	state, err := h.features.Check(c.UserContext(), c.Params("key"))
	if err != nil {
		return adminError(err)
	}
	return c.JSON(featureResponse{Key: state.Key, Enabled: state.Enabled, Message: state.Message})
}

func (h *AdminHandler) SetFeature(c *fiber.Ctx) error {
	var req setFeatureRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Enabled == nil {
		return fiber.NewError(fiber.StatusBadRequest, "enabled is required")
	}

	key := c.Params("key")
	if err := h.features.Set(c.UserContext(), key, *req.Enabled, req.Message); err != nil {
		return adminError(err)
	}

	state, err := h.features.Check(c.UserContext(), key)
	if err != nil {
		return adminError(err)
	}
	return c.JSON(featureResponse{Key: state.Key, Enabled: state.Enabled, Message: state.Message})
}

func (h *AdminHandler) IssueSession(c *fiber.Ctx) error {
	var req issueSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "userId is required")
	}

	ttl := defaultSessionTTL
	if req.TTLSeconds < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "ttlSeconds must be positive")
	}
	if req.TTLSeconds > 0 {
		ttl = time.Duration(req.TTLSeconds) * time.Second
	}
	if ttl > maxSessionTTL {
		return fiber.NewError(fiber.StatusBadRequest, "ttlSeconds exceeds 30 days")
	}

	token := uuid.NewString()
	if err := h.sessions.Issue(c.UserContext(), token, userID, ttl); err != nil {
		return fmt.Errorf("failed to issue session: %w", err)
	}

	return c.Status(fiber.StatusCreated).JSON(issueSessionResponse{
		Token:     token,
		UserID:    userID,
		ExpiresAt: h.now().UTC().Add(ttl),
	})
}

func adminError(err error) error {
	if errors.Is(err, domain.ErrValidation) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return err
}
