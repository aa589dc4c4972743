package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
	infraredis "github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/infra/redis"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/transport"
	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const testAdminToken = "admin-secret"

type adminTestApp struct {
	app      *fiber.App
	sessions *infraredis.SessionVerifier
}

func newAdminTestApp(t *testing.T) adminTestApp {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	features, err := infraredis.NewFeatureStore(rdb, domain.FeatureState{
		Key:     domain.MethodSMS.FeatureKey(),
		Enabled: true,
		Message: "SMS reminders are temporarily unavailable.",
	})
	if err != nil {
		t.Fatalf("NewFeatureStore() error = %v", err)
	}
	sessions := infraredis.NewSessionVerifier(rdb)

	app := fiber.New(fiber.Config{ErrorHandler: transport.ErrorHandler(zap.NewNop())})
	if err := RegisterAdminRoutes(app, features, sessions, testAdminToken); err != nil {
		t.Fatalf("RegisterAdminRoutes() error = %v", err)
	}

	return adminTestApp{app: app, sessions: sessions}
}

func TestAdminIntegration_RequiresAdminToken(t *testing.T) {
	t.Parallel()

	h := newAdminTestApp(t)

	for _, token := range []string{"", "tok-landlord-1"} {
		resp, body := performRequest(t, h.app, http.MethodGet, "/v1/admin/features/sms_reminders", "", token)
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("token %q: status = %d, want 401, body=%s", token, resp.StatusCode, string(body))
		}
	}
}

func TestAdminIntegration_ToggleFeature(t *testing.T) {
	t.Parallel()

	h := newAdminTestApp(t)

	resp, body := performRequest(t, h.app, http.MethodPut, "/v1/admin/features/sms_reminders",
		`{"enabled":false,"message":"SMS gateway maintenance until 14:00."}`, testAdminToken)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
	}

	resp, body = performRequest(t, h.app, http.MethodGet, "/v1/admin/features/sms_reminders", "", testAdminToken)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
	}

	var state featureResponse
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if state.Key != "sms_reminders" || state.Enabled || state.Message != "SMS gateway maintenance until 14:00." {
		t.Fatalf("state = %+v", state)
	}
}

func TestAdminIntegration_SetFeatureRequiresEnabled(t *testing.T) {
	t.Parallel()

	h := newAdminTestApp(t)

	resp, body := performRequest(t, h.app, http.MethodPut, "/v1/admin/features/sms_reminders", `{"message":"x"}`, testAdminToken)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body=%s", resp.StatusCode, string(body))
	}
}

func TestAdminIntegration_IssuedSessionAuthenticates(t *testing.T) {
	t.Parallel()

	h := newAdminTestApp(t)

	resp, body := performRequest(t, h.app, http.MethodPost, "/v1/admin/sessions", `{"userId":"landlord-7","ttlSeconds":600}`, testAdminToken)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", resp.StatusCode, string(body))
	}

	var issued issueSessionResponse
	if err := json.Unmarshal(body, &issued); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if issued.Token == "" || issued.UserID != "landlord-7" {
		t.Fatalf("issued = %+v", issued)
	}

	auth, err := RequireAuth(h.sessions)
	if err != nil {
		t.Fatalf("RequireAuth() error = %v", err)
	}
	app := fiber.New(fiber.Config{ErrorHandler: transport.ErrorHandler(zap.NewNop())})
	app.Get("/whoami", auth, func(c *fiber.Ctx) error { return c.SendString(UserID(c)) })

	resp, body = performRequest(t, app, http.MethodGet, "/whoami", "", issued.Token)
	if resp.StatusCode != fiber.StatusOK || string(body) != "landlord-7" {
		t.Fatalf("status = %d body=%s, want landlord-7", resp.StatusCode, string(body))
	}
}

func TestAdminIntegration_IssueSessionValidation(t *testing.T) {
	t.Parallel()

	h := newAdminTestApp(t)

	for _, payload := range []string{`{"userId":" "}`, `{"userId":"l-1","ttlSeconds":-5}`, `{"userId":"l-1","ttlSeconds":99999999}`, `not json`} {
		resp, body := performRequest(t, h.app, http.MethodPost, "/v1/admin/sessions", payload, testAdminToken)
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("payload %s: status = %d, want 400, body=%s", payload, resp.StatusCode, string(body))
		}
	}
}

func TestRegisterAdminRoutesValidation(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	features, err := infraredis.NewFeatureStore(rdb)
	if err != nil {
		t.Fatalf("NewFeatureStore() error = %v", err)
	}
	sessions := infraredis.NewSessionVerifier(rdb)

	if err := RegisterAdminRoutes(fiber.New(), nil, sessions, "x"); err == nil {
		t.Fatal("expected error for nil feature toggles")
	}
	if err := RegisterAdminRoutes(fiber.New(), features, nil, "x"); err == nil {
		t.Fatal("expected error for nil session issuer")
	}
	if err := RegisterAdminRoutes(fiber.New(), features, sessions, " "); err == nil {
		t.Fatal("expected error for empty admin token")
	}
}
