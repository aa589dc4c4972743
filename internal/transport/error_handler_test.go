package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/observability"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestApp(logger *zap.Logger, handler fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger)})
	for _, mw := range CorrelationID() {
		app.Use(mw)
	}
	app.Get("/", handler)
	return app
}

func doGet(t *testing.T, app *fiber.App, header map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	body := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("json unmarshal error = %v (body=%s)", err, raw)
		}
	}
	return resp, body
}

func TestErrorHandlerFiberError(t *testing.T) {
	t.Parallel()

	app := newTestApp(zap.NewNop(), func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadRequest, "tenantIds is required")
	})

	resp, body := doGet(t, app, nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body["error"] != "tenantIds is required" {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestErrorHandlerHidesInternalErrors(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.ErrorLevel)
	app := newTestApp(zap.New(core), func(c *fiber.Ctx) error {
		return errors.New("pq: password authentication failed")
	})

	resp, body := doGet(t, app, map[string]string{fiber.HeaderXRequestID: "req-42"})
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if body["error"] != "internal server error" {
		t.Fatalf("error = %v, want generic message", body["error"])
	}

	entries := logs.FilterMessage("request error").All()
	if len(entries) != 1 {
		t.Fatalf("logged errors = %d, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["correlationId"]; got != "req-42" {
		t.Fatalf("correlationId = %v, want req-42", got)
	}
}

func TestErrorHandlerFeatureDisabled(t *testing.T) {
	t.Parallel()

	app := newTestApp(zap.NewNop(), func(c *fiber.Ctx) error {
		return &domain.FeatureDisabledError{
			Feature:    "sms_reminders",
			Message:    "SMS reminders are temporarily unavailable.",
			Suggestion: "Try sending via email instead.",
		}
	})

	resp, body := doGet(t, app, nil)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	if body["error"] != "feature_disabled" ||
		body["message"] != "SMS reminders are temporarily unavailable." ||
		body["suggestion"] != "Try sending via email instead." {
		t.Fatalf("body = %v", body)
	}
}

func TestCorrelationIDMiddleware(t *testing.T) {
	t.Parallel()

	var seen string
	app := newTestApp(zap.NewNop(), func(c *fiber.Ctx) error {
		seen, _ = observability.CorrelationIDFromContext(c.UserContext())
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, _ := doGet(t, app, map[string]string{fiber.HeaderXRequestID: "from-client"})
	if seen != "from-client" {
		t.Fatalf("correlation id = %q, want from-client", seen)
	}
	if resp.Header.Get(fiber.HeaderXRequestID) != "from-client" {
		t.Fatalf("response header = %q", resp.Header.Get(fiber.HeaderXRequestID))
	}

	resp, _ = doGet(t, app, nil)
	if seen == "" || resp.Header.Get(fiber.HeaderXRequestID) != seen {
		t.Fatalf("generated id = %q, header = %q", seen, resp.Header.Get(fiber.HeaderXRequestID))
	}
}
