package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
)

func TestFeatureStoreDefaults(t *testing.T) {
	t.Parallel()

	store, err := NewFeatureStore(newTestRedisClient(t),
		domain.FeatureState{Key: "sms_reminders", Enabled: false, Message: "SMS is paused"},
	)
	if err != nil {
		t.Fatalf("NewFeatureStore() error = %v", err)
	}

	state, err := store.Check(context.Background(), "SMS_REMINDERS")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if state.Enabled || state.Message != "SMS is paused" || state.Key != "sms_reminders" {
		t.Fatalf("Check() = %+v", state)
	}

	unknown, err := store.Check(context.Background(), "email_reminders")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !unknown.Enabled {
		t.Fatal("unknown feature should default to enabled")
	}
}

func TestFeatureStoreOverride(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := NewFeatureStore(newTestRedisClient(t),
		domain.FeatureState{Key: "email_reminders", Enabled: true, Message: "Email reminders are unavailable"},
	)
	if err != nil {
		t.Fatalf("NewFeatureStore() error = %v", err)
	}

	if err := store.Set(ctx, "email_reminders", false, ""); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	state, err := store.Check(ctx, "email_reminders")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if state.Enabled {
		t.Fatal("override should disable the feature")
	}
	if state.Message != "Email reminders are unavailable" {
		t.Fatalf("Message = %q, want default message", state.Message)
	}

	if err := store.Set(ctx, "email_reminders", true, "back online"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	state, err = store.Check(ctx, "email_reminders")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !state.Enabled || state.Message != "back online" {
		t.Fatalf("Check() = %+v", state)
	}
}

func TestFeatureStoreInvalidFlag(t *testing.T) {
	t.Parallel()

	rdb := newTestRedisClient(t)
	store, err := NewFeatureStore(rdb)
	if err != nil {
		t.Fatalf("NewFeatureStore() error = %v", err)
	}

	if err := rdb.HSet(context.Background(), "feature:sms_reminders", "enabled", "maybe").Err(); err != nil {
		t.Fatalf("HSet() error = %v", err)
	}
	if _, err := store.Check(context.Background(), "sms_reminders"); err == nil {
		t.Fatal("expected error for invalid flag")
	}
	if _, err := store.Check(context.Background(), " "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Check() error = %v, want ErrValidation", err)
	}
}

func TestNewFeatureStoreValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewFeatureStore(nil); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := NewFeatureStore(newTestRedisClient(t), domain.FeatureState{Key: " "}); err == nil {
		t.Fatal("expected error for empty default key")
	}
}
