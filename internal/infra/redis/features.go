package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const featureKeyPrefix = "feature:"

// FeatureStore reads feature toggles from Redis hashes (feature:<key> -> enabled, message).
// Keys without a hash fall back to the configured defaults.
type FeatureStore struct {
	client   goredis.UniversalClient
	defaults map[string]domain.FeatureState
}

func NewFeatureStore(client goredis.UniversalClient, defaults ...domain.FeatureState) (*FeatureStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	byKey := make(map[string]domain.FeatureState, len(defaults))
	for _, state := range defaults {
		key := normalizeFeatureKey(state.Key)
		if key == "" {
			return nil, fmt.Errorf("feature default key is required")
		}
		state.Key = key
		byKey[key] = state
	}

	return &FeatureStore{client: client, defaults: byKey}, nil
}

func (s *FeatureStore) Check(ctx context.Context, key string) (domain.FeatureState, error) {
	key = normalizeFeatureKey(key)
	if key == "" {
		return domain.FeatureState{}, fmt.Errorf("%w: feature key is required", domain.ErrValidation)
	}

	state, ok := s.defaults[key]
	if !ok {
		state = domain.FeatureState{Key: key, Enabled: true}
	}

	values, err := s.client.HGetAll(ctx, featureKeyPrefix+key).Result()
	if err != nil {
		return domain.FeatureState{}, fmt.Errorf("failed to read feature %q: %w", key, err)
	}

	if raw, ok := values["enabled"]; ok {
		enabled, parseErr := strconv.ParseBool(strings.TrimSpace(raw))
		if parseErr != nil {
			return domain.FeatureState{}, fmt.Errorf("invalid enabled flag for feature %q: %w", key, parseErr)
		}
		state.Enabled = enabled
	}
	if msg := strings.TrimSpace(values["message"]); msg != "" {
		state.Message = msg
	}

	return state, nil
}

// Set stores an override for key. An empty message keeps the default message.
func (s *FeatureStore) Set(ctx context.Context, key string, enabled bool, message string) error {
	key = normalizeFeatureKey(key)
	if key == "" {
		return fmt.Errorf("%w: feature key is required", domain.ErrValidation)
	}

	fields := map[string]interface{}{"enabled": strconv.FormatBool(enabled)}
	if msg := strings.TrimSpace(message); msg != "" {
		fields["message"] = msg
	}

	if err := s.client.HSet(ctx, featureKeyPrefix+key, fields).Err(); err != nil {
		return fmt.Errorf("failed to store feature %q: %w", key, err)
	}
	return nil
}

func normalizeFeatureKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
