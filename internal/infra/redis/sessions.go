package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// SessionVerifier resolves bearer tokens to user ids from session:<token> keys.
type SessionVerifier struct {
	client goredis.UniversalClient
	prefix string
}

func NewSessionVerifier(client goredis.UniversalClient) *SessionVerifier {
	return &SessionVerifier{client: client, prefix: sessionKeyPrefix}
}

func (v *SessionVerifier) Verify(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrUnauthorized
	}

	userID, err := v.client.Get(ctx, v.prefix+token).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", domain.ErrUnauthorized
		}
		return "", fmt.Errorf("redis get session: %w", err)
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", domain.ErrUnauthorized
	}
	return userID, nil
}

// Issue stores a session for userID that expires after ttl.
func (v *SessionVerifier) Issue(ctx context.Context, token string, userID string, ttl time.Duration) error {
	if strings.TrimSpace(token) == "" || strings.TrimSpace(userID) == "" {
		return errors.New("session token and user id are required")
	}
	if ttl <= 0 {
		return errors.New("session ttl must be positive")
	}
	return v.client.Set(ctx, v.prefix+token, userID, ttl).Err()
}
