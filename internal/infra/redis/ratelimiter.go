package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/ratelimit"
	goredis "github.com/redis/go-redis/v9"
)

const (
	defaultWindow      = time.Second
	minRetryAfter      = 5 * time.Millisecond
	rateLimitKeyPrefix = "rentalert:ratelimit"
)

// reserveScript counts a send inside the current window. It returns -1 when
// the send is allowed and otherwise the milliseconds left in the window.
var reserveScript = goredis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
if current > tonumber(ARGV[1]) then
  local ttl = redis.call("PTTL", KEYS[1])
  if ttl < 0 then
    redis.call("PEXPIRE", KEYS[1], ARGV[2])
    ttl = tonumber(ARGV[2])
  end
  return ttl
end
return -1
`)

var _ ratelimit.RateLimiter = (*RedisRateLimiter)(nil)

// RedisRateLimiter shares a fixed-window send budget per delivery method
// across every API replica, so gateway quotas hold under horizontal scaling.
type RedisRateLimiter struct {
	client goredis.UniversalClient
	limits map[domain.Method]int64
	window time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRedisRateLimiter builds a limiter allowing limits[m] sends of method m
// per second. Methods without a positive limit are not throttled.
func NewRedisRateLimiter(client goredis.UniversalClient, limits map[domain.Method]int) (*RedisRateLimiter, error) {
	return newRedisRateLimiter(client, limits, defaultWindow, sleepWithContext)
}

func newRedisRateLimiter(
	client goredis.UniversalClient,
	limits map[domain.Method]int,
	window time.Duration,
	sleepFn func(ctx context.Context, d time.Duration) error,
) (*RedisRateLimiter, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if window <= 0 {
		window = defaultWindow
	}
	if sleepFn == nil {
		sleepFn = sleepWithContext
	}

	normalized := make(map[domain.Method]int64, len(limits))
	for method, limit := range limits {
		if !method.IsValid() {
			return nil, fmt.Errorf("%w: unknown rate limit method %q", domain.ErrValidation, method)
		}
		if limit > 0 {
			normalized[method] = int64(limit)
		}
	}

	return &RedisRateLimiter{
		client: client,
		limits: normalized,
		window: window,
		sleep:  sleepFn,
	}, nil
}

// Reserve tries to take one send from the current window. When the budget is
// spent it reports how long until the window resets.
func (r *RedisRateLimiter) Reserve(ctx context.Context, method domain.Method) (bool, time.Duration, error) {
	if !method.IsValid() {
		return false, 0, fmt.Errorf("%w: unknown method %q", domain.ErrValidation, method)
	}
	limit, ok := r.limits[method]
	if !ok {
		return true, 0, nil
	}

	key := fmt.Sprintf("%s:%s", rateLimitKeyPrefix, method)
	ttl, err := reserveScript.Run(ctx, r.client, []string{key}, limit, r.window.Milliseconds()).Int64()
	if err != nil {
		return false, 0, fmt.Errorf("failed to reserve %s send: %w", method, err)
	}
	if ttl < 0 {
		return true, 0, nil
	}

	retryAfter := time.Duration(ttl) * time.Millisecond
	if retryAfter < minRetryAfter {
		retryAfter = minRetryAfter
	}
	return false, retryAfter, nil
}

func (r *RedisRateLimiter) Wait(ctx context.Context, method domain.Method) error {
	for {
		allowed, retryAfter, err := r.Reserve(ctx, method)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}
		if err := r.sleep(ctx, retryAfter); err != nil {
			return err
		}
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
