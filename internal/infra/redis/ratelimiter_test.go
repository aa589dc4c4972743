package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func TestRedisRateLimiterReserve(t *testing.T) {
	t.Parallel()

	mr, rdb := newTestRedis(t)
	limiter, err := NewRedisRateLimiter(rdb, map[domain.Method]int{domain.MethodSMS: 2})
	if err != nil {
		t.Fatalf("NewRedisRateLimiter() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		allowed, _, err := limiter.Reserve(context.Background(), domain.MethodSMS)
		if err != nil {
			t.Fatalf("Reserve() error = %v", err)
		}
		if !allowed {
			t.Fatalf("call %d should be allowed", i+1)
		}
	}

	allowed, retryAfter, err := limiter.Reserve(context.Background(), domain.MethodSMS)
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	if allowed {
		t.Fatal("third call should be rejected")
	}
	if retryAfter <= 0 || retryAfter > time.Second {
		t.Fatalf("retryAfter = %v, want within the one second window", retryAfter)
	}

	mr.FastForward(time.Second)

	allowed, _, err = limiter.Reserve(context.Background(), domain.MethodSMS)
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	if !allowed {
		t.Fatal("new window should allow the call")
	}
}

func TestRedisRateLimiterBudgetsArePerMethod(t *testing.T) {
	t.Parallel()

	_, rdb := newTestRedis(t)
	limiter, err := NewRedisRateLimiter(rdb, map[domain.Method]int{
		domain.MethodSMS:   1,
		domain.MethodEmail: 1,
	})
	if err != nil {
		t.Fatalf("NewRedisRateLimiter() error = %v", err)
	}

	steps := []struct {
		method domain.Method
		want   bool
	}{
		{domain.MethodSMS, true},
		{domain.MethodEmail, true},
		{domain.MethodSMS, false},
		{domain.MethodEmail, false},
	}
	for i, step := range steps {
		allowed, _, err := limiter.Reserve(context.Background(), step.method)
		if err != nil {
			t.Fatalf("step %d: Reserve(%s) error = %v", i, step.method, err)
		}
		if allowed != step.want {
			t.Fatalf("step %d: Reserve(%s) allowed = %v, want %v", i, step.method, allowed, step.want)
		}
	}
}

func TestRedisRateLimiterUnlimitedMethod(t *testing.T) {
	t.Parallel()

	mr, rdb := newTestRedis(t)
	limiter, err := NewRedisRateLimiter(rdb, map[domain.Method]int{domain.MethodSMS: 1, domain.MethodEmail: 0})
	if err != nil {
		t.Fatalf("NewRedisRateLimiter() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := limiter.Wait(context.Background(), domain.MethodEmail); err != nil {
			t.Fatalf("Wait(email) error = %v", err)
		}
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("keys = %v, want none for an unthrottled method", mr.Keys())
	}
}

func TestRedisRateLimiterWaitSleepsUntilWindowResets(t *testing.T) {
	t.Parallel()

	mr, rdb := newTestRedis(t)

	var slept []time.Duration
	limiter, err := newRedisRateLimiter(rdb, map[domain.Method]int{domain.MethodEmail: 1}, time.Second,
		func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			mr.FastForward(d)
			return nil
		},
	)
	if err != nil {
		t.Fatalf("newRedisRateLimiter() error = %v", err)
	}

	if err := limiter.Wait(context.Background(), domain.MethodEmail); err != nil {
		t.Fatalf("first Wait() error = %v", err)
	}
	if len(slept) != 0 {
		t.Fatalf("slept = %v, want no sleep for the first send", slept)
	}

	if err := limiter.Wait(context.Background(), domain.MethodEmail); err != nil {
		t.Fatalf("second Wait() error = %v", err)
	}
	if len(slept) != 1 {
		t.Fatalf("slept = %v, want exactly one pause", slept)
	}
	if slept[0] <= 0 || slept[0] > time.Second {
		t.Fatalf("pause = %v, want the remaining window", slept[0])
	}
}

func TestRedisRateLimiterWaitContextDeadline(t *testing.T) {
	t.Parallel()

	_, rdb := newTestRedis(t)
	limiter, err := NewRedisRateLimiter(rdb, map[domain.Method]int{domain.MethodSMS: 1})
	if err != nil {
		t.Fatalf("NewRedisRateLimiter() error = %v", err)
	}

	if err := limiter.Wait(context.Background(), domain.MethodSMS); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()

	err = limiter.Wait(ctx, domain.MethodSMS)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait() error = %v, want %v", err, context.DeadlineExceeded)
	}
}

func TestRedisRateLimiterRejectsUnknownMethod(t *testing.T) {
	t.Parallel()

	_, rdb := newTestRedis(t)
	limiter, err := NewRedisRateLimiter(rdb, nil)
	if err != nil {
		t.Fatalf("NewRedisRateLimiter() error = %v", err)
	}

	if _, _, err := limiter.Reserve(context.Background(), domain.Method("push")); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Reserve() error = %v, want ErrValidation", err)
	}
	if _, err := NewRedisRateLimiter(rdb, map[domain.Method]int{"fax": 3}); err == nil {
		t.Fatal("expected error for unknown limit method")
	}
}

func TestNewRedisRateLimiterRequiresClient(t *testing.T) {
	t.Parallel()

	if _, err := NewRedisRateLimiter(nil, nil); err == nil {
		t.Fatal("expected error for nil client")
	}
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run() error = %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = rdb.Close()
	})

	return mr, rdb
}

func newTestRedisClient(t *testing.T) *goredis.Client {
	t.Helper()

	_, rdb := newTestRedis(t)
	return rdb
}
