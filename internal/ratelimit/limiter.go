package ratelimit

import (
	"context"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
)

// RateLimiter paces outbound reminders per delivery method.
type RateLimiter interface {
	// Wait blocks until one send over method is permitted or ctx ends.
	Wait(ctx context.Context, method domain.Method) error
}

// Unlimited never throttles.
type Unlimited struct{}

func (Unlimited) Wait(ctx context.Context, method domain.Method) error { return nil }
