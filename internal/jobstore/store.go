// Package jobstore holds the registry of in-flight and recently finished reminder jobs.
package jobstore

import (
	"context"
	"time"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
)

// NewJob describes a job to register.
type NewJob struct {
	ID     string
	UserID string
	Method domain.Method
	Period string
	Total  int
}

// Store is the job registry port. Implementations must serialise Update calls per job.
type Store interface {
	Create(ctx context.Context, job NewJob) (*domain.Job, error)
	// Update applies mutate to the stored job. A missing id is a no-op.
	Update(ctx context.Context, id string, mutate func(*domain.Job)) error
	// Get returns a snapshot or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Job, error)
	// Sweep drops finished jobs whose CompletedAt is older than now-retention.
	Sweep(ctx context.Context, retention time.Duration) (int, error)
}
