package service

import (
	"context"
	"fmt"
	"time"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/jobstore"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/observability"
	"go.uber.org/zap"
)

const (
	defaultSweepInterval = 5 * time.Minute
	defaultJobRetention  = time.Hour
)

// Sweeper periodically evicts finished jobs older than the retention window.
type Sweeper struct {
	jobs      jobstore.Store
	logger    *zap.Logger
	metrics   *observability.Metrics
	interval  time.Duration
	retention time.Duration
}

func NewSweeper(
	jobs jobstore.Store,
	interval time.Duration,
	retention time.Duration,
	logger *zap.Logger,
) (*Sweeper, error) {
	if jobs == nil {
		return nil, fmt.Errorf("job store is required")
	}
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if retention <= 0 {
		retention = defaultJobRetention
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Sweeper{
		jobs:      jobs,
		logger:    logger,
		interval:  interval,
		retention: retention,
	}, nil
}

func (s *Sweeper) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

func (s *Sweeper) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.sweep(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("job sweep failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.sweep(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.Error("job sweep failed", zap.Error(err))
			}
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) error {
	removed, err := s.jobs.Sweep(ctx, s.retention)
	if err != nil {
		return fmt.Errorf("failed to sweep finished jobs: %w", err)
	}

	s.metrics.AddJobsSwept(removed)
	if removed > 0 {
		s.logger.Info("swept finished jobs",
			zap.Int("removed", removed),
			zap.Duration("retention", s.retention),
		)
	}
	return nil
}
