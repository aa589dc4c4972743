package jobstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is a process-local job registry. Jobs are lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return newMemoryStore(time.Now)
}

func newMemoryStore(nowFn func() time.Time) *MemoryStore {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &MemoryStore{
		jobs: make(map[string]*domain.Job),
		now:  nowFn,
	}
}

func (s *MemoryStore) Create(ctx context.Context, job NewJob) (*domain.Job, error) {
	id := strings.TrimSpace(job.ID)
	if id == "" {
		return nil, fmt.Errorf("%w: job id is required", domain.ErrValidation)
	}
	if job.Total < 0 {
		return nil, fmt.Errorf("%w: job total must be >= 0", domain.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; exists {
		return nil, fmt.Errorf("%w: job %s already exists", domain.ErrConflict, id)
	}

	created := &domain.Job{
		ID:        id,
		UserID:    job.UserID,
		Method:    job.Method,
		Period:    job.Period,
		Status:    domain.JobStatusProcessing,
		Total:     job.Total,
		Details:   []domain.RecipientResult{},
		StartedAt: s.now().UTC(),
	}
	s.jobs[id] = created

	return created.Clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, mutate func(*domain.Job)) error {
	if mutate == nil {
		return nil
	}

	id = strings.TrimSpace(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil
	}

	mutate(job)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
	}
	return job.Clone(), nil
}

func (s *MemoryStore) Sweep(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := s.now().UTC().Add(-retention)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, job := range s.jobs {
		if job.CompletedAt == nil || !job.CompletedAt.Before(cutoff) {
			continue
		}
		delete(s.jobs, id)
		removed++
	}

	return removed, nil
}

// Len reports how many jobs are currently tracked.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
