package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/jobstore"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBulkTenants = 1000

// FeatureChecker reports whether a feature toggle is on.
type FeatureChecker interface {
	Check(ctx context.Context, key string) (domain.FeatureState, error)
}

// JobRunner executes a registered job to completion.
type JobRunner interface {
	Run(ctx context.Context, req DispatchRequest)
}

type ReminderService struct {
	tenants  repository.TenantRepository
	jobs     jobstore.Store
	features FeatureChecker
	runner   JobRunner
	logger   *zap.Logger
	now      func() time.Time

	inflight sync.WaitGroup
}

type BulkRequest struct {
	TenantIDs []string
	Method    string
	Period    string
}

type BulkAccepted struct {
	JobID    string
	Eligible int
	Method   domain.Method
	Period   string
	Status   domain.JobStatus
	Message  string
}

type JobSummary struct {
	JobID       string
	Status      domain.JobStatus
	Method      domain.Method
	Period      string
	Total       int
	Sent        int
	Failed      int
	TotalCost   float64
	Progress    int
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

type JobDetails struct {
	JobSummary
	Details []domain.RecipientResult
}

func NewReminderService(
	tenants repository.TenantRepository,
	jobs jobstore.Store,
	features FeatureChecker,
	runner JobRunner,
	logger *zap.Logger,
) (*ReminderService, error) {
	if tenants == nil {
		return nil, fmt.Errorf("tenant repository is required")
	}
	if jobs == nil {
		return nil, fmt.Errorf("job store is required")
	}
	if features == nil {
		return nil, fmt.Errorf("feature checker is required")
	}
	if runner == nil {
		return nil, fmt.Errorf("job runner is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ReminderService{
		tenants:  tenants,
		jobs:     jobs,
		features: features,
		runner:   runner,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// SubmitBulk validates the request, registers a job and starts dispatching it in the background.
func (s *ReminderService) SubmitBulk(ctx context.Context, userID string, req BulkRequest) (*BulkAccepted, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	method, err := domain.ParseMethodFromString(req.Method)
	if err != nil {
		return nil, err
	}

	tenantIDs := dedupeIDs(req.TenantIDs)
	if len(tenantIDs) == 0 {
		return nil, fmt.Errorf("%w: tenantIds must contain at least one tenant", domain.ErrValidation)
	}
	if len(tenantIDs) > maxBulkTenants {
		return nil, fmt.Errorf("%w: at most %d tenants per request", domain.ErrValidation, maxBulkTenants)
	}

	period, err := domain.ParsePeriod(req.Period, s.now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.ensureEnabled(ctx, method); err != nil {
		return nil, err
	}

	eligible := len(tenantIDs)
	if method == domain.MethodEmail {
		count, err := s.tenants.CountEligible(ctx, userID, tenantIDs, method)
		if err != nil {
			return nil, fmt.Errorf("failed to count email recipients: %w", err)
		}
		if count == 0 {
			return nil, fmt.Errorf("%w: none of the selected tenants have an email address", domain.ErrValidation)
		}
		eligible = int(count)
	}

	job, err := s.jobs.Create(ctx, jobstore.NewJob{
		ID:     uuid.NewString(),
		UserID: userID,
		Method: method,
		Period: period,
		Total:  eligible,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register reminder job: %w", err)
	}

	dispatch := DispatchRequest{
		JobID:     job.ID,
		UserID:    userID,
		TenantIDs: tenantIDs,
		Method:    method,
		Period:    period,
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		// The request context ends with the HTTP response; the job must outlive it.
		s.runner.Run(context.WithoutCancel(ctx), dispatch)
	}()

	s.logger.Info("bulk reminder accepted",
		zap.String("jobId", job.ID),
		zap.String("userId", userID),
		zap.String("method", method.String()),
		zap.String("period", period),
		zap.Int("eligible", eligible),
	)

	return &BulkAccepted{
		JobID:    job.ID,
		Eligible: eligible,
		Method:   method,
		Period:   period,
		Status:   job.Status,
		Message:  fmt.Sprintf("Sending %s reminders to %d %s", method, eligible, pluralTenants(eligible)),
	}, nil
}

func (s *ReminderService) GetJobStatus(ctx context.Context, userID string, jobID string) (*JobSummary, error) {
	job, err := s.ownedJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}

	summary := summarize(job)
	return &summary, nil
}

func (s *ReminderService) GetJobDetails(ctx context.Context, userID string, jobID string) (*JobDetails, error) {
	job, err := s.ownedJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}

	return &JobDetails{
		JobSummary: summarize(job),
		Details:    job.Details,
	}, nil
}

// Wait blocks until every dispatch started by SubmitBulk has finished.
func (s *ReminderService) Wait() {
	s.inflight.Wait()
}

func (s *ReminderService) ownedJob(ctx context.Context, userID string, jobID string) (*domain.Job, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, fmt.Errorf("%w: job id is required", domain.ErrValidation)
	}

	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	// Another landlord's job is indistinguishable from a missing one.
	if job.UserID != strings.TrimSpace(userID) {
		return nil, fmt.Errorf("%w: job %s", domain.ErrNotFound, jobID)
	}
	return job, nil
}

func (s *ReminderService) ensureEnabled(ctx context.Context, method domain.Method) error {
	state, err := s.features.Check(ctx, method.FeatureKey())
	if err != nil {
		return fmt.Errorf("failed to check %s availability: %w", method, err)
	}
	if state.Enabled {
		return nil
	}

	message := state.Message
	if strings.TrimSpace(message) == "" {
		message = fmt.Sprintf("%s reminders are temporarily unavailable.", methodLabel(method))
	}

	suggestion := "Please try again later."
	alternative := method.Alternative()
	altState, err := s.features.Check(ctx, alternative.FeatureKey())
	if err != nil {
		s.logger.Warn("failed to check alternative method",
			zap.String("method", alternative.String()),
			zap.Error(err),
		)
	} else if altState.Enabled {
		suggestion = fmt.Sprintf("Try sending via %s instead.", alternative)
	}

	return &domain.FeatureDisabledError{
		Feature:    method.FeatureKey(),
		Message:    message,
		Suggestion: suggestion,
	}
}

func summarize(job *domain.Job) JobSummary {
	return JobSummary{
		JobID:       job.ID,
		Status:      job.Status,
		Method:      job.Method,
		Period:      job.Period,
		Total:       job.Total,
		Sent:        job.Sent,
		Failed:      job.Failed,
		TotalCost:   job.TotalCost,
		Progress:    job.Progress(),
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
		Error:       job.Error,
	}
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func methodLabel(method domain.Method) string {
	if method == domain.MethodSMS {
		return "SMS"
	}
	return "Email"
}

func pluralTenants(n int) string {
	if n == 1 {
		return "tenant"
	}
	return "tenants"
}
