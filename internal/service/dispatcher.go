package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/jobstore"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/observability"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/provider"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/queue"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/ratelimit"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/reminder"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultSendTimeout     = 15 * time.Second
	finalizeTimeout        = 10 * time.Second
	reasonNoEligible       = "no eligible tenants found"
	failureReasonRender    = "render_error"
	failureReasonThrottled = "rate_limited"
	failureReasonPanic     = "internal_error"
)

var errNoEligibleTenants = errors.New(reasonNoEligible)

// DispatchRequest identifies one bulk reminder job to execute.
type DispatchRequest struct {
	JobID     string
	UserID    string
	TenantIDs []string
	Method    domain.Method
	Period    string
}

// DispatcherConfig tunes per-recipient pacing.
type DispatcherConfig struct {
	// SendDelay is the pause between consecutive sends within one job.
	SendDelay time.Duration
	// SendTimeout bounds a single gateway call.
	SendTimeout time.Duration
}

// Dispatcher sends the reminders of one job sequentially and keeps the job registry current.
type Dispatcher struct {
	landlords   repository.LandlordRepository
	tenants     repository.TenantRepository
	audit       repository.AuditRepository
	jobs        jobstore.Store
	senders     provider.Registry
	rateLimiter ratelimit.RateLimiter
	events      queue.EventPublisher
	logger      *zap.Logger
	metrics     *observability.Metrics
	sendDelay   time.Duration
	sendTimeout time.Duration
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewDispatcher(
	landlords repository.LandlordRepository,
	tenants repository.TenantRepository,
	audit repository.AuditRepository,
	jobs jobstore.Store,
	senders provider.Registry,
	rateLimiter ratelimit.RateLimiter,
	events queue.EventPublisher,
	cfg DispatcherConfig,
	logger *zap.Logger,
) (*Dispatcher, error) {
	if landlords == nil || tenants == nil || audit == nil {
		return nil, fmt.Errorf("landlord, tenant and audit repositories are required")
	}
	if jobs == nil {
		return nil, fmt.Errorf("job store is required")
	}
	if len(senders) == 0 {
		return nil, fmt.Errorf("at least one sender is required")
	}
	if rateLimiter == nil {
		rateLimiter = ratelimit.Unlimited{}
	}
	if events == nil {
		events = queue.NoopPublisher{}
	}
	if cfg.SendDelay < 0 {
		cfg.SendDelay = 0
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{
		landlords:   landlords,
		tenants:     tenants,
		audit:       audit,
		jobs:        jobs,
		senders:     senders,
		rateLimiter: rateLimiter,
		events:      events,
		logger:      logger,
		sendDelay:   cfg.SendDelay,
		sendTimeout: cfg.SendTimeout,
		now:         time.Now,
		sleep:       sleepContext,
	}, nil
}

func (d *Dispatcher) SetMetrics(metrics *observability.Metrics) {
	if d == nil {
		return
	}
	d.metrics = metrics
}

// Run executes the job to a terminal status. It never returns with the job still processing.
func (d *Dispatcher) Run(ctx context.Context, req DispatchRequest) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(req.Period) == "" {
		req.Period = domain.CurrentPeriod(d.now())
	}

	method := req.Method.String()
	logger := observability.JobLogger(d.logger, ctx, req.JobID, req.UserID).
		With(zap.String("method", method))

	d.metrics.IncJobsInFlight(method)
	defer d.metrics.DecJobsInFlight(method)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("reminder dispatch panicked", zap.Any("panic", r), zap.Stack("stack"))
			d.fail(ctx, req, fmt.Sprintf("internal error: %v", r), logger)
		}
	}()

	logger.Info("reminder dispatch started", zap.Int("requested", len(req.TenantIDs)))

	if err := d.dispatch(ctx, req, logger); err != nil {
		if errors.Is(err, errNoEligibleTenants) {
			logger.Warn("reminder dispatch found no eligible tenants")
		} else {
			logger.Error("reminder dispatch failed", zap.Error(err))
		}
		d.fail(ctx, req, err.Error(), logger)
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, req DispatchRequest, logger *zap.Logger) error {
	sender, ok := d.senders.For(req.Method)
	if !ok {
		return fmt.Errorf("no sender configured for %s", req.Method)
	}

	landlord, err := d.landlords.GetByID(ctx, req.UserID)
	if err != nil {
		return fmt.Errorf("failed to load landlord: %w", err)
	}

	tenants, err := d.tenants.FindEligible(ctx, req.UserID, req.TenantIDs, req.Method)
	if err != nil {
		return fmt.Errorf("failed to load tenants: %w", err)
	}

	total := len(tenants)
	if err := d.jobs.Update(ctx, req.JobID, func(job *domain.Job) { job.Total = total }); err != nil {
		return fmt.Errorf("failed to update job total: %w", err)
	}
	if total == 0 {
		return errNoEligibleTenants
	}

	for i := range tenants {
		if i > 0 && d.sendDelay > 0 {
			if err := d.sleep(ctx, d.sendDelay); err != nil {
				return fmt.Errorf("dispatch interrupted: %w", err)
			}
		}

		result := d.deliver(ctx, req, landlord, tenants[i], sender, logger)
		if err := d.jobs.Update(ctx, req.JobID, func(job *domain.Job) { job.Record(result) }); err != nil {
			logger.Warn("failed to record recipient result",
				zap.String("tenantId", result.TenantID),
				zap.Error(err),
			)
		}
	}

	var finished *domain.Job
	err = d.jobs.Update(ctx, req.JobID, func(job *domain.Job) {
		job.Complete(d.now())
		finished = job.Clone()
	})
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	d.finish(ctx, finished, logger)
	return nil
}

// deliver handles one tenant. Every outcome, including a panic, becomes a recipient result.
func (d *Dispatcher) deliver(
	ctx context.Context,
	req DispatchRequest,
	landlord *domain.Landlord,
	tenant domain.Tenant,
	sender provider.Sender,
	logger *zap.Logger,
) (result domain.RecipientResult) {
	method := req.Method.String()
	logger = logger.With(zap.String("tenantId", tenant.ID))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("reminder delivery panicked", zap.Any("panic", r))
			reason := fmt.Sprintf("internal error: %v", r)
			d.recordReminder(ctx, req, tenant, domain.DeliveryFailed, 0, "", reason, logger)
			d.metrics.IncReminderFailed(method, failureReasonPanic)
			result = domain.FailedResult(tenant.ID, tenant.Name, reason)
		}
	}()

	if err := d.rateLimiter.Wait(ctx, req.Method); err != nil {
		reason := fmt.Sprintf("rate limiter unavailable: %v", err)
		d.recordReminder(ctx, req, tenant, domain.DeliveryFailed, 0, "", reason, logger)
		d.metrics.IncReminderFailed(method, failureReasonThrottled)
		return domain.FailedResult(tenant.ID, tenant.Name, reason)
	}

	var owner domain.Landlord
	if landlord != nil {
		owner = *landlord
	}
	msg, err := reminder.Render(reminder.Input{
		Method:   req.Method,
		Tenant:   tenant,
		Landlord: owner,
		Period:   req.Period,
	})
	if err != nil {
		reason := fmt.Sprintf("failed to render reminder: %v", err)
		d.recordReminder(ctx, req, tenant, domain.DeliveryFailed, 0, "", reason, logger)
		d.metrics.IncReminderFailed(method, failureReasonRender)
		return domain.FailedResult(tenant.ID, tenant.Name, reason)
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	sendStart := d.now()
	outcome, sendErr := sender.Send(sendCtx, msg)
	timedOut := errors.Is(sendCtx.Err(), context.DeadlineExceeded)
	cancel()
	d.metrics.ObserveReminderSendDuration(method, d.now().Sub(sendStart))

	if sendErr == nil && timedOut {
		sendErr = context.DeadlineExceeded
	}
	if sendErr != nil {
		reason := provider.FailureReason(sendErr)
		errText := sendErr.Error()
		if timedOut || reason == provider.ReasonTimeout {
			reason = provider.ReasonTimeout
			errText = fmt.Sprintf("send timed out after %s", d.sendTimeout)
		}

		logger.Warn("reminder send failed", zap.String("reason", reason), zap.Error(sendErr))
		d.recordReminder(ctx, req, tenant, domain.DeliveryFailed, 0, "", errText, logger)
		d.metrics.IncReminderFailed(method, reason)
		return domain.FailedResult(tenant.ID, tenant.Name, errText)
	}

	var cost float64
	var messageID string
	if outcome != nil {
		cost = outcome.Cost
		messageID = outcome.MessageID
	}

	d.recordReminder(ctx, req, tenant, domain.DeliverySent, cost, messageID, "", logger)
	if err := d.tenants.MarkReminderSent(ctx, tenant.ID, d.now().UTC()); err != nil {
		logger.Warn("failed to stamp tenant reminder time", zap.Error(err))
	}
	d.metrics.IncReminderSent(method, cost)

	return domain.SentResult(tenant.ID, tenant.Name, cost)
}

func (d *Dispatcher) recordReminder(
	ctx context.Context,
	req DispatchRequest,
	tenant domain.Tenant,
	status domain.DeliveryStatus,
	cost float64,
	messageID string,
	errText string,
	logger *zap.Logger,
) {
	entry := &domain.ReminderLog{
		ID:         uuid.NewString(),
		JobID:      req.JobID,
		LandlordID: req.UserID,
		TenantID:   tenant.ID,
		Method:     req.Method,
		Period:     req.Period,
		Status:     status,
		Cost:       cost,
		CreatedAt:  d.now().UTC(),
	}
	if id := strings.TrimSpace(messageID); id != "" {
		entry.MessageID = &id
	}
	if errText != "" {
		entry.Error = &errText
	}

	if err := d.audit.RecordReminder(ctx, entry); err != nil {
		logger.Warn("failed to write reminder log", zap.String("status", status.String()), zap.Error(err))
	}
}

func (d *Dispatcher) fail(ctx context.Context, req DispatchRequest, reason string, logger *zap.Logger) {
	var finished *domain.Job
	err := d.jobs.Update(ctx, req.JobID, func(job *domain.Job) {
		job.Fail(d.now(), reason)
		finished = job.Clone()
	})
	if err != nil {
		logger.Error("failed to mark job as failed", zap.Error(err))
		return
	}

	d.finish(ctx, finished, logger)
}

// finish writes the audit summary and announces the terminal job. Both steps are best effort.
func (d *Dispatcher) finish(ctx context.Context, job *domain.Job, logger *zap.Logger) {
	if job == nil {
		logger.Warn("job disappeared before it finished")
		return
	}

	d.metrics.IncJobFinished(job.Method.String(), job.Status.String())
	logger.Info("reminder dispatch finished",
		zap.String("status", job.Status.String()),
		zap.Int("total", job.Total),
		zap.Int("sent", job.Sent),
		zap.Int("failed", job.Failed),
		zap.Float64("totalCost", job.TotalCost),
	)

	// Detach from the caller so a cancelled dispatch still records its outcome.
	finalizeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()

	if job.Status == domain.JobStatusCompleted {
		if err := d.recordSummary(finalizeCtx, job); err != nil {
			logger.Warn("failed to write bulk reminder event", zap.Error(err))
		}
	}

	event, err := queue.NewJobCompletedEvent(job)
	if err != nil {
		logger.Warn("failed to build job event", zap.Error(err))
		return
	}
	if err := d.events.PublishJobCompleted(finalizeCtx, event); err != nil {
		logger.Warn("failed to publish job event", zap.Error(err))
	}
}

type bulkReminderSummary struct {
	JobID     string  `json:"jobId"`
	Method    string  `json:"method"`
	Period    string  `json:"period"`
	Total     int     `json:"total"`
	Sent      int     `json:"sent"`
	Failed    int     `json:"failed"`
	TotalCost float64 `json:"totalCost"`
}

func (d *Dispatcher) recordSummary(ctx context.Context, job *domain.Job) error {
	details, err := json.Marshal(bulkReminderSummary{
		JobID:     job.ID,
		Method:    job.Method.String(),
		Period:    job.Period,
		Total:     job.Total,
		Sent:      job.Sent,
		Failed:    job.Failed,
		TotalCost: job.TotalCost,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	return d.audit.RecordEvent(ctx, &domain.EventLog{
		ID:         uuid.NewString(),
		LandlordID: job.UserID,
		Action:     domain.EventBulkReminderSent,
		Details:    string(details),
		CreatedAt:  d.now().UTC(),
	})
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
