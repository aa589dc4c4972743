package service

import (
	"context"
	"sync"
	"time"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/jobstore"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/provider"
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/queue"
)

type fakeLandlordRepo struct {
	getByIDFn func(ctx context.Context, id string) (*domain.Landlord, error)
}

func (f *fakeLandlordRepo) GetByID(ctx context.Context, id string) (*domain.Landlord, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return &domain.Landlord{ID: id, Name: "John Okello", Phone: "+256772000000"}, nil
}

type fakeTenantRepo struct {
	findEligibleFn     func(ctx context.Context, landlordID string, ids []string, method domain.Method) ([]domain.Tenant, error)
	countEligibleFn    func(ctx context.Context, landlordID string, ids []string, method domain.Method) (int64, error)
	markReminderSentFn func(ctx context.Context, id string, sentAt time.Time) error
}

func (f *fakeTenantRepo) FindEligible(ctx context.Context, landlordID string, ids []string, method domain.Method) ([]domain.Tenant, error) {
	if f.findEligibleFn != nil {
		return f.findEligibleFn(ctx, landlordID, ids, method)
	}
	return nil, nil
}

func (f *fakeTenantRepo) CountEligible(ctx context.Context, landlordID string, ids []string, method domain.Method) (int64, error) {
	if f.countEligibleFn != nil {
		return f.countEligibleFn(ctx, landlordID, ids, method)
	}
	return int64(len(ids)), nil
}

func (f *fakeTenantRepo) MarkReminderSent(ctx context.Context, id string, sentAt time.Time) error {
	if f.markReminderSentFn != nil {
		return f.markReminderSentFn(ctx, id, sentAt)
	}
	return nil
}

type fakeAuditRepo struct {
	mu        sync.Mutex
	reminders []domain.ReminderLog
	events    []domain.EventLog

	recordReminderFn func(ctx context.Context, entry *domain.ReminderLog) error
	recordEventFn    func(ctx context.Context, event *domain.EventLog) error
}

func (f *fakeAuditRepo) RecordReminder(ctx context.Context, entry *domain.ReminderLog) error {
	f.mu.Lock()
	f.reminders = append(f.reminders, *entry)
	f.mu.Unlock()
	if f.recordReminderFn != nil {
		return f.recordReminderFn(ctx, entry)
	}
	return nil
}

func (f *fakeAuditRepo) RecordEvent(ctx context.Context, event *domain.EventLog) error {
	f.mu.Lock()
	f.events = append(f.events, *event)
	f.mu.Unlock()
	if f.recordEventFn != nil {
		return f.recordEventFn(ctx, event)
	}
	return nil
}

func (f *fakeAuditRepo) snapshot() ([]domain.ReminderLog, []domain.EventLog) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ReminderLog(nil), f.reminders...), append([]domain.EventLog(nil), f.events...)
}

type fakeSender struct {
	sendFn func(ctx context.Context, msg domain.Message) (*provider.Outcome, error)
}

func (f *fakeSender) Send(ctx context.Context, msg domain.Message) (*provider.Outcome, error) {
	if f.sendFn != nil {
		return f.sendFn(ctx, msg)
	}
	return &provider.Outcome{StatusCode: 200, Cost: 35}, nil
}

type fakeRateLimiter struct {
	waitFn func(ctx context.Context, method domain.Method) error
}

func (f *fakeRateLimiter) Wait(ctx context.Context, method domain.Method) error {
	if f.waitFn != nil {
		return f.waitFn(ctx, method)
	}
	return nil
}

type fakeEventPublisher struct {
	mu        sync.Mutex
	published []queue.JobCompletedEvent
	publishFn func(ctx context.Context, event queue.JobCompletedEvent) error
}

func (f *fakeEventPublisher) PublishJobCompleted(ctx context.Context, event queue.JobCompletedEvent) error {
	f.mu.Lock()
	f.published = append(f.published, event)
	f.mu.Unlock()
	if f.publishFn != nil {
		return f.publishFn(ctx, event)
	}
	return nil
}

func (f *fakeEventPublisher) Close() error { return nil }

func (f *fakeEventPublisher) events() []queue.JobCompletedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]queue.JobCompletedEvent(nil), f.published...)
}

type fakeFeatures struct {
	states  map[string]domain.FeatureState
	checkFn func(ctx context.Context, key string) (domain.FeatureState, error)
}

func (f *fakeFeatures) Check(ctx context.Context, key string) (domain.FeatureState, error) {
	if f.checkFn != nil {
		return f.checkFn(ctx, key)
	}
	if state, ok := f.states[key]; ok {
		return state, nil
	}
	return domain.FeatureState{Key: key, Enabled: true}, nil
}

type fakeRunner struct {
	mu    sync.Mutex
	runs  []DispatchRequest
	runFn func(ctx context.Context, req DispatchRequest)
}

func (f *fakeRunner) Run(ctx context.Context, req DispatchRequest) {
	f.mu.Lock()
	f.runs = append(f.runs, req)
	f.mu.Unlock()
	if f.runFn != nil {
		f.runFn(ctx, req)
	}
}

func (f *fakeRunner) requests() []DispatchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]DispatchRequest(nil), f.runs...)
}

type fakeJobStore struct {
	jobstore.Store
	sweepFn func(ctx context.Context, retention time.Duration) (int, error)
}

func (f *fakeJobStore) Sweep(ctx context.Context, retention time.Duration) (int, error) {
	if f.sweepFn != nil {
		return f.sweepFn(ctx, retention)
	}
	return 0, nil
}

func tenantFixture(id, name string) domain.Tenant {
	return domain.Tenant{
		ID:           id,
		LandlordID:   "landlord-1",
		Name:         name,
		Phone:        "+2567000000" + id[len(id)-1:],
		Email:        id + "@example.com",
		UnitNumber:   "4B",
		PropertyName: "Kololo Heights",
		RentAmount:   1_200_000,
		Currency:     "UGX",
		RentDueDay:   28,
	}
}
