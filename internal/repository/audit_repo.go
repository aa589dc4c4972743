package repository

import (
	"context"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
	"gorm.io/gorm"
)

// AuditRepository is the durable delivery history. Reminder jobs themselves are not persisted.
type AuditRepository interface {
	RecordReminder(ctx context.Context, entry *domain.ReminderLog) error
	RecordEvent(ctx context.Context, event *domain.EventLog) error
}

type GormAuditRepo struct {
	db *gorm.DB
}

func NewGormAuditRepo(db *gorm.DB) *GormAuditRepo {
	return &GormAuditRepo{db: db}
}

func (r *GormAuditRepo) RecordReminder(ctx context.Context, entry *domain.ReminderLog) error {
	return r.db.WithContext(ctx).Create(reminderLogModelFromDomain(entry)).Error
}

func (r *GormAuditRepo) RecordEvent(ctx context.Context, event *domain.EventLog) error {
	return r.db.WithContext(ctx).Create(eventLogModelFromDomain(event)).Error
}
