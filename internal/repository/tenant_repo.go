package repository

import (
	"context"
	"strings"
	"time"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TenantRepository interface {
	// FindEligible returns the owner's non-deleted tenants among ids, ordered as ids.
	// For email only tenants with a non-empty address are returned.
	FindEligible(ctx context.Context, landlordID string, ids []string, method domain.Method) ([]domain.Tenant, error)
	CountEligible(ctx context.Context, landlordID string, ids []string, method domain.Method) (int64, error)
	MarkReminderSent(ctx context.Context, id string, sentAt time.Time) error
}

type GormTenantRepo struct {
	db *gorm.DB
}

func NewGormTenantRepo(db *gorm.DB) *GormTenantRepo {
	return &GormTenantRepo{db: db}
}

func (r *GormTenantRepo) eligibleQuery(ctx context.Context, landlordID string, ids []string, method domain.Method) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&TenantModel{}).
		Where("landlord_id = ?", landlordID).
		Where("id IN ?", ids)

	if method == domain.MethodEmail {
		query = query.Where("email IS NOT NULL AND TRIM(email) <> ''")
	}
	return query
}

func (r *GormTenantRepo) FindEligible(
	ctx context.Context,
	landlordID string,
	ids []string,
	method domain.Method,
) ([]domain.Tenant, error) {
	ids = uuidIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	var models []TenantModel
	err := r.eligibleQuery(ctx, landlordID, ids, method).
		Preload("Property").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*TenantModel, len(models))
	for i := range models {
		byID[models[i].ID] = &models[i]
	}

	tenants := make([]domain.Tenant, 0, len(models))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			tenants = append(tenants, *tenantModelToDomain(m))
			delete(byID, id)
		}
	}

	return tenants, nil
}

func (r *GormTenantRepo) CountEligible(
	ctx context.Context,
	landlordID string,
	ids []string,
	method domain.Method,
) (int64, error) {
	ids = uuidIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}

	var count int64
	if err := r.eligibleQuery(ctx, landlordID, ids, method).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormTenantRepo) MarkReminderSent(ctx context.Context, id string, sentAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&TenantModel{}).
		Where("id = ?", id).
		Update("last_reminder_sent_at", sentAt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// uuidIDs drops ids that cannot match a uuid primary key, so a stray value does not fail the whole query.
// Survivors are returned in canonical lowercase form, the form Postgres returns them in.
func uuidIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if parsed, err := uuid.Parse(strings.TrimSpace(id)); err == nil {
			out = append(out, parsed.String())
		}
	}
	return out
}
