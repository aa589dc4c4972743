package repository

import (
	"context"
	"errors"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
	"gorm.io/gorm"
)

type LandlordRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Landlord, error)
}

type GormLandlordRepo struct {
	db *gorm.DB
}

func NewGormLandlordRepo(db *gorm.DB) *GormLandlordRepo {
	return &GormLandlordRepo{db: db}
}

func (r *GormLandlordRepo) GetByID(ctx context.Context, id string) (*domain.Landlord, error) {
	var model UserModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return landlordModelToDomain(&model), nil
}
