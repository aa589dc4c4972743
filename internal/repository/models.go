package repository

import (
	"time"

	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/domain"
	"gorm.io/gorm"
)

// UserModel is the persistence model for the users table (landlords).
type UserModel struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Name      string `gorm:"type:varchar(255);not null"`
	Email     string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone     string `gorm:"type:varchar(32)"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (UserModel) TableName() string {
	return "users"
}

// PropertyModel is the persistence model for properties.
type PropertyModel struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	LandlordID string `gorm:"type:uuid;not null;index"`
	Name       string `gorm:"type:varchar(255);not null"`
	Address    string `gorm:"type:text"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (PropertyModel) TableName() string {
	return "properties"
}

// TenantModel is the persistence model for tenants.
type TenantModel struct {
	ID                 string         `gorm:"type:uuid;primaryKey"`
	LandlordID         string         `gorm:"type:uuid;not null;index"`
	PropertyID         *string        `gorm:"type:uuid"`
	Property           *PropertyModel `gorm:"foreignKey:PropertyID"`
	Name               string         `gorm:"type:varchar(255);not null"`
	Phone              string         `gorm:"type:varchar(32);not null"`
	Email              string         `gorm:"type:varchar(255)"`
	UnitNumber         string         `gorm:"type:varchar(32)"`
	RentAmount         int64          `gorm:"not null;default:0"`
	Currency           string         `gorm:"type:varchar(3);not null;default:'UGX'"`
	RentDueDay         int            `gorm:"not null;default:1"`
	LastReminderSentAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

func (TenantModel) TableName() string {
	return "tenants"
}

// ReminderLogModel is the persistence model for the per-recipient reminder audit trail.
type ReminderLogModel struct {
	ID         string                `gorm:"type:uuid;primaryKey"`
	JobID      string                `gorm:"type:uuid;not null;index"`
	LandlordID string                `gorm:"type:uuid;not null"`
	TenantID   string                `gorm:"type:uuid;not null"`
	Method     domain.Method         `gorm:"type:varchar(10);not null"`
	Period     string                `gorm:"type:varchar(7);not null"`
	Status     domain.DeliveryStatus `gorm:"type:varchar(10);not null"`
	Cost       float64               `gorm:"not null;default:0"`
	MessageID  *string               `gorm:"type:varchar(255)"`
	Error      *string               `gorm:"type:text"`
	CreatedAt  time.Time
}

func (ReminderLogModel) TableName() string {
	return "reminder_logs"
}

// EventLogModel is the persistence model for landlord-scoped audit events.
type EventLogModel struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	LandlordID string `gorm:"type:uuid;not null"`
	Action     string `gorm:"type:varchar(64);not null"`
	Details    string `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt  time.Time
}

func (EventLogModel) TableName() string {
	return "event_logs"
}

func landlordModelToDomain(m *UserModel) *domain.Landlord {
	if m == nil {
		return nil
	}

	return &domain.Landlord{
		ID:    m.ID,
		Name:  m.Name,
		Email: m.Email,
		Phone: m.Phone,
	}
}

func tenantModelToDomain(m *TenantModel) *domain.Tenant {
	if m == nil {
		return nil
	}

	t := &domain.Tenant{
		ID:                 m.ID,
		LandlordID:         m.LandlordID,
		Name:               m.Name,
		Phone:              m.Phone,
		Email:              m.Email,
		UnitNumber:         m.UnitNumber,
		RentAmount:         m.RentAmount,
		Currency:           m.Currency,
		RentDueDay:         m.RentDueDay,
		LastReminderSentAt: m.LastReminderSentAt,
	}
	if m.Property != nil {
		t.PropertyName = m.Property.Name
	}
	return t
}

func reminderLogModelFromDomain(l *domain.ReminderLog) *ReminderLogModel {
	if l == nil {
		return nil
	}

	return &ReminderLogModel{
		ID:         l.ID,
		JobID:      l.JobID,
		LandlordID: l.LandlordID,
		TenantID:   l.TenantID,
		Method:     l.Method,
		Period:     l.Period,
		Status:     l.Status,
		Cost:       l.Cost,
		MessageID:  l.MessageID,
		Error:      l.Error,
		CreatedAt:  l.CreatedAt,
	}
}

func eventLogModelFromDomain(e *domain.EventLog) *EventLogModel {
	if e == nil {
		return nil
	}

	return &EventLogModel{
		ID:         e.ID,
		LandlordID: e.LandlordID,
		Action:     e.Action,
		Details:    e.Details,
		CreatedAt:  e.CreatedAt,
	}
}
