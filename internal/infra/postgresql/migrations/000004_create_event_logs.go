package migrations

import (
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/repository"
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func createEventLogs() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000004_create_event_logs",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.EventLogModel{}); err != nil {
				return err
			}
			return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_event_logs_landlord_created ON event_logs (landlord_id, created_at)`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.EventLogModel{})
		},
	}
}
