package migrations

import (
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/repository"
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func createReminderLogs() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_reminder_logs",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.ReminderLogModel{}); err != nil {
				return err
			}
			return execAll(tx, []string{
				`CREATE INDEX IF NOT EXISTS idx_reminder_logs_tenant_created ON reminder_logs (tenant_id, created_at)`,
				`CREATE INDEX IF NOT EXISTS idx_reminder_logs_landlord_period ON reminder_logs (landlord_id, period)`,
			})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.ReminderLogModel{})
		},
	}
}
