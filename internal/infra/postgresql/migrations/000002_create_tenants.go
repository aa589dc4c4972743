package migrations

import (
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/repository"
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func createTenants() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_tenants",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.TenantModel{}); err != nil {
				return err
			}
			return execAll(tx, []string{
				`CREATE INDEX IF NOT EXISTS idx_tenants_landlord_active ON tenants (landlord_id) WHERE deleted_at IS NULL`,
				`CREATE INDEX IF NOT EXISTS idx_tenants_property_id ON tenants (property_id) WHERE property_id IS NOT NULL`,
			})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.TenantModel{})
		},
	}
}
