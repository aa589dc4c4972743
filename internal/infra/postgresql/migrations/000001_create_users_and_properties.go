package migrations

import (
	"github.com/RaymondAkiiki/RentAlert-backend-rric-001/internal/repository"
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func createUsersAndProperties() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_users_and_properties",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&repository.UserModel{}, &repository.PropertyModel{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.PropertyModel{}, &repository.UserModel{})
		},
	}
}
