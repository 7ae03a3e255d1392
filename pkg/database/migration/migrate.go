package migration

import (
	"log"

	"github.com/openfable/openfable/pkg/database/models"
	"gorm.io/gorm"
)

func RunMigration(db *gorm.DB) error {

	log.Println("Running database migrations...")

	// Auto-migrate the models
	if err := db.AutoMigrate(
		&models.Registry{},
		&models.Character{},
	); err != nil {
		return err
	}

	log.Println("Migrations completed successfully!")
	return nil
}
