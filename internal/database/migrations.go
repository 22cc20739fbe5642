package database

import (
	"github.com/Vishwajit-29/AgroRent/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Equipment{},
		&models.Booking{},
	)
	if err != nil {
		return err
	}

	// Ratings were added after the first deployment
	if db.Migrator().HasTable(&models.User{}) {
		columns := []string{
			"ADD COLUMN IF NOT EXISTS rating numeric DEFAULT 0",
			"ADD COLUMN IF NOT EXISTS total_ratings integer DEFAULT 0",
		}

		for _, column := range columns {
			if err := db.Exec("ALTER TABLE users " + column).Error; err != nil {
				return err
			}
		}
	}

	if db.Migrator().HasTable(&models.Booking{}) {
		db.Exec(`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_status_check`)
		db.Exec(`ALTER TABLE bookings ADD CONSTRAINT bookings_status_check CHECK (status IN ('pending', 'approved', 'rejected', 'active', 'completed', 'cancelled'))`)
	}

	return nil
}
