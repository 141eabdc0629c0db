package database

import (
	"github.com/adomtravels/adomtravels-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.BookingRequest{},
		&models.BookingStatusHistory{},
		&models.QuoteRequest{},
		&models.QuoteStatusHistory{},
		&models.ProcessedPayment{},
	)
	if err != nil {
		return err
	}

	// Update users table
	if db.Migrator().HasTable(&models.User{}) {
		db.Exec(`ALTER TABLE users DROP CONSTRAINT IF EXISTS users_user_type_check`)
		db.Exec(`ALTER TABLE users ADD CONSTRAINT users_user_type_check CHECK (user_type IN ('customer', 'admin'))`)
	}

	// Earlier deployments created reference_number as varchar(20), which
	// truncated references once the random suffix was lengthened. Widen it.
	for _, table := range []string{"booking_requests", "quote_requests"} {
		if err := db.Exec(`ALTER TABLE ` + table + ` ALTER COLUMN reference_number TYPE varchar(50)`).Error; err != nil {
			return err
		}
	}

	return nil
}
