package database

import (
	"fmt"
	"time"

	"github.com/Mitchkal/alx-travel-app-0x03/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// constraints are the invariants gorm tags cannot express.
var constraints = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,

	// No two active bookings on one listing may share a night.
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_no_overlap') THEN
			ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
			EXCLUDE USING gist (
				listing_id WITH =,
				daterange(start_date, end_date, '[)') WITH &&
			) WHERE (status IN ('PENDING', 'CONFIRMED'));
		END IF;
	END $$`,

	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_valid_range') THEN
			ALTER TABLE bookings ADD CONSTRAINT bookings_valid_range CHECK (start_date < end_date);
		END IF;
	END $$`,

	// At most one non-FAILED payment per booking.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_payment_active
		ON payments (booking_id)
		WHERE status <> 'FAILED'`,
}

// Migrate creates the tables and the constraints gorm cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Listing{}, &models.Booking{}, &models.Payment{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	for _, stmt := range constraints {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply constraint: %w", err)
		}
	}
	return nil
}
