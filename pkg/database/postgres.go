package database

import (
	"log"

	"github.com/roomstay/booking-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Room{},
		&models.User{},
		&models.Booking{},
		&models.Dispute{},
		&models.Transaction{},
	); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// Partial unique index: at most one open dispute per booking
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_dispute_open
		ON disputes (booking_id)
		WHERE status = 'PENDING'
	`)

	return db
}
