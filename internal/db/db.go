package db

import (
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/salonflow/salon-api/internal/config"
	"github.com/salonflow/salon-api/internal/models"
	"github.com/salonflow/salon-api/internal/timezone"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt:    true,
		TranslateError: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get sql.DB")
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Service{},
		&models.OrganizationAvailability{},
		&models.Appointment{},
		&models.AppointmentService{},
		&models.Transaction{},
		&models.AuditLog{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate")
	}

	db.Exec(
		"UPDATE organizations SET timezone = ? WHERE timezone IS NULL OR timezone = ''",
		timezone.DefaultTimezone,
	)

	return db
}
