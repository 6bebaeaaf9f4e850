package pkg

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/edstack/exam-service/internal/config"
	"github.com/edstack/exam-service/internal/models"
)

// InitDatabase opens the Postgres connection, tunes the pool, and runs
// the schema migration.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.Environment == "development" {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Course{},
		&models.Subject{},
		&models.Batch{},
		&models.User{},
		&models.StudentProfile{},
		&models.Staff{},
		&models.Question{},
		&models.Test{},
		&models.TestQuestion{},
		&models.TestAttempt{},
		&models.UserAnswer{},
		&models.Notification{},
		&models.Video{},
	); err != nil {
		return err
	}

	// One finished attempt per student per test. AutoMigrate cannot express
	// a partial unique index, so it is created directly.
	return db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_one_completed_attempt
		ON test_attempts (test_id, student_id)
		WHERE is_completed
	`).Error
}
