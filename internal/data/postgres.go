package data

import (
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/veristudy/veristudy-backend/internal/data/repos"
	"github.com/veristudy/veristudy-backend/internal/platform/logger"
)

// NewPostgres opens the postgres connection from DATABASE_URL and migrates
// the job and pack tables.
func NewPostgres(log *logger.Logger) (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("missing DATABASE_URL")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&repos.JobRecord{}, &repos.PackRecord{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("Connected to postgres")
	return db, nil
}
