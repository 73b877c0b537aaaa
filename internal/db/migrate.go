package db

import (
	"fmt"

	"budgeter/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate runs database migrations for all models
func Migrate(gdb *gorm.DB, log *logrus.Entry) error {
	log.Info("Starting database migration...")

	// List of all models to migrate
	models := []interface{}{
		&model.User{},
		&model.AuthEvent{},
	}

	// Run AutoMigrate for all models
	if err := gdb.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Infof("✓ Database migration completed successfully (%d tables)", len(models))
	return nil
}
