package db

import (
	"fmt" // Error wrapping

	"restaurant_system/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
)

// Migrate performs automatic migration for the database schema
func Migrate(gdb *gorm.DB) error {
	// AutoMigrate creates the tables and adds columns missing on older databases (email, avatar_url)
	if err := gdb.AutoMigrate(&domain.User{}, &domain.StateRecord{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	// Rows written before versioning get version 1, the first version clients can match
	res := gdb.Model(&domain.StateRecord{}).Where("version < ?", 1).UpdateColumn("version", 1)
	if res.Error != nil {
		return fmt.Errorf("version legacy state: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		logrus.Info("Legacy state row versioned") // Database from an earlier deployment
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}
