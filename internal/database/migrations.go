package database

import (
	"nxdndash/internal/database/models"

	"gorm.io/gorm"
)

// RunMigrations creates or updates the archive schema
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(&models.HeardRecord{})
}
