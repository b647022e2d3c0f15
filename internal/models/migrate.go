package models

import (
	"log"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the database schema.
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	if err := db.AutoMigrate(&User{}, &Item{}, &Preference{}); err != nil {
		return err
	}

	log.Println("Database migrations completed successfully")
	return nil
}
