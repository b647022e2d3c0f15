package database

import (
	"log"

	"github.com/clouddrive/backend/internal/config"
	"github.com/clouddrive/backend/internal/models"
)

const jwtSecretKey = "jwt_secret"

// EnsureJWTSecret ensures the JWT secret is persisted in the database so
// sessions survive restarts. Returns the secret to use. The preferences
// table is created by models.AutoMigrate.
func EnsureJWTSecret(cfg *config.Config) string {
	if DB == nil {
		log.Println("Warning: Database not connected, cannot persist JWT secret")
		return cfg.JWTSecret
	}

	var pref models.Preference
	result := DB.Where("key = ?", jwtSecretKey).First(&pref)

	if result.Error == nil && pref.Value != "" {
		log.Println("JWT secret loaded from database - sessions will persist across restarts")
		return pref.Value
	}

	pref = models.Preference{
		Key:   jwtSecretKey,
		Value: cfg.JWTSecret,
	}

	if err := DB.Create(&pref).Error; err != nil {
		// Try update if create fails (race condition)
		DB.Model(&models.Preference{}).Where("key = ?", jwtSecretKey).Update("value", cfg.JWTSecret)
	}

	log.Println("JWT secret persisted to database")
	return cfg.JWTSecret
}
