package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"bursary-portal-backend/db/models"

	"gorm.io/gorm"
)

// SeedInitialAdmin puts the account registered under email on the admin
// allow-list. It does nothing when the account is already listed.
func SeedInitialAdmin(db *gorm.DB, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}

	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Initial admin %s has not signed up yet, skipping", email)
		return nil
	}
	if err != nil {
		return fmt.Errorf("error checking for initial admin: %w", err)
	}

	admin := models.AdminUser{UserID: user.ID, Role: models.DefaultAdminRole, CreatedBy: "system"}
	result := db.Where("user_id = ?", user.ID).FirstOrCreate(&admin)
	if result.Error != nil {
		return fmt.Errorf("failed to grant initial admin: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Printf("Initial admin granted: %s", email)
	}
	return nil
}
