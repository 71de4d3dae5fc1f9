package config

import (
	"fmt"
	"log"
	"time"

	"bursary-portal-backend/db/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// allModels defines all models that should be migrated.
// This is the only place you need to add new models
var allModels = []interface{}{
	&models.User{},
	&models.AdminUser{},
	&models.Application{},
	&models.ContactSubmission{},
	&models.EmailLog{},
}

func DSN(settings Settings) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		settings.DBHost, settings.DBUser, settings.DBPassword, settings.DBName, settings.DBPort, settings.DBTimezone,
	)
}

func ConfigureDatabase(settings Settings) *gorm.DB {
	db, err := gorm.Open(postgres.Open(DSN(settings)), &gorm.Config{})
	if err != nil {
		log.Fatalf("[DB-CONNECT] Failed to connect to database: %v", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatalf("failed to migrate tables: %v", err)
	}
	log.Println("[DB-MIGRATE] Database tables migrated successfully")

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("[DB-POOL] Failed to get underlying DB connection: %v", err)
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	log.Println("[DB-POOL] Connection pool configured")
	log.Println("[DB-STATUS] Database setup complete")
	return db
}

// Migrate brings the schema up to date. It works against any gorm dialect.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(allModels...)
}
