package main

import (
	"fmt"
	"os"

	"bursary-portal-backend/config"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	_ = godotenv.Load()

	settings := config.LoadSettings()
	openDB := func() (*gorm.DB, error) {
		db, err := gorm.Open(postgres.Open(config.DSN(settings)), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return db, nil
	}

	if err := newRootCmd(openDB, settings).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
