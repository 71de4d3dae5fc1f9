package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// BackupDatabase dumps the portal database with pg_dump into dir and
// returns the written file name.
func BackupDatabase(settings Settings, dir string) (string, error) {
	cmd := exec.Command("pg_dump",
		"-h", settings.DBHost,
		"-p", settings.DBPort,
		"-U", settings.DBUser,
		settings.DBName,
	)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+settings.DBPassword)

	output, err := cmd.Output()
	if err != nil {
		Logger.Error("Error backing up database", zap.Error(err))
		return "", fmt.Errorf("pg_dump: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	fileName := filepath.Join(dir, fmt.Sprintf("db_backup_%s.sql", time.Now().Format("2006-01-02_15-04-05")))
	if err := os.WriteFile(fileName, output, 0644); err != nil {
		Logger.Error("Error writing database backup to file", zap.Error(err))
		return "", err
	}
	Logger.Info("Database backup successful", zap.String("file", fileName))
	return fileName, nil
}
