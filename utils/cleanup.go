package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bursary-portal-backend/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Retry configuration
const maxRetries = 3

var retryDelay = 2 * time.Minute

// ScheduledTask is a cron entry run by RunScheduledCleanup.
type ScheduledTask struct {
	Name string
	Spec string
	Run  func() error
}

// CleanupExpiredFiles removes regular files in dir whose modification time
// is older than ttl. A missing dir is not an error.
func CleanupExpiredFiles(dir string, ttl time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("error reading files directory: %v", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= ttl {
			continue
		}
		filePath := filepath.Join(dir, entry.Name())
		if err := os.Remove(filePath); err != nil {
			config.Logger.Warn("Error deleting expired file", zap.String("file", filePath), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}

// runWithRetries retries a failing task up to maxRetries times.
func runWithRetries(task ScheduledTask) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = task.Run(); err == nil {
			return nil
		}
		config.Logger.Warn("Scheduled task failed",
			zap.String("task", task.Name), zap.Int("attempt", attempt), zap.Error(err))
		if attempt < maxRetries {
			time.Sleep(retryDelay)
		}
	}
	return err
}

// RunScheduledCleanup registers tasks on a new cron scheduler and starts
// it. Callers stop the returned scheduler on shutdown.
func RunScheduledCleanup(tasks ...ScheduledTask) (*cron.Cron, error) {
	c := cron.New()

	for _, task := range tasks {
		task := task
		_, err := c.AddFunc(task.Spec, func() {
			config.Logger.Info("Running scheduled task", zap.String("task", task.Name))
			if err := runWithRetries(task); err != nil {
				config.Logger.Error("Scheduled task failed after retries",
					zap.String("task", task.Name), zap.Int("retries", maxRetries), zap.Error(err))
			}
		})
		if err != nil {
			return nil, fmt.Errorf("scheduling %s: %w", task.Name, err)
		}
	}

	c.Start()
	return c, nil
}
