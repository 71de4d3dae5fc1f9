package main

import (
	"context"
	"os"

	"bursary-portal-backend/config"
	"bursary-portal-backend/jobs"
	"bursary-portal-backend/utils"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// The worker delivers notification emails queued by the API server.
func main() {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		panic(err)
	}
	config.InitLogger()
	defer config.Logger.Sync()

	settings := config.LoadSettings()
	if err := utils.InitializeDateLocation(settings.DBTimezone); err != nil {
		config.Logger.Fatal("Failed to initialize date location", zap.Error(err))
	}
	db := config.ConfigureDatabase(settings)

	utils.InitializeMailer(settings)
	mailer := utils.GetMailer()
	if mailer == nil {
		config.Logger.Fatal("Mailer not initialized")
	}

	srv := asynq.NewServer(config.AsynqRedisOpt(settings), asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			jobs.QueueNotifications: 1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			config.Logger.Error("Notification task failed",
				zap.String("task_type", task.Type()),
				zap.Error(err))
		}),
	})

	mux := asynq.NewServeMux()
	handlers := &jobs.EmailHandlers{
		Mailer:      mailer,
		DB:          db,
		FrontendURL: settings.BaseFrontendURL,
	}
	handlers.Register(mux)

	config.Logger.Info("Notification worker starting", zap.String("queue", jobs.QueueNotifications))
	if err := srv.Run(mux); err != nil {
		config.Logger.Fatal("Notification worker stopped", zap.Error(err))
	}
}
