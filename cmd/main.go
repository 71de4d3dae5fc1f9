package main

import (
	"context"
	"os"
	"strings"
	"time"

	"bursary-portal-backend/config"
	"bursary-portal-backend/gateway"
	"bursary-portal-backend/internal/bootstrap"
	"bursary-portal-backend/jobs"
	"bursary-portal-backend/middleware"
	"bursary-portal-backend/session"
	"bursary-portal-backend/token"
	"bursary-portal-backend/utils"
	"bursary-portal-backend/websocket"

	// Repositories
	applications_repositories "bursary-portal-backend/applications/repositories"
	contacts_repositories "bursary-portal-backend/contacts/repositories"
	users_repositories "bursary-portal-backend/users/repositories"

	// Services
	applications_services "bursary-portal-backend/applications/services"
	users_services "bursary-portal-backend/users/services"

	// Controllers
	applications_controllers "bursary-portal-backend/applications/controllers"
	contacts_controllers "bursary-portal-backend/contacts/controllers"
	users_controllers "bursary-portal-backend/users/controllers"

	// Routes
	application_routes "bursary-portal-backend/applications/routes"
	contact_routes "bursary-portal-backend/contacts/routes"
	user_routes "bursary-portal-backend/users/routes"

	// bleve
	bleveRepositories "bursary-portal-backend/bleve/repositories"
	bleveServices "bursary-portal-backend/bleve/services"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	listCacheTTL    = 10 * time.Minute
	exportRetention = 24 * time.Hour
)

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

	ctx := context.Background()
	db := config.ConfigureDatabase(settings)
	redisClient := config.InitRedisServer(ctx, settings)

	asynqClient := asynq.NewClient(config.AsynqRedisOpt(settings))
	defer asynqClient.Close()
	notifier := jobs.NewNotifier(asynqClient)

	tokenMaker, err := token.NewPasetoMaker(settings.TokenSymmetricKey)
	if err != nil {
		config.Logger.Fatal("Cannot create token maker", zap.Error(err))
	}

	// Staged documents belong to in-memory sessions, none of which survive
	// a restart.
	if err := os.RemoveAll(settings.StagingDir); err != nil {
		config.Logger.Warn("Failed to clear staging directory", zap.String("dir", settings.StagingDir), zap.Error(err))
	}

	// Repositories
	bleveIndexingService := bleveServices.NewIndexingService(config.Logger, settings.BleveIndexPath)
	defer bleveIndexingService.Close()
	bleveServiceRepo, bleveInterfaceRepo := bleveRepositories.NewBleveRepository(bleveIndexingService)
	applicationRepo := applications_repositories.NewApplicationRepository(db)
	contactRepo := contacts_repositories.NewContactRepository(db)
	userRepo := users_repositories.NewUserRepository(db)

	gw := &gateway.Gateway{
		Applications: applicationRepo,
		Contacts:     contactRepo,
		Storage:      utils.NewPublicFileStorage(settings.UploadDir, strings.TrimSuffix(settings.BaseURL, "/")+"/uploads"),
		Auth:         users_services.NewAuthService(userRepo),
		Admins:       userRepo,
		Timeout:      settings.RemoteCallTimeout,
	}

	config.Logger.Info("Initializing WebSocket hub for admin live updates...")
	wsHub := websocket.NewHub()
	go wsHub.Run()

	listCache := utils.NewRedisCache(redisClient, listCacheTTL)

	// Workflow services
	submissions := applications_services.NewSubmissionService(gw,
		applications_services.IndexHook(bleveServiceRepo),
		applications_services.CacheInvalidationHook(listCache),
		applications_services.BroadcastHook(wsHub, websocket.MessageTypeApplicationSubmitted),
		applications_services.ApplicationHook{Name: "notify_applicant", Run: notifier.ApplicationReceived},
	)
	review := applications_services.NewReviewService(gw, listCache, bleveServiceRepo,
		applications_services.IndexHook(bleveServiceRepo),
		applications_services.BroadcastHook(wsHub, websocket.MessageTypeApplicationStatusChanged),
		applications_services.ApplicationHook{Name: "notify_applicant", Run: notifier.StatusChanged},
	)

	sessions := session.NewRegistry(settings.SessionTTL)
	sessions.OnEvict(submissions.Forget)

	appCtx := &middleware.AppContext{
		PasetoMaker:   tokenMaker,
		RefreshTokens: token.NewRedisRefreshStore(redisClient),
		Gateway:       gw,
		Sessions:      sessions,
		Cookies:       middleware.CookieSettingsFrom(settings),
		OnSignOut:     submissions.Release,
	}

	app := fiber.New(fiber.Config{
		// Params and parsed bodies end up on long-lived sessions.
		Immutable: true,
		BodyLimit: 4 * applications_controllers.DefaultMaxDocumentSize,
	})
	middleware.InitCors(app, settings.BaseFrontendURL)

	// Serve static files
	app.Static("/public", "./public")
	app.Static("/uploads", settings.UploadDir)

	app.Use(middleware.SessionMiddleware(appCtx), middleware.Identify(appCtx))

	limiter := middleware.NewIPRateLimiter(settings.ContactRateLimit)

	// Routes
	user_routes.AuthRouterInit(app, &users_controllers.AuthController{
		App:         appCtx,
		Submissions: submissions,
		WaitTimeout: settings.RemoteCallTimeout,
	}, limiter.Handler())

	contact_routes.ContactRouterInit(app, &contacts_controllers.ContactController{
		Gateway:  gw,
		Notifier: notifier,
	}, limiter.Handler())

	wsHandler := websocket.NewWsHandler(wsHub, tokenMaker, gw)
	application_routes.ApplicationRouterInit(app, &applications_controllers.ApplicationController{
		Submissions: submissions,
		Status:      applications_services.NewStatusService(gw),
		Review:      review,
		Reports:     applications_services.NewReportService(review, settings.ExportDir),
		Staging:     utils.NewLocalFileStorage(settings.StagingDir),
		ExportPath:  "public/files",
	}, appCtx, wsHandler.HandleWebSocket)
	config.Logger.Info("WebSocket endpoint registered at /api/v1/ws/admin")

	// Re-Index all data
	go bootstrap.IndexBleveData(ctx, applicationRepo, bleveInterfaceRepo)

	// Background cleanup tasks
	scheduler, err := utils.RunScheduledCleanup(
		utils.ScheduledTask{
			Name: "evict idle sessions",
			Spec: "@every 15m",
			Run: func() error {
				n := sessions.EvictIdle(time.Now())
				config.Logger.Info("Evicted idle sessions", zap.Int("count", n))
				return nil
			},
		},
		utils.ScheduledTask{
			Name: "prune rate limiter",
			Spec: "@every 10m",
			Run: func() error {
				limiter.Prune(time.Now(), time.Hour)
				return nil
			},
		},
		utils.ScheduledTask{
			Name: "remove expired exports",
			Spec: "0 0 * * *",
			Run: func() error {
				n, err := utils.CleanupExpiredFiles(settings.ExportDir, exportRetention, time.Now())
				if err == nil {
					config.Logger.Info("Removed expired exports", zap.Int("count", n))
				}
				return err
			},
		},
	)
	if err != nil {
		config.Logger.Fatal("Failed to schedule cleanup tasks", zap.Error(err))
	}
	defer scheduler.Stop()

	// Start the application
	config.Logger.Info("Server starting", zap.String("port", settings.Port))
	config.Logger.Fatal("Server failed", zap.String("port", settings.Port), zap.Error(app.Listen(":"+settings.Port)))
}
