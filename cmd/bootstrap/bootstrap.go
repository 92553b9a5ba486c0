package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-workflow/config"
	deliveryHttp "clinic-workflow/internal/delivery/http"
	"clinic-workflow/internal/delivery/http/handler"
	"clinic-workflow/internal/delivery/http/middleware"
	"clinic-workflow/internal/infrastructure/cache"
	"clinic-workflow/internal/infrastructure/database"
	"clinic-workflow/internal/infrastructure/messaging"
	"clinic-workflow/internal/repository"
	"clinic-workflow/internal/service"
	"clinic-workflow/internal/usecase"
	"clinic-workflow/pkg/clock"
	"clinic-workflow/pkg/jwt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Worker holds the connections shared by the server and the maintenance commands.
type Worker struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Counter     *service.RedisUnreadCounter
	Log         *logrus.Logger
}

// App holds all dependencies for the application
type App struct {
	*Worker
	Server     *http.Server
	Dispatcher service.NotificationDispatcher
	Events     service.EventPublisher
}

// LoadConfig reads configuration and configures the standard logger from it.
func LoadConfig(envFile string) (*config.Config, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	setupLogger(cfg.Log)
	return cfg, nil
}

// setupLogger configures the logrus logger
func setupLogger(cfg config.LogConfig) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logrus.Warnf("Unknown log level %q, using info", cfg.Level)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// NewWorker connects to PostgreSQL and Redis.
func NewWorker(envFile string) (*Worker, error) {
	cfg, err := LoadConfig(envFile)
	if err != nil {
		return nil, err
	}
	log := logrus.StandardLogger()
	log.Info("Configuration loaded successfully")

	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	notificationRepo := repository.NewNotificationRepository(db)
	return &Worker{
		Config:      cfg,
		DB:          db,
		RedisClient: redisClient,
		Counter:     service.NewRedisUnreadCounter(notificationRepo, redisClient, log),
		Log:         log,
	}, nil
}

// New creates a new App instance with all dependencies initialized
func New(envFile string) (*App, error) {
	worker, err := NewWorker(envFile)
	if err != nil {
		return nil, err
	}

	app := &App{Worker: worker}
	app.initializeServer()
	return app, nil
}

// initializeServer wires repositories, services, usecases and handlers.
func (app *App) initializeServer() {
	cfg, db, log := app.Config, app.DB, app.Log
	clk := clock.System()

	// Repositories
	requestRepo := repository.NewServiceRequestRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)
	priceRepo := repository.NewServicePriceRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)
	changeLogRepo := repository.NewAppointmentChangeLogRepository(db)
	deletionRepo := repository.NewDeletionRequestRepository(db)

	// Services
	feed := service.NewRealtimeFeed(app.RedisClient, log)
	pricing := service.NewPricingService(priceRepo, app.RedisClient, cfg.Pricing.CacheTTL, log)
	auditService := service.NewAuditService(log, auditLogRepo)
	denylist := service.NewTokenDenylist(app.RedisClient)
	inbox := service.NewInboxService(notificationRepo, app.Counter, feed, cfg.Notification.ListLimit, log)
	app.Dispatcher = service.NewNotificationDispatcher(notificationRepo, userRepo, app.Counter, feed, clk, service.DispatcherConfig{
		Shards:    cfg.Notification.Shards,
		QueueSize: cfg.Notification.QueueSize,
	}, log)
	app.Events = messaging.NewEventPublisher(cfg.Kafka, log)

	// Usecases
	requestUsecase := usecase.NewServiceRequestUsecase(log, clk, requestRepo, pricing, app.Dispatcher, auditService, app.Events)
	queueUsecase := usecase.NewQueueUsecase(log, requestRepo, pricing)
	notificationUsecase := usecase.NewNotificationUsecase(log, clk, notificationRepo, app.Dispatcher, app.Counter, feed, inbox, cfg.Notification.ListLimit)
	changeLogUsecase := usecase.NewChangeLogUsecase(log, changeLogRepo, app.Dispatcher)
	deletionUsecase := usecase.NewDeletionRequestUsecase(log, clk, deletionRepo, app.Dispatcher, auditService)
	priceUsecase := usecase.NewServicePriceUsecase(log, priceRepo, pricing, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(log, auditLogRepo)

	// Middleware
	jwtService := jwt.NewJWTService(cfg.JWT)
	authMiddleware := middleware.NewAuthMiddleware(jwtService, denylist, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.AllowedOrigins...)

	// Router
	router := deliveryHttp.NewRouter(deliveryHttp.Handlers{
		Auth:            handler.NewAuthHandler(denylist, log),
		ServiceRequest:  handler.NewServiceRequestHandler(requestUsecase),
		Queue:           handler.NewQueueHandler(queueUsecase),
		Notification:    handler.NewNotificationHandler(notificationUsecase, corsMiddleware.Allows, log),
		ChangeLog:       handler.NewChangeLogHandler(changeLogUsecase),
		DeletionRequest: handler.NewDeletionRequestHandler(deletionUsecase),
		ServicePrice:    handler.NewServicePriceHandler(priceUsecase),
		AuditLog:        handler.NewAuditLogHandler(auditLogUsecase),
	}, authMiddleware, corsMiddleware)

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Recompute counters that drifted while the process was down.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := app.Counter.SyncOnStartup(ctx); err != nil {
			app.Log.Warnf("Failed to sync unread counters on startup: %+v", err)
		}
	}()

	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Stop drains queued deliveries, so it must run before the store is closed.
	app.Dispatcher.Stop()
	if err := app.Events.Close(); err != nil {
		app.Log.Warnf("Failed to close event publisher: %+v", err)
	}

	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes the database and Redis connections.
func (w *Worker) Close() {
	closeDB(w.DB)
	if w.RedisClient != nil {
		_ = w.RedisClient.Close()
	}
}

func closeDB(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
