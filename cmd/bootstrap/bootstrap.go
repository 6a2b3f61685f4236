package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-booking-api/config"
	deliveryHttp "clinic-booking-api/internal/delivery/http"
	"clinic-booking-api/internal/delivery/http/handler"
	"clinic-booking-api/internal/delivery/http/middleware"
	"clinic-booking-api/internal/infrastructure/cache"
	"clinic-booking-api/internal/infrastructure/database"
	"clinic-booking-api/internal/infrastructure/notification"
	"clinic-booking-api/internal/repository"
	"clinic-booking-api/internal/service"
	"clinic-booking-api/internal/usecase"
	"clinic-booking-api/pkg/jwt"
	"clinic-booking-api/pkg/metrics"
	"clinic-booking-api/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	Dispatcher  *notification.Dispatcher

	stoppers []func()
}

// New creates a new App instance with all dependencies initialized
func New(envFile string) (*App, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg.App)
	app := &App{Config: cfg, Log: log}
	log.Info("Configuration loaded successfully")

	db, err := database.NewPostgresConnection(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db, log); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	log.Info("Redis connected successfully")

	if err := app.initializeServer(ctx); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(cfg config.AppConfig) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}

func newSender(cfg config.NotifyConfig, log *logrus.Logger) notification.Sender {
	switch cfg.Driver {
	case config.NotifyDriverSMTP:
		return notification.NewSMTPSender(cfg.SMTP)
	case config.NotifyDriverKafka:
		return notification.NewKafkaSender(cfg.Kafka)
	default:
		return notification.NewLogSender(log)
	}
}

func (app *App) newLocker() service.DoctorLocker {
	if !app.Config.Booking.SerializePerDoctor {
		return service.NoopLocker{}
	}

	locker := service.NewRedisDoctorLocker(app.RedisClient, app.Log, app.Config.Booking.LockTTL)
	app.stoppers = append(app.stoppers, locker.Stop)
	app.Log.Info("Per-doctor booking lock enabled")
	return locker
}

// initializeServer creates and configures the HTTP server
func (app *App) initializeServer(ctx context.Context) error {
	cfg, log, db := app.Config, app.Log, app.DB

	collector := metrics.NewDefaultCollector(cfg.Metrics.Namespace)
	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	doctorRepo := repository.NewDoctorRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	tokenStore := cache.NewRedisTokenStore(app.RedisClient)
	app.Dispatcher = notification.NewDispatcher(newSender(cfg.Notify, log), log, collector, cfg.Notify.QueueSize)
	log.Infof("Notification driver: %s", cfg.Notify.Driver)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(log, userRepo, roleRepo, jwtService, tokenStore, auditService)
	doctorUsecase := usecase.NewDoctorUsecase(log, doctorRepo, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(log, auditLogRepo)
	appointmentUsecase := usecase.NewAppointmentUsecase(
		log,
		appointmentRepo,
		service.NewBookingValidator(time.Now),
		service.NewAvailabilityChecker(appointmentRepo),
		app.newLocker(),
		app.Dispatcher,
		auditService,
		collector,
	)

	if cfg.Admin.Email != "" {
		if err := authUsecase.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.FullName); err != nil {
			return fmt.Errorf("failed to create bootstrap admin: %w", err)
		}
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst, collector)
	app.stoppers = append(app.stoppers, rateLimiter.Stop)

	router := deliveryHttp.NewRouter(deliveryHttp.RouterDeps{
		HealthHandler: handler.NewHealthHandler(map[string]handler.PingFunc{
			"postgres": func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
			"redis": func(ctx context.Context) error {
				return app.RedisClient.Ping(ctx).Err()
			},
		}),
		AuthHandler:        handler.NewAuthHandler(authUsecase, customValidator),
		AppointmentHandler: handler.NewAppointmentHandler(appointmentUsecase, customValidator),
		DoctorHandler:      handler.NewDoctorHandler(doctorUsecase, customValidator),
		AuditLogHandler:    handler.NewAuditLogHandler(auditLogUsecase, customValidator),
		AuthMiddleware:     middleware.NewAuthMiddleware(jwtService, tokenStore, log),
		CORSMiddleware:     middleware.NewCORSMiddleware(cfg.App.CORSOrigins),
		MetricsMiddleware:  middleware.NewMetricsMiddleware(collector),
		AuthRateLimiter:    rateLimiter,
		MetricsHandler:     collector.Handler(),
	})

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// requests are done; flush queued confirmations before closing the stores
	if app.Dispatcher != nil {
		if err := app.Dispatcher.Shutdown(ctx); err != nil {
			app.Log.Errorf("Notification dispatcher shutdown: %v", err)
		}
	}

	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	for _, stop := range app.stoppers {
		stop()
	}

	if app.DB != nil {
		if sqlDB, err := app.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		_ = app.RedisClient.Close()
	}
}
