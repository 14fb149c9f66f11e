package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"doctor-scheduling/config"
	deliveryHttp "doctor-scheduling/internal/delivery/http"
	"doctor-scheduling/internal/delivery/http/handler"
	"doctor-scheduling/internal/delivery/http/middleware"
	"doctor-scheduling/internal/infrastructure/cache"
	"doctor-scheduling/internal/infrastructure/database"
	"doctor-scheduling/internal/repository"
	"doctor-scheduling/internal/service"
	"doctor-scheduling/internal/usecase"
	"doctor-scheduling/pkg/jwt"
	"doctor-scheduling/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
}

// LoadConfig loads configuration and applies the logger settings it carries
func LoadConfig() (*config.Config, error) {
	setupLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if level, err := logrus.ParseLevel(cfg.App.LogLevel); err == nil {
		logrus.SetLevel(level)
	} else {
		logrus.Warnf("Unknown LOG_LEVEL %q, keeping %s", cfg.App.LogLevel, logrus.GetLevel())
	}

	logrus.Info("Configuration loaded successfully")
	return cfg, nil
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	// Initialize database
	db, err := database.NewConnection(cfg.DB, gormLogLevel(cfg.App.Env))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	if err := database.Migrate(db); err != nil {
		app.Close()
		return nil, err
	}
	logrus.Info("Database connected and migrated successfully")

	// Initialize Redis, the service still works without it
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			logrus.Warnf("Redis unavailable, slot cache and token revocation disabled: %+v", err)
		} else {
			app.RedisClient = redisClient
			logrus.Info("Redis connected successfully")
		}
	}

	// Initialize all layers
	app.Server = initializeServer(cfg, db, app.RedisClient)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

func gormLogLevel(env string) logger.LogLevel {
	if env == "development" {
		return logger.Info
	}
	return logger.Warn
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *http.Server {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize repositories
	appointmentRepo := repository.NewAppointmentRepository()
	availabilityRepo := repository.NewDoctorAvailabilityRepository()
	doctorRepo := repository.NewDoctorRepository()
	patientRepo := repository.NewPatientRepository()
	hospitalRepo := repository.NewHospitalRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	availabilityIndex := service.NewAvailabilityIndex(log, availabilityRepo)
	predictor := service.LoadNoShowPredictor(cfg.Predictor, log)
	slotCache := service.NewSlotCacheService(redisClient, log, cfg.Redis.SlotTTL)
	auditService := service.NewAuditService(log, auditLogRepo)

	// Initialize usecases
	appointmentUsecase := usecase.NewAppointmentUsecase(
		db, log, cfg.Scheduling, cfg.Predictor.DefaultProbability,
		appointmentRepo, doctorRepo, patientRepo, hospitalRepo,
		availabilityIndex, predictor, slotCache, auditService,
	)
	availabilityUsecase := usecase.NewAvailabilityUsecase(db, log, availabilityRepo, doctorRepo, slotCache, auditService)
	adminUsecase := usecase.NewAdminUsecase(db, log, cfg.Scheduling.HighRiskThreshold, appointmentRepo, doctorRepo, patientRepo)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)
	directoryUsecase := usecase.NewDirectoryUsecase(db, log, doctorRepo, patientRepo)

	// Initialize handlers
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator, cfg.Scheduling.DefaultConsultationMinutes)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityUsecase, customValidator)
	adminHandler := handler.NewAdminHandler(adminUsecase, auditLogUsecase)
	directoryHandler := handler.NewDirectoryHandler(directoryUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSAllowedOrigins)

	// Initialize router
	router := deliveryHttp.NewRouter(appointmentHandler, availabilityHandler, adminHandler, directoryHandler, authMiddleware, corsMiddleware)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// IssueToken signs an access token for subject with role using the configured secret
func IssueToken(cfg *config.Config, subject, role string) (string, error) {
	token, _, err := jwt.NewJWTService(cfg.JWT).GenerateAccessToken(subject, role)
	return token, err
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
