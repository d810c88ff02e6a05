package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-clinic-workflow/config"
	deliveryHttp "go-clinic-workflow/internal/delivery/http"
	"go-clinic-workflow/internal/delivery/http/handler"
	"go-clinic-workflow/internal/delivery/http/middleware"
	"go-clinic-workflow/internal/infrastructure/cache"
	"go-clinic-workflow/internal/infrastructure/database"
	"go-clinic-workflow/internal/repository"
	"go-clinic-workflow/internal/service"
	"go-clinic-workflow/internal/usecase"
	"go-clinic-workflow/pkg/jwt"
	"go-clinic-workflow/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
}

// NewLogger builds the process logger from config.
func NewLogger(cfg config.LogConfig) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", cfg.Level)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// New connects to PostgreSQL and Redis and wires the HTTP server.
func New(cfg *config.Config, log *logrus.Logger) (*App, error) {
	app := &App{Config: cfg, Log: log}

	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	server, err := initializeServer(cfg, log, db, redisClient)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Server = server

	return app, nil
}

// NewDoctorResolver wires the resolver alone, for the seed command.
func NewDoctorResolver(cfg *config.Config, log *logrus.Logger, db *gorm.DB) usecase.DoctorResolver {
	auditService := service.NewAuditService(log, repository.NewAuditLogRepository())
	return usecase.NewDoctorResolver(db, log, repository.NewUserRepository(), auditService, cfg.Consultation)
}

func initializeServer(cfg *config.Config, log *logrus.Logger, db *gorm.DB, redisClient *redis.Client) (*http.Server, error) {
	location, err := cfg.App.Location()
	if err != nil {
		return nil, err
	}

	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()

	// Repositories
	userRepo := repository.NewUserRepository()
	patientRepo := repository.NewPatientRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	consultationRepo := repository.NewConsultationRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Services
	auditService := service.NewAuditService(log, auditLogRepo)
	statsCache := service.NewRedisStatsCache(redisClient, log, cfg.Consultation.StatsCacheTTL)

	// Usecases
	doctorResolver := usecase.NewDoctorResolver(db, log, userRepo, auditService, cfg.Consultation)
	locator := usecase.NewAppointmentLocator(appointmentRepo, time.Now, location)
	consultationUsecase := usecase.NewConsultationUsecase(db, log, userRepo, appointmentRepo, consultationRepo, locator, auditService, statsCache, time.Now)
	queryUsecase := usecase.NewConsultationQueryUsecase(db, log, consultationRepo, statsCache, time.Now, location)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, appointmentRepo, patientRepo, doctorResolver, auditService, location)
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, auditService, jwtService, redisClient)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator, jwtService)
	consultationHandler := handler.NewConsultationHandler(consultationUsecase, queryUsecase, doctorResolver, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigins...)

	router := deliveryHttp.NewRouter(log, authHandler, consultationHandler, appointmentHandler, auditLogHandler, authMiddleware, corsMiddleware)

	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled or a
// termination signal arrives, then shuts down gracefully.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			app.Close()
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	app.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()
	app.Log.Info("Server shutdown complete")
	return nil
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	if app.DB != nil {
		if sqlDB, err := app.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
