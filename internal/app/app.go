package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"finley_backend/database"
	"finley_backend/internal/config"
	"finley_backend/internal/events"
	"finley_backend/internal/handlers"
	"finley_backend/internal/logger"
	"finley_backend/internal/metrics"
	"finley_backend/internal/middleware"
	"finley_backend/internal/models"
	"finley_backend/internal/routes"
	"finley_backend/internal/services"
	"finley_backend/internal/storage"
	"finley_backend/internal/validator"
	"finley_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Infrastructure is everything built from configuration besides the database.
type Infrastructure struct {
	Redis     *redis.Client // nil when redis.addr is empty
	Publisher events.Publisher
	Metrics   *metrics.Recorder
	Signer    storage.Signer
}

func NewInfrastructure(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	rdb, err := events.NewRedisClient(ctx, events.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}

	var publisher events.Publisher = events.NopPublisher{}
	if rdb != nil {
		publisher = events.NewRedisPublisher(rdb, cfg.Redis.EventsChannel)
		logger.Info("Redis connected", "addr", cfg.Redis.Addr, "channel", cfg.Redis.EventsChannel)
	} else {
		logger.Warn("Redis address not set; notification events will not be published")
	}

	signer, err := storage.NewSigner(storage.Config{
		Type:      cfg.Storage.Type,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
		BaseURL:   cfg.Storage.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	return &Infrastructure{
		Redis:     rdb,
		Publisher: publisher,
		Metrics:   metrics.New(),
		Signer:    signer,
	}, nil
}

func (i *Infrastructure) Close() {
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
}

func Run() {
	if err := config.LoadConfig(); err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	apperrors.SetDebug(cfg.Server.Env == "development")
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Connecting to database...")
	gormDB, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}
	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	infra, err := NewInfrastructure(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize infrastructure", "error", err)
	}
	defer infra.Close()

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           SetupRouter(cfg, gormDB, infra),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "address", cfg.Address())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB, infra *Infrastructure) *gin.Engine {
	// 1. Services
	serviceContainer := services.NewServiceContainer(services.Dependencies{
		Publisher: infra.Publisher,
		Metrics:   infra.Metrics,
		Signer:    infra.Signer,
		SignTTL:   time.Duration(cfg.Storage.UploadTTLSeconds) * time.Second,
	})

	// 2. Handlers
	appHandlers := initializeHandlers(cfg, serviceContainer, gormDB, infra)

	// 3. Gin
	ginRouter := initializeGinRouter(cfg, gormDB, infra.Metrics)

	// 4. Routes
	routes.RegisterRoutes(ginRouter, appHandlers, infra.Metrics.Handler())

	return ginRouter
}

func initializeHandlers(cfg *config.Config, svc *services.ServiceContainer, gormDB *gorm.DB, infra *Infrastructure) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New(), middleware.AuthMiddleware(cfg.JWT.Secret))

	return &handlers.AppHandlers{
		ProjectHandler: handlers.NewProjectHandler(baseHandler, svc.LifecycleService, svc.QueryService),
		AdminProjectHandler: handlers.NewAdminProjectHandler(baseHandler,
			svc.LifecycleService, svc.QueryService, svc.SOWService, svc.AssignmentService, svc.AttachmentService),
		NotificationHandler: handlers.NewNotificationHandler(baseHandler, svc.NotificationService),
		CatalogHandler:      handlers.NewCatalogHandler(baseHandler, svc.TeamService, svc.CategoryService),
		AttachmentHandler:   handlers.NewAttachmentHandler(baseHandler, svc.AttachmentService),
		HealthHandler:       handlers.NewHealthHandler(gormDB, infra.Redis),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB, rec *metrics.Recorder) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware(rec))
	router.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	router.Use(middleware.DBMiddleware(db))
	return router
}

// seedFirstAdmin makes sure the configured admin exists. Credentials live with
// the identity provider, so only the user row is created here.
func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminEmail := cfg.FirstAdmin.Email
	if adminEmail == "" {
		logger.Warn("FIRST_ADMIN_EMAIL is not set. Skipping admin seeding.")
		return nil
	}

	var adminUser models.User
	result := db.Where("email = ?", adminEmail).First(&adminUser)
	if result.Error == nil {
		if adminUser.Role != models.UserRoleAdmin {
			logger.Warn("Configured first admin exists with a different role", "email", adminEmail, "role", adminUser.Role)
		}
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	newAdmin := &models.User{
		Email:     adminEmail,
		FirstName: cfg.FirstAdmin.Name,
		Role:      models.UserRoleAdmin,
		Status:    models.UserStatusActive,
	}
	if err := db.Create(newAdmin).Error; err != nil {
		return fmt.Errorf("failed to create admin user in database: %w", err)
	}

	logger.Info("Created first admin user", "email", adminEmail)
	return nil
}
