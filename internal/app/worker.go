package app

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"finley_backend/database"
	"finley_backend/internal/config"
	"finley_backend/internal/email"
	"finley_backend/internal/logger"
	"finley_backend/internal/repositories"
	"finley_backend/internal/services"
	"finley_backend/internal/workers"
)

// RunWorker runs the scheduled maintenance and the notification relay until
// SIGINT or SIGTERM.
func RunWorker() {
	if err := config.LoadConfig(); err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gormDB, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}

	infra, err := NewInfrastructure(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize infrastructure", "error", err)
	}
	defer infra.Close()

	svc := services.NewServiceContainer(services.Dependencies{
		Publisher: infra.Publisher,
		Metrics:   infra.Metrics,
		Signer:    infra.Signer,
	})

	cleanup := workers.NewNotificationCleanupWorker(
		gormDB,
		svc.NotificationService,
		time.Duration(cfg.Notifications.RetentionDays)*24*time.Hour,
		cfg.Notifications.CleanupCron,
		infra.Metrics,
	)
	if err := cleanup.Start(ctx); err != nil {
		logger.Fatal("Failed to start cleanup worker", "error", err)
	}

	if infra.Redis == nil {
		logger.Warn("Redis address not set; notification relay disabled")
		<-ctx.Done()
		return
	}

	provider, err := NewDeliveryProvider(cfg)
	if err != nil {
		logger.Fatal("Failed to build delivery provider", "error", err)
	}
	relay := workers.NewNotificationRelay(
		infra.Redis,
		cfg.Redis.EventsChannel,
		gormDB,
		repositories.NewUserRepository(),
		provider,
		infra.Metrics,
	)
	if err := relay.Run(ctx, nil); err != nil {
		logger.Fatal("Notification relay stopped", "error", err)
	}
	logger.Info("Worker stopped")
}

// NewDeliveryProvider picks the relay's delivery channel from relay.mode.
func NewDeliveryProvider(cfg *config.Config) (email.Provider, error) {
	switch cfg.Relay.Mode {
	case "webhook":
		return email.NewWebhookProvider(cfg.Relay.WebhookURL, &http.Client{Timeout: 10 * time.Second}), nil
	case "email":
		provider, err := email.NewSMTPProvider(email.SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	case "log", "":
		return email.LogProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown relay mode %q", cfg.Relay.Mode)
	}
}
