package workers

import (
	"context"
	"fmt"
	"time"

	"finley_backend/internal/logger"
	"finley_backend/internal/metrics"
	"finley_backend/internal/services"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const cleanupJob = "notification_cleanup"

// NotificationCleanupWorker purges READ notifications older than the retention window.
type NotificationCleanupWorker struct {
	db            *gorm.DB
	notifications services.NotificationService
	retention     time.Duration
	schedule      string
	metrics       *metrics.Recorder

	cron *cron.Cron
}

func NewNotificationCleanupWorker(
	db *gorm.DB,
	notifications services.NotificationService,
	retention time.Duration,
	schedule string,
	rec *metrics.Recorder,
) *NotificationCleanupWorker {
	return &NotificationCleanupWorker{
		db:            db,
		notifications: notifications,
		retention:     retention,
		schedule:      schedule,
		metrics:       rec,
	}
}

// Start registers the job on a seconds-resolution cron and stops it when ctx ends.
func (w *NotificationCleanupWorker) Start(ctx context.Context) error {
	w.cron = cron.New(cron.WithSeconds())
	if _, err := w.cron.AddFunc(w.schedule, func() { _, _ = w.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", w.schedule, err)
	}
	w.cron.Start()
	logger.Info("Notification cleanup scheduled", "schedule", w.schedule, "retention", w.retention.String())

	go func() {
		<-ctx.Done()
		<-w.cron.Stop().Done()
		logger.Info("Notification cleanup worker stopped")
	}()
	return nil
}

// RunOnce performs a single purge and reports how many rows were removed.
func (w *NotificationCleanupWorker) RunOnce(ctx context.Context) (int64, error) {
	deleted, err := w.notifications.CleanOld(ctx, w.db.WithContext(ctx), w.retention)
	w.metrics.JobRun(cleanupJob, err)
	logger.WorkerLog(cleanupJob, "purge_read", err, "deleted", deleted)
	return deleted, err
}
