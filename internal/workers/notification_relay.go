package workers

import (
	"context"
	"encoding/json"
	"fmt"

	"finley_backend/internal/email"
	"finley_backend/internal/events"
	"finley_backend/internal/logger"
	"finley_backend/internal/metrics"
	"finley_backend/internal/repositories"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const relayJob = "notification_relay"

// NotificationRelay delivers NotificationCreated events outside the system.
// Delivery never writes back to notification rows.
type NotificationRelay struct {
	client   *redis.Client
	channel  string
	db       *gorm.DB
	userRepo repositories.UserRepository
	provider email.Provider
	metrics  *metrics.Recorder
}

func NewNotificationRelay(
	client *redis.Client,
	channel string,
	db *gorm.DB,
	userRepo repositories.UserRepository,
	provider email.Provider,
	rec *metrics.Recorder,
) *NotificationRelay {
	return &NotificationRelay{
		client:   client,
		channel:  channel,
		db:       db,
		userRepo: userRepo,
		provider: provider,
		metrics:  rec,
	}
}

// Run blocks until ctx is cancelled. ready is closed once subscribed.
func (r *NotificationRelay) Run(ctx context.Context, ready chan<- struct{}) error {
	logger.Info("Notification relay listening", "channel", r.channel, "provider", r.provider.Name())
	return events.Subscribe(ctx, r.client, r.channel, r.Deliver, ready)
}

// addressing is the part of the event metadata the relay understands.
type addressing struct {
	RecipientEmail string   `json:"recipient_email"`
	CC             []string `json:"cc"`
}

// Deliver hands one event to the provider.
func (r *NotificationRelay) Deliver(ctx context.Context, ev events.NotificationCreated) error {
	msg, err := r.message(ctx, ev)
	if err == nil {
		err = r.provider.Send(ctx, msg)
	}
	r.metrics.JobRun(relayJob, err)
	logger.WorkerLog(relayJob, "deliver", err,
		"notification_id", ev.ID,
		"provider", r.provider.Name(),
	)
	return err
}

func (r *NotificationRelay) message(ctx context.Context, ev events.NotificationCreated) (*email.Message, error) {
	var addr addressing
	if len(ev.Metadata) > 0 {
		if err := json.Unmarshal(ev.Metadata, &addr); err != nil {
			logger.CtxWarn(ctx, "Ignoring unreadable notification metadata", "notification_id", ev.ID, "error", err.Error())
		}
	}

	to := addr.RecipientEmail
	if to == "" {
		user, err := r.userRepo.FindByID(r.db.WithContext(ctx), ev.UserID)
		if err != nil {
			return nil, fmt.Errorf("load recipient %s: %w", ev.UserID, err)
		}
		to = user.Email
	}

	return &email.Message{
		Type:     ev.Type,
		To:       to,
		Cc:       addr.CC,
		Subject:  ev.Title,
		Body:     ev.Message,
		Metadata: ev.Metadata,
	}, nil
}
