package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"finley_backend/internal/logger"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects and pings. An empty address returns (nil, nil).
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) PublishNotification(ctx context.Context, ev NotificationCreated) error {
	if p == nil || p.client == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.client.Publish(ctx, p.channel, payload).Err()
}

// Handler processes one event. A returned error is logged and the event is dropped.
type Handler func(ctx context.Context, ev NotificationCreated) error

// Subscribe consumes the channel until ctx is cancelled.
// ready, if non-nil, is closed once the subscription is confirmed.
func Subscribe(ctx context.Context, client *redis.Client, channel string, handle Handler, ready chan<- struct{}) error {
	if client == nil {
		return errors.New("events: redis client is not configured")
	}

	sub := client.Subscribe(ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("events: subscribe %s: %w", channel, err)
	}
	if ready != nil {
		close(ready)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev NotificationCreated
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logger.Warn("events: dropping malformed payload", "channel", channel, "error", err)
				continue
			}
			if err := handle(ctx, ev); err != nil {
				logger.Warn("events: handler failed", "channel", channel, "notification_id", ev.ID, "error", err)
			}
		}
	}
}
