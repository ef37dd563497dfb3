package events

import (
	"context"
	"encoding/json"
	"time"
)

// NotificationCreated is published after a notification row is written.
type NotificationCreated struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Publisher fans events out to external subscribers.
type Publisher interface {
	PublishNotification(ctx context.Context, ev NotificationCreated) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishNotification(context.Context, NotificationCreated) error { return nil }
