package email

import (
	"context"

	"finley_backend/internal/logger"
)

// Provider delivers a Message outside the system.
type Provider interface {
	Send(ctx context.Context, msg *Message) error
	Name() string
}

// LogProvider only records the delivery; it is the development default.
type LogProvider struct{}

func (LogProvider) Send(ctx context.Context, msg *Message) error {
	logger.CtxInfo(ctx, "notification delivery (log only)",
		"type", msg.Type,
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}

func (LogProvider) Name() string { return "log" }
