package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"finley_backend/internal/events"
	"finley_backend/internal/metrics"
	"finley_backend/internal/storage"
	"finley_backend/internal/testutil"

	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.NotificationCreated
	// onPublish, when set, runs after each recorded event.
	onPublish func()
}

func (p *recordingPublisher) PublishNotification(_ context.Context, ev events.NotificationCreated) error {
	p.mu.Lock()
	p.events = append(p.events, ev)
	hook := p.onPublish
	p.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (p *recordingPublisher) Events() []events.NotificationCreated {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.NotificationCreated(nil), p.events...)
}

type testEnv struct {
	db        *gorm.DB
	svc       *ServiceContainer
	publisher *recordingPublisher
	metrics   *metrics.Recorder
	ctx       context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	publisher := &recordingPublisher{}
	rec := metrics.New()
	return &testEnv{
		db: testutil.NewDB(t),
		svc: NewServiceContainer(Dependencies{
			Publisher: publisher,
			Metrics:   rec,
			Signer:    storage.NewLocalSigner("/uploads"),
			SignTTL:   5 * time.Minute,
		}),
		publisher: publisher,
		metrics:   rec,
		ctx:       context.Background(),
	}
}

func strPtr(s string) *string { return &s }
