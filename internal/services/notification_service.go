package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"finley_backend/internal/events"
	"finley_backend/internal/logger"
	"finley_backend/internal/metrics"
	"finley_backend/internal/models"
	"finley_backend/internal/repositories"
	"finley_backend/internal/services/dto"
	"finley_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultNotificationPageSize = 20
	maxNotificationPageSize     = 100
)

// EmitOption customises a single Emit call.
type EmitOption func(*emitOptions)

type emitOptions struct {
	data      map[string]interface{}
	dedupeKey string
}

// WithData attaches structured metadata, stored on the row and carried on the event.
func WithData(data map[string]interface{}) EmitOption {
	return func(o *emitOptions) {
		if o.data == nil {
			o.data = make(map[string]interface{}, len(data))
		}
		for k, v := range data {
			o.data[k] = v
		}
	}
}

// WithDedupeKey makes a repeated emit with the same key return the first notification.
func WithDedupeKey(key string) EmitOption {
	return func(o *emitOptions) { o.dedupeKey = key }
}

type NotificationService interface {
	// Emit creates an unread notification and returns its id. It does not retry.
	Emit(ctx context.Context, db *gorm.DB, recipientID string, notificationType models.NotificationType, title, message string, opts ...EmitOption) (string, error)
	List(ctx context.Context, db *gorm.DB, userID string, query dto.NotificationListQuery) (*dto.NotificationListResponse, error)
	MarkRead(ctx context.Context, db *gorm.DB, userID, notificationID string) error
	MarkAllRead(ctx context.Context, db *gorm.DB, userID string) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, userID, notificationID string) error
	ClearAll(ctx context.Context, db *gorm.DB, userID string) (int64, error)
	// CleanOld purges read notifications older than retention.
	CleanOld(ctx context.Context, db *gorm.DB, retention time.Duration) (int64, error)
}

type NotificationServiceImpl struct {
	notificationRepo repositories.NotificationRepository
	userRepo         repositories.UserRepository
	publisher        events.Publisher
	metrics          *metrics.Recorder
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	publisher events.Publisher,
	rec *metrics.Recorder,
) NotificationService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &NotificationServiceImpl{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		publisher:        publisher,
		metrics:          rec,
	}
}

func (s *NotificationServiceImpl) Emit(ctx context.Context, db *gorm.DB, recipientID string, notificationType models.NotificationType, title, message string, opts ...EmitOption) (string, error) {
	var o emitOptions
	for _, opt := range opts {
		opt(&o)
	}

	if _, err := s.userRepo.FindByID(db, recipientID); err != nil {
		s.metrics.Notification(string(notificationType), "failed")
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", apperrors.ErrRecipientNotFound.WithDetails(map[string]string{"recipient_id": recipientID})
		}
		return "", storeError(err, "notification")
	}

	notification := &models.Notification{
		UserID:  recipientID,
		Type:    notificationType,
		Title:   title,
		Message: message,
	}
	if len(o.data) > 0 {
		raw, err := json.Marshal(o.data)
		if err != nil {
			return "", apperrors.InternalError(fmt.Errorf("marshal notification data: %w", err))
		}
		notification.Data = datatypes.JSON(raw)
	}
	if o.dedupeKey != "" {
		key := o.dedupeKey
		notification.DedupeKey = &key
	}

	created, err := s.notificationRepo.Create(db, notification)
	if err != nil {
		s.metrics.Notification(string(notificationType), "failed")
		return "", storeError(err, "notification")
	}
	if !created {
		s.metrics.Notification(string(notificationType), "deduped")
		logger.CtxDebug(ctx, "Notification deduplicated", "notification_id", notification.ID, "dedupe_key", o.dedupeKey)
		return notification.ID, nil
	}

	s.metrics.Notification(string(notificationType), "created")
	logger.CtxInfo(ctx, "Notification created",
		"notification_id", notification.ID,
		"recipient_id", recipientID,
		"type", notificationType,
	)
	s.publish(ctx, notification)
	return notification.ID, nil
}

// publish is best effort; the row is already committed.
func (s *NotificationServiceImpl) publish(ctx context.Context, n *models.Notification) {
	ev := events.NotificationCreated{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Metadata:  json.RawMessage(n.Data),
		CreatedAt: n.CreatedAt,
	}
	if err := s.publisher.PublishNotification(ctx, ev); err != nil {
		logger.CtxWithError(ctx, "Failed to publish notification event", err, "notification_id", n.ID)
	}
}

func (s *NotificationServiceImpl) List(ctx context.Context, db *gorm.DB, userID string, query dto.NotificationListQuery) (*dto.NotificationListResponse, error) {
	page, pageSize := query.Page, query.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultNotificationPageSize
	}
	if pageSize > maxNotificationPageSize {
		pageSize = maxNotificationPageSize
	}

	notifications, total, err := s.notificationRepo.FindForUser(db, userID, repositories.NotificationCriteria{
		UnreadOnly: query.UnreadOnly,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return nil, storeError(err, "notification")
	}

	// computed on every read, never cached
	unread, err := s.notificationRepo.CountUnread(db, userID)
	if err != nil {
		return nil, storeError(err, "notification")
	}

	resp := &dto.NotificationListResponse{
		Notifications: make([]dto.NotificationResponse, 0, len(notifications)),
		Total:         total,
		UnreadCount:   unread,
		Page:          page,
		PageSize:      pageSize,
	}
	for i := range notifications {
		resp.Notifications = append(resp.Notifications, notificationResponse(&notifications[i]))
	}
	return resp, nil
}

func (s *NotificationServiceImpl) MarkRead(ctx context.Context, db *gorm.DB, userID, notificationID string) error {
	if err := s.notificationRepo.MarkAsRead(db, userID, notificationID); err != nil {
		return storeError(err, "notification")
	}
	return nil
}

func (s *NotificationServiceImpl) MarkAllRead(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	count, err := s.notificationRepo.MarkAllAsRead(db, userID)
	if err != nil {
		return 0, storeError(err, "notification")
	}
	logger.CtxInfo(ctx, "Notifications marked read", "user_id", userID, "count", count)
	return count, nil
}

func (s *NotificationServiceImpl) Delete(ctx context.Context, db *gorm.DB, userID, notificationID string) error {
	if err := s.notificationRepo.Delete(db, userID, notificationID); err != nil {
		return storeError(err, "notification")
	}
	return nil
}

func (s *NotificationServiceImpl) ClearAll(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	count, err := s.notificationRepo.DeleteAllForUser(db, userID)
	if err != nil {
		return 0, storeError(err, "notification")
	}
	logger.CtxInfo(ctx, "Notifications cleared", "user_id", userID, "count", count)
	return count, nil
}

func (s *NotificationServiceImpl) CleanOld(ctx context.Context, db *gorm.DB, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, apperrors.ErrInvalidOperation("notification", "retention must be positive")
	}
	count, err := s.notificationRepo.DeleteReadOlderThan(db, time.Now().Add(-retention))
	if err != nil {
		return 0, storeError(err, "notification")
	}
	return count, nil
}
