package services

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/edstack/exam-service/internal/events"
	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
	"github.com/edstack/exam-service/internal/utils"
)

type notificationService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    utils.Logger
	publisher events.EventPublisher
}

func NewNotificationService(repo repositories.Repository, db *gorm.DB, logger utils.Logger, publisher events.EventPublisher) NotificationService {
	return &notificationService{
		repo:      repo,
		db:        db,
		logger:    logger,
		publisher: publisher,
	}
}

// NotifyAll stores a single broadcast row visible to every user.
func (s *notificationService) NotifyAll(ctx context.Context, typ models.NotificationType, title, message string, payload interface{}) error {
	raw, err := encodePayload(payload)
	if err != nil {
		return err
	}

	notification := &models.Notification{
		Type:    typ,
		Title:   title,
		Message: message,
		Payload: raw,
	}
	if err := s.repo.Notification().Create(ctx, nil, notification); err != nil {
		return fmt.Errorf("failed to create broadcast notification: %w", err)
	}

	s.emitBulkEvent(ctx, typ, title, 0)
	return nil
}

// NotifyBatches fans one notification out to every student in the batches.
func (s *notificationService) NotifyBatches(ctx context.Context, batchIDs []uint, typ models.NotificationType, title, message string, payload interface{}) error {
	raw, err := encodePayload(payload)
	if err != nil {
		return err
	}

	seen := make(map[uint]bool)
	var userIDs []uint
	for _, batchID := range batchIDs {
		ids, err := s.repo.Student().GetUserIDsByBatch(ctx, nil, batchID)
		if err != nil {
			return fmt.Errorf("failed to get students for batch %d: %w", batchID, err)
		}
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				userIDs = append(userIDs, id)
			}
		}
	}
	if len(userIDs) == 0 {
		return nil
	}

	notifications := make([]*models.Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		userID := userID
		notifications = append(notifications, &models.Notification{
			UserID:  &userID,
			Type:    typ,
			Title:   title,
			Message: message,
			Payload: raw,
		})
	}
	if err := s.repo.Notification().CreateBatch(ctx, nil, notifications); err != nil {
		return fmt.Errorf("failed to create batch notifications: %w", err)
	}

	s.logger.Info("notifications fanned out", "type", typ, "recipients", len(userIDs))
	s.emitBulkEvent(ctx, typ, title, len(userIDs))
	return nil
}

func (s *notificationService) NotifyUser(ctx context.Context, userID uint, typ models.NotificationType, title, message string, payload interface{}) error {
	raw, err := encodePayload(payload)
	if err != nil {
		return err
	}

	notification := &models.Notification{
		UserID:  &userID,
		Type:    typ,
		Title:   title,
		Message: message,
		Payload: raw,
	}
	if err := s.repo.Notification().Create(ctx, nil, notification); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (s *notificationService) ListForUser(ctx context.Context, userID uint, filters repositories.NotificationFilters) (*NotificationListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}

	notifications, total, err := s.repo.Notification().GetByUser(ctx, nil, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	unread, err := s.repo.Notification().CountUnread(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread: %w", err)
	}

	return &NotificationListResponse{
		Notifications: notifications,
		Total:         total,
		Unread:        unread,
		Limit:         filters.Limit,
		Offset:        filters.Offset,
	}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id uint, userID uint) error {
	if err := s.repo.Notification().MarkRead(ctx, nil, id, userID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.repo.Notification().MarkAllRead(ctx, nil, userID)
}

func (s *notificationService) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return s.repo.Notification().CountUnread(ctx, nil, userID)
}

func (s *notificationService) emitBulkEvent(ctx context.Context, typ models.NotificationType, title string, recipients int) {
	if s.publisher == nil {
		return
	}
	event := events.NewEvent(events.EventBulkNotification, map[string]interface{}{
		"notification_type": typ,
		"title":             title,
		"recipients":        recipients,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish notification event", "type", typ, "error", err)
	}
}

func encodePayload(payload interface{}) (datatypes.JSON, error) {
	if payload == nil {
		return nil, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return datatypes.JSON(raw), nil
}
