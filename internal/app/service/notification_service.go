package service

import (
	"context"
	"fmt"
	"strconv"

	"codequest/internal/common"
	"codequest/internal/domain/model"
	"codequest/internal/domain/repository"
	"codequest/internal/platform/logger"
	"codequest/internal/realtime"

	"github.com/google/uuid"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

type NotificationService struct {
	notificationRepo repository.NotificationRepository
	broker           realtime.Broker
}

func NewNotificationService(notificationRepo repository.NotificationRepository, broker realtime.Broker) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo, broker: broker}
}

// Notify stores a notification for recipientID and pushes it on the recipient's topic.
// Failures are logged and swallowed: a missed notification never fails the action that caused it.
func (s *NotificationService) Notify(ctx context.Context, recipientID, actorID string, typ model.NotificationType, entityID, message string) {
	if recipientID == "" || recipientID == actorID {
		return
	}
	log := logger.FromContext(ctx)

	n := &model.Notification{
		ID:      uuid.NewString(),
		UserID:  recipientID,
		Type:    typ,
		Message: message,
	}
	if actorID != "" {
		n.ActorID = &actorID
	}
	if entityID != "" {
		n.EntityID = &entityID
	}

	if err := s.notificationRepo.Create(ctx, n); err != nil {
		log.Warn().Err(err).Str("recipient", recipientID).Str("type", string(typ)).Msg("failed to store notification")
		return
	}
	if err := s.broker.Publish(ctx, realtime.UserTopic(recipientID), realtime.EventNotification, n); err != nil {
		log.Warn().Err(err).Str("recipient", recipientID).Msg("failed to publish notification")
	}
}

// ParseNotificationFilter reads the unread and limit query values.
func ParseNotificationFilter(unread, limit string) (model.NotificationFilter, error) {
	f := model.NotificationFilter{Limit: defaultNotificationLimit}
	if unread != "" {
		b, err := strconv.ParseBool(unread)
		if err != nil {
			return f, common.E(common.ErrValidation, "unread must be a boolean")
		}
		f.UnreadOnly = b
	}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 {
			return f, common.E(common.ErrValidation, "limit must be a positive integer")
		}
		f.Limit = min(n, maxNotificationLimit)
	}
	return f, nil
}

func (s *NotificationService) List(ctx context.Context, userID string, filter model.NotificationFilter) ([]model.Notification, error) {
	out, err := s.notificationRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return out, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	n, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	return s.notificationRepo.MarkRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, id, userID string) error {
	return s.notificationRepo.Delete(ctx, id, userID)
}
