package service

import (
	"context"
	"log/slog"

	"github.com/manuscript-app/manuscript/internal/notifications/domain"
	"github.com/manuscript-app/manuscript/internal/notifications/repository"
)

// NotificationService handles business logic for notifications
type NotificationService struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(uow repository.UnitOfWork, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		uow:    uow,
		logger: logger,
	}
}

// Get retrieves a notification; only its owner may read it
func (s *NotificationService) Get(ctx context.Context, id, actingUserID int64) (*domain.Notification, error) {
	var notification *domain.Notification
	err := s.uow.Do(ctx, func(r repository.Repositories) error {
		var err error
		notification, err = r.Notifications.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if notification.UserID != actingUserID {
			return domain.ErrUserIsNotNotificationOwner
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return notification, nil
}

// List returns the acting user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, actingUserID int64) ([]*domain.Notification, error) {
	var notifications []*domain.Notification
	err := s.uow.Do(ctx, func(r repository.Repositories) error {
		var err error
		notifications, err = r.Notifications.ListByUser(ctx, actingUserID)
		return err
	})
	return notifications, err
}
