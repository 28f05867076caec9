package repository

import (
	"context"

	"github.com/manuscript-app/manuscript/internal/notifications/domain"
)

// NotificationRepository определяет методы для работы с уведомлениями
type NotificationRepository interface {
	// Create создает уведомление и возвращает его с присвоенным id
	Create(ctx context.Context, userID int64, message, status string) (*domain.Notification, error)

	// GetByID получает уведомление по ID
	GetByID(ctx context.Context, id int64) (*domain.Notification, error)

	// ListByUser возвращает уведомления пользователя от новых к старым
	ListByUser(ctx context.Context, userID int64) ([]*domain.Notification, error)
}

// UserRepository определяет методы для работы с локальными копиями пользователей.
// Upsert вызывается только обработчиком события user.created.
type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Repositories это набор репозиториев, привязанных к одной транзакции
type Repositories struct {
	Notifications NotificationRepository
	Users         UserRepository
}

// UnitOfWork выполняет функцию в границах одной транзакции
type UnitOfWork interface {
	Do(ctx context.Context, fn func(r Repositories) error) error
}
