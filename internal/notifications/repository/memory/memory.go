package memory

import (
	"context"
	"sync"
	"time"

	"github.com/manuscript-app/manuscript/internal/notifications/domain"
	"github.com/manuscript-app/manuscript/internal/notifications/repository"
)

// NotificationRepository реализует repository.NotificationRepository в памяти
type NotificationRepository struct {
	mu            sync.Mutex
	nextID        int64
	notifications map[int64]*domain.Notification
}

// NewNotificationRepository создает новый экземпляр NotificationRepository
func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{notifications: make(map[int64]*domain.Notification)}
}

// Create создает уведомление и возвращает его с присвоенным id
func (r *NotificationRepository) Create(ctx context.Context, userID int64, message, status string) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	notification := &domain.Notification{
		ID:        r.nextID,
		UserID:    userID,
		Message:   message,
		Status:    status,
		CreatedAt: time.Now(),
	}
	r.notifications[notification.ID] = notification

	out := *notification
	return &out, nil
}

// GetByID получает уведомление по ID
func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	notification, ok := r.notifications[id]
	if !ok {
		return nil, domain.ErrNotificationNotFound
	}
	out := *notification
	return &out, nil
}

// ListByUser возвращает уведомления пользователя от новых к старым
func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var notifications []*domain.Notification
	for id := r.nextID; id >= 1; id-- {
		notification, ok := r.notifications[id]
		if !ok || notification.UserID != userID {
			continue
		}
		out := *notification
		notifications = append(notifications, &out)
	}
	return notifications, nil
}

// UserRepository реализует repository.UserRepository в памяти для тестов
type UserRepository struct {
	mu    sync.Mutex
	users map[int64]*domain.User
}

// NewUserRepository создает новый экземпляр UserRepository
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[int64]*domain.User)}
}

// Upsert создает или обновляет копию пользователя с каноническим id
func (r *UserRepository) Upsert(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := *user
	r.users[user.ID] = &out
	return nil
}

// GetByID получает пользователя по каноническому ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

// UnitOfWork реализует repository.UnitOfWork в памяти
type UnitOfWork struct {
	Notifications *NotificationRepository
	Users         *UserRepository
}

// NewUnitOfWork создает новый экземпляр UnitOfWork с пустыми репозиториями
func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{
		Notifications: NewNotificationRepository(),
		Users:         NewUserRepository(),
	}
}

// Do выполняет fn с репозиториями в памяти
func (u *UnitOfWork) Do(ctx context.Context, fn func(r repository.Repositories) error) error {
	return fn(repository.Repositories{
		Notifications: u.Notifications,
		Users:         u.Users,
	})
}
