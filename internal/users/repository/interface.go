package repository

import (
	"context"

	"github.com/manuscript-app/manuscript/internal/messaging"
	"github.com/manuscript-app/manuscript/internal/users/domain"
)

// UserRepository определяет методы для работы с данными пользователей
type UserRepository interface {
	// Create создает нового пользователя и возвращает его с присвоенным id
	Create(ctx context.Context, user *domain.User, passwordHash string) (*domain.User, error)

	// GetByID получает пользователя по ID
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail получает пользователя по email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// PasswordHashByEmail возвращает хеш пароля пользователя
	PasswordHashByEmail(ctx context.Context, email string) (string, error)

	// List возвращает всех пользователей
	List(ctx context.Context) ([]*domain.User, error)
}

// Repositories это набор репозиториев, привязанных к одной транзакции
type Repositories struct {
	Users  UserRepository
	Outbox messaging.OutboxStore
}

// UnitOfWork выполняет функцию в границах одной транзакции:
// begin при входе, commit при успехе, rollback при ошибке на всех путях
type UnitOfWork interface {
	Do(ctx context.Context, fn func(r Repositories) error) error
}
