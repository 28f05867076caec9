package repository

import (
	"context"

	"github.com/manuscript-app/manuscript/internal/events/domain"
	"github.com/manuscript-app/manuscript/internal/messaging"
)

// EventInput содержит изменяемые поля мероприятия
type EventInput struct {
	Name            string
	Image           string
	Location        string
	LocationURL     string
	Description     string
	FullDescription string
	StartDate       string
	EndDate         string
	Tags            []string
}

// EventRepository определяет методы для работы с мероприятиями
type EventRepository interface {
	// Create создает мероприятие и возвращает его с присвоенным id
	Create(ctx context.Context, authorID int64, input EventInput) (*domain.Event, error)

	// GetByID получает мероприятие по ID вместе с автором
	GetByID(ctx context.Context, id int64) (*domain.Event, error)

	// List возвращает мероприятия; при onlyActive=true только активные
	List(ctx context.Context, onlyActive bool) ([]*domain.Event, error)

	// Edit обновляет изменяемые поля мероприятия
	Edit(ctx context.Context, id int64, input EventInput) (*domain.Event, error)

	// Deactivate снимает флаг активности мероприятия
	Deactivate(ctx context.Context, id int64) (*domain.Event, error)
}

// UserRepository определяет методы для работы с локальными копиями пользователей.
// Upsert вызывается только обработчиком события user.created.
type UserRepository interface {
	// Upsert создает или обновляет копию пользователя с каноническим id
	Upsert(ctx context.Context, user *domain.User) error

	// GetByID получает пользователя по каноническому ID
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Repositories это набор репозиториев, привязанных к одной транзакции
type Repositories struct {
	Events EventRepository
	Users  UserRepository
	Outbox messaging.OutboxStore
}

// UnitOfWork выполняет функцию в границах одной транзакции
type UnitOfWork interface {
	Do(ctx context.Context, fn func(r Repositories) error) error
}
