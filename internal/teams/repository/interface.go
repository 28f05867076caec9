package repository

import (
	"context"

	"github.com/manuscript-app/manuscript/internal/messaging"
	"github.com/manuscript-app/manuscript/internal/teams/domain"
)

// TeamInput содержит изменяемые поля команды
type TeamInput struct {
	Name  string
	Image string
}

// TeamRepository определяет методы для работы с командами
type TeamRepository interface {
	// Create создает команду и возвращает ее с присвоенным id
	Create(ctx context.Context, eventID int64, input TeamInput) (*domain.Team, error)

	// GetByID получает команду по ID
	GetByID(ctx context.Context, id int64) (*domain.Team, error)

	// List возвращает команды; при onlyActive=true только активные
	List(ctx context.Context, onlyActive bool) ([]*domain.Team, error)

	// Edit обновляет изменяемые поля команды
	Edit(ctx context.Context, id int64, input TeamInput) (*domain.Team, error)

	// Deactivate снимает флаг активности команды
	Deactivate(ctx context.Context, id int64) (*domain.Team, error)
}

// ParticipantRepository определяет методы для работы с записями участия
type ParticipantRepository interface {
	// Create создает запись участия и возвращает ее вместе с пользователем
	Create(ctx context.Context, teamID, userID int64, role, status string) (*domain.Participant, error)

	// GetByID получает запись участия в команде по ID записи
	GetByID(ctx context.Context, teamID, id int64) (*domain.Participant, error)

	// ListByTeam возвращает записи участия команды в порядке создания
	ListByTeam(ctx context.Context, teamID int64) ([]*domain.Participant, error)

	// GetByTeamAndUser возвращает любую запись участия пары (команда, пользователь)
	GetByTeamAndUser(ctx context.Context, teamID, userID int64) (*domain.Participant, error)

	// GetActiveByTeamAndUser возвращает запись участия пары (команда,
	// пользователь) с незавершенным статусом
	GetActiveByTeamAndUser(ctx context.Context, teamID, userID int64) (*domain.Participant, error)

	// SetStatus устанавливает статус записи участия
	SetStatus(ctx context.Context, id int64, status string) (*domain.Participant, error)

	// SetRole устанавливает роль записи участия
	SetRole(ctx context.Context, id int64, role string) (*domain.Participant, error)
}

// EventRepository определяет методы для работы с локальными копиями мероприятий.
// Upsert вызывается только обработчиками событий event.created и event.edited.
type EventRepository interface {
	Upsert(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
}

// UserRepository определяет методы для работы с локальными копиями пользователей.
// Upsert вызывается только обработчиком события user.created.
type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Repositories это набор репозиториев, привязанных к одной транзакции
type Repositories struct {
	Teams        TeamRepository
	Participants ParticipantRepository
	Events       EventRepository
	Users        UserRepository
	Outbox       messaging.OutboxStore
}

// UnitOfWork выполняет функцию в границах одной транзакции
type UnitOfWork interface {
	Do(ctx context.Context, fn func(r Repositories) error) error
}
