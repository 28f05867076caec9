package memory

import (
	"context"
	"sync"

	"github.com/manuscript-app/manuscript/internal/messaging"
	"github.com/manuscript-app/manuscript/internal/teams/domain"
	"github.com/manuscript-app/manuscript/internal/teams/repository"
)

// TeamRepository реализует repository.TeamRepository в памяти для тестов
type TeamRepository struct {
	mu     sync.Mutex
	nextID int64
	teams  map[int64]*domain.Team
}

// NewTeamRepository создает новый экземпляр TeamRepository
func NewTeamRepository() *TeamRepository {
	return &TeamRepository{teams: make(map[int64]*domain.Team)}
}

// Create создает команду и возвращает ее с присвоенным id
func (r *TeamRepository) Create(ctx context.Context, eventID int64, input repository.TeamInput) (*domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	team := &domain.Team{
		ID:       r.nextID,
		Name:     input.Name,
		Image:    input.Image,
		EventID:  eventID,
		IsActive: true,
	}
	r.teams[team.ID] = team

	out := *team
	return &out, nil
}

// GetByID получает команду по ID
func (r *TeamRepository) GetByID(ctx context.Context, id int64) (*domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	team, ok := r.teams[id]
	if !ok {
		return nil, domain.ErrTeamNotFound
	}
	out := *team
	return &out, nil
}

// List возвращает команды; при onlyActive=true только активные
func (r *TeamRepository) List(ctx context.Context, onlyActive bool) ([]*domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var teams []*domain.Team
	for id := int64(1); id <= r.nextID; id++ {
		team, ok := r.teams[id]
		if !ok {
			continue
		}
		if onlyActive && !team.IsActive {
			continue
		}
		out := *team
		teams = append(teams, &out)
	}
	return teams, nil
}

// Edit обновляет изменяемые поля команды
func (r *TeamRepository) Edit(ctx context.Context, id int64, input repository.TeamInput) (*domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	team, ok := r.teams[id]
	if !ok {
		return nil, domain.ErrTeamNotFound
	}
	team.Name = input.Name
	team.Image = input.Image

	out := *team
	return &out, nil
}

// Deactivate снимает флаг активности команды
func (r *TeamRepository) Deactivate(ctx context.Context, id int64) (*domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	team, ok := r.teams[id]
	if !ok {
		return nil, domain.ErrTeamNotFound
	}
	team.IsActive = false

	out := *team
	return &out, nil
}

// ParticipantRepository реализует repository.ParticipantRepository в памяти
type ParticipantRepository struct {
	mu           sync.Mutex
	nextID       int64
	participants map[int64]*domain.Participant
	users        *UserRepository
}

// NewParticipantRepository создает новый экземпляр ParticipantRepository
func NewParticipantRepository(users *UserRepository) *ParticipantRepository {
	return &ParticipantRepository{
		participants: make(map[int64]*domain.Participant),
		users:        users,
	}
}

func (r *ParticipantRepository) clone(p *domain.Participant) *domain.Participant {
	out := *p
	if p.User != nil {
		user := *p.User
		out.User = &user
	}
	return &out
}

// Create создает запись участия и возвращает ее вместе с пользователем
func (r *ParticipantRepository) Create(ctx context.Context, teamID, userID int64, role, status string) (*domain.Participant, error) {
	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for id := int64(1); id <= r.nextID; id++ {
		existing, ok := r.participants[id]
		if !ok {
			continue
		}
		if existing.TeamID == teamID && existing.User.ID == userID && !domain.IsTerminal(existing.Status) {
			return nil, domain.ErrUserAlreadyHasParticipation
		}
	}

	r.nextID++
	participant := &domain.Participant{
		ID:     r.nextID,
		TeamID: teamID,
		User:   user,
		Role:   role,
		Status: status,
	}
	r.participants[participant.ID] = participant

	return r.clone(participant), nil
}

// GetByID получает запись участия в команде по ID записи
func (r *ParticipantRepository) GetByID(ctx context.Context, teamID, id int64) (*domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	participant, ok := r.participants[id]
	if !ok || participant.TeamID != teamID {
		return nil, domain.ErrParticipantNotFound
	}
	return r.clone(participant), nil
}

// ListByTeam возвращает записи участия команды в порядке создания
func (r *ParticipantRepository) ListByTeam(ctx context.Context, teamID int64) ([]*domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var participants []*domain.Participant
	for id := int64(1); id <= r.nextID; id++ {
		participant, ok := r.participants[id]
		if !ok || participant.TeamID != teamID {
			continue
		}
		participants = append(participants, r.clone(participant))
	}
	return participants, nil
}

// GetByTeamAndUser возвращает любую запись участия пары (команда, пользователь)
func (r *ParticipantRepository) GetByTeamAndUser(ctx context.Context, teamID, userID int64) (*domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id := int64(1); id <= r.nextID; id++ {
		participant, ok := r.participants[id]
		if !ok {
			continue
		}
		if participant.TeamID == teamID && participant.User.ID == userID {
			return r.clone(participant), nil
		}
	}
	return nil, domain.ErrParticipantNotFound
}

// GetActiveByTeamAndUser возвращает запись участия пары (команда,
// пользователь) с незавершенным статусом
func (r *ParticipantRepository) GetActiveByTeamAndUser(ctx context.Context, teamID, userID int64) (*domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id := int64(1); id <= r.nextID; id++ {
		participant, ok := r.participants[id]
		if !ok {
			continue
		}
		if participant.TeamID == teamID && participant.User.ID == userID && !domain.IsTerminal(participant.Status) {
			return r.clone(participant), nil
		}
	}
	return nil, domain.ErrParticipantNotFound
}

// SetStatus устанавливает статус записи участия
func (r *ParticipantRepository) SetStatus(ctx context.Context, id int64, status string) (*domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	participant, ok := r.participants[id]
	if !ok {
		return nil, domain.ErrParticipantNotFound
	}
	participant.Status = status
	return r.clone(participant), nil
}

// SetRole устанавливает роль записи участия
func (r *ParticipantRepository) SetRole(ctx context.Context, id int64, role string) (*domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	participant, ok := r.participants[id]
	if !ok {
		return nil, domain.ErrParticipantNotFound
	}
	participant.Role = role
	return r.clone(participant), nil
}

// EventRepository реализует repository.EventRepository в памяти для тестов
type EventRepository struct {
	mu     sync.Mutex
	events map[int64]*domain.Event
}

// NewEventRepository создает новый экземпляр EventRepository
func NewEventRepository() *EventRepository {
	return &EventRepository{events: make(map[int64]*domain.Event)}
}

// Upsert создает или обновляет копию мероприятия с каноническим id
func (r *EventRepository) Upsert(ctx context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := *event
	r.events[event.ID] = &out
	return nil
}

// GetByID получает мероприятие по каноническому ID
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	out := *event
	return &out, nil
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
	Teams        *TeamRepository
	Participants *ParticipantRepository
	Events       *EventRepository
	Users        *UserRepository
	Outbox       *messaging.MemoryOutbox
}

// NewUnitOfWork создает новый экземпляр UnitOfWork с пустыми репозиториями
func NewUnitOfWork() *UnitOfWork {
	users := NewUserRepository()
	return &UnitOfWork{
		Teams:        NewTeamRepository(),
		Participants: NewParticipantRepository(users),
		Events:       NewEventRepository(),
		Users:        users,
		Outbox:       messaging.NewMemoryOutbox(),
	}
}

// Do выполняет fn с репозиториями в памяти
func (u *UnitOfWork) Do(ctx context.Context, fn func(r repository.Repositories) error) error {
	return fn(repository.Repositories{
		Teams:        u.Teams,
		Participants: u.Participants,
		Events:       u.Events,
		Users:        u.Users,
		Outbox:       u.Outbox,
	})
}
