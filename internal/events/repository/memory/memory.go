package memory

import (
	"context"
	"sync"

	"github.com/manuscript-app/manuscript/internal/events/domain"
	"github.com/manuscript-app/manuscript/internal/events/repository"
	"github.com/manuscript-app/manuscript/internal/messaging"
)

// EventRepository реализует repository.EventRepository в памяти для тестов
type EventRepository struct {
	mu     sync.Mutex
	nextID int64
	events map[int64]*domain.Event
	users  *UserRepository
}

// NewEventRepository создает новый экземпляр EventRepository
func NewEventRepository(users *UserRepository) *EventRepository {
	return &EventRepository{
		events: make(map[int64]*domain.Event),
		users:  users,
	}
}

func applyInput(event *domain.Event, input repository.EventInput) {
	event.Name = input.Name
	event.Image = input.Image
	event.Location = input.Location
	event.LocationURL = input.LocationURL
	event.Description = input.Description
	event.FullDescription = input.FullDescription
	event.StartDate = input.StartDate
	event.EndDate = input.EndDate
	event.Tags = input.Tags
}

// Create создает мероприятие и возвращает его с присвоенным id
func (r *EventRepository) Create(ctx context.Context, authorID int64, input repository.EventInput) (*domain.Event, error) {
	author, err := r.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	event := &domain.Event{
		ID:       r.nextID,
		Author:   author,
		IsActive: true,
	}
	applyInput(event, input)
	r.events[event.ID] = event

	out := *event
	return &out, nil
}

// GetByID получает мероприятие по ID
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

// List возвращает мероприятия; при onlyActive=true только активные
func (r *EventRepository) List(ctx context.Context, onlyActive bool) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var events []*domain.Event
	for id := int64(1); id <= r.nextID; id++ {
		event, ok := r.events[id]
		if !ok {
			continue
		}
		if onlyActive && !event.IsActive {
			continue
		}
		out := *event
		events = append(events, &out)
	}
	return events, nil
}

// Edit обновляет изменяемые поля мероприятия
func (r *EventRepository) Edit(ctx context.Context, id int64, input repository.EventInput) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	applyInput(event, input)

	out := *event
	return &out, nil
}

// Deactivate снимает флаг активности мероприятия
func (r *EventRepository) Deactivate(ctx context.Context, id int64) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	event.IsActive = false

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
	Events *EventRepository
	Users  *UserRepository
	Outbox *messaging.MemoryOutbox
}

// NewUnitOfWork создает новый экземпляр UnitOfWork с пустыми репозиториями
func NewUnitOfWork() *UnitOfWork {
	users := NewUserRepository()
	return &UnitOfWork{
		Events: NewEventRepository(users),
		Users:  users,
		Outbox: messaging.NewMemoryOutbox(),
	}
}

// Do выполняет fn с репозиториями в памяти
func (u *UnitOfWork) Do(ctx context.Context, fn func(r repository.Repositories) error) error {
	return fn(repository.Repositories{
		Events: u.Events,
		Users:  u.Users,
		Outbox: u.Outbox,
	})
}
