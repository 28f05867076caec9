package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/manuscript-app/manuscript/internal/messaging"
	"github.com/manuscript-app/manuscript/internal/teams/domain"
)

// EventRepository реализует repository.EventRepository для PostgreSQL.
// Хранит локальные копии мероприятий с каноническими id.
type EventRepository struct {
	db messaging.Querier
}

// NewEventRepository создает новый экземпляр EventRepository
func NewEventRepository(db messaging.Querier) *EventRepository {
	return &EventRepository{db: db}
}

// Upsert создает или обновляет копию мероприятия с каноническим id
func (r *EventRepository) Upsert(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (id, name, is_active)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    is_active = EXCLUDED.is_active
	`

	_, err := r.db.Exec(ctx, query, event.ID, event.Name, event.IsActive)
	return err
}

// GetByID получает мероприятие по каноническому ID
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	query := `
		SELECT id, name, is_active
		FROM events
		WHERE id = $1
	`

	var event domain.Event
	err := r.db.QueryRow(ctx, query, id).Scan(&event.ID, &event.Name, &event.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}

	return &event, nil
}
