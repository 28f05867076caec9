package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/manuscript-app/manuscript/internal/events/domain"
	"github.com/manuscript-app/manuscript/internal/events/repository"
	"github.com/manuscript-app/manuscript/internal/messaging"
)

// EventRepository реализует repository.EventRepository для PostgreSQL
type EventRepository struct {
	db messaging.Querier
}

// NewEventRepository создает новый экземпляр EventRepository
func NewEventRepository(db messaging.Querier) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `
	e.id, e.name, e.image, e.location, e.location_url,
	e.description, e.full_description, e.start_date, e.end_date,
	e.tags, e.is_active,
	u.id, u.username, u.email, u.first_name, u.last_name
`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var event domain.Event
	var author domain.User
	err := row.Scan(
		&event.ID, &event.Name, &event.Image, &event.Location, &event.LocationURL,
		&event.Description, &event.FullDescription, &event.StartDate, &event.EndDate,
		&event.Tags, &event.IsActive,
		&author.ID, &author.Username, &author.Email, &author.FirstName, &author.LastName,
	)
	if err != nil {
		return nil, err
	}
	event.Author = &author
	return &event, nil
}

// Create создает мероприятие и возвращает его с присвоенным id
func (r *EventRepository) Create(ctx context.Context, authorID int64, input repository.EventInput) (*domain.Event, error) {
	query := `
		INSERT INTO events (name, image, location, location_url, description,
			full_description, start_date, end_date, tags, author_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		input.Name, input.Image, input.Location, input.LocationURL, input.Description,
		input.FullDescription, input.StartDate, input.EndDate, input.Tags, authorID,
	).Scan(&id)
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// GetByID получает мероприятие по ID вместе с автором
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		JOIN users u ON u.id = e.author_id
		WHERE e.id = $1
	`

	event, err := scanEvent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}

	return event, nil
}

// List возвращает мероприятия; при onlyActive=true только активные
func (r *EventRepository) List(ctx context.Context, onlyActive bool) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		JOIN users u ON u.id = e.author_id
		WHERE ($1 = false OR e.is_active = true)
		ORDER BY e.id
	`

	rows, err := r.db.Query(ctx, query, onlyActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// Edit обновляет изменяемые поля мероприятия
func (r *EventRepository) Edit(ctx context.Context, id int64, input repository.EventInput) (*domain.Event, error) {
	query := `
		UPDATE events
		SET name = $1, image = $2, location = $3, location_url = $4,
		    description = $5, full_description = $6, start_date = $7,
		    end_date = $8, tags = $9
		WHERE id = $10
	`

	result, err := r.db.Exec(ctx, query,
		input.Name, input.Image, input.Location, input.LocationURL, input.Description,
		input.FullDescription, input.StartDate, input.EndDate, input.Tags, id,
	)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected() == 0 {
		return nil, domain.ErrEventNotFound
	}

	return r.GetByID(ctx, id)
}

// Deactivate снимает флаг активности мероприятия
func (r *EventRepository) Deactivate(ctx context.Context, id int64) (*domain.Event, error) {
	query := `UPDATE events SET is_active = false WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected() == 0 {
		return nil, domain.ErrEventNotFound
	}

	return r.GetByID(ctx, id)
}
