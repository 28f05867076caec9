package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/manuscript-app/manuscript/internal/messaging"
	"github.com/manuscript-app/manuscript/internal/teams/domain"
	"github.com/manuscript-app/manuscript/internal/teams/repository"
)

// TeamRepository реализует repository.TeamRepository для PostgreSQL
type TeamRepository struct {
	db messaging.Querier
}

// NewTeamRepository создает новый экземпляр TeamRepository
func NewTeamRepository(db messaging.Querier) *TeamRepository {
	return &TeamRepository{db: db}
}

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var team domain.Team
	err := row.Scan(&team.ID, &team.Name, &team.Image, &team.EventID, &team.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}

// Create создает команду и возвращает ее с присвоенным id
func (r *TeamRepository) Create(ctx context.Context, eventID int64, input repository.TeamInput) (*domain.Team, error) {
	query := `
		INSERT INTO teams (name, image, event_id, is_active)
		VALUES ($1, $2, $3, true)
		RETURNING id, name, image, event_id, is_active
	`

	return scanTeam(r.db.QueryRow(ctx, query, input.Name, input.Image, eventID))
}

// GetByID получает команду по ID
func (r *TeamRepository) GetByID(ctx context.Context, id int64) (*domain.Team, error) {
	query := `
		SELECT id, name, image, event_id, is_active
		FROM teams
		WHERE id = $1
	`

	return scanTeam(r.db.QueryRow(ctx, query, id))
}

// List возвращает команды; при onlyActive=true только активные
func (r *TeamRepository) List(ctx context.Context, onlyActive bool) ([]*domain.Team, error) {
	query := `
		SELECT id, name, image, event_id, is_active
		FROM teams
		WHERE NOT $1 OR is_active
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, onlyActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []*domain.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// Edit обновляет изменяемые поля команды
func (r *TeamRepository) Edit(ctx context.Context, id int64, input repository.TeamInput) (*domain.Team, error) {
	query := `
		UPDATE teams
		SET name = $2, image = $3
		WHERE id = $1
		RETURNING id, name, image, event_id, is_active
	`

	return scanTeam(r.db.QueryRow(ctx, query, id, input.Name, input.Image))
}

// Deactivate снимает флаг активности команды
func (r *TeamRepository) Deactivate(ctx context.Context, id int64) (*domain.Team, error) {
	query := `
		UPDATE teams
		SET is_active = false
		WHERE id = $1
		RETURNING id, name, image, event_id, is_active
	`

	return scanTeam(r.db.QueryRow(ctx, query, id))
}
