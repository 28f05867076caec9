package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/manuscript-app/manuscript/internal/messaging"
	"github.com/manuscript-app/manuscript/internal/teams/domain"
)

// ParticipantRepository реализует repository.ParticipantRepository для PostgreSQL
type ParticipantRepository struct {
	db messaging.Querier
}

// NewParticipantRepository создает новый экземпляр ParticipantRepository
func NewParticipantRepository(db messaging.Querier) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

const participantColumns = `
	p.id, p.team_id, p.role, p.status,
	u.id, u.username, u.email, u.first_name, u.last_name
`

func scanParticipant(row pgx.Row) (*domain.Participant, error) {
	var p domain.Participant
	var u domain.User
	err := row.Scan(
		&p.ID, &p.TeamID, &p.Role, &p.Status,
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrParticipantNotFound
		}
		return nil, err
	}
	p.User = &u
	return &p, nil
}

// Create создает запись участия и возвращает ее вместе с пользователем.
// Частичный уникальный индекс по (team_id, user_id) для незавершенных
// статусов закрывает гонку двух одновременных заявок.
func (r *ParticipantRepository) Create(ctx context.Context, teamID, userID int64, role, status string) (*domain.Participant, error) {
	query := `
		INSERT INTO participants (team_id, user_id, role, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query, teamID, userID, role, status).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrUserAlreadyHasParticipation
		}
		return nil, err
	}

	return r.get(ctx, "p.id = $1", id)
}

func (r *ParticipantRepository) get(ctx context.Context, where string, args ...any) (*domain.Participant, error) {
	query := `
		SELECT ` + participantColumns + `
		FROM participants p
		JOIN users u ON u.id = p.user_id
		WHERE ` + where + `
		ORDER BY p.id
		LIMIT 1
	`

	return scanParticipant(r.db.QueryRow(ctx, query, args...))
}

// GetByID получает запись участия в команде по ID записи
func (r *ParticipantRepository) GetByID(ctx context.Context, teamID, id int64) (*domain.Participant, error) {
	return r.get(ctx, "p.team_id = $1 AND p.id = $2", teamID, id)
}

// ListByTeam возвращает записи участия команды в порядке создания
func (r *ParticipantRepository) ListByTeam(ctx context.Context, teamID int64) ([]*domain.Participant, error) {
	query := `
		SELECT ` + participantColumns + `
		FROM participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.team_id = $1
		ORDER BY p.id
	`

	rows, err := r.db.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []*domain.Participant
	for rows.Next() {
		participant, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, participant)
	}

	return participants, rows.Err()
}

// GetByTeamAndUser возвращает любую запись участия пары (команда, пользователь)
func (r *ParticipantRepository) GetByTeamAndUser(ctx context.Context, teamID, userID int64) (*domain.Participant, error) {
	return r.get(ctx, "p.team_id = $1 AND p.user_id = $2", teamID, userID)
}

// GetActiveByTeamAndUser возвращает запись участия пары (команда,
// пользователь) с незавершенным статусом
func (r *ParticipantRepository) GetActiveByTeamAndUser(ctx context.Context, teamID, userID int64) (*domain.Participant, error) {
	return r.get(ctx, "p.team_id = $1 AND p.user_id = $2 AND p.status IN ('PENDING', 'APPLIED')", teamID, userID)
}

// SetStatus устанавливает статус записи участия
func (r *ParticipantRepository) SetStatus(ctx context.Context, id int64, status string) (*domain.Participant, error) {
	query := `
		UPDATE participants
		SET status = $2
		WHERE id = $1
		RETURNING id
	`

	var updated int64
	if err := r.db.QueryRow(ctx, query, id, status).Scan(&updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrParticipantNotFound
		}
		return nil, err
	}

	return r.get(ctx, "p.id = $1", updated)
}

// SetRole устанавливает роль записи участия
func (r *ParticipantRepository) SetRole(ctx context.Context, id int64, role string) (*domain.Participant, error) {
	query := `
		UPDATE participants
		SET role = $2
		WHERE id = $1
		RETURNING id
	`

	var updated int64
	if err := r.db.QueryRow(ctx, query, id, role).Scan(&updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrParticipantNotFound
		}
		return nil, err
	}

	return r.get(ctx, "p.id = $1", updated)
}
