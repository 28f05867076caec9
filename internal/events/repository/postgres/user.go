package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/manuscript-app/manuscript/internal/events/domain"
	"github.com/manuscript-app/manuscript/internal/messaging"
)

// UserRepository реализует repository.UserRepository для PostgreSQL.
// Хранит локальные копии пользователей с каноническими id.
type UserRepository struct {
	db messaging.Querier
}

// NewUserRepository создает новый экземпляр UserRepository
func NewUserRepository(db messaging.Querier) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert создает или обновляет копию пользователя с каноническим id
func (r *UserRepository) Upsert(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, username, email, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET username = EXCLUDED.username,
		    email = EXCLUDED.email,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name
	`

	_, err := r.db.Exec(ctx, query, user.ID, user.Username, user.Email, user.FirstName, user.LastName)
	return err
}

// GetByID получает пользователя по каноническому ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT id, username, email, first_name, last_name
		FROM users
		WHERE id = $1
	`

	var user domain.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}
