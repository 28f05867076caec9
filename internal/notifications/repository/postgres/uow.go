package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/manuscript-app/manuscript/internal/notifications/repository"
)

// UnitOfWork реализует repository.UnitOfWork поверх транзакций pgx
type UnitOfWork struct {
	db *pgxpool.Pool
}

// NewUnitOfWork создает новый экземпляр UnitOfWork
func NewUnitOfWork(db *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Do выполняет fn в границах одной транзакции
func (u *UnitOfWork) Do(ctx context.Context, fn func(r repository.Repositories) error) error {
	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback после commit это no-op

	repos := repository.Repositories{
		Notifications: NewNotificationRepository(tx),
		Users:         NewUserRepository(tx),
	}

	if err := fn(repos); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
