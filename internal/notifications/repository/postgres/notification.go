package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/manuscript-app/manuscript/internal/messaging"
	"github.com/manuscript-app/manuscript/internal/notifications/domain"
)

// NotificationRepository реализует repository.NotificationRepository для PostgreSQL
type NotificationRepository struct {
	db messaging.Querier
}

// NewNotificationRepository создает новый экземпляр NotificationRepository
func NewNotificationRepository(db messaging.Querier) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Message, &n.Status, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}

// Create создает уведомление и возвращает его с присвоенным id
func (r *NotificationRepository) Create(ctx context.Context, userID int64, message, status string) (*domain.Notification, error) {
	query := `
		INSERT INTO notifications (user_id, message, status)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, message, status, created_at
	`

	return scanNotification(r.db.QueryRow(ctx, query, userID, message, status))
}

// GetByID получает уведомление по ID
func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	query := `
		SELECT id, user_id, message, status, created_at
		FROM notifications
		WHERE id = $1
	`

	return scanNotification(r.db.QueryRow(ctx, query, id))
}

// ListByUser возвращает уведомления пользователя от новых к старым
func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Notification, error) {
	query := `
		SELECT id, user_id, message, status, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY id DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}

	return notifications, rows.Err()
}
