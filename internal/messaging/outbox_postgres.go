package messaging

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier это общий интерфейс pgxpool.Pool и pgx.Tx:
// outbox пишется и внутри транзакции сервиса, и читается relay'ем через pool
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresOutbox реализует OutboxStore для PostgreSQL
type PostgresOutbox struct {
	db Querier
}

// NewPostgresOutbox создает новый экземпляр PostgresOutbox
func NewPostgresOutbox(db Querier) *PostgresOutbox {
	return &PostgresOutbox{db: db}
}

// Append добавляет неотправленное сообщение в outbox
func (o *PostgresOutbox) Append(ctx context.Context, routingKey string, body []byte) error {
	query := `
		INSERT INTO outbox (message_id, routing_key, body)
		VALUES ($1, $2, $3)
	`

	_, err := o.db.Exec(ctx, query, uuid.NewString(), routingKey, body)
	return err
}

// ListPending возвращает до limit неотправленных сообщений в порядке создания
func (o *PostgresOutbox) ListPending(ctx context.Context, limit int) ([]*OutboxMessage, error) {
	query := `
		SELECT id, message_id, routing_key, body, created_at, sent_at
		FROM outbox
		WHERE sent_at IS NULL
		ORDER BY id
		LIMIT $1
	`

	rows, err := o.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*OutboxMessage
	for rows.Next() {
		var msg OutboxMessage
		if err := rows.Scan(&msg.ID, &msg.MessageID, &msg.RoutingKey, &msg.Body, &msg.CreatedAt, &msg.SentAt); err != nil {
			return nil, err
		}
		messages = append(messages, &msg)
	}

	return messages, rows.Err()
}

// MarkSent помечает сообщение отправленным
func (o *PostgresOutbox) MarkSent(ctx context.Context, id int64) error {
	query := `UPDATE outbox SET sent_at = NOW() WHERE id = $1`

	_, err := o.db.Exec(ctx, query, id)
	return err
}
