package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/manuscript-app/manuscript/internal/events/domain"
	"github.com/manuscript-app/manuscript/internal/events/repository"
	"github.com/manuscript-app/manuscript/internal/messaging"
)

// Имена durable очередей сервиса мероприятий
const (
	QueueUserCreated = "events.user.created"
)

// Consumer потребляет внешние события и обновляет локальные копии.
// Только обработчики событий пишут в локальные копии чужих сущностей.
type Consumer struct {
	broker messaging.MessageBroker
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New создает новый Consumer
func New(broker messaging.MessageBroker, uow repository.UnitOfWork, logger *slog.Logger) *Consumer {
	return &Consumer{
		broker: broker,
		uow:    uow,
		logger: logger,
	}
}

// Start привязывает очереди к routing key'ам и блокируется в цикле потребления
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.broker.Subscribe(QueueUserCreated, messaging.RoutingKeyUserCreated, c.handleUserCreated); err != nil {
		return err
	}

	return c.broker.StartConsuming(ctx)
}

// handleUserCreated создает или обновляет локальную копию пользователя.
// Копия сохраняет канонический id, поэтому повторная доставка сходится
// к тому же состоянию.
func (c *Consumer) handleUserCreated(ctx context.Context, body []byte) error {
	var msg messaging.UserCreatedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("failed to parse user.created payload: %w", err)
	}
	if msg.ID == 0 {
		return errors.New("user.created payload has no id")
	}

	err := c.uow.Do(ctx, func(r repository.Repositories) error {
		return r.Users.Upsert(ctx, &domain.User{
			ID:        msg.ID,
			Username:  msg.Username,
			Email:     msg.Email,
			FirstName: msg.FirstName,
			LastName:  msg.LastName,
		})
	})
	if err != nil {
		return err
	}

	c.logger.Info("User replica upserted", "user_id", msg.ID)
	return nil
}
