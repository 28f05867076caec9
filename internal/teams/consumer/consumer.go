package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/manuscript-app/manuscript/internal/messaging"
	"github.com/manuscript-app/manuscript/internal/teams/domain"
	"github.com/manuscript-app/manuscript/internal/teams/repository"
)

// Имена durable очередей сервиса команд
const (
	QueueUserCreated  = "teams.user.created"
	QueueEventCreated = "teams.event.created"
	QueueEventEdited  = "teams.event.edited"
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
	bindings := []struct {
		queue      string
		routingKey string
		handler    messaging.Handler
	}{
		{QueueUserCreated, messaging.RoutingKeyUserCreated, c.handleUserCreated},
		{QueueEventCreated, messaging.RoutingKeyEventCreated, c.handleEvent},
		{QueueEventEdited, messaging.RoutingKeyEventEdited, c.handleEvent},
	}

	for _, b := range bindings {
		if err := c.broker.Subscribe(b.queue, b.routingKey, b.handler); err != nil {
			return err
		}
	}

	return c.broker.StartConsuming(ctx)
}

// handleUserCreated создает или обновляет локальную копию пользователя
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

// handleEvent создает или обновляет локальную копию мероприятия.
// event.created и event.edited сходятся к одному и тому же состоянию,
// поэтому порядок доставки между очередями не важен.
func (c *Consumer) handleEvent(ctx context.Context, body []byte) error {
	var msg messaging.EventMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("failed to parse event payload: %w", err)
	}
	if msg.ID == 0 {
		return errors.New("event payload has no id")
	}

	err := c.uow.Do(ctx, func(r repository.Repositories) error {
		return r.Events.Upsert(ctx, &domain.Event{
			ID:       msg.ID,
			Name:     msg.Name,
			IsActive: msg.IsActive,
		})
	})
	if err != nil {
		return err
	}

	c.logger.Info("Event replica upserted", "event_id", msg.ID)
	return nil
}
