package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/manuscript-app/manuscript/internal/messaging"
	"github.com/manuscript-app/manuscript/internal/notifications/domain"
	"github.com/manuscript-app/manuscript/internal/notifications/repository"
)

// Имена durable очередей сервиса уведомлений
const (
	QueueUserCreated       = "notifications.user.created"
	QueueJoinedRequest     = "notifications.user.joined_request"
	QueueJoinRequestUpdate = "notifications.user.join_request_updated"
	QueueLeftTeam          = "notifications.user.left_team"
	QueueKickedFromTeam    = "notifications.user.kicked_from_team"
)

// Consumer потребляет внешние события и создает уведомления.
// Повторная доставка командного события создает дубликат уведомления:
// записи не дедуплицируются.
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
		{QueueJoinedRequest, messaging.RoutingKeyUserJoinedRequest, c.handleTeamAction},
		{QueueJoinRequestUpdate, messaging.RoutingKeyUserJoinRequestUpdated, c.handleTeamAction},
		{QueueLeftTeam, messaging.RoutingKeyUserLeftTeam, c.handleTeamAction},
		{QueueKickedFromTeam, messaging.RoutingKeyUserKickedFromTeam, c.handleTeamAction},
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

// notificationText возвращает текст и статус уведомления для действия
func notificationText(msg messaging.TeamActionMessage) (string, string, error) {
	actor := msg.User.FirstName + " " + msg.User.LastName

	switch msg.Action {
	case messaging.ActionJoinedRequest:
		return fmt.Sprintf("%s хочет вступить в команду %s", actor, msg.Team.Name), domain.StatusSuccess, nil
	case messaging.ActionJoinRequestUpdated:
		return fmt.Sprintf("Статус вашей заявки в команду %s изменился", msg.Team.Name), domain.StatusSuccess, nil
	case messaging.ActionLeftTeam:
		return fmt.Sprintf("%s покинул команду %s", actor, msg.Team.Name), domain.StatusWarning, nil
	case messaging.ActionKickedFromTeam:
		return fmt.Sprintf("Вас исключили из команды %s", msg.Team.Name), domain.StatusDanger, nil
	}
	return "", "", fmt.Errorf("unknown team action %q", msg.Action)
}

// handleTeamAction создает по одному уведомлению на каждого получателя
// из списка to
func (c *Consumer) handleTeamAction(ctx context.Context, body []byte) error {
	var msg messaging.TeamActionMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("failed to parse team action payload: %w", err)
	}
	if len(msg.To) == 0 {
		return errors.New("team action payload has no recipients")
	}

	text, status, err := notificationText(msg)
	if err != nil {
		return err
	}

	err = c.uow.Do(ctx, func(r repository.Repositories) error {
		for _, userID := range msg.To {
			if _, err := r.Notifications.Create(ctx, userID, text, status); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("Notifications created", "action", msg.Action, "recipients", len(msg.To))
	return nil
}
