package consumer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manuscript-app/manuscript/internal/messaging"
	"github.com/manuscript-app/manuscript/internal/notifications/domain"
	"github.com/manuscript-app/manuscript/internal/notifications/repository/memory"
)

func newTestConsumer(t *testing.T) (*Consumer, *memory.UnitOfWork) {
	t.Helper()

	uow := memory.NewUnitOfWork()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(messaging.NewMemoryBroker(), uow, logger), uow
}

func teamFact(t *testing.T, action string, to ...int64) []byte {
	t.Helper()

	body, err := json.Marshal(messaging.TeamActionMessage{
		To:     to,
		User:   messaging.UserSummary{ID: 20, Username: "ivan@example.com", FirstName: "Иван", LastName: "Петров"},
		Team:   messaging.TeamSummary{ID: 5, Name: "alpha", EventID: 1, IsActive: true},
		Action: action,
	})
	require.NoError(t, err)
	return body
}

// TestHandleTeamAction проверяет создание уведомлений по командным событиям
func TestHandleTeamAction(t *testing.T) {
	ctx := context.Background()

	t.Run("создает по уведомлению на каждого получателя", func(t *testing.T) {
		c, uow := newTestConsumer(t)

		require.NoError(t, c.handleTeamAction(ctx, teamFact(t, messaging.ActionLeftTeam, 10, 30)))

		first, err := uow.Notifications.ListByUser(ctx, 10)
		require.NoError(t, err)
		require.Len(t, first, 1)
		assert.Equal(t, domain.StatusWarning, first[0].Status)
		assert.Contains(t, first[0].Message, "alpha")

		second, err := uow.Notifications.ListByUser(ctx, 30)
		require.NoError(t, err)
		assert.Len(t, second, 1)
	})

	t.Run("повторная доставка создает дубликат", func(t *testing.T) {
		c, uow := newTestConsumer(t)

		body := teamFact(t, messaging.ActionKickedFromTeam, 10)
		require.NoError(t, c.handleTeamAction(ctx, body))
		require.NoError(t, c.handleTeamAction(ctx, body))

		notifications, err := uow.Notifications.ListByUser(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, notifications, 2, "redelivery is not deduplicated")
	})

	t.Run("статус уведомления зависит от действия", func(t *testing.T) {
		c, uow := newTestConsumer(t)

		require.NoError(t, c.handleTeamAction(ctx, teamFact(t, messaging.ActionJoinedRequest, 10)))
		require.NoError(t, c.handleTeamAction(ctx, teamFact(t, messaging.ActionKickedFromTeam, 10)))

		notifications, err := uow.Notifications.ListByUser(ctx, 10)
		require.NoError(t, err)
		require.Len(t, notifications, 2)

		// ListByUser возвращает от новых к старым
		assert.Equal(t, domain.StatusDanger, notifications[0].Status)
		assert.Equal(t, domain.StatusSuccess, notifications[1].Status)
	})

	t.Run("неизвестное действие возвращает ошибку", func(t *testing.T) {
		c, uow := newTestConsumer(t)

		err := c.handleTeamAction(ctx, teamFact(t, "exploded", 10))
		assert.Error(t, err)

		notifications, err := uow.Notifications.ListByUser(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, notifications)
	})

	t.Run("payload без получателей возвращает ошибку", func(t *testing.T) {
		c, _ := newTestConsumer(t)

		assert.Error(t, c.handleTeamAction(ctx, teamFact(t, messaging.ActionLeftTeam)))
		assert.Error(t, c.handleTeamAction(ctx, []byte("{broken")))
	})
}

// TestHandleUserCreated проверяет локальную копию пользователя
func TestHandleUserCreated(t *testing.T) {
	ctx := context.Background()

	c, uow := newTestConsumer(t)

	body, _ := json.Marshal(messaging.UserCreatedMessage{ID: 42, Username: "ivan@example.com", Email: "ivan@example.com"})
	require.NoError(t, c.handleUserCreated(ctx, body))
	require.NoError(t, c.handleUserCreated(ctx, body))

	user, err := uow.Users.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "ivan@example.com", user.Email)

	assert.Error(t, c.handleUserCreated(ctx, []byte(`{"username":"no-id"}`)))
}
