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
	"github.com/manuscript-app/manuscript/internal/teams/repository/memory"
)

func newTestConsumer(t *testing.T) (*Consumer, *memory.UnitOfWork) {
	t.Helper()

	uow := memory.NewUnitOfWork()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(messaging.NewMemoryBroker(), uow, logger), uow
}

// TestHandleUserCreated проверяет создание и сходимость локальной копии пользователя
func TestHandleUserCreated(t *testing.T) {
	ctx := context.Background()

	t.Run("создает копию с каноническим id", func(t *testing.T) {
		c, uow := newTestConsumer(t)

		body, _ := json.Marshal(messaging.UserCreatedMessage{
			ID: 42, Username: "ivan@example.com", Email: "ivan@example.com", FirstName: "Иван", LastName: "Петров",
		})
		require.NoError(t, c.handleUserCreated(ctx, body))

		user, err := uow.Users.GetByID(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, "Иван", user.FirstName)
	})

	t.Run("повторная доставка сходится к тому же состоянию", func(t *testing.T) {
		c, uow := newTestConsumer(t)

		body, _ := json.Marshal(messaging.UserCreatedMessage{ID: 42, Username: "ivan@example.com"})
		require.NoError(t, c.handleUserCreated(ctx, body))
		require.NoError(t, c.handleUserCreated(ctx, body))

		user, err := uow.Users.GetByID(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, "ivan@example.com", user.Username)
	})

	t.Run("некорректный payload возвращает ошибку", func(t *testing.T) {
		c, _ := newTestConsumer(t)

		assert.Error(t, c.handleUserCreated(ctx, []byte("not json")))
		assert.Error(t, c.handleUserCreated(ctx, []byte(`{"username":"no-id"}`)))
	})
}

// TestHandleEvent проверяет, что event.created и event.edited сходятся
// независимо от порядка доставки
func TestHandleEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("event.edited до event.created создает копию", func(t *testing.T) {
		c, uow := newTestConsumer(t)

		edited, _ := json.Marshal(messaging.EventMessage{ID: 7, Name: "renamed", IsActive: true})
		require.NoError(t, c.handleEvent(ctx, edited))

		event, err := uow.Events.GetByID(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "renamed", event.Name)
	})

	t.Run("запоздавший event.created перезаписывает последним значением", func(t *testing.T) {
		c, uow := newTestConsumer(t)

		edited, _ := json.Marshal(messaging.EventMessage{ID: 7, Name: "renamed", IsActive: false})
		created, _ := json.Marshal(messaging.EventMessage{ID: 7, Name: "original", IsActive: true})

		require.NoError(t, c.handleEvent(ctx, edited))
		require.NoError(t, c.handleEvent(ctx, created))

		event, err := uow.Events.GetByID(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "original", event.Name)
		assert.True(t, event.IsActive)
	})

	t.Run("некорректный payload возвращает ошибку", func(t *testing.T) {
		c, _ := newTestConsumer(t)

		assert.Error(t, c.handleEvent(ctx, []byte("{broken")))
		assert.Error(t, c.handleEvent(ctx, []byte(`{"name":"no-id"}`)))
	})
}

// TestStartSubscribesAllQueues проверяет привязку всех очередей сервиса
func TestStartSubscribesAllQueues(t *testing.T) {
	broker := messaging.NewMemoryBroker()
	require.NoError(t, broker.Connect(context.Background()))

	uow := memory.NewUnitOfWork()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := New(broker, uow, logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// После привязки публикация события доставляется обработчику
	require.NoError(t, broker.Connect(context.Background()))
	body, _ := json.Marshal(messaging.EventMessage{ID: 3, Name: "delivered", IsActive: true})
	require.NoError(t, broker.Publish(context.Background(), messaging.RoutingKeyEventCreated, body))

	event, err := uow.Events.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "delivered", event.Name)
}
