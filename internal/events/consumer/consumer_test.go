package consumer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manuscript-app/manuscript/internal/events/repository/memory"
	"github.com/manuscript-app/manuscript/internal/messaging"
)

// TestHandleUserCreated проверяет идемпотентность локальной копии пользователя
func TestHandleUserCreated(t *testing.T) {
	ctx := context.Background()

	uow := memory.NewUnitOfWork()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := New(messaging.NewMemoryBroker(), uow, logger)

	t.Run("создает копию и сходится при повторной доставке", func(t *testing.T) {
		body, _ := json.Marshal(messaging.UserCreatedMessage{
			ID: 42, Username: "ivan@example.com", Email: "ivan@example.com", FirstName: "Иван",
		})
		require.NoError(t, c.handleUserCreated(ctx, body))
		require.NoError(t, c.handleUserCreated(ctx, body))

		user, err := uow.Users.GetByID(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, "Иван", user.FirstName)
	})

	t.Run("некорректный payload возвращает ошибку", func(t *testing.T) {
		assert.Error(t, c.handleUserCreated(ctx, []byte("{broken")))
		assert.Error(t, c.handleUserCreated(ctx, []byte(`{"username":"no-id"}`)))
	})
}
