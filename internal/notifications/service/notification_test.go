package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manuscript-app/manuscript/internal/notifications/domain"
	"github.com/manuscript-app/manuscript/internal/notifications/repository/memory"
)

func newTestService(t *testing.T) (*NotificationService, *memory.UnitOfWork) {
	t.Helper()

	uow := memory.NewUnitOfWork()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewNotificationService(uow, logger), uow
}

// TestGetNotification проверяет доступ только владельца уведомления
func TestGetNotification(t *testing.T) {
	ctx := context.Background()

	t.Run("владелец читает уведомление", func(t *testing.T) {
		svc, uow := newTestService(t)

		created, err := uow.Notifications.Create(ctx, 10, "Вас исключили из команды alpha", domain.StatusDanger)
		require.NoError(t, err)

		notification, err := svc.Get(ctx, created.ID, 10)
		require.NoError(t, err)
		assert.Equal(t, created.Message, notification.Message)
	})

	t.Run("чужое уведомление недоступно", func(t *testing.T) {
		svc, uow := newTestService(t)

		created, err := uow.Notifications.Create(ctx, 10, "msg", domain.StatusSuccess)
		require.NoError(t, err)

		_, err = svc.Get(ctx, created.ID, 20)
		assert.ErrorIs(t, err, domain.ErrUserIsNotNotificationOwner)
	})

	t.Run("неизвестное уведомление", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Get(ctx, 99, 10)
		assert.ErrorIs(t, err, domain.ErrNotificationNotFound)
	})
}

// TestListNotifications проверяет выборку только своих уведомлений
func TestListNotifications(t *testing.T) {
	ctx := context.Background()

	svc, uow := newTestService(t)

	_, err := uow.Notifications.Create(ctx, 10, "first", domain.StatusSuccess)
	require.NoError(t, err)
	_, err = uow.Notifications.Create(ctx, 20, "other", domain.StatusWarning)
	require.NoError(t, err)
	_, err = uow.Notifications.Create(ctx, 10, "second", domain.StatusDanger)
	require.NoError(t, err)

	notifications, err := svc.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, notifications, 2)

	// От новых к старым
	assert.Equal(t, "second", notifications[0].Message)
	assert.Equal(t, "first", notifications[1].Message)
}
