package messaging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRelay(t *testing.T) (*Relay, *MemoryOutbox, *MemoryBroker) {
	t.Helper()

	outbox := NewMemoryOutbox()
	broker := NewMemoryBroker()
	require.NoError(t, broker.Connect(context.Background()))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRelay(outbox, broker, logger, 0, 0), outbox, broker
}

// TestRelayFlush проверяет публикацию и отметку отправленных сообщений
func TestRelayFlush(t *testing.T) {
	ctx := context.Background()

	t.Run("публикует неотправленные и помечает их", func(t *testing.T) {
		relay, outbox, broker := newTestRelay(t)

		require.NoError(t, outbox.Append(ctx, RoutingKeyUserCreated, []byte(`{"id":1}`)))
		require.NoError(t, outbox.Append(ctx, RoutingKeyEventCreated, []byte(`{"id":2}`)))

		relay.Flush(ctx)

		published := broker.Published()
		require.Len(t, published, 2)
		assert.Equal(t, RoutingKeyUserCreated, published[0].RoutingKey)
		assert.Equal(t, RoutingKeyEventCreated, published[1].RoutingKey)

		pending, err := outbox.ListPending(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("повторный Flush ничего не публикует", func(t *testing.T) {
		relay, outbox, broker := newTestRelay(t)

		require.NoError(t, outbox.Append(ctx, RoutingKeyUserCreated, []byte(`{"id":1}`)))

		relay.Flush(ctx)
		relay.Flush(ctx)

		assert.Len(t, broker.Published(), 1)
	})

	t.Run("отказ брокера оставляет сообщение в outbox", func(t *testing.T) {
		relay, outbox, broker := newTestRelay(t)

		require.NoError(t, outbox.Append(ctx, RoutingKeyUserCreated, []byte(`{"id":1}`)))

		broker.PublishErr = errors.New("broker is down")
		relay.Flush(ctx)

		pending, err := outbox.ListPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1, "message stays pending for the next tick")

		// Брокер ожил: сообщение уходит при следующем Flush
		broker.PublishErr = nil
		relay.Flush(ctx)

		pending, err = outbox.ListPending(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, pending)
		assert.Len(t, broker.Published(), 1)
	})

	t.Run("соблюдает размер пачки", func(t *testing.T) {
		outbox := NewMemoryOutbox()
		broker := NewMemoryBroker()
		require.NoError(t, broker.Connect(ctx))

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		relay := NewRelay(outbox, broker, logger, 0, 2)

		for i := 0; i < 5; i++ {
			require.NoError(t, outbox.Append(ctx, RoutingKeyUserCreated, []byte(`{}`)))
		}

		relay.Flush(ctx)
		assert.Len(t, broker.Published(), 2)

		relay.Flush(ctx)
		relay.Flush(ctx)
		assert.Len(t, broker.Published(), 5)
	})
}

// TestMemoryBrokerDelivery проверяет синхронную доставку подписчикам
func TestMemoryBrokerDelivery(t *testing.T) {
	ctx := context.Background()

	broker := NewMemoryBroker()
	require.NoError(t, broker.Connect(ctx))

	var got [][]byte
	handler := func(ctx context.Context, body []byte) error {
		got = append(got, body)
		return nil
	}

	require.NoError(t, broker.Subscribe("q1", RoutingKeyUserCreated, handler))

	require.NoError(t, broker.Publish(ctx, RoutingKeyUserCreated, []byte(`{"id":1}`)))
	require.NoError(t, broker.Publish(ctx, RoutingKeyEventCreated, []byte(`{"id":2}`)))

	require.Len(t, got, 1, "only the bound routing key is delivered")
	assert.JSONEq(t, `{"id":1}`, string(got[0]))

	require.NoError(t, broker.Disconnect())
	assert.ErrorIs(t, broker.Publish(ctx, RoutingKeyUserCreated, nil), ErrNotConnected)
}
