package messaging

import (
	"context"
	"log/slog"
	"time"
)

// Relay это фоновый ретранслятор outbox: периодически читает неотправленные
// сообщения и публикует их в брокер. Локальная мутация и публикация факта
// не атомарны между собой, но outbox гарантирует, что зафиксированный факт
// рано или поздно будет опубликован (at-least-once).
type Relay struct {
	store    OutboxStore
	broker   MessageBroker
	logger   *slog.Logger
	interval time.Duration
	batch    int
}

// NewRelay создает новый Relay
func NewRelay(store OutboxStore, broker MessageBroker, logger *slog.Logger, interval time.Duration, batch int) *Relay {
	if interval <= 0 {
		interval = time.Second
	}
	if batch <= 0 {
		batch = 100
	}
	return &Relay{
		store:    store,
		broker:   broker,
		logger:   logger,
		interval: interval,
		batch:    batch,
	}
}

// Run блокирует вызывающую горутину и ретранслирует outbox до отмены контекста
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Flush(ctx)
		}
	}
}

// Flush публикует все неотправленные сообщения outbox.
// Ошибка публикации логируется и прерывает пачку: сообщение останется
// неотправленным и будет повторено на следующем тике. Ошибки никогда
// не всплывают к вызывающей стороне исходной операции.
func (r *Relay) Flush(ctx context.Context) {
	pending, err := r.store.ListPending(ctx, r.batch)
	if err != nil {
		r.logger.Error("Failed to list pending outbox messages", "error", err)
		return
	}

	for _, msg := range pending {
		if err := r.broker.Publish(ctx, msg.RoutingKey, msg.Body); err != nil {
			r.logger.Error("Failed to publish outbox message",
				"routing_key", msg.RoutingKey, "message_id", msg.MessageID, "error", err)
			return
		}
		if err := r.store.MarkSent(ctx, msg.ID); err != nil {
			// Публикация прошла, отметка не записалась: сообщение уйдет повторно,
			// потребители обязаны быть идемпотентными
			r.logger.Error("Failed to mark outbox message as sent",
				"message_id", msg.MessageID, "error", err)
			return
		}
		r.logger.Info("Published fact", "routing_key", msg.RoutingKey, "message_id", msg.MessageID)
	}
}
