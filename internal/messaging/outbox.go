package messaging

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// OutboxMessage это строка транзакционного outbox
type OutboxMessage struct {
	ID         int64
	MessageID  string
	RoutingKey string
	Body       []byte
	CreatedAt  time.Time
	SentAt     *time.Time
}

// OutboxStore определяет методы для работы с транзакционным outbox.
//
// Append вызывается внутри той же транзакции, что и локальная мутация:
// факт и изменение состояния фиксируются атомарно. Relay затем читает
// неотправленные строки и публикует их в брокер (at-least-once: сбой между
// Publish и MarkSent приводит к повторной публикации, потребители идемпотентны).
type OutboxStore interface {
	// Append добавляет неотправленное сообщение в outbox
	Append(ctx context.Context, routingKey string, body []byte) error

	// ListPending возвращает до limit неотправленных сообщений в порядке создания
	ListPending(ctx context.Context, limit int) ([]*OutboxMessage, error)

	// MarkSent помечает сообщение отправленным
	MarkSent(ctx context.Context, id int64) error
}

// MemoryOutbox реализует OutboxStore в памяти для юнит-тестов
type MemoryOutbox struct {
	mu       sync.Mutex
	nextID   int64
	messages []*OutboxMessage
}

// NewMemoryOutbox создает новый MemoryOutbox
func NewMemoryOutbox() *MemoryOutbox {
	return &MemoryOutbox{}
}

// Append добавляет неотправленное сообщение
func (o *MemoryOutbox) Append(ctx context.Context, routingKey string, body []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.nextID++
	o.messages = append(o.messages, &OutboxMessage{
		ID:         o.nextID,
		MessageID:  uuid.NewString(),
		RoutingKey: routingKey,
		Body:       append([]byte(nil), body...),
		CreatedAt:  time.Now(),
	})
	return nil
}

// ListPending возвращает неотправленные сообщения в порядке создания
func (o *MemoryOutbox) ListPending(ctx context.Context, limit int) ([]*OutboxMessage, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var pending []*OutboxMessage
	for _, msg := range o.messages {
		if msg.SentAt == nil {
			pending = append(pending, msg)
			if len(pending) == limit {
				break
			}
		}
	}
	return pending, nil
}

// MarkSent помечает сообщение отправленным
func (o *MemoryOutbox) MarkSent(ctx context.Context, id int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, msg := range o.messages {
		if msg.ID == id {
			now := time.Now()
			msg.SentAt = &now
			return nil
		}
	}
	return nil
}

// All возвращает все сообщения outbox (для проверок в тестах)
func (o *MemoryOutbox) All() []*OutboxMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*OutboxMessage, len(o.messages))
	copy(out, o.messages)
	return out
}
