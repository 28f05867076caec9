package messaging

import (
	"context"
	"sync"
)

// OutboundMessage это сообщение, опубликованное через MemoryBroker
type OutboundMessage struct {
	RoutingKey string
	Body       []byte
}

// MemoryBroker реализует MessageBroker в памяти для юнит-тестов.
// Publish синхронно доставляет сообщение всем обработчикам, привязанным
// к точному routing key, и сохраняет его для проверок в тестах.
type MemoryBroker struct {
	mu        sync.Mutex
	connected bool
	bindings  []binding
	published []OutboundMessage

	// PublishErr, если установлен, возвращается из Publish (для имитации отказа брокера)
	PublishErr error
}

// NewMemoryBroker создает новый MemoryBroker
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{}
}

// Connect помечает брокер подключенным
func (b *MemoryBroker) Connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connected = true
	return nil
}

// Publish сохраняет сообщение и синхронно вызывает подписанные обработчики
func (b *MemoryBroker) Publish(ctx context.Context, routingKey string, body []byte) error {
	b.mu.Lock()
	if !b.connected {
		b.mu.Unlock()
		return ErrNotConnected
	}
	if b.PublishErr != nil {
		err := b.PublishErr
		b.mu.Unlock()
		return err
	}
	b.published = append(b.published, OutboundMessage{RoutingKey: routingKey, Body: body})
	var handlers []Handler
	for _, bind := range b.bindings {
		if bind.routingKey == routingKey {
			handlers = append(handlers, bind.handler)
		}
	}
	b.mu.Unlock()

	// Ошибки обработчиков глотаются, как и в боевом диспетчере
	for _, handler := range handlers {
		_ = handler(ctx, body)
	}
	return nil
}

// Subscribe регистрирует обработчик для routing key
func (b *MemoryBroker) Subscribe(queue, routingKey string, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.connected {
		return ErrNotConnected
	}
	b.bindings = append(b.bindings, binding{queue: queue, routingKey: routingKey, handler: handler})
	return nil
}

// StartConsuming блокируется до отмены контекста: доставка в MemoryBroker
// происходит синхронно внутри Publish
func (b *MemoryBroker) StartConsuming(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

// Disconnect помечает брокер отключенным
func (b *MemoryBroker) Disconnect() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connected = false
	return nil
}

// Published возвращает копию всех опубликованных сообщений
func (b *MemoryBroker) Published() []OutboundMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]OutboundMessage, len(b.published))
	copy(out, b.published)
	return out
}
