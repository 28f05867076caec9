package messaging

import "context"

// Handler обрабатывает одно доставленное сообщение.
// Возврат ошибки означает, что сообщение не удалось обработать:
// диспетчер логирует ошибку и отбрасывает сообщение, не прерывая цикл потребления.
type Handler func(ctx context.Context, body []byte) error

// MessageBroker определяет контракт брокера сообщений поверх topic exchange.
// Жизненный цикл: Connect -> Publish/Subscribe -> StartConsuming -> Disconnect.
type MessageBroker interface {
	// Connect открывает соединение, канал и объявляет durable topic exchange.
	Connect(ctx context.Context) error

	// Publish публикует persistent сообщение с указанным routing key.
	// Подтверждение доставки не ожидается: публикация считается успешной,
	// как только брокер принял запись.
	Publish(ctx context.Context, routingKey string, body []byte) error

	// Subscribe объявляет durable очередь, привязывает её к routing key
	// и регистрирует обработчик. Повторное объявление с теми же параметрами
	// является no-op. Доставка начинается после StartConsuming.
	Subscribe(queue, routingKey string, handler Handler) error

	// StartConsuming блокирует вызывающую горутину и последовательно
	// передает доставленные сообщения зарегистрированным обработчикам,
	// пока не будет отменен контекст или закрыто соединение.
	StartConsuming(ctx context.Context) error

	// Disconnect закрывает канал и соединение.
	Disconnect() error
}
