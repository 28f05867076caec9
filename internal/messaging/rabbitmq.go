package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrNotConnected возвращается при попытке работы с брокером до Connect
var ErrNotConnected = errors.New("message broker is not connected")

// binding связывает очередь, routing key и обработчик
type binding struct {
	queue      string
	routingKey string
	handler    Handler
}

// RabbitMQ реализует MessageBroker поверх RabbitMQ topic exchange.
//
// Публикация и потребление используют отдельные экземпляры: канал AMQP
// не потокобезопасен, поэтому каждый экземпляр владеет своим каналом.
type RabbitMQ struct {
	url      string
	exchange string
	logger   *slog.Logger

	conn     *amqp.Connection
	channel  *amqp.Channel
	bindings []binding
}

// NewRabbitMQ создает новый клиент RabbitMQ для указанного exchange
func NewRabbitMQ(url, exchange string, logger *slog.Logger) *RabbitMQ {
	return &RabbitMQ{
		url:      url,
		exchange: exchange,
		logger:   logger,
	}
}

// Connect открывает соединение, канал и объявляет durable topic exchange
func (b *RabbitMQ) Connect(ctx context.Context) error {
	conn, err := amqp.Dial(b.url)
	if err != nil {
		return fmt.Errorf("failed to connect to broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		b.exchange, // name
		"topic",    // kind
		true,       // durable
		false,      // auto-delete
		false,      // internal
		false,      // no-wait
		nil,        // args
	); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange %q: %w", b.exchange, err)
	}

	b.conn = conn
	b.channel = channel
	b.logger.Info("Connected to message broker", "exchange", b.exchange)
	return nil
}

// Publish публикует persistent сообщение в exchange с указанным routing key
func (b *RabbitMQ) Publish(ctx context.Context, routingKey string, body []byte) error {
	if b.channel == nil {
		return ErrNotConnected
	}

	err := b.channel.PublishWithContext(ctx,
		b.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to %q: %w", routingKey, err)
	}

	return nil
}

// Subscribe объявляет durable очередь, привязывает её к routing key
// и регистрирует обработчик
func (b *RabbitMQ) Subscribe(queue, routingKey string, handler Handler) error {
	if b.channel == nil {
		return ErrNotConnected
	}

	if _, err := b.channel.QueueDeclare(
		queue, // name
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // args
	); err != nil {
		return fmt.Errorf("failed to declare queue %q: %w", queue, err)
	}

	if err := b.channel.QueueBind(queue, routingKey, b.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %q to %q: %w", queue, routingKey, err)
	}

	b.bindings = append(b.bindings, binding{
		queue:      queue,
		routingKey: routingKey,
		handler:    handler,
	})

	return nil
}

// StartConsuming блокирует вызывающую горутину и последовательно передает
// доставленные сообщения обработчикам до отмены контекста.
//
// Подтверждение происходит после завершения обработчика (manual ack):
// при падении процесса во время обработки сообщение будет доставлено повторно,
// поэтому обработчики обязаны быть идемпотентными. Ошибка обработчика
// (включая невалидный JSON) логируется, сообщение подтверждается и
// отбрасывается - цикл потребления продолжается.
func (b *RabbitMQ) StartConsuming(ctx context.Context) error {
	if b.channel == nil {
		return ErrNotConnected
	}

	deliveries := make(chan amqp.Delivery)
	var wg sync.WaitGroup

	for _, bind := range b.bindings {
		msgs, err := b.channel.Consume(
			bind.queue, // queue
			"",         // consumer tag
			false,      // auto-ack
			false,      // exclusive
			false,      // no-local
			false,      // no-wait
			nil,        // args
		)
		if err != nil {
			return fmt.Errorf("failed to consume from queue %q: %w", bind.queue, err)
		}

		wg.Add(1)
		go func(msgs <-chan amqp.Delivery) {
			defer wg.Done()
			for msg := range msgs {
				select {
				case deliveries <- msg:
				case <-ctx.Done():
					return
				}
			}
		}(msgs)
	}

	go func() {
		wg.Wait()
		close(deliveries)
	}()

	handlers := make(map[string]Handler, len(b.bindings))
	for _, bind := range b.bindings {
		handlers[bind.routingKey] = bind.handler
	}

	b.logger.Info("Consuming started", "bindings", len(b.bindings))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-deliveries:
			if !ok {
				return nil
			}
			handler, found := handlers[msg.RoutingKey]
			if !found {
				b.logger.Warn("No handler for routing key", "routing_key", msg.RoutingKey)
				if err := msg.Ack(false); err != nil {
					b.logger.Error("Failed to ack message", "error", err)
				}
				continue
			}
			if err := handler(ctx, msg.Body); err != nil {
				// Сообщение отбрасывается: политика dead-letter не настроена
				b.logger.Error("Handler failed, dropping message",
					"routing_key", msg.RoutingKey, "error", err)
			}
			if err := msg.Ack(false); err != nil {
				b.logger.Error("Failed to ack message", "error", err)
			}
		}
	}
}

// Disconnect закрывает канал и соединение
func (b *RabbitMQ) Disconnect() error {
	if b.channel != nil {
		if err := b.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			return fmt.Errorf("failed to close channel: %w", err)
		}
		b.channel = nil
	}
	if b.conn != nil {
		if err := b.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			return fmt.Errorf("failed to close connection: %w", err)
		}
		b.conn = nil
	}
	return nil
}
