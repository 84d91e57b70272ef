package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// DefaultExchangeName is the topic exchange profile events are published to
	DefaultExchangeName = "profile_events"
	// BindAll matches every profile event
	BindAll = "profile.#"
)

// RabbitMQBroker implements Broker using a RabbitMQ topic exchange
type RabbitMQBroker struct {
	conn         *amqp.Connection
	channel      *amqp.Channel
	exchangeName string

	// amqp channels are not safe for concurrent publishing
	mu sync.Mutex
}

// NewRabbitMQBroker connects to RabbitMQ and declares the profile exchange
func NewRabbitMQBroker(amqpURL string) (*RabbitMQBroker, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	b := &RabbitMQBroker{
		conn:         conn,
		channel:      ch,
		exchangeName: DefaultExchangeName,
	}

	err = ch.ExchangeDeclare(
		b.exchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return b, nil
}

// Publish sends an event to the profile exchange
func (b *RabbitMQBroker) Publish(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Timestamp:    event.OccurredAt,
		Type:         string(event.Type),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	err = b.channel.PublishWithContext(
		ctx,
		b.exchangeName,
		event.RoutingKey(),
		false, // mandatory
		false, // immediate
		publishing,
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe binds a private, auto-deleted queue to the exchange and streams
// matching events
func (b *RabbitMQBroker) Subscribe(ctx context.Context, bindingKey string) (<-chan *Event, <-chan error, error) {
	if bindingKey == "" {
		bindingKey = BindAll
	}

	// Consumers get their own channel so publishing is never blocked by delivery
	consumeCh, err := b.conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create consumer channel: %w", err)
	}

	q, err := consumeCh.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = consumeCh.Close()
		return nil, nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := consumeCh.QueueBind(q.Name, bindingKey, b.exchangeName, false, nil); err != nil {
		_ = consumeCh.Close()
		return nil, nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	deliveries, err := consumeCh.Consume(
		q.Name,
		"",    // consumer tag (empty = auto-generate)
		true,  // auto-ack
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = consumeCh.Close()
		return nil, nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	eventChan := make(chan *Event)
	errChan := make(chan error, 1)

	go func() {
		defer func() { _ = consumeCh.Close() }()
		forwardDeliveries(ctx, deliveries, eventChan, errChan)
	}()

	return eventChan, errChan, nil
}

// forwardDeliveries decodes deliveries onto eventChan until ctx ends or the
// delivery channel closes, then closes both output channels. Errors are
// dropped when errChan is full.
func forwardDeliveries(ctx context.Context, deliveries <-chan amqp.Delivery, eventChan chan<- *Event, errChan chan<- error) {
	defer close(eventChan)
	defer close(errChan)

	report := func(err error) {
		select {
		case errChan <- err:
		default:
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-deliveries:
			if !ok {
				report(errors.New("delivery channel closed"))
				return
			}

			event, err := decodeEvent(delivery.Body)
			if err != nil {
				report(err)
				continue
			}

			select {
			case <-ctx.Done():
				return
			case eventChan <- event:
			}
		}
	}
}

// HealthCheck verifies the connection and publishing channel are open
func (b *RabbitMQBroker) HealthCheck(ctx context.Context) error {
	if b.conn == nil || b.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	if b.channel == nil || b.channel.IsClosed() {
		return errors.New("rabbitmq channel is closed")
	}
	return nil
}

// Close closes the broker connection
func (b *RabbitMQBroker) Close() error {
	var err error
	if b.channel != nil {
		err = b.channel.Close()
	}
	if b.conn != nil {
		if closeErr := b.conn.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

func decodeEvent(body []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.Type == "" || event.UserID == "" {
		return nil, errors.New("event is missing type or user_id")
	}
	return &event, nil
}
