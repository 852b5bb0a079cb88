package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"lovemenu/internal/logger"
	"lovemenu/internal/models"
)

// ErrNotConnected is returned by Publisher while the broker connection is
// down. Reconnecting is left to Connection.WatchReconnect.
var ErrNotConnected = errors.New("rabbitmq connection is not open")

// channel is the part of an AMQP channel the publisher uses
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// Publisher handles message publishing to RabbitMQ
type Publisher struct {
	mu      sync.Mutex
	conn    *Connection
	channel func() (channel, error)
	logger  *logger.Logger
}

// NewPublisher creates a new message publisher
func NewPublisher(conn *Connection, log *logger.Logger) *Publisher {
	p := &Publisher{
		conn:   conn,
		logger: log,
	}
	p.channel = func() (channel, error) {
		if p.conn.IsClosed() {
			return nil, ErrNotConnected
		}
		return p.conn.Channel(), nil
	}
	return p
}

// PublishOrderEvent publishes an order event to the orders topic exchange
func (p *Publisher) PublishOrderEvent(ctx context.Context, event models.OrderEvent) error {
	return p.publishMessage(ctx, OrdersExchange, event.RoutingKey(), event, logger.RequestID(ctx))
}

func (p *Publisher) publishMessage(ctx context.Context, exchange, routingKey string, message interface{}, requestID string) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	publishing := amqp091.Publishing{
		ContentType:   "application/json",
		Body:          body,
		DeliveryMode:  amqp091.Persistent,
		Timestamp:     time.Now(),
		CorrelationId: requestID,
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	err = ch.PublishWithContext(
		ctx,
		exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		publishing,
	)
	if err != nil {
		return fmt.Errorf("failed to publish message to %s: %w", exchange, err)
	}

	p.logger.Debug("message_published",
		fmt.Sprintf("Published message to exchange %s", exchange),
		requestID, map[string]interface{}{
			"exchange":     exchange,
			"routing_key":  routingKey,
			"message_size": len(body),
		})

	return nil
}

// Close closes the publisher
func (p *Publisher) Close() error {
	return p.conn.Close()
}

// NopPublisher drops every event. It is used when RabbitMQ is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishOrderEvent(context.Context, models.OrderEvent) error { return nil }
