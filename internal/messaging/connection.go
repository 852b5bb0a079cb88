package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"lovemenu/internal/config"
	"lovemenu/internal/logger"
)

// OrdersExchange is the topic exchange every order event goes to
const OrdersExchange = "orders_topic"

// Connection wraps RabbitMQ connection with reconnection logic
type Connection struct {
	mu         sync.RWMutex
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	logger     *logger.Logger
	url        string
	maxRetries int
	retryDelay time.Duration
	bindings   []Binding
}

// Binding ties a durable queue to the orders exchange
type Binding struct {
	Queue      string
	RoutingKey string
}

// New creates a new RabbitMQ connection. Queues in bindings are declared on
// every (re)connect.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, bindings ...Binding) (*Connection, error) {
	conn := &Connection{
		logger:     log,
		url:        cfg.RabbitMQURL(),
		maxRetries: 5,
		retryDelay: 2 * time.Second,
		bindings:   bindings,
	}

	if err := conn.connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to establish initial connection: %w", err)
	}

	return conn, nil
}

// connect establishes connection to RabbitMQ with retry logic. The broker
// handles are swapped in only once the topology is declared, so readers
// never wait on a dial.
func (c *Connection) connect(ctx context.Context) error {
	var err error

	for i := 0; i < c.maxRetries; i++ {
		var conn *amqp091.Connection
		conn, err = amqp091.Dial(c.url)
		if err == nil {
			var ch *amqp091.Channel
			ch, err = conn.Channel()
			if err == nil {
				if err = setupTopology(ch, c.bindings); err == nil {
					c.mu.Lock()
					c.conn, c.channel = conn, ch
					c.mu.Unlock()
					return nil
				}
				c.logger.Error("rabbitmq_setup_failed", "Failed to set up topology", "startup", err, nil)
				ch.Close()
			}
			conn.Close()
		}

		if i < c.maxRetries-1 {
			waitTime := time.Duration(i+1) * c.retryDelay
			c.logger.Error("rabbitmq_connection_failed",
				fmt.Sprintf("Failed to connect to RabbitMQ, retrying in %v", waitTime),
				"startup", err, map[string]interface{}{"attempt": i + 1})

			select {
			case <-time.After(waitTime):
			case <-ctx.Done():
				return fmt.Errorf("rabbitmq connect canceled: %w", ctx.Err())
			}
		}
	}

	return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", c.maxRetries, err)
}

// setupTopology declares the orders exchange and any bound queues
func setupTopology(ch *amqp091.Channel, bindings []Binding) error {
	err := ch.ExchangeDeclare(
		OrdersExchange, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s exchange: %w", OrdersExchange, err)
	}

	for _, b := range bindings {
		_, err = ch.QueueDeclare(
			b.Queue, // name
			true,    // durable
			false,   // delete when unused
			false,   // exclusive
			false,   // no-wait
			nil,     // arguments
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", b.Queue, err)
		}

		err = ch.QueueBind(b.Queue, b.RoutingKey, OrdersExchange, false, nil)
		if err != nil {
			return fmt.Errorf("failed to bind queue %s with routing key %s: %w", b.Queue, b.RoutingKey, err)
		}
	}

	return nil
}

// Channel returns the current channel
func (c *Connection) Channel() *amqp091.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

// Close closes the connection
func (c *Connection) Close() error {
	return c.close()
}

func (c *Connection) close() error {
	c.mu.RLock()
	conn, ch := c.conn, c.channel
	c.mu.RUnlock()

	if ch != nil {
		ch.Close()
	}
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// IsClosed checks if the connection is closed
func (c *Connection) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn == nil || c.conn.IsClosed()
}

// Reconnect attempts to reconnect to RabbitMQ
func (c *Connection) Reconnect(ctx context.Context) error {
	c.close()
	return c.connect(ctx)
}

// WatchReconnect re-dials in the background whenever the broker drops the
// connection, until ctx is done or the connection is closed with Close.
func (c *Connection) WatchReconnect(ctx context.Context) {
	go func() {
		for {
			c.mu.RLock()
			conn := c.conn
			c.mu.RUnlock()
			if conn == nil {
				return
			}

			closed := conn.NotifyClose(make(chan *amqp091.Error, 1))
			select {
			case <-ctx.Done():
				return
			case amqpErr := <-closed:
				if amqpErr == nil {
					// graceful Close
					return
				}
				c.logger.Error("rabbitmq_connection_lost", "Connection to RabbitMQ lost, reconnecting", "", amqpErr, nil)
			}

			for ctx.Err() == nil {
				if err := c.connect(ctx); err == nil {
					c.logger.Info("rabbitmq_reconnected", "Reconnected to RabbitMQ", "", nil)
					break
				}
			}
		}
	}()
}
