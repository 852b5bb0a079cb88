package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lovemenu/internal/logger"
)

// ErrDiscard tells the consumer to drop a message instead of requeueing it
var ErrDiscard = errors.New("discard message")

// MessageHandler processes one delivery
type MessageHandler func(ctx context.Context, routingKey string, body []byte) error

// acknowledger is the part of amqp091.Delivery the consumer settles messages with
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Consumer handles message consumption from RabbitMQ
type Consumer struct {
	conn        *Connection
	logger      *logger.Logger
	queueName   string
	consumerTag string
	prefetch    int
}

// NewConsumer creates a new message consumer
func NewConsumer(conn *Connection, log *logger.Logger, queueName, consumerTag string, prefetch int) *Consumer {
	return &Consumer{
		conn:        conn,
		logger:      log,
		queueName:   queueName,
		consumerTag: consumerTag,
		prefetch:    prefetch,
	}
}

// StartConsuming consumes until ctx is canceled
func (c *Consumer) StartConsuming(ctx context.Context, handler MessageHandler) error {
	for {
		err := c.consume(ctx, handler)
		if ctx.Err() != nil {
			c.logger.Info("consumer_stopped", "Consumer stopped by context", "", nil)
			return nil
		}
		if !errors.Is(err, errChannelClosed) {
			return err
		}

		c.logger.Error("consumer_channel_closed", "Message channel closed, attempting to reconnect", "", nil, nil)
		if err := c.conn.Reconnect(ctx); err != nil {
			return fmt.Errorf("failed to reconnect after channel closed: %w", err)
		}
	}
}

var errChannelClosed = errors.New("delivery channel closed")

func (c *Consumer) consume(ctx context.Context, handler MessageHandler) error {
	if c.conn.IsClosed() {
		if err := c.conn.Reconnect(ctx); err != nil {
			return fmt.Errorf("failed to reconnect: %w", err)
		}
	}

	err := c.conn.Channel().Qos(
		c.prefetch, // prefetch count
		0,          // prefetch size
		false,      // global
	)
	if err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.conn.Channel().Consume(
		c.queueName,   // queue
		c.consumerTag, // consumer
		false,         // auto-ack (we'll ack manually)
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("consumer_started",
		fmt.Sprintf("Started consuming from queue %s", c.queueName),
		"", map[string]interface{}{
			"queue":    c.queueName,
			"consumer": c.consumerTag,
			"prefetch": c.prefetch,
		})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errChannelClosed
			}
			c.processMessage(ctx, &d, d.RoutingKey, d.Body, handler)
		}
	}
}

// processMessage runs handler and settles the delivery: ack on success,
// drop on ErrDiscard, requeue otherwise.
func (c *Consumer) processMessage(ctx context.Context, d acknowledger, routingKey string, body []byte, handler MessageHandler) {
	startTime := time.Now()

	processingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err := handler(processingCtx, routingKey, body)
	fields := map[string]interface{}{
		"queue":       c.queueName,
		"routing_key": routingKey,
		"duration_ms": time.Since(startTime).Milliseconds(),
	}

	switch {
	case err == nil:
		if ackErr := d.Ack(false); ackErr != nil {
			c.logger.Error("message_ack_failed", "Failed to ack message", "", ackErr, fields)
		}
	case errors.Is(err, ErrDiscard):
		c.logger.Warn("message_discarded", err.Error(), "", fields)
		if nackErr := d.Nack(false, false); nackErr != nil {
			c.logger.Error("message_nack_failed", "Failed to nack message", "", nackErr, fields)
		}
	default:
		c.logger.Error("message_processing_failed", "Failed to process message", "", err, fields)
		if nackErr := d.Nack(false, true); nackErr != nil {
			c.logger.Error("message_nack_failed", "Failed to nack message", "", nackErr, fields)
		}
	}
}

// Close cancels the consumer and closes its connection
func (c *Consumer) Close() error {
	if c.conn != nil && !c.conn.IsClosed() {
		if err := c.conn.Channel().Cancel(c.consumerTag, false); err != nil {
			c.logger.Error("consumer_cancel_failed", "Failed to cancel consumer", "", err, nil)
		}
		return c.conn.Close()
	}
	return nil
}
