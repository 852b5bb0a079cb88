package eventlog

import (
	"context"
	"encoding/json"
	"fmt"

	"lovemenu/internal/logger"
	"lovemenu/internal/messaging"
	"lovemenu/internal/models"
)

// Queue and binding used by the event logger
const (
	QueueName  = "order_events_log"
	BindingKey = "order.#"
)

// Consumer is the part of messaging.Consumer the subscriber drives
type Consumer interface {
	StartConsuming(ctx context.Context, handler messaging.MessageHandler) error
	Close() error
}

// Subscriber writes every order event into the structured log
type Subscriber struct {
	consumer Consumer
	logger   *logger.Logger
}

// NewSubscriber creates a new event log subscriber
func NewSubscriber(consumer Consumer, log *logger.Logger) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		logger:   log,
	}
}

// Start consumes until ctx is canceled, then closes the consumer
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	s.logger.Info("service_started", "Order event logger started", requestID, map[string]interface{}{
		"queue":       QueueName,
		"binding_key": BindingKey,
	})

	err := s.consumer.StartConsuming(ctx, s.handleEvent)

	s.logger.Info("graceful_shutdown", "Stopping order event logger", requestID, nil)
	if closeErr := s.consumer.Close(); closeErr != nil {
		s.logger.Error("consumer_close_failed", "Failed to close consumer", requestID, closeErr, nil)
	}
	return err
}

func (s *Subscriber) handleEvent(_ context.Context, routingKey string, body []byte) error {
	var event models.OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to parse order event on %s: %v: %w", routingKey, err, messaging.ErrDiscard)
	}

	fields := map[string]interface{}{
		"routing_key": routingKey,
		"event":       event.Event,
		"order_id":    event.OrderID,
		"status":      event.Status,
		"total_items": event.TotalItems,
		"occurred_at": event.OccurredAt.Format("2006-01-02 15:04:05"),
	}
	if event.OldStatus != "" {
		fields["old_status"] = event.OldStatus
	}

	s.logger.Info("order_event", describe(event), "", fields)
	return nil
}

func describe(e models.OrderEvent) string {
	switch e.Event {
	case models.EventOrderCreated:
		return fmt.Sprintf("Order %d placed with %d item(s)", e.OrderID, e.TotalItems)
	case models.EventOrderStatusChanged:
		return fmt.Sprintf("Order %d status changed from '%s' to '%s'", e.OrderID, e.OldStatus, e.Status)
	default:
		return fmt.Sprintf("Order %d: %s", e.OrderID, e.Event)
	}
}
