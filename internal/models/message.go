package models

import "time"

// Order event names
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is published to the orders exchange after a write commits
type OrderEvent struct {
	Event      string      `json:"event"`
	OrderID    int64       `json:"order_id"`
	Status     OrderStatus `json:"status"`
	OldStatus  OrderStatus `json:"old_status,omitempty"`
	TotalItems int         `json:"total_items"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// RoutingKey returns order.created or order.status.<status>
func (e OrderEvent) RoutingKey() string {
	if e.Event == EventOrderStatusChanged {
		return "order.status." + string(e.Status)
	}
	return e.Event
}

// NewOrderCreatedEvent builds the event for a freshly persisted order
func NewOrderCreatedEvent(o *Order) OrderEvent {
	return OrderEvent{
		Event:      EventOrderCreated,
		OrderID:    o.ID,
		Status:     o.Status,
		TotalItems: o.TotalItems,
		OccurredAt: time.Now().UTC(),
	}
}

// NewStatusChangedEvent builds the event for a status update
func NewStatusChangedEvent(o *Order, old OrderStatus) OrderEvent {
	return OrderEvent{
		Event:      EventOrderStatusChanged,
		OrderID:    o.ID,
		Status:     o.Status,
		OldStatus:  old,
		TotalItems: o.TotalItems,
		OccurredAt: time.Now().UTC(),
	}
}
