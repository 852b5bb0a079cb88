package models

import (
	"fmt"
	"time"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusAccepted  OrderStatus = "accepted"
	StatusCooking   OrderStatus = "cooking"
	StatusCompleted OrderStatus = "completed"
)

// OrderStatuses lists every status in lifecycle order
var OrderStatuses = []OrderStatus{StatusPending, StatusAccepted, StatusCooking, StatusCompleted}

// Valid reports whether s is one of the known statuses
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusCooking, StatusCompleted:
		return true
	}
	return false
}

// ParseOrderStatus converts a raw value into an OrderStatus
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	if !s.Valid() {
		return "", &ValidationError{
			Field:   "status",
			Message: "status must be one of: pending, accepted, cooking, completed",
		}
	}
	return s, nil
}

// OrderItem is one line of an order. DishName is copied from the dish when the
// order is placed and DishID becomes nil if that dish is deleted later.
type OrderItem struct {
	ID       int64  `json:"id" db:"id"`
	OrderID  int64  `json:"order_id" db:"order_id"`
	DishID   *int64 `json:"dish_id" db:"dish_id"`
	DishName string `json:"dish_name" db:"dish_name"`
	Quantity int    `json:"quantity" db:"quantity"`
}

// Order represents a customer order
type Order struct {
	ID         int64       `json:"id" db:"id"`
	CreatedAt  time.Time   `json:"order_time" db:"created_at"`
	Status     OrderStatus `json:"status" db:"status"`
	Note       *string     `json:"note" db:"note"`
	TotalItems int         `json:"total_items" db:"total_items"`
	Items      []OrderItem `json:"items"`
}

// CreateOrderItem is a requested line: a dish and how many of it
type CreateOrderItem struct {
	DishID   int64 `json:"dish_id"`
	Quantity *int  `json:"quantity,omitempty"`
}

// Qty returns the requested quantity, 1 when omitted
func (i CreateOrderItem) Qty() int {
	if i.Quantity == nil {
		return 1
	}
	return *i.Quantity
}

// CreateOrderRequest represents the request to create a new order
type CreateOrderRequest struct {
	Items []CreateOrderItem `json:"items"`
	Note  *string           `json:"note,omitempty"`
}

// UpdateStatusRequest is the body of PATCH /api/orders/{id}/status
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Validate checks the shape of the request. Dish existence and availability
// need the catalog and are checked by the order service.
func (req *CreateOrderRequest) Validate() error {
	for i, item := range req.Items {
		if item.DishID <= 0 {
			return &ValidationError{
				Field:   fmt.Sprintf("items[%d].dish_id", i),
				Message: "dish_id must be a positive integer",
			}
		}
		if item.Qty() < 1 {
			return &ValidationError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "quantity must be at least 1",
			}
		}
	}
	return nil
}

// DishIDs returns the distinct dish ids in first-seen order
func (req *CreateOrderRequest) DishIDs() []int64 {
	seen := make(map[int64]struct{}, len(req.Items))
	ids := make([]int64, 0, len(req.Items))
	for _, item := range req.Items {
		if _, ok := seen[item.DishID]; ok {
			continue
		}
		seen[item.DishID] = struct{}{}
		ids = append(ids, item.DishID)
	}
	return ids
}

// TotalItems sums the quantities of every line, duplicates included
func (req *CreateOrderRequest) TotalItems() int {
	total := 0
	for _, item := range req.Items {
		total += item.Qty()
	}
	return total
}
