package order

import (
	"context"
	"time"

	"lovemenu/internal/logger"
	"lovemenu/internal/metrics"
	"lovemenu/internal/models"
)

// DefaultHistoryLimit is used when History is called with limit 0
const DefaultHistoryLimit = 20

// publishTimeout bounds how long a committed write waits on the broker
const publishTimeout = 2 * time.Second

// Repository is the order persistence the workflow needs
type Repository interface {
	// CreateOrder stores the order and its items atomically, filling in the
	// generated ids and creation time.
	CreateOrder(ctx context.Context, o *models.Order) error
	// UpdateStatus returns the updated order and the status it replaced
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, models.OrderStatus, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	ActiveOrder(ctx context.Context) (*models.Order, error)
	ListOrders(ctx context.Context, limit int) ([]models.Order, error)
}

// DishResolver looks dishes up by id in one call
type DishResolver interface {
	DishesByIDs(ctx context.Context, ids []int64) ([]models.Dish, error)
}

// EventPublisher receives order events once a write has committed
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event models.OrderEvent) error
}

// Service implements the order workflow
type Service struct {
	repo      Repository
	dishes    DishResolver
	publisher EventPublisher
	metrics   *metrics.Registry
	logger    *logger.Logger
}

// NewService creates a new order service
func NewService(repo Repository, dishes DishResolver, publisher EventPublisher, m *metrics.Registry, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		dishes:    dishes,
		publisher: publisher,
		metrics:   m,
		logger:    log,
	}
}

// CreateOrder validates the requested dishes against the catalog and stores
// the order with one item per requested line. Nothing is written when a dish
// is missing or unavailable.
func (s *Service) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	requestID := logger.RequestID(ctx)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	ids := req.DishIDs()
	byID := make(map[int64]models.Dish, len(ids))
	if len(ids) > 0 {
		dishes, err := s.dishes.DishesByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, d := range dishes {
			byID[d.ID] = d
		}
	}

	// Existence first; an unknown dish hides any availability problem.
	var missing []int64
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		s.metrics.OrderRejections.WithLabelValues(metrics.ReasonDishNotFound).Inc()
		s.logger.Warn("order_rejected", "Order references unknown dishes", requestID, map[string]interface{}{
			"missing_dish_ids": missing,
		})
		return nil, &models.NotFoundError{Resource: models.ResourceDish, IDs: missing}
	}

	var unavailable []string
	for _, id := range ids {
		if d := byID[id]; !d.IsAvailable {
			unavailable = append(unavailable, d.Name)
		}
	}
	if len(unavailable) > 0 {
		s.metrics.OrderRejections.WithLabelValues(metrics.ReasonDishUnavailable).Inc()
		s.logger.Warn("order_rejected", "Order references unavailable dishes", requestID, map[string]interface{}{
			"unavailable_dishes": unavailable,
		})
		return nil, &models.UnavailableDishesError{Names: unavailable}
	}

	o := &models.Order{
		Status:     models.StatusPending,
		Note:       req.Note,
		TotalItems: req.TotalItems(),
		Items:      make([]models.OrderItem, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		dishID := item.DishID
		o.Items = append(o.Items, models.OrderItem{
			DishID:   &dishID,
			DishName: byID[item.DishID].Name,
			Quantity: item.Qty(),
		})
	}

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, err
	}

	s.metrics.OrdersCreated.Inc()
	s.logger.Info("order_created", "Order created", requestID, map[string]interface{}{
		"order_id":    o.ID,
		"total_items": o.TotalItems,
		"lines":       len(o.Items),
	})
	s.publish(ctx, models.NewOrderCreatedEvent(o))

	return o, nil
}

// UpdateStatus writes any of the known statuses regardless of the current one
func (s *Service) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		_, err := models.ParseOrderStatus(string(status))
		return nil, err
	}

	o, old, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.metrics.OrderStatusUpdates.WithLabelValues(string(status)).Inc()
	s.logger.Info("order_status_updated", "Order status updated", logger.RequestID(ctx), map[string]interface{}{
		"order_id":   o.ID,
		"old_status": old,
		"new_status": o.Status,
	})
	s.publish(ctx, models.NewStatusChangedEvent(o, old))

	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	return s.repo.GetOrder(ctx, id)
}

// ActiveOrder returns the most recent order that is not completed
func (s *Service) ActiveOrder(ctx context.Context) (*models.Order, error) {
	return s.repo.ActiveOrder(ctx)
}

// History returns the newest orders first
func (s *Service) History(ctx context.Context, limit int) ([]models.Order, error) {
	if limit < 0 {
		return nil, &models.ValidationError{Field: "limit", Message: "limit must be a positive integer"}
	}
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	return s.repo.ListOrders(ctx, limit)
}

// publish never fails the caller: the order is already committed.
func (s *Service) publish(ctx context.Context, event models.OrderEvent) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err := s.publisher.PublishOrderEvent(pubCtx, event)
	if err == nil {
		return
	}
	s.metrics.EventPublishFailure.Inc()
	s.logger.Error("event_publish_failed", "Failed to publish order event", logger.RequestID(ctx), err, map[string]interface{}{
		"order_id":    event.OrderID,
		"routing_key": event.RoutingKey(),
	})
}
