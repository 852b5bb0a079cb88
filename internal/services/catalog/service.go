package catalog

import (
	"context"

	"lovemenu/internal/logger"
	"lovemenu/internal/models"
)

// Store is the dish persistence the catalog needs
type Store interface {
	ListDishes(ctx context.Context, filter models.DishFilter) ([]models.Dish, error)
	GetDish(ctx context.Context, id int64) (*models.Dish, error)
	CreateDish(ctx context.Context, d models.Dish) (*models.Dish, error)
	UpdateDish(ctx context.Context, id int64, upd models.DishUpdate) (*models.Dish, error)
	DeleteDish(ctx context.Context, id int64) error
	DishesByIDs(ctx context.Context, ids []int64) ([]models.Dish, error)
}

// Service holds the menu business rules
type Service struct {
	store  Store
	logger *logger.Logger
}

// NewService creates a new catalog service
func NewService(store Store, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		logger: log,
	}
}

func (s *Service) ListDishes(ctx context.Context, filter models.DishFilter) ([]models.Dish, error) {
	return s.store.ListDishes(ctx, filter)
}

func (s *Service) GetDish(ctx context.Context, id int64) (*models.Dish, error) {
	return s.store.GetDish(ctx, id)
}

// CreateDish validates req, fills in defaults and stores the dish
func (s *Service) CreateDish(ctx context.Context, req models.DishCreate) (*models.Dish, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	d, err := s.store.CreateDish(ctx, req.ToDish())
	if err != nil {
		return nil, err
	}

	s.logger.Info("dish_created", "Dish added to the menu", logger.RequestID(ctx), map[string]interface{}{
		"dish_id":  d.ID,
		"name":     d.Name,
		"category": d.Category,
	})
	return d, nil
}

// UpdateDish changes only the fields present in req
func (s *Service) UpdateDish(ctx context.Context, id int64, req models.DishUpdate) (*models.Dish, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	d, err := s.store.UpdateDish(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("dish_updated", "Dish updated", logger.RequestID(ctx), map[string]interface{}{
		"dish_id":      d.ID,
		"is_available": d.IsAvailable,
	})
	return d, nil
}

// DeleteDish removes a dish. Past order items keep their dish_name.
func (s *Service) DeleteDish(ctx context.Context, id int64) error {
	if err := s.store.DeleteDish(ctx, id); err != nil {
		return err
	}
	s.logger.Info("dish_deleted", "Dish removed from the menu", logger.RequestID(ctx), map[string]interface{}{
		"dish_id": id,
	})
	return nil
}

func (s *Service) DishesByIDs(ctx context.Context, ids []int64) ([]models.Dish, error) {
	return s.store.DishesByIDs(ctx, ids)
}
