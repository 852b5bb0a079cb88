package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"lovemenu/internal/models"
)

// memStore is an in-memory stand-in for the Postgres repositories. It serves
// both the catalog and the order side so HTTP tests can create dishes first.
type memStore struct {
	mu        sync.Mutex
	dishes    map[int64]models.Dish
	orders    map[int64]models.Order
	nextDish  int64
	nextOrder int64
	nextItem  int64
	clock     time.Time
	failWrite error
	lookups   int
}

func newMemStore() *memStore {
	return &memStore{
		dishes: map[int64]models.Dish{},
		orders: map[int64]models.Order{},
		clock:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) addDish(name string, available bool) models.Dish {
	d, _ := m.CreateDish(context.Background(), models.Dish{
		Name: name, Category: "Mains", Tags: []string{}, Rating: 3, IsAvailable: available,
	})
	return *d
}

func cloneOrder(o models.Order) models.Order {
	items := make([]models.OrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}

// catalog.Store

func (m *memStore) ListDishes(_ context.Context, filter models.DishFilter) ([]models.Dish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Dish{}
	for _, d := range m.dishes {
		if filter.Category != "" && d.Category != filter.Category {
			continue
		}
		if filter.AvailableOnly && !d.IsAvailable {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetDish(_ context.Context, id int64) (*models.Dish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dishes[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: models.ResourceDish, IDs: []int64{id}}
	}
	return &d, nil
}

func (m *memStore) CreateDish(_ context.Context, d models.Dish) (*models.Dish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextDish++
	d.ID = m.nextDish
	m.dishes[d.ID] = d
	return &d, nil
}

func (m *memStore) UpdateDish(_ context.Context, id int64, upd models.DishUpdate) (*models.Dish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dishes[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: models.ResourceDish, IDs: []int64{id}}
	}
	upd.Apply(&d)
	m.dishes[id] = d
	return &d, nil
}

func (m *memStore) DeleteDish(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.dishes[id]; !ok {
		return &models.NotFoundError{Resource: models.ResourceDish, IDs: []int64{id}}
	}
	delete(m.dishes, id)
	return nil
}

func (m *memStore) DishesByIDs(_ context.Context, ids []int64) ([]models.Dish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	out := []models.Dish{}
	for _, id := range ids {
		if d, ok := m.dishes[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// Repository

func (m *memStore) CreateOrder(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite != nil {
		return m.failWrite
	}
	m.nextOrder++
	m.clock = m.clock.Add(time.Second)
	o.ID = m.nextOrder
	o.CreatedAt = m.clock
	for i := range o.Items {
		m.nextItem++
		o.Items[i].ID = m.nextItem
		o.Items[i].OrderID = o.ID
	}
	m.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (m *memStore) UpdateStatus(_ context.Context, id int64, status models.OrderStatus) (*models.Order, models.OrderStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, "", &models.NotFoundError{Resource: models.ResourceOrder, IDs: []int64{id}}
	}
	old := o.Status
	o.Status = status
	m.orders[id] = o
	out := cloneOrder(o)
	return &out, old, nil
}

func (m *memStore) GetOrder(_ context.Context, id int64) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: models.ResourceOrder, IDs: []int64{id}}
	}
	out := cloneOrder(o)
	return &out, nil
}

func (m *memStore) newestFirst() []models.Order {
	out := make([]models.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *memStore) ActiveOrder(_ context.Context) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.newestFirst() {
		if o.Status != models.StatusCompleted {
			return &o, nil
		}
	}
	return nil, fmt.Errorf("no active order: %w", models.ErrNotFound)
}

func (m *memStore) ListOrders(_ context.Context, limit int) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.newestFirst()
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// recordingPublisher keeps every event it is handed
type recordingPublisher struct {
	mu     sync.Mutex
	events []models.OrderEvent
	err    error
}

func (p *recordingPublisher) PublishOrderEvent(_ context.Context, e models.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

var errBrokerDown = errors.New("broker down")
