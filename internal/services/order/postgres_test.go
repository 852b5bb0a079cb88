package order

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"

	"lovemenu/internal/config"
	"lovemenu/internal/database"
	"lovemenu/internal/logger"
	"lovemenu/internal/models"
	"lovemenu/internal/services/catalog"
)

// PostgresSuite runs the repositories against a real database. It is skipped
// unless LOVEMENU_TEST_DATABASE_URL points at a disposable database.
type PostgresSuite struct {
	suite.Suite
	ctx    context.Context
	db     *database.DB
	dishes *catalog.Repository
	orders *PostgresRepository
}

func TestPostgresSuite(t *testing.T) {
	if os.Getenv("LOVEMENU_TEST_DATABASE_URL") == "" {
		t.Skip("LOVEMENU_TEST_DATABASE_URL not set")
	}
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.ctx = context.Background()
	cfg := &config.Config{Database: config.DatabaseConfig{
		URL:      os.Getenv("LOVEMENU_TEST_DATABASE_URL"),
		MaxConns: 4,
		MinConns: 1,
	}}
	log := logger.NewWithWriter("test", io.Discard, "error")

	db, err := database.New(s.ctx, cfg, log)
	s.Require().NoError(err)
	s.Require().NoError(db.RunMigrations(s.ctx))

	s.db = db
	s.dishes = catalog.NewRepository(db)
	s.orders = NewRepository(db)
}

func (s *PostgresSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *PostgresSuite) SetupTest() {
	_, err := s.db.Exec(s.ctx, `TRUNCATE order_items, orders, dishes RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)
}

func (s *PostgresSuite) addDish(name string, available bool) models.Dish {
	d, err := s.dishes.CreateDish(s.ctx, models.Dish{
		Name: name, Category: "Mains", Tags: []string{"hot"}, Rating: 4, IsAvailable: available,
	})
	s.Require().NoError(err)
	return *d
}

func (s *PostgresSuite) newOrder(items ...models.OrderItem) *models.Order {
	total := 0
	for _, it := range items {
		total += it.Quantity
	}
	return &models.Order{Status: models.StatusPending, TotalItems: total, Items: items}
}

func (s *PostgresSuite) TestMigrationsAreIdempotent() {
	s.Require().NoError(s.db.RunMigrations(s.ctx))
}

func (s *PostgresSuite) TestCreateAndFetchRoundTrip() {
	soup := s.addDish("Soup", true)
	o := s.newOrder(
		models.OrderItem{DishID: &soup.ID, DishName: soup.Name, Quantity: 2},
		models.OrderItem{DishID: &soup.ID, DishName: soup.Name, Quantity: 1},
	)

	s.Require().NoError(s.orders.CreateOrder(s.ctx, o))
	s.NotZero(o.ID)
	s.False(o.CreatedAt.IsZero())

	fetched, err := s.orders.GetOrder(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(o.ID, fetched.ID)
	s.Equal(3, fetched.TotalItems)
	s.Require().Len(fetched.Items, 2)
	for i := range o.Items {
		s.Equal(o.Items[i].ID, fetched.Items[i].ID)
		s.Equal(o.Items[i].Quantity, fetched.Items[i].Quantity)
		s.Equal(o.ID, fetched.Items[i].OrderID)
	}
}

func (s *PostgresSuite) TestCreateIsAtomic() {
	soup := s.addDish("Soup", true)
	ghost := int64(9999)
	o := s.newOrder(
		models.OrderItem{DishID: &soup.ID, DishName: soup.Name, Quantity: 1},
		models.OrderItem{DishID: &ghost, DishName: "Ghost", Quantity: 1},
	)

	s.Error(s.orders.CreateOrder(s.ctx, o))

	history, err := s.orders.ListOrders(s.ctx, 20)
	s.Require().NoError(err)
	s.Empty(history)
}

func (s *PostgresSuite) TestDishesByIDs() {
	a := s.addDish("Soup", true)
	b := s.addDish("Stew", false)

	found, err := s.dishes.DishesByIDs(s.ctx, []int64{a.ID, b.ID, 12345})
	s.Require().NoError(err)
	s.Len(found, 2)

	found, err = s.dishes.DishesByIDs(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(found)
}

func (s *PostgresSuite) TestDeletingDishKeepsSnapshot() {
	soup := s.addDish("Soup", true)
	o := s.newOrder(models.OrderItem{DishID: &soup.ID, DishName: soup.Name, Quantity: 1})
	s.Require().NoError(s.orders.CreateOrder(s.ctx, o))

	s.Require().NoError(s.dishes.DeleteDish(s.ctx, soup.ID))
	s.ErrorIs(s.dishes.DeleteDish(s.ctx, soup.ID), models.ErrNotFound)

	fetched, err := s.orders.GetOrder(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Nil(fetched.Items[0].DishID)
	s.Equal("Soup", fetched.Items[0].DishName)
}

func (s *PostgresSuite) TestUpdateStatusReturnsOldStatus() {
	o := s.newOrder()
	s.Require().NoError(s.orders.CreateOrder(s.ctx, o))

	updated, old, err := s.orders.UpdateStatus(s.ctx, o.ID, models.StatusCompleted)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, old)
	s.Equal(models.StatusCompleted, updated.Status)
	s.NotNil(updated.Items)

	_, old, err = s.orders.UpdateStatus(s.ctx, o.ID, models.StatusPending)
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, old)

	_, _, err = s.orders.UpdateStatus(s.ctx, 4242, models.StatusCooking)
	s.ErrorIs(err, models.ErrNotFound)
}

func (s *PostgresSuite) TestActiveOrderAndHistory() {
	var ids []int64
	for i := 0; i < 3; i++ {
		o := s.newOrder()
		s.Require().NoError(s.orders.CreateOrder(s.ctx, o))
		ids = append(ids, o.ID)
	}
	_, _, err := s.orders.UpdateStatus(s.ctx, ids[1], models.StatusCompleted)
	s.Require().NoError(err)

	active, err := s.orders.ActiveOrder(s.ctx)
	s.Require().NoError(err)
	s.Equal(ids[2], active.ID)

	history, err := s.orders.ListOrders(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.Equal(ids[2], history[0].ID)
	s.Equal(ids[1], history[1].ID)
}

func (s *PostgresSuite) TestUpdateDishPartial() {
	soup := s.addDish("Soup", true)
	off := false

	updated, err := s.dishes.UpdateDish(s.ctx, soup.ID, models.DishUpdate{IsAvailable: &off})
	s.Require().NoError(err)
	s.False(updated.IsAvailable)
	s.Equal("Soup", updated.Name)
	s.Equal([]string{"hot"}, updated.Tags)

	listed, err := s.dishes.ListDishes(s.ctx, models.DishFilter{AvailableOnly: true})
	s.Require().NoError(err)
	s.Empty(listed)

	_, err = s.dishes.UpdateDish(s.ctx, 777, models.DishUpdate{IsAvailable: &off})
	s.ErrorIs(err, models.ErrNotFound)
}
