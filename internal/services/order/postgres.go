package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"lovemenu/internal/database"
	"lovemenu/internal/models"
)

// PostgresRepository stores orders and their items in PostgreSQL
type PostgresRepository struct {
	db *database.DB
}

// NewRepository creates an order repository backed by db
func NewRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateOrder inserts the order row, then every item in one batch, inside a
// single transaction.
func (r *PostgresRepository) CreateOrder(ctx context.Context, o *models.Order) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, database.InsertOrderSQL, o.Status, o.Note, o.TotalItems).
			Scan(&o.ID, &o.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		if len(o.Items) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for _, item := range o.Items {
			batch.Queue(database.InsertOrderItemSQL, o.ID, item.DishID, item.DishName, item.Quantity)
		}

		results := tx.SendBatch(ctx, batch)
		for i := range o.Items {
			if err := results.QueryRow().Scan(&o.Items[i].ID); err != nil {
				results.Close()
				return fmt.Errorf("failed to insert order item %d: %w", i, err)
			}
			o.Items[i].OrderID = o.ID
		}
		return results.Close()
	})
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, models.OrderStatus, error) {
	var (
		o   *models.Order
		old models.OrderStatus
	)
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var updated models.Order
		err := tx.QueryRow(ctx, database.UpdateOrderStatusSQL, id, status).Scan(
			&updated.ID, &updated.CreatedAt, &updated.Status, &updated.Note, &updated.TotalItems, &old)
		if errors.Is(err, pgx.ErrNoRows) {
			return &models.NotFoundError{Resource: models.ResourceOrder, IDs: []int64{id}}
		}
		if err != nil {
			return fmt.Errorf("failed to update order %d status: %w", id, err)
		}

		orders := []models.Order{updated}
		if err := attachItems(ctx, tx, orders); err != nil {
			return err
		}
		o = &orders[0]
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return o, old, nil
}

func (r *PostgresRepository) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	o, err := r.getOne(ctx, database.GetOrderByIDSQL, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.NotFoundError{Resource: models.ResourceOrder, IDs: []int64{id}}
	}
	return o, err
}

func (r *PostgresRepository) ActiveOrder(ctx context.Context) (*models.Order, error) {
	o, err := r.getOne(ctx, database.GetActiveOrderSQL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("no active order: %w", models.ErrNotFound)
	}
	return o, err
}

func (r *PostgresRepository) ListOrders(ctx context.Context, limit int) ([]models.Order, error) {
	rows, err := r.db.Query(ctx, database.ListOrdersSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	if err := attachItems(ctx, r.db, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// getOne returns pgx.ErrNoRows unwrapped so callers can pick the not-found error
func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	orders := []models.Order{*o}
	if err := attachItems(ctx, r.db, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	if err := row.Scan(&o.ID, &o.CreatedAt, &o.Status, &o.Note, &o.TotalItems); err != nil {
		return nil, err
	}
	return &o, nil
}

// attachItems loads the items of every order with one query keyed by order id
func attachItems(ctx context.Context, q database.Querier, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Items = []models.OrderItem{}
	}

	rows, err := q.Query(ctx, database.GetOrderItemsByOrderIDsSQL, ids)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.DishID, &item.DishName, &item.Quantity); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	return rows.Err()
}
