package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"lovemenu/internal/database"
	"lovemenu/internal/models"
)

// Repository stores dishes in PostgreSQL
type Repository struct {
	db *database.DB
}

// NewRepository creates a dish repository backed by db
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

func scanDish(row pgx.Row) (*models.Dish, error) {
	var d models.Dish
	err := row.Scan(&d.ID, &d.Name, &d.Category, &d.ImageURL, &d.Tags, &d.Rating, &d.IsAvailable)
	if err != nil {
		return nil, err
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	return &d, nil
}

func collectDishes(rows pgx.Rows) ([]models.Dish, error) {
	defer rows.Close()

	dishes := []models.Dish{}
	for rows.Next() {
		d, err := scanDish(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dish: %w", err)
		}
		dishes = append(dishes, *d)
	}
	return dishes, rows.Err()
}

func (r *Repository) ListDishes(ctx context.Context, filter models.DishFilter) ([]models.Dish, error) {
	rows, err := r.db.Query(ctx, database.ListDishesSQL, filter.Category, filter.AvailableOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list dishes: %w", err)
	}
	return collectDishes(rows)
}

func (r *Repository) GetDish(ctx context.Context, id int64) (*models.Dish, error) {
	return getDish(ctx, r.db, database.GetDishByIDSQL, id)
}

func getDish(ctx context.Context, q database.Querier, query string, id int64) (*models.Dish, error) {
	d, err := scanDish(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.NotFoundError{Resource: models.ResourceDish, IDs: []int64{id}}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dish %d: %w", id, err)
	}
	return d, nil
}

func (r *Repository) CreateDish(ctx context.Context, d models.Dish) (*models.Dish, error) {
	err := r.db.QueryRow(ctx, database.InsertDishSQL,
		d.Name, d.Category, d.ImageURL, d.Tags, d.Rating, d.IsAvailable).Scan(&d.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert dish: %w", err)
	}
	return &d, nil
}

// UpdateDish applies upd to the stored dish under a row lock
func (r *Repository) UpdateDish(ctx context.Context, id int64, upd models.DishUpdate) (*models.Dish, error) {
	var updated *models.Dish
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		d, err := getDish(ctx, tx, database.GetDishForUpdateSQL, id)
		if err != nil {
			return err
		}

		upd.Apply(d)

		_, err = tx.Exec(ctx, database.UpdateDishSQL,
			d.ID, d.Name, d.Category, d.ImageURL, d.Tags, d.Rating, d.IsAvailable)
		if err != nil {
			return fmt.Errorf("failed to update dish %d: %w", id, err)
		}
		updated = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *Repository) DeleteDish(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, database.DeleteDishSQL, id)
	if err != nil {
		return fmt.Errorf("failed to delete dish %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &models.NotFoundError{Resource: models.ResourceDish, IDs: []int64{id}}
	}
	return nil
}

// DishesByIDs resolves ids in one round-trip. Unknown ids are simply absent
// from the result.
func (r *Repository) DishesByIDs(ctx context.Context, ids []int64) ([]models.Dish, error) {
	if len(ids) == 0 {
		return []models.Dish{}, nil
	}
	rows, err := r.db.Query(ctx, database.GetDishesByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to look up dishes: %w", err)
	}
	return collectDishes(rows)
}
