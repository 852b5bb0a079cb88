package database

// Migration bookkeeping
const (
	CreateMigrationsTableSQL = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			migration_name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)`

	SelectAppliedMigrationsSQL = `SELECT migration_name FROM schema_migrations`

	RecordMigrationSQL = `INSERT INTO schema_migrations (migration_name) VALUES ($1)`
)

// Dish queries
const (
	dishColumns = `id, name, category, image_url, tags, rating, is_available`

	ListDishesSQL = `
		SELECT ` + dishColumns + `
		FROM dishes
		WHERE ($1 = '' OR category = $1)
		  AND (NOT $2 OR is_available)
		ORDER BY category, name, id`

	GetDishByIDSQL = `
		SELECT ` + dishColumns + `
		FROM dishes WHERE id = $1`

	GetDishForUpdateSQL = `
		SELECT ` + dishColumns + `
		FROM dishes WHERE id = $1
		FOR UPDATE`

	GetDishesByIDsSQL = `
		SELECT ` + dishColumns + `
		FROM dishes WHERE id = ANY($1)`

	InsertDishSQL = `
		INSERT INTO dishes (name, category, image_url, tags, rating, is_available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	UpdateDishSQL = `
		UPDATE dishes
		SET name = $2, category = $3, image_url = $4, tags = $5, rating = $6, is_available = $7
		WHERE id = $1`

	DeleteDishSQL = `DELETE FROM dishes WHERE id = $1`
)

// Order queries
const (
	orderColumns = `id, created_at, status, note, total_items`

	InsertOrderSQL = `
		INSERT INTO orders (status, note, total_items)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	InsertOrderItemSQL = `
		INSERT INTO order_items (order_id, dish_id, dish_name, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	GetOrderByIDSQL = `
		SELECT ` + orderColumns + `
		FROM orders WHERE id = $1`

	GetActiveOrderSQL = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status <> 'completed'
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	ListOrdersSQL = `
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	// The subquery locks the row so old_status is the value being replaced.
	UpdateOrderStatusSQL = `
		UPDATE orders o
		SET status = $2
		FROM (SELECT id, status FROM orders WHERE id = $1 FOR UPDATE) prev
		WHERE o.id = prev.id
		RETURNING o.id, o.created_at, o.status, o.note, o.total_items, prev.status`

	GetOrderItemsByOrderIDsSQL = `
		SELECT id, order_id, dish_id, dish_name, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id`
)
