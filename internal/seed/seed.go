package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Apply inserts a demo customer with an address and a small catalog of
// stock items. It is idempotent: re-running it leaves existing rows alone.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	var customerID int64
	err := pool.QueryRow(ctx, `
INSERT INTO customers (email, name)
VALUES ('demo@freshmart.dev', 'Demo Customer')
ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
RETURNING id
`).Scan(&customerID)
	if err != nil {
		return fmt.Errorf("seed customer: %w", err)
	}

	var addressCount int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM addresses WHERE customer_id = $1`, customerID).Scan(&addressCount); err != nil {
		return fmt.Errorf("seed addresses: %w", err)
	}
	if addressCount == 0 {
		_, err = pool.Exec(ctx, `
INSERT INTO addresses (customer_id, receiver, addr, zip_code, phone, is_default)
VALUES ($1, 'Demo Customer', '1 Market Street', '94105', '555-0100', TRUE)
`, customerID)
		if err != nil {
			return fmt.Errorf("seed addresses: %w", err)
		}
	}

	var itemCount int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM stock_items`).Scan(&itemCount); err != nil {
		return fmt.Errorf("seed items: %w", err)
	}
	if itemCount > 0 {
		return nil
	}

	items := []struct {
		name       string
		unit       string
		priceCents int64
		stock      int
	}{
		{"Strawberries", "500g", 1000, 100},
		{"Gala Apples", "1kg", 650, 200},
		{"Cherry Tomatoes", "250g", 480, 150},
		{"Free-Range Eggs", "dozen", 720, 80},
		{"Whole Milk", "1L", 320, 120},
	}
	for _, item := range items {
		_, err := pool.Exec(ctx, `
INSERT INTO stock_items (name, unit, price_cents, stock)
VALUES ($1, $2, $3, $4)
`, item.name, item.unit, item.priceCents, item.stock)
		if err != nil {
			return fmt.Errorf("seed item %s: %w", item.name, err)
		}
	}
	return nil
}
