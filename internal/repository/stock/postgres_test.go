package stock

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"freshmart/internal/domain"
	"freshmart/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
)

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE order_lines, orders, addresses, stock_items, customers RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func insertItem(ctx context.Context, t *testing.T, pool *pgxpool.Pool, priceCents int64, stock int) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(ctx, `
INSERT INTO stock_items (name, unit, price_cents, stock)
VALUES ('Strawberries', '500g', $1, $2)
RETURNING id
`, priceCents, stock).Scan(&id)
	if err != nil {
		t.Fatalf("insert item: %v", err)
	}
	return id
}

func itemState(ctx context.Context, t *testing.T, pool *pgxpool.Pool, id int64) (stock, sales int) {
	t.Helper()
	if err := pool.QueryRow(ctx, `SELECT stock, sales FROM stock_items WHERE id = $1`, id).Scan(&stock, &sales); err != nil {
		t.Fatalf("read item: %v", err)
	}
	return stock, sales
}

func TestReserveModes(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	for _, mode := range []Mode{ModePessimistic, ModeOptimistic} {
		t.Run(string(mode), func(t *testing.T) {
			resetTables(ctx, t, pool)
			itemID := insertItem(ctx, t, pool, 1000, 10)
			repo := New(pool, mode, nil)

			res, err := repo.Reserve(ctx, itemID, 3)
			if err != nil {
				t.Fatalf("Reserve: %v", err)
			}
			if res.PriceCents != 1000 || res.Quantity != 3 {
				t.Fatalf("unexpected reservation %+v", res)
			}

			stock, sales := itemState(ctx, t, pool, itemID)
			if stock != 7 || sales != 3 {
				t.Fatalf("expected stock=7 sales=3, got stock=%d sales=%d", stock, sales)
			}

			if _, err := repo.Reserve(ctx, itemID, 8); !errors.Is(err, domain.ErrInsufficientStock) {
				t.Fatalf("expected ErrInsufficientStock, got %v", err)
			}
			var stockErr *domain.StockError
			if _, err := repo.Reserve(ctx, itemID+1000, 1); !errors.As(err, &stockErr) || !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("expected wrapped ErrNotFound, got %v", err)
			}
		})
	}
}

func TestReserveConcurrentNeverOversells(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	for _, mode := range []Mode{ModePessimistic, ModeOptimistic} {
		t.Run(string(mode), func(t *testing.T) {
			resetTables(ctx, t, pool)
			itemID := insertItem(ctx, t, pool, 1000, 5)

			const workers = 8
			var wg sync.WaitGroup
			errs := make(chan error, workers)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					err := pgxExecInTx(ctx, pool, func(q Querier) error {
						_, err := New(q, mode, nil).Reserve(ctx, itemID, 2)
						return err
					})
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)

			won := 0
			for err := range errs {
				switch {
				case err == nil:
					won++
				case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrConcurrencyExhausted):
				default:
					t.Fatalf("unexpected reserve error: %v", err)
				}
			}

			stock, sales := itemState(ctx, t, pool, itemID)
			if stock < 0 {
				t.Fatalf("stock went negative: %d", stock)
			}
			if stock+sales != 5 {
				t.Fatalf("ledger out of balance: stock=%d sales=%d", stock, sales)
			}
			if sales != won*2 {
				t.Fatalf("expected sales=%d for %d winners, got %d", won*2, won, sales)
			}
		})
	}
}

func TestListByIDsPreservesOrder(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()
	resetTables(ctx, t, pool)

	first := insertItem(ctx, t, pool, 1000, 10)
	second := insertItem(ctx, t, pool, 650, 20)
	repo := New(pool, ModePessimistic, nil)

	items, err := repo.ListByIDs(ctx, []int64{second, first})
	if err != nil {
		t.Fatalf("ListByIDs: %v", err)
	}
	if len(items) != 2 || items[0].ID != second || items[1].ID != first {
		t.Fatalf("expected submitted order preserved, got %+v", items)
	}

	if _, err := repo.ListByIDs(ctx, []int64{first, first + 1000}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func pgxExecInTx(ctx context.Context, pool *pgxpool.Pool, fn func(q Querier) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
