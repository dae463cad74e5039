package stock

import (
	"context"
	"errors"
	"io"
	"log"

	"freshmart/internal/domain"
	"github.com/jackc/pgx/v5"
)

// Repo is the stock ledger over a pgx executor. Bound to a pgx.Tx it
// performs reservations; bound to the pool it serves unlocked catalog reads.
type Repo struct {
	q      Querier
	mode   Mode
	logger *log.Logger
}

func New(q Querier, mode Mode, logger *log.Logger) *Repo {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Repo{q: q, mode: mode, logger: logger}
}

// Reserve atomically decrements available stock and increments sales for one
// item, returning the unit price read in the same step. The caller must run
// it inside the transaction that inserts the matching order line so both
// commit or roll back together. Failures: domain.ErrNotFound,
// domain.ErrInsufficientStock, domain.ErrConcurrencyExhausted, all wrapped
// in *domain.StockError.
func (r *Repo) Reserve(ctx context.Context, itemID int64, quantity int) (*domain.Reservation, error) {
	var (
		res *domain.Reservation
		err error
	)
	switch r.mode {
	case ModeOptimistic:
		res, err = r.reserveOptimistic(ctx, itemID, quantity)
	default:
		res, err = r.reservePessimistic(ctx, itemID, quantity)
	}
	if err != nil {
		return nil, &domain.StockError{ItemID: itemID, Err: err}
	}
	return res, nil
}

// reservePessimistic locks the row for the rest of the transaction, then
// decrements in place. Contending checkouts on the same item serialize on
// the lock.
func (r *Repo) reservePessimistic(ctx context.Context, itemID int64, quantity int) (*domain.Reservation, error) {
	const selectForUpdate = `
SELECT price_cents, stock
FROM stock_items
WHERE id = $1
FOR UPDATE
`
	var priceCents int64
	var available int
	if err := r.q.QueryRow(ctx, selectForUpdate, itemID).Scan(&priceCents, &available); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if quantity > available {
		return nil, domain.ErrInsufficientStock
	}

	const decrement = `
UPDATE stock_items
SET stock = stock - $2, sales = sales + $2
WHERE id = $1
`
	if _, err := r.q.Exec(ctx, decrement, itemID, quantity); err != nil {
		return nil, err
	}

	return &domain.Reservation{ItemID: itemID, Quantity: quantity, PriceCents: priceCents}, nil
}

// reserveOptimistic reads without locking and writes conditionally on the
// stock value it read. A zero-row update is a lost race; the cycle retries
// up to optimisticAttempts times.
func (r *Repo) reserveOptimistic(ctx context.Context, itemID int64, quantity int) (*domain.Reservation, error) {
	const read = `
SELECT price_cents, stock, sales
FROM stock_items
WHERE id = $1
`
	const casUpdate = `
UPDATE stock_items
SET stock = $2, sales = $3
WHERE id = $1 AND stock = $4
`
	for attempt := 1; attempt <= optimisticAttempts; attempt++ {
		var priceCents int64
		var available, sales int
		if err := r.q.QueryRow(ctx, read, itemID).Scan(&priceCents, &available, &sales); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, domain.ErrNotFound
			}
			return nil, err
		}

		if quantity > available {
			return nil, domain.ErrInsufficientStock
		}

		tag, err := r.q.Exec(ctx, casUpdate, itemID, available-quantity, sales+quantity, available)
		if err != nil {
			return nil, err
		}
		if tag.RowsAffected() == 0 {
			r.logger.Printf("stock repo: cas conflict item=%d attempt=%d", itemID, attempt)
			continue
		}

		return &domain.Reservation{ItemID: itemID, Quantity: quantity, PriceCents: priceCents}, nil
	}

	return nil, domain.ErrConcurrencyExhausted
}

// GetByID is an unlocked catalog read. Quantities seen here are hints; only
// Reserve is authoritative.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.StockItem, error) {
	const q = `
SELECT id, name, unit, price_cents, stock, sales, created_at
FROM stock_items
WHERE id = $1
`
	var item domain.StockItem
	err := r.q.QueryRow(ctx, q, id).Scan(&item.ID, &item.Name, &item.Unit, &item.PriceCents, &item.Stock, &item.Sales, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// ListByIDs returns the items in the order the ids were submitted, erroring
// with domain.ErrNotFound if any id is unknown.
func (r *Repo) ListByIDs(ctx context.Context, ids []int64) ([]domain.StockItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const q = `
SELECT id, name, unit, price_cents, stock, sales, created_at
FROM stock_items
WHERE id = ANY($1)
`
	rows, err := r.q.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int64]domain.StockItem, len(ids))
	for rows.Next() {
		var item domain.StockItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Unit, &item.PriceCents, &item.Stock, &item.Sales, &item.CreatedAt); err != nil {
			return nil, err
		}
		byID[item.ID] = item
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]domain.StockItem, 0, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			return nil, &domain.StockError{ItemID: id, Err: domain.ErrNotFound}
		}
		result = append(result, item)
	}
	return result, nil
}

// List returns the catalog ordered by newest first.
func (r *Repo) List(ctx context.Context) ([]domain.StockItem, error) {
	const q = `
SELECT id, name, unit, price_cents, stock, sales, created_at
FROM stock_items
ORDER BY created_at DESC, id DESC
`
	rows, err := r.q.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StockItem
	for rows.Next() {
		var item domain.StockItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Unit, &item.PriceCents, &item.Stock, &item.Sales, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
