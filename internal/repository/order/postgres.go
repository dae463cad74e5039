package order

import (
	"context"
	"errors"
	"io"
	"log"

	"freshmart/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx executors the repository runs on, satisfied
// by both *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo persists orders and their lines. The checkout coordinator binds it to
// a transaction; read paths and the payment reconciler bind it to the pool.
type Repo struct {
	q      Querier
	logger *log.Logger
}

func New(q Querier, logger *log.Logger) *Repo {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Repo{q: q, logger: logger}
}

// InsertHeader writes the order header with zero totals. The final totals
// are written by SetTotals as the last statement before commit, so a header
// with partial totals is never durably visible.
func (r *Repo) InsertHeader(ctx context.Context, o *domain.Order) error {
	const q = `
INSERT INTO orders (order_id, customer_id, address_id, pay_method, total_count, total_price_cents, transit_price_cents, status)
VALUES ($1, $2, $3, $4, 0, 0, $5, $6)
RETURNING created_at
`
	return r.q.QueryRow(ctx, q, o.OrderID, o.CustomerID, o.AddressID, o.PayMethod, o.TransitCents, o.Status).Scan(&o.CreatedAt)
}

// InsertLine writes one order line with the price captured at reservation
// time.
func (r *Repo) InsertLine(ctx context.Context, l *domain.OrderLine) error {
	const q = `
INSERT INTO order_lines (order_id, item_id, quantity, price_cents)
VALUES ($1, $2, $3, $4)
RETURNING id
`
	return r.q.QueryRow(ctx, q, l.OrderID, l.ItemID, l.Quantity, l.PriceCents).Scan(&l.ID)
}

// SetTotals writes the aggregate count and price onto the header.
func (r *Repo) SetTotals(ctx context.Context, orderID string, totalCount int, totalPriceCents int64) error {
	const q = `
UPDATE orders
SET total_count = $2, total_price_cents = $3
WHERE order_id = $1
`
	tag, err := r.q.Exec(ctx, q, orderID, totalCount, totalPriceCents)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetForCustomer fetches an order with its lines, scoped to the owning
// customer.
func (r *Repo) GetForCustomer(ctx context.Context, customerID int64, orderID string) (*domain.Order, error) {
	const q = `
SELECT order_id, customer_id, address_id, pay_method, total_count, total_price_cents, transit_price_cents, status, COALESCE(trade_no, ''), created_at
FROM orders
WHERE order_id = $1 AND customer_id = $2
`
	var o domain.Order
	err := r.q.QueryRow(ctx, q, orderID, customerID).Scan(
		&o.OrderID,
		&o.CustomerID,
		&o.AddressID,
		&o.PayMethod,
		&o.TotalCount,
		&o.TotalPriceCents,
		&o.TransitCents,
		&o.Status,
		&o.GatewayTradeNo,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	lines, err := r.linesFor(ctx, o.OrderID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

// ListByCustomer returns the customer's orders, newest first, with lines.
func (r *Repo) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	const q = `
SELECT order_id, customer_id, address_id, pay_method, total_count, total_price_cents, transit_price_cents, status, COALESCE(trade_no, ''), created_at
FROM orders
WHERE customer_id = $1
ORDER BY created_at DESC
`
	rows, err := r.q.Query(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.OrderID,
			&o.CustomerID,
			&o.AddressID,
			&o.PayMethod,
			&o.TotalCount,
			&o.TotalPriceCents,
			&o.TransitCents,
			&o.Status,
			&o.GatewayTradeNo,
			&o.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		lines, err := r.linesFor(ctx, result[i].OrderID)
		if err != nil {
			return nil, err
		}
		result[i].Lines = lines
	}
	return result, nil
}

// MarkPaid records the gateway trade reference and advances the order to
// awaiting review. The update is conditional on the placed status, so
// re-applying a confirmation is a no-op: it reports false and mutates
// nothing.
func (r *Repo) MarkPaid(ctx context.Context, orderID, tradeNo string) (bool, error) {
	const q = `
UPDATE orders
SET status = $2, trade_no = $3
WHERE order_id = $1 AND status = $4 AND pay_method = $5
`
	tag, err := r.q.Exec(ctx, q, orderID, domain.StatusAwaitingReview, tradeNo, domain.StatusPlaced, domain.PayGateway)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetLineComment stores the post-delivery comment for one purchased item.
// Unknown lines report domain.ErrNotFound.
func (r *Repo) SetLineComment(ctx context.Context, orderID string, itemID int64, comment string) error {
	const q = `
UPDATE order_lines
SET comment = $3
WHERE order_id = $1 AND item_id = $2
`
	tag, err := r.q.Exec(ctx, q, orderID, itemID, comment)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Complete moves an order from awaiting review to completed, reporting
// whether the transition applied.
func (r *Repo) Complete(ctx context.Context, orderID string) (bool, error) {
	const q = `
UPDATE orders
SET status = $2
WHERE order_id = $1 AND status = $3
`
	tag, err := r.q.Exec(ctx, q, orderID, domain.StatusCompleted, domain.StatusAwaitingReview)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repo) linesFor(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	const q = `
SELECT id, order_id, item_id, quantity, price_cents, comment
FROM order_lines
WHERE order_id = $1
ORDER BY id ASC
`
	rows, err := r.q.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.Quantity, &l.PriceCents, &l.Comment); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
