package stock

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx executors the repository runs on, satisfied
// by both *pgxpool.Pool and pgx.Tx. Reservations must run on a transaction;
// catalog reads may run on the pool.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Mode selects the reservation concurrency-control strategy.
type Mode string

const (
	// ModePessimistic takes an exclusive row lock for the lifetime of the
	// enclosing transaction.
	ModePessimistic Mode = "pessimistic"
	// ModeOptimistic detects conflicts with a compare-and-swap update and
	// retries a bounded number of times.
	ModeOptimistic Mode = "optimistic"
)

// optimisticAttempts bounds the read-compute-write cycles per line item
// before the reservation gives up.
const optimisticAttempts = 3
