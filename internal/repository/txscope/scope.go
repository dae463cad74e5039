// Package txscope provides the explicit transaction scope the checkout
// coordinator runs inside: one database transaction that either commits
// every write or rolls all of them back, released on every exit path.
package txscope

import (
	"context"
	"io"
	"log"

	"freshmart/internal/domain"
	orderrepo "freshmart/internal/repository/order"
	stockrepo "freshmart/internal/repository/stock"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ledger reserves stock inside the scope's transaction.
type Ledger interface {
	Reserve(ctx context.Context, itemID int64, quantity int) (*domain.Reservation, error)
}

// OrderStore writes order rows inside the scope's transaction.
type OrderStore interface {
	InsertHeader(ctx context.Context, o *domain.Order) error
	InsertLine(ctx context.Context, l *domain.OrderLine) error
	SetTotals(ctx context.Context, orderID string, totalCount int, totalPriceCents int64) error
}

// Repos are the transactional repositories handed to the scope callback.
// Everything they write shares one transaction.
type Repos struct {
	Stock  Ledger
	Orders OrderStore
}

// Scope runs a function within a database transaction. An error from the
// function rolls back everything written inside it; nil commits.
type Scope interface {
	Execute(ctx context.Context, fn func(r Repos) error) error
}

// PgxScope is the PostgreSQL implementation of Scope.
type PgxScope struct {
	pool   *pgxpool.Pool
	mode   stockrepo.Mode
	logger *log.Logger
}

func New(pool *pgxpool.Pool, mode stockrepo.Mode, logger *log.Logger) *PgxScope {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &PgxScope{pool: pool, mode: mode, logger: logger}
}

// Execute opens a transaction, binds the stock and order repositories to it,
// and runs fn. The deferred rollback covers every early return and panic;
// it is a no-op after a successful commit.
func (s *PgxScope) Execute(ctx context.Context, fn func(r Repos) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	repos := Repos{
		Stock:  stockrepo.New(tx, s.mode, s.logger),
		Orders: orderrepo.New(tx, s.logger),
	}
	if err := fn(repos); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
