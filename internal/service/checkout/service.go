// Package checkout converts a customer's cart selection into a persisted
// order. The commit path runs inside a single transaction scope: stock
// decrements, order header, and order lines either all commit or all roll
// back, and the cart is cleared only after the commit is durable.
package checkout

import (
	"context"
	"io"
	"log"
	"strconv"
	"time"

	"freshmart/internal/domain"
	"freshmart/internal/repository/txscope"
)

type cartReader interface {
	Snapshot(ctx context.Context, customerID int64, itemIDs []int64) (map[int64]int, error)
	Evict(ctx context.Context, customerID int64, itemIDs []int64) error
}

type addressReader interface {
	GetOwned(ctx context.Context, customerID, addressID int64) (*domain.Address, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Address, error)
}

type stockReader interface {
	ListByIDs(ctx context.Context, ids []int64) ([]domain.StockItem, error)
}

type Service struct {
	scope     txscope.Scope
	carts     cartReader
	addresses addressReader
	stock     stockReader
	logger    *log.Logger
	now       func() time.Time
}

func New(scope txscope.Scope, carts cartReader, addresses addressReader, stock stockReader, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		scope:     scope,
		carts:     carts,
		addresses: addresses,
		stock:     stock,
		logger:    logger,
		now:       time.Now,
	}
}

// CommitInput carries the customer's checkout submission. ItemIDs keep the
// order the customer submitted them in.
type CommitInput struct {
	CustomerID int64
	AddressID  int64
	PayMethod  domain.PayMethod
	ItemIDs    []int64
}

// Commit places the order. Validation failures surface before any write;
// once the transaction scope opens, any failure rolls back every row written
// inside it, including the order header. Cart eviction happens strictly
// after commit and is best-effort cleanup: a failed eviction never fails a
// committed order.
func (s *Service) Commit(ctx context.Context, in CommitInput) (string, error) {
	if len(in.ItemIDs) == 0 {
		return "", domain.ErrEmptyCart
	}
	if !in.PayMethod.Valid() {
		return "", domain.ErrInvalidPayMethod
	}
	if _, err := s.addresses.GetOwned(ctx, in.CustomerID, in.AddressID); err != nil {
		return "", err
	}

	// The cart is read outside the transaction's atomicity guarantee; the
	// quantities are hints that the stock ledger re-validates under its
	// concurrency control.
	quantities, err := s.carts.Snapshot(ctx, in.CustomerID, in.ItemIDs)
	if err != nil {
		return "", err
	}
	for _, itemID := range in.ItemIDs {
		if quantities[itemID] <= 0 {
			return "", domain.ErrEmptyCart
		}
	}

	orderID := s.orderID(in.CustomerID)

	err = s.scope.Execute(ctx, func(r txscope.Repos) error {
		header := &domain.Order{
			OrderID:      orderID,
			CustomerID:   in.CustomerID,
			AddressID:    in.AddressID,
			PayMethod:    in.PayMethod,
			TransitCents: domain.TransitPriceCents,
			Status:       domain.StatusPlaced,
		}
		if err := r.Orders.InsertHeader(ctx, header); err != nil {
			return err
		}

		totalCount := 0
		var totalPriceCents int64
		for _, itemID := range in.ItemIDs {
			quantity := quantities[itemID]

			res, err := r.Stock.Reserve(ctx, itemID, quantity)
			if err != nil {
				return err
			}

			line := &domain.OrderLine{
				OrderID:    orderID,
				ItemID:     itemID,
				Quantity:   res.Quantity,
				PriceCents: res.PriceCents,
			}
			if err := r.Orders.InsertLine(ctx, line); err != nil {
				return err
			}

			totalCount += res.Quantity
			totalPriceCents += res.AmountCents()
		}

		// Last write before commit: the header is never durably visible
		// with partial totals.
		return r.Orders.SetTotals(ctx, orderID, totalCount, totalPriceCents)
	})
	if err != nil {
		return "", err
	}

	if err := s.carts.Evict(ctx, in.CustomerID, in.ItemIDs); err != nil {
		s.logger.Printf("checkout: cart evict failed customer=%d order=%s: %v", in.CustomerID, orderID, err)
	}

	return orderID, nil
}

// orderID derives the order id from the commit timestamp and customer id.
// Two checkouts by the same customer within the same second would collide;
// the primary key turns that into a failed checkout rather than silent
// reuse, which is an accepted limitation of the id scheme.
func (s *Service) orderID(customerID int64) string {
	return s.now().UTC().Format("20060102150405") + strconv.FormatInt(customerID, 10)
}
