package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAddressNotFound indicates the shipping address does not exist or
	// belongs to another customer.
	ErrAddressNotFound = errors.New("address not found")
	// ErrInvalidPayMethod indicates an unrecognized payment method.
	ErrInvalidPayMethod = errors.New("invalid payment method")
	// ErrEmptyCart indicates a checkout attempt with no purchasable lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInsufficientStock indicates the requested quantity exceeds the
	// available stock of an item.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrConcurrencyExhausted indicates the optimistic reservation lost the
	// conditional-update race on all allowed attempts.
	ErrConcurrencyExhausted = errors.New("concurrent stock update retries exhausted")
	// ErrOrderNotPayable indicates the order is not in a state that accepts
	// gateway payment (wrong method or already past placed).
	ErrOrderNotPayable = errors.New("order not payable")
	// ErrGateway indicates a definitive payment gateway failure.
	ErrGateway = errors.New("payment gateway error")
)

// StockError attaches the contended item to a stock reservation failure so
// callers can report which line aborted the checkout.
type StockError struct {
	ItemID int64
	Err    error
}

func (e *StockError) Error() string {
	return fmt.Sprintf("item %d: %v", e.ItemID, e.Err)
}

func (e *StockError) Unwrap() error { return e.Err }
