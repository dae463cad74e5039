// Package order serves order browsing and the post-delivery review that
// completes an order's lifecycle.
package order

import (
	"context"
	"errors"
	"io"
	"log"

	"freshmart/internal/domain"
)

// ErrNotReviewable indicates the order is not awaiting review.
var ErrNotReviewable = errors.New("order not awaiting review")

type repo interface {
	GetForCustomer(ctx context.Context, customerID int64, orderID string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error)
	SetLineComment(ctx context.Context, orderID string, itemID int64, comment string) error
	Complete(ctx context.Context, orderID string) (bool, error)
}

type Service struct {
	repo   repo
	logger *log.Logger
}

func New(r repo, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: r, logger: logger}
}

func (s *Service) Get(ctx context.Context, customerID int64, orderID string) (*domain.Order, error) {
	return s.repo.GetForCustomer(ctx, customerID, orderID)
}

func (s *Service) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// SubmitReview stores per-line comments and completes the order. Comments
// for items the order never contained are skipped, matching the tolerant
// behavior of the review form. The status write is conditional on awaiting
// review, so a repeated submission does not re-complete anything.
func (s *Service) SubmitReview(ctx context.Context, customerID int64, orderID string, comments map[int64]string) error {
	order, err := s.repo.GetForCustomer(ctx, customerID, orderID)
	if err != nil {
		return err
	}
	if !order.Status.CanTransition(domain.StatusCompleted) {
		return ErrNotReviewable
	}

	for itemID, comment := range comments {
		if err := s.repo.SetLineComment(ctx, orderID, itemID, comment); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Printf("order review: order %s has no line for item %d, skipping", orderID, itemID)
				continue
			}
			return err
		}
	}

	applied, err := s.repo.Complete(ctx, orderID)
	if err != nil {
		return err
	}
	if !applied {
		return ErrNotReviewable
	}
	return nil
}
