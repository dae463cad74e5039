// Package payment drives gateway payment for placed orders: trade creation
// at pay time and a bounded reconciliation poll that advances the order once
// the gateway confirms.
package payment

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"freshmart/internal/domain"
	"freshmart/internal/gateway"
)

type gatewayClient interface {
	CreateTrade(ctx context.Context, in gateway.CreateTradeInput) (*gateway.CreateTradeResult, error)
	QueryTrade(ctx context.Context, outTradeNo string) (*gateway.QueryTradeResult, error)
}

type orderStore interface {
	GetForCustomer(ctx context.Context, customerID int64, orderID string) (*domain.Order, error)
	MarkPaid(ctx context.Context, orderID, tradeNo string) (bool, error)
}

// Outcome is the result of one CheckPayment call.
type Outcome string

const (
	// OutcomePaid means the gateway confirmed the payment and the order has
	// been advanced (now or by an earlier poll).
	OutcomePaid Outcome = "paid"
	// OutcomePending means the buyer has not paid yet within this poll's
	// attempt budget; the caller may poll again later.
	OutcomePending Outcome = "pending"
)

type Service struct {
	gateway  gatewayClient
	orders   orderStore
	attempts int
	delay    time.Duration
	logger   *log.Logger
}

func New(gw gatewayClient, orders orderStore, attempts int, delay time.Duration, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if attempts < 1 {
		attempts = 1
	}
	return &Service{gateway: gw, orders: orders, attempts: attempts, delay: delay, logger: logger}
}

// Pay creates the gateway trade for a placed gateway-method order and
// returns the URL the customer completes payment at.
func (s *Service) Pay(ctx context.Context, customerID int64, orderID string) (string, error) {
	order, err := s.orders.GetForCustomer(ctx, customerID, orderID)
	if err != nil {
		return "", err
	}
	if order.PayMethod != domain.PayGateway || order.Status != domain.StatusPlaced {
		return "", domain.ErrOrderNotPayable
	}

	res, err := s.gateway.CreateTrade(ctx, gateway.CreateTradeInput{
		OutTradeNo: order.OrderID,
		TotalCents: order.TotalPayCents(),
		Subject:    "freshmart order " + order.OrderID,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}
	return res.PayURL, nil
}

// CheckPayment polls the gateway for the order's trade status. The loop is
// bounded by the configured attempt budget and the caller's context; it
// never spins unbounded against the gateway. Confirmation is applied with a
// conditional update, so checking an already-confirmed order reports paid
// without re-applying anything. Definitive gateway errors surface as
// domain.ErrGateway and leave the order untouched.
func (s *Service) CheckPayment(ctx context.Context, customerID int64, orderID string) (Outcome, error) {
	order, err := s.orders.GetForCustomer(ctx, customerID, orderID)
	if err != nil {
		return "", err
	}
	if order.PayMethod != domain.PayGateway {
		return "", domain.ErrOrderNotPayable
	}
	if order.Status != domain.StatusPlaced {
		if order.GatewayTradeNo != "" {
			return OutcomePaid, nil
		}
		return "", domain.ErrOrderNotPayable
	}

	for attempt := 1; attempt <= s.attempts; attempt++ {
		res, err := s.gateway.QueryTrade(ctx, orderID)
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrGateway, err)
		}

		switch {
		case res.Code == gateway.CodeOK && res.TradeStatus == gateway.TradeSuccess:
			applied, err := s.orders.MarkPaid(ctx, orderID, res.TradeNo)
			if err != nil {
				return "", err
			}
			if !applied {
				// A concurrent poll won the conditional update; the
				// confirmation stands either way.
				s.logger.Printf("payment: order %s already marked paid", orderID)
			}
			return OutcomePaid, nil

		case res.Code == gateway.CodeBusinessPending,
			res.Code == gateway.CodeOK && res.TradeStatus == gateway.WaitBuyerPay:
			if attempt == s.attempts {
				break
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(s.delay):
			}

		default:
			return "", fmt.Errorf("%w: code=%s trade_status=%s", domain.ErrGateway, res.Code, res.TradeStatus)
		}
	}

	return OutcomePending, nil
}
