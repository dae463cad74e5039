package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"freshmart/internal/domain"
	"freshmart/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedGateway struct {
	createResult *gateway.CreateTradeResult
	createErr    error
	createCalls  int

	queryResults []gateway.QueryTradeResult
	queryErr     error
	queryCalls   int

	onQuery func(call int)
}

func (g *scriptedGateway) CreateTrade(ctx context.Context, in gateway.CreateTradeInput) (*gateway.CreateTradeResult, error) {
	g.createCalls++
	if g.createErr != nil {
		return nil, g.createErr
	}
	return g.createResult, nil
}

func (g *scriptedGateway) QueryTrade(ctx context.Context, outTradeNo string) (*gateway.QueryTradeResult, error) {
	g.queryCalls++
	if g.onQuery != nil {
		g.onQuery(g.queryCalls)
	}
	if g.queryErr != nil {
		return nil, g.queryErr
	}
	idx := g.queryCalls - 1
	if idx >= len(g.queryResults) {
		idx = len(g.queryResults) - 1
	}
	res := g.queryResults[idx]
	return &res, nil
}

type stubOrders struct {
	order *domain.Order

	markPaidCalls int
	markApplied   bool
	tradeNo       string
}

func (s *stubOrders) GetForCustomer(ctx context.Context, customerID int64, orderID string) (*domain.Order, error) {
	if s.order == nil || s.order.OrderID != orderID || s.order.CustomerID != customerID {
		return nil, domain.ErrNotFound
	}
	cp := *s.order
	return &cp, nil
}

func (s *stubOrders) MarkPaid(ctx context.Context, orderID, tradeNo string) (bool, error) {
	s.markPaidCalls++
	s.tradeNo = tradeNo
	if !s.markApplied {
		return false, nil
	}
	s.order.Status = domain.StatusAwaitingReview
	s.order.GatewayTradeNo = tradeNo
	return true, nil
}

func placedOrder() *domain.Order {
	return &domain.Order{
		OrderID:         "2024051710304542",
		CustomerID:      42,
		PayMethod:       domain.PayGateway,
		Status:          domain.StatusPlaced,
		TotalPriceCents: 2650,
		TransitCents:    domain.TransitPriceCents,
	}
}

func TestPayReturnsGatewayURL(t *testing.T) {
	gw := &scriptedGateway{createResult: &gateway.CreateTradeResult{PayURL: "https://pay.example.com/t/abc"}}
	orders := &stubOrders{order: placedOrder()}
	svc := New(gw, orders, 3, time.Millisecond, nil)

	url, err := svc.Pay(context.Background(), 42, "2024051710304542")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/t/abc", url)
	assert.Equal(t, 1, gw.createCalls)
}

func TestPayRejectsNonGatewayOrder(t *testing.T) {
	order := placedOrder()
	order.PayMethod = domain.PayOnDelivery
	svc := New(&scriptedGateway{}, &stubOrders{order: order}, 3, time.Millisecond, nil)

	_, err := svc.Pay(context.Background(), 42, order.OrderID)
	require.ErrorIs(t, err, domain.ErrOrderNotPayable)
}

func TestPayRejectsAlreadyPaidOrder(t *testing.T) {
	order := placedOrder()
	order.Status = domain.StatusAwaitingReview
	svc := New(&scriptedGateway{}, &stubOrders{order: order}, 3, time.Millisecond, nil)

	_, err := svc.Pay(context.Background(), 42, order.OrderID)
	require.ErrorIs(t, err, domain.ErrOrderNotPayable)
}

func TestPayWrapsGatewayFailure(t *testing.T) {
	gw := &scriptedGateway{createErr: errors.New("connection refused")}
	svc := New(gw, &stubOrders{order: placedOrder()}, 3, time.Millisecond, nil)

	_, err := svc.Pay(context.Background(), 42, "2024051710304542")
	require.ErrorIs(t, err, domain.ErrGateway)
}

func TestCheckPaymentConfirmsOnSuccess(t *testing.T) {
	gw := &scriptedGateway{queryResults: []gateway.QueryTradeResult{
		{Code: gateway.CodeOK, TradeStatus: gateway.TradeSuccess, TradeNo: "gw-123"},
	}}
	orders := &stubOrders{order: placedOrder(), markApplied: true}
	svc := New(gw, orders, 3, time.Millisecond, nil)

	outcome, err := svc.CheckPayment(context.Background(), 42, "2024051710304542")
	require.NoError(t, err)
	assert.Equal(t, OutcomePaid, outcome)
	assert.Equal(t, 1, orders.markPaidCalls)
	assert.Equal(t, "gw-123", orders.tradeNo)
	assert.Equal(t, domain.StatusAwaitingReview, orders.order.Status)
}

func TestCheckPaymentPendingUntilSuccess(t *testing.T) {
	gw := &scriptedGateway{queryResults: []gateway.QueryTradeResult{
		{Code: gateway.CodeBusinessPending},
		{Code: gateway.CodeOK, TradeStatus: gateway.WaitBuyerPay},
		{Code: gateway.CodeOK, TradeStatus: gateway.TradeSuccess, TradeNo: "gw-123"},
	}}
	orders := &stubOrders{order: placedOrder(), markApplied: true}
	svc := New(gw, orders, 5, time.Millisecond, nil)

	outcome, err := svc.CheckPayment(context.Background(), 42, "2024051710304542")
	require.NoError(t, err)
	assert.Equal(t, OutcomePaid, outcome)
	assert.Equal(t, 3, gw.queryCalls)
}

func TestCheckPaymentExhaustsAttempts(t *testing.T) {
	gw := &scriptedGateway{queryResults: []gateway.QueryTradeResult{
		{Code: gateway.CodeOK, TradeStatus: gateway.WaitBuyerPay},
	}}
	orders := &stubOrders{order: placedOrder()}
	svc := New(gw, orders, 3, time.Millisecond, nil)

	outcome, err := svc.CheckPayment(context.Background(), 42, "2024051710304542")
	require.NoError(t, err)
	assert.Equal(t, OutcomePending, outcome)
	assert.Equal(t, 3, gw.queryCalls)
	assert.Equal(t, 0, orders.markPaidCalls)
}

func TestCheckPaymentIdempotentWhenAlreadyPaid(t *testing.T) {
	order := placedOrder()
	order.Status = domain.StatusAwaitingReview
	order.GatewayTradeNo = "gw-123"
	gw := &scriptedGateway{}
	svc := New(gw, &stubOrders{order: order}, 3, time.Millisecond, nil)

	outcome, err := svc.CheckPayment(context.Background(), 42, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, OutcomePaid, outcome)
	assert.Equal(t, 0, gw.queryCalls)
}

func TestCheckPaymentLostConditionalUpdateStillPaid(t *testing.T) {
	gw := &scriptedGateway{queryResults: []gateway.QueryTradeResult{
		{Code: gateway.CodeOK, TradeStatus: gateway.TradeSuccess, TradeNo: "gw-123"},
	}}
	orders := &stubOrders{order: placedOrder(), markApplied: false}
	svc := New(gw, orders, 3, time.Millisecond, nil)

	outcome, err := svc.CheckPayment(context.Background(), 42, "2024051710304542")
	require.NoError(t, err)
	assert.Equal(t, OutcomePaid, outcome)
}

func TestCheckPaymentDefinitiveErrorSurfaces(t *testing.T) {
	gw := &scriptedGateway{queryResults: []gateway.QueryTradeResult{
		{Code: gateway.CodeOK, TradeStatus: gateway.TradeClosed},
	}}
	orders := &stubOrders{order: placedOrder()}
	svc := New(gw, orders, 3, time.Millisecond, nil)

	_, err := svc.CheckPayment(context.Background(), 42, "2024051710304542")
	require.ErrorIs(t, err, domain.ErrGateway)
	assert.Equal(t, 1, gw.queryCalls)
	assert.Equal(t, domain.StatusPlaced, orders.order.Status)
}

func TestCheckPaymentTransportErrorSurfaces(t *testing.T) {
	gw := &scriptedGateway{queryErr: errors.New("connection reset")}
	svc := New(gw, &stubOrders{order: placedOrder()}, 3, time.Millisecond, nil)

	_, err := svc.CheckPayment(context.Background(), 42, "2024051710304542")
	require.ErrorIs(t, err, domain.ErrGateway)
}

func TestCheckPaymentHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gw := &scriptedGateway{
		queryResults: []gateway.QueryTradeResult{{Code: gateway.CodeBusinessPending}},
		onQuery:      func(int) { cancel() },
	}
	svc := New(gw, &stubOrders{order: placedOrder()}, 5, time.Hour, nil)

	_, err := svc.CheckPayment(ctx, 42, "2024051710304542")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, gw.queryCalls)
}

func TestCheckPaymentRejectsNonGatewayOrder(t *testing.T) {
	order := placedOrder()
	order.PayMethod = domain.PayBankTransfer
	svc := New(&scriptedGateway{}, &stubOrders{order: order}, 3, time.Millisecond, nil)

	_, err := svc.CheckPayment(context.Background(), 42, order.OrderID)
	require.ErrorIs(t, err, domain.ErrOrderNotPayable)
}
