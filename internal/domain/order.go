package domain

import (
	"fmt"
	"time"
)

// PayMethod enumerates the supported payment methods.
type PayMethod int16

const (
	PayOnDelivery   PayMethod = 1
	PayBankTransfer PayMethod = 2
	// PayGateway is the only method reconciled against the external
	// payment gateway.
	PayGateway PayMethod = 3
)

// Valid reports whether m is one of the enumerated payment methods.
func (m PayMethod) Valid() bool {
	switch m {
	case PayOnDelivery, PayBankTransfer, PayGateway:
		return true
	}
	return false
}

func (m PayMethod) String() string {
	switch m {
	case PayOnDelivery:
		return "pay on delivery"
	case PayBankTransfer:
		return "bank transfer"
	case PayGateway:
		return "gateway"
	}
	return fmt.Sprintf("pay method %d", int16(m))
}

// OrderStatus is the order lifecycle state. Confirmed gateway payment
// advances an order straight from placed to awaiting review; the
// intermediate fulfillment states exist in the model but nothing in this
// service drives them.
type OrderStatus int16

const (
	StatusPlaced           OrderStatus = 1
	StatusAwaitingShipment OrderStatus = 2
	StatusShipped          OrderStatus = 3
	StatusAwaitingReview   OrderStatus = 4
	StatusCompleted        OrderStatus = 5
)

func (s OrderStatus) String() string {
	switch s {
	case StatusPlaced:
		return "placed"
	case StatusAwaitingShipment:
		return "awaiting shipment"
	case StatusShipped:
		return "shipped"
	case StatusAwaitingReview:
		return "awaiting review"
	case StatusCompleted:
		return "completed"
	}
	return fmt.Sprintf("status %d", int16(s))
}

// CanTransition reports whether an order may move from s to next. Status
// only moves forward; payment confirmation is the one multi-step jump.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	switch {
	case s == StatusPlaced && next == StatusAwaitingShipment:
		return true
	case s == StatusPlaced && next == StatusAwaitingReview:
		return true
	case s == StatusAwaitingShipment && next == StatusShipped:
		return true
	case s == StatusShipped && next == StatusAwaitingReview:
		return true
	case s == StatusAwaitingReview && next == StatusCompleted:
		return true
	}
	return false
}

// TransitPriceCents is the flat shipping fee applied to every order.
const TransitPriceCents int64 = 1000

// Order is the aggregate root written by checkout. Totals always equal the
// sum over its lines at commit time; the header is never durably visible
// with partial totals.
type Order struct {
	OrderID          string      `json:"orderId"`
	CustomerID       int64       `json:"-"`
	AddressID        int64       `json:"addressId"`
	PayMethod        PayMethod   `json:"payMethod"`
	TotalCount       int         `json:"totalCount"`
	TotalPriceCents  int64       `json:"totalPriceCents"`
	TransitCents     int64       `json:"transitPriceCents"`
	Status           OrderStatus `json:"status"`
	GatewayTradeNo   string      `json:"tradeNo,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
	Lines            []OrderLine `json:"lines,omitempty"`
}

// TotalPayCents is the amount charged to the customer: line total plus the
// flat shipping fee.
func (o Order) TotalPayCents() int64 {
	return o.TotalPriceCents + o.TransitCents
}

// OrderLine records one purchased item with the price captured at purchase
// time. The price is immutable once written; later catalog changes never
// touch it.
type OrderLine struct {
	ID         int64  `json:"id"`
	OrderID    string `json:"-"`
	ItemID     int64  `json:"itemId"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"priceCents"`
	Comment    string `json:"comment,omitempty"`
}

// AmountCents is the line subtotal (price at purchase x quantity), derived
// on demand rather than stored.
func (l OrderLine) AmountCents() int64 {
	return l.PriceCents * int64(l.Quantity)
}
