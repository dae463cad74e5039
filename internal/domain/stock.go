package domain

import "time"

// StockItem is a purchasable catalog entry's stock and price record. The
// stock counter is the only resource contended across checkouts; it is
// mutated exclusively inside the checkout transaction.
type StockItem struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Unit       string    `json:"unit"`
	PriceCents int64     `json:"priceCents"`
	Stock      int       `json:"stock"`
	Sales      int       `json:"sales"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Reservation is the result of an atomic stock decrement: the quantity taken
// and the unit price read in the same statement, to be copied onto the order
// line. The stored item is never handed back for mutation.
type Reservation struct {
	ItemID     int64
	Quantity   int
	PriceCents int64
}

// AmountCents is the line subtotal for the reserved quantity.
func (r Reservation) AmountCents() int64 {
	return r.PriceCents * int64(r.Quantity)
}
