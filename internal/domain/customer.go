package domain

import "time"

type Customer struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Address is a customer-owned shipping address. Checkout only accepts
// addresses owned by the requesting customer.
type Address struct {
	ID         int64  `json:"id"`
	CustomerID int64  `json:"-"`
	Receiver   string `json:"receiver"`
	Addr       string `json:"addr"`
	ZipCode    string `json:"zipCode"`
	Phone      string `json:"phone"`
	IsDefault  bool   `json:"isDefault"`
}
