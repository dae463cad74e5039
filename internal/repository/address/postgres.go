package address

import (
	"context"
	"errors"

	"freshmart/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo reads customer shipping addresses. Addresses are created and managed
// by the account surface, which is outside this service.
type Repo struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// GetOwned fetches an address only if it belongs to the customer; an address
// owned by anyone else reports domain.ErrAddressNotFound.
func (r *Repo) GetOwned(ctx context.Context, customerID, addressID int64) (*domain.Address, error) {
	const q = `
SELECT id, customer_id, receiver, addr, zip_code, phone, is_default
FROM addresses
WHERE id = $1 AND customer_id = $2
`
	var a domain.Address
	err := r.pool.QueryRow(ctx, q, addressID, customerID).Scan(&a.ID, &a.CustomerID, &a.Receiver, &a.Addr, &a.ZipCode, &a.Phone, &a.IsDefault)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAddressNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListByCustomer returns the customer's addresses, default first.
func (r *Repo) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Address, error) {
	const q = `
SELECT id, customer_id, receiver, addr, zip_code, phone, is_default
FROM addresses
WHERE customer_id = $1
ORDER BY is_default DESC, id ASC
`
	rows, err := r.pool.Query(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Address
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.Receiver, &a.Addr, &a.ZipCode, &a.Phone, &a.IsDefault); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
