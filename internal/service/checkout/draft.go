package checkout

import (
	"context"

	"freshmart/internal/domain"
)

// DraftLine pairs a catalog item with the cart quantity and the derived
// subtotal. The derived values live here, never stashed on the stock item
// itself.
type DraftLine struct {
	Item        domain.StockItem `json:"item"`
	Quantity    int              `json:"quantity"`
	AmountCents int64            `json:"amountCents"`
}

// Draft is the order confirmation view: priced lines, totals, shipping fee,
// and the customer's addresses to choose from. Nothing is reserved or
// written; prices and quantities are re-validated at commit.
type Draft struct {
	Lines             []DraftLine      `json:"lines"`
	TotalCount        int              `json:"totalCount"`
	TotalPriceCents   int64            `json:"totalPriceCents"`
	TransitPriceCents int64            `json:"transitPriceCents"`
	TotalPayCents     int64            `json:"totalPayCents"`
	Addresses         []domain.Address `json:"addresses"`
}

// PlaceOrderDraft builds the confirmation page data for the selected items.
func (s *Service) PlaceOrderDraft(ctx context.Context, customerID int64, itemIDs []int64) (*Draft, error) {
	if len(itemIDs) == 0 {
		return nil, domain.ErrEmptyCart
	}

	quantities, err := s.carts.Snapshot(ctx, customerID, itemIDs)
	if err != nil {
		return nil, err
	}
	for _, itemID := range itemIDs {
		if quantities[itemID] <= 0 {
			return nil, domain.ErrEmptyCart
		}
	}

	items, err := s.stock.ListByIDs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}

	draft := &Draft{TransitPriceCents: domain.TransitPriceCents}
	for _, item := range items {
		quantity := quantities[item.ID]
		amount := item.PriceCents * int64(quantity)
		draft.Lines = append(draft.Lines, DraftLine{
			Item:        item,
			Quantity:    quantity,
			AmountCents: amount,
		})
		draft.TotalCount += quantity
		draft.TotalPriceCents += amount
	}
	draft.TotalPayCents = draft.TotalPriceCents + draft.TransitPriceCents

	addrs, err := s.addresses.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	draft.Addresses = addrs

	return draft, nil
}
