package httpserver

import (
	"sort"

	"github.com/gin-gonic/gin"
)

type cartMutationRequest struct {
	ItemID int64 `json:"itemId"`
	Count  int   `json:"count"`
}

type cartLineView struct {
	ItemID      int64  `json:"itemId"`
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	PriceCents  int64  `json:"priceCents"`
	Stock       int    `json:"stock"`
	Quantity    int    `json:"quantity"`
	AmountCents int64  `json:"amountCents"`
}

// cartAddHandler merges the requested count into the cart entry. The stock
// check here is a courtesy for the front end; checkout re-validates under
// the ledger's concurrency control.
func cartAddHandler(carts CartStore, catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		cust, ok := customerID(c)
		if !ok {
			return
		}
		var req cartMutationRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ItemID == 0 || req.Count <= 0 {
			respondErr(c, resIncompleteData, "itemId and positive count required")
			return
		}

		item, err := catalog.GetByID(c.Request.Context(), req.ItemID)
		if err != nil {
			respondDomainErr(c, err)
			return
		}

		existing, err := carts.Snapshot(c.Request.Context(), cust, []int64{req.ItemID})
		if err != nil {
			respondDomainErr(c, err)
			return
		}
		count := req.Count + existing[req.ItemID]
		if count > item.Stock {
			respondErr(c, resInsufficientStock, "insufficient stock")
			return
		}

		if err := carts.Set(c.Request.Context(), cust, req.ItemID, count); err != nil {
			respondDomainErr(c, err)
			return
		}
		entries, err := carts.EntryCount(c.Request.Context(), cust)
		if err != nil {
			respondDomainErr(c, err)
			return
		}
		respondOK(c, gin.H{"entryCount": entries})
	}
}

// cartUpdateHandler overwrites the entry with the requested count.
func cartUpdateHandler(carts CartStore, catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		cust, ok := customerID(c)
		if !ok {
			return
		}
		var req cartMutationRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ItemID == 0 || req.Count <= 0 {
			respondErr(c, resIncompleteData, "itemId and positive count required")
			return
		}

		item, err := catalog.GetByID(c.Request.Context(), req.ItemID)
		if err != nil {
			respondDomainErr(c, err)
			return
		}
		if req.Count > item.Stock {
			respondErr(c, resInsufficientStock, "insufficient stock")
			return
		}

		if err := carts.Set(c.Request.Context(), cust, req.ItemID, req.Count); err != nil {
			respondDomainErr(c, err)
			return
		}
		respondTotalCount(c, carts, cust)
	}
}

func cartDeleteHandler(carts CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		cust, ok := customerID(c)
		if !ok {
			return
		}
		var req cartMutationRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ItemID == 0 {
			respondErr(c, resIncompleteData, "itemId required")
			return
		}

		if err := carts.Remove(c.Request.Context(), cust, req.ItemID); err != nil {
			respondDomainErr(c, err)
			return
		}
		respondTotalCount(c, carts, cust)
	}
}

func cartShowHandler(carts CartStore, catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		cust, ok := customerID(c)
		if !ok {
			return
		}

		quantities, err := carts.Quantities(c.Request.Context(), cust)
		if err != nil {
			respondDomainErr(c, err)
			return
		}

		ids := make([]int64, 0, len(quantities))
		for id := range quantities {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		items, err := catalog.ListByIDs(c.Request.Context(), ids)
		if err != nil {
			respondDomainErr(c, err)
			return
		}

		lines := make([]cartLineView, 0, len(items))
		totalCount := 0
		var totalPriceCents int64
		for _, item := range items {
			qty := quantities[item.ID]
			amount := item.PriceCents * int64(qty)
			lines = append(lines, cartLineView{
				ItemID:      item.ID,
				Name:        item.Name,
				Unit:        item.Unit,
				PriceCents:  item.PriceCents,
				Stock:       item.Stock,
				Quantity:    qty,
				AmountCents: amount,
			})
			totalCount += qty
			totalPriceCents += amount
		}

		respondOK(c, gin.H{
			"lines":           lines,
			"totalCount":      totalCount,
			"totalPriceCents": totalPriceCents,
		})
	}
}

func respondTotalCount(c *gin.Context, carts CartStore, cust int64) {
	quantities, err := carts.Quantities(c.Request.Context(), cust)
	if err != nil {
		respondDomainErr(c, err)
		return
	}
	total := 0
	for _, qty := range quantities {
		total += qty
	}
	respondOK(c, gin.H{"totalCount": total})
}
