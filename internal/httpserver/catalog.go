package httpserver

import (
	"github.com/gin-gonic/gin"
)

func listItemsHandler(catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := catalog.List(c.Request.Context())
		if err != nil {
			respondDomainErr(c, err)
			return
		}
		respondOK(c, gin.H{"items": items})
	}
}

func itemDetailHandler(catalog Catalog, carts CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c.Param("id"))
		if err != nil {
			respondErr(c, resIncompleteData, "invalid item id")
			return
		}

		item, err := catalog.GetByID(c.Request.Context(), id)
		if err != nil {
			respondDomainErr(c, err)
			return
		}

		// Browse history is recorded only for identified customers and is
		// never worth failing the page for.
		if raw := c.GetHeader("X-Customer-ID"); raw != "" {
			if cust, err := parseID(raw); err == nil {
				_ = carts.TouchHistory(c.Request.Context(), cust, id)
			}
		}

		respondOK(c, gin.H{"item": item})
	}
}

func historyHandler(carts CartStore, catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		cust, ok := customerID(c)
		if !ok {
			return
		}

		ids, err := carts.RecentHistory(c.Request.Context(), cust)
		if err != nil {
			respondDomainErr(c, err)
			return
		}
		items, err := catalog.ListByIDs(c.Request.Context(), ids)
		if err != nil {
			respondDomainErr(c, err)
			return
		}
		respondOK(c, gin.H{"items": items})
	}
}
