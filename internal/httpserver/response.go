package httpserver

import (
	"errors"
	"net/http"

	"freshmart/internal/domain"
	ordersvc "freshmart/internal/service/order"
	"github.com/gin-gonic/gin"
)

// Result codes carried in the JSON body. The storefront front end switches
// on these rather than on HTTP status, so every outcome maps to a distinct
// code.
const (
	resNotAuthenticated     = 0
	resIncompleteData       = 1
	resInvalidPayMethod     = 2
	resItemNotFound         = 3
	resFailed               = 4
	resOK                   = 5
	resInsufficientStock    = 6
	resAddressNotFound      = 7
	resConcurrencyExhausted = 8
)

func respondOK(c *gin.Context, extra gin.H) {
	body := gin.H{"res": resOK}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func respondErr(c *gin.Context, res int, errmsg string) {
	c.JSON(http.StatusOK, gin.H{"res": res, "errmsg": errmsg})
}

// respondDomainErr maps the service error taxonomy onto result codes. The
// customer's cart is untouched on every failure path, so the front end can
// safely offer a retry.
func respondDomainErr(c *gin.Context, err error) {
	var stockErr *domain.StockError
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		respondErr(c, resIncompleteData, "cart selection is empty")
	case errors.Is(err, domain.ErrInvalidPayMethod):
		respondErr(c, resInvalidPayMethod, "unknown payment method")
	case errors.Is(err, domain.ErrAddressNotFound):
		respondErr(c, resAddressNotFound, "address not found")
	case errors.As(err, &stockErr) && errors.Is(err, domain.ErrNotFound):
		respondErr(c, resItemNotFound, "item not found")
	case errors.Is(err, domain.ErrInsufficientStock):
		respondErr(c, resInsufficientStock, "insufficient stock")
	case errors.Is(err, domain.ErrConcurrencyExhausted):
		respondErr(c, resConcurrencyExhausted, "item too contended, please retry")
	case errors.Is(err, domain.ErrNotFound):
		respondErr(c, resItemNotFound, "not found")
	case errors.Is(err, domain.ErrOrderNotPayable):
		respondErr(c, resFailed, "order not payable")
	case errors.Is(err, ordersvc.ErrNotReviewable):
		respondErr(c, resFailed, "order not awaiting review")
	case errors.Is(err, domain.ErrGateway):
		respondErr(c, resFailed, "payment gateway error")
	default:
		respondErr(c, resFailed, "request failed")
	}
}

// customerID reads the customer identity injected by the auth layer in
// front of this service. Requests without it are treated as unauthenticated.
func customerID(c *gin.Context) (int64, bool) {
	const header = "X-Customer-ID"
	raw := c.GetHeader(header)
	if raw == "" {
		respondErr(c, resNotAuthenticated, "not authenticated")
		return 0, false
	}
	id, err := parseID(raw)
	if err != nil {
		respondErr(c, resNotAuthenticated, "not authenticated")
		return 0, false
	}
	return id, true
}
