package httpserver

import (
	"strconv"

	"freshmart/internal/domain"
	checkoutsvc "freshmart/internal/service/checkout"
	"github.com/gin-gonic/gin"
)

type placeOrderRequest struct {
	ItemIDs []int64 `json:"itemIds"`
}

type commitOrderRequest struct {
	AddressID int64   `json:"addressId"`
	PayMethod int16   `json:"payMethod"`
	ItemIDs   []int64 `json:"itemIds"`
}

type payOrderRequest struct {
	OrderID string `json:"orderId"`
}

type commentOrderRequest struct {
	// Comments is keyed by item id (as a string, matching the form field
	// names the review page submits).
	Comments map[string]string `json:"comments"`
}

type orderLineView struct {
	domain.OrderLine
	AmountCents int64 `json:"amountCents"`
}

type orderView struct {
	domain.Order
	Lines      []orderLineView `json:"lines"`
	StatusName string          `json:"statusName"`
}

func toOrderView(o domain.Order) orderView {
	lines := make([]orderLineView, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, orderLineView{OrderLine: l, AmountCents: l.AmountCents()})
	}
	o.Lines = nil
	return orderView{Order: o, Lines: lines, StatusName: o.Status.String()}
}

func placeOrderHandler(svc CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cust, ok := customerID(c)
		if !ok {
			return
		}
		var req placeOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil || len(req.ItemIDs) == 0 {
			respondErr(c, resIncompleteData, "itemIds required")
			return
		}

		draft, err := svc.PlaceOrderDraft(c.Request.Context(), cust, req.ItemIDs)
		if err != nil {
			respondDomainErr(c, err)
			return
		}
		respondOK(c, gin.H{"draft": draft})
	}
}

func commitOrderHandler(svc CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cust, ok := customerID(c)
		if !ok {
			return
		}
		var req commitOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.AddressID == 0 || req.PayMethod == 0 || len(req.ItemIDs) == 0 {
			respondErr(c, resIncompleteData, "addressId, payMethod and itemIds required")
			return
		}

		orderID, err := svc.Commit(c.Request.Context(), checkoutsvc.CommitInput{
			CustomerID: cust,
			AddressID:  req.AddressID,
			PayMethod:  domain.PayMethod(req.PayMethod),
			ItemIDs:    req.ItemIDs,
		})
		if err != nil {
			respondDomainErr(c, err)
			return
		}
		respondOK(c, gin.H{"orderId": orderID})
	}
}

func payOrderHandler(svc PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cust, ok := customerID(c)
		if !ok {
			return
		}
		var req payOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.OrderID == "" {
			respondErr(c, resIncompleteData, "orderId required")
			return
		}

		payURL, err := svc.Pay(c.Request.Context(), cust, req.OrderID)
		if err != nil {
			respondDomainErr(c, err)
			return
		}
		respondOK(c, gin.H{"payUrl": payURL})
	}
}

func checkPaymentHandler(svc PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cust, ok := customerID(c)
		if !ok {
			return
		}
		var req payOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.OrderID == "" {
			respondErr(c, resIncompleteData, "orderId required")
			return
		}

		outcome, err := svc.CheckPayment(c.Request.Context(), cust, req.OrderID)
		if err != nil {
			respondDomainErr(c, err)
			return
		}
		respondOK(c, gin.H{"status": string(outcome)})
	}
}

func listOrdersHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cust, ok := customerID(c)
		if !ok {
			return
		}

		orders, err := svc.ListByCustomer(c.Request.Context(), cust)
		if err != nil {
			respondDomainErr(c, err)
			return
		}
		views := make([]orderView, 0, len(orders))
		for _, o := range orders {
			views = append(views, toOrderView(o))
		}
		respondOK(c, gin.H{"orders": views})
	}
}

func commentOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cust, ok := customerID(c)
		if !ok {
			return
		}
		orderID := c.Param("order_id")
		var req commentOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, resIncompleteData, "comments required")
			return
		}

		comments := make(map[int64]string, len(req.Comments))
		for rawID, text := range req.Comments {
			itemID, err := strconv.ParseInt(rawID, 10, 64)
			if err != nil {
				respondErr(c, resIncompleteData, "invalid item id in comments")
				return
			}
			comments[itemID] = text
		}

		if err := svc.SubmitReview(c.Request.Context(), cust, orderID, comments); err != nil {
			respondDomainErr(c, err)
			return
		}
		respondOK(c, gin.H{"message": "review submitted"})
	}
}
