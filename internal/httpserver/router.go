package httpserver

import (
	"context"
	"log"
	"strconv"

	"freshmart/internal/domain"
	checkoutsvc "freshmart/internal/service/checkout"
	paymentsvc "freshmart/internal/service/payment"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CheckoutService places order drafts and commits checkouts.
type CheckoutService interface {
	PlaceOrderDraft(ctx context.Context, customerID int64, itemIDs []int64) (*checkoutsvc.Draft, error)
	Commit(ctx context.Context, in checkoutsvc.CommitInput) (string, error)
}

// PaymentService creates gateway trades and reconciles payment status.
type PaymentService interface {
	Pay(ctx context.Context, customerID int64, orderID string) (string, error)
	CheckPayment(ctx context.Context, customerID int64, orderID string) (paymentsvc.Outcome, error)
}

// OrderService serves order browsing and review submission.
type OrderService interface {
	Get(ctx context.Context, customerID int64, orderID string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error)
	SubmitReview(ctx context.Context, customerID int64, orderID string, comments map[int64]string) error
}

// CartStore is the redis-backed cart and browse history.
type CartStore interface {
	Snapshot(ctx context.Context, customerID int64, itemIDs []int64) (map[int64]int, error)
	Quantities(ctx context.Context, customerID int64) (map[int64]int, error)
	Set(ctx context.Context, customerID, itemID int64, quantity int) error
	Remove(ctx context.Context, customerID, itemID int64) error
	EntryCount(ctx context.Context, customerID int64) (int64, error)
	TouchHistory(ctx context.Context, customerID, itemID int64) error
	RecentHistory(ctx context.Context, customerID int64) ([]int64, error)
}

// Catalog is the unlocked stock item read path.
type Catalog interface {
	List(ctx context.Context) ([]domain.StockItem, error)
	GetByID(ctx context.Context, id int64) (*domain.StockItem, error)
	ListByIDs(ctx context.Context, ids []int64) ([]domain.StockItem, error)
}

// Deps bundles everything the router needs.
type Deps struct {
	CheckoutSvc CheckoutService
	PaymentSvc  PaymentService
	OrderSvc    OrderService
	Carts       CartStore
	Catalog     Catalog
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.Default())

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.GET("/items", listItemsHandler(deps.Catalog))
	router.GET("/items/:id", itemDetailHandler(deps.Catalog, deps.Carts))
	router.GET("/history", historyHandler(deps.Carts, deps.Catalog))

	router.GET("/cart", cartShowHandler(deps.Carts, deps.Catalog))
	router.POST("/cart/add", cartAddHandler(deps.Carts, deps.Catalog))
	router.POST("/cart/update", cartUpdateHandler(deps.Carts, deps.Catalog))
	router.POST("/cart/delete", cartDeleteHandler(deps.Carts))

	router.GET("/orders", listOrdersHandler(deps.OrderSvc))
	router.POST("/orders/place", placeOrderHandler(deps.CheckoutSvc))
	router.POST("/orders/commit", commitOrderHandler(deps.CheckoutSvc))
	router.POST("/orders/pay", payOrderHandler(deps.PaymentSvc))
	router.POST("/orders/check", checkPaymentHandler(deps.PaymentSvc))
	router.POST("/orders/:order_id/comment", commentOrderHandler(deps.OrderSvc))

	return router
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
