package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"freshmart/internal/cartstore"
	"freshmart/internal/config"
	"freshmart/internal/db"
	"freshmart/internal/gateway"
	"freshmart/internal/httpserver"
	addressrepo "freshmart/internal/repository/address"
	orderrepo "freshmart/internal/repository/order"
	stockrepo "freshmart/internal/repository/stock"
	"freshmart/internal/repository/txscope"
	checkoutsvc "freshmart/internal/service/checkout"
	ordersvc "freshmart/internal/service/order"
	paymentsvc "freshmart/internal/service/payment"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	redisClient, err := db.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("connect to redis: %v", err)
	}
	defer redisClient.Close()

	carts := cartstore.New(redisClient, logger)
	catalogRepo := stockrepo.New(dbpool, stockrepo.Mode(cfg.StockMode), logger)
	addressRepo := addressrepo.New(dbpool)
	orderRepo := orderrepo.New(dbpool, logger)
	scope := txscope.New(dbpool, stockrepo.Mode(cfg.StockMode), logger)
	gatewayClient := gateway.New(cfg.GatewayBaseURL, cfg.GatewayTimeout, logger)

	checkoutService := checkoutsvc.New(scope, carts, addressRepo, catalogRepo, logger)
	paymentService := paymentsvc.New(gatewayClient, orderRepo, cfg.PaymentPollAttempts, cfg.PaymentPollDelay, logger)
	orderService := ordersvc.New(orderRepo, logger)

	logger.Printf("stock ledger mode: %s", cfg.StockMode)

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CheckoutSvc: checkoutService,
		PaymentSvc:  paymentService,
		OrderSvc:    orderService,
		Carts:       carts,
		Catalog:     catalogRepo,
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
