package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	cartrepo "storefront/internal/repository/cart"
	discountrepo "storefront/internal/repository/discount"
	productrepo "storefront/internal/repository/product"
	storerepo "storefront/internal/repository/store"
	userrepo "storefront/internal/repository/user"
	"storefront/internal/search"
	cartsvc "storefront/internal/service/cart"
	discountsvc "storefront/internal/service/discount"
	productsvc "storefront/internal/service/product"
	"storefront/internal/service/shipping"
	storesvc "storefront/internal/service/store"
	usersvc "storefront/internal/service/user"
	"storefront/internal/session"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	rdb, err := db.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("connect to redis: %v", err)
	}
	defer rdb.Close()

	index, err := search.New(logger)
	if err != nil {
		logger.Fatalf("init search index: %v", err)
	}
	defer index.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	storeRepo := storerepo.NewPostgres(dbpool)
	cartRepo := cartrepo.NewPostgres(dbpool)
	discountRepo := discountrepo.NewPostgres(dbpool)
	userRepo := userrepo.NewPostgres(dbpool, logger)

	productService := productsvc.New(productRepo, storeRepo, index, cfg.ProductsPerPage, logger)
	storeService := storesvc.New(storeRepo, index, logger)
	if err := productService.Reindex(ctx); err != nil {
		logger.Fatalf("index products: %v", err)
	}
	if err := storeService.Reindex(ctx); err != nil {
		logger.Fatalf("index stores: %v", err)
	}

	cartService := cartsvc.New(cartRepo, productRepo, storeRepo, discountRepo,
		shipping.New(cfg.Shipping, cfg.PaymentGateway),
		cartsvc.Options{
			TrackStock:       cfg.TrackStock,
			MaxQuantity:      cfg.MaxQuantity,
			DiscountsEnabled: cfg.DiscountsEnabled,
		}, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Sessions:       session.NewRedisStore(rdb, cfg.SessionTTL, logger),
		Redis:          rdb,
		Carts:          cartService,
		Products:       productService,
		Stores:         storeService,
		Discounts:      discountsvc.New(discountRepo, logger),
		Users:          usersvc.New(userRepo, logger),
		SessionCookie:  cfg.SessionCookie,
		CookieSecure:   cfg.CookieSecure,
		SessionMaxAge:  int(cfg.SessionTTL.Seconds()),
		CORSOrigins:    cfg.CORSOrigins,
		CurrencySymbol: cfg.CurrencySymbol,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

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
