package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	appcommerce "github.com/comercio/backend/internal/application/commerce"
	appinventory "github.com/comercio/backend/internal/application/inventory"
	"github.com/comercio/backend/internal/infrastructure/auth"
	"github.com/comercio/backend/internal/infrastructure/cache"
	"github.com/comercio/backend/internal/infrastructure/config"
	"github.com/comercio/backend/internal/infrastructure/logger"
	"github.com/comercio/backend/internal/infrastructure/persistence"
	"github.com/comercio/backend/internal/interfaces/http/handler"
	"github.com/comercio/backend/internal/interfaces/http/router"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync(log)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	productRepo := persistence.NewGormProductRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	purchaseRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	salesRepo := persistence.NewGormSalesOrderRepository(db.DB)
	settledRepo := persistence.NewGormSettledSaleRepository(db.DB)

	scope := persistence.NewGormTransactionScope(db.DB)
	reconciler := appinventory.NewStockReconciler(log)

	purchaseService := appcommerce.NewPurchaseOrderService(purchaseRepo, supplierRepo, productRepo, scope, reconciler, log)
	salesService := appcommerce.NewSalesOrderService(salesRepo, customerRepo, productRepo, scope, log)
	settledService := appcommerce.NewSettledSaleService(settledRepo, salesRepo, scope, reconciler, log)

	if cfg.Cache.Enabled {
		statsCache, err := cache.NewRedisStatisticsCache(&cfg.Redis, cfg.Cache.StatsTTL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer statsCache.Close()
		purchaseService.SetStatisticsCache(statsCache)
		salesService.SetStatisticsCache(statsCache)
		settledService.SetStatisticsCache(statsCache)
		log.Info("statistics cache enabled", zap.Duration("ttl", cfg.Cache.StatsTTL))
	}

	engine, err := router.New(router.Dependencies{
		Config:         cfg,
		Logger:         log,
		TokenVerifier:  auth.NewTokenVerifier(cfg.JWT),
		Database:       db,
		PurchaseOrders: handler.NewPurchaseOrderHandler(purchaseService),
		SalesOrders:    handler.NewSalesOrderHandler(salesService, settledService),
		SettledSales:   handler.NewSettledSaleHandler(settledService),
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
