package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/tienda-shop/tienda-shop/internal/app"
	"github.com/tienda-shop/tienda-shop/internal/cart"
	"github.com/tienda-shop/tienda-shop/internal/catalog"
	"github.com/tienda-shop/tienda-shop/internal/observability"
	"github.com/tienda-shop/tienda-shop/internal/orders"
	"github.com/tienda-shop/tienda-shop/internal/platform/cache"
	"github.com/tienda-shop/tienda-shop/internal/platform/db"
	"github.com/tienda-shop/tienda-shop/internal/products"
	"github.com/tienda-shop/tienda-shop/internal/stock"
	"github.com/tienda-shop/tienda-shop/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Warn("redis unavailable, product cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	catalogService := catalog.NewService(catalog.NewRepository(pool))
	catalogHandler := catalog.NewHandler(logger, catalogService)

	var summaryCache products.SummaryCache
	if redisClient != nil {
		summaryCache = products.NewCache(redisClient, cfg.CacheTTL, logger)
	}

	stockService := stock.NewService(stock.NewRepository(pool), summaryCache)
	stockHandler := stock.NewHandler(logger, stockService)

	productsService := products.NewService(products.NewRepository(pool), stockService, summaryCache)
	productsHandler := products.NewHandler(logger, productsService)
	catalogHandler.CategoryProducts = productsHandler.ByCategory
	catalogHandler.MaterialProducts = productsHandler.ByMaterial

	cartService := cart.NewService(cart.NewRepository(pool))
	cartHandler := cart.NewHandler(logger, cartService)

	ordersService := orders.NewService(orders.NewRepository(pool), cartService)
	ordersHandler := orders.NewHandler(logger, ordersService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Pool:            pool,
		Metrics:         metrics,
		CatalogHandler:  catalogHandler,
		ProductsHandler: productsHandler,
		StockHandler:    stockHandler,
		CartHandler:     cartHandler,
		OrdersHandler:   ordersHandler,
		JobHandler:      jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
