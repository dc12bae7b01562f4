package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/tienda-shop/tienda-shop/internal/app"
	jobmetrics "github.com/tienda-shop/tienda-shop/internal/jobs"
	"github.com/tienda-shop/tienda-shop/internal/platform/cache"
	"github.com/tienda-shop/tienda-shop/internal/platform/db"
	"github.com/tienda-shop/tienda-shop/internal/products"
	"github.com/tienda-shop/tienda-shop/internal/stock"
	"github.com/tienda-shop/tienda-shop/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := jobmetrics.NewMetrics(nil)

	summaryCache := products.NewCache(redisClient, cfg.CacheTTL, logger)
	stockService := stock.NewService(stock.NewRepository(pool), summaryCache)
	productsService := products.NewService(products.NewRepository(pool), stockService, summaryCache)

	labelJob := jobs.NewLabelRefreshJob(stockService, pool, logger, metrics)
	warmupJob := jobs.NewCacheWarmupJob(productsService, logger, metrics)

	labelTask, err := jobs.NewLabelRefreshTask(time.Now().UTC())
	if err != nil {
		logger.Error("build label refresh task", slog.Any("error", err))
		os.Exit(1)
	}
	warmupTask, err := jobs.NewCacheWarmupTask(3)
	if err != nil {
		logger.Error("build cache warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLabelRefresh, Handler: labelJob.Handle},
			{Type: jobs.TaskCacheWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.LabelRefreshCron, Task: labelTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: cfg.CacheWarmupCron, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(1)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
