package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/tienda-shop/tienda-shop/internal/jobs"
	"github.com/tienda-shop/tienda-shop/internal/products"
	"github.com/tienda-shop/tienda-shop/internal/shared"
)

// SummaryLister is the slice of the products service the warmup needs.
type SummaryLister interface {
	List(ctx context.Context, filters products.Filters) ([]products.ProductSummary, int, error)
}

// CacheWarmupJob walks the popular listings so the first shopper after an
// invalidation does not pay the fan-out cost.
type CacheWarmupJob struct {
	Products SummaryLister
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewCacheWarmupJob wires dependencies for the warmup handler.
func NewCacheWarmupJob(lister SummaryLister, logger *slog.Logger, metrics *jobmetrics.Metrics) *CacheWarmupJob {
	return &CacheWarmupJob{Products: lister, Logger: logger, Metrics: metrics}
}

// Handle processes cache warmup tasks.
func (j *CacheWarmupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Products == nil {
		return errors.New("cache warmup: handler not configured")
	}
	var payload CacheWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Pages <= 0 {
		payload.Pages = 1
	}

	tracker := j.metrics().Track(TaskCacheWarmup)
	defer func() {
		err = tracker.End(err)
	}()

	warmed := 0
	for page := 1; page <= payload.Pages; page++ {
		for _, filters := range []products.Filters{
			{Page: page, PerPage: shared.DefaultPerPage},
			{OnSale: true, Page: page, PerPage: shared.DefaultPerPage},
			{NewArrivals: true, Page: page, PerPage: shared.DefaultPerPage},
		} {
			if _, _, err := j.Products.List(ctx, filters); err != nil {
				j.logger().Warn("cache warmup listing failed", slog.Int("page", page), slog.Any("error", err))
				continue
			}
			warmed++
		}
	}
	j.logger().Info("cache warmup finished", slog.Int("listings", warmed))
	return nil
}

func (j *CacheWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *CacheWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
