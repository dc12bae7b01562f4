package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/tienda-shop/tienda-shop/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// LabelRecomputer is the slice of the stock service the sweep needs.
type LabelRecomputer interface {
	RecomputeLabel(ctx context.Context, productID int64) error
}

// LabelRefreshJob sweeps every product and rewrites its derived label. This
// is the only writer besides the synchronous stock paths, and it goes
// through the same service entry point, so it cannot disagree with them.
type LabelRefreshJob struct {
	Stock   LabelRecomputer
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewLabelRefreshJob wires dependencies for the sweep handler.
func NewLabelRefreshJob(stock LabelRecomputer, pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *LabelRefreshJob {
	return &LabelRefreshJob{Stock: stock, Pool: pool, Logger: logger, Metrics: metrics}
}

// Handle processes label refresh tasks.
func (j *LabelRefreshJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Stock == nil || j.Pool == nil {
		return errors.New("label refresh: handler not configured")
	}
	var payload LabelRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskLabelRefresh)
	defer func() {
		err = tracker.End(err)
	}()

	rows, err := j.Pool.Query(ctx, `SELECT id FROM products ORDER BY id`)
	if err != nil {
		return err
	}
	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	refreshed := 0
	for _, id := range ids {
		if err := j.Stock.RecomputeLabel(ctx, id); err != nil {
			j.logger().Warn("label refresh skipped product", slog.Int64("product_id", id), slog.Any("error", err))
			continue
		}
		refreshed++
	}
	j.metrics().AddLabelRewrites(refreshed)
	j.logger().Info("label refresh finished", slog.Int("products", len(ids)), slog.Int("refreshed", refreshed))
	return nil
}

func (j *LabelRefreshJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *LabelRefreshJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
