package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLabelRefresh recomputes derived product labels. Labels age out of
	// the new-arrival window without any write happening, so a nightly sweep
	// keeps the stored etiqueta honest.
	TaskLabelRefresh = "catalog:label_refresh"
	// TaskCacheWarmup pre-populates the product listing cache.
	TaskCacheWarmup = "catalog:cache_warmup"
)

// LabelRefreshPayload carries scheduling metadata.
type LabelRefreshPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewLabelRefreshTask constructs an Asynq task for the label sweep.
func NewLabelRefreshTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(LabelRefreshPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLabelRefresh, body, asynq.Queue(QueueDefault)), nil
}

// CacheWarmupPayload names the listings to warm.
type CacheWarmupPayload struct {
	Pages int `json:"pages"`
}

// NewCacheWarmupTask constructs an Asynq task for the cache warmup.
func NewCacheWarmupTask(pages int) (*asynq.Task, error) {
	if pages <= 0 {
		pages = 1
	}
	body, err := json.Marshal(CacheWarmupPayload{Pages: pages})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCacheWarmup, body, asynq.Queue(QueueDefault)), nil
}
