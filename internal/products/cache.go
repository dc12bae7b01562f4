package products

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "tienda:"

// Cache is a Redis-backed SummaryCache. Entries expire after the configured
// TTL and every product write drops the whole keyspace, so readers never see
// a summary older than the last write.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, logger: logger}
}

type cachedList struct {
	Summaries []ProductSummary `json:"summaries"`
	Total     int              `json:"total"`
}

func (c *Cache) Get(ctx context.Context, key string) ([]ProductSummary, int, bool) {
	payload, err := c.client.Get(ctx, cachePrefix+key).Bytes()
	if err != nil {
		return nil, 0, false
	}
	var entry cachedList
	if err := json.Unmarshal(payload, &entry); err != nil {
		c.logger.Warn("drop corrupt cache entry", "key", key, "error", err)
		c.client.Del(ctx, cachePrefix+key)
		return nil, 0, false
	}
	return entry.Summaries, entry.Total, true
}

func (c *Cache) Set(ctx context.Context, key string, summaries []ProductSummary, total int) {
	payload, err := json.Marshal(cachedList{Summaries: summaries, Total: total})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cachePrefix+key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// Invalidate drops every cached listing.
func (c *Cache) Invalidate(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, cachePrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		c.client.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("cache invalidation scan failed", "error", err)
	}
}
