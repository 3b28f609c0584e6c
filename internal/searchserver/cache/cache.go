// Package cache memoizes query_engine.Search results in Redis, keyed by
// the raw query string, offset and limit, with in-flight deduplication
// via singleflight so a burst of identical queries only evaluates once.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/corpuslex/corpuslex/internal/queryengine"
	"github.com/corpuslex/corpuslex/pkg/config"
	pkgredis "github.com/corpuslex/corpuslex/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "search:"

// cachedPage mirrors queryengine.Page for JSON round-tripping; DocIDs
// round-trips fine as-is but is kept as its own type so the cache
// format is independent of the engine's in-memory representation.
type cachedPage struct {
	Total  int      `json:"total"`
	DocIDs []uint32 `json:"doc_ids"`
}

// QueryCache is a Redis-backed cache in front of Engine.Search.
type QueryCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
}

// New wraps client for caching with the TTL configured in cfg.
func New(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
}

// Get returns a cached page for (query, offset, limit), if present.
func (c *QueryCache) Get(ctx context.Context, query string, offset, limit int) (queryengine.Page, bool) {
	key := c.buildKey(query, offset, limit)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		return queryengine.Page{}, false
	}
	var cp cachedPage
	if err := json.Unmarshal([]byte(data), &cp); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return queryengine.Page{}, false
	}
	return queryengine.Page{Total: cp.Total, DocIDs: cp.DocIDs}, true
}

// Set stores page for (query, offset, limit) under the configured TTL.
func (c *QueryCache) Set(ctx context.Context, query string, offset, limit int, page queryengine.Page) {
	key := c.buildKey(query, offset, limit)
	data, err := json.Marshal(cachedPage{Total: page.Total, DocIDs: page.DocIDs})
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached page if present, otherwise computes
// it with computeFn (deduplicating concurrent identical requests) and
// populates the cache. The bool result reports whether the value came
// from cache.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	query string,
	offset, limit int,
	computeFn func() (queryengine.Page, error),
) (queryengine.Page, bool, error) {
	if page, ok := c.Get(ctx, query, offset, limit); ok {
		return page, true, nil
	}
	key := c.buildKey(query, offset, limit)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if page, ok := c.Get(ctx, query, offset, limit); ok {
			return page, nil
		}
		page, err := computeFn()
		if err != nil {
			return queryengine.Page{}, err
		}
		c.Set(ctx, query, offset, limit, page)
		return page, nil
	})
	if err != nil {
		return queryengine.Page{}, false, err
	}
	return val.(queryengine.Page), false, nil
}

// Invalidate deletes every cached entry, called after a hot reload
// swaps in a newly built index.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating query cache: %w", err)
	}
	c.logger.Info("query cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) buildKey(query string, offset, limit int) string {
	raw := fmt.Sprintf("%s|offset=%d|limit=%d", query, offset, limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
