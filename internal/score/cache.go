package score

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "leaderboard:v1:"

// Cache is a short-TTL Redis read-through cache for leaderboard responses.
// Staleness is bounded by the TTL rather than invalidated on writes; a
// submission may take up to the TTL to appear. Every failure degrades to a
// cache miss.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCache builds a leaderboard cache.
func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached entries for (game, window), if present.
func (c *Cache) Get(ctx context.Context, game string, w Window) ([]Entry, bool) {
	payload, err := c.client.Get(ctx, cacheKey(game, w)).Result()
	if err != nil {
		return nil, false
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(payload), &entries); err != nil {
		c.logger.Warn("discard corrupt leaderboard cache entry", "game", game, "window", string(w), "error", err)
		return nil, false
	}
	return entries, true
}

// Set stores entries for (game, window) with the configured TTL.
func (c *Cache) Set(ctx context.Context, game string, w Window, entries []Entry) {
	payload, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(game, w), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("store leaderboard cache entry", "game", game, "window", string(w), "error", err)
	}
}

func cacheKey(game string, w Window) string {
	return fmt.Sprintf("%s%s:%s", cacheKeyPrefix, game, w)
}
