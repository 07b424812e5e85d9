// Package cache provides an optional redis read-through cache for the park
// catalog. The catalog is small and read-mostly, so one key holding the whole
// list with a TTL is enough.
package cache

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"pawpark.app/internal/obs"
	"pawpark.app/internal/social"
)

const (
	parksKey   = "pawpark:parks"
	defaultTTL = 5 * time.Minute
)

// ParkCache caches the park catalog in redis. Cache errors degrade to misses;
// the store stays the source of truth.
type ParkCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

var _ social.ParkCache = (*ParkCache)(nil)

// NewParkCache connects to redis at addr and verifies the connection.
func NewParkCache(addr string, ttl time.Duration) (*ParkCache, error) {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &ParkCache{rdb: rdb, ttl: ttl}, nil
}

func (c *ParkCache) GetParks(ctx context.Context) ([]social.Park, bool) {
	raw, err := c.rdb.Get(ctx, parksKey).Bytes()
	if err != nil {
		return nil, false
	}
	var parks []social.Park
	if err := json.Unmarshal(raw, &parks); err != nil {
		// A payload we cannot decode is useless; drop it.
		_ = c.rdb.Del(ctx, parksKey).Err()
		return nil, false
	}
	return parks, true
}

func (c *ParkCache) SetParks(ctx context.Context, parks []social.Park) {
	raw, err := json.Marshal(parks)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, parksKey, raw, c.ttl).Err(); err != nil {
		obs.Log(map[string]any{
			"level": "warn",
			"msg":   "park cache write failed",
			"error": err.Error(),
		})
	}
}

func (c *ParkCache) Close() error { return c.rdb.Close() }
