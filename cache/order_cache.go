package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const keyPrefix = "order:details:"

// OrderCache is a read-through cache for order detail lookups. A nil
// *OrderCache is a valid no-op so redis stays optional.
type OrderCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewOrderCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *OrderCache {
	return &OrderCache{rdb: rdb, ttl: ttl, logger: logger}
}

// Get unmarshals the cached order details into dest, reporting whether the
// key was present. Cache errors degrade to a miss.
func (c *OrderCache) Get(ctx context.Context, orderID string, dest interface{}) bool {
	if c == nil {
		return false
	}
	data, err := c.rdb.Get(ctx, keyPrefix+orderID).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Order cache read failed", zap.String("order_id", orderID), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("Order cache payload corrupt", zap.String("order_id", orderID), zap.Error(err))
		return false
	}
	return true
}

func (c *OrderCache) Set(ctx context.Context, orderID string, value interface{}) {
	if c == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Order cache marshal failed", zap.String("order_id", orderID), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, keyPrefix+orderID, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Order cache write failed", zap.String("order_id", orderID), zap.Error(err))
	}
}

// Invalidate drops the cached details after any order mutation.
func (c *OrderCache) Invalidate(ctx context.Context, orderID string) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, keyPrefix+orderID).Err(); err != nil {
		c.logger.Warn("Order cache invalidation failed", zap.String("order_id", orderID), zap.Error(err))
	}
}
