package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pharmaterm/pos-core/internal/domain/pos"
	"github.com/pharmaterm/pos-core/internal/infrastructure/monitoring"
	"github.com/pharmaterm/pos-core/internal/pkg/logger"
)

// StockCache keeps recent product snapshots so the cart's advisory stock
// checks do not hit the ledger on every keystroke. Entries expire on their
// own and are invalidated after a committed sale; anything stale in between
// is acceptable, the ledger's decrement has the final word.
type StockCache struct {
	client *redis.Client
	log    *logger.Logger
}

func NewStockCache(conn *Connection, log *logger.Logger) *StockCache {
	return &StockCache{
		client: conn.GetClient(),
		log:    log,
	}
}

func (c *StockCache) GetProduct(ctx context.Context, productID string) (*pos.Product, bool, error) {
	result, err := c.client.Get(ctx, productKey(productID)).Result()
	if err != nil {
		if err == redis.Nil {
			monitoring.StockCacheMissesTotal.Inc()
			return nil, false, nil
		}
		return nil, false, err
	}

	var p pos.Product
	if err := json.Unmarshal([]byte(result), &p); err != nil {
		c.log.Warn("Dropping undecodable product snapshot", "product_id", productID, "error", err.Error())
		_ = c.client.Del(ctx, productKey(productID)).Err()
		monitoring.StockCacheMissesTotal.Inc()
		return nil, false, nil
	}

	monitoring.StockCacheHitsTotal.Inc()
	return &p, true, nil
}

func (c *StockCache) SetProduct(ctx context.Context, p *pos.Product, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, productKey(p.ID), data, ttl).Err()
}

func (c *StockCache) Invalidate(ctx context.Context, productID string) error {
	return c.client.Del(ctx, productKey(productID)).Err()
}

func productKey(productID string) string {
	return fmt.Sprintf("product:%s:snapshot", productID)
}
