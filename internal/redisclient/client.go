package redisclient

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/credit_stock.lua
var creditStockScript string

// Dedup keys outlive any reasonable outbox retry horizon.
const creditDedupTTL = 30 * 24 * time.Hour

type Client struct {
	rdb          *redis.Client
	creditScript *redis.Script
}

// NewClient creates a new Redis client with Lua scripts loaded
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:          rdb,
		creditScript: redis.NewScript(creditStockScript),
	}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// CreditStock atomically applies one stock credit to the mirror, deduplicated
// by the acceptance entry id. Returns true when the credit was applied, false
// when this entry id was already credited.
func (c *Client) CreditStock(ctx context.Context, entryID, productID, storeID int64, quantity int) (bool, error) {
	dedupKey := fmt.Sprintf("stockcredit:%d", entryID)
	stockKey := fmt.Sprintf("stock:%d:%d", storeID, productID)

	result, err := c.creditScript.Run(ctx, c.rdb,
		[]string{dedupKey, stockKey}, quantity, int(creditDedupTTL.Seconds())).Result()
	if err != nil {
		return false, fmt.Errorf("credit stock script failed: %w", err)
	}

	applied, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected script result type")
	}

	return applied == 1, nil
}

// RevertCredit undoes a mirrored credit whose durable write failed, so the
// next retry can reapply the whole credit.
func (c *Client) RevertCredit(ctx context.Context, entryID, productID, storeID int64, quantity int) error {
	dedupKey := fmt.Sprintf("stockcredit:%d", entryID)
	stockKey := fmt.Sprintf("stock:%d:%d", storeID, productID)

	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, dedupKey)
	pipe.HIncrBy(ctx, stockKey, "available", int64(-quantity))
	_, err := pipe.Exec(ctx)
	return err
}

// GetStock retrieves the mirrored available count for a product at a store.
func (c *Client) GetStock(ctx context.Context, productID, storeID int64) (int, error) {
	key := fmt.Sprintf("stock:%d:%d", storeID, productID)

	result, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return 0, err
	}

	if len(result) == 0 {
		return 0, fmt.Errorf("stock not mirrored for product %d at store %d", productID, storeID)
	}

	var available int
	fmt.Sscanf(result["available"], "%d", &available)
	return available, nil
}

// InitStock seeds the mirror for a product at a store.
func (c *Client) InitStock(ctx context.Context, productID, storeID int64, available int) error {
	key := fmt.Sprintf("stock:%d:%d", storeID, productID)
	return c.rdb.HSet(ctx, key, "available", available).Err()
}

// SetIdempotencyKey stores an idempotency key with TTL
func (c *Client) SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("idempotency:%s", key), value, ttl).Err()
}

// CheckIdempotencyKey checks if an idempotency key exists
func (c *Client) CheckIdempotencyKey(ctx context.Context, key string) (bool, error) {
	result, err := c.rdb.Exists(ctx, fmt.Sprintf("idempotency:%s", key)).Result()
	if err != nil {
		return false, err
	}
	return result > 0, nil
}
