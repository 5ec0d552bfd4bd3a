package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	goredis "github.com/redis/go-redis/v9"
)

// BalanceCache caches node balance reads per user for a short TTL, so the
// wallet screen does not hammer the node. Always invalidated after a
// transfer touches the wallet.
type BalanceCache struct {
	client *goredis.Client
	prefix string
}

func NewBalanceCache(client *goredis.Client) *BalanceCache {
	return &BalanceCache{
		client: client,
		prefix: "balance:",
	}
}

func (c *BalanceCache) key(userID string) string {
	return c.prefix + userID
}

// Get returns the cached balance and whether it was present.
func (c *BalanceCache) Get(ctx context.Context, userID string) (btcutil.Amount, bool, error) {
	val, err := c.client.Get(ctx, c.key(userID)).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis balance get: %w", err)
	}
	sats, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// Unreadable entry, treat as a miss and let it expire.
		return 0, false, nil
	}
	return btcutil.Amount(sats), true, nil
}

// Set stores the balance in satoshis.
func (c *BalanceCache) Set(ctx context.Context, userID string, amount btcutil.Amount, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(userID), int64(amount), ttl).Err(); err != nil {
		return fmt.Errorf("redis balance set: %w", err)
	}
	return nil
}

// Invalidate drops the cached balance.
func (c *BalanceCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis balance del: %w", err)
	}
	return nil
}
