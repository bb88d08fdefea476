package redisx

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// CartCache keeps the serialized cart line set in the shared fixed slot.
// Implements cart.Cache.
type CartCache struct{ R *redis.Client }

func (c *CartCache) Get(ctx context.Context) ([]byte, error) {
	b, err := c.R.Get(ctx, KeyCartCache).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}

func (c *CartCache) Set(ctx context.Context, b []byte) error {
	return c.R.Set(ctx, KeyCartCache, b, 0).Err()
}

func (c *CartCache) Remove(ctx context.Context) error {
	return c.R.Del(ctx, KeyCartCache).Err()
}
