package redis

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
)

// Health reports redis connectivity for the health endpoint.
type Health struct {
	client *goredis.Client
}

func NewHealth(client *goredis.Client) *Health {
	return &Health{client: client}
}

func (h *Health) Ping(ctx context.Context) error {
	return h.client.Ping(ctx).Err()
}

func (h *Health) Name() string { return "redis" }
