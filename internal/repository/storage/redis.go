package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// New - connects to redis and verifies the connection with a ping.
func New(ctx context.Context, opts *redis.Options) (*redis.Client, error) {
	conn := redis.NewClient(opts)

	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	return conn, nil
}
