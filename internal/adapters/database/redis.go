package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"polls-service/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient parses cfg.URI and checks the connection. It returns nil
// without error when no URI is configured.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.URI == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.MaxRetries = cfg.MaxRetries
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Redis connection established successfully", "addr", opts.Addr)
	return rdb, nil
}
