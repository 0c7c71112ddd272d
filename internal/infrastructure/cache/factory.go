package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopledger/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// OpenReportCache returns a report cache when Redis is enabled and reachable.
// Any failure yields nil so reports are computed directly.
func OpenReportCache(cfg config.RedisConfig, logger *zap.Logger) *ReportCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Info("Report cache disabled")
		return nil
	}

	client, err := NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, reports will not be cached",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		return nil
	}

	logger.Info("Using Redis report cache", zap.String("addr", cfg.Addr()))
	c := NewReportCache(client, WithTTL(cfg.ReportTTL), WithLogger(logger))
	c.ownsClient = true
	return c
}
