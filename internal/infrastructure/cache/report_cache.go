package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultKeyPrefix = "ledger"
	defaultTTL       = 5 * time.Minute
)

// ReportCache stores computed reports under versioned keys
// (<prefix>:v<n>:<name>). Bumping the version orphans every entry written
// under the previous one; orphans expire through their TTL.
type ReportCache struct {
	client     *redis.Client
	ownsClient bool
	prefix     string
	ttl        time.Duration
	logger     *zap.Logger
}

// ReportCacheOption is a functional option for configuring the cache
type ReportCacheOption func(*ReportCache)

// WithTTL sets how long an entry lives. Zero keeps the default.
func WithTTL(ttl time.Duration) ReportCacheOption {
	return func(c *ReportCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithKeyPrefix sets the key namespace
func WithKeyPrefix(prefix string) ReportCacheOption {
	return func(c *ReportCache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithLogger sets the logger for the cache
func WithLogger(logger *zap.Logger) ReportCacheOption {
	return func(c *ReportCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewReportCache creates a cache on an existing client.
// The caller retains ownership of the client.
func NewReportCache(client *redis.Client, opts ...ReportCacheOption) *ReportCache {
	c := &ReportCache{
		client: client,
		prefix: defaultKeyPrefix,
		ttl:    defaultTTL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ReportCache) versionKey() string {
	return c.prefix + ":version"
}

func (c *ReportCache) entryKey(version int64, name string) string {
	return fmt.Sprintf("%s:v%d:%s", c.prefix, version, name)
}

// Version returns the current generation, 0 before the first bump
func (c *ReportCache) Version(ctx context.Context) (int64, error) {
	raw, err := c.client.Get(ctx, c.versionKey()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cache version: %w", err)
	}
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt cache version %q: %w", raw, err)
	}
	return version, nil
}

// Bump starts a new generation and returns it
func (c *ReportCache) Bump(ctx context.Context) (int64, error) {
	version, err := c.client.Incr(ctx, c.versionKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to bump cache version: %w", err)
	}
	c.logger.Debug("Report cache invalidated", zap.Int64("version", version))
	return version, nil
}

// Get decodes the entry name of the current generation into dest.
// It reports false on a miss.
func (c *ReportCache) Get(ctx context.Context, name string, dest any) (bool, error) {
	version, err := c.Version(ctx)
	if err != nil {
		return false, err
	}
	key := c.entryKey(version, name)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("Report cache miss", zap.String("key", key))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get report from cache: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		_ = c.client.Del(ctx, key)
		return false, fmt.Errorf("failed to unmarshal cached report: %w", err)
	}
	c.logger.Debug("Report cache hit", zap.String("key", key))
	return true, nil
}

// Set stores value as the entry name of the current generation
func (c *ReportCache) Set(ctx context.Context, name string, value any) error {
	version, err := c.Version(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := c.client.Set(ctx, c.entryKey(version, name), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set report in cache: %w", err)
	}
	return nil
}

// Ping checks the connection
func (c *ReportCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the client when the cache created it
func (c *ReportCache) Close() error {
	if !c.ownsClient {
		return nil
	}
	return c.client.Close()
}
