package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a RedisCache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// DisableOnError stops using Redis after the first operation error.
	// Every later call behaves like a miss or a no-op.
	DisableOnError bool

	// Backoff governs retries of transient write failures.
	Backoff Backoff
}

// DefaultRedisConfig returns a config for a local Redis.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:           "localhost:6379",
		DisableOnError: true,
		Backoff:        DefaultBackoff(),
	}
}

// RedisCache is a Cache backed by Redis. If Redis is unreachable at
// startup, or fails later with DisableOnError set, the cache degrades to a
// null cache instead of failing callers.
type RedisCache struct {
	client *redis.Client
	logger *log.Logger
	config RedisConfig

	mu       sync.RWMutex
	disabled bool
}

// NewRedisCache connects to Redis and pings it.
// An unreachable server is logged and yields a disabled cache, not an error.
func NewRedisCache(ctx context.Context, cfg RedisConfig, logger *log.Logger) *RedisCache {
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.With("component", "cache")

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	return newRedisCache(ctx, client, cfg, logger)
}

func newRedisCache(ctx context.Context, client *redis.Client, cfg RedisConfig, logger *log.Logger) *RedisCache {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, running without cache", "addr", cfg.Addr, "error", err)
		_ = client.Close()
		return &RedisCache{logger: logger, config: cfg, disabled: true}
	}

	logger.Debug("redis cache ready", "addr", cfg.Addr, "db", cfg.DB)
	return &RedisCache{client: client, logger: logger, config: cfg}
}

// Available reports whether Redis is still in use.
func (c *RedisCache) Available() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled && c.client != nil
}

func (c *RedisCache) handleError(err error, op string) {
	if err == nil || errors.Is(err, redis.Nil) {
		return
	}
	c.logger.Debug("cache operation failed", "op", op, "error", err)
	if c.config.DisableOnError {
		c.mu.Lock()
		c.disabled = true
		c.mu.Unlock()
		c.logger.Warn("disabling redis cache after error", "op", op)
	}
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if !c.Available() {
		return nil, false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		c.handleError(err, "get")
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value in Redis. Transient failures are retried with backoff.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if !c.Available() {
		return nil
	}
	if ttl < 0 {
		ttl = 0
	}
	err := c.config.Backoff.Do(ctx, func() error {
		err := c.client.Set(ctx, key, data, ttl).Err()
		if retryableRedisErr(err) {
			return Transient(err)
		}
		return err
	})
	if err != nil {
		c.handleError(err, "set")
		return err
	}
	return nil
}

// Delete removes a key from Redis.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if !c.Available() {
		return nil
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.handleError(err, "delete")
		return err
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// retryableRedisErr reports whether err is worth retrying.
func retryableRedisErr(err error) bool {
	if err == nil {
		return false
	}
	var re redis.Error
	if errors.As(err, &re) {
		// LOADING and BUSY replies clear up on their own.
		return strings.HasPrefix(re.Error(), "LOADING") || strings.HasPrefix(re.Error(), "BUSY")
	}
	return errors.Is(err, context.DeadlineExceeded)
}

var _ Cache = (*RedisCache)(nil)
