package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/imagine/internal/domain"
	"github.com/phrazzld/imagine/internal/platform/logger"
	"github.com/phrazzld/imagine/internal/store"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "imagine:generated:"

// Options configure the Redis connection.
type Options struct {
	Addr     string
	Password string
}

// NewRedisClient creates a Redis client and verifies the connection.
func NewRedisClient(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// CachedReader decorates a store.GeneratedImageReader, caching lookups by id.
// Navigation queries (First, Next, Previous) always hit the store because
// their answer changes as new images are generated. Cache failures are
// logged and the store is used instead.
type CachedReader struct {
	next   store.GeneratedImageReader
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

var _ store.GeneratedImageReader = (*CachedReader)(nil)

// NewCachedReader wraps next with a Redis cache.
// If logger is nil, a default logger will be used.
func NewCachedReader(next store.GeneratedImageReader, client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *CachedReader {
	if next == nil || client == nil {
		panic("reader and client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CachedReader{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "generated_cache")),
	}
}

// First implements store.GeneratedImageReader.First.
func (c *CachedReader) First(ctx context.Context) (*domain.ImagePair, error) {
	return c.next.First(ctx)
}

// Next implements store.GeneratedImageReader.Next.
func (c *CachedReader) Next(ctx context.Context, id int64) (*domain.ImagePair, error) {
	return c.next.Next(ctx, id)
}

// Previous implements store.GeneratedImageReader.Previous.
func (c *CachedReader) Previous(ctx context.Context, id int64) (*domain.ImagePair, error) {
	return c.next.Previous(ctx, id)
}

// GetByID implements store.GeneratedImageReader.GetByID.
func (c *CachedReader) GetByID(ctx context.Context, id int64) (*domain.ImagePair, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)
	key := cacheKey(id)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var pair domain.ImagePair
		if jsonErr := json.Unmarshal(data, &pair); jsonErr == nil {
			return &pair, nil
		}
		log.Warn("discarding unreadable cache entry", slog.String("key", key))
	case !errors.Is(err, redis.Nil):
		log.Warn("cache read failed, using store",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}

	pair, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(pair); err == nil {
		if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			log.Warn("cache write failed",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}
	return pair, nil
}

func cacheKey(id int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, id)
}
