package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inventory-api/internal/config"
	"inventory-api/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	activeProductsKey = "inventory:products:active"
	generationKey     = "inventory:products:generation"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

type redisProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisProductCache stores the active feed as a single JSON document with a TTL
func NewRedisProductCache(client *redis.Client, ttl time.Duration) ProductCache {
	return &redisProductCache{client: client, ttl: ttl}
}

func (c *redisProductCache) GetActive(ctx context.Context) ([]*domain.Product, bool, error) {
	data, err := c.client.Get(ctx, activeProductsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read active products from cache: %w", err)
	}

	var products []*domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached products: %w", err)
	}

	return products, true, nil
}

func (c *redisProductCache) Generation(ctx context.Context) (int64, error) {
	generation, err := readGeneration(ctx, c.client)
	if err != nil {
		return 0, fmt.Errorf("failed to read product cache generation: %w", err)
	}
	return generation, nil
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, cmd stringGetter) (int64, error) {
	generation, err := cmd.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return generation, err
}

// SetActive stores products only while the generation still matches,
// watching the counter so an Invalidate racing the write aborts it.
func (c *redisProductCache) SetActive(ctx context.Context, generation int64, products []*domain.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to encode products for cache: %w", err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx)
		if err != nil {
			return err
		}
		if current != generation {
			return ErrStaleSnapshot
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, activeProductsKey, data, c.ttl)
			return nil
		})
		return err
	}, generationKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStaleSnapshot), errors.Is(err, redis.TxFailedErr):
		return ErrStaleSnapshot
	default:
		return fmt.Errorf("failed to write active products to cache: %w", err)
	}
}

func (c *redisProductCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, activeProductsKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate product cache: %w", err)
	}
	return nil
}
