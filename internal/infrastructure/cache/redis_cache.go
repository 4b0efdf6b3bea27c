// Package cache caché de resultados de análisis en Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sony/gobreaker"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tirs/quota/internal/application/ports"
	"github.com/tirs/quota/pkg/config"
	"github.com/tirs/quota/pkg/logger"
)

var _ ports.InsightsCache = (*RedisCache)(nil)

// store subconjunto de *redis.Client que usa la caché.
type store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// BreakerSettings parámetros del circuit breaker que protege las llamadas a Redis.
type BreakerSettings struct {
	FailureThreshold uint32        // fallos consecutivos que abren el circuito
	OpenTimeout      time.Duration // tiempo abierto antes de pasar a half-open
	HalfOpenRequests uint32
}

// DefaultBreakerSettings valores usados por NewRedisCache.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{FailureThreshold: 5, OpenTimeout: 30 * time.Second, HalfOpenRequests: 1}
}

// RedisCache implementa ports.InsightsCache con valores codificados en msgpack.
type RedisCache struct {
	client  *redis.Client
	store   store
	breaker *gobreaker.CircuitBreaker
	log     *logger.Logger
}

// NewRedisCache conecta con Redis y verifica la conexión con PING.
func NewRedisCache(ctx context.Context, cfg config.CacheConfig, log *logger.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: ping %s: %w", cfg.RedisAddr, err)
	}
	c := newRedisCache(client, DefaultBreakerSettings(), log)
	c.client = client
	return c, nil
}

func newRedisCache(s store, bs BreakerSettings, log *logger.Logger) *RedisCache {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("redis-cache")
	return &RedisCache{
		store: s,
		log:   log,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "redis-cache",
			MaxRequests: bs.HalfOpenRequests,
			Timeout:     bs.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= bs.FailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("cambio de estado del circuit breaker")
			},
		}),
	}
}

// Get lee y decodifica key en dst. Una clave ausente no cuenta como fallo del breaker.
func (c *RedisCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		raw, err := c.store.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return raw, err
	})
	if err != nil {
		return false, fmt.Errorf("cache.Get %s: %w", key, err)
	}
	raw, _ := res.([]byte)
	if raw == nil {
		return false, nil
	}
	if err := msgpack.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("cache.Get %s: decode: %w", key, err)
	}
	return true, nil
}

// Set codifica v y lo guarda con expiración ttl.
func (c *RedisCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache.Set %s: encode: %w", key, err)
	}
	_, err = c.breaker.Execute(func() (interface{}, error) {
		return nil, c.store.Set(ctx, key, raw, ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("cache.Set %s: %w", key, err)
	}
	return nil
}

// State estado actual del circuit breaker (closed, half-open, open).
func (c *RedisCache) State() string {
	return c.breaker.State().String()
}

// Close cierra la conexión con Redis.
func (c *RedisCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
