package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 500

// RedisStore keeps entries in Redis under an optional key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	// DialTimeout bounds each connection attempt.
	DialTimeout time.Duration
}

func NewRedisStore(cfg RedisConfig) *RedisStore {
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  timeout,
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
			MaxRetries:   -1,
		}),
		prefix: cfg.Prefix,
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) Result[[]byte] {
	b, err := s.client.Get(ctx, s.prefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return Miss[[]byte]()
	case err != nil:
		return Fail[[]byte](fmt.Errorf("redis get: %w", err))
	}
	return Hit(b)
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// InvalidateNamespace deletes every key in namespace, SCANning in batches so
// the server is never blocked by KEYS.
func (s *RedisStore) InvalidateNamespace(ctx context.Context, namespace string) error {
	var cursor uint64
	match := s.prefix + namespace + ":*"
	for {
		keys, next, err := s.client.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return fmt.Errorf("redis scan %s: %w", match, err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
