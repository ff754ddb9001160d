// Package cooldown remembers which alerts were sent recently so the same
// certificate does not trigger repeated notifications.
package cooldown

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"

	"github.com/TykTechnologies/certexpiry/config"
)

// Cache tracks active cooldowns by key.
type Cache interface {
	IsActive(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key string, cooldown time.Duration) error
}

// Key identifies one certificate served by one host.
func Key(address, fingerprint string) string {
	return fmt.Sprintf("%s|%s", address, fingerprint)
}

// NewRedisClient connects lazily to the server described by cfg.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.Database,
	})
}

// New returns a Redis cache when enabled in cfg, and a local one otherwise.
// The Redis client is returned so the caller can close and health check it;
// it is nil for a local cache.
func New(cfg config.RedisConfig, localSize int) (Cache, *redis.Client, error) {
	if cfg.Enabled {
		client := NewRedisClient(cfg)
		return NewRedis(client, cfg.KeyPrefix), client, nil
	}
	local, err := NewLocal(localSize)
	if err != nil {
		return nil, nil, err
	}
	return local, nil, nil
}

// Local keeps cooldown deadlines in an in-process LRU.
type Local struct {
	cache *lru.Cache[string, time.Time]
	now   func() time.Time
}

// NewLocal returns a Local cache holding at most size keys.
func NewLocal(size int) (*Local, error) {
	cache, err := lru.New[string, time.Time](size)
	if err != nil {
		return nil, err
	}

	return &Local{
		cache: cache,
		now:   time.Now,
	}, nil
}

func (l *Local) IsActive(_ context.Context, key string) (bool, error) {
	until, ok := l.cache.Get(key)
	if !ok {
		return false, nil
	}

	if l.now().Before(until) {
		return true, nil
	}

	l.cache.Remove(key)
	return false, nil
}

func (l *Local) Set(_ context.Context, key string, cooldown time.Duration) error {
	l.cache.Add(key, l.now().Add(cooldown))
	return nil
}

// Redis keeps cooldowns as expiring keys, shared by every watcher using the
// same server.
type Redis struct {
	client redis.Cmdable
	prefix string
}

// NewRedis returns a Redis cache storing keys under prefix.
func NewRedis(client redis.Cmdable, prefix string) *Redis {
	return &Redis{
		client: client,
		prefix: prefix,
	}
}

func (r *Redis) IsActive(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("cooldown lookup for %s: %w", key, err)
	}
	return n > 0, nil
}

func (r *Redis) Set(ctx context.Context, key string, cooldown time.Duration) error {
	if err := r.client.Set(ctx, r.key(key), "1", cooldown).Err(); err != nil {
		return fmt.Errorf("cooldown store for %s: %w", key, err)
	}
	return nil
}

func (r *Redis) key(key string) string {
	return r.prefix + key
}

// Interface Guards
var _ Cache = (*Local)(nil)
var _ Cache = (*Redis)(nil)
