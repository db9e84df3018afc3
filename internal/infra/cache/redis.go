// Package cache provides the Redis-backed implementation of the domain
// KeyValueCache. One client is shared; each consumer gets a namespaced view.
package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"go.uber.org/fx"

	"vanguard/config"
	"vanguard/internal/domain/lifecycle"
	"vanguard/internal/domain/service"
)

// Key namespaces. Kept distinct so a flush of one concern never touches the other.
const (
	NamespaceTokenDenylist = "auth:tokens:denylist:"
	NamespaceUserProfile   = "auth:user:profile:"
)

// NewClient creates the shared Redis client and hooks its shutdown into the
// fx lifecycle.
func NewClient(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	if cfg.Redis == nil {
		return nil, errors.New("redis config must be provided")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
			defer cancel()

			return errors.Wrap(client.Ping(pingCtx).Err(), "ping redis")
		},
		OnStop: func(_ context.Context) error {
			return errors.Wrap(client.Close(), "close redis")
		},
	})

	return client, nil
}

// Module provides the shared client plus the two namespaced cache views.
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewClient),
	fx.Provide(
		fx.Annotate(
			func(client *redis.Client) service.KeyValueCache {
				return NewNamespaced(client, NamespaceTokenDenylist)
			},
			fx.ResultTags(`name:"denylistCache"`),
		),
		fx.Annotate(
			func(client *redis.Client) service.KeyValueCache {
				return NewNamespaced(client, NamespaceUserProfile)
			},
			fx.ResultTags(`name:"profileCache"`),
		),
	),
)

// redisCache implements service.KeyValueCache over a shared client with a
// fixed key prefix.
type redisCache struct {
	client *redis.Client
	prefix string
}

// NewNamespaced returns a cache view whose keys all live under prefix.
func NewNamespaced(client *redis.Client, prefix string) service.KeyValueCache {
	return &redisCache{
		client: client,
		prefix: prefix,
	}
}

// Set stores a value under the namespaced key with the given TTL.
func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.Wrap(c.client.Set(ctx, c.prefix+key, value, ttl).Err(), "redis set")
}

// Get retrieves a value, mapping absence to service.ErrCacheMiss.
func (c *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, service.ErrCacheMiss
		}

		return nil, errors.Wrap(err, "redis get")
	}

	return val, nil
}

// Delete removes a key. Removing an absent key is not an error.
func (c *redisCache) Delete(ctx context.Context, key string) error {
	return errors.Wrap(c.client.Del(ctx, c.prefix+key).Err(), "redis del")
}
