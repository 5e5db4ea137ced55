package jwks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/redis/rueidis"
	"github.com/redis/rueidis/rueidisaside"
)

// AsideClient is the subset of rueidisaside.CacheAsideClient used here.
type AsideClient interface {
	Get(ctx context.Context, ttl time.Duration, key string, fn func(ctx context.Context, key string) (string, error)) (string, error)
	Del(ctx context.Context, key string) error
}

// RedisCache stores the raw key set document in Redis, cache-aside, so every
// replica shares one upstream fetch per ttl.
type RedisCache struct {
	client AsideClient
	key    string
	ttl    time.Duration
	src    RawSource
}

// NewRedisCache wraps src with a shared cache entry named key.
func NewRedisCache(client AsideClient, key string, ttl time.Duration, src RawSource) *RedisCache {
	if key == "" {
		key = "jwks"
	}
	return &RedisCache{client: client, key: key, ttl: ttl, src: src}
}

// DialRedis connects a client-side-caching aside client.
func DialRedis(addr, password string, db int) (rueidisaside.CacheAsideClient, error) {
	client, err := rueidisaside.NewClient(rueidisaside.ClientOption{
		ClientOption: rueidis.ClientOption{
			InitAddress: []string{addr},
			Password:    password,
			SelectDB:    db,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// KeySet returns the shared set, fetching upstream on a miss.
func (c *RedisCache) KeySet(ctx context.Context) (jwk.Set, error) {
	raw, err := c.client.Get(ctx, c.ttl, c.key, func(ctx context.Context, _ string) (string, error) {
		body, err := c.src.Raw(ctx)
		if err != nil {
			return "", err
		}
		return string(body), nil
	})
	if err != nil {
		if errors.Is(err, ErrFetch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: redis cache: %v", ErrFetch, err)
	}
	return Parse([]byte(raw))
}

// Invalidate removes the shared entry.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key)
}
