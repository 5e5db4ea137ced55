package jwks

import (
	"errors"
	"fmt"

	"github.com/go-authgate/coffeeshop/internal/config"
)

// New wraps src in the cache selected by cfg.JWKSCache. aside is only
// consulted for the redis backend.
func New(cfg *config.Config, src *HTTPSource, aside AsideClient) (Source, error) {
	switch cfg.JWKSCache {
	case config.JWKSCacheNone:
		return src, nil
	case config.JWKSCacheMemory, "":
		return NewMemoryCache(src, cfg.JWKSCacheTTL), nil
	case config.JWKSCacheRedis:
		if aside == nil {
			return nil, errors.New("jwks: redis cache selected without a redis client")
		}
		return NewRedisCache(aside, "jwks:"+cfg.Auth0Domain, cfg.JWKSCacheTTL, src), nil
	default:
		return nil, fmt.Errorf("jwks: unknown cache backend %q", cfg.JWKSCache)
	}
}
