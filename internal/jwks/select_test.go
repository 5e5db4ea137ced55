package jwks

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-authgate/coffeeshop/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SelectsBackend(t *testing.T) {
	src, err := NewHTTPSource("https://tenant.auth0.com/.well-known/jwks.json", http.DefaultClient)
	require.NoError(t, err)

	tests := []struct {
		name    string
		cache   string
		aside   AsideClient
		want    any
		wantErr bool
	}{
		{name: "none", cache: config.JWKSCacheNone, want: &HTTPSource{}},
		{name: "memory", cache: config.JWKSCacheMemory, want: &MemoryCache{}},
		{name: "redis", cache: config.JWKSCacheRedis, aside: newFakeAside(), want: &RedisCache{}},
		{name: "redis without client", cache: config.JWKSCacheRedis, wantErr: true},
		{name: "unknown", cache: "memcached", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Auth0Domain:  "tenant.auth0.com",
				JWKSCache:    tt.cache,
				JWKSCacheTTL: time.Minute,
			}
			got, err := New(cfg, src, tt.aside)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
		})
	}
}
